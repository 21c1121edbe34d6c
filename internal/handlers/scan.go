package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/xelth-com/qrcatalog/internal/catalog"
)

// scan accepts a camera capture or an uploaded file, either as the
// multipart field "image" or as the raw request body.
func (r *Router) scan(w http.ResponseWriter, req *http.Request) {
	data, status, msg := readScanImage(req)
	if status != 0 {
		respondError(w, status, msg)
		return
	}

	res := r.catalog.Scan(req.Context(), data)
	if res.Status == catalog.ScanError {
		respondJSON(w, http.StatusInternalServerError, res)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func readScanImage(req *http.Request) ([]byte, int, string) {
	var src io.Reader = req.Body
	if strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/") {
		if err := req.ParseMultipartForm(1 << 20); err != nil {
			if isTooLarge(err) {
				return nil, http.StatusRequestEntityTooLarge, "Upload too large"
			}
			return nil, http.StatusBadRequest, "Invalid multipart form"
		}
		file, _, err := req.FormFile("image")
		if err != nil {
			return nil, http.StatusBadRequest, "image: is required"
		}
		defer file.Close()
		src = file
	}

	data, err := io.ReadAll(src)
	if err != nil {
		if isTooLarge(err) {
			return nil, http.StatusRequestEntityTooLarge, "Upload too large"
		}
		return nil, http.StatusBadRequest, "Could not read image"
	}
	if len(data) == 0 {
		return nil, http.StatusBadRequest, "Empty image"
	}
	return data, 0, ""
}
