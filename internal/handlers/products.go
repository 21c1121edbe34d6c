package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/xelth-com/qrcatalog/internal/blob"
	"github.com/xelth-com/qrcatalog/internal/catalog"
	"github.com/xelth-com/qrcatalog/internal/identifier"
	"github.com/xelth-com/qrcatalog/internal/models"
	"github.com/xelth-com/qrcatalog/internal/records"
	"github.com/xelth-com/qrcatalog/internal/utils"
	"go.uber.org/zap"
)

const confirmHeader = "X-Confirm-Token"

type categoryInfo struct {
	Name string `json:"name"`
	Base int64  `json:"base"`
}

func (r *Router) listCategories(w http.ResponseWriter, req *http.Request) {
	names := identifier.Names()
	out := make([]categoryInfo, len(names))
	for i, n := range names {
		out[i] = categoryInfo{Name: n, Base: identifier.Categories[n]}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"categories": out})
}

// createProduct registers a product from a multipart form:
// name, description, category and the image file.
func (r *Router) createProduct(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		if isTooLarge(err) {
			respondError(w, http.StatusRequestEntityTooLarge, "Upload too large")
			return
		}
		respondError(w, http.StatusBadRequest, "Expected multipart form data")
		return
	}

	file, header, err := req.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image: is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Could not read image")
		return
	}

	reg, err := r.catalog.Register(req.Context(), catalog.RegisterRequest{
		Name:          req.FormValue("name"),
		Description:   req.FormValue("description"),
		Category:      req.FormValue("category"),
		ImageFilename: header.Filename,
		Image:         data,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		r.log.Error("registration failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to register product")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"product":     reg.Product,
		"qrCodeUrl":   qrURL(reg.Product),
		"downloadUrl": fmt.Sprintf("/api/products/%s/qr", reg.Product.ID),
	})
}

// qrURL prefers the stored artifact, else the on-demand endpoint.
func qrURL(p *models.Product) string {
	if p.QRCodeURL != "" {
		return p.QRCodeURL
	}
	return fmt.Sprintf("/api/products/%s/qr", p.ID)
}

func (r *Router) listProducts(w http.ResponseWriter, req *http.Request) {
	category := req.URL.Query().Get("category")
	if category != "" {
		if _, ok := identifier.Lookup(category); !ok {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("Unknown category %q", category))
			return
		}
	}

	products, err := r.catalog.List(req.Context(), records.Filter{Category: category})
	if err != nil {
		r.log.Error("list products failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"total":    len(products),
	})
}

func (r *Router) getProduct(w http.ResponseWriter, req *http.Request) {
	p, err := r.catalog.Get(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		r.respondLookupError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// getProductQR downloads the QR code as qr_code_<name>.png.
func (r *Router) getProductQR(w http.ResponseWriter, req *http.Request) {
	png, p, err := r.catalog.QRCode(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		r.respondLookupError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": "qr_code_" + p.Name + ".png",
	}))
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Write(png)
}

func (r *Router) getProductImage(w http.ResponseWriter, req *http.Request) {
	data, contentType, err := r.catalog.Image(req.Context(), mux.Vars(req)["id"])
	if errors.Is(err, blob.ErrNotFound) {
		r.log.Warn("product image missing", zap.String("id", mux.Vars(req)["id"]), zap.Error(err))
		respondError(w, http.StatusNotFound, "Product image unavailable")
		return
	}
	if err != nil {
		r.respondLookupError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// requestDelete is the first half of a delete: it returns the token the
// DELETE request must carry.
func (r *Router) requestDelete(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	token, expires, err := r.catalog.RequestDelete(req.Context(), id)
	if err != nil {
		r.respondLookupError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":        id,
		"token":     token,
		"expiresAt": expires.Format(time.RFC3339),
		"header":    confirmHeader,
	})
}

func (r *Router) deleteProduct(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	err := r.catalog.Delete(req.Context(), id, req.Header.Get(confirmHeader))
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, map[string]interface{}{"id": id, "deleted": true})
	case errors.Is(err, utils.ErrInvalidConfirmation):
		respondError(w, http.StatusForbidden, "Delete not confirmed: request a confirmation token first")
	case errors.Is(err, catalog.ErrBlobCleanup):
		respondJSON(w, http.StatusOK, map[string]interface{}{"id": id, "deleted": true, "warning": err.Error()})
	default:
		r.respondLookupError(w, err)
	}
}

func (r *Router) respondLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, records.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}
	r.log.Error("product lookup failed", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "Internal error")
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
