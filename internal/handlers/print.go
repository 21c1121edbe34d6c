package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/xelth-com/qrcatalog/internal/identifier"
	"github.com/xelth-com/qrcatalog/internal/records"
	"github.com/xelth-com/qrcatalog/internal/services/printer"
	"go.uber.org/zap"
)

// generateLabels returns a printable label sheet for every product, or
// for one category.
func (r *Router) generateLabels(w http.ResponseWriter, req *http.Request) {
	category := req.URL.Query().Get("category")
	if category != "" {
		if _, ok := identifier.Lookup(category); !ok {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("Unknown category %q", category))
			return
		}
	}

	products, err := r.catalog.List(req.Context(), records.Filter{Category: category})
	if err != nil {
		r.log.Error("list products for labels failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	pdfBytes, err := printer.GenerateLabelsPDF(products, r.labels)
	if errors.Is(err, printer.ErrNoProducts) {
		respondError(w, http.StatusNotFound, "No products to print")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate PDF: %v", err))
		return
	}

	name := "labels.pdf"
	if category != "" {
		name = fmt.Sprintf("labels_%s.pdf", category)
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
	w.Write(pdfBytes)
}
