package printer

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
	"github.com/xelth-com/qrcatalog/internal/models"
	"github.com/xelth-com/qrcatalog/internal/qrencode"
)

var ErrNoProducts = errors.New("no products to print")

// LabelConfig holds configuration for PDF generation
type LabelConfig struct {
	Cols       int     `json:"cols"`
	Rows       int     `json:"rows"`
	MarginTop  float64 `json:"marginTop"`
	MarginLeft float64 `json:"marginLeft"`
	GapX       float64 `json:"gapX"`
	GapY       float64 `json:"gapY"`
}

// DefaultLabelConfig is a 3x7 sheet on A4.
func DefaultLabelConfig() LabelConfig {
	return LabelConfig{Cols: 3, Rows: 7, MarginTop: 10, MarginLeft: 8, GapX: 3, GapY: 2}
}

func (c LabelConfig) validate() error {
	if c.Cols <= 0 || c.Rows <= 0 {
		return fmt.Errorf("label grid must be positive, got %dx%d", c.Cols, c.Rows)
	}
	return nil
}

// GenerateLabelsPDF lays out one label per product: its QR code with the
// name and id underneath.
func GenerateLabelsPDF(products []models.Product, cfg LabelConfig) ([]byte, error) {
	if len(products) == 0 {
		return nil, ErrNoProducts
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Arial", "B", 10)
	// core fonts are cp1252; product names may carry accents
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// A4 dimensions
	pageWidth, pageHeight := 210.0, 297.0

	totalGapX := float64(cfg.Cols-1) * cfg.GapX
	totalGapY := float64(cfg.Rows-1) * cfg.GapY

	// symmetric margins
	availW := pageWidth - (cfg.MarginLeft * 2)
	availH := pageHeight - (cfg.MarginTop * 2)

	labelW := (availW - totalGapX) / float64(cfg.Cols)
	labelH := (availH - totalGapY) / float64(cfg.Rows)

	labelsPerPage := cfg.Cols * cfg.Rows
	qrOpts := qrencode.Options{Level: qrcode.Highest, ModuleSize: 8, Border: 2}

	for i, p := range products {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		indexOnPage := i % labelsPerPage
		col := indexOnPage % cfg.Cols
		row := indexOnPage / cfg.Cols

		// top-left of label
		x := cfg.MarginLeft + float64(col)*(labelW+cfg.GapX)
		y := cfg.MarginTop + float64(row)*(labelH+cfg.GapY)

		qrPng, err := qrencode.RenderPNG(p.ID, qrOpts)
		if err != nil {
			return nil, fmt.Errorf("render label qr for %s: %w", p.ID, err)
		}

		imgName := "qr_" + p.ID
		imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader(imgName, imgOptions, bytes.NewReader(qrPng))

		// QR takes 65% of the label height, leaving two text lines
		qrSize := labelH * 0.65
		if qrSize > labelW {
			qrSize = labelW * 0.9
		}
		qrX := x + (labelW-qrSize)/2
		qrY := y + 1

		pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, imgOptions, 0, "")

		pdf.SetXY(x, y+labelH-10)
		pdf.SetFontSize(8)
		pdf.CellFormat(labelW, 4, tr(p.Name), "", 0, "C", false, 0, "")

		pdf.SetXY(x, y+labelH-5)
		pdf.SetFontSize(6)
		pdf.CellFormat(labelW, 4, p.ID, "", 0, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write label pdf: %w", err)
	}
	return buf.Bytes(), nil
}
