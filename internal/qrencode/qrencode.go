// Package qrencode renders payload strings into QR rasters with an explicit
// module size and quiet-zone width.
package qrencode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/skip2/go-qrcode"
)

var ErrEmptyPayload = errors.New("qr payload is empty")

// Options controls how a symbol is rasterised.
type Options struct {
	Level      qrcode.RecoveryLevel
	ModuleSize int // pixels per module
	Border     int // quiet zone, in modules
}

// DefaultOptions matches the labels printed for UUID products: level H, 20px modules, 6 module border.
func DefaultOptions() Options {
	return Options{Level: qrcode.Highest, ModuleSize: 20, Border: 6}
}

func (o Options) normalized() Options {
	if o.ModuleSize <= 0 {
		o.ModuleSize = 1
	}
	if o.Border < 0 {
		o.Border = 0
	}
	return o
}

// ParseLevel maps the standard L/M/Q/H letters onto go-qrcode recovery levels.
func ParseLevel(s string) (qrcode.RecoveryLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L", "LOW":
		return qrcode.Low, nil
	case "M", "MEDIUM":
		return qrcode.Medium, nil
	case "Q", "QUARTILE":
		return qrcode.High, nil
	case "H", "HIGH", "":
		return qrcode.Highest, nil
	}
	return qrcode.Highest, fmt.Errorf("unknown error correction level %q", s)
}

// Bitmap returns the module matrix without quiet zone; true means a dark module.
func Bitmap(payload string, level qrcode.RecoveryLevel) ([][]bool, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	q, err := qrcode.New(payload, level)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	q.DisableBorder = true
	return q.Bitmap(), nil
}

// Render draws the symbol black on white. The result is
// (modules + 2*Border) * ModuleSize pixels on each side.
func Render(payload string, opts Options) (*image.Paletted, error) {
	opts = opts.normalized()
	bits, err := Bitmap(payload, opts.Level)
	if err != nil {
		return nil, err
	}

	ms := opts.ModuleSize
	side := (len(bits) + 2*opts.Border) * ms
	img := image.NewPaletted(image.Rect(0, 0, side, side), color.Palette{color.White, color.Black})

	for y, row := range bits {
		for x, dark := range row {
			if !dark {
				continue
			}
			x0 := (x + opts.Border) * ms
			y0 := (y + opts.Border) * ms
			for py := y0; py < y0+ms; py++ {
				for px := x0; px < x0+ms; px++ {
					img.SetColorIndex(px, py, 1)
				}
			}
		}
	}
	return img, nil
}

// RenderPNG renders and PNG-encodes the symbol.
func RenderPNG(payload string, opts Options) ([]byte, error) {
	img, err := Render(payload, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
