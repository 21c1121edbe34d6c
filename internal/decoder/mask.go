package decoder

import (
	"image"
	"image/color"
)

// Mask is a bilevel image: every pixel is either set or unset.
// It reports its pixels at native boolean contrast (1 for set, 0 for unset),
// the way a thresholded array looks before anybody rescales it.
type Mask struct {
	Pix    []bool
	Stride int
	Rect   image.Rectangle
}

func NewMask(r image.Rectangle) *Mask {
	return &Mask{
		Pix:    make([]bool, r.Dx()*r.Dy()),
		Stride: r.Dx(),
		Rect:   r,
	}
}

// Threshold marks pixels brighter than level.
func Threshold(img image.Image, level uint8) *Mask {
	b := img.Bounds()
	m := NewMask(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			m.Set(x, y, luminance(img.At(x, y)) > level)
		}
	}
	return m
}

func (m *Mask) ColorModel() color.Model { return color.GrayModel }

func (m *Mask) Bounds() image.Rectangle { return m.Rect }

func (m *Mask) At(x, y int) color.Color {
	if m.BoolAt(x, y) {
		return color.Gray{Y: 1}
	}
	return color.Gray{Y: 0}
}

func (m *Mask) BoolAt(x, y int) bool {
	if !(image.Point{x, y}.In(m.Rect)) {
		return false
	}
	return m.Pix[m.offset(x, y)]
}

func (m *Mask) Set(x, y int, v bool) {
	if !(image.Point{x, y}.In(m.Rect)) {
		return
	}
	m.Pix[m.offset(x, y)] = v
}

func (m *Mask) offset(x, y int) int {
	return (y-m.Rect.Min.Y)*m.Stride + (x - m.Rect.Min.X)
}
