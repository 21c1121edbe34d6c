package decoder

import (
	"image"
	"image/color"
)

// Preprocess normalizes any raster into a fresh single-channel image anchored at (0,0).
//
//   - *Mask: unset -> 0, set -> 255
//   - *image.Gray: copied
//   - anything else: ITU-R 601 luminance, translucent pixels composited onto white
//
// The input is never modified and never returned.
func Preprocess(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	switch src := img.(type) {
	case *Mask:
		for y := 0; y < b.Dy(); y++ {
			row := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
			for x := range row {
				if src.BoolAt(b.Min.X+x, b.Min.Y+y) {
					row[x] = 255
				}
			}
		}
	case *image.Gray:
		for y := 0; y < b.Dy(); y++ {
			start := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], src.Pix[start:start+b.Dx()])
		}
	default:
		for y := 0; y < b.Dy(); y++ {
			row := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
			for x := range row {
				row[x] = luminance(img.At(b.Min.X+x, b.Min.Y+y))
			}
		}
	}
	return out
}

// luminance uses the same weights as color.GrayModel, plus alpha compositing
// so that transparent backgrounds read as white paper instead of black.
func luminance(c color.Color) uint8 {
	r, g, b, a := c.RGBA()
	y := (19595*r + 38470*g + 7471*b + 1<<15) >> 16
	y += 0xffff - a
	if y > 0xffff {
		y = 0xffff
	}
	return uint8(y >> 8)
}
