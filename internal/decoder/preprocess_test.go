package decoder

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessMask(t *testing.T) {
	m := NewMask(image.Rect(2, 3, 5, 4))
	m.Set(2, 3, true)
	m.Set(4, 3, true)

	out := Preprocess(m)
	assert.Equal(t, image.Rect(0, 0, 3, 1), out.Bounds())
	assert.Equal(t, []uint8{255, 0, 255}, out.Pix)

	// the mask itself keeps its native contrast
	assert.Equal(t, color.Gray{Y: 1}, m.At(2, 3))
	assert.True(t, m.BoolAt(4, 3))
	assert.False(t, m.BoolAt(99, 99))
}

func TestPreprocessColor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{R: 255, A: 255})
	img.Set(2, 0, color.RGBA{A: 255})
	before := append([]uint8(nil), img.Pix...)

	out := Preprocess(img)
	require.Len(t, out.Pix, 3)
	assert.Equal(t, uint8(255), out.Pix[0])
	assert.Equal(t, color.GrayModel.Convert(color.RGBA{R: 255, A: 255}).(color.Gray).Y, out.Pix[1])
	assert.Equal(t, uint8(0), out.Pix[2])
	assert.Equal(t, before, img.Pix, "input must not be mutated")
}

func TestPreprocessTransparentIsWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{A: 0})
	img.Set(1, 0, color.NRGBA{A: 255})

	out := Preprocess(img)
	assert.Equal(t, []uint8{255, 0}, out.Pix)
}

func TestPreprocessGrayIsCopied(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 10)
	}
	sub := src.SubImage(image.Rect(1, 1, 3, 3)).(*image.Gray)

	out := Preprocess(sub)
	assert.Equal(t, []uint8{50, 60, 90, 100}, out.Pix)

	out.Pix[0] = 7
	assert.Equal(t, uint8(50), src.Pix[5])
}

func TestPreprocessPaletted(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 2, 1), color.Palette{color.White, color.Black})
	img.SetColorIndex(1, 0, 1)

	out := Preprocess(img)
	assert.Equal(t, []uint8{255, 0}, out.Pix)
}

func TestThreshold(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.Pix = []uint8{10, 128, 200}

	m := Threshold(img, 128)
	assert.Equal(t, []bool{false, false, true}, m.Pix)
}
