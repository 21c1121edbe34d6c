package decoder

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"math/rand"
	"testing"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/qrcatalog/internal/qrencode"
)

const sampleUUID = "550e8400-e29b-41d4-a716-446655440000"

func render(t *testing.T, payload string, opts qrencode.Options) image.Image {
	t.Helper()
	img, err := qrencode.Render(payload, opts)
	require.NoError(t, err)
	return img
}

func smallOpts() qrencode.Options {
	return qrencode.Options{Level: qrcode.Medium, ModuleSize: 8, Border: 4}
}

// toRGBA tints the symbol so the decoder has to deal with real colour channels.
func toRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.GrayModel.Convert(src.At(x, y)).(color.Gray).Y < 128 {
				dst.Set(x, y, color.RGBA{R: 20, G: 30, B: 90, A: 255})
			} else {
				dst.Set(x, y, color.RGBA{R: 250, G: 245, B: 230, A: 255})
			}
		}
	}
	return dst
}

type failingStrategy struct{ err error }

func (failingStrategy) Name() string { return "failing" }

func (f failingStrategy) Attempt(*image.Gray) (string, error) { return "", f.err }

type panickingStrategy struct{}

func (panickingStrategy) Name() string { return "panicking" }

func (panickingStrategy) Attempt(*image.Gray) (string, error) { panic("corrupt buffer") }

type recordingStrategy struct {
	seen *image.Gray
}

func (r *recordingStrategy) Name() string { return "recording" }

func (r *recordingStrategy) Attempt(img *image.Gray) (string, error) {
	r.seen = img
	return "", ErrNoSymbol
}

func TestDecodeColorImage(t *testing.T) {
	o := NewDefault(nil)

	out := o.Decode(toRGBA(render(t, "100001", smallOpts())))
	require.True(t, out.Found(), "faults: %v", out.Faults)
	assert.Equal(t, "100001", out.Payload)
	assert.Equal(t, "zxing", out.Strategy)
}

func TestDecodeUUIDWithDefaultOptions(t *testing.T) {
	o := NewDefault(nil)

	out := o.Decode(render(t, sampleUUID, qrencode.DefaultOptions()))
	require.Equal(t, StatusFound, out.Status, "faults: %v", out.Faults)
	assert.Equal(t, sampleUUID, out.Payload)
}

func TestDecodeRoundTrip(t *testing.T) {
	o := NewDefault(nil)
	for _, id := range []string{"100001", "399999", "4f9c2b8e-1d7a-4e0b-9a61-2f3c5d7e9b10", "hello world"} {
		data, err := qrencode.RenderPNG(id, smallOpts())
		require.NoError(t, err)

		out := o.DecodeBytes(data)
		require.True(t, out.Found(), "%s: %v", id, out.Faults)
		assert.Equal(t, id, out.Payload)
	}
}

func TestDecodeUniformGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 320, 240))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.Gray{Y: 128}}, image.Point{}, draw.Src)

	out := NewDefault(nil).Decode(img)
	assert.Equal(t, StatusNoCode, out.Status)
	assert.Empty(t, out.Payload)
}

func TestDecodeNoise(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	img := image.NewGray(image.Rect(0, 0, 200, 200))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}

	out := NewDefault(nil).Decode(img)
	assert.Equal(t, StatusNoCode, out.Status)
}

func TestFallbackAloneSucceeds(t *testing.T) {
	img := toRGBA(render(t, "250007", smallOpts()))

	o := New(nil, failingStrategy{err: ErrNoSymbol}, NewDetector())
	out := o.Decode(img)
	require.True(t, out.Found(), "faults: %v", out.Faults)
	assert.Equal(t, "250007", out.Payload)
	assert.Equal(t, "detector", out.Strategy)
	assert.Empty(t, out.Faults)
}

func TestFaultingPrimaryFallsThrough(t *testing.T) {
	img := render(t, "300042", smallOpts())

	for _, primary := range []Strategy{failingStrategy{err: errors.New("malformed buffer")}, panickingStrategy{}} {
		out := New(nil, primary, NewDetector()).Decode(img)
		require.True(t, out.Found(), primary.Name())
		assert.Equal(t, "300042", out.Payload)
		require.Len(t, out.Faults, 1)

		var fault *StrategyFault
		require.ErrorAs(t, out.Faults[0], &fault)
		assert.Equal(t, primary.Name(), fault.Strategy)
	}
}

func TestDetectorRoundTrip(t *testing.T) {
	d := NewDetector()
	cases := []struct {
		payload string
		opts    qrencode.Options
	}{
		{"100001", qrencode.DefaultOptions()},
		{"123", qrencode.DefaultOptions()},
		{"399999", smallOpts()},
		{sampleUUID, qrencode.DefaultOptions()},
		{sampleUUID, smallOpts()},
	}
	for _, tc := range cases {
		got, err := d.Attempt(Preprocess(render(t, tc.payload, tc.opts)))
		require.NoError(t, err, tc.payload)
		assert.Equal(t, tc.payload, got)
	}
}

func TestDetectorEmptyFrame(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 120, 120))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	_, err := NewDetector().Attempt(img)
	assert.ErrorIs(t, err, ErrNoSymbol)
}

func TestAllStrategiesFail(t *testing.T) {
	o := New(nil, panickingStrategy{}, failingStrategy{err: errors.New("unsupported")})

	out := o.Decode(image.NewGray(image.Rect(0, 0, 10, 10)))
	assert.Equal(t, StatusNoCode, out.Status)
	assert.Len(t, out.Faults, 2)
	assert.Len(t, out.FaultMessages(), 2)
}

func TestMaskIsRescaledBeforeStrategies(t *testing.T) {
	m := NewMask(image.Rect(0, 0, 4, 2))
	m.Set(1, 0, true)
	m.Set(3, 1, true)

	rec := &recordingStrategy{}
	out := New(nil, rec).Decode(m)
	assert.Equal(t, StatusNoCode, out.Status)
	require.NotNil(t, rec.seen)
	assert.Equal(t, []uint8{0, 255, 0, 0, 0, 0, 0, 255}, rec.seen.Pix)
}

func TestDecodeUnscaledMask(t *testing.T) {
	symbol := render(t, sampleUUID, smallOpts())
	mask := Threshold(symbol, 128)

	// the raw mask only carries 0/1 intensities
	assert.Equal(t, color.Gray{Y: 1}, mask.At(0, 0))

	out := NewDefault(nil).Decode(mask)
	require.True(t, out.Found(), "faults: %v", out.Faults)
	assert.Equal(t, sampleUUID, out.Payload)
}

func TestDecodeJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, toRGBA(render(t, "150003", smallOpts())), &jpeg.Options{Quality: 85}))

	out := NewDefault(nil).DecodeBytes(buf.Bytes())
	require.True(t, out.Found(), "faults: %v", out.Faults)
	assert.Equal(t, "150003", out.Payload)
}

func TestDecodeBytesMalformed(t *testing.T) {
	out := NewDefault(nil).DecodeBytes([]byte("definitely not an image"))
	assert.Equal(t, StatusNoCode, out.Status)
	require.Len(t, out.Faults, 1)

	var fault *StrategyFault
	require.ErrorAs(t, out.Faults[0], &fault)
	assert.Equal(t, "image", fault.Strategy)
}

func TestDecodeNilImage(t *testing.T) {
	out := NewDefault(nil).Decode(nil)
	assert.Equal(t, StatusNoCode, out.Status)
	require.Len(t, out.Faults, 1)
	assert.ErrorIs(t, out.Faults[0], ErrNilImage)
}

func TestDecodeCorruptMaskIsSoft(t *testing.T) {
	m := &Mask{Pix: make([]bool, 3), Stride: 10, Rect: image.Rect(0, 0, 10, 10)}

	out := NewDefault(nil).Decode(m)
	assert.Equal(t, StatusNoCode, out.Status)
	require.Len(t, out.Faults, 1)
}

func TestDecodeMultipleSymbolsReturnsOne(t *testing.T) {
	a := render(t, "100001", smallOpts())
	b := render(t, "100002", smallOpts())
	w := a.Bounds().Dx()

	canvas := image.NewGray(image.Rect(0, 0, 2*w, w))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, a.Bounds(), a, image.Point{}, draw.Src)
	draw.Draw(canvas, a.Bounds().Add(image.Pt(w, 0)), b, image.Point{}, draw.Src)

	out := NewDefault(nil).Decode(canvas)
	require.True(t, out.Found(), "faults: %v", out.Faults)
	assert.Contains(t, []string{"100001", "100002"}, out.Payload)
}

func TestDecodeOffsetBounds(t *testing.T) {
	src := render(t, "200001", smallOpts())
	sub := image.NewRGBA(src.Bounds().Add(image.Pt(37, 11)))
	draw.Draw(sub, sub.Bounds(), src, src.Bounds().Min, draw.Src)

	out := NewDefault(nil).Decode(sub)
	require.True(t, out.Found())
	assert.Equal(t, "200001", out.Payload)
}

func TestStrategiesOrder(t *testing.T) {
	assert.Equal(t, []string{"zxing", "detector"}, NewDefault(nil).Strategies())
}
