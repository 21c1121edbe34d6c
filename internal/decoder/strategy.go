package decoder

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/makiuchi-d/gozxing"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ErrNoSymbol means the strategy ran cleanly and found nothing to read.
var ErrNoSymbol = errors.New("no symbol found")

// Strategy is one way of pulling a payload out of a normalized image.
type Strategy interface {
	Name() string
	Attempt(img *image.Gray) (string, error)
}

// StrategyFault wraps anything a strategy raised other than ErrNoSymbol,
// including recovered panics.
type StrategyFault struct {
	Strategy string
	Err      error
}

func (f *StrategyFault) Error() string {
	return fmt.Sprintf("%s strategy failed: %v", f.Strategy, f.Err)
}

func (f *StrategyFault) Unwrap() error { return f.Err }

// ZXing scans the whole frame for every QR symbol it can find and returns the first one.
type ZXing struct {
	hints map[gozxing.DecodeHintType]interface{}
}

func NewZXing() *ZXing {
	return &ZXing{
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

func (z *ZXing) Name() string { return "zxing" }

func (z *ZXing) Attempt(img *image.Gray) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", err
	}

	results, err := multiqr.NewQRCodeMultiReader().DecodeMultiple(bmp, z.hints)
	if err != nil {
		var nf gozxing.NotFoundException
		if errors.As(err, &nf) {
			return "", ErrNoSymbol
		}
		return "", err
	}
	// several codes in frame: the first one wins, no disambiguation
	for _, r := range results {
		if r == nil {
			continue
		}
		return r.GetText(), nil
	}
	return "", ErrNoSymbol
}

// Detector locates a single symbol with zxing's one-code finder and decodes it.
// It misses crowded frames the multi reader handles but copes with symbols the
// multi detector rejects as ambiguous.
type Detector struct {
	hints map[gozxing.DecodeHintType]interface{}
}

func NewDetector() *Detector {
	return &Detector{
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

func (d *Detector) Name() string { return "detector" }

func (d *Detector) Attempt(img *image.Gray) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", err
	}

	r, err := qrcode.NewQRCodeReader().Decode(bmp, d.hints)
	if err != nil {
		var (
			nf gozxing.NotFoundException
			ce gozxing.ChecksumException
			fe gozxing.FormatException
		)
		// a grid that fails to decode is no more a fault of the input than no grid at all
		if errors.As(err, &nf) || errors.As(err, &ce) || errors.As(err, &fe) {
			return "", fmt.Errorf("%w: %v", ErrNoSymbol, err)
		}
		return "", err
	}
	if r == nil {
		return "", ErrNoSymbol
	}
	return strings.ToValidUTF8(r.GetText(), "\uFFFD"), nil
}
