// Package decoder recovers QR payloads from arbitrary camera or upload images.
//
// Every image goes through Preprocess, then through an ordered list of
// strategies until one of them returns a payload. A strategy that fails
// or panics is recorded as a fault and the next one is tried; the caller
// only ever sees an Outcome.
package decoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type Status string

const (
	StatusFound  Status = "found"
	StatusNoCode Status = "no_code"
)

var ErrNilImage = errors.New("nil image")

// Outcome is the result of one decode attempt. Faults lists soft failures
// met along the way; they are informational and never change Status.
type Outcome struct {
	Status   Status
	Payload  string
	Strategy string
	Faults   []error
}

func (o Outcome) Found() bool { return o.Status == StatusFound }

// FaultMessages flattens Faults for JSON responses.
func (o Outcome) FaultMessages() []string {
	if len(o.Faults) == 0 {
		return nil
	}
	msgs := make([]string, len(o.Faults))
	for i, f := range o.Faults {
		msgs[i] = f.Error()
	}
	return msgs
}

// Orchestrator tries its strategies in order. It holds no mutable state
// and is safe for concurrent use.
type Orchestrator struct {
	strategies []Strategy
	log        *zap.Logger
}

func New(log *zap.Logger, strategies ...Strategy) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{strategies: strategies, log: log}
}

// NewDefault uses the ZXing multi-symbol reader first and falls back to the
// single-symbol detector.
func NewDefault(log *zap.Logger) *Orchestrator {
	return New(log, NewZXing(), NewDetector())
}

// Strategies returns the strategy names in the order they are tried.
func (o *Orchestrator) Strategies() []string {
	names := make([]string, len(o.strategies))
	for i, s := range o.strategies {
		names[i] = s.Name()
	}
	return names
}

// DecodeBytes decodes an encoded image (PNG, JPEG, GIF, BMP, TIFF, WebP) and
// runs Decode on it. An unreadable buffer is a fault, not an error.
func (o *Orchestrator) DecodeBytes(data []byte) Outcome {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		fault := &StrategyFault{Strategy: "image", Err: err}
		o.log.Warn("scan image could not be decoded", zap.Int("bytes", len(data)), zap.Error(err))
		return Outcome{Status: StatusNoCode, Faults: []error{fault}}
	}
	o.log.Debug("scan image decoded", zap.String("format", format), zap.Stringer("bounds", img.Bounds()))
	return o.Decode(img)
}

func (o *Orchestrator) Decode(img image.Image) Outcome {
	gray, err := o.preprocess(img)
	if err != nil {
		return Outcome{Status: StatusNoCode, Faults: []error{err}}
	}

	var faults []error
	for _, s := range o.strategies {
		payload, err := attempt(s, gray)
		if err == nil && payload != "" {
			return Outcome{Status: StatusFound, Payload: payload, Strategy: s.Name(), Faults: faults}
		}
		if err != nil && !errors.Is(err, ErrNoSymbol) {
			o.log.Warn("decode strategy failed", zap.String("strategy", s.Name()), zap.Error(err))
			faults = append(faults, err)
		}
	}
	return Outcome{Status: StatusNoCode, Faults: faults}
}

func (o *Orchestrator) preprocess(img image.Image) (gray *image.Gray, err error) {
	if img == nil {
		return nil, &StrategyFault{Strategy: "preprocess", Err: ErrNilImage}
	}
	defer func() {
		if r := recover(); r != nil {
			o.log.Warn("image preprocessing panicked", zap.Any("panic", r))
			gray, err = nil, &StrategyFault{Strategy: "preprocess", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return Preprocess(img), nil
}

func attempt(s Strategy, img *image.Gray) (payload string, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload, err = "", &StrategyFault{Strategy: s.Name(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	payload, err = s.Attempt(img)
	if err != nil && !errors.Is(err, ErrNoSymbol) {
		return "", &StrategyFault{Strategy: s.Name(), Err: err}
	}
	return payload, err
}
