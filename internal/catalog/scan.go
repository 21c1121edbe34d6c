package catalog

import (
	"context"
	"errors"

	"github.com/xelth-com/qrcatalog/internal/decoder"
	"github.com/xelth-com/qrcatalog/internal/models"
	"github.com/xelth-com/qrcatalog/internal/records"
	"go.uber.org/zap"
)

type ScanStatus string

const (
	ScanFound          ScanStatus = "found"
	ScanNoCode         ScanStatus = "no_code"
	ScanInvalidPayload ScanStatus = "invalid_payload"
	ScanNotFound       ScanStatus = "not_found"
	ScanError          ScanStatus = "error"
)

// ScanResult keeps "no code", "not one of ours", "not registered" and
// "store failed" apart so the operator sees which one happened.
type ScanResult struct {
	Status   ScanStatus      `json:"status"`
	Payload  string          `json:"payload,omitempty"`
	Strategy string          `json:"strategy,omitempty"`
	Product  *models.Product `json:"product,omitempty"`
	// ImageAvailable is false when the record exists but its photo blob does not.
	ImageAvailable bool     `json:"imageAvailable"`
	Faults         []string `json:"faults,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// Scan decodes an uploaded or captured picture and looks up the product
// its QR code refers to.
func (s *Service) Scan(ctx context.Context, data []byte) ScanResult {
	out := s.decoder.DecodeBytes(data)
	res := ScanResult{Payload: out.Payload, Strategy: out.Strategy, Faults: out.FaultMessages()}
	if !out.Found() {
		res.Status = ScanNoCode
		return res
	}

	id, err := decoder.ParseIdentifier(out.Payload, s.ids.Scheme())
	if err != nil {
		res.Status = ScanInvalidPayload
		res.Error = err.Error()
		return res
	}

	p, err := s.records.Get(ctx, id)
	switch {
	case errors.Is(err, records.ErrNotFound):
		res.Status = ScanNotFound
		return res
	case err != nil:
		s.log.Error("scan lookup failed", zap.String("id", id), zap.Error(err))
		res.Status = ScanError
		res.Error = err.Error()
		return res
	}

	res.Status = ScanFound
	res.Product = p
	res.ImageAvailable, err = s.blobs.Exists(ctx, p.ImagePath)
	if err != nil {
		s.log.Warn("photo availability check failed", zap.String("id", id), zap.Error(err))
		res.ImageAvailable = false
	}
	if !s.scans.IsDuplicate(id) {
		s.opts.Notifier.Publish(Event{Type: EventProductScanned, ProductID: id, Product: p, Time: s.opts.Clock.Now()})
	}
	return res
}
