// Package catalog registers products, resolves scanned QR codes back to
// them and deletes them after explicit confirmation.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xelth-com/qrcatalog/internal/blob"
	"github.com/xelth-com/qrcatalog/internal/decoder"
	"github.com/xelth-com/qrcatalog/internal/identifier"
	"github.com/xelth-com/qrcatalog/internal/models"
	"github.com/xelth-com/qrcatalog/internal/pkg/clock"
	"github.com/xelth-com/qrcatalog/internal/qrencode"
	"github.com/xelth-com/qrcatalog/internal/records"
	"github.com/xelth-com/qrcatalog/internal/utils"
	"go.uber.org/zap"
)

// Options carries the non-collaborator settings of a Service.
type Options struct {
	QR            qrencode.Options
	PersistQR     bool
	ConfirmSecret string
	ConfirmTTL    time.Duration
	// ScanDebounce suppresses repeated scan events for one product.
	ScanDebounce time.Duration
	Clock        clock.Clock
	Notifier     Notifier
	Logger       *zap.Logger
}

type Service struct {
	ids     identifier.Allocator
	records records.Store
	blobs   blob.Store
	decoder *decoder.Orchestrator
	scans   *utils.Deduplicator
	opts    Options
	log     *zap.Logger
}

func NewService(ids identifier.Allocator, recs records.Store, blobs blob.Store, dec *decoder.Orchestrator, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = clock.NewRealClock()
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ConfirmTTL <= 0 {
		opts.ConfirmTTL = 5 * time.Minute
	}
	return &Service{
		ids:     ids,
		records: recs,
		blobs:   blobs,
		decoder: dec,
		scans:   utils.NewDeduplicator(opts.ScanDebounce, opts.Clock.Now),
		opts:    opts,
		log:     opts.Logger,
	}
}

// Scheme is the identifier scheme scanned payloads are checked against.
func (s *Service) Scheme() identifier.Scheme { return s.ids.Scheme() }

type RegisterRequest struct {
	Name          string
	Description   string
	Category      string
	ImageFilename string
	Image         []byte
}

// Registration is a stored product plus the PNG of its QR code.
type Registration struct {
	Product *models.Product
	QRCode  []byte
}

func validateRegistration(req *RegisterRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.ToLower(strings.TrimSpace(req.Category))

	if req.Name == "" {
		return invalid("name", "is required")
	}
	if n := utf8.RuneCountInString(req.Name); n > MaxNameLength {
		return invalid("name", "must be at most %d characters, got %d", MaxNameLength, n)
	}
	if len(req.Image) == 0 {
		return invalid("image", "is required")
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(req.ImageFilename), "."))
	allowed := false
	for _, a := range AllowedExtensions {
		if ext == a {
			allowed = true
			break
		}
	}
	if !allowed {
		return invalid("image", "extension must be one of %s", strings.Join(AllowedExtensions, ", "))
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(req.Image)); err != nil {
		return invalid("image", "not a readable image: %v", err)
	}
	return nil
}

// Register stores the photo, renders the QR code and inserts the record.
// The record is inserted last; blobs uploaded by a failed registration are
// removed again.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (reg *Registration, err error) {
	if err := validateRegistration(&req); err != nil {
		return nil, err
	}

	id, err := s.ids.Allocate(ctx, req.Category)
	if err != nil {
		if errors.Is(err, identifier.ErrUnknownCategory) || errors.Is(err, identifier.ErrCategoryRequired) {
			return nil, &ValidationError{Field: "category", Message: err.Error()}
		}
		return nil, fmt.Errorf("allocate identifier: %w", err)
	}

	var uploaded []string
	defer func() {
		if err == nil || len(uploaded) == 0 {
			return
		}
		if rmErr := s.blobs.Remove(context.WithoutCancel(ctx), uploaded...); rmErr != nil {
			s.log.Error("failed to remove blobs of aborted registration",
				zap.String("id", id), zap.Strings("keys", uploaded), zap.Error(rmErr))
		}
	}()

	p := &models.Product{
		ID:          id,
		Category:    req.Category,
		Name:        req.Name,
		Description: req.Description,
		ImagePath:   blob.ImageKey(id, req.ImageFilename),
	}

	p.ImageURL, err = s.blobs.Upload(ctx, p.ImagePath, req.Image, blob.ContentType(p.ImagePath))
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	uploaded = append(uploaded, p.ImagePath)

	qr, err := qrencode.RenderPNG(id, s.opts.QR)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}
	if s.opts.PersistQR {
		key := blob.QRKey(id)
		p.QRCodeURL, err = s.blobs.Upload(ctx, key, qr, "image/png")
		if err != nil {
			return nil, fmt.Errorf("upload qr code: %w", err)
		}
		p.QRCodePath = key
		uploaded = append(uploaded, key)
	}

	p.CreatedAt = s.opts.Clock.Now()
	if err = s.records.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}

	s.log.Info("product registered", zap.String("id", id), zap.String("category", p.Category))
	s.opts.Notifier.Publish(Event{Type: EventProductCreated, ProductID: id, Product: p, Time: p.CreatedAt})
	return &Registration{Product: p, QRCode: qr}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Product, error) {
	return s.records.Get(ctx, id)
}

// List returns products newest first, optionally filtered by category.
func (s *Service) List(ctx context.Context, f records.Filter) ([]models.Product, error) {
	return s.records.List(ctx, f)
}

// QRCode returns the stored QR artifact, regenerating it when none was
// persisted or the blob has gone missing.
func (s *Service) QRCode(ctx context.Context, id string) ([]byte, *models.Product, error) {
	p, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if p.QRCodePath != "" {
		data, err := s.blobs.Download(ctx, p.QRCodePath)
		if err == nil {
			return data, p, nil
		}
		if !errors.Is(err, blob.ErrNotFound) {
			return nil, nil, fmt.Errorf("load qr code: %w", err)
		}
		s.log.Warn("stored qr code missing, regenerating", zap.String("id", id))
	}
	qr, err := qrencode.RenderPNG(p.ID, s.opts.QR)
	if err != nil {
		return nil, nil, fmt.Errorf("render qr code: %w", err)
	}
	return qr, p, nil
}

// Image returns the product photo and its content type.
func (s *Service) Image(ctx context.Context, id string) ([]byte, string, error) {
	p, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	data, err := s.blobs.Download(ctx, p.ImagePath)
	if err != nil {
		return nil, "", fmt.Errorf("load image: %w", err)
	}
	return data, blob.ContentType(p.ImagePath), nil
}

// RequestDelete issues a confirmation token for deleting id.
func (s *Service) RequestDelete(ctx context.Context, id string) (string, time.Time, error) {
	if _, err := s.records.Get(ctx, id); err != nil {
		return "", time.Time{}, err
	}
	return utils.GenerateDeleteToken(id, s.opts.ConfirmSecret, s.opts.ConfirmTTL, s.opts.Clock.Now())
}

// Delete removes the record, then its blobs. A blob that cannot be removed
// yields ErrBlobCleanup; the record stays deleted.
func (s *Service) Delete(ctx context.Context, id, token string) error {
	if err := utils.ValidateDeleteToken(token, id, s.opts.ConfirmSecret, s.opts.Clock.Now()); err != nil {
		return err
	}
	p, err := s.records.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.records.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("product deleted", zap.String("id", id))
	s.opts.Notifier.Publish(Event{Type: EventProductDeleted, ProductID: id, Time: s.opts.Clock.Now()})

	if err := s.blobs.Remove(ctx, p.BlobPaths()...); err != nil {
		s.log.Error("blob cleanup failed", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrBlobCleanup, err)
	}
	return nil
}
