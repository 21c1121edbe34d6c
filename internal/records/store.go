// Package records persists product records. Both backends also act as the
// atomic per-category counter behind sequential identifiers.
package records

import (
	"context"
	"errors"
	"sort"

	"github.com/xelth-com/qrcatalog/internal/identifier"
	"github.com/xelth-com/qrcatalog/internal/models"
)

var (
	ErrNotFound  = errors.New("product not found")
	ErrDuplicate = errors.New("product id already exists")
)

// Filter narrows List. Zero value lists everything.
type Filter struct {
	Category string
}

// Store is the record store used by the catalog service.
type Store interface {
	identifier.Counter

	Get(ctx context.Context, id string) (*models.Product, error)
	Insert(ctx context.Context, p *models.Product) error
	// List returns newest first.
	List(ctx context.Context, f Filter) ([]models.Product, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// sortNewestFirst orders by creation time descending, id descending on ties.
func sortNewestFirst(products []models.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		}
		return products[i].ID > products[j].ID
	})
}
