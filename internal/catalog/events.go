package catalog

import (
	"time"

	"github.com/xelth-com/qrcatalog/internal/models"
)

const (
	EventProductCreated = "product.created"
	EventProductDeleted = "product.deleted"
	EventProductScanned = "product.scanned"
)

// Event is published after a catalog change or a successful scan.
type Event struct {
	Type      string          `json:"type"`
	ProductID string          `json:"productId"`
	Product   *models.Product `json:"product,omitempty"`
	Time      time.Time       `json:"time"`
}

// Notifier receives catalog events. Publish must not block.
type Notifier interface {
	Publish(Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(Event) {}
