package models

import (
	"time"
)

// Product is a catalog entry. Records are written once and never updated in place.
// Standardized: Go (PascalCase) -> DB (snake_case) -> JSON (camelCase)
type Product struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Category    string    `gorm:"index;type:varchar(64)" json:"category,omitempty"`
	Name        string    `gorm:"type:varchar(50);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"column:creation_date;index;not null" json:"createdAt"`

	ImageURL  string `json:"imageUrl"`
	ImagePath string `json:"-"`
	// Empty when QR artifacts are regenerated on demand instead of stored.
	QRCodeURL  string `gorm:"column:qr_code_url" json:"qrCodeUrl,omitempty"`
	QRCodePath string `gorm:"column:qr_code_path" json:"-"`
}

// TableName specifies the table name for Product model
func (Product) TableName() string {
	return "products"
}

// BlobPaths lists every blob key owned by the product.
func (p Product) BlobPaths() []string {
	paths := make([]string, 0, 2)
	if p.ImagePath != "" {
		paths = append(paths, p.ImagePath)
	}
	if p.QRCodePath != "" {
		paths = append(paths, p.QRCodePath)
	}
	return paths
}

// CategoryCounter tracks how many sequential identifiers a category has issued.
type CategoryCounter struct {
	Category string `gorm:"primaryKey;type:varchar(64)"`
	Issued   uint64 `gorm:"not null;default:0"`
}

func (CategoryCounter) TableName() string {
	return "category_counters"
}
