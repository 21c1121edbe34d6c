package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xelth-com/qrcatalog/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps products in a relational database (PostgreSQL or SQLite).
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the products and category_counters tables.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&models.Product{}, &models.CategoryCounter{}); err != nil {
		return nil, fmt.Errorf("migrate product tables: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &p, nil
}

func (s *GormStore) Insert(ctx context.Context, p *models.Product) error {
	err := s.db.WithContext(ctx).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert product %s: %w", p.ID, err)
	}
	return nil
}

func (s *GormStore) List(ctx context.Context, f Filter) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Model(&models.Product{})
	if c := strings.ToLower(strings.TrimSpace(f.Category)); c != "" {
		q = q.Where("category = ?", c)
	}

	var products []models.Product
	if err := q.Order("creation_date DESC").Order("id DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return fmt.Errorf("delete product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Next increments the category's counter in one transaction. The UPDATE takes
// the row lock, so concurrent registrations in a category queue up instead of
// reading the same value.
func (s *GormStore) Next(ctx context.Context, category string) (uint64, error) {
	var counter models.CategoryCounter
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.CategoryCounter{Category: category}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}
		res := tx.Model(&models.CategoryCounter{}).
			Where("category = ?", category).
			UpdateColumn("issued", gorm.Expr("issued + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		return tx.Where("category = ?", category).First(&counter).Error
	})
	if err != nil {
		return 0, fmt.Errorf("advance counter for %s: %w", category, err)
	}
	return counter.Issued, nil
}

func (s *GormStore) Close() error { return nil }
