package records

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/xelth-com/qrcatalog/internal/models"
	bolt "go.etcd.io/bbolt"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	productsBucket = []byte("products")
	countersBucket = []byte("category_counters")
)

// boltRecord is the stored form; models.Product hides blob paths from JSON.
type boltRecord struct {
	ID          string    `json:"id"`
	Category    string    `json:"category,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"creation_date"`
	ImageURL    string    `json:"image_url"`
	ImagePath   string    `json:"image_path"`
	QRCodeURL   string    `json:"qr_code_url,omitempty"`
	QRCodePath  string    `json:"qr_code_path,omitempty"`
}

func toBolt(p *models.Product) boltRecord {
	return boltRecord{
		ID: p.ID, Category: p.Category, Name: p.Name, Description: p.Description,
		CreatedAt: p.CreatedAt, ImageURL: p.ImageURL, ImagePath: p.ImagePath,
		QRCodeURL: p.QRCodeURL, QRCodePath: p.QRCodePath,
	}
}

func (r boltRecord) product() models.Product {
	return models.Product{
		ID: r.ID, Category: r.Category, Name: r.Name, Description: r.Description,
		CreatedAt: r.CreatedAt, ImageURL: r.ImageURL, ImagePath: r.ImagePath,
		QRCodeURL: r.QRCodeURL, QRCodePath: r.QRCodePath,
	}
}

// BoltStore keeps products in a single local bbolt file.
type BoltStore struct {
	db *bolt.DB
}

func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create bolt directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(productsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(countersBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init bolt buckets: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(_ context.Context, id string) (*models.Product, error) {
	var rec boltRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(productsBucket).Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &rec)
	})
	if err != nil {
		if err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	p := rec.product()
	return &p, nil
}

func (s *BoltStore) Insert(_ context.Context, p *models.Product) error {
	data, err := json.Marshal(toBolt(p))
	if err != nil {
		return fmt.Errorf("encode product %s: %w", p.ID, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(productsBucket)
		if b.Get([]byte(p.ID)) != nil {
			return ErrDuplicate
		}
		return b.Put([]byte(p.ID), data)
	})
	if err != nil && err != ErrDuplicate {
		return fmt.Errorf("insert product %s: %w", p.ID, err)
	}
	return err
}

func (s *BoltStore) List(_ context.Context, f Filter) ([]models.Product, error) {
	category := strings.ToLower(strings.TrimSpace(f.Category))

	var products []models.Product
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(productsBucket).ForEach(func(_, v []byte) error {
			var rec boltRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if category != "" && rec.Category != category {
				return nil
			}
			products = append(products, rec.product())
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	sortNewestFirst(products)
	return products, nil
}

func (s *BoltStore) Delete(_ context.Context, id string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(productsBucket)
		if b.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(id))
	})
	if err != nil && err != ErrNotFound {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return err
}

// Next uses one nested bucket per category; bbolt's NextSequence is atomic
// because write transactions are serialized.
func (s *BoltStore) Next(_ context.Context, category string) (uint64, error) {
	var n uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket(countersBucket).CreateBucketIfNotExists([]byte(category))
		if err != nil {
			return err
		}
		n, err = b.NextSequence()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("advance counter for %s: %w", category, err)
	}
	return n, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
