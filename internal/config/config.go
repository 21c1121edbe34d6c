package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/xelth-com/qrcatalog/internal/identifier"
)

// Config holds all application configuration
type Config struct {
	NodeEnv        string
	Port           string
	ConfirmSecret  string
	ConfirmTTL     time.Duration
	ScanDebounce   time.Duration
	MaxUploadBytes int64
	RecordBackend  string // gorm | bolt
	BoltPath       string
	Database       DatabaseConfig
	Storage        StorageConfig
	IDScheme       identifier.Scheme
	QR             QRConfig
	Logger         LoggerConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver     string // postgres | sqlite
	Host       string
	Port       string
	Username   string
	Password   string
	Database   string
	Alter      bool
	SQLitePath string
	DataPath   string // embedded postgres data directory
}

// StorageConfig selects where product photos and QR artifacts live
type StorageConfig struct {
	Backend         string // fs | gcs
	Dir             string
	PublicURL       string
	Bucket          string
	CredentialsFile string
}

// QRConfig controls QR rendering and whether rendered codes are stored
type QRConfig struct {
	Level      string
	ModuleSize int
	Border     int
	Persist    bool
}

// LoggerConfig mirrors the zap/lumberjack setup
type LoggerConfig struct {
	Mode       string // production | development
	FileEnable bool
	Filename   string
}

// IsProduction reports whether NODE_ENV is production
func (c *Config) IsProduction() bool {
	return c.NodeEnv == "production"
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	nodeEnv := getEnv("NODE_ENV", "development")

	secret := os.Getenv("CONFIRM_SECRET")
	if secret == "" {
		if nodeEnv == "production" {
			return nil, fmt.Errorf("CONFIRM_SECRET is required")
		}
		secret = randomSecret()
	}

	scheme, err := identifier.ParseScheme(getEnv("ID_SCHEME", string(identifier.SchemeRandom)))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		NodeEnv:        nodeEnv,
		Port:           getEnv("PORT", "3210"),
		ConfirmSecret:  secret,
		ConfirmTTL:     cast.ToDuration(getEnv("CONFIRM_TTL", "5m")),
		ScanDebounce:   cast.ToDuration(getEnv("SCAN_DEBOUNCE", "3s")),
		MaxUploadBytes: cast.ToInt64(getEnv("MAX_UPLOAD_MB", "10")) << 20,
		RecordBackend:  strings.ToLower(getEnv("RECORD_BACKEND", "gorm")),
		BoltPath:       getEnv("BOLT_PATH", "./data/products.bolt"),
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:       getEnv("PG_HOST", "localhost"),
			Port:       getEnv("PG_PORT", "5432"),
			Username:   getEnv("PG_USERNAME", "postgres"),
			Password:   os.Getenv("PG_PASSWORD"),
			Database:   getEnv("PG_DATABASE", "qrcatalog"),
			Alter:      cast.ToBool(getEnv("DB_ALTER", "false")),
			SQLitePath: getEnv("SQLITE_PATH", "./data/products.db"),
			DataPath:   getEnv("PG_EMBEDDED_DATA", "./db_data"),
		},
		Storage: StorageConfig{
			Backend:         strings.ToLower(getEnv("BLOB_BACKEND", "fs")),
			Dir:             getEnv("BLOB_DIR", "./product_images"),
			PublicURL:       getEnv("BLOB_PUBLIC_URL", "/media"),
			Bucket:          os.Getenv("GCS_BUCKET"),
			CredentialsFile: os.Getenv("GCS_CREDENTIALS_FILE"),
		},
		IDScheme: scheme,
		QR: QRConfig{
			Level:      getEnv("QR_LEVEL", "H"),
			ModuleSize: cast.ToInt(getEnv("QR_MODULE_SIZE", "20")),
			Border:     cast.ToInt(getEnv("QR_BORDER", "6")),
			Persist:    cast.ToBool(getEnv("QR_PERSIST", "true")),
		},
		Logger: LoggerConfig{
			Mode:       getEnv("LOG_MODE", "development"),
			FileEnable: cast.ToBool(getEnv("LOG_FILE_ENABLE", "false")),
			Filename:   getEnv("LOG_FILE", "./logs/qrcatalog.log"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.RecordBackend {
	case "gorm", "bolt":
	default:
		return fmt.Errorf("RECORD_BACKEND must be gorm or bolt, got %q", c.RecordBackend)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver)
	}
	switch c.Storage.Backend {
	case "fs":
	case "gcs":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("GCS_BUCKET is required for the gcs blob backend")
		}
	default:
		return fmt.Errorf("BLOB_BACKEND must be fs or gcs, got %q", c.Storage.Backend)
	}
	if c.QR.ModuleSize <= 0 {
		return fmt.Errorf("QR_MODULE_SIZE must be positive")
	}
	if c.ConfirmTTL <= 0 {
		return fmt.Errorf("CONFIRM_TTL must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
