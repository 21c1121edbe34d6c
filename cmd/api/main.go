package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xelth-com/qrcatalog/internal/blob"
	"github.com/xelth-com/qrcatalog/internal/catalog"
	"github.com/xelth-com/qrcatalog/internal/config"
	"github.com/xelth-com/qrcatalog/internal/database"
	"github.com/xelth-com/qrcatalog/internal/decoder"
	"github.com/xelth-com/qrcatalog/internal/handlers"
	"github.com/xelth-com/qrcatalog/internal/identifier"
	"github.com/xelth-com/qrcatalog/internal/logging"
	"github.com/xelth-com/qrcatalog/internal/pkg/clock"
	"github.com/xelth-com/qrcatalog/internal/qrencode"
	"github.com/xelth-com/qrcatalog/internal/records"
	"github.com/xelth-com/qrcatalog/internal/services/printer"
	"github.com/xelth-com/qrcatalog/internal/websocket"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Logging
	logger, err := logging.Init(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	// 3. Record store (also the sequential id counter)
	store, closeStore, err := openRecords(cfg)
	if err != nil {
		sugar.Fatalf("Failed to open record store: %v", err)
	}

	// 4. Blob store
	ctx, cancelRun := context.WithCancel(context.Background())
	blobs, media, err := openBlobs(ctx, cfg.Storage)
	if err != nil {
		sugar.Fatalf("Failed to open blob store: %v", err)
	}

	ids, err := identifier.New(cfg.IDScheme, store)
	if err != nil {
		sugar.Fatalf("Failed to create identifier allocator: %v", err)
	}
	level, err := qrencode.ParseLevel(cfg.QR.Level)
	if err != nil {
		sugar.Fatalf("Invalid QR_LEVEL: %v", err)
	}

	// 5. Event hub and catalog
	hub := websocket.NewHub()
	go hub.Run(ctx)

	dec := decoder.NewDefault(logger.Named("decoder"))
	svc := catalog.NewService(ids, store, blobs, dec, catalog.Options{
		QR:            qrencode.Options{Level: level, ModuleSize: cfg.QR.ModuleSize, Border: cfg.QR.Border},
		PersistQR:     cfg.QR.Persist,
		ConfirmSecret: cfg.ConfirmSecret,
		ConfirmTTL:    cfg.ConfirmTTL,
		ScanDebounce:  cfg.ScanDebounce,
		Clock:         clock.NewRealClock(),
		Notifier:      hub,
		Logger:        logger.Named("catalog"),
	})

	// 6. HTTP router
	router := handlers.NewRouter(handlers.Deps{
		Catalog:        svc,
		Hub:            hub,
		Strategies:     dec.Strategies(),
		Labels:         printer.DefaultLabelConfig(),
		MaxUploadBytes: cfg.MaxUploadBytes,
		Media:          media,
		MediaPrefix:    cfg.Storage.PublicURL,
		Logger:         logger.Named("http"),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sugar.Infof("🚀 Server starting on port %s [ids: %s, records: %s, blobs: %s]",
			cfg.Port, cfg.IDScheme, cfg.RecordBackend, cfg.Storage.Backend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	sugar.Warnf("⚠️  Received signal: %v. Shutting down gracefully...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		sugar.Errorf("HTTP server shutdown error: %v", err)
	}
	cancelRun()

	if c, ok := blobs.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			sugar.Errorf("Blob store close error: %v", err)
		}
	}

	sugar.Info("🛑 Closing record store...")
	if err := closeStore(); err != nil {
		sugar.Errorf("Record store close error: %v", err)
	}

	sugar.Info("✅ Shutdown complete")
}

// openRecords returns the configured record store and a closer that also
// stops an embedded database.
func openRecords(cfg *config.Config) (records.Store, func() error, error) {
	if cfg.RecordBackend == "bolt" {
		zap.S().Infof("📦 Mode: [bbolt] - Opening %s", cfg.BoltPath)
		s, err := records.OpenBoltStore(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	zap.S().Info("🚀 Synchronizing database schema...")
	s, err := records.NewGormStore(db.DB)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	zap.S().Info("✅ Schema synchronized successfully")
	return s, db.Close, nil
}

// openBlobs returns the blob store and, for the file backend, the handler
// that serves it.
func openBlobs(ctx context.Context, cfg config.StorageConfig) (blob.Store, http.Handler, error) {
	switch cfg.Backend {
	case "gcs":
		s, err := blob.NewGCSStore(ctx, cfg.Bucket, cfg.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case "fs":
		s, err := blob.NewFileStore(cfg.Dir, cfg.PublicURL)
		if err != nil {
			return nil, nil, err
		}
		zap.S().Infof("🗂️  Blob storage: %s (served at %s)", cfg.Dir, cfg.PublicURL)
		return s, s.Handler(), nil
	}
	return nil, nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
}
