package database

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/qrcatalog/internal/config"
	"github.com/xelth-com/qrcatalog/internal/models"
)

func TestConnectSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "products.db")

	db, err := Connect(config.DatabaseConfig{Driver: "sqlite", SQLitePath: path, Alter: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.CategoryCounter{}))
	assert.True(t, db.Migrator().HasTable("products"))
	assert.True(t, db.Migrator().HasTable("category_counters"))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestIsPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port

	assert.True(t, isPortInUse(port))
	ln.Close()
	assert.False(t, isPortInUse(port))
}

func TestCleanupStalePidFile(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "postmaster.pid")
	// pid far above any real process on a test box
	require.NoError(t, os.WriteFile(pidFile, []byte("999999999\n/data\n"), 0o600))

	cleanupStaleEmbeddedPostgres(dir)

	_, err := os.Stat(pidFile)
	assert.True(t, os.IsNotExist(err))
}
