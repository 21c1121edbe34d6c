// Package blob stores product images and rendered QR codes under flat keys.
package blob

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	ErrNotFound    = errors.New("blob not found")
	ErrExists      = errors.New("blob already exists")
	ErrInvalidPath = errors.New("invalid blob path")
)

// Store is the blob backend. Upload never overwrites an existing key.
type Store interface {
	// Upload writes data under key and returns its public URL.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	// Remove deletes every key. Missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error
	URL(key string) string
}

// ImageKey is "<id>.<ext>" with ext taken from the uploaded filename.
func ImageKey(id, filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	return id + "." + ext
}

// QRKey is "<id>_qrcode.png".
func QRKey(id string) string {
	return id + "_qrcode.png"
}

// ContentType maps an image key to its MIME type.
func ContentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	}
	return "application/octet-stream"
}

func validateKey(key string) error {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, key)
	}
	return nil
}
