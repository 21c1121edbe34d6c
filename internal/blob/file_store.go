package blob

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FileStore keeps blobs in a local directory served under a URL prefix.
type FileStore struct {
	root      string
	publicURL string
}

func NewFileStore(root, publicURL string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory %s: %w", root, err)
	}
	return &FileStore{root: root, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *FileStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	p := filepath.Join(s.root, key)

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return "", fmt.Errorf("%w: %s", ErrExists, key)
	}
	if err != nil {
		return "", fmt.Errorf("create blob %s: %w", key, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(p)
		return "", fmt.Errorf("write blob %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(p)
		return "", fmt.Errorf("close blob %s: %w", key, err)
	}
	return s.URL(key), nil
}

func (s *FileStore) Download(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.root, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}
	return data, nil
}

func (s *FileStore) Exists(_ context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	_, err := os.Stat(filepath.Join(s.root, key))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat blob %s: %w", key, err)
	}
	return true, nil
}

func (s *FileStore) Remove(_ context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		if err := validateKey(key); err != nil {
			errs = append(errs, err)
			continue
		}
		err := os.Remove(filepath.Join(s.root, key))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove blob %s: %w", key, err))
			continue
		}
		zap.S().Debugf("🗑️  Removed blob %s", key)
	}
	return errors.Join(errs...)
}

func (s *FileStore) URL(key string) string {
	return s.publicURL + "/" + key
}

// Handler serves stored blobs; mount it under MountPath(publicURL).
func (s *FileStore) Handler() http.Handler {
	return http.StripPrefix(MountPath(s.publicURL)+"/", http.FileServer(http.Dir(s.root)))
}

// MountPath is the local route prefix for a public URL. An absolute URL such
// as https://host/media mounts at /media; a bare path is used as is.
func MountPath(publicURL string) string {
	if u, err := url.Parse(publicURL); err == nil {
		publicURL = u.Path
	}
	return strings.TrimRight(publicURL, "/")
}
