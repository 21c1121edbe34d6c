package blob

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "100001.jpg", ImageKey("100001", "Photo.JPG"))
	assert.Equal(t, "100001.jpeg", ImageKey("100001", "shot.final.jpeg"))
	assert.Equal(t, "100001_qrcode.png", QRKey("100001"))

	assert.Equal(t, "image/png", ContentType("a.png"))
	assert.Equal(t, "image/jpeg", ContentType("a.JPG"))
	assert.Equal(t, "application/octet-stream", ContentType("a.bin"))
}

func TestValidateKey(t *testing.T) {
	for _, key := range []string{"", ".", "..", "../x.png", "a/b.png", `a\b.png`, "x..png"} {
		assert.ErrorIs(t, validateKey(key), ErrInvalidPath, key)
	}
	assert.NoError(t, validateKey("100001_qrcode.png"))
}

func TestFileStoreRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), "/media/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := s.Upload(ctx, "100001.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/media/100001.png", url)

	ok, err := s.Exists(ctx, "100001.png")
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := s.Download(ctx, "100001.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	_, err = s.Upload(ctx, "100001.png", []byte("other"), "image/png")
	assert.ErrorIs(t, err, ErrExists)
	data, err = s.Download(ctx, "100001.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data, "existing blob must not be overwritten")

	require.NoError(t, s.Remove(ctx, "100001.png", "missing.png"))
	ok, err = s.Exists(ctx, "100001.png")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Download(ctx, "100001.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), "/media")
	require.NoError(t, err)

	_, err = s.Upload(context.Background(), "../escape.png", []byte("x"), "image/png")
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.ErrorIs(t, s.Remove(context.Background(), "../escape.png"), ErrInvalidPath)
}

func TestFileStoreHandler(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), "/media")
	require.NoError(t, err)
	_, err = s.Upload(context.Background(), "100001_qrcode.png", []byte("qr"), "image/png")
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/media/100001_qrcode.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "qr", string(body))
}

func TestMountPath(t *testing.T) {
	assert.Equal(t, "/media", MountPath("/media"))
	assert.Equal(t, "/media", MountPath("/media/"))
	assert.Equal(t, "/media", MountPath("https://cdn.example.com/media"))
	assert.Equal(t, "/static/blobs", MountPath("http://localhost:3210/static/blobs/"))
	assert.Equal(t, "", MountPath("https://cdn.example.com"))
}

func TestFileStoreHandlerAbsoluteURL(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), "https://cdn.example.com/media")
	require.NoError(t, err)
	locator, err := s.Upload(context.Background(), "100001.png", []byte("photo"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/media/100001.png", locator)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/media/100001.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "photo", string(body))
}
