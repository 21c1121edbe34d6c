package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/qrcatalog/internal/qrencode"
)

func writeQR(t *testing.T, dir, name, payload string) string {
	t.Helper()
	png, err := qrencode.RenderPNG(payload, qrencode.Options{Level: qrcode.Medium, ModuleSize: 4, Border: 4})
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, png, 0o644))
	return path
}

func TestRunFound(t *testing.T) {
	dir := t.TempDir()
	path := writeQR(t, dir, "code.png", "100001")

	var out, errOut bytes.Buffer
	code := run([]string{"-scheme", "sequential", path}, &out, &errOut)

	assert.Equal(t, 0, code, errOut.String())
	assert.Equal(t, path+"\tfound\t100001\n", out.String())
}

func TestRunMixed(t *testing.T) {
	dir := t.TempDir()
	good := writeQR(t, dir, "code.png", "abc")
	junk := filepath.Join(dir, "junk.png")
	require.NoError(t, os.WriteFile(junk, []byte("not an image"), 0o644))

	var out, errOut bytes.Buffer
	code := run([]string{"-json", "-scheme", "sequential", good, junk, filepath.Join(dir, "missing.png")}, &out, &errOut)

	assert.Equal(t, 1, code)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"status":"invalid_payload"`)
	assert.Contains(t, lines[0], `"payload":"abc"`)
	assert.Contains(t, lines[1], `"status":"no_code"`)
	assert.Contains(t, lines[2], `"status":"error"`)
}

func TestRunUsage(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, 2, run(nil, &out, &errOut))
	assert.Contains(t, errOut.String(), "usage")

	assert.Equal(t, 2, run([]string{"-scheme", "bogus", "x.png"}, &out, &errOut))
}
