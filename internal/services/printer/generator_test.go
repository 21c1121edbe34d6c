package printer

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/qrcatalog/internal/models"
)

func products(n int) []models.Product {
	out := make([]models.Product, n)
	for i := range out {
		out[i] = models.Product{ID: fmt.Sprintf("%d", 100001+i), Name: fmt.Sprintf("Produção %d", i)}
	}
	return out
}

func TestGenerateLabelsPDF(t *testing.T) {
	pdf, err := GenerateLabelsPDF(products(3), DefaultLabelConfig())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestGenerateLabelsPDFPaginates(t *testing.T) {
	cfg := DefaultLabelConfig()
	one, err := GenerateLabelsPDF(products(1), cfg)
	require.NoError(t, err)
	many, err := GenerateLabelsPDF(products(cfg.Cols*cfg.Rows+1), cfg)
	require.NoError(t, err)

	assert.Contains(t, string(one), "/Count 1")
	assert.Contains(t, string(many), "/Count 2")
}

func TestGenerateLabelsPDFErrors(t *testing.T) {
	_, err := GenerateLabelsPDF(nil, DefaultLabelConfig())
	assert.ErrorIs(t, err, ErrNoProducts)

	_, err = GenerateLabelsPDF(products(1), LabelConfig{Cols: 0, Rows: 7})
	assert.Error(t, err)
}
