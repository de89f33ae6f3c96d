package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/pdf-ocr/internal/models"
	"github.com/feichai0017/pdf-ocr/pkg/logger"
)

func writePDF(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.pdf")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestFitzRasterizer_RendersPagesInOrder(t *testing.T) {
	path := writePDF(t, minimalPDF(2, "ND-820"))

	pages, err := NewFitzRasterizer(72, logger.NewTestLogger()).Rasterize(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	for i, page := range pages {
		assert.Equal(t, i+1, page.Index)
	}

	// 612x792pt media box
	b := pages[0].Image.Bounds()
	assert.InDelta(t, 612, b.Dx(), 1)
	assert.InDelta(t, 792, b.Dy(), 1)

	doubled, err := NewFitzRasterizer(144, logger.NewTestLogger()).Rasterize(context.Background(), path)
	require.NoError(t, err)
	db := doubled[1].Image.Bounds()
	assert.InDelta(t, 2*612, db.Dx(), 2)
	assert.InDelta(t, 2*792, db.Dy(), 2)
}

func TestFitzRasterizer_CorruptFile(t *testing.T) {
	path := writePDF(t, []byte("this is not a pdf"))

	_, err := NewFitzRasterizer(72, logger.NewTestLogger()).Rasterize(context.Background(), path)

	var rasterErr *models.RasterizationError
	require.True(t, errors.As(err, &rasterErr))
	assert.Equal(t, FitzHelperDir, rasterErr.HelperDir)
}

func TestFitzRasterizer_NoPages(t *testing.T) {
	path := writePDF(t, minimalPDF(0, "empty"))

	pages, err := NewFitzRasterizer(72, logger.NewTestLogger()).Rasterize(context.Background(), path)

	var rasterErr *models.RasterizationError
	require.True(t, errors.As(err, &rasterErr))
	assert.Empty(t, pages)
}

func TestFitzRasterizer_CancelledContext(t *testing.T) {
	path := writePDF(t, minimalPDF(1, "ND-820"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFitzRasterizer(72, logger.NewTestLogger()).Rasterize(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}
