package pdf

import (
	"context"
	"errors"
	"fmt"

	"github.com/gen2brain/go-fitz"

	"github.com/feichai0017/pdf-ocr/internal/models"
	"github.com/feichai0017/pdf-ocr/pkg/logger"
)

// FitzHelperDir is reported in rasterization errors of the MuPDF backend,
// which has no external helper.
const FitzHelperDir = "(built-in mupdf)"

// FitzRasterizer renders pages in-process with MuPDF.
type FitzRasterizer struct {
	dpi    int
	logger logger.Logger
}

func NewFitzRasterizer(dpi int, log logger.Logger) *FitzRasterizer {
	return &FitzRasterizer{dpi: dpi, logger: log}
}

func (r *FitzRasterizer) Rasterize(ctx context.Context, pdfPath string) ([]models.PageImage, error) {
	pages, err := r.rasterize(ctx, pdfPath)
	if err != nil {
		return nil, &models.RasterizationError{HelperDir: FitzHelperDir, Err: err}
	}
	return pages, nil
}

func (r *FitzRasterizer) rasterize(ctx context.Context, pdfPath string) ([]models.PageImage, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	count := doc.NumPage()
	if count == 0 {
		return nil, errors.New("no pages rendered")
	}

	pages := make([]models.PageImage, 0, count)
	for n := 0; n < count; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(n, float64(r.dpi))
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", n+1, err)
		}
		pages = append(pages, models.PageImage{Index: n + 1, Image: img})
	}

	r.logger.Debug("Rendered document with mupdf", logger.Int("pages", count))
	return pages, nil
}
