// Package output persists the per-page artifacts of a run.
package output

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"unicode/utf8"

	"github.com/feichai0017/pdf-ocr/internal/models"
	"github.com/feichai0017/pdf-ocr/pkg/logger"
	"github.com/feichai0017/pdf-ocr/pkg/storage"
)

// Writer stores the debug image and the recognized text of each page.
// Pages target disjoint keys, so a Writer may be shared between workers.
type Writer struct {
	store  storage.Storage
	logger logger.Logger
}

func NewWriter(store storage.Storage, log logger.Logger) *Writer {
	return &Writer{store: store, logger: log}
}

// WritePage writes debug_page_<index>.png and then page_<index>.txt,
// replacing earlier versions.
func (w *Writer) WritePage(ctx context.Context, index int, img *image.Gray, text string) (models.PageResult, error) {
	result := models.PageResult{
		Index:      index,
		Width:      img.Bounds().Dx(),
		Height:     img.Bounds().Dy(),
		Characters: utf8.RuneCountInString(text),
	}

	imageKey := models.DebugImageName(index)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return result, &models.FilesystemError{Op: "encode", Path: imageKey, Err: err}
	}
	loc, err := w.store.Store(ctx, &buf, imageKey)
	if err != nil {
		return result, &models.FilesystemError{Op: "write", Path: imageKey, Err: err}
	}
	result.ImageKey = loc

	textKey := models.TextFileName(index)
	loc, err = w.store.Store(ctx, strings.NewReader(text), textKey)
	if err != nil {
		return result, &models.FilesystemError{Op: "write", Path: textKey, Err: err}
	}
	result.TextKey = loc

	w.logger.Debug("Page written",
		logger.Int("page", index),
		logger.String("text", result.TextKey),
		logger.String("image", result.ImageKey),
	)
	return result, nil
}
