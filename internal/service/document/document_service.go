// Package document runs the PDF to text conversion of one document.
package document

import (
	"context"
	"image"

	"github.com/feichai0017/pdf-ocr/internal/agent/document/ocr"
	"github.com/feichai0017/pdf-ocr/internal/agent/document/pdf"
	"github.com/feichai0017/pdf-ocr/internal/models"
	"github.com/feichai0017/pdf-ocr/pkg/storage"
	"github.com/feichai0017/pdf-ocr/pkg/worker"
)

type DocumentConverter interface {
	Run(ctx context.Context) (*models.RunSummary, error)
	Close() error
}

type MetadataReader interface {
	Inspect(path string) (models.DocumentMetadata, error)
}

type PagePreprocessor interface {
	Process(img image.Image) (*image.Gray, error)
}

type PageWriter interface {
	WritePage(ctx context.Context, index int, img *image.Gray, text string) (models.PageResult, error)
}

// Dependencies are the stages a Converter drives. Inspector and Store are
// optional; without a Store no run summary is written.
type Dependencies struct {
	Inspector    MetadataReader
	Rasterizer   pdf.Rasterizer
	HelperDir    string
	Preprocessor PagePreprocessor
	Recognizer   ocr.TextRecognizer
	Writer       PageWriter
	Store        storage.Storage
	Pool         *worker.Pool
}
