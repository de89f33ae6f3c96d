// Package agent assembles the pipeline stages selected by the configuration.
package agent

import (
	"context"
	"fmt"

	"github.com/feichai0017/pdf-ocr/config"
	"github.com/feichai0017/pdf-ocr/internal/agent/document/image"
	"github.com/feichai0017/pdf-ocr/internal/agent/document/ocr"
	"github.com/feichai0017/pdf-ocr/internal/agent/document/ocr/gosseract"
	"github.com/feichai0017/pdf-ocr/internal/agent/document/output"
	"github.com/feichai0017/pdf-ocr/internal/agent/document/pdf"
	"github.com/feichai0017/pdf-ocr/internal/environment"
	"github.com/feichai0017/pdf-ocr/pkg/logger"
	"github.com/feichai0017/pdf-ocr/pkg/storage"
	"github.com/feichai0017/pdf-ocr/pkg/worker"
)

type ProcessorFactory struct {
	cfg    *config.Config
	env    environment.Environment
	logger logger.Logger
}

func NewProcessorFactory(cfg *config.Config, env environment.Environment, log logger.Logger) *ProcessorFactory {
	return &ProcessorFactory{cfg: cfg, env: env, logger: log}
}

// Rasterizer returns the configured PDF renderer and the helper directory
// it reports in errors.
func (f *ProcessorFactory) Rasterizer() (pdf.Rasterizer, string, error) {
	rc := f.cfg.Rasterizer
	switch rc.Engine {
	case config.RasterizerPoppler:
		return pdf.NewPopplerRasterizer(f.env.Helper.Dir, rc.Helper, rc.DPI, f.logger.Named("pdftoppm")), f.env.Helper.Dir, nil
	case config.RasterizerFitz:
		return pdf.NewFitzRasterizer(rc.DPI, f.logger.Named("fitz")), pdf.FitzHelperDir, nil
	default:
		return nil, "", fmt.Errorf("unknown rasterizer engine: %s", rc.Engine)
	}
}

func (f *ProcessorFactory) Recognizer() (ocr.TextRecognizer, error) {
	switch f.cfg.OCR.Engine {
	case config.OCREngineTesseract:
		return ocr.NewTesseractCLI(f.env.TesseractCmd, f.env.TessdataDir, f.cfg.OCR, f.logger.Named("tesseract")), nil
	case config.OCREngineGosseract:
		return gosseract.New(f.env.TessdataDir, f.cfg.OCR, f.logger.Named("gosseract")), nil
	default:
		return nil, fmt.Errorf("unknown ocr engine: %s", f.cfg.OCR.Engine)
	}
}

func (f *ProcessorFactory) Preprocessor() (*image.Processor, error) {
	return image.NewProcessor(f.logger.Named("preprocess"), f.cfg.Preprocess)
}

func (f *ProcessorFactory) Storage(ctx context.Context) (storage.Storage, error) {
	store, err := storage.NewStorage(ctx, f.cfg, f.logger.Named("storage"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, nil
}

func (f *ProcessorFactory) Writer(store storage.Storage) *output.Writer {
	return output.NewWriter(store, f.logger.Named("output"))
}

func (f *ProcessorFactory) Pool() (*worker.Pool, error) {
	return worker.NewPool(f.cfg.Workers, f.logger.Named("worker"))
}

func (f *ProcessorFactory) Inspector() *pdf.Inspector {
	return pdf.NewInspector(f.logger.Named("inspector"))
}
