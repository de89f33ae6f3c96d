package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/feichai0017/pdf-ocr/config"
	"github.com/feichai0017/pdf-ocr/internal/agent/document/ocr"
	"github.com/feichai0017/pdf-ocr/internal/environment"
	"github.com/feichai0017/pdf-ocr/internal/models"
	"github.com/feichai0017/pdf-ocr/internal/utils/validator"
	"github.com/feichai0017/pdf-ocr/pkg/converters"
	"github.com/feichai0017/pdf-ocr/pkg/logger"
)

type Converter struct {
	cfg       *config.Config
	env       environment.Environment
	deps      Dependencies
	validator *validator.DocumentValidator
	converter *converters.JSONConverter
	logger    logger.Logger
}

func NewConverter(cfg *config.Config, env environment.Environment, deps Dependencies, log logger.Logger) (*Converter, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("config is required")
	case log == nil:
		return nil, errors.New("logger is required")
	case deps.Rasterizer == nil, deps.Preprocessor == nil, deps.Recognizer == nil, deps.Writer == nil:
		return nil, errors.New("rasterizer, preprocessor, recognizer and writer are required")
	case deps.Pool == nil:
		return nil, errors.New("worker pool is required")
	}

	return &Converter{
		cfg:       cfg,
		env:       env,
		deps:      deps,
		validator: validator.NewDocumentValidator(log),
		converter: converters.NewJSONConverter(),
		logger:    log,
	}, nil
}

// Run converts the configured PDF. Page i yields page_i.txt and
// debug_page_i.png. The first failing page aborts the run; files written for
// earlier pages are kept.
func (c *Converter) Run(ctx context.Context) (*models.RunSummary, error) {
	summary := &models.RunSummary{
		RunID:     uuid.New().String(),
		HelperDir: c.deps.HelperDir,
		DPI:       c.cfg.Rasterizer.DPI,
		Languages: c.cfg.OCR.LanguageSpec(),
		StartedAt: time.Now(),
	}
	log := c.logger.With(logger.String("run_id", summary.RunID))
	ctx = logger.IntoContext(ctx, log)

	switch {
	case c.cfg.Rasterizer.Engine != config.RasterizerPoppler:
	case c.env.Helper.Found:
		log.Debug("Rasterization helper located", logger.String("dir", c.env.Helper.Dir))
	default:
		log.Warn("Rasterization helper not on PATH",
			logger.String("fallback_dir", c.env.Helper.Dir),
			logger.String("reason", c.env.Helper.Reason),
		)
	}

	pdfPath, err := c.validator.ValidateInput(c.cfg.Input.Path)
	if err != nil {
		return nil, err
	}
	summary.Document = c.inspect(log, pdfPath)

	if c.cfg.Output.Storage == config.StorageLocal {
		if err := c.validator.EnsureOutputDir(c.cfg.Output.Dir); err != nil {
			return nil, err
		}
	}

	if checker, ok := c.deps.Recognizer.(ocr.Checker); ok {
		if err := checker.Check(ctx); err != nil {
			return nil, fmt.Errorf("ocr: %w", err)
		}
	}

	log.Info("Rasterizing document",
		logger.String("path", pdfPath),
		logger.Int("dpi", c.cfg.Rasterizer.DPI),
	)
	pages, err := c.deps.Rasterizer.Rasterize(ctx, pdfPath)
	if err != nil {
		return nil, fmt.Errorf("rasterize: %w", err)
	}
	// the rasterizer's page count wins
	if want := summary.Document.Pages; want > 0 && want != len(pages) {
		log.Warn("Rendered page count differs from the PDF page tree",
			logger.Int("rendered", len(pages)),
			logger.Int("page_tree", want),
		)
	}
	log.Info("Document rasterized", logger.Int("pages", len(pages)))

	results := make([]models.PageResult, len(pages))
	err = c.deps.Pool.Run(ctx, len(pages), func(ctx context.Context, i int) error {
		result, err := c.processPage(ctx, pages[i])
		if err != nil {
			return err
		}
		pages[i].Image = nil
		results[i] = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary.Pages = results
	summary.FinishedAt = time.Now()

	if c.cfg.Output.Summary && c.deps.Store != nil {
		if err := c.writeSummary(ctx, summary); err != nil {
			return nil, fmt.Errorf("write: %w", err)
		}
	}

	log.Info("Conversion finished",
		logger.Int("pages", len(results)),
		logger.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	return summary, nil
}

// inspect never fails the run; metadata only feeds logs, the page-count
// warning and the summary.
func (c *Converter) inspect(log logger.Logger, pdfPath string) models.DocumentMetadata {
	if c.deps.Inspector == nil {
		return models.DocumentMetadata{Path: pdfPath}
	}
	meta, err := c.deps.Inspector.Inspect(pdfPath)
	if err != nil {
		log.Warn("Could not read PDF metadata", logger.String("path", pdfPath), logger.Error(err))
		return models.DocumentMetadata{Path: pdfPath}
	}
	log.Info("Input document",
		logger.String("path", meta.Path),
		logger.Int("pages", meta.Pages),
		logger.String("title", meta.Title),
		logger.Int64("size", meta.FileSize),
	)
	return meta
}

func (c *Converter) processPage(ctx context.Context, page models.PageImage) (models.PageResult, error) {
	log := logger.FromContext(ctx, c.logger)
	start := time.Now()

	binary, err := c.deps.Preprocessor.Process(page.Image)
	if err != nil {
		return models.PageResult{}, fmt.Errorf("preprocess page %d: %w", page.Index, err)
	}

	text, err := c.deps.Recognizer.Recognize(ctx, binary)
	if err != nil {
		var engineErr *models.OCREngineError
		if errors.As(err, &engineErr) && engineErr.Page == 0 {
			engineErr.Page = page.Index
		}
		return models.PageResult{}, fmt.Errorf("ocr page %d: %w", page.Index, err)
	}

	result, err := c.deps.Writer.WritePage(ctx, page.Index, binary, text)
	if err != nil {
		return models.PageResult{}, fmt.Errorf("write page %d: %w", page.Index, err)
	}
	result.Elapsed = time.Since(start)

	log.Info("Page processed",
		logger.Int("page", page.Index),
		logger.Int("characters", result.Characters),
		logger.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func (c *Converter) writeSummary(ctx context.Context, summary *models.RunSummary) error {
	data, err := c.converter.Convert(summary)
	if err != nil {
		return err
	}
	if _, err := c.deps.Store.Store(ctx, bytes.NewReader(data), converters.SummaryFileName); err != nil {
		return &models.FilesystemError{Op: "write", Path: converters.SummaryFileName, Err: err}
	}
	return nil
}

// Close releases resources held by the stages, such as engine scratch files.
func (c *Converter) Close() error {
	var errs []error
	for _, stage := range []any{c.deps.Rasterizer, c.deps.Recognizer} {
		if closer, ok := stage.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}
