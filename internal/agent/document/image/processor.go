// Package image prepares rasterized pages for OCR.
package image

import (
	"fmt"
	"image"
	"time"

	"github.com/feichai0017/pdf-ocr/config"
	"github.com/feichai0017/pdf-ocr/pkg/logger"
)

// ImageFilter is one preprocessing step.
type ImageFilter interface {
	Process(img image.Image) (image.Image, error)
}

// Processor runs a fixed chain of filters and guarantees a single-channel
// result the size of its input.
type Processor struct {
	logger  logger.Logger
	filters []ImageFilter
}

// NewProcessor builds the grayscale, denoise, CLAHE, Otsu chain.
func NewProcessor(log logger.Logger, cfg config.PreprocessConfig) (*Processor, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return NewProcessorWithFilters(log,
		NewGrayscaleFilter(),
		NewDenoiseFilter(cfg.DenoiseStrength, cfg.TemplateWindow, cfg.SearchWindow),
		NewCLAHEFilter(cfg.ClipLimit, cfg.TileGridX, cfg.TileGridY),
		NewOtsuFilter(),
	), nil
}

func NewProcessorWithFilters(log logger.Logger, filters ...ImageFilter) *Processor {
	return &Processor{
		logger:  log,
		filters: filters,
	}
}

// Process applies every filter in order. It does not modify img.
func (p *Processor) Process(img image.Image) (*image.Gray, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	want := img.Bounds().Size()

	var err error
	result := img
	for _, filter := range p.filters {
		start := time.Now()
		result, err = filter.Process(result)
		if err != nil {
			return nil, fmt.Errorf("preprocessing failed at %T: %w", filter, err)
		}
		if result == nil {
			return nil, fmt.Errorf("%T returned nil image", filter)
		}
		p.logger.Debug("Filter applied",
			logger.String("filter", fmt.Sprintf("%T", filter)),
			logger.Duration("elapsed", time.Since(start)),
		)
	}

	gray := toGray(result)
	if got := gray.Bounds().Size(); got != want {
		return nil, fmt.Errorf("preprocessing changed image size from %v to %v", want, got)
	}
	return gray, nil
}
