// Package gosseract recognizes text in-process through libtesseract.
package gosseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/feichai0017/pdf-ocr/config"
	"github.com/feichai0017/pdf-ocr/internal/agent/document/ocr"
	"github.com/feichai0017/pdf-ocr/internal/models"
	"github.com/feichai0017/pdf-ocr/pkg/logger"
)

// EngineName names this engine in errors and logs.
const EngineName = "gosseract"

// Engine is a libtesseract recognizer. A fresh client is created per page.
type Engine struct {
	tessdataDir   string
	languages     []string
	oem           int
	psm           gosseract.PageSegMode
	logger        logger.Logger
	clientFactory func() *gosseract.Client

	configOnce sync.Once
	configDir  string
	configErr  error
}

func New(tessdataDir string, cfg config.OCRConfig, log logger.Logger) *Engine {
	return &Engine{
		tessdataDir:   tessdataDir,
		languages:     cfg.Languages,
		oem:           cfg.OEM,
		psm:           gosseract.PageSegMode(cfg.PSM),
		logger:        log,
		clientFactory: gosseract.NewClient,
	}
}

func (e *Engine) Check(ctx context.Context) error {
	if err := ocr.CheckLanguageData(e.tessdataDir, e.languages); err != nil {
		return &models.OCREngineError{Engine: EngineName, Err: err}
	}
	return nil
}

// engineModeConfig is a tesseract config file selecting the OCR engine
// mode; the mode can only be set when the engine is initialized.
func engineModeConfig(oem int) string {
	return fmt.Sprintf("tessedit_ocr_engine_mode %d\n", oem)
}

func (e *Engine) configFile() (string, error) {
	e.configOnce.Do(func() {
		dir, err := os.MkdirTemp("", "pdfocr-tess-*")
		if err != nil {
			e.configErr = err
			return
		}
		path := filepath.Join(dir, "oem")
		if err := os.WriteFile(path, []byte(engineModeConfig(e.oem)), 0644); err != nil {
			e.configErr = err
			return
		}
		e.configDir = dir
	})
	if e.configErr != nil {
		return "", e.configErr
	}
	return filepath.Join(e.configDir, "oem"), nil
}

func (e *Engine) Recognize(ctx context.Context, img *image.Gray) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := e.recognize(img)
	if err != nil {
		return "", &models.OCREngineError{Engine: EngineName, Err: err}
	}
	return text, nil
}

func (e *Engine) recognize(img *image.Gray) (string, error) {
	configPath, err := e.configFile()
	if err != nil {
		return "", fmt.Errorf("write engine config: %w", err)
	}

	client := e.clientFactory()
	defer client.Close()

	if err := client.SetTessdataPrefix(e.tessdataDir); err != nil {
		return "", fmt.Errorf("failed to set tessdata prefix: %w", err)
	}
	if err := client.SetLanguage(e.languages...); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(e.psm); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetConfigFile(configPath); err != nil {
		return "", fmt.Errorf("failed to set config file: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to get text: %w", err)
	}
	return text, nil
}

// Close removes the engine config file.
func (e *Engine) Close() error {
	if e.configDir == "" {
		return nil
	}
	return os.RemoveAll(e.configDir)
}
