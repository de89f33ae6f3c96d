package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/feichai0017/pdf-ocr/config"
	"github.com/feichai0017/pdf-ocr/internal/models"
	"github.com/feichai0017/pdf-ocr/pkg/logger"
)

// EngineTesseract names the command-line engine in errors and logs.
const EngineTesseract = "tesseract"

// TesseractCLI runs the tesseract executable once per page.
type TesseractCLI struct {
	binary      string
	tessdataDir string
	languages   []string
	oem         int
	psm         int
	logger      logger.Logger
}

func NewTesseractCLI(binary, tessdataDir string, cfg config.OCRConfig, log logger.Logger) *TesseractCLI {
	return &TesseractCLI{
		binary:      binary,
		tessdataDir: tessdataDir,
		languages:   cfg.Languages,
		oem:         cfg.OEM,
		psm:         cfg.PSM,
		logger:      log,
	}
}

// Args returns the command line used to recognize imagePath.
func (t *TesseractCLI) Args(imagePath string) []string {
	return []string{
		imagePath, "stdout",
		"-l", strings.Join(t.languages, "+"),
		"--tessdata-dir", t.tessdataDir,
		"--psm", strconv.Itoa(t.psm),
		"--oem", strconv.Itoa(t.oem),
	}
}

// Check verifies that the binary is executable and the language data exists.
func (t *TesseractCLI) Check(ctx context.Context) error {
	if _, err := exec.LookPath(t.binary); err != nil {
		return &models.OCREngineError{Engine: EngineTesseract, Err: err}
	}
	if err := CheckLanguageData(t.tessdataDir, t.languages); err != nil {
		return &models.OCREngineError{Engine: EngineTesseract, Err: err}
	}
	return nil
}

func (t *TesseractCLI) Recognize(ctx context.Context, img *image.Gray) (string, error) {
	tmp, err := os.CreateTemp("", "pdfocr-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encode temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write temp image: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.binary, t.Args(tmp.Name())...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return "", &models.OCREngineError{Engine: EngineTesseract, Err: err}
	}

	if stderr.Len() > 0 {
		t.logger.Debug("Tesseract diagnostics", logger.String("stderr", strings.TrimSpace(stderr.String())))
	}
	return stdout.String(), nil
}
