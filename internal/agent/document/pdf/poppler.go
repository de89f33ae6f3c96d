package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/feichai0017/pdf-ocr/internal/models"
	"github.com/feichai0017/pdf-ocr/pkg/logger"
)

// PopplerRasterizer renders pages with poppler's pdftoppm.
type PopplerRasterizer struct {
	helperDir string
	helper    string
	dpi       int
	logger    logger.Logger
}

func NewPopplerRasterizer(helperDir, helper string, dpi int, log logger.Logger) *PopplerRasterizer {
	if helper == "" {
		helper = "pdftoppm"
	}
	return &PopplerRasterizer{
		helperDir: helperDir,
		helper:    helper,
		dpi:       dpi,
		logger:    log,
	}
}

func (r *PopplerRasterizer) Rasterize(ctx context.Context, pdfPath string) ([]models.PageImage, error) {
	pages, err := r.rasterize(ctx, pdfPath)
	if err != nil {
		return nil, &models.RasterizationError{HelperDir: r.helperDir, Err: err}
	}
	return pages, nil
}

func (r *PopplerRasterizer) rasterize(ctx context.Context, pdfPath string) ([]models.PageImage, error) {
	tmpDir, err := os.MkdirTemp("", "pdfocr-pages-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	bin := filepath.Join(r.helperDir, r.helper)
	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", strconv.Itoa(r.dpi), "-png", pdfPath, prefix}

	r.logger.Debug("Running rasterizer",
		logger.String("bin", bin),
		logger.Strings("args", args),
	)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s failed: %w: %s", r.helper, err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", r.helper, err)
	}

	files, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("no pages rendered")
	}
	ordered, err := orderedPages(files)
	if err != nil {
		return nil, err
	}

	pages := make([]models.PageImage, 0, len(ordered))
	for i, path := range ordered {
		img, err := decodeFile(path)
		if err != nil {
			return nil, err
		}
		pages = append(pages, models.PageImage{Index: i + 1, Image: img})
	}
	return pages, nil
}
