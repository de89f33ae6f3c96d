package validator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/feichai0017/pdf-ocr/internal/models"
	"github.com/feichai0017/pdf-ocr/pkg/logger"
)

// DocumentValidator runs the pre-flight checks of a conversion run.
type DocumentValidator struct {
	logger logger.Logger
}

func NewDocumentValidator(log logger.Logger) *DocumentValidator {
	return &DocumentValidator{logger: log}
}

// ValidateInput resolves path to an absolute path and checks that it names
// an existing regular file. Anything else is a *models.MissingInputError.
func (v *DocumentValidator) ValidateInput(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", &models.MissingInputError{Path: path, Err: os.ErrNotExist}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve input path %q: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &models.MissingInputError{Path: abs, Err: err}
		}
		return "", fmt.Errorf("stat input %s: %w", abs, err)
	}
	if info.IsDir() {
		return "", &models.MissingInputError{Path: abs, Err: fmt.Errorf("%s is a directory", abs)}
	}

	if ext := strings.ToLower(filepath.Ext(abs)); ext != ".pdf" {
		v.logger.Warn("Input does not have a .pdf extension",
			logger.String("path", abs),
			logger.String("extension", ext),
		)
	}

	return abs, nil
}

// EnsureOutputDir creates dir if needed. It is a no-op when dir exists.
func (v *DocumentValidator) EnsureOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &models.FilesystemError{Op: "create output dir", Path: dir, Err: err}
	}
	return nil
}
