package validator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/pdf-ocr/internal/models"
	"github.com/feichai0017/pdf-ocr/pkg/logger"
)

func TestValidateInput(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "catalog.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4"), 0644))

	v := NewDocumentValidator(logger.NewTestLogger())

	abs, err := v.ValidateInput(pdfPath)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))
	assert.Equal(t, pdfPath, abs)
}

func TestValidateInput_RelativePathIsResolved(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pdf_folder"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pdf_folder", "a.pdf"), []byte("%PDF"), 0644))
	chdir(t, dir)

	abs, err := NewDocumentValidator(logger.NewTestLogger()).ValidateInput("pdf_folder/a.pdf")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))
	assert.Equal(t, "a.pdf", filepath.Base(abs))
}

func TestValidateInput_Missing(t *testing.T) {
	v := NewDocumentValidator(logger.NewTestLogger())

	tests := []struct {
		name string
		path string
	}{
		{"absent file", filepath.Join(t.TempDir(), "nope.pdf")},
		{"directory", t.TempDir()},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateInput(tt.path)
			var missing *models.MissingInputError
			require.True(t, errors.As(err, &missing), "got %v", err)
		})
	}
}

func TestValidateInput_WarnsOnOtherExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.bin")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0644))
	log := logger.NewTestLogger()

	_, err := NewDocumentValidator(log).ValidateInput(path)
	require.NoError(t, err)

	_, ok := log.Find("WARN", "Input does not have a .pdf extension")
	assert.True(t, ok)
}

func TestEnsureOutputDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ocr_texts")
	v := NewDocumentValidator(logger.NewTestLogger())

	require.NoError(t, v.EnsureOutputDir(dir))
	require.NoError(t, v.EnsureOutputDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureOutputDir_Failure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	err := NewDocumentValidator(logger.NewTestLogger()).EnsureOutputDir(filepath.Join(file, "sub"))
	var fsErr *models.FilesystemError
	assert.True(t, errors.As(err, &fsErr))
}
