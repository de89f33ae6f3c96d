package pdf

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/feichai0017/pdf-ocr/internal/models"
	"github.com/feichai0017/pdf-ocr/pkg/logger"
)

// Inspector reads document-level facts (page count, Info dictionary, hash)
// without rendering anything.
type Inspector struct {
	logger logger.Logger
}

func NewInspector(log logger.Logger) *Inspector {
	return &Inspector{logger: log}
}

// Inspect always returns the file size and hash when the file is readable.
// A parse failure leaves Pages at zero and is returned as the error so the
// caller can decide whether it matters.
func (i *Inspector) Inspect(path string) (models.DocumentMetadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return models.DocumentMetadata{}, fmt.Errorf("read %s: %w", path, err)
	}

	hash := sha256.Sum256(content)
	metadata := models.DocumentMetadata{
		Path:     path,
		FileSize: int64(len(content)),
		Hash:     hex.EncodeToString(hash[:]),
	}

	if err := readStructure(content, &metadata); err != nil {
		return metadata, err
	}
	return metadata, nil
}

func readStructure(content []byte, metadata *models.DocumentMetadata) (err error) {
	// the parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return fmt.Errorf("parse pdf: %w", err)
	}

	metadata.Pages = pdfReader.NumPage()

	trailer := pdfReader.Trailer()
	if trailer.IsNull() {
		return nil
	}
	info := trailer.Key("Info")
	if info.IsNull() {
		return nil
	}
	if title := info.Key("Title"); !title.IsNull() {
		metadata.Title = title.Text()
	}
	if author := info.Key("Author"); !author.IsNull() {
		metadata.Author = author.Text()
	}
	return nil
}
