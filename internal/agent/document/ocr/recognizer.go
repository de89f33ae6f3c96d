// Package ocr extracts text from preprocessed page images.
package ocr

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
)

// TextRecognizer turns one binarized page into text. The text is returned
// exactly as the engine produced it.
type TextRecognizer interface {
	Recognize(ctx context.Context, img *image.Gray) (string, error)
}

// Checker is implemented by recognizers that can verify their installation
// before any page is processed.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckLanguageData verifies that dir holds a traineddata file for every
// language.
func CheckLanguageData(dir string, languages []string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("tessdata dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("tessdata dir %s is not a directory", dir)
	}
	for _, lang := range languages {
		path := filepath.Join(dir, lang+".traineddata")
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("language data for %q: %w", lang, err)
		}
	}
	return nil
}
