package models

import (
	"fmt"
	"image"
	"time"
)

// PageImage is one rasterized PDF page. Index is 1-based and follows PDF
// page order.
type PageImage struct {
	Index int
	Image image.Image
}

// DocumentMetadata describes the input PDF.
type DocumentMetadata struct {
	Path     string `json:"path"`
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	FileSize int64  `json:"fileSize"`
	// Pages is zero when the page count could not be read.
	Pages int    `json:"pages"`
	Hash  string `json:"hash"`
}

// PageResult records what was written for one page.
type PageResult struct {
	Index      int           `json:"index"`
	TextKey    string        `json:"textKey"`
	ImageKey   string        `json:"imageKey"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Characters int           `json:"characters"`
	Elapsed    time.Duration `json:"elapsed"`
}

// RunSummary is the outcome of a completed run.
type RunSummary struct {
	RunID      string           `json:"runId"`
	Document   DocumentMetadata `json:"document"`
	HelperDir  string           `json:"helperDir"`
	DPI        int              `json:"dpi"`
	Languages  string           `json:"languages"`
	Pages      []PageResult     `json:"pages"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
}

// TextFileName returns the name of the recognized-text file for page index.
func TextFileName(index int) string {
	return fmt.Sprintf("page_%d.txt", index)
}

// DebugImageName returns the name of the preprocessed-image file for page index.
func DebugImageName(index int) string {
	return fmt.Sprintf("debug_page_%d.png", index)
}
