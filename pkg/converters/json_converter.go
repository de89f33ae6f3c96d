// Package converters renders run results for machine consumption.
package converters

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/feichai0017/pdf-ocr/internal/models"
)

// SummaryFileName is the key the run report is stored under.
const SummaryFileName = "run_summary.json"

// RunReport is the JSON document written after a successful run.
type RunReport struct {
	RunID           string          `json:"runId"`
	Status          string          `json:"status"`
	Document        DocumentSummary `json:"document"`
	Pages           []PageContent   `json:"pages"`
	TotalCharacters int             `json:"totalCharacters"`
	ProcessingMs    int64           `json:"processingMs"`
	ProcessedAt     time.Time       `json:"processedAt"`
}

type DocumentSummary struct {
	FileName  string `json:"fileName"`
	FileSize  int64  `json:"fileSize"`
	SHA256    string `json:"sha256"`
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	PageCount int    `json:"pageCount"`
	DPI       int    `json:"dpi"`
	Languages string `json:"languages"`
	HelperDir string `json:"helperDir"`
}

type PageContent struct {
	Page       int    `json:"page"`
	TextFile   string `json:"textFile"`
	DebugImage string `json:"debugImage"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Characters int    `json:"characters"`
	ElapsedMs  int64  `json:"elapsedMs"`
}

// JSONConverter turns a RunSummary into an indented RunReport.
type JSONConverter struct{}

func NewJSONConverter() *JSONConverter {
	return &JSONConverter{}
}

func (c *JSONConverter) Report(summary *models.RunSummary) (*RunReport, error) {
	if summary == nil {
		return nil, fmt.Errorf("no summary to convert")
	}

	report := &RunReport{
		RunID:  summary.RunID,
		Status: "completed",
		Document: DocumentSummary{
			FileName:  summary.Document.Path,
			FileSize:  summary.Document.FileSize,
			SHA256:    summary.Document.Hash,
			Title:     summary.Document.Title,
			Author:    summary.Document.Author,
			PageCount: len(summary.Pages),
			DPI:       summary.DPI,
			Languages: summary.Languages,
			HelperDir: summary.HelperDir,
		},
		Pages:        make([]PageContent, 0, len(summary.Pages)),
		ProcessingMs: summary.FinishedAt.Sub(summary.StartedAt).Milliseconds(),
		ProcessedAt:  summary.FinishedAt,
	}

	for _, page := range summary.Pages {
		report.Pages = append(report.Pages, PageContent{
			Page:       page.Index,
			TextFile:   page.TextKey,
			DebugImage: page.ImageKey,
			Width:      page.Width,
			Height:     page.Height,
			Characters: page.Characters,
			ElapsedMs:  page.Elapsed.Milliseconds(),
		})
		report.TotalCharacters += page.Characters
	}

	return report, nil
}

func (c *JSONConverter) Convert(summary *models.RunSummary) ([]byte, error) {
	report, err := c.Report(summary)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal run report: %w", err)
	}
	return append(data, '\n'), nil
}
