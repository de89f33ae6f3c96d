// Package config holds the run configuration of the converter. A Config is
// built once at startup from defaults, an optional YAML file, a .env file,
// environment variables and command-line overrides, in that order, and is
// treated as read-only afterwards.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/feichai0017/pdf-ocr/pkg/logger"
)

const (
	RasterizerPoppler = "pdftoppm"
	RasterizerFitz    = "fitz"

	OCREngineTesseract = "tesseract"
	OCREngineGosseract = "gosseract"

	StorageLocal = "local"
	StorageMinio = "minio"
	StorageS3    = "s3"
)

type Config struct {
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Rasterizer RasterizerConfig `yaml:"rasterizer"`
	Preprocess PreprocessConfig `yaml:"preprocess"`
	OCR        OCRConfig        `yaml:"ocr"`
	Workers    int              `yaml:"workers"`
	Log        logger.Config    `yaml:"log"`
	Minio      MinioConfig      `yaml:"minio"`
	S3         S3Config         `yaml:"s3"`
}

type InputConfig struct {
	// Path of the PDF, relative to the working directory unless absolute.
	Path string `yaml:"path"`
}

type OutputConfig struct {
	Dir     string `yaml:"dir"`
	Storage string `yaml:"storage"`
	// Prefix is prepended to object keys for the minio and s3 backends.
	Prefix  string `yaml:"prefix"`
	Summary bool   `yaml:"summary"`
}

type RasterizerConfig struct {
	Engine      string `yaml:"engine"`
	Helper      string `yaml:"helper"`
	FallbackDir string `yaml:"fallback_dir"`
	DPI         int    `yaml:"dpi"`
}

type PreprocessConfig struct {
	DenoiseStrength float64 `yaml:"denoise_strength"`
	TemplateWindow  int     `yaml:"template_window"`
	SearchWindow    int     `yaml:"search_window"`
	ClipLimit       float64 `yaml:"clip_limit"`
	TileGridX       int     `yaml:"tile_grid_x"`
	TileGridY       int     `yaml:"tile_grid_y"`
}

type OCRConfig struct {
	Engine      string   `yaml:"engine"`
	Binary      string   `yaml:"binary"`
	TessdataDir string   `yaml:"tessdata_dir"`
	Languages   []string `yaml:"languages"`
	// OEM 1 is the LSTM engine.
	OEM int `yaml:"oem"`
	// PSM 6 assumes a single uniform block of text.
	PSM int `yaml:"psm"`
}

// Option mutates a Config after the file and environment have been applied.
type Option func(*Config)

func WithInputPath(path string) Option {
	return func(c *Config) { c.Input.Path = path }
}

func WithOutputDir(dir string) Option {
	return func(c *Config) { c.Output.Dir = dir }
}

func WithWorkers(n int) Option {
	return func(c *Config) { c.Workers = n }
}

func WithLogLevel(level string) Option {
	return func(c *Config) { c.Log.Level = level }
}

// Default returns the configuration of the reference catalog run.
func Default() *Config {
	binary, tessdata, fallback := platformPaths(runtime.GOOS)

	return &Config{
		Input: InputConfig{
			Path: "pdf_folder/ND-820_catalog.pdf",
		},
		Output: OutputConfig{
			Dir:     "ocr_texts",
			Storage: StorageLocal,
		},
		Rasterizer: RasterizerConfig{
			Engine:      RasterizerPoppler,
			Helper:      "pdftoppm",
			FallbackDir: fallback,
			DPI:         600,
		},
		Preprocess: PreprocessConfig{
			DenoiseStrength: 3,
			TemplateWindow:  7,
			SearchWindow:    21,
			ClipLimit:       2.0,
			TileGridX:       8,
			TileGridY:       8,
		},
		OCR: OCRConfig{
			Engine:      OCREngineTesseract,
			Binary:      binary,
			TessdataDir: tessdata,
			Languages:   []string{"jpn", "eng"},
			OEM:         1,
			PSM:         6,
		},
		Workers: 1,
		Log:     logger.DefaultConfig(),
	}
}

func platformPaths(goos string) (binary, tessdata, helperDir string) {
	switch goos {
	case "darwin":
		return "/opt/homebrew/bin/tesseract", "/opt/homebrew/share/tessdata", "/opt/homebrew/bin"
	case "windows":
		return `C:\Program Files\Tesseract-OCR\tesseract.exe`, `C:\Program Files\Tesseract-OCR\tessdata`, `C:\Program Files\poppler\Library\bin`
	default:
		return "/usr/bin/tesseract", "/usr/share/tesseract-ocr/5/tessdata", "/usr/bin"
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults, the environment and opts are used.
func Load(path string, opts ...Option) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Input.Path, "PDFOCR_INPUT")
	setString(&c.Output.Dir, "PDFOCR_OUTPUT_DIR")
	setString(&c.Output.Storage, "PDFOCR_STORAGE")
	setString(&c.Rasterizer.Engine, "PDFOCR_RASTERIZER")
	setString(&c.Rasterizer.FallbackDir, "PDFOCR_POPPLER_DIR")
	setString(&c.OCR.Engine, "PDFOCR_OCR_ENGINE")
	setString(&c.OCR.Binary, "PDFOCR_TESSERACT_CMD")
	setString(&c.OCR.TessdataDir, "PDFOCR_TESSDATA_DIR")
	setString(&c.Log.Level, "PDFOCR_LOG_LEVEL")

	if v := os.Getenv("PDFOCR_LANGUAGES"); v != "" {
		c.OCR.Languages = strings.Split(v, "+")
	}
	if err := setInt(&c.Rasterizer.DPI, "PDFOCR_DPI"); err != nil {
		return err
	}
	if err := setInt(&c.Workers, "PDFOCR_WORKERS"); err != nil {
		return err
	}

	c.Minio.applyEnv()
	c.S3.applyEnv()
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	*dst = n
	return nil
}

// Validate reports the first setting that cannot produce a working run.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Input.Path) == "":
		return errors.New("input.path is required")
	case strings.TrimSpace(c.Output.Dir) == "":
		return errors.New("output.dir is required")
	case c.Rasterizer.DPI <= 0:
		return fmt.Errorf("rasterizer.dpi must be positive, got %d", c.Rasterizer.DPI)
	case c.Workers < 1:
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	case len(c.OCR.Languages) == 0:
		return errors.New("ocr.languages must not be empty")
	case c.OCR.OEM < 0 || c.OCR.OEM > 3:
		return fmt.Errorf("ocr.oem must be in [0,3], got %d", c.OCR.OEM)
	case c.OCR.PSM < 0 || c.OCR.PSM > 13:
		return fmt.Errorf("ocr.psm must be in [0,13], got %d", c.OCR.PSM)
	}

	for _, lang := range c.OCR.Languages {
		if strings.TrimSpace(lang) == "" {
			return errors.New("ocr.languages contains an empty entry")
		}
	}

	if err := c.Preprocess.validate(); err != nil {
		return err
	}

	switch c.Rasterizer.Engine {
	case RasterizerPoppler, RasterizerFitz:
	default:
		return fmt.Errorf("unknown rasterizer.engine %q", c.Rasterizer.Engine)
	}
	switch c.OCR.Engine {
	case OCREngineTesseract, OCREngineGosseract:
	default:
		return fmt.Errorf("unknown ocr.engine %q", c.OCR.Engine)
	}
	switch c.Output.Storage {
	case StorageLocal:
	case StorageMinio:
		if c.Minio.Endpoint == "" || c.Minio.BucketName == "" {
			return errors.New("minio storage needs minio.endpoint and minio.bucket_name")
		}
	case StorageS3:
		if c.S3.BucketName == "" {
			return errors.New("s3 storage needs s3.bucket_name")
		}
	default:
		return fmt.Errorf("unknown output.storage %q", c.Output.Storage)
	}
	return nil
}

func (p PreprocessConfig) validate() error {
	switch {
	case p.DenoiseStrength <= 0:
		return fmt.Errorf("preprocess.denoise_strength must be positive, got %g", p.DenoiseStrength)
	case p.TemplateWindow <= 0 || p.TemplateWindow%2 == 0:
		return fmt.Errorf("preprocess.template_window must be a positive odd number, got %d", p.TemplateWindow)
	case p.SearchWindow <= 0 || p.SearchWindow%2 == 0:
		return fmt.Errorf("preprocess.search_window must be a positive odd number, got %d", p.SearchWindow)
	case p.SearchWindow < p.TemplateWindow:
		return fmt.Errorf("preprocess.search_window (%d) is smaller than template_window (%d)", p.SearchWindow, p.TemplateWindow)
	case p.ClipLimit <= 0:
		return fmt.Errorf("preprocess.clip_limit must be positive, got %g", p.ClipLimit)
	case p.TileGridX <= 0 || p.TileGridY <= 0:
		return fmt.Errorf("preprocess tile grid must be positive, got %dx%d", p.TileGridX, p.TileGridY)
	}
	return nil
}

// LanguageSpec joins the language list the way tesseract expects, e.g. "jpn+eng".
func (o OCRConfig) LanguageSpec() string {
	return strings.Join(o.Languages, "+")
}
