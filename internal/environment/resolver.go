// Package environment locates the external programs the pipeline shells out to.
package environment

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/feichai0017/pdf-ocr/config"
)

// LookPathFunc matches exec.LookPath.
type LookPathFunc func(file string) (string, error)

// Discovery is the outcome of looking up the rasterization helper.
type Discovery struct {
	Dir    string
	Found  bool
	Reason string
}

// Environment holds the resolved locations of the OCR engine and the
// rasterization helper.
type Environment struct {
	TesseractCmd string
	TessdataDir  string
	Helper       Discovery
}

// Resolve never fails. When the helper is not on the search path the
// configured fallback directory is returned with Found=false; a missing
// helper surfaces later, when rasterization is attempted.
func Resolve(cfg *config.Config, lookPath LookPathFunc) Environment {
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	return Environment{
		TesseractCmd: cfg.OCR.Binary,
		TessdataDir:  cfg.OCR.TessdataDir,
		Helper:       discoverHelper(cfg.Rasterizer, lookPath),
	}
}

func discoverHelper(rc config.RasterizerConfig, lookPath LookPathFunc) Discovery {
	path, err := lookPath(rc.Helper)
	if err != nil {
		return Discovery{
			Dir:    rc.FallbackDir,
			Reason: fmt.Sprintf("%s not found on PATH (%v), using fallback directory", rc.Helper, err),
		}
	}
	return Discovery{
		Dir:    filepath.Dir(path),
		Found:  true,
		Reason: fmt.Sprintf("found %s", path),
	}
}
