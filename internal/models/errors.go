package models

import "fmt"

// MissingInputError reports that the input PDF does not exist. It is raised
// before any other stage runs.
type MissingInputError struct {
	Path string
	Err  error
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("input PDF not found: %s", e.Path)
}

func (e *MissingInputError) Unwrap() error { return e.Err }

// RasterizationError reports a failed PDF to image conversion.
type RasterizationError struct {
	HelperDir string
	Err       error
}

func (e *RasterizationError) Error() string {
	return fmt.Sprintf("rasterize PDF (helper dir %q): %v; check that poppler is installed (e.g. `brew reinstall poppler`) and that pdftoppm lives in that directory",
		e.HelperDir, e.Err)
}

func (e *RasterizationError) Unwrap() error { return e.Err }

// OCREngineError reports that the recognition engine could not run. Page is
// zero for failures detected before any page was processed.
type OCREngineError struct {
	Engine string
	Page   int
	Err    error
}

func (e *OCREngineError) Error() string {
	if e.Page == 0 {
		return fmt.Sprintf("ocr engine %s: %v", e.Engine, e.Err)
	}
	return fmt.Sprintf("ocr engine %s, page %d: %v", e.Engine, e.Page, e.Err)
}

func (e *OCREngineError) Unwrap() error { return e.Err }

// FilesystemError reports a failed output write.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }
