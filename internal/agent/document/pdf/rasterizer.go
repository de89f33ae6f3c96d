// Package pdf turns the input document into page bitmaps.
package pdf

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/feichai0017/pdf-ocr/internal/models"
)

// Rasterizer renders every page of a PDF, in page order. The whole document
// is rendered before the first page is returned.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath string) ([]models.PageImage, error)
}

// pageNumber extracts n from names like page-7.png or page-007.png.
func pageNumber(name string) (int, bool) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	idx := strings.LastIndex(base, "-")
	if idx < 0 || idx == len(base)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// orderedPages sorts rendered page files by page number and checks that
// they form the sequence 1..N.
func orderedPages(files []string) ([]string, error) {
	type numbered struct {
		n    int
		path string
	}
	pages := make([]numbered, 0, len(files))
	for _, f := range files {
		n, ok := pageNumber(f)
		if !ok {
			return nil, fmt.Errorf("unexpected rasterizer output %q", filepath.Base(f))
		}
		pages = append(pages, numbered{n: n, path: f})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].n < pages[j].n })

	ordered := make([]string, len(pages))
	for i, p := range pages {
		if p.n != i+1 {
			return nil, fmt.Errorf("rasterizer output is missing page %d", i+1)
		}
		ordered[i] = p.path
	}
	return ordered, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}
