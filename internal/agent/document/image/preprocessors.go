package image

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// GrayscaleFilter converts to a single channel with Rec.601 luma weights.
type GrayscaleFilter struct{}

func NewGrayscaleFilter() *GrayscaleFilter {
	return &GrayscaleFilter{}
}

func (f *GrayscaleFilter) Process(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	return toGray(img), nil
}

// toGray returns img as an *image.Gray anchored at the origin. Gray input is
// copied so filters never alias their argument.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		b := g.Bounds()
		out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return out
	}

	// imaging yields an NRGBA with R=G=B=luma
	nrgba := imaging.Grayscale(img)
	b := nrgba.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := nrgba.Pix[y*nrgba.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = src[x*4]
		}
	}
	return out
}

// DenoiseFilter is a non-local means filter: every pixel becomes the weighted
// mean of the pixels in its search window, weighted by how similar their
// surrounding template patches are.
type DenoiseFilter struct {
	strength       float64
	templateWindow int
	searchWindow   int
}

func NewDenoiseFilter(strength float64, templateWindow, searchWindow int) *DenoiseFilter {
	return &DenoiseFilter{
		strength:       strength,
		templateWindow: templateWindow,
		searchWindow:   searchWindow,
	}
}

func (f *DenoiseFilter) Process(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	if f.templateWindow%2 == 0 || f.searchWindow%2 == 0 || f.searchWindow < f.templateWindow {
		return nil, fmt.Errorf("invalid denoise windows: template=%d search=%d", f.templateWindow, f.searchWindow)
	}
	if f.strength <= 0 {
		return nil, fmt.Errorf("invalid denoise strength %g", f.strength)
	}
	return f.denoise(toGray(img)), nil
}

// weights below this are treated as zero
const minWeight = 0.001

func (f *DenoiseFilter) weightTable() []float32 {
	h2 := f.strength * f.strength
	lut := make([]float32, 255*255+1)
	for d := range lut {
		w := math.Exp(-float64(d) / h2)
		if w < minWeight {
			break
		}
		lut[d] = float32(w)
	}
	return lut
}

func (f *DenoiseFilter) denoise(src *image.Gray) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	tr := f.templateWindow / 2
	sr := f.searchWindow / 2
	pad := tr + sr
	pw := w + 2*pad
	padded := padReflect101(src, pad)

	area := uint32(f.templateWindow * f.templateWindow)
	lut := f.weightTable()

	acc := make([]float32, w*h)
	wsum := make([]float32, w*h)

	// per-row template sums, kept for the last templateWindow rows
	ring := make([][]uint32, f.templateWindow)
	for i := range ring {
		ring[i] = make([]uint32, w)
	}
	vsum := make([]uint32, w)
	diff := make([]uint32, w+2*tr)

	for dy := -sr; dy <= sr; dy++ {
		for dx := -sr; dx <= sr; dx++ {
			for i := range vsum {
				vsum[i] = 0
			}

			for ry := -tr; ry < h+tr; ry++ {
				row := ring[(ry+tr)%f.templateWindow]
				if ry+tr >= f.templateWindow {
					for x := range vsum {
						vsum[x] -= row[x]
					}
				}

				// squared differences along padded row ry, then a sliding
				// horizontal window sum
				base := (ry + pad) * pw
				shifted := (ry + pad + dy) * pw
				for i := range diff {
					px := pad - tr + i
					d := int(padded[base+px]) - int(padded[shifted+px+dx])
					diff[i] = uint32(d * d)
				}
				var run uint32
				for i := 0; i < f.templateWindow; i++ {
					run += diff[i]
				}
				row[0] = run
				for x := 1; x < w; x++ {
					run += diff[x+2*tr] - diff[x-1]
					row[x] = run
				}

				for x := range vsum {
					vsum[x] += row[x]
				}

				y := ry - tr
				if y < 0 {
					continue
				}
				neighbor := (y + pad + dy) * pw
				for x := 0; x < w; x++ {
					wt := lut[vsum[x]/area]
					if wt == 0 {
						continue
					}
					i := y*w + x
					acc[i] += wt * float32(padded[neighbor+x+pad+dx])
					wsum[i] += wt
				}
			}
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			out.Pix[y*out.Stride+x] = clampUint8(float64(acc[i] / wsum[i]))
		}
	}
	return out
}

// CLAHEFilter is contrast limited adaptive histogram equalization over a
// tilesX x tilesY grid, with bilinear blending between tile mappings.
type CLAHEFilter struct {
	clipLimit float64
	tilesX    int
	tilesY    int
}

func NewCLAHEFilter(clipLimit float64, tilesX, tilesY int) *CLAHEFilter {
	return &CLAHEFilter{clipLimit: clipLimit, tilesX: tilesX, tilesY: tilesY}
}

func (f *CLAHEFilter) Process(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	if f.tilesX <= 0 || f.tilesY <= 0 || f.clipLimit <= 0 {
		return nil, fmt.Errorf("invalid CLAHE parameters: clip=%g grid=%dx%d", f.clipLimit, f.tilesX, f.tilesY)
	}
	return f.equalize(toGray(img)), nil
}

func (f *CLAHEFilter) equalize(src *image.Gray) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	// tiles that run past the edge read mirrored pixels
	tileW := (w + f.tilesX - 1) / f.tilesX
	tileH := (h + f.tilesY - 1) / f.tilesY
	tileArea := tileW * tileH

	clip := int(f.clipLimit * float64(tileArea) / 256)
	if clip < 1 {
		clip = 1
	}
	lutScale := 255.0 / float64(tileArea)

	luts := make([][256]uint8, f.tilesX*f.tilesY)
	for ty := 0; ty < f.tilesY; ty++ {
		for tx := 0; tx < f.tilesX; tx++ {
			var hist [256]int
			for y := ty * tileH; y < (ty+1)*tileH; y++ {
				sy := reflect101(y, h)
				row := src.Pix[sy*src.Stride:]
				for x := tx * tileW; x < (tx+1)*tileW; x++ {
					hist[row[reflect101(x, w)]]++
				}
			}
			clipHistogram(&hist, clip)

			lut := &luts[ty*f.tilesX+tx]
			sum := 0
			for i := 0; i < 256; i++ {
				sum += hist[i]
				lut[i] = clampUint8(float64(sum) * lutScale)
			}
		}
	}

	xs := interpolation(w, tileW, f.tilesX)
	for y := 0; y < h; y++ {
		ty1, ty2, ya := interpolate(y, tileH, f.tilesY)
		ya1 := 1 - ya
		row := src.Pix[y*src.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			xi := xs[x]
			v := row[x]
			top := float64(luts[ty1*f.tilesX+xi.t1][v])*xi.a1 + float64(luts[ty1*f.tilesX+xi.t2][v])*xi.a
			bottom := float64(luts[ty2*f.tilesX+xi.t1][v])*xi.a1 + float64(luts[ty2*f.tilesX+xi.t2][v])*xi.a
			dst[x] = clampUint8(top*ya1 + bottom*ya)
		}
	}
	return out
}

// clipHistogram caps every bin at limit and spreads the excess evenly, with
// the remainder handed out at a fixed stride from bin 0.
func clipHistogram(hist *[256]int, limit int) {
	excess := 0
	for i := range hist {
		if hist[i] > limit {
			excess += hist[i] - limit
			hist[i] = limit
		}
	}

	batch := excess / 256
	residual := excess - batch*256
	for i := range hist {
		hist[i] += batch
	}
	if residual == 0 {
		return
	}
	step := 256 / residual
	if step < 1 {
		step = 1
	}
	for i := 0; i < 256 && residual > 0; i += step {
		hist[i]++
		residual--
	}
}

type tileWeight struct {
	t1, t2 int
	a, a1  float64
}

func interpolation(n, tileSize, tiles int) []tileWeight {
	out := make([]tileWeight, n)
	for i := range out {
		t1, t2, a := interpolate(i, tileSize, tiles)
		out[i] = tileWeight{t1: t1, t2: t2, a: a, a1: 1 - a}
	}
	return out
}

// interpolate locates coordinate i between the centers of two neighboring
// tiles and returns their indices and the weight of the second one.
func interpolate(i, tileSize, tiles int) (int, int, float64) {
	pos := float64(i)/float64(tileSize) - 0.5
	t1 := int(math.Floor(pos))
	t2 := t1 + 1
	a := pos - float64(t1)
	if t1 < 0 {
		t1 = 0
	}
	if t2 > tiles-1 {
		t2 = tiles - 1
	}
	return t1, t2, a
}

// OtsuFilter binarizes with the global threshold that maximizes the
// between-class variance. Pixels above the threshold become 255, the rest 0.
type OtsuFilter struct{}

func NewOtsuFilter() *OtsuFilter {
	return &OtsuFilter{}
}

func (f *OtsuFilter) Process(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	gray := toGray(img)
	threshold := OtsuThreshold(gray)
	for i, v := range gray.Pix {
		if v > threshold {
			gray.Pix[i] = 255
		} else {
			gray.Pix[i] = 0
		}
	}
	return gray, nil
}

// OtsuThreshold computes the Otsu threshold of img.
func OtsuThreshold(img *image.Gray) uint8 {
	b := img.Bounds()
	var hist [256]int
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			hist[row[x]]++
		}
	}

	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}
	scale := 1.0 / float64(total)

	mu := 0.0
	for i, c := range hist {
		mu += float64(i) * float64(c)
	}
	mu *= scale

	const eps = 1.1920929e-07 // float32 epsilon
	var q1, mu1, maxSigma float64
	best := 0
	for i := 0; i < 256; i++ {
		pi := float64(hist[i]) * scale
		mu1 *= q1
		q1 += pi
		q2 := 1 - q1

		if math.Min(q1, q2) < eps || math.Max(q1, q2) > 1-eps {
			continue
		}

		mu1 = (mu1 + float64(i)*pi) / q1
		mu2 := (mu - q1*mu1) / q2
		sigma := q1 * q2 * (mu1 - mu2) * (mu1 - mu2)
		if sigma > maxSigma {
			maxSigma = sigma
			best = i
		}
	}
	return uint8(best)
}

// padReflect101 returns the pixels of src surrounded by a border of pad
// pixels mirrored without repeating the edge (dcb|abcd|cba).
func padReflect101(src *image.Gray, pad int) []uint8 {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	pw, ph := w+2*pad, h+2*pad
	out := make([]uint8, pw*ph)

	cols := make([]int, pw)
	for x := range cols {
		cols[x] = reflect101(x-pad, w)
	}
	for y := 0; y < ph; y++ {
		row := src.Pix[reflect101(y-pad, h)*src.Stride:]
		dst := out[y*pw : (y+1)*pw]
		for x, sx := range cols {
			dst[x] = row[sx]
		}
	}
	return out
}

func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

func clampUint8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
