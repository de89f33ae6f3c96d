package image

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformGray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func pixelRange(img *image.Gray) (lo, hi uint8) {
	lo, hi = 255, 0
	for _, v := range img.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func TestGrayscaleFilter_LumaWeights(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 1))
	src.Set(0, 0, color.RGBA{R: 255, A: 255})
	src.Set(1, 0, color.RGBA{G: 255, A: 255})
	src.Set(2, 0, color.RGBA{B: 255, A: 255})

	out, err := NewGrayscaleFilter().Process(src)
	require.NoError(t, err)

	gray, ok := out.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, []uint8{76, 150, 29}, gray.Pix)
}

func TestGrayscaleFilter_SubImageIsRebased(t *testing.T) {
	src := uniformGray(10, 10, 40)
	src.SetGray(5, 5, color.Gray{Y: 200})
	sub := src.SubImage(image.Rect(4, 4, 8, 8))

	out, err := NewGrayscaleFilter().Process(sub)
	require.NoError(t, err)

	gray := out.(*image.Gray)
	assert.Equal(t, image.Rect(0, 0, 4, 4), gray.Bounds())
	assert.Equal(t, uint8(200), gray.GrayAt(1, 1).Y)
	assert.Equal(t, uint8(40), gray.GrayAt(0, 0).Y)
}

func TestDenoiseFilter_UniformImageUnchanged(t *testing.T) {
	out, err := NewDenoiseFilter(3, 7, 21).Process(uniformGray(12, 9, 128))
	require.NoError(t, err)

	lo, hi := pixelRange(out.(*image.Gray))
	assert.Equal(t, uint8(128), lo)
	assert.Equal(t, uint8(128), hi)
}

func TestDenoiseFilter_SmoothsFineChecker(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			v := uint8(100)
			if (x+y)%2 == 1 {
				v = 102
			}
			src.SetGray(x, y, color.Gray{Y: v})
		}
	}

	out, err := NewDenoiseFilter(3, 7, 21).Process(src)
	require.NoError(t, err)

	lo, hi := pixelRange(out.(*image.Gray))
	assert.Equal(t, uint8(101), lo)
	assert.Equal(t, uint8(101), hi)
}

func TestDenoiseFilter_KeepsStrongEdges(t *testing.T) {
	src := uniformGray(20, 20, 250)
	for y := 0; y < 20; y++ {
		for x := 0; x < 10; x++ {
			src.SetGray(x, y, color.Gray{Y: 10})
		}
	}

	out, err := NewDenoiseFilter(3, 7, 21).Process(src)
	require.NoError(t, err)

	gray := out.(*image.Gray)
	assert.Equal(t, uint8(10), gray.GrayAt(9, 10).Y)
	assert.Equal(t, uint8(250), gray.GrayAt(10, 10).Y)
}

func TestDenoiseFilter_RejectsBadWindows(t *testing.T) {
	_, err := NewDenoiseFilter(3, 8, 21).Process(uniformGray(4, 4, 0))
	assert.Error(t, err)
	_, err = NewDenoiseFilter(3, 7, 5).Process(uniformGray(4, 4, 0))
	assert.Error(t, err)
	_, err = NewDenoiseFilter(0, 7, 21).Process(uniformGray(4, 4, 0))
	assert.Error(t, err)
}

func TestCLAHEFilter_StretchesLowContrast(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			src.SetGray(x, y, color.Gray{Y: uint8(100 + (x+y)%30)})
		}
	}

	out, err := NewCLAHEFilter(2.0, 8, 8).Process(src)
	require.NoError(t, err)

	gray := out.(*image.Gray)
	assert.Equal(t, src.Bounds(), gray.Bounds())
	inLo, inHi := pixelRange(src)
	outLo, outHi := pixelRange(gray)
	assert.Greater(t, int(outHi)-int(outLo), int(inHi)-int(inLo))
}

func TestCLAHEFilter_SizeNotDivisibleByGrid(t *testing.T) {
	out, err := NewCLAHEFilter(2.0, 8, 8).Process(uniformGray(13, 5, 90))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 13, 5), out.Bounds())
}

func TestClipHistogram_PreservesMass(t *testing.T) {
	var hist [256]int
	hist[10] = 1000
	hist[200] = 24

	clipHistogram(&hist, 100)

	total := 0
	for _, c := range hist {
		total += c
	}
	assert.Equal(t, 1024, total)
	assert.LessOrEqual(t, hist[10], 100+4)
}

func TestOtsuThreshold_Bimodal(t *testing.T) {
	src := uniformGray(10, 10, 200)
	for i := 0; i < 40; i++ {
		src.Pix[i] = 30
	}

	threshold := OtsuThreshold(src)
	assert.GreaterOrEqual(t, threshold, uint8(30))
	assert.Less(t, threshold, uint8(200))

	out, err := NewOtsuFilter().Process(src)
	require.NoError(t, err)
	gray := out.(*image.Gray)
	assert.Equal(t, uint8(0), gray.Pix[0])
	assert.Equal(t, uint8(255), gray.Pix[99])
}

func TestOtsuFilter_OutputIsBinary(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 32, 8))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 7 % 256)
	}

	out, err := NewOtsuFilter().Process(src)
	require.NoError(t, err)
	for _, v := range out.(*image.Gray).Pix {
		assert.True(t, v == 0 || v == 255, "pixel %d", v)
	}
	// input untouched
	assert.Equal(t, uint8(7), src.Pix[1])
}

func TestReflect101(t *testing.T) {
	tests := []struct{ i, n, want int }{
		{-1, 5, 1},
		{-2, 5, 2},
		{5, 5, 3},
		{6, 5, 2},
		{-7, 3, 1},
		{4, 1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, reflect101(tt.i, tt.n), "reflect101(%d, %d)", tt.i, tt.n)
	}
}
