package fow

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alphaAt(img *image.RGBA, x, y int) uint8 {
	return img.RGBAAt(x, y).A
}

func TestPaletteIsPremultiplied(t *testing.T) {
	pal := newFogPalette(color.RGBA{R: 0xFF, G: 0x80, B: 0x00, A: 0x10})

	assert.Zero(t, pal[0])
	assert.Equal(t, uint32(0xFF0080FF), pal[0xFF])
	px := pal[0x80]
	assert.Equal(t, uint32(0x80), px>>alphaShift)
	assert.Equal(t, uint32(0x80), px&0xFF)
}

// The source buffer is exactly srcRect, so any read past it panics.
func TestDrawBilinearStaysInsideSource(t *testing.T) {
	pal := newFogPalette(color.RGBA{})
	sizes := []struct{ sw, sh, dw, dh int }{
		{4, 4, 32, 32},
		{8, 4, 64, 32},
		{5, 3, 7, 11},
		{2, 2, 1, 1},
		{12, 12, 96, 96},
	}
	for _, sz := range sizes {
		src := make([]uint8, sz.sw*sz.sh)
		for i := range src {
			src[i] = uint8(i * 17)
		}
		dst := image.NewRGBA(image.Rect(0, 0, sz.dw, sz.dh))
		assert.NotPanics(t, func() {
			DrawBilinear(src, image.Rect(0, 0, sz.sw, sz.sh), sz.sw, dst, dst.Rect, pal, 3)
		}, "%+v", sz)

		// Walk the sample positions directly as well.
		xr, yr := bilinearRatio(sz.sw, sz.dw), bilinearRatio(sz.sh, sz.dh)
		assert.LessOrEqual(t, int((int64(sz.dw-1)*xr)>>16)+1, sz.sw-1)
		assert.LessOrEqual(t, int((int64(sz.dh-1)*yr)>>16)+1, sz.sh-1)
	}
}

func TestDrawBilinearUniformSource(t *testing.T) {
	pal := newFogPalette(color.RGBA{})
	src := make([]uint8, 8*8)
	fill(src, 0xBE)
	dst := image.NewRGBA(image.Rect(0, 0, 64, 64))

	DrawBilinear(src, image.Rect(2, 2, 6, 6), 8, dst, dst.Rect, pal, 4)

	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			require.Equal(t, uint8(0xBE), alphaAt(dst, x, y), "(%d,%d)", x, y)
		}
	}
}

func TestDrawBilinearInterpolates(t *testing.T) {
	pal := newFogPalette(color.RGBA{})
	src := []uint8{
		0, 0xFF,
		0, 0xFF,
	}
	dst := image.NewRGBA(image.Rect(0, 0, 4, 1))

	DrawBilinear(src, image.Rect(0, 0, 2, 2), 2, dst, dst.Rect, pal, 1)

	prev := uint8(0)
	for x := 0; x < 4; x++ {
		a := alphaAt(dst, x, 0)
		assert.GreaterOrEqual(t, a, prev)
		prev = a
	}
	assert.Zero(t, alphaAt(dst, 0, 0))
	assert.Greater(t, alphaAt(dst, 3, 0), uint8(0))
}

func TestDrawSimpleReplicatesTexels(t *testing.T) {
	pal := newFogPalette(color.RGBA{})
	src := []uint8{
		0x10, 0x20, 0x30,
		0x40, 0x50, 0x60,
	}
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))

	DrawSimple(src, image.Rect(1, 0, 3, 2), 3, dst, image.Pt(2, 4), 8, 8, pal, 2)

	assert.Equal(t, uint8(0x20), alphaAt(dst, 2, 4))
	assert.Equal(t, uint8(0x20), alphaAt(dst, 9, 11))
	assert.Equal(t, uint8(0x30), alphaAt(dst, 10, 4))
	assert.Equal(t, uint8(0x50), alphaAt(dst, 2, 12))
	assert.Equal(t, uint8(0x60), alphaAt(dst, 17, 19))
	assert.Zero(t, alphaAt(dst, 1, 4))
	assert.Zero(t, alphaAt(dst, 2, 3))
	assert.Zero(t, alphaAt(dst, 18, 4))
}

func BenchmarkDrawBilinear(b *testing.B) {
	pal := newFogPalette(color.RGBA{})
	src := make([]uint8, 128*128)
	for i := range src {
		src[i] = uint8(i)
	}
	dst := image.NewRGBA(image.Rect(0, 0, 1024, 1024))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DrawBilinear(src, image.Rect(0, 0, 128, 128), 128, dst, dst.Rect, pal, 0)
	}
}
