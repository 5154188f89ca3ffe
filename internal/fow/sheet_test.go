package fow

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFogSheetSlicesRowByRow(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	// Frame 1 is the top-right 4x4 block, frame 2 the bottom-left one.
	img.SetRGBA(5, 1, color.RGBA{A: 0x11})
	img.SetRGBA(1, 5, color.RGBA{A: 0x22})

	sheet, err := NewFogSheet(img, 4, 4)
	require.NoError(t, err)

	assert.Equal(t, 4, sheet.Frames())
	assert.Equal(t, image.Pt(4, 4), sheet.FrameSize())
	assert.Equal(t, uint8(0x11), sheet.Frame(1).RGBAAt(1, 1).A)
	assert.Equal(t, uint8(0x22), sheet.Frame(2).RGBAAt(1, 1).A)
	assert.Nil(t, sheet.Frame(4))
	assert.Nil(t, sheet.Frame(-1))
}

func TestNewFogSheetRejectsBadFrames(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))

	_, err := NewFogSheet(img, 0, 4)
	assert.ErrorIs(t, err, ErrInvalidSheet)

	_, err = NewFogSheet(img, 16, 16)
	assert.ErrorIs(t, err, ErrInvalidSheet)
}

func TestLoadFogSheet(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 8))
	img.SetRGBA(9, 0, color.RGBA{R: 1, A: 0xFF})
	path := filepath.Join(t.TempDir(), "fog.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	sheet, err := LoadFogSheet(path, 8, 8)
	require.NoError(t, err)
	assert.Equal(t, 4, sheet.Frames())
	assert.Equal(t, uint8(0xFF), sheet.Frame(1).RGBAAt(1, 0).A)

	_, err = LoadFogSheet(filepath.Join(t.TempDir(), "missing.png"), 8, 8)
	assert.ErrorIs(t, err, os.ErrNotExist)

	garbage := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))
	_, err = LoadFogSheet(garbage, 8, 8)
	assert.ErrorIs(t, err, ErrInvalidSheet)
}

func TestGenerateFogSheet(t *testing.T) {
	sheet := GenerateFogSheet(32, color.RGBA{}, DefaultLegacyFogTable)

	require.Equal(t, DefaultLegacyFogTable.Frames(), sheet.Frames())
	assert.NoError(t, sheet.covers(DefaultLegacyFogTable, 32))
	assert.ErrorIs(t, sheet.covers(DefaultLegacyFogTable, 16), ErrInvalidSheet)

	blank := sheet.Frame(0)
	for _, px := range blank.Pix {
		require.Zero(t, px, "frame 0 must stay transparent")
	}

	// Top edge sprite: dense at the top, clear at the bottom.
	top := sheet.Frame(DefaultLegacyFogTable[quadTopLeft|quadTopRight])
	assert.Greater(t, top.RGBAAt(16, 0).A, uint8(0xE0))
	assert.Zero(t, top.RGBAAt(16, 31).A)

	// All quadrants: the ring around a lone visible tile, clear centre.
	ring := sheet.Frame(DefaultLegacyFogTable[15])
	assert.Greater(t, ring.RGBAAt(0, 0).A, uint8(0xE0))
	assert.Zero(t, ring.RGBAAt(16, 16).A)
}

func TestSheetCoversTable(t *testing.T) {
	sheet := GenerateFogSheet(8, color.RGBA{}, LegacyFogTable{0, 1})
	assert.NoError(t, sheet.covers(LegacyFogTable{0, 1, 1}, 8))
	assert.ErrorIs(t, sheet.covers(LegacyFogTable{0, 2}, 8), ErrInvalidSheet)
}
