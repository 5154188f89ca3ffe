package fow

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/FogOfWar/internal/testutil"
)

func newTestLegacy(t *testing.T, src MapSource, visionFor ...int) *legacyRenderer {
	t.Helper()
	settings := DefaultSettings()
	settings.Type = FogLegacy
	vb := &visionBuilder{
		table:     NewVisibilityTable(src.Width(), src.Height()),
		source:    src,
		settings:  &settings,
		visionFor: visionFor,
	}
	r, err := newLegacyRenderer(vb, GenerateFogSheet(settings.TileSize, settings.FogColor, settings.LegacyTable))
	require.NoError(t, err)
	r.GenerateFog()
	return r
}

func TestLegacyFogTilesLoneVisibleTile(t *testing.T) {
	src := testutil.NewGridSource(3, 3)
	src.Set(0, 1, 1, 2)
	r := newTestLegacy(t, src, 0)

	gray, black := r.fogTiles(1, 1)

	assert.Equal(t, DefaultLegacyFogTable[15], gray)
	assert.Equal(t, DefaultLegacyFogTable[15], black)
	assert.NotZero(t, black)
}

func TestLegacyFogTilesEdges(t *testing.T) {
	src := testutil.NewGridSource(3, 2)
	src.Fill(0, 2)
	src.Set(0, 1, 0, 1) // explored only
	r := newTestLegacy(t, src, 0)

	// Corner tile: only in-map neighbours count, the map edge does not.
	gray, black := r.fogTiles(0, 0)
	assert.Equal(t, DefaultLegacyFogTable[quadTopRight|quadBottomRight], gray)
	assert.Zero(t, black)

	gray, black = r.fogTiles(2, 1)
	assert.Equal(t, DefaultLegacyFogTable[quadTopLeft], gray)
	assert.Zero(t, black)

	r.settings.ReplayRevealMap = true
	gray, black = r.fogTiles(0, 0)
	assert.Zero(t, gray)
	assert.Zero(t, black)
}

func TestLegacyDrawFullFog(t *testing.T) {
	src := testutil.NewGridSource(4, 3)
	r := newTestLegacy(t, src, 0)
	view := NewView(image.Pt(0, 0), image.Pt(4, 3), r.settings.TileSize)

	require.NoError(t, r.Draw(view))

	want := color.RGBA{A: r.settings.UnseenOpacity}
	b := view.Surface.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			require.Equal(t, want, view.Surface.RGBAAt(x, y), "(%d,%d)", x, y)
		}
	}

	r.settings.RevealMap = true
	require.NoError(t, r.Draw(view))
	assert.Equal(t, r.settings.RevealedOpacity, view.Surface.RGBAAt(5, 5).A)
}

func TestLegacyDrawExploredAndVisible(t *testing.T) {
	src := testutil.NewGridSource(3, 1)
	src.Set(0, 0, 0, 2)
	src.Set(0, 1, 0, 2)
	src.Set(0, 2, 0, 1)
	r := newTestLegacy(t, src, 0)
	ts := r.settings.TileSize
	view := NewView(image.Pt(0, 0), image.Pt(3, 1), ts)

	require.NoError(t, r.Draw(view))

	// Fully visible tile away from fog stays clear.
	assert.Zero(t, view.Surface.RGBAAt(ts/2, ts/2).A)
	// Explored tile gets the explored shroud.
	assert.Equal(t, r.settings.ExploredOpacity, view.Surface.RGBAAt(2*ts+ts/2, ts/2).A)
	// Visible tile next to it gets an edge sprite on its right side.
	assert.NotZero(t, view.Surface.RGBAAt(2*ts-1, ts/2).A)
}

func TestLegacyDrawClipsViewportToMap(t *testing.T) {
	src := testutil.NewGridSource(2, 2)
	src.Fill(0, 2)
	r := newTestLegacy(t, src, 0)
	ts := r.settings.TileSize
	view := NewView(image.Pt(1, 1), image.Pt(3, 3), ts)

	require.NoError(t, r.Draw(view))

	// Only map tile (1,1) is inside the map; everything else stays clear.
	for _, p := range []image.Point{{ts + 1, ts + 1}, {2*ts + 1, 1}, {1, 2*ts + 1}} {
		assert.Zero(t, view.Surface.RGBAAt(p.X, p.Y).A, "%v", p)
	}
}

func TestLegacyDrawSurfaceTooSmall(t *testing.T) {
	src := testutil.NewGridSource(4, 4)
	r := newTestLegacy(t, src, 0)
	view := &View{Pos: image.Pt(0, 0), Size: image.Pt(4, 4), Surface: image.NewRGBA(image.Rect(0, 0, 10, 10))}
	view.Surface.Pix[0] = 7

	err := r.Draw(view)

	assert.ErrorIs(t, err, ErrSurfaceTooSmall)
	assert.Equal(t, uint8(7), view.Surface.Pix[0], "surface must not be written")
}

func TestBlitAlphaKey(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.SetRGBA(0, 0, color.RGBA{R: 0xFF, A: 0xFF})
	src.SetRGBA(1, 1, color.RGBA{G: 0x80, A: 0x80})
	dst := image.NewRGBA(image.Rect(0, 0, 3, 3))
	dst.SetRGBA(2, 1, color.RGBA{B: 9, A: 9})

	blitAlphaKey(dst, image.Pt(1, 0), src, 0x80)

	assert.Equal(t, color.RGBA{R: 0x80, A: 0x80}, dst.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{G: 0x40, A: 0x40}, dst.RGBAAt(2, 1))
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(2, 0), "transparent source keeps destination")

	// Fully clipped blits are ignored.
	blitAlphaKey(dst, image.Pt(5, 5), src, 0xFF)
	blitAlphaKey(dst, image.Pt(0, 0), nil, 0xFF)
}
