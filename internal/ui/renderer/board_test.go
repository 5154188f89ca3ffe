package renderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/mitchelldurbincs/FogOfWar/internal/game/core"
	"github.com/stretchr/testify/assert"
)

func TestVisibleTiles(t *testing.T) {
	area := image.Rect(10, 20, 10+100, 20+64)
	assert.Equal(t, image.Rect(2, 3, 6, 5), VisibleTiles(area, image.Pt(2, 3), 32), "partial tiles are included")
	assert.Equal(t, image.Rect(0, 0, 25, 16), VisibleTiles(area, image.Point{}, 4))
}

func TestTileOrigin(t *testing.T) {
	area := image.Rect(10, 20, 400, 300)
	assert.Equal(t, image.Pt(10, 20), TileOrigin(area, image.Pt(5, 5), image.Pt(5, 5), 32))
	assert.Equal(t, image.Pt(10+64, 20+32), TileOrigin(area, image.Pt(5, 5), image.Pt(7, 6), 32))
}

func TestPlayerColor(t *testing.T) {
	assert.Equal(t, PlayerColors[0], PlayerColor(0))
	assert.Equal(t, PlayerColors[1], PlayerColor(len(PlayerColors)+1))
	assert.Equal(t, color.RGBA{120, 120, 120, 255}, PlayerColor(-1))
}

func TestTerrainColorsComplete(t *testing.T) {
	for _, terrain := range []core.Terrain{core.TerrainGrass, core.TerrainForest, core.TerrainWater, core.TerrainMountain} {
		_, ok := TerrainColors[terrain]
		assert.True(t, ok, terrain.String())
	}
}

func TestShiftColor(t *testing.T) {
	assert.Equal(t, color.RGBA{60, 110, 255, 255}, shiftColor(color.RGBA{0, 50, 250, 255}, 60))
}

func TestFogLayerEnsure(t *testing.T) {
	l := NewFogLayer(image.Pt(1, 2), image.Pt(10, 8), 32)
	assert.Equal(t, image.Rect(0, 0, 320, 256), l.View().Surface.Rect)

	assert.False(t, l.Ensure(image.Pt(10, 8), 32))
	l.SetPos(image.Pt(4, 4))
	assert.True(t, l.Ensure(image.Pt(10, 8), 16))
	assert.Equal(t, 16, l.TileSize())
	assert.Equal(t, image.Pt(4, 4), l.View().Pos, "position survives reallocation")
	assert.Equal(t, image.Rect(0, 0, 160, 128), l.View().Surface.Rect)
}
