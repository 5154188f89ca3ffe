package input

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// CursorTile returns the map tile under the cursor for a viewport drawn
// at screen rectangle area, showing tiles from mapPos with tilePx pixel
// tiles. ok is false when the cursor is outside area.
func CursorTile(area image.Rectangle, mapPos image.Point, tilePx int) (tile image.Point, ok bool) {
	x, y := ebiten.CursorPosition()
	return ScreenToTile(image.Pt(x, y), area, mapPos, tilePx)
}

// ScreenToTile converts a screen pixel to a map tile.
func ScreenToTile(p image.Point, area image.Rectangle, mapPos image.Point, tilePx int) (image.Point, bool) {
	if !p.In(area) || tilePx <= 0 {
		return image.Point{}, false
	}
	rel := p.Sub(area.Min)
	return image.Pt(mapPos.X+rel.X/tilePx, mapPos.Y+rel.Y/tilePx), true
}
