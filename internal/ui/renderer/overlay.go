package renderer

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	HoverColor = color.RGBA{255, 255, 255, 64}  // Semi-transparent white
	FrameColor = color.RGBA{255, 255, 100, 255} // Yellow
)

// DrawTileOverlay tints one tile of a viewport.
func DrawTileOverlay(screen *ebiten.Image, area image.Rectangle, mapPos, tile image.Point, tilePx int, c color.Color) {
	p := TileOrigin(area, mapPos, tile, tilePx)
	r := image.Rectangle{Min: p, Max: p.Add(image.Pt(tilePx, tilePx))}.Intersect(area)
	if r.Empty() {
		return
	}
	vector.DrawFilledRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), c, false)
}

// DrawFrame outlines r with lines of the given thickness.
func DrawFrame(screen *ebiten.Image, r image.Rectangle, thickness float32, c color.Color) {
	x, y := float32(r.Min.X), float32(r.Min.Y)
	w, h := float32(r.Dx()), float32(r.Dy())

	// Top
	vector.DrawFilledRect(screen, x, y, w, thickness, c, false)
	// Bottom
	vector.DrawFilledRect(screen, x, y+h-thickness, w, thickness, c, false)
	// Left
	vector.DrawFilledRect(screen, x, y, thickness, h, c, false)
	// Right
	vector.DrawFilledRect(screen, x+w-thickness, y, thickness, h, c, false)
}
