package renderer

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"

	"github.com/mitchelldurbincs/FogOfWar/internal/game"
	"github.com/mitchelldurbincs/FogOfWar/internal/game/core"
)

// -----------------------------------------------------------------------------
// Colour definitions
// -----------------------------------------------------------------------------

var PlayerColors = []color.RGBA{
	{200, 50, 50, 255},  // Red
	{50, 100, 200, 255}, // Blue
	{50, 200, 50, 255},  // Green
	{200, 200, 50, 255}, // Yellow
	{160, 60, 200, 255}, // Purple
	{50, 200, 200, 255}, // Cyan
	{230, 130, 40, 255}, // Orange
	{230, 230, 230, 255},
}

var TerrainColors = map[core.Terrain]color.RGBA{
	core.TerrainGrass:    {96, 140, 70, 255},
	core.TerrainForest:   {40, 90, 45, 255},
	core.TerrainWater:    {50, 80, 150, 255},
	core.TerrainMountain: {110, 100, 90, 255},
}

var (
	UnitRingShift  = 60
	UnitLabelColor = color.White
	// minLabelTile is the smallest tile, in pixels, that gets unit letters
	minLabelTile = 16
)

// PlayerColor returns the colour of player, cycling for large ids.
func PlayerColor(player int) color.RGBA {
	if player < 0 {
		return color.RGBA{120, 120, 120, 255}
	}
	return PlayerColors[player%len(PlayerColors)]
}

// -----------------------------------------------------------------------------
// Renderer
// -----------------------------------------------------------------------------

type BoardRenderer struct {
	defaultFont font.Face
}

// NewBoardRenderer returns a renderer ready to use.
func NewBoardRenderer(f font.Face) *BoardRenderer {
	return &BoardRenderer{defaultFont: f}
}

// Draw renders the tiles and units visible in area. mapPos is the tile at
// the top-left corner of area and tilePx the on-screen tile size.
func (br *BoardRenderer) Draw(screen *ebiten.Image, area image.Rectangle, board *core.Board, units []game.Unit, mapPos image.Point, tilePx int) {
	if board == nil || tilePx <= 0 {
		return
	}
	dst := screen.SubImage(area).(*ebiten.Image)
	tiles := VisibleTiles(area, mapPos, tilePx).Intersect(image.Rect(0, 0, board.W, board.H))

	size := float32(tilePx)
	for y := tiles.Min.Y; y < tiles.Max.Y; y++ {
		for x := tiles.Min.X; x < tiles.Max.X; x++ {
			p := TileOrigin(area, mapPos, image.Pt(x, y), tilePx)
			c := TerrainColors[board.T[board.Idx(x, y)].Terrain]
			vector.DrawFilledRect(dst, float32(p.X), float32(p.Y), size, size, c, false)
		}
	}

	for _, u := range units {
		at := image.Pt(u.Pos.X, u.Pos.Y)
		if !at.In(tiles) {
			continue
		}
		br.drawUnit(dst, TileOrigin(area, mapPos, at, tilePx), u, tilePx)
	}
}

func (br *BoardRenderer) drawUnit(dst *ebiten.Image, origin image.Point, u game.Unit, tilePx int) {
	cx := float32(origin.X) + float32(tilePx)/2
	cy := float32(origin.Y) + float32(tilePx)/2
	r := float32(tilePx) * 0.35
	base := PlayerColor(u.Owner)
	vector.DrawFilledCircle(dst, cx, cy, r+1, shiftColor(base, UnitRingShift), true)
	vector.DrawFilledCircle(dst, cx, cy, r, base, true)

	if tilePx < minLabelTile || br.defaultFont == nil {
		return
	}
	label := string(rune('A' + u.Owner%26))
	b := text.BoundString(br.defaultFont, label)
	x := int(cx) - b.Dx()/2
	y := int(cy) + b.Dy()/2
	text.Draw(dst, label, br.defaultFont, x, y, UnitLabelColor)
}

// VisibleTiles returns the tile rectangle covered by a screen area.
func VisibleTiles(area image.Rectangle, mapPos image.Point, tilePx int) image.Rectangle {
	w := (area.Dx() + tilePx - 1) / tilePx
	h := (area.Dy() + tilePx - 1) / tilePx
	return image.Rect(mapPos.X, mapPos.Y, mapPos.X+w, mapPos.Y+h)
}

// TileOrigin returns the screen pixel of the top-left corner of tile.
func TileOrigin(area image.Rectangle, mapPos, tile image.Point, tilePx int) image.Point {
	return area.Min.Add(tile.Sub(mapPos).Mul(tilePx))
}

// shiftColor returns a slightly lighter version of c.
func shiftColor(c color.Color, amount int) color.Color {
	r, g, b, a := c.RGBA()
	inc := uint32(amount) << 8 // amount*256

	r = clamp16(r + inc)
	g = clamp16(g + inc)
	b = clamp16(b + inc)
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func clamp16(v uint32) uint32 {
	const max = 0xFFFF
	if v > max {
		return max
	}
	return v
}
