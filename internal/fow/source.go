package fow

import (
	"image"
	"sort"
)

// MapSource is the authoritative map store the visibility table is built from.
type MapSource interface {
	// Width and Height return the map size in tiles.
	Width() int
	Height() int
	// VisionLevel returns the raw vision level player has over tile idx
	// (row-major, idx = y*Width()+x).
	VisionLevel(idx int, player int) uint8
}

// VisionRegistry exposes shared-vision relationships between players.
type VisionRegistry interface {
	// SharedVision returns the players whose vision player receives.
	SharedVision(player int) []int
}

// Viewport is a display region the fog is composited into.
type Viewport interface {
	// MapPos is the map tile shown at the top-left corner of the viewport.
	MapPos() image.Point
	// MapSize is the number of tiles shown horizontally and vertically.
	MapSize() image.Point
	// FogSurface is the premultiplied RGBA surface receiving the fog. It
	// must be at least MapSize()*tileSize pixels.
	FogSurface() *image.RGBA
}

// View is a plain Viewport backed by its own surface.
type View struct {
	Pos     image.Point
	Size    image.Point
	Surface *image.RGBA
}

// NewView allocates a view showing size tiles starting at pos, with a
// surface large enough for tileSize pixel tiles.
func NewView(pos, size image.Point, tileSize int) *View {
	return &View{
		Pos:     pos,
		Size:    size,
		Surface: image.NewRGBA(image.Rect(0, 0, size.X*tileSize, size.Y*tileSize)),
	}
}

func (v *View) MapPos() image.Point     { return v.Pos }
func (v *View) MapSize() image.Point    { return v.Size }
func (v *View) FogSurface() *image.RGBA { return v.Surface }

// observedPlayers expands the players vision is shown for with everyone
// sharing vision with them. The result is sorted and free of duplicates.
func observedPlayers(visionFor []int, registry VisionRegistry) []int {
	seen := make(map[int]struct{}, len(visionFor)*2)
	for _, p := range visionFor {
		seen[p] = struct{}{}
		if registry == nil {
			continue
		}
		for _, shared := range registry.SharedVision(p) {
			seen[shared] = struct{}{}
		}
	}
	players := make([]int, 0, len(seen))
	for p := range seen {
		players = append(players, p)
	}
	sort.Ints(players)
	return players
}

// clipToMap limits a viewport's tile rectangle to the map.
func clipToMap(vp Viewport, mapW, mapH int) image.Rectangle {
	pos, size := vp.MapPos(), vp.MapSize()
	r := image.Rect(pos.X, pos.Y, pos.X+size.X, pos.Y+size.Y)
	return r.Intersect(image.Rect(0, 0, mapW, mapH))
}
