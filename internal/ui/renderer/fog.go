package renderer

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/mitchelldurbincs/FogOfWar/internal/fow"
)

// FogLayer owns the fog surface of one viewport and the GPU image it is
// uploaded to.
type FogLayer struct {
	view     *fow.View
	tileSize int
	img      *ebiten.Image
}

// NewFogLayer creates a layer showing size tiles from pos.
func NewFogLayer(pos, size image.Point, tileSize int) *FogLayer {
	return &FogLayer{view: fow.NewView(pos, size, tileSize), tileSize: tileSize}
}

// View is the viewport handed to the fog of war.
func (l *FogLayer) View() *fow.View { return l.view }

// TileSize is the fog pixel size of a tile.
func (l *FogLayer) TileSize() int { return l.tileSize }

// SetPos scrolls the layer to show tiles from pos.
func (l *FogLayer) SetPos(pos image.Point) { l.view.Pos = pos }

// Ensure reallocates the surface when the fog tile size or the number of
// tiles shown changed. It reports whether it did.
func (l *FogLayer) Ensure(size image.Point, tileSize int) bool {
	if tileSize == l.tileSize && size == l.view.Size {
		return false
	}
	l.view = fow.NewView(l.view.Pos, size, tileSize)
	l.tileSize = tileSize
	if l.img != nil {
		l.img.Deallocate()
		l.img = nil
	}
	return true
}

// Upload copies the fog surface to the GPU.
func (l *FogLayer) Upload() {
	b := l.view.Surface.Bounds()
	if l.img == nil {
		l.img = ebiten.NewImage(b.Dx(), b.Dy())
	}
	l.img.WritePixels(l.view.Surface.Pix)
}

// Draw composites the last uploaded fog at screen position at, scaled so
// one fog tile covers tilePx screen pixels.
func (l *FogLayer) Draw(screen *ebiten.Image, at image.Point, tilePx int) {
	if l.img == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	if tilePx != l.tileSize {
		s := float64(tilePx) / float64(l.tileSize)
		op.GeoM.Scale(s, s)
		op.Filter = ebiten.FilterLinear
	}
	op.GeoM.Translate(float64(at.X), float64(at.Y))
	screen.DrawImage(l.img, op)
}
