package fow

import (
	"fmt"
	"image"
	"time"

	"golang.org/x/image/draw"
)

// legacyRenderer stamps full shroud on hidden tiles and edge sprites along
// the border between visibility levels, one tile at a time.
type legacyRenderer struct {
	*visionBuilder
	sheet *FogSheet
}

func newLegacyRenderer(vb *visionBuilder, sheet *FogSheet) (*legacyRenderer, error) {
	if err := sheet.covers(vb.settings.LegacyTable, vb.settings.TileSize); err != nil {
		return nil, err
	}
	return &legacyRenderer{visionBuilder: vb, sheet: sheet}, nil
}

// neighbourBits folds the neighbour at buffer index i into the black
// (never explored) and gray (explored, out of sight) patterns.
func (r *legacyRenderer) neighbourBits(i, bits int, gray, black *int) {
	switch {
	case !r.table.isExplored(i):
		*black |= bits
		*gray |= bits
	case !r.table.isVisible(i):
		*gray |= bits
	}
}

// fogTiles returns the gray and black sprite ids for tile (x, y).
func (r *legacyRenderer) fogTiles(x, y int) (grayTile, blackTile int) {
	if r.settings.ReplayRevealMap {
		return 0, 0
	}
	t := r.table
	var gray, black int

	hasLeft := x > 0
	hasRight := x < t.mapW-1
	if y > 0 {
		if hasLeft {
			r.neighbourBits(t.Index(x-1, y-1), quadTopLeft, &gray, &black)
		}
		r.neighbourBits(t.Index(x, y-1), quadTopLeft|quadTopRight, &gray, &black)
		if hasRight {
			r.neighbourBits(t.Index(x+1, y-1), quadTopRight, &gray, &black)
		}
	}
	if hasLeft {
		r.neighbourBits(t.Index(x-1, y), quadTopLeft|quadBottomLeft, &gray, &black)
	}
	if hasRight {
		r.neighbourBits(t.Index(x+1, y), quadTopRight|quadBottomRight, &gray, &black)
	}
	if y < t.mapH-1 {
		if hasLeft {
			r.neighbourBits(t.Index(x-1, y+1), quadBottomLeft, &gray, &black)
		}
		r.neighbourBits(t.Index(x, y+1), quadBottomLeft|quadBottomRight, &gray, &black)
		if hasRight {
			r.neighbourBits(t.Index(x+1, y+1), quadBottomRight, &gray, &black)
		}
	}

	table := &r.settings.LegacyTable
	return table[gray], table[black]
}

// Draw clears the viewport surface and stamps the fog of every visible
// map tile in it.
func (r *legacyRenderer) Draw(vp Viewport) error {
	surface, err := checkSurface(vp, r.settings.TileSize)
	if err != nil {
		return err
	}
	defer r.track(StageDraw, time.Now())

	clear(surface.Pix)
	tiles := clipToMap(vp, r.table.mapW, r.table.mapH)
	if tiles.Empty() {
		return nil
	}

	s := r.settings
	hiddenAlpha := s.UnseenOpacity
	if s.RevealMap {
		hiddenAlpha = s.RevealedOpacity
	}
	hiddenShroud := image.NewUniform(premultiplied(s.FogColor, hiddenAlpha))
	exploredShroud := image.NewUniform(premultiplied(s.FogColor, s.ExploredOpacity))
	ts := s.TileSize
	origin := vp.MapPos()

	// Every tile row only touches its own band of surface rows.
	forEachRowRange(tiles.Dy(), resolveWorkers(s.Workers), func(lo, hi int) {
		for y := tiles.Min.Y + lo; y < tiles.Min.Y+hi; y++ {
			for x := tiles.Min.X; x < tiles.Max.X; x++ {
				at := surface.Rect.Min.Add(image.Pt((x-origin.X)*ts, (y-origin.Y)*ts))
				cell := image.Rectangle{Min: at, Max: at.Add(image.Pt(ts, ts))}

				i := r.table.Index(x, y)
				if !r.table.isExplored(i) {
					draw.Draw(surface, cell, hiddenShroud, image.Point{}, draw.Src)
					continue
				}

				gray, black := r.fogTiles(x, y)
				if r.table.isVisible(i) || s.ReplayRevealMap {
					if gray != 0 && gray != black {
						blitAlphaKey(surface, at, r.sheet.Frame(gray), s.ExploredOpacity)
					}
				} else {
					draw.Draw(surface, cell, exploredShroud, image.Point{}, draw.Src)
				}
				if black != 0 {
					blitAlphaKey(surface, at, r.sheet.Frame(black), hiddenAlpha)
				}
			}
		}
	})
	return nil
}

// blitAlphaKey copies the non-transparent pixels of src to dst at the
// given point, scaling them by alpha. Fully transparent source pixels leave
// dst untouched.
func blitAlphaKey(dst *image.RGBA, at image.Point, src *image.RGBA, alpha uint8) {
	if src == nil {
		return
	}
	sb := src.Bounds()
	r := sb.Sub(sb.Min).Add(at).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	sp := sb.Min.Add(r.Min.Sub(at))
	a := uint32(alpha)

	for y := 0; y < r.Dy(); y++ {
		si := src.PixOffset(sp.X, sp.Y+y)
		di := dst.PixOffset(r.Min.X, r.Min.Y+y)
		for x := 0; x < r.Dx(); x, si, di = x+1, si+4, di+4 {
			s := src.Pix[si : si+4 : si+4]
			if s[3] == 0 {
				continue
			}
			d := dst.Pix[di : di+4 : di+4]
			d[0] = uint8(uint32(s[0]) * a / 0xFF)
			d[1] = uint8(uint32(s[1]) * a / 0xFF)
			d[2] = uint8(uint32(s[2]) * a / 0xFF)
			d[3] = uint8(uint32(s[3]) * a / 0xFF)
		}
	}
}

// checkSurface validates that the viewport surface can hold its tiles.
func checkSurface(vp Viewport, tileSize int) (*image.RGBA, error) {
	surface := vp.FogSurface()
	size := vp.MapSize()
	if surface == nil {
		return nil, ErrSurfaceTooSmall
	}
	if b := surface.Bounds(); b.Dx() < size.X*tileSize || b.Dy() < size.Y*tileSize {
		return nil, fmt.Errorf("%w: %dx%d pixels for %dx%d tiles of %d", ErrSurfaceTooSmall,
			b.Dx(), b.Dy(), size.X, size.Y, tileSize)
	}
	return surface, nil
}
