package fow

import (
	"encoding/binary"
	"image"
	"time"
)

// enhancedRenderer turns the visibility table into a 4x supersampled alpha
// texture, blurs it, eases it over time and scales it into viewports.
type enhancedRenderer struct {
	*visionBuilder

	tables   upscaleTables
	texture  EasedTexture
	blurer   Blurer
	palette  *fogPalette
	rendered []uint8 // Current() cropped to the map, (W*4)x(H*4)
}

// texelsPerTile is the texture resolution of one map tile per axis.
const texelsPerTile = 4

func newEnhancedRenderer(vb *visionBuilder) *enhancedRenderer {
	s := vb.settings
	w, h := vb.table.mapW, vb.table.mapH
	texW, texH := (w+1)*texelsPerTile, (h+1)*texelsPerTile

	r := &enhancedRenderer{
		visionBuilder: vb,
		rendered:      make([]uint8, w*texelsPerTile*h*texelsPerTile),
	}
	r.texture.Init(texW, texH, s.EasingSteps)
	r.blurer.Init(texW, texH, s.BlurRadius[s.Upscale], s.BlurIterations)
	r.refreshTables()
	r.refreshPalette()
	return r
}

func (r *enhancedRenderer) refreshTables() {
	s := r.settings
	r.tables = newUpscaleTables(s.ExploredOpacity, s.RevealedOpacity, s.UnseenOpacity)
}

func (r *enhancedRenderer) refreshPalette() {
	r.palette = newFogPalette(r.settings.FogColor)
}

// refreshBlur recomputes the box radii after a blur or upscale change.
func (r *enhancedRenderer) refreshBlur() {
	s := r.settings
	r.blurer.PrecalcParameters(s.BlurRadius[s.Upscale], s.BlurIterations)
}

func (r *enhancedRenderer) clean() {
	r.texture.Clean()
	r.blurer.Clean()
	r.rendered = nil
}

// GenerateTexture upsamples the visibility table into the next texture.
func (r *enhancedRenderer) GenerateTexture() {
	defer r.track(StageGenerateTexture, time.Now())
	r.upsample(r.texture.Next())
}

// upsample writes one 4x4 block per 2x2 table neighbourhood. Block (row,
// col) sits between bordered cells (row, col) and (row+1, col+1), so the
// texture is offset half a tile from the map grid.
func (r *enhancedRenderer) upsample(dst []uint8) {
	t := r.table
	texStride := (t.mapW + 1) * texelsPerTile
	explored := &r.tables.explored
	if r.settings.RevealMap {
		explored = &r.tables.revealed
	}
	visible := &r.tables.visible

	forEachRowRange(t.mapH+1, resolveWorkers(r.settings.Workers), func(lo, hi int) {
		for row := lo; row < hi; row++ {
			visIndex := row * t.stride
			texIndex := row * texelsPerTile * texStride
			for col := 0; col <= t.mapW; col++ {
				tl := t.cells[visIndex+col]
				tr := t.cells[visIndex+col+1]
				bl := t.cells[visIndex+col+t.stride]
				br := t.cells[visIndex+col+t.stride+1]

				pv := belowPattern(tl, tr, bl, br, enhancedVisible)
				pe := belowPattern(tl, tr, bl, br, enhancedExplored)

				blockIndex := texIndex + col*texelsPerTile
				for j := 0; j < texelsPerTile; j++ {
					binary.LittleEndian.PutUint32(dst[blockIndex+j*texStride:], visible[pv][j]+explored[pe][j])
				}
			}
		}
	})
}

// belowPattern sets the corner bit of every cell under threshold.
func belowPattern(tl, tr, bl, br, threshold VisionLevel) int {
	var p int
	if tl < threshold {
		p |= cornerTopLeft
	}
	if tr < threshold {
		p |= cornerTopRight
	}
	if bl < threshold {
		p |= cornerBottomLeft
	}
	if br < threshold {
		p |= cornerBottomRight
	}
	return p
}

// BlurTexture smooths the next texture in place.
func (r *enhancedRenderer) BlurTexture() {
	defer r.track(StageBlurTexture, time.Now())
	r.blurer.Blur(r.texture.Next())
}

func (r *enhancedRenderer) Ease()                { r.texture.Ease() }
func (r *enhancedRenderer) PushNext(forced bool) { r.texture.PushNext(forced) }
func (r *enhancedRenderer) FullyEased() bool     { return r.texture.FullyEased() }
func (r *enhancedRenderer) EasingSteps() int     { return r.settings.EasingSteps }

// Draw scales the part of the current texture under the viewport into its
// surface.
func (r *enhancedRenderer) Draw(vp Viewport) error {
	s := r.settings
	surface, err := checkSurface(vp, s.TileSize)
	if err != nil {
		return err
	}
	defer r.track(StageDraw, time.Now())

	clear(surface.Pix)
	tiles := clipToMap(vp, r.table.mapW, r.table.mapH)
	if tiles.Empty() {
		return nil
	}

	// Texel (0,0) of the texture is centred on the bordered corner, half a
	// tile up and left of map tile (0,0).
	const half = texelsPerTile / 2
	x0, y0 := tiles.Min.X*texelsPerTile, tiles.Min.Y*texelsPerTile
	w, h := tiles.Dx()*texelsPerTile, tiles.Dy()*texelsPerTile
	r.texture.DrawRegion(r.rendered, r.table.mapW*texelsPerTile, x0, y0,
		image.Rect(x0+half, y0+half, x0+half+w, y0+half+h))

	src := image.Rect(x0, y0, x0+w, y0+h)
	stride := r.table.mapW * texelsPerTile
	offset := tiles.Min.Sub(vp.MapPos()).Mul(s.TileSize)
	dstMin := surface.Rect.Min.Add(offset)
	workers := resolveWorkers(s.Workers)

	switch s.Upscale {
	case UpscaleBilinear:
		dst := image.Rectangle{Min: dstMin, Max: dstMin.Add(image.Pt(tiles.Dx()*s.TileSize, tiles.Dy()*s.TileSize))}
		DrawBilinear(r.rendered, src, stride, surface, dst, r.palette, workers)
	default:
		texel := s.TileSize / texelsPerTile
		DrawSimple(r.rendered, src, stride, surface, dstMin, texel, texel, r.palette, workers)
	}
	return nil
}
