package fow

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"math"
	"os"

	"golang.org/x/image/draw"
)

// FogSheet holds the legacy fog edge sprites, one frame per sprite id.
type FogSheet struct {
	frameW, frameH int
	frames         []*image.RGBA
}

// NewFogSheet slices img into frameW x frameH frames, row by row.
func NewFogSheet(img image.Image, frameW, frameH int) (*FogSheet, error) {
	if frameW <= 0 || frameH <= 0 {
		return nil, fmt.Errorf("%w: frame size %dx%d", ErrInvalidSheet, frameW, frameH)
	}
	b := img.Bounds()
	cols, rows := b.Dx()/frameW, b.Dy()/frameH
	if cols == 0 || rows == 0 {
		return nil, fmt.Errorf("%w: %dx%d image holds no %dx%d frame", ErrInvalidSheet, b.Dx(), b.Dy(), frameW, frameH)
	}

	sheet := &FogSheet{frameW: frameW, frameH: frameH}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			frame := image.NewRGBA(image.Rect(0, 0, frameW, frameH))
			sp := b.Min.Add(image.Pt(col*frameW, row*frameH))
			draw.Draw(frame, frame.Bounds(), img, sp, draw.Src)
			sheet.frames = append(sheet.frames, frame)
		}
	}
	return sheet, nil
}

// LoadFogSheet decodes an image file in any registered format and slices
// it into frames.
func LoadFogSheet(path string, frameW, frameH int) (*FogSheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fog sheet: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidSheet, path, err)
	}
	return NewFogSheet(img, frameW, frameH)
}

// Frames returns the number of sprites in the sheet.
func (s *FogSheet) Frames() int { return len(s.frames) }

// FrameSize returns the size of one sprite in pixels.
func (s *FogSheet) FrameSize() image.Point { return image.Pt(s.frameW, s.frameH) }

// Frame returns sprite id, or nil when the sheet has no such frame.
func (s *FogSheet) Frame(id int) *image.RGBA {
	if id < 0 || id >= len(s.frames) {
		return nil
	}
	return s.frames[id]
}

// covers checks that every sprite id in table exists and that frames fit
// a tileSize tile.
func (s *FogSheet) covers(table LegacyFogTable, tileSize int) error {
	if need := table.Frames(); need > len(s.frames) {
		return fmt.Errorf("%w: table needs %d frames, sheet has %d", ErrInvalidSheet, need, len(s.frames))
	}
	if s.frameW != tileSize || s.frameH != tileSize {
		return fmt.Errorf("%w: frame %dx%d does not match tile size %d", ErrInvalidSheet, s.frameW, s.frameH, tileSize)
	}
	return nil
}

// GenerateFogSheet draws a sheet for table procedurally: the frame a
// pattern maps to is shaded over the fogged quadrants of the pattern, with
// a soft falloff toward the clear ones. Frames no pattern refers to stay
// transparent.
func GenerateFogSheet(tileSize int, c color.RGBA, table LegacyFogTable) *FogSheet {
	sheet := &FogSheet{
		frameW: tileSize,
		frameH: tileSize,
		frames: make([]*image.RGBA, table.Frames()),
	}
	for i := range sheet.frames {
		sheet.frames[i] = image.NewRGBA(image.Rect(0, 0, tileSize, tileSize))
	}
	for pattern, id := range table {
		if id == 0 || pattern == 0 {
			continue
		}
		paintEdgeSprite(sheet.frames[id], pattern, c)
	}
	return sheet
}

// Legacy quadrant bits.
const (
	quadTopRight    = 1
	quadTopLeft     = 2
	quadBottomRight = 4
	quadBottomLeft  = 8
)

func paintEdgeSprite(dst *image.RGBA, pattern int, c color.RGBA) {
	size := dst.Bounds().Dx()
	const falloff = 0.45

	has := func(q int) bool { return pattern&q != 0 }
	for y := 0; y < size; y++ {
		v := (float64(y) + 0.5) / float64(size)
		for x := 0; x < size; x++ {
			u := (float64(x) + 0.5) / float64(size)

			var cov float64
			edge := func(d float64) { cov = math.Max(cov, 1-d/falloff) }
			corner := func(cu, cv float64) { edge(math.Hypot(u-cu, v-cv)) }

			if has(quadTopLeft) && has(quadTopRight) {
				edge(v)
			}
			if has(quadBottomLeft) && has(quadBottomRight) {
				edge(1 - v)
			}
			if has(quadTopLeft) && has(quadBottomLeft) {
				edge(u)
			}
			if has(quadTopRight) && has(quadBottomRight) {
				edge(1 - u)
			}
			if has(quadTopLeft) {
				corner(0, 0)
			}
			if has(quadTopRight) {
				corner(1, 0)
			}
			if has(quadBottomLeft) {
				corner(0, 1)
			}
			if has(quadBottomRight) {
				corner(1, 1)
			}
			if cov <= 0 {
				continue
			}
			dst.SetRGBA(x, y, premultiplied(c, uint8(math.Round(math.Min(cov, 1)*0xFF))))
		}
	}
}
