package fow

import "image/color"

// fogPalette holds the packed premultiplied RGBA pixel of the fog colour
// for every alpha value. Packing is little endian, R in the lowest byte,
// matching the byte order of image.RGBA.Pix.
type fogPalette [256]uint32

// alphaShift is the bit offset of alpha in a packed pixel.
const alphaShift = 24

func newFogPalette(c color.RGBA) *fogPalette {
	var p fogPalette
	for a := range p {
		px := premultiplied(c, uint8(a))
		p[a] = uint32(px.R) | uint32(px.G)<<8 | uint32(px.B)<<16 | uint32(px.A)<<alphaShift
	}
	return &p
}

// premultiplied returns the fog colour c at the given alpha. The alpha of
// c itself is ignored.
func premultiplied(c color.RGBA, alpha uint8) color.RGBA {
	a := uint32(alpha)
	return color.RGBA{
		R: uint8(uint32(c.R) * a / 0xFF),
		G: uint8(uint32(c.G) * a / 0xFF),
		B: uint8(uint32(c.B) * a / 0xFF),
		A: alpha,
	}
}
