package fow

// UpscaleTable maps a 2x2 neighbourhood pattern to the 4x4 block of alpha
// deltas it contributes. Each uint32 packs one block row, column 0 in the
// lowest byte, so a row can be stored with a single little-endian write.
type UpscaleTable [16][4]uint32

// Pattern bits, one per corner of a 2x2 neighbourhood. A set bit marks a
// corner tile below the pattern's threshold (fogged).
const (
	cornerTopLeft     = 1 << 0 // the tile itself
	cornerTopRight    = 1 << 1 // right neighbour
	cornerBottomLeft  = 1 << 2 // neighbour below
	cornerBottomRight = 1 << 3 // diagonal neighbour
)

// Template texel values, scaled by the table delta when a table is built.
const (
	texelClear uint8 = 0x00
	texelHalf  uint8 = 0x7F
	texelFull  uint8 = 0xFF
)

// upscaleTemplates holds the static 4x4 shape of every pattern.
var upscaleTemplates = buildUpscaleTemplates()

func buildUpscaleTemplates() [16][4]uint32 {
	var t [16][4]uint32
	for p := 0; p < 16; p++ {
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				t[p][r] |= uint32(templateTexel(p, r, c)) << (8 * c)
			}
		}
	}
	return t
}

// templateTexel shapes texel (r, c) of pattern p. Each texel belongs to the
// quadrant of its nearest corner: outer corner texels copy that corner,
// edge texels soften toward the neighbour across the edge and the four
// centre texels are half-tone unless the whole block agrees.
func templateTexel(p, r, c int) uint8 {
	fogged := func(qr, qc int) bool {
		return p&(1<<(qr*2+qc)) != 0
	}
	qr, qc := r/2, c/2
	own := fogged(qr, qc)
	outerRow := r == 0 || r == 3
	outerCol := c == 0 || c == 3

	switch {
	case outerRow && outerCol:
		return solid(own)
	case outerRow:
		return edge(own, fogged(qr, 1-qc))
	case outerCol:
		return edge(own, fogged(1-qr, qc))
	}

	switch n := bitCount4(p); n {
	case 0:
		return texelClear
	case 4:
		return texelFull
	default:
		return texelHalf
	}
}

func solid(fogged bool) uint8 {
	if fogged {
		return texelFull
	}
	return texelClear
}

func edge(a, b bool) uint8 {
	if a != b {
		return texelHalf
	}
	return solid(a)
}

func bitCount4(p int) int {
	return p&1 + p>>1&1 + p>>2&1 + p>>3&1
}

// GenerateUpscaleTable scales the templates to the alpha step between
// alphaFrom and alphaTo. A non-positive step yields an all-zero table.
func GenerateUpscaleTable(alphaFrom, alphaTo uint8) UpscaleTable {
	var table UpscaleTable
	delta := int(alphaTo) - int(alphaFrom)
	if delta <= 0 {
		return table
	}
	full := uint32(delta)
	half := uint32(delta / 2)

	for i := range table {
		for j := range table[i] {
			var row uint32
			for pos := 0; pos < 4; pos++ {
				var v uint32
				switch uint8(upscaleTemplates[i][j] >> (8 * pos)) {
				case texelFull:
					v = full
				case texelHalf:
					v = half
				}
				row |= v << (8 * pos)
			}
			table[i][j] = row
		}
	}
	return table
}

// upscaleTables is the set of tables the enhanced renderer sums from.
type upscaleTables struct {
	visible  UpscaleTable // clear -> explored
	explored UpscaleTable // explored -> unseen
	revealed UpscaleTable // explored -> revealed, used when the map is revealed
}

func newUpscaleTables(explored, revealed, unseen uint8) upscaleTables {
	return upscaleTables{
		visible:  GenerateUpscaleTable(0, explored),
		explored: GenerateUpscaleTable(explored, unseen),
		revealed: GenerateUpscaleTable(explored, revealed),
	}
}
