package fow

// VisibilityTable is the per-tile classification of the map for the
// observed players. It carries a one-tile Unseen border on every side so
// that 2x2 neighbourhood reads at the map edge never leave the buffer.
type VisibilityTable struct {
	mapW, mapH int
	stride     int
	index0     int
	cells      []VisionLevel
}

// NewVisibilityTable allocates a table for a mapW x mapH map, all Unseen.
func NewVisibilityTable(mapW, mapH int) *VisibilityTable {
	stride := mapW + 2
	return &VisibilityTable{
		mapW:   mapW,
		mapH:   mapH,
		stride: stride,
		index0: stride + 1,
		cells:  make([]VisionLevel, stride*(mapH+2)),
	}
}

// MapWidth and MapHeight return the logical map size.
func (t *VisibilityTable) MapWidth() int  { return t.mapW }
func (t *VisibilityTable) MapHeight() int { return t.mapH }

// Stride is the row length of the bordered buffer.
func (t *VisibilityTable) Stride() int { return t.stride }

// Cells exposes the bordered buffer, row-major, stride Stride().
func (t *VisibilityTable) Cells() []VisionLevel { return t.cells }

// Index maps logical tile (x, y) to its position in Cells. x and y may
// range over [-1, MapWidth()] and [-1, MapHeight()] to reach the border.
func (t *VisibilityTable) Index(x, y int) int {
	return t.index0 + y*t.stride + x
}

// At returns the level of logical tile (x, y), Unseen outside the map.
func (t *VisibilityTable) At(x, y int) VisionLevel {
	if x < 0 || y < 0 || x >= t.mapW || y >= t.mapH {
		return VisionUnseen
	}
	return t.cells[t.Index(x, y)]
}

// Reset marks every cell Unseen.
func (t *VisibilityTable) Reset() {
	clear(t.cells)
}

// Rebuild rewrites every map cell from src for the given observed players.
// A tile whose best raw level reaches threshold becomes Visible, any other
// non-zero level becomes Explored. Border cells are never written.
func (t *VisibilityTable) Rebuild(src MapSource, players []int, threshold uint8, workers int) {
	if len(players) == 0 {
		t.Reset()
		return
	}

	forEachRowRange(t.mapH, workers, func(lo, hi int) {
		for row := lo; row < hi; row++ {
			visIndex := t.index0 + row*t.stride
			mapIndex := row * t.mapW
			for col := 0; col < t.mapW; col++ {
				var best uint8
				for _, p := range players {
					if lvl := src.VisionLevel(mapIndex+col, p); lvl > best {
						best = lvl
						if best >= threshold {
							break
						}
					}
				}
				t.cells[visIndex+col] = classify(best, threshold)
			}
		}
	})
}

// isExplored reports whether the cell at buffer index i was ever seen.
func (t *VisibilityTable) isExplored(i int) bool { return t.cells[i] >= legacyExplored }

// isVisible reports whether the cell at buffer index i is in sight.
func (t *VisibilityTable) isVisible(i int) bool { return t.cells[i] >= legacyVisible }
