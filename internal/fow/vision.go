package fow

import "fmt"

// VisionLevel classifies a single tile for the observed player set.
// The values compose as a bit mask: Explored|Visible matches either level.
type VisionLevel uint8

const (
	VisionUnseen   VisionLevel = 0
	VisionExplored VisionLevel = 1
	VisionVisible  VisionLevel = 2
)

// Raw per-player levels reported by a MapSource follow the engine
// convention: 0 never seen, 1 explored, 2 or more currently in sight.
const (
	// visibleThreshold is the raw level a tile needs to count as visible.
	visibleThreshold uint8 = 2
	// noFogVisibleThreshold applies when the map has no fog of war: any
	// explored tile counts as visible.
	noFogVisibleThreshold uint8 = 1
)

// Thresholds used by the renderers when reading the visibility table.
// The legacy renderer stamps shroud on anything below legacyVisible; the
// enhanced upsampler builds one pattern per threshold.
const (
	legacyVisible    = VisionVisible
	legacyExplored   = VisionExplored
	enhancedVisible  = VisionVisible
	enhancedExplored = VisionExplored
)

func (v VisionLevel) String() string {
	switch v {
	case VisionUnseen:
		return "Unseen"
	case VisionExplored:
		return "Explored"
	case VisionVisible:
		return "Visible"
	default:
		return fmt.Sprintf("VisionLevel(%d)", uint8(v))
	}
}

// classify converts the best raw level of the observed players into a
// table level.
func classify(raw, threshold uint8) VisionLevel {
	switch {
	case raw >= threshold:
		return VisionVisible
	case raw > 0:
		return VisionExplored
	default:
		return VisionUnseen
	}
}
