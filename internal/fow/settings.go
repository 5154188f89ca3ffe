package fow

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

// FogType selects the fog of war algorithm.
type FogType uint8

const (
	FogLegacy FogType = iota
	FogEnhanced

	numFogTypes
)

func (t FogType) String() string {
	switch t {
	case FogLegacy:
		return "legacy"
	case FogEnhanced:
		return "enhanced"
	default:
		return fmt.Sprintf("FogType(%d)", uint8(t))
	}
}

// Valid reports whether t names a known algorithm.
func (t FogType) Valid() bool { return t < numFogTypes }

// ParseFogType converts a configuration string to a FogType.
func ParseFogType(s string) (FogType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "legacy":
		return FogLegacy, nil
	case "enhanced", "":
		return FogEnhanced, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidFogType, s)
	}
}

// UpscaleType selects how the enhanced texture is scaled to pixels.
type UpscaleType uint8

const (
	UpscaleSimple UpscaleType = iota
	UpscaleBilinear

	numUpscaleTypes
)

func (u UpscaleType) String() string {
	if u == UpscaleBilinear {
		return "bilinear"
	}
	return "simple"
}

// LegacyFogTable maps a 4-bit quadrant pattern to a fog sprite id.
// Sprite 0 means no edge sprite is drawn.
type LegacyFogTable [16]int

// DefaultLegacyFogTable indexes the frames produced by GenerateFogSheet.
// Bits: 1 top-right, 2 top-left, 4 bottom-right, 8 bottom-left.
var DefaultLegacyFogTable = LegacyFogTable{
	0, 11, 10, 2, 13, 6, 14, 3, 12, 15, 4, 1, 8, 9, 7, 16,
}

// Frames returns the number of sprite frames the table needs.
func (t LegacyFogTable) Frames() int {
	n := 0
	for _, id := range t {
		if id+1 > n {
			n = id + 1
		}
	}
	return n
}

// Settings is the fog of war configuration. It is read every frame and
// changed only between ticks.
type Settings struct {
	Type FogType

	// Alpha values, 0 transparent to 255 opaque.
	ExploredOpacity uint8
	RevealedOpacity uint8
	UnseenOpacity   uint8

	FogColor color.RGBA

	// BlurRadius is the gaussian sigma, per upscale type.
	BlurRadius     [numUpscaleTypes]float64
	BlurIterations int
	EasingSteps    int
	Upscale        UpscaleType

	NoFogOfWar      bool
	RevealMap       bool
	ReplayRevealMap bool

	// TileSize is the pixel size of a map tile on screen.
	TileSize int
	// Workers bounds the data-parallel stages; 0 uses every CPU.
	Workers int

	LegacyTable LegacyFogTable
}

// DefaultSettings returns the stock configuration.
func DefaultSettings() Settings {
	return Settings{
		Type:            FogEnhanced,
		ExploredOpacity: 0x7F,
		RevealedOpacity: 0xBE,
		UnseenOpacity:   0xFE,
		FogColor:        color.RGBA{A: 0xFF},
		BlurRadius:      [numUpscaleTypes]float64{2.0, 1.5},
		BlurIterations:  3,
		EasingSteps:     8,
		Upscale:         UpscaleBilinear,
		TileSize:        32,
		LegacyTable:     DefaultLegacyFogTable,
	}
}

// Validate checks every field and reports the first problem found.
func (s Settings) Validate() error {
	if !s.Type.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidFogType, s.Type)
	}
	if err := validateOpacity(s.ExploredOpacity, s.RevealedOpacity, s.UnseenOpacity); err != nil {
		return err
	}
	if s.Upscale >= numUpscaleTypes {
		return fmt.Errorf("%w: unknown upscale type %d", ErrInvalidBlur, s.Upscale)
	}
	if err := validateBlur(s.BlurRadius[UpscaleSimple], s.BlurRadius[UpscaleBilinear], s.BlurIterations); err != nil {
		return err
	}
	if s.EasingSteps < 0 || s.EasingSteps > 255 {
		return fmt.Errorf("%w: %d", ErrInvalidEasing, s.EasingSteps)
	}
	if s.TileSize <= 0 || s.TileSize%4 != 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTileSize, s.TileSize)
	}
	if s.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, s.Workers)
	}
	return validateFogTable(s.LegacyTable)
}

// validateOpacity requires explored fog to be no denser than the
// revealed and unseen levels; upscale deltas are computed from it.
func validateOpacity(explored, revealed, unseen uint8) error {
	if explored > unseen {
		return fmt.Errorf("%w: explored %d exceeds unseen %d", ErrInvalidOpacity, explored, unseen)
	}
	if explored > revealed {
		return fmt.Errorf("%w: explored %d exceeds revealed %d", ErrInvalidOpacity, explored, revealed)
	}
	return nil
}

func validateBlur(simple, bilinear float64, iterations int) error {
	for _, r := range []float64{simple, bilinear} {
		if r < 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			return fmt.Errorf("%w: radius %v", ErrInvalidBlur, r)
		}
	}
	if iterations < 0 {
		return fmt.Errorf("%w: iterations %d", ErrInvalidBlur, iterations)
	}
	return nil
}

func validateFogTable(t LegacyFogTable) error {
	if t[0] != 0 {
		return fmt.Errorf("%w: uniform pattern must map to sprite 0, got %d", ErrInvalidFogTable, t[0])
	}
	for i, id := range t {
		if id < 0 {
			return fmt.Errorf("%w: pattern %d maps to %d", ErrInvalidFogTable, i, id)
		}
	}
	return nil
}

// OpacityToByte converts a 0-255 integer from configuration, rejecting
// anything out of range.
func OpacityToByte(v int) (uint8, error) {
	if v < 0 || v > 255 {
		return 0, fmt.Errorf("%w: %d out of [0,255]", ErrInvalidOpacity, v)
	}
	return uint8(v), nil
}
