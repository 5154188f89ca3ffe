package core

import "fmt"

// MaxPlayers bounds the per-tile vision array and shared-vision bitfields.
const MaxPlayers = 16

// Raw per-player vision levels stored on each tile.
const (
	VisionNone     uint8 = 0 // never seen
	VisionExplored uint8 = 1 // seen before, not in sight now
	VisionSeen     uint8 = 2 // currently in sight
)

// Terrain is the ground type of a tile.
type Terrain uint8

const (
	TerrainGrass Terrain = iota
	TerrainForest
	TerrainWater
	TerrainMountain
)

func (t Terrain) String() string {
	switch t {
	case TerrainGrass:
		return "grass"
	case TerrainForest:
		return "forest"
	case TerrainWater:
		return "water"
	case TerrainMountain:
		return "mountain"
	default:
		return fmt.Sprintf("Terrain(%d)", uint8(t))
	}
}

// Passable reports whether units can walk on the terrain.
func (t Terrain) Passable() bool {
	return t == TerrainGrass || t == TerrainForest
}

// Tile represents a single cell on the map.
type Tile struct {
	Terrain Terrain
	// Vision holds the raw vision level of every player over this tile.
	Vision [MaxPlayers]uint8
}

type Board struct {
	W, H int
	T    []Tile // length = W*H (row-major)
}

func NewBoard(w, h int) *Board {
	return &Board{W: w, H: h, T: make([]Tile, w*h)}
}

func (b *Board) Idx(x, y int) int      { return y*b.W + x }
func (b *Board) XY(idx int) (int, int) { return idx % b.W, idx / b.W }

// InBounds checks if coordinates are within board boundaries
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.W && y >= 0 && y < b.H
}

// GetTile safely returns a tile pointer if coordinates are valid, nil otherwise
func (b *Board) GetTile(x, y int) *Tile {
	if !b.InBounds(x, y) {
		return nil
	}
	return &b.T[b.Idx(x, y)]
}

// Width, Height and VisionLevel let the fog of war read the board directly.
func (b *Board) Width() int  { return b.W }
func (b *Board) Height() int { return b.H }

func (b *Board) VisionLevel(idx, player int) uint8 {
	if player < 0 || player >= MaxPlayers {
		return VisionNone
	}
	return b.T[idx].Vision[player]
}

// SetVision stores the raw level of player over tile (x, y).
func (b *Board) SetVision(x, y, player int, level uint8) error {
	if !b.InBounds(x, y) {
		return fmt.Errorf("%w: (%d,%d)", ErrInvalidCoordinates, x, y)
	}
	if player < 0 || player >= MaxPlayers {
		return fmt.Errorf("%w: %d", ErrInvalidPlayer, player)
	}
	b.T[b.Idx(x, y)].Vision[player] = level
	return nil
}

// DemoteVision turns everything player currently sees into explored tiles.
func (b *Board) DemoteVision(player int) {
	for i := range b.T {
		if b.T[i].Vision[player] > VisionExplored {
			b.T[i].Vision[player] = VisionExplored
		}
	}
}

// RevealCircle marks every tile within radius of (cx, cy) as seen by
// player. It returns the number of tiles revealed.
func (b *Board) RevealCircle(cx, cy, radius, player int) int {
	revealed := 0
	r2 := radius * radius
	for y := max(cy-radius, 0); y <= min(cy+radius, b.H-1); y++ {
		dy := y - cy
		for x := max(cx-radius, 0); x <= min(cx+radius, b.W-1); x++ {
			dx := x - cx
			if dx*dx+dy*dy > r2 {
				continue
			}
			b.T[b.Idx(x, y)].Vision[player] = VisionSeen
			revealed++
		}
	}
	return revealed
}

// Distance is the Manhattan distance between two tiles.
func (b *Board) Distance(x1, y1, x2, y2 int) int {
	return Coordinate{X: x1, Y: y1}.DistanceTo(Coordinate{X: x2, Y: y2})
}
