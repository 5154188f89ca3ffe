package mapgen

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/mitchelldurbincs/FogOfWar/internal/game/core"
)

var ErrNoSpawnLocation = errors.New("no passable tile left for a spawn")

// MapConfig holds configuration for map generation
type MapConfig struct {
	Width           int
	Height          int
	PlayerCount     int
	ForestRatio     int // 1 forest seed per N tiles, 0 disables
	ForestSize      int
	LakeRatio       int // 1 lake seed per N tiles, 0 disables
	LakeSize        int
	MinSpawnSpacing int

	NumMountainVeins int
	MinVeinLength    int
	MaxVeinLength    int
}

// DefaultMapConfig returns a sensible default configuration
func DefaultMapConfig(w, h, players int) MapConfig {
	return MapConfig{
		Width:            w,
		Height:           h,
		PlayerCount:      players,
		ForestRatio:      60,
		ForestSize:       12,
		LakeRatio:        150,
		LakeSize:         10,
		MinSpawnSpacing:  max(w, h) / 4,
		NumMountainVeins: (w * h) / 80,
		MinVeinLength:    3,
		MaxVeinLength:    max(w/4, 3),
	}
}

// SpawnPlacement tracks where a player's starting position was placed
type SpawnPlacement struct {
	PlayerID int
	Idx      int
	X, Y     int
}

// Generator handles map generation with deterministic RNG
type Generator struct {
	config MapConfig
	rng    *rand.Rand
}

// NewGenerator creates a new map generator
func NewGenerator(config MapConfig, rng *rand.Rand) *Generator {
	return &Generator{
		config: config,
		rng:    rng,
	}
}

// GenerateMap creates a board with terrain and one spawn per player.
func (g *Generator) GenerateMap() (*core.Board, []SpawnPlacement, error) {
	if g.config.Width <= 0 || g.config.Height <= 0 {
		return nil, nil, fmt.Errorf("invalid map size %dx%d", g.config.Width, g.config.Height)
	}
	board := core.NewBoard(g.config.Width, g.config.Height)

	g.placeBlobs(board, core.TerrainWater, g.config.LakeRatio, g.config.LakeSize)
	g.placeBlobs(board, core.TerrainForest, g.config.ForestRatio, g.config.ForestSize)
	g.placeMountains(board)

	spawns, err := g.placeSpawns(board)
	if err != nil {
		return nil, nil, err
	}
	return board, spawns, nil
}

// placeBlobs grows clusters of terrain by random walks from random seeds.
func (g *Generator) placeBlobs(b *core.Board, terrain core.Terrain, ratio, size int) {
	if ratio <= 0 || size <= 0 {
		return
	}
	seeds := (b.W * b.H) / ratio
	for i := 0; i < seeds; i++ {
		c := core.NewCoordinate(g.rng.Intn(b.W), g.rng.Intn(b.H))
		for step := 0; step < size; step++ {
			b.T[c.ToIndex(b.W)].Terrain = terrain
			next := c.ValidNeighbors(b.W, b.H)
			c = next[g.rng.Intn(len(next))]
		}
	}
}

// placeMountains draws straight-ish ridges of mountains.
func (g *Generator) placeMountains(b *core.Board) {
	if g.config.NumMountainVeins <= 0 || g.config.MaxVeinLength < g.config.MinVeinLength {
		return
	}
	for i := 0; i < g.config.NumMountainVeins; i++ {
		x, y := g.rng.Intn(b.W), g.rng.Intn(b.H)
		dx, dy := g.rng.Intn(3)-1, g.rng.Intn(3)-1
		if dx == 0 && dy == 0 {
			dx = 1
		}
		length := g.config.MinVeinLength + g.rng.Intn(g.config.MaxVeinLength-g.config.MinVeinLength+1)
		for step := 0; step < length && b.InBounds(x, y); step++ {
			b.T[b.Idx(x, y)].Terrain = core.TerrainMountain
			// Occasionally bend the ridge
			if g.rng.Intn(4) == 0 {
				dx, dy = g.bend(dx, dy)
			}
			x, y = x+dx, y+dy
		}
	}
}

func (g *Generator) bend(dx, dy int) (int, int) {
	if g.rng.Intn(2) == 0 {
		return dy, dx
	}
	if dx == 0 {
		return g.rng.Intn(3) - 1, dy
	}
	return dx, g.rng.Intn(3) - 1
}

func (g *Generator) placeSpawns(b *core.Board) ([]SpawnPlacement, error) {
	placements := make([]SpawnPlacement, 0, g.config.PlayerCount)
	for pid := 0; pid < g.config.PlayerCount; pid++ {
		placement, err := g.findSpawnLocation(b, placements)
		if err != nil {
			return nil, fmt.Errorf("player %d: %w", pid, err)
		}
		placements = append(placements, placement)
	}
	return placements, nil
}

func (g *Generator) findSpawnLocation(b *core.Board, existing []SpawnPlacement) (SpawnPlacement, error) {
	taken := func(idx int) bool {
		for _, other := range existing {
			if other.Idx == idx {
				return true
			}
		}
		return false
	}

	maxAttempts := b.W * b.H
	for attempts := 0; attempts < maxAttempts; attempts++ {
		x, y := g.rng.Intn(b.W), g.rng.Intn(b.H)
		idx := b.Idx(x, y)
		if !b.T[idx].Terrain.Passable() || taken(idx) {
			continue
		}

		validLocation := true
		for _, other := range existing {
			if b.Distance(x, y, other.X, other.Y) < g.config.MinSpawnSpacing {
				validLocation = false
				break
			}
		}
		if validLocation {
			return SpawnPlacement{PlayerID: len(existing), Idx: idx, X: x, Y: y}, nil
		}
	}

	// Fallback: any passable tile not used yet
	for idx, tile := range b.T {
		if tile.Terrain.Passable() && !taken(idx) {
			x, y := b.XY(idx)
			return SpawnPlacement{PlayerID: len(existing), Idx: idx, X: x, Y: y}, nil
		}
	}
	return SpawnPlacement{}, ErrNoSpawnLocation
}
