package testutil

import (
	"github.com/mitchelldurbincs/FogOfWar/internal/game/core"
)

// GridSource is an in-memory map store with one raw vision grid per player.
type GridSource struct {
	W, H   int
	Levels map[int][]uint8
}

// NewGridSource creates a w x h source where no player has seen anything.
func NewGridSource(w, h int) *GridSource {
	return &GridSource{W: w, H: h, Levels: make(map[int][]uint8)}
}

func (g *GridSource) Width() int  { return g.W }
func (g *GridSource) Height() int { return g.H }

// VisionLevel returns the raw level of player over tile idx.
func (g *GridSource) VisionLevel(idx, player int) uint8 {
	levels, ok := g.Levels[player]
	if !ok {
		return 0
	}
	return levels[idx]
}

// Set stores the raw level of player over tile (x, y).
func (g *GridSource) Set(player, x, y int, level uint8) {
	levels, ok := g.Levels[player]
	if !ok {
		levels = make([]uint8, g.W*g.H)
		g.Levels[player] = levels
	}
	levels[y*g.W+x] = level
}

// Fill sets every tile of player to level.
func (g *GridSource) Fill(player int, level uint8) {
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			g.Set(player, x, y, level)
		}
	}
}

// StaticRegistry maps a player to the players sharing vision with it.
type StaticRegistry map[int][]int

// SharedVision implements fow.VisionRegistry.
func (r StaticRegistry) SharedVision(player int) []int {
	return r[player]
}

// CreateTestBoard creates a test board with the given dimensions
func CreateTestBoard(width, height int) *core.Board {
	return core.NewBoard(width, height)
}

// CreateTestPlayers creates a registry of count players without shared vision
func CreateTestPlayers(count int) *core.Players {
	players := core.NewPlayers()
	colors := []string{"red", "blue", "green", "yellow"}
	for i := 0; i < count; i++ {
		players.Add(colors[i%len(colors)])
	}
	return players
}
