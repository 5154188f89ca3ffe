package game

import "github.com/mitchelldurbincs/FogOfWar/internal/game/core"

// Unit is a sight source owned by a player.
type Unit struct {
	ID    int
	Owner int
	Pos   core.Coordinate
	Sight int
}

type GameState struct {
	Turn    int
	Board   *core.Board
	Players *core.Players
	Units   []Unit

	// Players whose units moved since the last vision update
	VisionDirty map[int]struct{}
}
