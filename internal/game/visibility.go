package game

import "github.com/mitchelldurbincs/FogOfWar/internal/game/core"

// This file contains the raw vision bookkeeping of the world. The fog of
// war reads the levels written here.

// updateVision refreshes the vision of the players whose units moved.
func (e *Engine) updateVision() {
	if len(e.gs.VisionDirty) == 0 {
		return
	}

	// On turn 0 or when most players changed, do a full update
	if e.gs.Turn == 0 || len(e.gs.VisionDirty)*2 > e.gs.Players.Len() {
		e.performFullVisionUpdate()
	} else {
		e.performIncrementalVisionUpdate()
	}
	clear(e.gs.VisionDirty)
}

// performFullVisionUpdate recalculates the vision of every player
func (e *Engine) performFullVisionUpdate() {
	for pid := 0; pid < e.gs.Players.Len(); pid++ {
		e.gs.Board.DemoteVision(pid)
	}
	seen := 0
	for _, u := range e.gs.Units {
		if e.playerAlive(u.Owner) {
			seen += e.gs.Board.RevealCircle(u.Pos.X, u.Pos.Y, u.Sight, u.Owner)
		}
	}
	e.logger.Debug().Int("turn", e.gs.Turn).Int("tiles_revealed", seen).Msg("Performed full vision update")
}

// performIncrementalVisionUpdate only touches the players whose units moved
func (e *Engine) performIncrementalVisionUpdate() {
	for pid := range e.gs.VisionDirty {
		e.refreshPlayerVision(pid)
	}
	e.logger.Trace().Int("turn", e.gs.Turn).Int("players", len(e.gs.VisionDirty)).Msg("Performed incremental vision update")
}

// refreshPlayerVision demotes what pid saw to explored and re-stamps the
// sight circles of its units. Dead players keep only their memory.
func (e *Engine) refreshPlayerVision(pid int) {
	e.gs.Board.DemoteVision(pid)
	if !e.playerAlive(pid) {
		return
	}
	for _, u := range e.gs.Units {
		if u.Owner == pid {
			e.gs.Board.RevealCircle(u.Pos.X, u.Pos.Y, u.Sight, pid)
		}
	}
}

// VisibleTiles counts the tiles player currently sees with its own units.
func (e *Engine) VisibleTiles(player int) int {
	n := 0
	for i := range e.gs.Board.T {
		if e.gs.Board.VisionLevel(i, player) >= core.VisionSeen {
			n++
		}
	}
	return n
}
