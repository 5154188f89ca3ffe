package game

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/mitchelldurbincs/FogOfWar/internal/game/core"
	"github.com/mitchelldurbincs/FogOfWar/internal/game/events"
	"github.com/rs/zerolog"
)

// Engine is a tile world of moving units. It is the map and vision source
// of the fog of war: every unit stamps a circle of sight into its owner's
// vision levels.
type Engine struct {
	gs          *GameState
	rng         *rand.Rand
	logger      zerolog.Logger
	publisher   events.Publisher
	gameID      string
	sightRadius int
	moveChance  float64
}

// NewEngine generates a world from cfg.
func NewEngine(ctx context.Context, cfg GameConfig) (*Engine, error) {
	return NewEngineInitializer(cfg).Initialize(ctx)
}

// Step advances the world by one turn: units wander and vision is updated.
func (e *Engine) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.gs.Turn++
	e.moveUnits()
	e.updateVision()
	return nil
}

func (e *Engine) moveUnits() {
	for i := range e.gs.Units {
		u := &e.gs.Units[i]
		if !e.playerAlive(u.Owner) || e.rng.Float64() >= e.moveChance {
			continue
		}
		if next, ok := e.randomStep(u.Pos); ok && next != u.Pos {
			u.Pos = next
			e.gs.VisionDirty[u.Owner] = struct{}{}
		}
	}
}

// randomStep picks a random passable neighbour of c.
func (e *Engine) randomStep(c core.Coordinate) (core.Coordinate, bool) {
	b := e.gs.Board
	options := c.ValidNeighbors(b.W, b.H)
	e.rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	for _, next := range options {
		if b.T[next.ToIndex(b.W)].Terrain.Passable() {
			return next, true
		}
	}
	return c, false
}

func (e *Engine) addUnit(owner int, pos core.Coordinate) int {
	id := len(e.gs.Units)
	e.gs.Units = append(e.gs.Units, Unit{ID: id, Owner: owner, Pos: pos, Sight: e.sightRadius})
	e.gs.VisionDirty[owner] = struct{}{}
	return id
}

// AddUnit places a new unit of owner at (x, y).
func (e *Engine) AddUnit(owner, x, y int) (int, error) {
	if _, err := e.gs.Players.Get(owner); err != nil {
		return -1, err
	}
	if !e.gs.Board.InBounds(x, y) {
		return -1, fmt.Errorf("%w: (%d,%d)", core.ErrInvalidCoordinates, x, y)
	}
	if !e.gs.Board.GetTile(x, y).Terrain.Passable() {
		return -1, fmt.Errorf("%w: (%d,%d)", core.ErrBlocked, x, y)
	}
	id := e.addUnit(owner, core.NewCoordinate(x, y))
	e.updateVision()
	return id, nil
}

// Eliminate kills player: its units stop moving and it no longer sees
// anything new or shares its vision.
func (e *Engine) Eliminate(player int) error {
	p, err := e.gs.Players.Get(player)
	if err != nil {
		return err
	}
	if !p.Alive {
		return nil
	}
	p.Alive = false
	e.gs.VisionDirty[player] = struct{}{}
	e.updateVision()
	e.logger.Info().Int("player", player).Int("turn", e.gs.Turn).Msg("Player eliminated")
	return nil
}

// ShareVision makes receiver see what giver sees.
func (e *Engine) ShareVision(giver, receiver int) error {
	return e.gs.Players.ShareVision(giver, receiver)
}

// RevokeVision stops receiver from seeing what giver sees.
func (e *Engine) RevokeVision(giver, receiver int) error {
	return e.gs.Players.RevokeVision(giver, receiver)
}

func (e *Engine) playerAlive(player int) bool {
	p, err := e.gs.Players.Get(player)
	return err == nil && p.Alive
}

func (e *Engine) publish(ev events.Event) {
	if e.publisher != nil {
		e.publisher.Publish(ev)
	}
}

// Width implements fow.MapSource.
func (e *Engine) Width() int { return e.gs.Board.W }

// Height implements fow.MapSource.
func (e *Engine) Height() int { return e.gs.Board.H }

// VisionLevel implements fow.MapSource.
func (e *Engine) VisionLevel(idx, player int) uint8 { return e.gs.Board.VisionLevel(idx, player) }

// SharedVision implements fow.VisionRegistry.
func (e *Engine) SharedVision(player int) []int { return e.gs.Players.SharedVision(player) }

func (e *Engine) GameID() string         { return e.gameID }
func (e *Engine) Turn() int              { return e.gs.Turn }
func (e *Engine) Board() *core.Board     { return e.gs.Board }
func (e *Engine) Players() *core.Players { return e.gs.Players }
func (e *Engine) NumPlayers() int        { return e.gs.Players.Len() }

// Units returns a copy of all units.
func (e *Engine) Units() []Unit {
	out := make([]Unit, len(e.gs.Units))
	copy(out, e.gs.Units)
	return out
}
