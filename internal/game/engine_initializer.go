package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/mitchelldurbincs/FogOfWar/internal/game/core"
	"github.com/mitchelldurbincs/FogOfWar/internal/game/events"
	"github.com/mitchelldurbincs/FogOfWar/internal/game/mapgen"
	"github.com/rs/zerolog"
)

// GameConfig describes the world to generate.
type GameConfig struct {
	Width          int
	Height         int
	Players        int
	UnitsPerPlayer int
	SightRadius    int
	MoveChance     float64
	// Allies lists pairs of players sharing vision both ways
	Allies [][2]int

	Seed      int64 // used when Rng is nil; 0 means time based
	Rng       *rand.Rand
	Logger    zerolog.Logger
	Publisher events.Publisher
	GameID    string
}

// EngineInitializer handles the initialization of a world engine
type EngineInitializer struct {
	config GameConfig
	logger zerolog.Logger
}

// NewEngineInitializer creates a new engine initializer
func NewEngineInitializer(cfg GameConfig) *EngineInitializer {
	logger := cfg.Logger.With().Str("component", "WorldEngine").Logger()
	return &EngineInitializer{
		config: cfg,
		logger: logger,
	}
}

// Initialize creates and initializes a new engine
func (ei *EngineInitializer) Initialize(ctx context.Context) (*Engine, error) {
	select {
	case <-ctx.Done():
		ei.logger.Error().Err(ctx.Err()).Msg("Engine creation cancelled before map generation")
		return nil, ctx.Err()
	default:
	}

	if err := ei.setupDefaults(); err != nil {
		return nil, err
	}

	board, spawns, err := ei.generateMap()
	if err != nil {
		return nil, fmt.Errorf("map generation failed: %w", err)
	}

	players, err := ei.initializePlayers()
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		gs: &GameState{
			Board:       board,
			Players:     players,
			VisionDirty: make(map[int]struct{}),
		},
		rng:         ei.config.Rng,
		logger:      ei.logger,
		publisher:   ei.config.Publisher,
		gameID:      ei.config.GameID,
		sightRadius: ei.config.SightRadius,
		moveChance:  ei.config.MoveChance,
	}

	ei.placeUnits(engine, spawns)
	engine.updateVision()

	engine.publish(events.NewWorldGeneratedEvent(
		engine.gameID,
		ei.config.Players,
		len(engine.gs.Units),
		ei.config.Width,
		ei.config.Height,
		ei.config.Seed,
	))

	ei.logger.Info().
		Int("width", ei.config.Width).
		Int("height", ei.config.Height).
		Int("players", ei.config.Players).
		Int("units", len(engine.gs.Units)).
		Msg("World created successfully")

	return engine, nil
}

// setupDefaults fills in missing configuration and rejects impossible values
func (ei *EngineInitializer) setupDefaults() error {
	cfg := &ei.config
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", core.ErrInvalidCoordinates, cfg.Width, cfg.Height)
	}
	if cfg.Players < 0 || cfg.Players > core.MaxPlayers {
		return fmt.Errorf("%w: %d players, limit is %d", core.ErrTooManyPlayers, cfg.Players, core.MaxPlayers)
	}
	if cfg.Rng == nil {
		if cfg.Seed == 0 {
			cfg.Seed = time.Now().UnixNano()
		}
		ei.logger.Debug().Int64("seed", cfg.Seed).Msg("No RNG provided, creating seeded RNG")
		cfg.Rng = rand.New(rand.NewSource(cfg.Seed))
	}
	if cfg.UnitsPerPlayer <= 0 {
		cfg.UnitsPerPlayer = DefaultUnitsPerPlayer
	}
	if cfg.SightRadius <= 0 {
		cfg.SightRadius = DefaultSightRadius
	}
	if cfg.MoveChance < 0 || cfg.MoveChance > 1 {
		cfg.MoveChance = DefaultMoveChance
	}
	if cfg.GameID == "" {
		cfg.GameID = "world-" + uuid.NewString()
	}
	return nil
}

func (ei *EngineInitializer) generateMap() (*core.Board, []mapgen.SpawnPlacement, error) {
	mapCfg := mapgen.DefaultMapConfig(ei.config.Width, ei.config.Height, ei.config.Players)
	return mapgen.NewGenerator(mapCfg, ei.config.Rng).GenerateMap()
}

func (ei *EngineInitializer) initializePlayers() (*core.Players, error) {
	players := core.NewPlayers()
	for i := 0; i < ei.config.Players; i++ {
		if _, err := players.Add(colorFor(i)); err != nil {
			return nil, err
		}
	}
	for _, pair := range ei.config.Allies {
		if err := players.Ally(pair[0], pair[1]); err != nil {
			return nil, fmt.Errorf("ally %d with %d: %w", pair[0], pair[1], err)
		}
	}
	return players, nil
}

// placeUnits puts the first unit of every player on its spawn and scatters
// the rest with a short random walk from there.
func (ei *EngineInitializer) placeUnits(engine *Engine, spawns []mapgen.SpawnPlacement) {
	board := engine.gs.Board
	for _, spawn := range spawns {
		pos := core.NewCoordinate(spawn.X, spawn.Y)
		engine.addUnit(spawn.PlayerID, pos)
		for n := 1; n < ei.config.UnitsPerPlayer; n++ {
			at := pos
			for step := 0; step < 3; step++ {
				if next, ok := engine.randomStep(at); ok {
					at = next
				}
			}
			engine.addUnit(spawn.PlayerID, at)
		}
		ei.logger.Debug().
			Int("player", spawn.PlayerID).
			Int("x", spawn.X).
			Int("y", spawn.Y).
			Str("terrain", board.GetTile(spawn.X, spawn.Y).Terrain.String()).
			Msg("Placed spawn")
	}
}
