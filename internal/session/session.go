// Package session assembles a world, its fog of war and the monitors from
// a loaded configuration. Every command starts from a Session.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/FogOfWar/internal/config"
	"github.com/mitchelldurbincs/FogOfWar/internal/fow"
	"github.com/mitchelldurbincs/FogOfWar/internal/game"
	"github.com/mitchelldurbincs/FogOfWar/internal/game/events"
	"github.com/mitchelldurbincs/FogOfWar/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/FogOfWar/internal/monitoring"
)

const eventLogID = "event-log"

// Session is one world observed through one fog of war.
type Session struct {
	Bus        *events.EventBus
	World      *game.Engine
	Fog        *fow.FogOfWar
	Phases     *monitoring.PhaseMonitor
	Goroutines *monitoring.GoroutineMonitor

	logger zerolog.Logger
}

// New generates the world described by cfg.Map and initializes a fog of
// war over it with cfg.Fog. Vision is shown for cfg.UI.VisionPlayer.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Session, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	logger = logger.With().Str("component", "Session").Logger()

	bus := events.NewEventBusWithLogger(logger)
	eventLog := subscribers.NewLoggerSubscriber(eventLogID, logger, zerolog.DebugLevel)
	bus.Subscribe(eventLog)

	allies, err := cfg.Map.AllyPairs()
	if err != nil {
		return nil, err
	}
	world, err := game.NewEngine(ctx, game.GameConfig{
		Width:          cfg.Map.Width,
		Height:         cfg.Map.Height,
		Players:        cfg.Map.Players,
		UnitsPerPlayer: cfg.Map.UnitsPerPlayer,
		SightRadius:    cfg.Map.SightRadius,
		MoveChance:     cfg.Map.MoveChance,
		Allies:         allies,
		Seed:           cfg.Map.Seed,
		Logger:         logger,
		Publisher:      bus,
	})
	if err != nil {
		return nil, fmt.Errorf("create world: %w", err)
	}

	settings, err := cfg.Fog.Settings()
	if err != nil {
		return nil, err
	}

	goroutines := monitoring.NewGoroutineMonitor(
		monitoring.WithCheckInterval(time.Duration(cfg.Monitor.GoroutineInterval)*time.Millisecond),
		monitoring.WithAlertThreshold(cfg.Monitor.GoroutineAlert),
	)
	if cfg.Monitor.GoroutineInterval > 0 {
		goroutines.Start()
	}
	phases := monitoring.NewPhaseMonitor(
		monitoring.WithFrameBudget(time.Duration(cfg.Bench.FrameBudget)*time.Millisecond),
		monitoring.WithLeakCheck(goroutines),
		monitoring.WithPhaseLogger(logger),
	)
	// Stage timings of different algorithms are not comparable
	bus.SubscribeFunc(events.TypeFogTypeChanged, func(events.Event) {
		phases.Reset()
	})

	opts := []fow.Option{
		fow.WithLogger(logger),
		fow.WithPublisher(bus),
		fow.WithStageObserver(phases),
	}
	if cfg.Fog.LegacySheet != "" {
		sheet, err := fow.LoadFogSheet(cfg.Fog.LegacySheet, settings.TileSize, settings.TileSize)
		if err != nil {
			return nil, fmt.Errorf("load legacy fog sheet: %w", err)
		}
		opts = append(opts, fow.WithFogSheet(sheet))
	}

	fog, err := fow.New(settings, opts...)
	if err != nil {
		return nil, fmt.Errorf("create fog of war: %w", err)
	}
	if err := fog.Init(world, world); err != nil {
		return nil, err
	}
	fog.ShowVisionFor(cfg.UI.VisionPlayer)
	// Start from a complete picture instead of easing in from nothing
	if err := fog.Update(true); err != nil {
		return nil, err
	}
	goroutines.Rebaseline()

	logger.Info().
		Str("game_id", world.GameID()).
		Str("fog_id", fog.ID()).
		Int("width", world.Width()).
		Int("height", world.Height()).
		Int("players", world.NumPlayers()).
		Msg("Session ready")

	return &Session{
		Bus:        bus,
		World:      world,
		Fog:        fog,
		Phases:     phases,
		Goroutines: goroutines,
		logger:     logger,
	}, nil
}

// Apply re-applies the fog section of a reloaded configuration. The world
// is left untouched.
func (s *Session) Apply(cfg *config.Config) error {
	settings, err := cfg.Fog.Settings()
	if err != nil {
		return err
	}
	if err := s.Fog.ApplySettings(settings); err != nil {
		return fmt.Errorf("apply fog settings: %w", err)
	}
	s.Phases.Reset()
	s.logger.Info().Msg("Fog settings reloaded")
	return nil
}

// Tick steps the world every ticksPerStep ticks and advances the fog.
func (s *Session) Tick(ctx context.Context, tick, ticksPerStep int) error {
	if ticksPerStep > 0 && tick%ticksPerStep == 0 {
		if err := s.World.Step(ctx); err != nil {
			return err
		}
	}
	return s.Fog.Update(false)
}

// Close stops the goroutine monitor, releases the fog buffers and detaches
// the event log from the bus.
func (s *Session) Close() {
	s.Goroutines.Stop()
	s.Fog.Reset()
	s.Phases.LogSummary()
	s.Bus.Unsubscribe(eventLogID)
}
