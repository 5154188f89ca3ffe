package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/FogOfWar/internal/config"
	"github.com/mitchelldurbincs/FogOfWar/internal/session"
	"github.com/mitchelldurbincs/FogOfWar/internal/termview"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	logFile := flag.String("log", "", "Write logs to this file (discarded when empty)")
	fps := flag.Int("fps", 30, "Fog updates per second")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()

	// The terminal belongs to the view; logs go to a file or nowhere
	var out io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open log file")
		}
		defer f.Close()
		out = f
	}
	config.SetupLogging(config.LoggingConfig{Level: cfg.Logging.Level, Format: "plain"}, out)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := session.New(ctx, cfg, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create session")
	}
	defer sess.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create screen")
	}
	if err := screen.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize screen")
	}
	defer screen.Fini()

	view, err := termview.New(screen, sess.World, sess.Fog, cfg.UI.VisionPlayer, log.Logger)
	if err != nil {
		screen.Fini()
		log.Fatal().Err(err).Msg("Failed to create terminal view")
	}
	tick := time.Second / time.Duration(max(*fps, 1))
	if err := view.Run(ctx, tick, cfg.UI.TicksPerStep); err != nil {
		screen.Fini()
		log.Fatal().Err(err).Msg("Terminal view stopped")
	}
}
