package main

import (
	"context"
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/FogOfWar/internal/config"
	"github.com/mitchelldurbincs/FogOfWar/internal/session"
	"github.com/mitchelldurbincs/FogOfWar/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	env := flag.String("env", "", "Environment config to merge (config.<env>.yaml)")
	watch := flag.Bool("watch", true, "Reload fog settings when the config file changes")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(*env); err != nil {
		log.Fatal().Err(err).Msg("Failed to load environment config")
	}
	cfg := config.Get()
	config.SetupLogging(cfg.Logging, os.Stdout)

	sess, err := session.New(context.Background(), cfg, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create session")
	}
	defer sess.Close()

	viewer, err := ui.NewViewer(cfg, sess, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create viewer")
	}
	if *watch && config.ConfigFilePath() != "" {
		config.WatchConfig(viewer.OnConfigChange)
		log.Info().Str("file", config.ConfigFilePath()).Msg("Watching config file")
	}

	ebiten.SetWindowSize(cfg.UI.Window.Width, cfg.UI.Window.Height)
	ebiten.SetWindowTitle(cfg.UI.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(viewer); err != nil {
		log.Fatal().Err(err).Msg("Viewer stopped")
	}
}
