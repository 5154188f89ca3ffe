package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/FogOfWar/internal/config"
	"github.com/mitchelldurbincs/FogOfWar/internal/fow"
	"github.com/mitchelldurbincs/FogOfWar/internal/session"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	ticks := flag.Int("ticks", 0, "Number of ticks to run (0 to use config default)")
	fogType := flag.String("type", "", "Fog algorithm, legacy or enhanced (empty to use config default)")
	dump := flag.String("dump", "", "Write the final fog surface to this PNG file")
	ascii := flag.Bool("ascii", false, "Print the final world as the vision player sees it")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	overrides := map[string]interface{}{}
	if *ticks > 0 {
		overrides["bench.ticks"] = *ticks
	}
	if *fogType != "" {
		overrides["fog.type"] = *fogType
	}
	if *dump != "" {
		overrides["bench.dump_png"] = *dump
	}
	if *ascii {
		overrides["bench.ascii"] = true
	}
	for key, value := range overrides {
		if err := config.Set(key, value); err != nil {
			log.Fatal().Err(err).Str("key", key).Msg("Invalid flag")
		}
	}

	cfg := config.Get()
	config.SetupLogging(cfg.Logging, os.Stderr)

	if err := run(context.Background(), cfg, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("Bench failed")
	}
}

// run steps the world and the fog for cfg.Bench.Ticks ticks, drawing a
// cfg.Bench view every tick, and writes a stage report to out.
func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	sess, err := session.New(ctx, cfg, log.Logger)
	if err != nil {
		return err
	}
	defer sess.Close()
	sess.Phases.Reset()

	view := fow.NewView(image.Point{},
		image.Pt(min(cfg.Bench.ViewWidth, cfg.Map.Width), min(cfg.Bench.ViewHeight, cfg.Map.Height)),
		cfg.Fog.TileSize)

	start := time.Now()
	for tick := 1; tick <= cfg.Bench.Ticks; tick++ {
		if err := sess.Tick(ctx, tick, cfg.UI.TicksPerStep); err != nil {
			return fmt.Errorf("tick %d: %w", tick, err)
		}
		if err := sess.Fog.Draw(view); err != nil {
			return fmt.Errorf("draw tick %d: %w", tick, err)
		}
	}
	elapsed := time.Since(start)

	fmt.Fprintf(out, "%s fog, %dx%d map, %d ticks, %d turns in %v (%.1f ticks/s)\n",
		cfg.Fog.Type, cfg.Map.Width, cfg.Map.Height, cfg.Bench.Ticks, sess.World.Turn(),
		elapsed.Round(time.Millisecond), float64(cfg.Bench.Ticks)/elapsed.Seconds())
	fmt.Fprint(out, sess.Phases.String())
	fmt.Fprintf(out, "over budget: %d\n", sess.Phases.OverBudget())
	m := sess.Goroutines.GetMetrics()
	fmt.Fprintf(out, "goroutines: current %d, baseline %d, peak %d, leaks %d\n",
		m.Current, m.Baseline, m.Peak, m.Leaks)

	if cfg.Bench.ASCII {
		fmt.Fprint(out, sess.World.Render(cfg.UI.VisionPlayer, false))
	}
	if cfg.Bench.DumpPNG != "" {
		if err := dumpPNG(cfg.Bench.DumpPNG, view.Surface); err != nil {
			return err
		}
		fmt.Fprintf(out, "fog surface written to %s\n", cfg.Bench.DumpPNG)
	}
	return nil
}

func dumpPNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
