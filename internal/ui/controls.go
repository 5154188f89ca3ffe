package ui

import (
	"fmt"
	"image"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/FogOfWar/internal/fow"
	"github.com/mitchelldurbincs/FogOfWar/internal/game"
	"github.com/mitchelldurbincs/FogOfWar/internal/monitoring"
	"github.com/mitchelldurbincs/FogOfWar/internal/ui/input"
)

// Controls applies viewer actions to the fog and the world. It holds no
// GPU state so it can be driven without a window.
type Controls struct {
	fog     *fow.FogOfWar
	world   *game.Engine
	monitor *monitoring.PhaseMonitor
	logger  zerolog.Logger

	visionPlayer int
	everyone     bool
	forced       bool
	mainPos      image.Point
	mainSize     image.Point
	message      string

	copyText func(string) error
}

func NewControls(fog *fow.FogOfWar, world *game.Engine, monitor *monitoring.PhaseMonitor, visionPlayer int, logger zerolog.Logger) *Controls {
	c := &Controls{
		fog:          fog,
		world:        world,
		monitor:      monitor,
		logger:       logger.With().Str("component", "Controls").Logger(),
		visionPlayer: visionPlayer,
		copyText:     clipboard.WriteAll,
	}
	c.showVision()
	return c
}

// Apply runs one action. Failures are kept as the status message and
// returned.
func (c *Controls) Apply(a input.Action) error {
	err := c.apply(a)
	if err != nil {
		c.message = fmt.Sprintf("%s failed: %v", a, err)
		c.logger.Warn().Err(err).Stringer("action", a).Msg("Viewer action failed")
		return err
	}
	c.logger.Debug().Stringer("action", a).Msg("Viewer action")
	return nil
}

func (c *Controls) apply(a input.Action) error {
	s := c.fog.Settings()
	switch a {
	case input.ActionToggleFogType:
		next := fow.FogEnhanced
		if s.Type == fow.FogEnhanced {
			next = fow.FogLegacy
		}
		if err := c.fog.SetType(next); err != nil {
			return err
		}
		c.message = "fog type: " + next.String()
	case input.ActionToggleBilinear:
		c.fog.EnableBilinearUpscale(s.Upscale != fow.UpscaleBilinear)
		c.message = "upscale: " + c.fog.Settings().Upscale.String()
	case input.ActionToggleRevealMap:
		c.fog.SetRevealMap(!s.RevealMap)
		c.message = fmt.Sprintf("reveal map: %t", !s.RevealMap)
	case input.ActionToggleNoFog:
		c.fog.SetNoFogOfWar(!s.NoFogOfWar)
		c.message = fmt.Sprintf("no fog of war: %t", !s.NoFogOfWar)
	case input.ActionNextVisionPlayer:
		c.visionPlayer = (c.visionPlayer + 1) % max(c.world.NumPlayers(), 1)
		c.showVision()
		c.message = fmt.Sprintf("vision: player %d", c.visionPlayer)
	case input.ActionToggleSharedVision:
		c.everyone = !c.everyone
		c.showVision()
		c.message = fmt.Sprintf("vision of every player: %t", c.everyone)
	case input.ActionForceRefresh:
		c.message = "forced refresh"
	case input.ActionCopyStatus:
		if err := c.copyText(c.Status()); err != nil {
			return err
		}
		c.message = "status copied to clipboard"
	default:
		dx, dy := a.Scroll()
		c.Scroll(dx, dy)
		return nil
	}
	c.forced = true
	return nil
}

// showVision points the fog at the current vision player, or at every
// player in observer mode.
func (c *Controls) showVision() {
	for _, p := range c.fog.VisionFor() {
		c.fog.HideVisionFor(p)
	}
	if c.everyone {
		for p := 0; p < c.world.NumPlayers(); p++ {
			c.fog.ShowVisionFor(p)
		}
		return
	}
	c.fog.ShowVisionFor(c.visionPlayer)
}

// SetMainSize records how many tiles the main viewport shows so scrolling
// stays on the map.
func (c *Controls) SetMainSize(size image.Point) {
	c.mainSize = size
	c.Scroll(0, 0)
}

// Scroll moves the main viewport by whole tiles, clamped to the map.
func (c *Controls) Scroll(dx, dy int) {
	maxX := max(c.world.Width()-c.mainSize.X, 0)
	maxY := max(c.world.Height()-c.mainSize.Y, 0)
	c.mainPos.X = min(max(c.mainPos.X+dx, 0), maxX)
	c.mainPos.Y = min(max(c.mainPos.Y+dy, 0), maxY)
}

// TakeForced returns whether the next fog update must run every stage at
// once, and clears the request.
func (c *Controls) TakeForced() bool {
	f := c.forced
	c.forced = false
	return f
}

// Force requests a full fog refresh on the next update.
func (c *Controls) Force(reason string) {
	c.forced = true
	c.message = reason
}

func (c *Controls) MainPos() image.Point { return c.mainPos }
func (c *Controls) VisionPlayer() int    { return c.visionPlayer }
func (c *Controls) Message() string      { return c.message }

// Status is a plain text report of the world, the fog and its timings.
func (c *Controls) Status() string {
	s := c.fog.Settings()
	var sb strings.Builder
	fmt.Fprintf(&sb, "world %s turn %d, %dx%d, %d players\n",
		c.world.GameID(), c.world.Turn(), c.world.Width(), c.world.Height(), c.world.NumPlayers())
	fmt.Fprintf(&sb, "fog %s upscale=%s state=%s vision=%v\n",
		s.Type, s.Upscale, c.fog.State(), c.fog.VisionFor())
	fmt.Fprintf(&sb, "no_fog=%t reveal_map=%t replay_reveal=%t easing=%d blur=%v/%d\n",
		s.NoFogOfWar, s.RevealMap, s.ReplayRevealMap, s.EasingSteps, s.BlurRadius, s.BlurIterations)
	fmt.Fprintf(&sb, "visible tiles (player %d): %d\n", c.visionPlayer, c.world.VisibleTiles(c.visionPlayer))
	if c.monitor != nil {
		sb.WriteString(c.monitor.String())
	}
	return sb.String()
}
