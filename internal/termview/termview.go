// Package termview shows a world through the fog of war in a terminal.
// Every cell is one map tile; its background is the terrain colour
// shaded by the fog pixel at the tile centre.
package termview

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/FogOfWar/internal/fow"
	"github.com/mitchelldurbincs/FogOfWar/internal/game"
	"github.com/mitchelldurbincs/FogOfWar/internal/game/core"
)

const statusRows = 1

var terrainColors = map[core.Terrain]color.RGBA{
	core.TerrainGrass:    {R: 70, G: 120, B: 50, A: 255},
	core.TerrainForest:   {R: 25, G: 80, B: 30, A: 255},
	core.TerrainWater:    {R: 35, G: 70, B: 150, A: 255},
	core.TerrainMountain: {R: 125, G: 115, B: 105, A: 255},
}

var terrainRunes = map[core.Terrain]rune{
	core.TerrainGrass:    ' ',
	core.TerrainForest:   '♣',
	core.TerrainWater:    '~',
	core.TerrainMountain: '▲',
}

var unitColor = color.RGBA{R: 250, G: 240, B: 200, A: 255}

// View renders one vision player's fog into a tcell screen.
type View struct {
	screen tcell.Screen
	world  *game.Engine
	fog    *fow.FogOfWar
	logger zerolog.Logger

	view         *fow.View
	visionPlayer int
	forced       bool
	message      string
}

// New creates a view of world through fog. The fog must be initialized.
func New(screen tcell.Screen, world *game.Engine, fog *fow.FogOfWar, visionPlayer int, logger zerolog.Logger) (*View, error) {
	if !fog.Initialized() {
		return nil, fow.ErrNotInitialized
	}
	v := &View{
		screen:       screen,
		world:        world,
		fog:          fog,
		logger:       logger.With().Str("component", "TermView").Logger(),
		visionPlayer: visionPlayer,
		forced:       true,
	}
	v.showVision()
	v.Resize()
	return v, nil
}

// Resize fits the fog surface to the screen. It is called on resize events
// and whenever the fog tile size changes.
func (v *View) Resize() {
	cols, rows := v.screen.Size()
	size := image.Pt(
		max(min(cols, v.world.Width()), 1),
		max(min(rows-statusRows, v.world.Height()), 1),
	)
	var pos image.Point
	if v.view != nil {
		pos = v.view.Pos
	}
	v.view = fow.NewView(pos, size, v.fog.Settings().TileSize)
	v.Scroll(0, 0)
}

// Scroll moves the view by whole tiles, clamped to the map.
func (v *View) Scroll(dx, dy int) {
	p := &v.view.Pos
	p.X = min(max(p.X+dx, 0), max(v.world.Width()-v.view.Size.X, 0))
	p.Y = min(max(p.Y+dy, 0), max(v.world.Height()-v.view.Size.Y, 0))
}

func (v *View) Pos() image.Point { return v.view.Pos }

func (v *View) showVision() {
	for _, p := range v.fog.VisionFor() {
		v.fog.HideVisionFor(p)
	}
	v.fog.ShowVisionFor(v.visionPlayer)
}

// Tick advances the fog by one update.
func (v *View) Tick() error {
	forced := v.forced
	v.forced = false
	return v.fog.Update(forced)
}

// Render draws the map and the status line and shows the screen.
func (v *View) Render() error {
	if err := v.fog.Draw(v.view); err != nil {
		return fmt.Errorf("draw fog: %w", err)
	}
	v.screen.Clear()

	board := v.world.Board()
	units := make(map[image.Point]int)
	for _, u := range v.world.Units() {
		units[image.Pt(u.Pos.X, u.Pos.Y)] = u.Owner
	}
	showAll := v.fog.Settings().NoFogOfWar
	table := v.fog.Table()
	tile := v.fog.Settings().TileSize

	for sy := 0; sy < v.view.Size.Y; sy++ {
		for sx := 0; sx < v.view.Size.X; sx++ {
			mx, my := v.view.Pos.X+sx, v.view.Pos.Y+sy
			terrain := board.T[board.Idx(mx, my)].Terrain
			fog := v.view.Surface.RGBAAt(sx*tile+tile/2, sy*tile+tile/2)

			ch := terrainRunes[terrain]
			fg := shade(color.RGBA{R: 230, G: 230, B: 230, A: 255}, fog)
			owner, hasUnit := units[image.Pt(mx, my)]
			if hasUnit && (showAll || table.At(mx, my) == fow.VisionVisible) {
				ch = rune('A' + owner%26)
				fg = unitColor
			}
			style := tcell.StyleDefault.
				Background(toTcell(shade(terrainColors[terrain], fog))).
				Foreground(toTcell(fg))
			v.screen.SetContent(sx, sy, ch, nil, style)
		}
	}

	v.drawStatus()
	v.screen.Show()
	return nil
}

func (v *View) drawStatus() {
	s := v.fog.Settings()
	line := fmt.Sprintf("turn %d  %s/%s  player %d  %s",
		v.world.Turn(), s.Type, s.Upscale, v.visionPlayer, v.message)
	if v.message == "" {
		line += "q quit  f type  b bilinear  r reveal  n no-fog  tab player  space refresh"
	}
	_, rows := v.screen.Size()
	style := tcell.StyleDefault.Reverse(true)
	for i, r := range []rune(line) {
		v.screen.SetContent(i, rows-1, r, nil, style)
	}
}

// HandleKey applies one key press. It reports false when the view should
// quit.
func (v *View) HandleKey(ev *tcell.EventKey) bool {
	s := v.fog.Settings()
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		v.Scroll(-1, 0)
		return true
	case tcell.KeyRight:
		v.Scroll(1, 0)
		return true
	case tcell.KeyUp:
		v.Scroll(0, -1)
		return true
	case tcell.KeyDown:
		v.Scroll(0, 1)
		return true
	case tcell.KeyTab:
		v.visionPlayer = (v.visionPlayer + 1) % max(v.world.NumPlayers(), 1)
		v.showVision()
		v.message = fmt.Sprintf("vision: player %d", v.visionPlayer)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'f':
			next := fow.FogEnhanced
			if s.Type == fow.FogEnhanced {
				next = fow.FogLegacy
			}
			if err := v.fog.SetType(next); err != nil {
				v.message = err.Error()
				v.logger.Warn().Err(err).Msg("Fog type switch failed")
				return true
			}
			v.message = "fog type: " + next.String()
		case 'b':
			v.fog.EnableBilinearUpscale(s.Upscale != fow.UpscaleBilinear)
			v.message = "upscale: " + v.fog.Settings().Upscale.String()
		case 'r':
			v.fog.SetRevealMap(!s.RevealMap)
			v.message = fmt.Sprintf("reveal map: %t", !s.RevealMap)
		case 'n':
			v.fog.SetNoFogOfWar(!s.NoFogOfWar)
			v.message = fmt.Sprintf("no fog of war: %t", !s.NoFogOfWar)
		case ' ':
			v.message = "forced refresh"
		default:
			return true
		}
	default:
		return true
	}
	v.forced = true
	return true
}

// Run drives the view until ctx is done or the user quits. The world steps
// once every ticksPerStep fog updates.
func (v *View) Run(ctx context.Context, tick time.Duration, ticksPerStep int) error {
	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				// Screen finalized
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !v.HandleKey(ev) {
					return nil
				}
			case *tcell.EventResize:
				v.screen.Sync()
				v.Resize()
			}
		case <-ticker.C:
			ticks++
			if ticksPerStep > 0 && ticks%ticksPerStep == 0 {
				if err := v.world.Step(ctx); err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return fmt.Errorf("world step: %w", err)
				}
			}
			if err := v.Tick(); err != nil {
				return err
			}
			if err := v.Render(); err != nil {
				return err
			}
		}
	}
}

// shade blends the premultiplied fog pixel over c.
func shade(c, fog color.RGBA) color.RGBA {
	inv := 255 - uint32(fog.A)
	return color.RGBA{
		R: uint8((uint32(c.R)*inv)/255 + uint32(fog.R)),
		G: uint8((uint32(c.G)*inv)/255 + uint32(fog.G)),
		B: uint8((uint32(c.B)*inv)/255 + uint32(fog.B)),
		A: 255,
	}
}

func toTcell(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
