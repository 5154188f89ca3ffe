package ui

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/mitchelldurbincs/FogOfWar/internal/config"
	"github.com/mitchelldurbincs/FogOfWar/internal/fow"
	"github.com/mitchelldurbincs/FogOfWar/internal/game"
	"github.com/mitchelldurbincs/FogOfWar/internal/monitoring"
	"github.com/mitchelldurbincs/FogOfWar/internal/session"
	"github.com/mitchelldurbincs/FogOfWar/internal/ui/input"
	"github.com/mitchelldurbincs/FogOfWar/internal/ui/renderer"
)

const (
	hudLines   = 4
	lineHeight = 16
	margin     = 8
)

var (
	backgroundColor = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	hudColor        = color.RGBA{R: 230, G: 230, B: 230, A: 255}
)

// Viewer is the Ebitengine game showing a world through the fog of war
// in a scrollable main viewport and a whole-map overview.
type Viewer struct {
	cfg      *config.Config
	session  *session.Session
	world    *game.Engine
	fog      *fow.FogOfWar
	monitor  *monitoring.PhaseMonitor
	controls *Controls
	input    *input.Handler
	board    *renderer.BoardRenderer
	font     font.Face
	logger   zerolog.Logger

	main     *renderer.FogLayer
	overview *renderer.FogLayer
	// overviewStale is set when the overview fog must be redrawn
	overviewStale bool

	tick    int
	reloads chan *config.Config
}

// NewViewer wires a viewer around a session.
func NewViewer(cfg *config.Config, sess *session.Session, logger zerolog.Logger) (*Viewer, error) {
	world, fog, monitor := sess.World, sess.Fog, sess.Phases
	if !fog.Initialized() {
		return nil, fow.ErrNotInitialized
	}
	logger = logger.With().Str("component", "Viewer").Logger()
	tileSize := fog.Settings().TileSize

	v := &Viewer{
		cfg:           cfg,
		session:       sess,
		world:         world,
		fog:           fog,
		monitor:       monitor,
		controls:      NewControls(fog, world, monitor, cfg.UI.VisionPlayer, logger),
		input:         input.NewHandler(4),
		board:         renderer.NewBoardRenderer(basicfont.Face7x13),
		font:          basicfont.Face7x13,
		logger:        logger,
		overview:      renderer.NewFogLayer(image.Point{}, image.Pt(world.Width(), world.Height()), tileSize),
		overviewStale: true,
		reloads:       make(chan *config.Config, 1),
	}
	mainSize := v.mainTiles(tileSize)
	v.main = renderer.NewFogLayer(image.Point{}, mainSize, tileSize)
	v.controls.SetMainSize(mainSize)
	v.controls.Force("started")
	return v, nil
}

// OnConfigChange queues a reloaded config for the game loop. It is safe to
// call from the config watcher goroutine.
func (v *Viewer) OnConfigChange(c *config.Config) {
	select {
	case v.reloads <- c:
	default:
		// A reload is already pending; replace it with the newest
		select {
		case <-v.reloads:
		default:
		}
		v.reloads <- c
	}
}

func (v *Viewer) applyReloads() {
	select {
	case c := <-v.reloads:
		if err := v.session.Apply(c); err != nil {
			v.logger.Warn().Err(err).Msg("Reloaded fog settings rejected")
			v.controls.Force("config reload rejected: " + err.Error())
			return
		}
		v.cfg = c
		v.controls.Force("config reloaded")
		v.overviewStale = true
	default:
	}
}

// Update proceeds the viewer state.
func (v *Viewer) Update() error {
	v.applyReloads()
	for _, a := range v.input.Update() {
		_ = v.controls.Apply(a)
		if a != input.ActionCopyStatus {
			v.overviewStale = true
		}
	}

	v.tick++
	if v.tick%v.cfg.UI.TicksPerStep == 0 {
		if err := v.world.Step(context.Background()); err != nil {
			return fmt.Errorf("world step: %w", err)
		}
		v.overviewStale = true
	}

	if err := v.fog.Update(v.controls.TakeForced()); err != nil {
		return fmt.Errorf("fog update: %w", err)
	}
	return nil
}

// Draw renders the viewer screen.
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	tileSize := v.fog.Settings().TileSize

	mainArea := v.mainArea()
	mainSize := v.mainTiles(tileSize)
	if v.main.Ensure(mainSize, tileSize) {
		v.controls.SetMainSize(mainSize)
	}
	pos := v.controls.MainPos()
	v.main.SetPos(pos)
	v.drawViewport(screen, v.main, mainArea, pos, tileSize, true)

	ovArea := v.overviewArea()
	v.overview.Ensure(image.Pt(v.world.Width(), v.world.Height()), tileSize)
	v.drawViewport(screen, v.overview, ovArea, image.Point{}, v.cfg.UI.OverviewTile, v.overviewStale)
	v.overviewStale = false

	ovTile := v.cfg.UI.OverviewTile
	frame := image.Rectangle{
		Min: renderer.TileOrigin(ovArea, image.Point{}, pos, ovTile),
		Max: renderer.TileOrigin(ovArea, image.Point{}, pos.Add(mainSize), ovTile),
	}.Intersect(ovArea)
	renderer.DrawFrame(screen, frame, 1, renderer.FrameColor)

	if tile, ok := input.CursorTile(mainArea, pos, tileSize); ok && v.onMap(tile) {
		renderer.DrawTileOverlay(screen, mainArea, pos, tile, tileSize, renderer.HoverColor)
		v.drawHUD(screen, fmt.Sprintf("cursor %d,%d: %s", tile.X, tile.Y, v.visionName(tile)))
		return
	}
	v.drawHUD(screen, "")
}

// drawViewport draws terrain, units the observers currently see, and the
// fog on top. refresh redraws the fog surface; otherwise the last upload
// is reused.
func (v *Viewer) drawViewport(screen *ebiten.Image, layer *renderer.FogLayer, area image.Rectangle, pos image.Point, tilePx int, refresh bool) {
	v.board.Draw(screen, area, v.world.Board(), v.seenUnits(), pos, tilePx)
	if refresh {
		if err := v.fog.Draw(layer.View()); err != nil {
			v.logger.Error().Err(err).Msg("Fog draw failed")
			return
		}
		layer.Upload()
	}
	layer.Draw(screen.SubImage(area).(*ebiten.Image), area.Min, tilePx)
}

// seenUnits filters out units standing on tiles the fog does not show as
// visible.
func (v *Viewer) seenUnits() []game.Unit {
	units := v.world.Units()
	if v.fog.Settings().NoFogOfWar {
		return units
	}
	table := v.fog.Table()
	seen := units[:0]
	for _, u := range units {
		if table.At(u.Pos.X, u.Pos.Y) == fow.VisionVisible {
			seen = append(seen, u)
		}
	}
	return seen
}

func (v *Viewer) visionName(tile image.Point) string {
	switch v.fog.Table().At(tile.X, tile.Y) {
	case fow.VisionVisible:
		return "visible"
	case fow.VisionExplored:
		return "explored"
	}
	return "unseen"
}

func (v *Viewer) onMap(p image.Point) bool {
	return p.In(image.Rect(0, 0, v.world.Width(), v.world.Height()))
}

func (v *Viewer) drawHUD(screen *ebiten.Image, cursor string) {
	s := v.fog.Settings()
	lines := [hudLines]string{
		fmt.Sprintf("turn %d  fog %s/%s  vision %v  fps %.0f",
			v.world.Turn(), s.Type, s.Upscale, v.fog.VisionFor(), ebiten.ActualFPS()),
		"F type  B bilinear  R reveal  N no-fog  Tab player  A all  Space refresh  C copy  arrows scroll",
		v.controls.Message(),
		cursor,
	}
	if v.cfg.UI.ShowStageTime && v.monitor != nil && cursor == "" {
		d := v.monitor.Stage(fow.StageDraw)
		lines[3] = fmt.Sprintf("draw last %v max %v (%d over budget)", d.Last, d.Max, v.monitor.OverBudget())
	}
	for i, line := range lines {
		text.Draw(screen, line, v.font, margin, margin+lineHeight*(i+1)-4, hudColor)
	}
}

func (v *Viewer) mainArea() image.Rectangle {
	w, h := v.cfg.UI.Window.Width, v.cfg.UI.Window.Height
	top := margin + hudLines*lineHeight + margin
	right := w - margin - v.world.Width()*v.cfg.UI.OverviewTile - margin
	return image.Rect(margin, top, max(right, margin+1), max(h-margin, top+1))
}

func (v *Viewer) overviewArea() image.Rectangle {
	w := v.cfg.UI.Window.Width
	top := margin + hudLines*lineHeight + margin
	ow := v.world.Width() * v.cfg.UI.OverviewTile
	oh := v.world.Height() * v.cfg.UI.OverviewTile
	return image.Rect(w-margin-ow, top, w-margin, top+oh)
}

// mainTiles is the number of whole map tiles the main viewport shows.
func (v *Viewer) mainTiles(tileSize int) image.Point {
	area := v.mainArea()
	return image.Pt(
		min(max(area.Dx()/tileSize, 1), v.world.Width()),
		min(max(area.Dy()/tileSize, 1), v.world.Height()),
	)
}

// Layout defines the Ebitengine screen size.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return v.cfg.UI.Window.Width, v.cfg.UI.Window.Height
}
