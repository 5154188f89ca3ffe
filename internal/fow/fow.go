// Package fow renders the fog of war of a tile map: which tiles the
// observed players have never seen, have explored, or currently see.
package fow

import (
	"fmt"
	"image/color"
	"slices"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/FogOfWar/internal/game/events"
)

// renderer is the algorithm specific part of the controller.
type renderer interface {
	Pipeline
	Draw(vp Viewport) error
}

// FogOfWar owns the fog settings, the visibility table and the active
// renderer, and drives them from the simulation tick and the draw loop.
type FogOfWar struct {
	id       string
	settings Settings
	logger   zerolog.Logger

	publisher events.Publisher
	observer  StageObserver
	sheet     *FogSheet // nil means a generated sheet

	vision    visionBuilder
	legacy    *legacyRenderer
	enhanced  *enhancedRenderer
	active    renderer
	scheduler *Scheduler
}

// Option configures a FogOfWar.
type Option func(*FogOfWar)

// WithLogger sets the logger, zerolog.Nop() by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *FogOfWar) { f.logger = logger }
}

// WithPublisher publishes lifecycle and settings events to p.
func WithPublisher(p events.Publisher) Option {
	return func(f *FogOfWar) { f.publisher = p }
}

// WithStageObserver reports the duration of every pipeline stage to o.
func WithStageObserver(o StageObserver) Option {
	return func(f *FogOfWar) { f.observer = o }
}

// WithFogSheet uses sheet for the legacy algorithm instead of a generated one.
func WithFogSheet(sheet *FogSheet) Option {
	return func(f *FogOfWar) { f.sheet = sheet }
}

// New creates an uninitialized controller.
func New(settings Settings, opts ...Option) (*FogOfWar, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fog settings: %w", err)
	}
	f := &FogOfWar{
		id:       uuid.NewString(),
		settings: settings,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With().Str("component", "fow").Str("fow_id", f.id).Logger()
	f.vision.settings = &f.settings
	f.vision.observer = f.observer
	return f, nil
}

// ID returns the unique id the controller publishes events under.
func (f *FogOfWar) ID() string { return f.id }

// Settings returns a copy of the current settings.
func (f *FogOfWar) Settings() Settings { return f.settings }

// Type returns the active algorithm.
func (f *FogOfWar) Type() FogType { return f.settings.Type }

// Initialized reports whether Init has allocated the buffers.
func (f *FogOfWar) Initialized() bool { return f.active != nil }

// State returns the scheduler state, StateFirstEntry before Init.
func (f *FogOfWar) State() UpdateState {
	if f.scheduler == nil {
		return StateFirstEntry
	}
	return f.scheduler.State()
}

// Table returns the visibility table, nil before Init.
func (f *FogOfWar) Table() *VisibilityTable { return f.vision.table }

// Init allocates the visibility table and the renderer of the active
// algorithm for the map of source. On failure the controller stays
// uninitialized.
func (f *FogOfWar) Init(source MapSource, registry VisionRegistry) error {
	if f.Initialized() {
		f.Clean()
	}
	w, h := source.Width(), source.Height()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidMapSize, w, h)
	}

	f.vision.table = NewVisibilityTable(w, h)
	f.vision.source = source
	f.vision.registry = registry

	switch f.settings.Type {
	case FogLegacy:
		r, err := newLegacyRenderer(&f.vision, f.legacySheet())
		if err != nil {
			f.vision.table = nil
			return fmt.Errorf("init legacy fog: %w", err)
		}
		f.legacy, f.active = r, r
	default:
		r := newEnhancedRenderer(&f.vision)
		f.enhanced, f.active = r, r
	}
	f.scheduler = NewScheduler(f.active, f.logger)

	f.logger.Info().
		Str("fog_type", f.settings.Type.String()).
		Int("map_width", w).
		Int("map_height", h).
		Msg("Fog of war initialized")
	f.publish(events.NewFogInitializedEvent(f.id, f.settings.Type.String(), w, h))
	return nil
}

func (f *FogOfWar) legacySheet() *FogSheet {
	if f.sheet != nil {
		return f.sheet
	}
	return GenerateFogSheet(f.settings.TileSize, f.settings.FogColor, f.settings.LegacyTable)
}

// Clean releases every buffer. The players vision is shown for are kept.
func (f *FogOfWar) Clean() { f.clean(false) }

// Reset releases every buffer and forgets the players vision is shown for.
func (f *FogOfWar) Reset() { f.clean(true) }

func (f *FogOfWar) clean(hard bool) {
	if f.enhanced != nil {
		f.enhanced.clean()
	}
	f.legacy, f.enhanced, f.active, f.scheduler = nil, nil, nil, nil
	f.vision.table = nil
	if hard {
		f.vision.visionFor = nil
		f.vision.source, f.vision.registry = nil, nil
	}
	f.logger.Debug().Bool("hard", hard).Msg("Fog of war cleaned")
	f.publish(events.NewFogCleanedEvent(f.id, hard))
}

// SetType switches the algorithm. When initialized the buffers of the old
// algorithm are released and the new ones allocated before it returns.
func (f *FogOfWar) SetType(t FogType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidFogType, t)
	}
	old := f.settings.Type
	if t == old {
		return fmt.Errorf("%w: already %s", ErrUnchangedFogType, t)
	}

	if !f.Initialized() {
		f.settings.Type = t
		f.publish(events.NewFogTypeChangedEvent(f.id, old.String(), t.String()))
		return nil
	}

	source, registry := f.vision.source, f.vision.registry
	f.Clean()
	f.settings.Type = t
	if err := f.Init(source, registry); err != nil {
		f.settings.Type = old
		if restoreErr := f.Init(source, registry); restoreErr != nil {
			f.logger.Error().Err(restoreErr).Msg("Failed to restore previous fog type")
		}
		return fmt.Errorf("switch fog to %s: %w", t, err)
	}
	f.logger.Info().Str("from", old.String()).Str("to", t.String()).Msg("Fog type changed")
	f.publish(events.NewFogTypeChangedEvent(f.id, old.String(), t.String()))
	return nil
}

// Update advances the fog pipeline by one tick. With forced set the whole
// pipeline runs and the result is shown without easing.
func (f *FogOfWar) Update(forced bool) error {
	if !f.Initialized() {
		return ErrNotInitialized
	}
	f.scheduler.Update(forced)
	return nil
}

// Draw composites the fog into the viewport surface.
func (f *FogOfWar) Draw(vp Viewport) error {
	if !f.Initialized() {
		return ErrNotInitialized
	}
	return f.active.Draw(vp)
}

// ShowVisionFor adds player to the players whose vision is shown.
func (f *FogOfWar) ShowVisionFor(player int) {
	if slices.Contains(f.vision.visionFor, player) {
		return
	}
	f.vision.visionFor = append(f.vision.visionFor, player)
	slices.Sort(f.vision.visionFor)
	f.publish(events.NewVisionChangedEvent(f.id, player, true))
}

// HideVisionFor removes player from the players whose vision is shown.
func (f *FogOfWar) HideVisionFor(player int) {
	if !slices.Contains(f.vision.visionFor, player) {
		return
	}
	f.vision.visionFor = slices.DeleteFunc(f.vision.visionFor, func(p int) bool { return p == player })
	f.publish(events.NewVisionChangedEvent(f.id, player, false))
}

// VisionFor returns the players whose vision is shown, sorted.
func (f *FogOfWar) VisionFor() []int { return slices.Clone(f.vision.visionFor) }

// SetOpacityLevels sets the alpha of explored, revealed and unseen tiles.
// Explored fog may not be denser than the other two.
func (f *FogOfWar) SetOpacityLevels(explored, revealed, unseen uint8) error {
	if err := validateOpacity(explored, revealed, unseen); err != nil {
		return err
	}
	f.settings.ExploredOpacity = explored
	f.settings.RevealedOpacity = revealed
	f.settings.UnseenOpacity = unseen
	if f.enhanced != nil {
		f.enhanced.refreshTables()
	}
	f.settingChanged("opacity", fmt.Sprintf("%d/%d/%d", explored, revealed, unseen))
	return nil
}

// SetFogColor sets the fog colour. Its alpha is ignored.
func (f *FogOfWar) SetFogColor(c color.RGBA) {
	f.settings.FogColor = c
	if f.enhanced != nil {
		f.enhanced.refreshPalette()
	}
	if f.legacy != nil && f.sheet == nil {
		f.legacy.sheet = f.legacySheet()
	}
	f.settingChanged("fog_color", fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// EnableBilinearUpscale selects the bilinear or the simple upscale for the
// enhanced algorithm.
func (f *FogOfWar) EnableBilinearUpscale(enable bool) {
	if enable {
		f.settings.Upscale = UpscaleBilinear
	} else {
		f.settings.Upscale = UpscaleSimple
	}
	if f.enhanced != nil {
		f.enhanced.refreshBlur()
	}
	f.settingChanged("upscale", f.settings.Upscale.String())
}

// InitBlurer sets the blur sigma used with each upscale type and the
// number of box passes approximating it.
func (f *FogOfWar) InitBlurer(simpleRadius, bilinearRadius float64, iterations int) error {
	if err := validateBlur(simpleRadius, bilinearRadius, iterations); err != nil {
		return err
	}
	f.settings.BlurRadius[UpscaleSimple] = simpleRadius
	f.settings.BlurRadius[UpscaleBilinear] = bilinearRadius
	f.settings.BlurIterations = iterations
	if f.enhanced != nil {
		f.enhanced.refreshBlur()
	}
	f.settingChanged("blur", fmt.Sprintf("%g/%g x%d", simpleRadius, bilinearRadius, iterations))
	return nil
}

// SetEasingSteps sets how many ticks a texture change is eased over.
func (f *FogOfWar) SetEasingSteps(steps int) error {
	if steps < 0 || steps > 255 {
		return fmt.Errorf("%w: %d", ErrInvalidEasing, steps)
	}
	f.settings.EasingSteps = steps
	if f.enhanced != nil {
		f.enhanced.texture.SetSteps(steps)
	}
	f.settingChanged("easing_steps", strconv.Itoa(steps))
	return nil
}

// SetNoFogOfWar makes every explored tile count as visible.
func (f *FogOfWar) SetNoFogOfWar(enable bool) {
	f.settings.NoFogOfWar = enable
	f.settingChanged("no_fog_of_war", strconv.FormatBool(enable))
}

// SetRevealMap shows unexplored tiles at the revealed opacity.
func (f *FogOfWar) SetRevealMap(enable bool) {
	f.settings.RevealMap = enable
	f.settingChanged("reveal_map", strconv.FormatBool(enable))
}

// SetReplayRevealMap suppresses the explored shroud and edge sprites of
// the legacy algorithm.
func (f *FogOfWar) SetReplayRevealMap(enable bool) {
	f.settings.ReplayRevealMap = enable
	f.settingChanged("replay_reveal_map", strconv.FormatBool(enable))
}

// SetLegacyFogTable replaces the pattern to sprite mapping of the legacy
// algorithm. A custom sheet must hold every frame the table refers to.
func (f *FogOfWar) SetLegacyFogTable(table LegacyFogTable) error {
	if err := validateFogTable(table); err != nil {
		return err
	}
	if f.sheet != nil {
		if err := f.sheet.covers(table, f.settings.TileSize); err != nil {
			return err
		}
	}
	f.settings.LegacyTable = table
	if f.legacy != nil && f.sheet == nil {
		f.legacy.sheet = f.legacySheet()
	}
	f.settingChanged("legacy_table", fmt.Sprint([16]int(table)))
	return nil
}

// SetLegacyFogSheet replaces the legacy sprite sheet. A nil sheet goes
// back to the generated one.
func (f *FogOfWar) SetLegacyFogSheet(sheet *FogSheet) error {
	if sheet != nil {
		if err := sheet.covers(f.settings.LegacyTable, f.settings.TileSize); err != nil {
			return err
		}
	}
	f.sheet = sheet
	if f.legacy != nil {
		f.legacy.sheet = f.legacySheet()
	}
	value := "generated"
	if sheet != nil {
		value = fmt.Sprintf("%d frames", sheet.Frames())
	}
	f.settingChanged("legacy_sheet", value)
	return nil
}

// SetWorkers bounds the goroutines of the data-parallel stages; 0 uses
// every CPU.
func (f *FogOfWar) SetWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, n)
	}
	f.settings.Workers = n
	f.settingChanged("workers", strconv.Itoa(n))
	return nil
}

// ApplySettings replaces every setting at once, switching algorithm or
// reallocating buffers when needed. Invalid settings are rejected as a
// whole.
func (f *FogOfWar) ApplySettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid fog settings: %w", err)
	}
	if f.sheet != nil {
		if err := f.sheet.covers(s.LegacyTable, s.TileSize); err != nil {
			return err
		}
	}
	old := f.settings
	if !f.Initialized() {
		f.settings = s
		f.settingChanged("all", s.Type.String())
		return nil
	}

	source, registry := f.vision.source, f.vision.registry
	f.Clean()
	f.settings = s
	if err := f.Init(source, registry); err != nil {
		f.settings = old
		if restoreErr := f.Init(source, registry); restoreErr != nil {
			f.logger.Error().Err(restoreErr).Msg("Failed to restore previous fog settings")
		}
		return err
	}
	if old.Type != s.Type {
		f.publish(events.NewFogTypeChangedEvent(f.id, old.Type.String(), s.Type.String()))
	}
	f.settingChanged("all", s.Type.String())
	return nil
}

func (f *FogOfWar) settingChanged(setting, value string) {
	f.logger.Debug().Str("setting", setting).Str("value", value).Msg("Fog setting changed")
	f.publish(events.NewFogSettingsChangedEvent(f.id, setting, value))
}

func (f *FogOfWar) publish(e events.Event) {
	if f.publisher != nil {
		f.publisher.Publish(e)
	}
}
