package fow

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/FogOfWar/internal/game/events"
	"github.com/mitchelldurbincs/FogOfWar/internal/testutil"
)

type capturePublisher struct{ events []events.Event }

func (c *capturePublisher) Publish(e events.Event) { c.events = append(c.events, e) }

func (c *capturePublisher) types() []string {
	var out []string
	for _, e := range c.events {
		out = append(out, e.Type())
	}
	return out
}

type stageCounter map[string]int

func (s stageCounter) ObserveStage(stage string, _ time.Duration) { s[stage]++ }

func newTestFog(t *testing.T, fogType FogType, opts ...Option) *FogOfWar {
	t.Helper()
	settings := DefaultSettings()
	settings.Type = fogType
	settings.Workers = 2
	f, err := New(settings, append([]Option{WithLogger(testutil.NopLogger())}, opts...)...)
	require.NoError(t, err)
	return f
}

func requireUniformAlpha(t *testing.T, surface *image.RGBA, want color.RGBA) {
	t.Helper()
	b := surface.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			require.Equal(t, want, surface.RGBAAt(x, y), "(%d,%d)", x, y)
		}
	}
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	s := DefaultSettings()
	s.TileSize = 30
	_, err := New(s)
	assert.ErrorIs(t, err, ErrInvalidTileSize)
}

func TestFullFogBothModes(t *testing.T) {
	for _, fogType := range []FogType{FogLegacy, FogEnhanced} {
		for _, upscale := range []bool{false, true} {
			f := newTestFog(t, fogType)
			f.EnableBilinearUpscale(upscale)
			src := testutil.NewGridSource(6, 5)
			require.NoError(t, f.Init(src, nil))
			f.ShowVisionFor(0)

			require.NoError(t, f.Update(true))
			view := NewView(image.Pt(0, 0), image.Pt(6, 5), f.Settings().TileSize)
			require.NoError(t, f.Draw(view))

			requireUniformAlpha(t, view.Surface, color.RGBA{A: f.Settings().UnseenOpacity})
		}
	}
}

func TestFullFogWithoutObservedPlayers(t *testing.T) {
	for _, fogType := range []FogType{FogLegacy, FogEnhanced} {
		for _, upscale := range []bool{false, true} {
			f := newTestFog(t, fogType)
			f.EnableBilinearUpscale(upscale)
			src := testutil.NewGridSource(6, 5)
			src.Fill(0, 2)
			require.NoError(t, f.Init(src, nil))
			require.Empty(t, f.VisionFor())

			require.NoError(t, f.Update(true))
			view := NewView(image.Pt(0, 0), image.Pt(6, 5), f.Settings().TileSize)
			require.NoError(t, f.Draw(view))

			requireUniformAlpha(t, view.Surface, color.RGBA{A: f.Settings().UnseenOpacity})
		}
	}
}

// A lone visible tile must land under its own pixels wherever the view
// starts, including views hanging over the map edge.
func TestEnhancedLoneTileInScrolledViews(t *testing.T) {
	const tile = 32
	lone := image.Pt(5, 5)
	views := []struct {
		name      string
		pos, size image.Point
	}{
		{"Scrolled", image.Pt(3, 2), image.Pt(6, 6)},
		{"OverhangBottomRight", image.Pt(2, 3), image.Pt(10, 10)},
		{"OverhangTopLeft", image.Pt(-2, -1), image.Pt(9, 8)},
	}

	for _, upscale := range []UpscaleType{UpscaleSimple, UpscaleBilinear} {
		for _, tt := range views {
			t.Run(upscale.String()+"/"+tt.name, func(t *testing.T) {
				settings := DefaultSettings()
				settings.Upscale = upscale
				settings.BlurRadius = [numUpscaleTypes]float64{}
				settings.BlurIterations = 0
				settings.Workers = 2
				f, err := New(settings, WithLogger(testutil.NopLogger()))
				require.NoError(t, err)

				src := testutil.NewGridSource(11, 11)
				src.Set(0, lone.X, lone.Y, 2)
				require.NoError(t, f.Init(src, nil))
				f.ShowVisionFor(0)
				require.NoError(t, f.Update(true))

				view := NewView(tt.pos, tt.size, tile)
				require.NoError(t, f.Draw(view))

				centre := func(p image.Point) (int, int) {
					d := p.Sub(tt.pos).Mul(tile)
					return d.X + tile/2, d.Y + tile/2
				}
				alphaAt := func(p image.Point) uint8 {
					return view.Surface.RGBAAt(centre(p)).A
				}

				assert.Zero(t, alphaAt(lone), "visible tile centre")
				for _, n := range []image.Point{{4, 5}, {6, 5}, {5, 4}, {5, 6}} {
					assert.Equal(t, settings.UnseenOpacity, alphaAt(n), "neighbour %v", n)
				}

				origin := image.Point{}.Sub(tt.pos).Mul(tile)
				onMap := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(11*tile, 11*tile))}
				b := view.Surface.Bounds()
				for y := b.Min.Y; y < b.Max.Y; y++ {
					for x := b.Min.X; x < b.Max.X; x++ {
						if !image.Pt(x, y).In(onMap) {
							require.Equal(t, color.RGBA{}, view.Surface.RGBAAt(x, y), "off-map pixel (%d,%d)", x, y)
						}
					}
				}
			})
		}
	}
}

func TestEnhancedForcedRefreshInOneCall(t *testing.T) {
	src := testutil.NewGridSource(16, 16)
	src.Fill(0, 2)
	center := image.Pt(8*32+16, 8*32+16)

	eased := newTestFog(t, FogEnhanced)
	require.NoError(t, eased.Init(src, nil))
	eased.ShowVisionFor(0)
	require.NoError(t, eased.Update(false))
	view := NewView(image.Pt(0, 0), image.Pt(16, 16), 32)
	require.NoError(t, eased.Draw(view))
	assert.NotZero(t, view.Surface.RGBAAt(center.X, center.Y).A, "unforced update eases from the opaque start")

	forced := newTestFog(t, FogEnhanced)
	require.NoError(t, forced.Init(src, nil))
	forced.ShowVisionFor(0)
	require.NoError(t, forced.Update(true))
	require.NoError(t, forced.Draw(view))
	assert.Zero(t, view.Surface.RGBAAt(center.X, center.Y).A)
	// The unseen border still fogs the map edge.
	assert.NotZero(t, view.Surface.RGBAAt(0, 0).A)
}

func TestEnhancedEasesOverConfiguredSteps(t *testing.T) {
	src := testutil.NewGridSource(12, 12)
	src.Fill(0, 2)
	f := newTestFog(t, FogEnhanced)
	require.NoError(t, f.SetEasingSteps(4))
	require.NoError(t, f.Init(src, nil))
	f.ShowVisionFor(0)
	view := NewView(image.Pt(0, 0), image.Pt(12, 12), 32)
	center := image.Pt(6*32, 6*32)

	require.NoError(t, f.Update(false))
	var alphas []uint8
	for i := 0; i < 4; i++ {
		require.NoError(t, f.Update(false))
		require.NoError(t, f.Draw(view))
		alphas = append(alphas, view.Surface.RGBAAt(center.X, center.Y).A)
	}
	for i := 1; i < len(alphas); i++ {
		assert.LessOrEqual(t, alphas[i], alphas[i-1])
	}
	assert.Zero(t, alphas[len(alphas)-1])
}

func TestModeSwitchResizesBuffers(t *testing.T) {
	src := testutil.NewGridSource(7, 3)
	f := newTestFog(t, FogLegacy)
	require.NoError(t, f.Init(src, nil))
	require.NotNil(t, f.legacy)
	assert.Nil(t, f.enhanced)

	require.NoError(t, f.SetType(FogEnhanced))

	require.True(t, f.Initialized())
	assert.Nil(t, f.legacy)
	require.NotNil(t, f.enhanced)
	assert.Equal(t, 8*4, f.enhanced.texture.Width())
	assert.Equal(t, 4*4, f.enhanced.texture.Height())
	assert.Len(t, f.enhanced.rendered, 7*4*3*4)
	assert.Equal(t, StateFirstEntry, f.State())

	require.NoError(t, f.SetType(FogLegacy))
	assert.Nil(t, f.enhanced)
	assert.NotNil(t, f.legacy)
	assert.Equal(t, 9*5, len(f.Table().Cells()))
}

func TestSetTypeErrors(t *testing.T) {
	f := newTestFog(t, FogEnhanced)

	assert.ErrorIs(t, f.SetType(FogEnhanced), ErrUnchangedFogType)
	assert.ErrorIs(t, f.SetType(FogType(7)), ErrInvalidFogType)

	require.NoError(t, f.SetType(FogLegacy))
	assert.Equal(t, FogLegacy, f.Type())
	assert.False(t, f.Initialized())
}

func TestSetTypeFailureKeepsPreviousType(t *testing.T) {
	sheet := GenerateFogSheet(16, color.RGBA{}, DefaultLegacyFogTable)
	f := newTestFog(t, FogEnhanced, WithFogSheet(sheet))
	require.NoError(t, f.Init(testutil.NewGridSource(4, 4), nil))

	err := f.SetType(FogLegacy)

	assert.ErrorIs(t, err, ErrInvalidSheet)
	assert.Equal(t, FogEnhanced, f.Type())
	assert.True(t, f.Initialized())
	assert.NotNil(t, f.enhanced)
}

func TestInitRejectsEmptyMap(t *testing.T) {
	f := newTestFog(t, FogEnhanced)
	err := f.Init(testutil.NewGridSource(0, 3), nil)
	assert.ErrorIs(t, err, ErrInvalidMapSize)
	assert.False(t, f.Initialized())
	assert.ErrorIs(t, f.Update(false), ErrNotInitialized)
	assert.ErrorIs(t, f.Draw(NewView(image.Point{}, image.Pt(1, 1), 32)), ErrNotInitialized)
}

func TestSettersRejectAndKeepPrevious(t *testing.T) {
	f := newTestFog(t, FogEnhanced)
	require.NoError(t, f.Init(testutil.NewGridSource(4, 4), nil))
	before := f.Settings()

	assert.ErrorIs(t, f.SetOpacityLevels(0xF0, 0x10, 0xFF), ErrInvalidOpacity)
	assert.ErrorIs(t, f.SetOpacityLevels(0x80, 0xFF, 0x10), ErrInvalidOpacity)
	assert.ErrorIs(t, f.InitBlurer(-1, 1, 3), ErrInvalidBlur)
	assert.ErrorIs(t, f.InitBlurer(1, 1, -3), ErrInvalidBlur)
	assert.ErrorIs(t, f.SetEasingSteps(256), ErrInvalidEasing)
	assert.ErrorIs(t, f.SetEasingSteps(-1), ErrInvalidEasing)
	assert.ErrorIs(t, f.SetLegacyFogTable(LegacyFogTable{1}), ErrInvalidFogTable)
	assert.ErrorIs(t, f.SetLegacyFogTable(LegacyFogTable{0, -2}), ErrInvalidFogTable)
	assert.ErrorIs(t, f.SetWorkers(-1), ErrInvalidWorkers)

	assert.Equal(t, before, f.Settings())
}

func TestSettersApply(t *testing.T) {
	pub := &capturePublisher{}
	f := newTestFog(t, FogEnhanced, WithPublisher(pub))
	require.NoError(t, f.Init(testutil.NewGridSource(4, 4), nil))

	require.NoError(t, f.SetOpacityLevels(0x40, 0x90, 0xF0))
	assert.Equal(t, GenerateUpscaleTable(0x40, 0xF0), f.enhanced.tables.explored)
	assert.Equal(t, GenerateUpscaleTable(0x40, 0x90), f.enhanced.tables.revealed)

	require.NoError(t, f.InitBlurer(2.0, 1.5, 3))
	f.EnableBilinearUpscale(false)
	assert.Equal(t, []int{1, 1, 2}, f.enhanced.blurer.Radii())
	f.EnableBilinearUpscale(true)
	assert.Equal(t, []int{1, 1, 1}, f.enhanced.blurer.Radii())

	f.SetFogColor(color.RGBA{R: 0xFF})
	assert.Equal(t, uint32(0xFF0000FF), f.enhanced.palette[0xFF])

	f.SetNoFogOfWar(true)
	f.SetRevealMap(true)
	f.SetReplayRevealMap(true)
	s := f.Settings()
	assert.True(t, s.NoFogOfWar)
	assert.True(t, s.RevealMap)
	assert.True(t, s.ReplayRevealMap)

	assert.Contains(t, pub.types(), events.TypeFogSettingsChanged)
}

func TestNoFogOfWarShowsExploredAsVisible(t *testing.T) {
	src := testutil.NewGridSource(3, 3)
	src.Fill(0, 1)
	f := newTestFog(t, FogLegacy)
	require.NoError(t, f.Init(src, nil))
	f.ShowVisionFor(0)

	require.NoError(t, f.Update(true))
	assert.Equal(t, VisionExplored, f.Table().At(1, 1))

	f.SetNoFogOfWar(true)
	require.NoError(t, f.Update(true))
	assert.Equal(t, VisionVisible, f.Table().At(1, 1))
}

func TestSharedVisionThroughRegistry(t *testing.T) {
	src := testutil.NewGridSource(2, 1)
	src.Set(1, 1, 0, 2)
	registry := testutil.StaticRegistry{0: {1}}
	f := newTestFog(t, FogLegacy)
	require.NoError(t, f.Init(src, registry))
	f.ShowVisionFor(0)

	require.NoError(t, f.Update(true))

	assert.Equal(t, VisionUnseen, f.Table().At(0, 0))
	assert.Equal(t, VisionVisible, f.Table().At(1, 0))
}

func TestVisionForAndReset(t *testing.T) {
	pub := &capturePublisher{}
	f := newTestFog(t, FogEnhanced, WithPublisher(pub))
	f.ShowVisionFor(3)
	f.ShowVisionFor(1)
	f.ShowVisionFor(3)
	assert.Equal(t, []int{1, 3}, f.VisionFor())

	f.HideVisionFor(3)
	f.HideVisionFor(7)
	assert.Equal(t, []int{1}, f.VisionFor())
	assert.Equal(t, []string{
		events.TypeVisionChanged,
		events.TypeVisionChanged,
		events.TypeVisionChanged,
	}, pub.types(), "duplicates and unknown players publish nothing")

	require.NoError(t, f.Init(testutil.NewGridSource(2, 2), nil))
	f.Clean()
	assert.False(t, f.Initialized())
	assert.Equal(t, []int{1}, f.VisionFor(), "soft clean keeps vision")

	f.Reset()
	assert.Empty(t, f.VisionFor())
}

func TestLifecycleEventsAndStageTimings(t *testing.T) {
	pub := &capturePublisher{}
	stages := stageCounter{}
	f := newTestFog(t, FogEnhanced, WithPublisher(pub), WithStageObserver(stages))

	require.NoError(t, f.Init(testutil.NewGridSource(4, 4), nil))
	require.NoError(t, f.Update(true))
	require.NoError(t, f.Draw(NewView(image.Point{}, image.Pt(4, 4), 32)))
	require.NoError(t, f.SetType(FogLegacy))

	assert.Equal(t, []string{
		events.TypeFogInitialized,
		events.TypeFogCleaned,
		events.TypeFogInitialized,
		events.TypeFogTypeChanged,
	}, pub.types())
	assert.Equal(t, f.ID(), pub.events[0].SourceID())
	assert.Equal(t, 1, stages[StageGenerateFog])
	assert.Equal(t, 1, stages[StageGenerateTexture])
	assert.Equal(t, 1, stages[StageBlurTexture])
	assert.Equal(t, 1, stages[StageDraw])
}

func TestApplySettings(t *testing.T) {
	f := newTestFog(t, FogEnhanced)
	require.NoError(t, f.Init(testutil.NewGridSource(5, 5), nil))

	s := f.Settings()
	s.Type = FogLegacy
	s.TileSize = 16
	require.NoError(t, f.ApplySettings(s))
	assert.Equal(t, FogLegacy, f.Type())
	assert.NotNil(t, f.legacy)
	assert.Equal(t, image.Pt(16, 16), f.legacy.sheet.FrameSize())

	bad := s
	bad.TileSize = 0
	assert.ErrorIs(t, f.ApplySettings(bad), ErrInvalidTileSize)
	assert.Equal(t, 16, f.Settings().TileSize)
}

func TestLegacySheetSwap(t *testing.T) {
	f := newTestFog(t, FogLegacy)
	require.NoError(t, f.Init(testutil.NewGridSource(3, 3), nil))

	small := GenerateFogSheet(32, color.RGBA{}, LegacyFogTable{0, 1})
	assert.ErrorIs(t, f.SetLegacyFogSheet(small), ErrInvalidSheet)

	custom := GenerateFogSheet(32, color.RGBA{G: 0xFF}, DefaultLegacyFogTable)
	require.NoError(t, f.SetLegacyFogSheet(custom))
	assert.Same(t, custom, f.legacy.sheet)
	assert.ErrorIs(t, f.SetLegacyFogTable(LegacyFogTable{0, 40}), ErrInvalidSheet)

	require.NoError(t, f.SetLegacyFogSheet(nil))
	assert.NotSame(t, custom, f.legacy.sheet)
}
