package ui

import (
	"context"
	"errors"
	"image"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/FogOfWar/internal/fow"
	"github.com/mitchelldurbincs/FogOfWar/internal/game"
	"github.com/mitchelldurbincs/FogOfWar/internal/monitoring"
	"github.com/mitchelldurbincs/FogOfWar/internal/ui/input"
)

func newTestControls(t *testing.T, visionPlayer int) (*Controls, *fow.FogOfWar, *game.Engine) {
	t.Helper()
	world, err := game.NewEngine(context.Background(), game.GameConfig{
		Width:          16,
		Height:         12,
		Players:        3,
		UnitsPerPlayer: 2,
		Rng:            rand.New(rand.NewSource(7)),
		Logger:         zerolog.Nop(),
	})
	require.NoError(t, err)

	settings := fow.DefaultSettings()
	settings.TileSize = 8
	monitor := monitoring.NewPhaseMonitor()
	fog, err := fow.New(settings, fow.WithLogger(zerolog.Nop()), fow.WithStageObserver(monitor))
	require.NoError(t, err)
	require.NoError(t, fog.Init(world, world))

	return NewControls(fog, world, monitor, visionPlayer, zerolog.Nop()), fog, world
}

func TestNewControlsShowsVisionPlayer(t *testing.T) {
	c, fog, _ := newTestControls(t, 1)
	assert.Equal(t, []int{1}, fog.VisionFor())
	assert.Equal(t, 1, c.VisionPlayer())
	assert.False(t, c.TakeForced())
}

func TestControlsVisionSelection(t *testing.T) {
	c, fog, _ := newTestControls(t, 2)

	require.NoError(t, c.Apply(input.ActionNextVisionPlayer))
	assert.Equal(t, 0, c.VisionPlayer(), "should wrap around to the first player")
	assert.Equal(t, []int{0}, fog.VisionFor())
	assert.True(t, c.TakeForced())
	assert.False(t, c.TakeForced(), "TakeForced should clear the request")

	require.NoError(t, c.Apply(input.ActionToggleSharedVision))
	assert.ElementsMatch(t, []int{0, 1, 2}, fog.VisionFor())

	require.NoError(t, c.Apply(input.ActionToggleSharedVision))
	assert.Equal(t, []int{0}, fog.VisionFor())
}

func TestControlsToggles(t *testing.T) {
	c, fog, _ := newTestControls(t, 0)

	require.NoError(t, c.Apply(input.ActionToggleFogType))
	assert.Equal(t, fow.FogLegacy, fog.Settings().Type)
	assert.Contains(t, c.Message(), "legacy")
	require.NoError(t, c.Apply(input.ActionToggleFogType))
	assert.Equal(t, fow.FogEnhanced, fog.Settings().Type)

	require.NoError(t, c.Apply(input.ActionToggleBilinear))
	assert.Equal(t, fow.UpscaleSimple, fog.Settings().Upscale)
	require.NoError(t, c.Apply(input.ActionToggleBilinear))
	assert.Equal(t, fow.UpscaleBilinear, fog.Settings().Upscale)

	require.NoError(t, c.Apply(input.ActionToggleRevealMap))
	assert.True(t, fog.Settings().RevealMap)

	require.NoError(t, c.Apply(input.ActionToggleNoFog))
	assert.True(t, fog.Settings().NoFogOfWar)
	assert.Equal(t, "no fog of war: true", c.Message())

	require.NoError(t, c.Apply(input.ActionForceRefresh))
	assert.True(t, c.TakeForced())
}

func TestControlsScrollIsClamped(t *testing.T) {
	c, _, _ := newTestControls(t, 0)
	c.SetMainSize(image.Pt(10, 10))

	c.Scroll(100, 100)
	assert.Equal(t, image.Pt(6, 2), c.MainPos())

	require.NoError(t, c.Apply(input.ActionScrollLeft))
	assert.Equal(t, image.Pt(5, 2), c.MainPos())
	assert.False(t, c.TakeForced(), "scrolling should not force a fog refresh")

	c.Scroll(-100, -100)
	assert.Equal(t, image.Pt(0, 0), c.MainPos())

	// A viewport larger than the map pins the position to the origin
	c.SetMainSize(image.Pt(40, 40))
	c.Scroll(3, 3)
	assert.Equal(t, image.Pt(0, 0), c.MainPos())
}

func TestControlsCopyStatus(t *testing.T) {
	c, _, world := newTestControls(t, 0)

	var copied string
	c.copyText = func(s string) error {
		copied = s
		return nil
	}
	require.NoError(t, c.Apply(input.ActionCopyStatus))
	assert.Contains(t, copied, world.GameID())
	assert.Contains(t, copied, "fog enhanced")
	assert.Equal(t, "status copied to clipboard", c.Message())

	c.copyText = func(string) error { return errors.New("no clipboard") }
	err := c.Apply(input.ActionCopyStatus)
	require.Error(t, err)
	assert.Contains(t, c.Message(), "no clipboard")
}
