package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoard(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
	}{
		{"small board", 5, 5},
		{"rectangular board", 10, 20},
		{"minimum board", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := NewBoard(tt.width, tt.height)

			assert.Equal(t, tt.width, board.Width())
			assert.Equal(t, tt.height, board.Height())
			require.Len(t, board.T, tt.width*tt.height)
			for i, tile := range board.T {
				assert.Equal(t, TerrainGrass, tile.Terrain, "tile %d", i)
				assert.Equal(t, [MaxPlayers]uint8{}, tile.Vision, "tile %d", i)
			}
		})
	}
}

func TestBoard_IdxXYRoundTrip(t *testing.T) {
	board := NewBoard(7, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 7; x++ {
			gx, gy := board.XY(board.Idx(x, y))
			assert.Equal(t, x, gx)
			assert.Equal(t, y, gy)
		}
	}
	assert.Equal(t, 9, board.Idx(2, 1))
}

func TestBoard_GetTile(t *testing.T) {
	board := NewBoard(3, 3)
	assert.NotNil(t, board.GetTile(2, 2))
	assert.Nil(t, board.GetTile(3, 0))
	assert.Nil(t, board.GetTile(0, -1))
}

func TestBoard_SetVision(t *testing.T) {
	board := NewBoard(4, 4)

	require.NoError(t, board.SetVision(1, 2, 3, VisionSeen))
	assert.Equal(t, VisionSeen, board.VisionLevel(board.Idx(1, 2), 3))
	assert.Equal(t, VisionNone, board.VisionLevel(board.Idx(1, 2), 2))
	assert.Equal(t, VisionNone, board.VisionLevel(0, MaxPlayers))

	assert.ErrorIs(t, board.SetVision(4, 0, 0, VisionSeen), ErrInvalidCoordinates)
	assert.ErrorIs(t, board.SetVision(0, 0, MaxPlayers, VisionSeen), ErrInvalidPlayer)
}

func TestBoard_RevealCircleAndDemote(t *testing.T) {
	board := NewBoard(9, 9)

	revealed := board.RevealCircle(4, 4, 2, 1)

	assert.Equal(t, 13, revealed)
	assert.Equal(t, VisionSeen, board.VisionLevel(board.Idx(4, 2), 1))
	assert.Equal(t, VisionSeen, board.VisionLevel(board.Idx(5, 5), 1))
	assert.Equal(t, VisionNone, board.VisionLevel(board.Idx(6, 6), 1))
	assert.Equal(t, VisionNone, board.VisionLevel(board.Idx(4, 4), 0))

	board.DemoteVision(1)
	assert.Equal(t, VisionExplored, board.VisionLevel(board.Idx(4, 4), 1))
	assert.Equal(t, VisionNone, board.VisionLevel(board.Idx(0, 0), 1))
}

func TestBoard_RevealCircleClipsAtEdges(t *testing.T) {
	board := NewBoard(3, 3)
	revealed := board.RevealCircle(0, 0, 1, 0)
	assert.Equal(t, 3, revealed)
}

func TestTerrain(t *testing.T) {
	assert.True(t, TerrainGrass.Passable())
	assert.True(t, TerrainForest.Passable())
	assert.False(t, TerrainWater.Passable())
	assert.False(t, TerrainMountain.Passable())
	assert.Equal(t, "mountain", TerrainMountain.String())
	assert.Equal(t, "Terrain(9)", Terrain(9).String())
}

func TestBoard_Distance(t *testing.T) {
	board := NewBoard(10, 10)
	assert.Equal(t, 7, board.Distance(1, 1, 4, 5))
	assert.Equal(t, 0, board.Distance(3, 3, 3, 3))
}
