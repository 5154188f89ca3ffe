package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayers_Add(t *testing.T) {
	players := NewPlayers()
	for i := 0; i < MaxPlayers; i++ {
		id, err := players.Add("red")
		require.NoError(t, err)
		assert.Equal(t, i, id)
	}
	_, err := players.Add("blue")
	assert.ErrorIs(t, err, ErrTooManyPlayers)
	assert.Equal(t, MaxPlayers, players.Len())

	_, err = players.Get(MaxPlayers)
	assert.ErrorIs(t, err, ErrInvalidPlayer)
}

func TestPlayers_SharedVision(t *testing.T) {
	players := NewPlayers()
	for i := 0; i < 4; i++ {
		_, err := players.Add("c")
		require.NoError(t, err)
	}

	require.NoError(t, players.ShareVision(2, 0))
	require.NoError(t, players.Ally(0, 3))
	require.NoError(t, players.ShareVision(1, 1))

	assert.Equal(t, []int{2, 3}, players.SharedVision(0))
	assert.Equal(t, []int{0}, players.SharedVision(3))
	assert.Empty(t, players.SharedVision(1))
	assert.Empty(t, players.SharedVision(9))

	p2, err := players.Get(2)
	require.NoError(t, err)
	p2.Alive = false
	assert.Equal(t, []int{3}, players.SharedVision(0))

	require.NoError(t, players.RevokeVision(3, 0))
	assert.Empty(t, players.SharedVision(0))

	assert.ErrorIs(t, players.ShareVision(7, 0), ErrInvalidPlayer)
}
