package fow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/FogOfWar/internal/testutil"
)

func randomSource(w, h, players int, seed int64) *testutil.GridSource {
	rng := testutil.NewTestRNG(seed)
	src := testutil.NewGridSource(w, h)
	for p := 0; p < players; p++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				src.Set(p, x, y, uint8(rng.Intn(4)))
			}
		}
	}
	return src
}

func assertBorderUnseen(t *testing.T, table *VisibilityTable) {
	t.Helper()
	for y := -1; y <= table.MapHeight(); y++ {
		for x := -1; x <= table.MapWidth(); x++ {
			if x >= 0 && y >= 0 && x < table.MapWidth() && y < table.MapHeight() {
				continue
			}
			require.Equal(t, VisionUnseen, table.Cells()[table.Index(x, y)], "border cell (%d,%d)", x, y)
		}
	}
}

func TestVisibilityTableLayout(t *testing.T) {
	table := NewVisibilityTable(5, 3)

	assert.Equal(t, 7, table.Stride())
	assert.Len(t, table.Cells(), 7*5)
	assert.Equal(t, 8, table.Index(0, 0))
	assert.Equal(t, 0, table.Index(-1, -1))
	assert.Equal(t, len(table.Cells())-1, table.Index(5, 3))
	assert.Equal(t, VisionUnseen, table.At(-1, 0))
	assert.Equal(t, VisionUnseen, table.At(5, 2))
}

func TestVisibilityTableClassification(t *testing.T) {
	src := testutil.NewGridSource(3, 1)
	src.Set(0, 0, 0, 0)
	src.Set(0, 1, 0, 1)
	src.Set(0, 2, 0, 2)

	tests := []struct {
		name      string
		threshold uint8
		want      []VisionLevel
	}{
		{"fog of war", visibleThreshold, []VisionLevel{VisionUnseen, VisionExplored, VisionVisible}},
		{"no fog of war", noFogVisibleThreshold, []VisionLevel{VisionUnseen, VisionVisible, VisionVisible}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewVisibilityTable(3, 1)
			table.Rebuild(src, []int{0}, tt.threshold, 1)
			for x, want := range tt.want {
				assert.Equal(t, want, table.At(x, 0), "tile %d", x)
			}
		})
	}
}

func TestVisibilityTableBorderInvariant(t *testing.T) {
	for _, workers := range []int{1, 3, 16} {
		src := randomSource(13, 9, 3, int64(workers))
		table := NewVisibilityTable(13, 9)
		table.Rebuild(src, []int{0, 1, 2}, visibleThreshold, workers)
		assertBorderUnseen(t, table)
	}
}

func TestVisibilityTableMonotonicInPlayers(t *testing.T) {
	src := randomSource(11, 7, 4, 42)

	small := NewVisibilityTable(11, 7)
	small.Rebuild(src, []int{1}, visibleThreshold, 2)
	large := NewVisibilityTable(11, 7)
	large.Rebuild(src, []int{0, 1, 3}, visibleThreshold, 2)

	for i := range small.Cells() {
		assert.GreaterOrEqual(t, large.Cells()[i], small.Cells()[i], "cell %d", i)
	}
}

func TestVisibilityTableRebuildIsIdempotent(t *testing.T) {
	src := randomSource(17, 5, 2, 7)
	table := NewVisibilityTable(17, 5)

	table.Rebuild(src, []int{0, 1}, visibleThreshold, 4)
	first := append([]VisionLevel(nil), table.Cells()...)
	table.Rebuild(src, []int{0, 1}, visibleThreshold, 1)

	assert.Equal(t, first, table.Cells())
}

func TestVisibilityTableNoPlayers(t *testing.T) {
	src := testutil.NewGridSource(4, 4)
	src.Fill(0, 3)
	table := NewVisibilityTable(4, 4)
	table.Rebuild(src, []int{0}, visibleThreshold, 1)
	require.Equal(t, VisionVisible, table.At(2, 2))

	table.Rebuild(src, nil, visibleThreshold, 1)
	for _, c := range table.Cells() {
		assert.Equal(t, VisionUnseen, c)
	}
}

// Non-square maps catch row indexing that uses the height as row length.
func TestVisibilityTableNonSquareRows(t *testing.T) {
	src := testutil.NewGridSource(6, 2)
	src.Set(0, 5, 1, 2)
	table := NewVisibilityTable(6, 2)
	table.Rebuild(src, []int{0}, visibleThreshold, 2)

	assert.Equal(t, VisionVisible, table.At(5, 1))
	assert.Equal(t, VisionUnseen, table.At(1, 1))
}

func TestObservedPlayersIncludesSharedVision(t *testing.T) {
	registry := testutil.StaticRegistry{0: {2, 3}, 3: {0}}

	assert.Equal(t, []int{0, 2, 3}, observedPlayers([]int{0}, registry))
	assert.Equal(t, []int{0, 1, 2, 3}, observedPlayers([]int{3, 1, 0}, registry))
	assert.Equal(t, []int{4}, observedPlayers([]int{4}, nil))
	assert.Empty(t, observedPlayers(nil, registry))
}

func BenchmarkVisibilityTableRebuild(b *testing.B) {
	src := randomSource(256, 256, 4, 1)
	table := NewVisibilityTable(256, 256)
	players := []int{0, 1, 2, 3}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		table.Rebuild(src, players, visibleThreshold, 0)
	}
}
