package fow

import "time"

// Stage names reported to a StageObserver.
const (
	StageGenerateFog     = "generate_fog"
	StageGenerateTexture = "generate_texture"
	StageBlurTexture     = "blur_texture"
	StageDraw            = "draw"
)

// StageObserver receives the wall time of every pipeline stage.
type StageObserver interface {
	ObserveStage(stage string, elapsed time.Duration)
}

// visionBuilder rebuilds the visibility table for the players the
// controller shows vision for. Both renderers embed it.
type visionBuilder struct {
	table    *VisibilityTable
	source   MapSource
	registry VisionRegistry
	settings *Settings
	observer StageObserver

	visionFor []int
}

// GenerateFog rebuilds the visibility table.
func (b *visionBuilder) GenerateFog() {
	defer b.track(StageGenerateFog, time.Now())

	threshold := visibleThreshold
	if b.settings.NoFogOfWar {
		threshold = noFogVisibleThreshold
	}
	players := observedPlayers(b.visionFor, b.registry)
	b.table.Rebuild(b.source, players, threshold, resolveWorkers(b.settings.Workers))
}

func (b *visionBuilder) track(stage string, start time.Time) {
	if b.observer != nil {
		b.observer.ObserveStage(stage, time.Since(start))
	}
}
