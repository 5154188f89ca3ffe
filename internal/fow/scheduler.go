package fow

import (
	"fmt"

	"github.com/rs/zerolog"
)

// UpdateState is the position of the scheduler in the fog pipeline.
type UpdateState uint8

const (
	// StateFirstEntry - nothing generated since Init
	StateFirstEntry UpdateState = iota

	// StateGenerateFog - the visibility table is rebuilt on the next update
	StateGenerateFog

	// StateGenerateTexture - the table is upsampled into the next texture
	StateGenerateTexture

	// StateBlurTexture - the next texture is blurred
	StateBlurTexture

	// StateReady - the next texture is complete and waits for the current
	// one to finish easing
	StateReady
)

// stagedSteps is the number of updates one staged enhanced cycle takes.
// With fewer easing steps than that the easing would finish before the
// next texture does, so every update runs the whole pipeline instead.
const stagedSteps = int(StateReady)

func (s UpdateState) String() string {
	switch s {
	case StateFirstEntry:
		return "FirstEntry"
	case StateGenerateFog:
		return "GenerateFog"
	case StateGenerateTexture:
		return "GenerateTexture"
	case StateBlurTexture:
		return "BlurTexture"
	case StateReady:
		return "Ready"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// AllowedTransitions returns the states reachable from s in one update.
// Every state may go back to FirstEntry on Reset. The legacy pipeline only
// alternates between GenerateFog and Ready.
func (s UpdateState) AllowedTransitions(enhanced bool) []UpdateState {
	if !enhanced {
		switch s {
		case StateFirstEntry:
			return []UpdateState{StateGenerateFog}
		case StateGenerateFog:
			return []UpdateState{StateReady, StateFirstEntry}
		case StateReady:
			return []UpdateState{StateGenerateFog, StateFirstEntry}
		default:
			return []UpdateState{}
		}
	}
	switch s {
	case StateFirstEntry:
		return []UpdateState{StateGenerateFog}
	case StateGenerateFog:
		return []UpdateState{StateGenerateTexture, StateFirstEntry}
	case StateGenerateTexture:
		return []UpdateState{StateBlurTexture, StateGenerateFog, StateFirstEntry}
	case StateBlurTexture:
		return []UpdateState{StateReady, StateGenerateFog, StateFirstEntry}
	case StateReady:
		return []UpdateState{StateGenerateFog, StateFirstEntry}
	default:
		return []UpdateState{}
	}
}

// CanTransitionTo checks if an update may move the scheduler from s to target.
func (s UpdateState) CanTransitionTo(target UpdateState, enhanced bool) bool {
	for _, state := range s.AllowedTransitions(enhanced) {
		if state == target {
			return true
		}
	}
	return false
}

// Pipeline is the work the scheduler drives for the legacy algorithm.
type Pipeline interface {
	GenerateFog()
}

// TexturePipeline is the work the scheduler drives for the enhanced
// algorithm.
type TexturePipeline interface {
	Pipeline
	GenerateTexture()
	BlurTexture()
	Ease()
	PushNext(forced bool)
	FullyEased() bool
	EasingSteps() int
}

// Scheduler spreads one fog pipeline cycle over several updates.
type Scheduler struct {
	state    UpdateState
	pipeline Pipeline
	texture  TexturePipeline // nil for the legacy algorithm
	logger   zerolog.Logger
}

// NewScheduler drives p. When p is a TexturePipeline the enhanced cycle is
// used.
func NewScheduler(p Pipeline, logger zerolog.Logger) *Scheduler {
	s := &Scheduler{
		pipeline: p,
		logger:   logger.With().Str("component", "fow_scheduler").Logger(),
	}
	s.texture, _ = p.(TexturePipeline)
	return s
}

// State returns the current state.
func (s *Scheduler) State() UpdateState { return s.state }

// Reset restarts the cycle as if nothing had been generated.
func (s *Scheduler) Reset() { s.setState(StateFirstEntry) }

// Update performs this tick's share of the pipeline. With forced set the
// whole cycle runs at once and the result is shown without easing.
func (s *Scheduler) Update(forced bool) {
	if s.texture == nil {
		s.updateLegacy(forced)
		return
	}
	s.updateEnhanced(forced)
}

func (s *Scheduler) updateLegacy(forced bool) {
	if forced || s.state == StateFirstEntry {
		s.pipeline.GenerateFog()
		s.setState(StateGenerateFog)
		return
	}
	switch s.state {
	case StateGenerateFog:
		s.pipeline.GenerateFog()
		s.setState(StateReady)
	case StateReady:
		s.setState(StateGenerateFog)
	}
}

func (s *Scheduler) updateEnhanced(forced bool) {
	t := s.texture
	t.Ease()

	atOnce := forced || t.EasingSteps() < stagedSteps
	if atOnce || s.state == StateFirstEntry {
		t.GenerateFog()
		t.GenerateTexture()
		t.BlurTexture()
		t.PushNext(atOnce)
		s.setState(StateGenerateFog)
		return
	}

	switch s.state {
	case StateGenerateFog:
		t.GenerateFog()
		s.setState(StateGenerateTexture)
	case StateGenerateTexture:
		t.GenerateTexture()
		s.setState(StateBlurTexture)
	case StateBlurTexture:
		t.BlurTexture()
		s.setState(StateReady)
	case StateReady:
		if t.FullyEased() {
			t.PushNext(false)
			s.setState(StateGenerateFog)
		}
	}
}

// setState moves to next when the transition table allows it. A rejected
// transition is logged and the state is kept.
func (s *Scheduler) setState(next UpdateState) bool {
	if next == s.state {
		return true
	}
	if !s.state.CanTransitionTo(next, s.texture != nil) {
		s.logger.Error().
			Str("from", s.state.String()).
			Str("to", next.String()).
			Msg("Invalid fog pipeline transition")
		return false
	}
	s.logger.Trace().
		Str("from", s.state.String()).
		Str("to", next.String()).
		Msg("fog pipeline transition")
	s.state = next
	return true
}
