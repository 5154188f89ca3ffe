package monitoring

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mitchelldurbincs/FogOfWar/internal/fow"
	"github.com/rs/zerolog"
)

// settleSlack is how many goroutines above baseline are tolerated after a
// fork-join stage, for runtime and timer goroutines that come and go.
const settleSlack = 4

// StageStats accumulates the timings of one pipeline stage
type StageStats struct {
	Count int
	Last  time.Duration
	Max   time.Duration
	Total time.Duration
}

// Mean returns the average stage duration
func (s StageStats) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// PhaseMonitor records fog pipeline stage timings. It implements
// fow.StageObserver.
type PhaseMonitor struct {
	mu          sync.Mutex
	stages      map[string]*StageStats
	frameBudget time.Duration
	overBudget  int
	goroutines  *GoroutineMonitor
	logger      zerolog.Logger
}

var _ fow.StageObserver = (*PhaseMonitor)(nil)

// PhaseOption configures a PhaseMonitor
type PhaseOption func(*PhaseMonitor)

// WithFrameBudget warns about any stage slower than d. Zero disables it.
func WithFrameBudget(d time.Duration) PhaseOption {
	return func(m *PhaseMonitor) { m.frameBudget = d }
}

// WithLeakCheck verifies that fork-join stages leave no goroutines behind.
func WithLeakCheck(gm *GoroutineMonitor) PhaseOption {
	return func(m *PhaseMonitor) { m.goroutines = gm }
}

// WithPhaseLogger sets the logger budget warnings go to.
func WithPhaseLogger(l zerolog.Logger) PhaseOption {
	return func(m *PhaseMonitor) { m.logger = l }
}

func NewPhaseMonitor(opts ...PhaseOption) *PhaseMonitor {
	m := &PhaseMonitor{
		stages: make(map[string]*StageStats),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With().Str("component", "PhaseMonitor").Logger()
	return m
}

// ObserveStage implements fow.StageObserver.
func (m *PhaseMonitor) ObserveStage(stage string, elapsed time.Duration) {
	m.mu.Lock()
	s, ok := m.stages[stage]
	if !ok {
		s = &StageStats{}
		m.stages[stage] = s
	}
	s.Count++
	s.Last = elapsed
	s.Total += elapsed
	s.Max = max(s.Max, elapsed)
	over := m.frameBudget > 0 && elapsed > m.frameBudget
	if over {
		m.overBudget++
	}
	m.mu.Unlock()

	if over {
		m.logger.Warn().
			Str("stage", stage).
			Dur("elapsed", elapsed).
			Dur("budget", m.frameBudget).
			Msg("Fog stage exceeded frame budget")
	}
	if m.goroutines != nil && forkJoinStage(stage) {
		m.goroutines.CheckSettled(stage, settleSlack)
	}
}

func forkJoinStage(stage string) bool {
	switch stage {
	case fow.StageGenerateFog, fow.StageGenerateTexture, fow.StageDraw:
		return true
	}
	return false
}

// Stage returns the stats of one stage
func (m *PhaseMonitor) Stage(stage string) StageStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stages[stage]; ok {
		return *s
	}
	return StageStats{}
}

// Snapshot returns a copy of all stage stats
func (m *PhaseMonitor) Snapshot() map[string]StageStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]StageStats, len(m.stages))
	for name, s := range m.stages {
		out[name] = *s
	}
	return out
}

// OverBudget returns how many stages exceeded the frame budget
func (m *PhaseMonitor) OverBudget() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overBudget
}

// Reset forgets every recorded timing
func (m *PhaseMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.stages)
	m.overBudget = 0
}

// LogSummary writes one line per stage to the logger at info level
func (m *PhaseMonitor) LogSummary() {
	snap := m.Snapshot()
	for _, name := range sortedStages(snap) {
		s := snap[name]
		m.logger.Info().
			Str("stage", name).
			Int("count", s.Count).
			Dur("mean", s.Mean()).
			Dur("max", s.Max).
			Dur("total", s.Total).
			Msg("Fog stage summary")
	}
}

// String renders the stats as a small table, stages sorted by name
func (m *PhaseMonitor) String() string {
	snap := m.Snapshot()
	var sb strings.Builder
	for _, name := range sortedStages(snap) {
		s := snap[name]
		fmt.Fprintf(&sb, "%-16s n=%-6d last=%-10v mean=%-10v max=%v\n",
			name, s.Count, s.Last, s.Mean(), s.Max)
	}
	return sb.String()
}

func sortedStages(snap map[string]StageStats) []string {
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
