package monitoring

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// GoroutineMonitor tracks goroutine metrics
type GoroutineMonitor struct {
	mu             sync.RWMutex
	baseline       int
	current        int
	peak           int
	leaks          int
	checkInterval  time.Duration
	alertThreshold int
	lastAlert      time.Time
	alertCooldown  time.Duration
	stopChan       chan struct{}
	stopOnce       sync.Once
	running        atomic.Bool
}

// GoroutineOption configures a GoroutineMonitor
type GoroutineOption func(*GoroutineMonitor)

// WithCheckInterval sets how often the background loop samples
func WithCheckInterval(d time.Duration) GoroutineOption {
	return func(gm *GoroutineMonitor) { gm.checkInterval = d }
}

// WithAlertThreshold sets the goroutine count that triggers a warning
func WithAlertThreshold(n int) GoroutineOption {
	return func(gm *GoroutineMonitor) { gm.alertThreshold = n }
}

// NewGoroutineMonitor creates a new goroutine monitor with the current
// goroutine count as baseline
func NewGoroutineMonitor(opts ...GoroutineOption) *GoroutineMonitor {
	baseline := runtime.NumGoroutine()
	gm := &GoroutineMonitor{
		baseline:       baseline,
		current:        baseline,
		peak:           baseline,
		checkInterval:  30 * time.Second,
		alertThreshold: 1000,
		alertCooldown:  5 * time.Minute,
		stopChan:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(gm)
	}
	return gm
}

// Start begins monitoring goroutines
func (gm *GoroutineMonitor) Start() {
	if gm.checkInterval <= 0 || !gm.running.CompareAndSwap(false, true) {
		return
	}
	go gm.monitor()
	log.Info().
		Int("baseline", gm.baseline).
		Dur("interval", gm.checkInterval).
		Msg("Started goroutine monitoring")
}

// Stop stops the monitor. It is safe to call more than once.
func (gm *GoroutineMonitor) Stop() {
	gm.stopOnce.Do(func() { close(gm.stopChan) })
	gm.running.Store(false)
}

// Running reports whether the background loop is sampling
func (gm *GoroutineMonitor) Running() bool { return gm.running.Load() }

// monitor is the main monitoring loop
func (gm *GoroutineMonitor) monitor() {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Msg("Goroutine monitor panicked - restarting")
			time.Sleep(5 * time.Second)
			go gm.monitor()
		}
	}()

	ticker := time.NewTicker(gm.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			gm.Check()
		case <-gm.stopChan:
			return
		}
	}
}

// Rebaseline takes the current goroutine count as the new baseline. Call
// it once long-lived goroutines (window, watchers) are running.
func (gm *GoroutineMonitor) Rebaseline() {
	current := runtime.NumGoroutine()
	gm.mu.Lock()
	gm.baseline = current
	gm.current = current
	gm.mu.Unlock()
}

// Check samples the goroutine count, alerts if needed and returns it
func (gm *GoroutineMonitor) Check() int {
	current := runtime.NumGoroutine()

	gm.mu.Lock()
	gm.current = current
	if current > gm.peak {
		gm.peak = current
	}

	growth := current - gm.baseline
	growthRate := float64(growth) / float64(max(gm.baseline, 1)) * 100

	shouldAlert := current > gm.alertThreshold &&
		time.Since(gm.lastAlert) > gm.alertCooldown
	if shouldAlert {
		gm.lastAlert = time.Now()
	}
	peak, baseline := gm.peak, gm.baseline
	gm.mu.Unlock()

	log.Trace().
		Int("current", current).
		Int("baseline", baseline).
		Int("peak", peak).
		Float64("growth_rate", growthRate).
		Msg("Goroutine metrics")

	if shouldAlert {
		log.Warn().
			Int("current", current).
			Int("threshold", gm.alertThreshold).
			Float64("growth_rate", growthRate).
			Msg("High goroutine count detected - possible leak")
	}
	return current
}

// CheckSettled is called after a fork-join stage has returned: every
// worker must be gone, so more than slack goroutines above the baseline
// is reported as a leak.
func (gm *GoroutineMonitor) CheckSettled(stage string, slack int) bool {
	current := gm.Check()

	gm.mu.Lock()
	extra := current - gm.baseline
	leaked := extra > slack
	if leaked {
		gm.leaks++
	}
	gm.mu.Unlock()

	if leaked {
		log.Warn().
			Str("stage", stage).
			Int("extra", extra).
			Int("slack", slack).
			Msg("Goroutines outlived a fork-join stage")
	}
	return leaked
}

// GetMetrics returns current goroutine metrics
func (gm *GoroutineMonitor) GetMetrics() GoroutineMetrics {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	return GoroutineMetrics{
		Current:  gm.current,
		Baseline: gm.baseline,
		Peak:     gm.peak,
		Growth:   gm.current - gm.baseline,
		Leaks:    gm.leaks,
	}
}

// GoroutineMetrics contains goroutine statistics
type GoroutineMetrics struct {
	Current  int `json:"current"`
	Baseline int `json:"baseline"`
	Peak     int `json:"peak"`
	Growth   int `json:"growth"`
	Leaks    int `json:"leaks"`
}
