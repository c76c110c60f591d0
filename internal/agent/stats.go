package agent

import (
	"sync"

	"github.com/sells-group/roadmap-cli/internal/model"
)

// StatsRecorder accumulates per-stage call statistics. It is the only
// mutable state shared between the parallel phase-retrieval workers, so
// every update takes the mutex.
type StatsRecorder struct {
	mu    sync.Mutex
	stats map[string]*model.StageStat
	usage model.TokenUsage
}

// NewStatsRecorder creates an empty recorder.
func NewStatsRecorder() *StatsRecorder {
	return &StatsRecorder{stats: make(map[string]*model.StageStat)}
}

// Record adds one call's outcome to the stage's running totals.
func (r *StatsRecorder) Record(stage string, success bool, degraded bool, durationMs int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stats[stage]
	if !ok {
		s = &model.StageStat{}
		r.stats[stage] = s
	}
	s.CallCount++
	if success {
		s.SuccessCount++
	}
	if degraded {
		s.DegradedCount++
	}
	s.TotalDurationMs += durationMs
}

// Snapshot returns a copy of the accumulated statistics. Callers read it
// only after all workers have joined, but the copy makes the returned map
// safe to serialize regardless.
func (r *StatsRecorder) Snapshot() map[string]model.StageStat {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]model.StageStat, len(r.stats))
	for k, v := range r.stats {
		out[k] = *v
	}
	return out
}

// AddUsage folds one call's token consumption into the running total.
func (r *StatsRecorder) AddUsage(u model.TokenUsage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage.Add(u)
}

// UsageTotal returns the accumulated token consumption across all calls.
func (r *StatsRecorder) UsageTotal() model.TokenUsage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usage
}

// DegradedTotal returns the number of degraded calls across all stages.
func (r *StatsRecorder) DegradedTotal() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, v := range r.stats {
		total += v.DegradedCount
	}
	return total
}
