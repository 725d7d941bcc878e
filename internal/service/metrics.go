package service

import (
	"sync/atomic"

	"github.com/jonloone/nx1-space-sub002/internal/cache"
)

// Metrics counts pipeline outcomes. Counters are cumulative for the process
// lifetime; the cache keeps its own hit/miss accounting.
type Metrics struct {
	Scored             atomic.Int64
	CacheHits          atomic.Int64
	Failures           atomic.Int64
	WaterShortCircuits atomic.Int64
	ValidationFailures atomic.Int64
	BatchRuns          atomic.Int64
	ComputeMs          atomic.Int64
}

// MetricsSnapshot is the JSON-friendly view served over the API.
type MetricsSnapshot struct {
	Active             bool        `json:"active"`
	Scored             int64       `json:"scored"`
	CacheHits          int64       `json:"cache_hits"`
	Failures           int64       `json:"failures"`
	WaterShortCircuits int64       `json:"water_short_circuits"`
	ValidationFailures int64       `json:"validation_failures"`
	BatchRuns          int64       `json:"batch_runs"`
	AvgComputeMs       float64     `json:"avg_compute_ms"`
	Cache              cache.Stats `json:"cache"`
}

// Snapshot captures the current counter values.
func (s *Scorer) Snapshot() MetricsSnapshot {
	var avg float64
	if scored := s.metrics.Scored.Load(); scored > 0 {
		avg = float64(s.metrics.ComputeMs.Load()) / float64(scored)
	}
	return MetricsSnapshot{
		Active:             s.active.Load(),
		Scored:             s.metrics.Scored.Load(),
		CacheHits:          s.metrics.CacheHits.Load(),
		Failures:           s.metrics.Failures.Load(),
		WaterShortCircuits: s.metrics.WaterShortCircuits.Load(),
		ValidationFailures: s.metrics.ValidationFailures.Load(),
		BatchRuns:          s.metrics.BatchRuns.Load(),
		AvgComputeMs:       avg,
		Cache:              s.cache.Stats(),
	}
}
