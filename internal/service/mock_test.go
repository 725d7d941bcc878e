package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/jonloone/nx1-space-sub002/internal/analyze"
	"github.com/jonloone/nx1-space-sub002/internal/cache"
	"github.com/jonloone/nx1-space-sub002/internal/config"
	"github.com/jonloone/nx1-space-sub002/internal/model"
)

// stubResolver keys cells by rounded coordinate so distinct test coordinates
// land in distinct cells without a real grid library.
type stubResolver struct {
	err error
}

func (r stubResolver) Cell(lat, lon float64) (model.SpatialCell, error) {
	if r.err != nil {
		return model.SpatialCell{}, r.err
	}
	return model.SpatialCell{
		ID:         fmt.Sprintf("cell-%.1f-%.1f", lat, lon),
		Resolution: 6,
		CenterLat:  lat,
		CenterLon:  lon,
		AreaKm2:    36,
	}, nil
}

// stubClassifier returns a fixed coverage, with optional per-call override.
type stubClassifier struct {
	coverage float64
	err      error
	calls    int
}

func (c *stubClassifier) Coverage(ctx context.Context, _ *geom.Polygon) (float64, error) {
	c.calls++
	if c.err != nil {
		return 0, c.err
	}
	return c.coverage, nil
}

var errCoverage = eris.New("coverage source offline")

// failingAnalyzer fails one domain to exercise failure isolation.
type failingAnalyzer struct {
	analyze.Heuristic
}

func (failingAnalyzer) AnalyzeMarket(context.Context, float64, float64) (*model.MarketAnalysis, error) {
	return nil, eris.New("market feed unavailable")
}

func testConfig() *config.Config {
	return &config.Config{
		Grid: config.GridConfig{Resolution: 6},
		Land: config.LandConfig{SampleGrid: 4, MinCoveragePct: 50},
		Scoring: config.ScoringConfig{
			ProximityWeight:     0.25,
			CompetitiveWeight:   0.25,
			MarketWeight:        0.25,
			MaritimeWeight:      0.15,
			RiskWeight:          0.10,
			BaseAnnualRevenue:   2_500_000,
			ReferenceInvestment: 10_000_000,
			DiscountRate:        0.08,
			ProjectionYears:     10,
			RiskHaircut:         0.15,
		},
		Cache: config.CacheConfig{TTL: 30 * time.Minute, Capacity: 100, EvictFraction: 0.15},
		Batch: config.BatchConfig{ChunkSize: 2, Concurrency: 2, ChunkPause: time.Millisecond},
	}
}

func newTestScorer(t *testing.T, cfg *config.Config, classifier *stubClassifier) *Scorer {
	t.Helper()
	s, err := NewScorer(
		cfg,
		stubResolver{},
		classifier,
		analyze.NewHeuristic(),
		nil,
		cache.New(cfg.Cache.TTL, cfg.Cache.Capacity, cfg.Cache.EvictFraction),
		nil,
	)
	require.NoError(t, err)
	return s
}
