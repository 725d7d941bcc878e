package validation

import (
	"context"
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonloone/nx1-space-sub002/internal/config"
	"github.com/jonloone/nx1-space-sub002/internal/model"
)

func TestBootstrap(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	got := bootstrap(rng, 70, 3, 2000)

	assert.InDelta(t, 70, got.Mean, 0.5)
	assert.InDelta(t, 3, got.StandardError, 0.3)
	assert.InDelta(t, 0, got.Bias, 0.5)
	assert.Less(t, got.Interval.Low, got.Mean)
	assert.Greater(t, got.Interval.High, got.Mean)
	assert.Equal(t, 2000, got.Iterations)
}

func TestBootstrap_Deterministic(t *testing.T) {
	a := bootstrap(rand.New(rand.NewSource(7)), 55, 2, 500)
	b := bootstrap(rand.New(rand.NewSource(7)), 55, 2, 500)
	assert.Equal(t, a, b)
}

func TestBootstrap_ClampsAtBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	got := bootstrap(rng, 99, 5, 1000)

	assert.LessOrEqual(t, got.Interval.High, 100.0)
	// Clamping at 100 drags the mean below the input score.
	assert.Negative(t, got.Bias)
}

func TestMonteCarlo(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	resim := func(ctx context.Context, lat, lon float64) (float64, error) {
		// A smooth spatial field around the probe point.
		return clampScore(60 + 100*(lat-10) + 100*(lon-20)), nil
	}

	got, err := monteCarlo(context.Background(), rng, resim, 10, 20, 0.01, 1000)
	require.NoError(t, err)

	assert.InDelta(t, 60, got.Mean, 1)
	assert.Equal(t, 1000, got.Iterations)
	assert.Contains(t, []string{"normal", "skewed", "heavy_tailed"}, got.Shape)
	assert.Less(t, got.Percentiles[5], got.Percentiles[95])
}

func TestMonteCarlo_SkipsFailedSamples(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	calls := 0
	resim := func(ctx context.Context, lat, lon float64) (float64, error) {
		calls++
		if calls%2 == 0 {
			return 0, assert.AnError
		}
		return 50, nil
	}

	got, err := monteCarlo(context.Background(), rng, resim, 0, 0, 0.01, 100)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Iterations)
	assert.InDelta(t, 50, got.Mean, 1e-9)
}

func TestMonteCarlo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rng := rand.New(rand.NewSource(1))
	_, err := monteCarlo(ctx, rng, func(context.Context, float64, float64) (float64, error) {
		return 50, nil
	}, 0, 0, 0.01, 100)
	assert.Error(t, err)
}

func TestClassifyShape(t *testing.T) {
	// Tight symmetric cluster with uniform spread reads as normal.
	uniform := make([]float64, 0, 101)
	for i := 0; i <= 100; i++ {
		uniform = append(uniform, float64(i))
	}
	assert.Equal(t, "heavy_tailed", classifyShape(uniform))

	skewed := []float64{1, 1, 1, 1, 1, 1, 1, 1, 2, 3, 50}
	assert.Equal(t, "skewed", classifyShape(skewed))

	assert.Equal(t, "normal", classifyShape([]float64{5, 5, 5}))
}

func TestCrossValidate_Trivial(t *testing.T) {
	got := crossValidate([]Benchmark{{ID: "a", Score: 60}}, 55, 5)

	assert.True(t, got.Trivial)
	assert.Equal(t, 1, got.Folds)
	assert.InDelta(t, 55, got.Mean, 1e-9)
	assert.InDelta(t, 0.5, got.Consistency, 1e-9)
	assert.InDelta(t, 0.5, got.Accuracy, 1e-9)
}

func TestCrossValidate(t *testing.T) {
	benchmarks := make([]Benchmark, 0, 20)
	for range 20 {
		benchmarks = append(benchmarks, Benchmark{Score: 62})
	}

	got := crossValidate(benchmarks, 62, 5)

	require.False(t, got.Trivial)
	assert.Equal(t, 5, got.Folds)
	assert.Len(t, got.FoldScores, 5)
	assert.InDelta(t, 62, got.Mean, 1e-9)
	// Identical folds agree perfectly.
	assert.InDelta(t, 1.0, got.Consistency, 1e-9)
	assert.InDelta(t, 1.0, got.Accuracy, 1e-9)
}

func TestCrossValidate_DisperseFoldsLowerConsistency(t *testing.T) {
	var benchmarks []Benchmark
	for i := range 20 {
		benchmarks = append(benchmarks, Benchmark{Score: float64(i * 5)})
	}

	got := crossValidate(benchmarks, 50, 5)
	assert.Less(t, got.Consistency, 1.0)
	assert.Greater(t, got.Consistency, 0.0)
}

func TestSensitivityAnalysis(t *testing.T) {
	cfg := config.ScoringConfig{
		ProximityWeight:   0.25,
		CompetitiveWeight: 0.25,
		MarketWeight:      0.25,
		MaritimeWeight:    0.15,
		RiskWeight:        0.10,
	}
	set := model.ComponentScoreSet{
		Proximity:   model.OpportunityScore{Value: 70, Interval: model.ConfidenceInterval{Low: 65, High: 75}},
		Competitive: model.OpportunityScore{Value: 60, Interval: model.ConfidenceInterval{Low: 55, High: 65}},
		Market:      model.OpportunityScore{Value: 50, Interval: model.ConfidenceInterval{Low: 45, High: 55}},
		Maritime:    model.OpportunityScore{Value: 40, Interval: model.ConfidenceInterval{Low: 35, High: 45}},
		Risk:        model.OpportunityScore{Value: 80, Interval: model.ConfidenceInterval{Low: 75, High: 85}},
	}

	got := sensitivityAnalysis(set, cfg, 5.0)

	require.Len(t, got.ParameterInfluence, 5)
	// The linear aggregate responds to each component in proportion to
	// weight times component share of the total.
	baseline := 70*0.25 + 60*0.25 + 50*0.25 + 40*0.15 + 80*0.10
	wantProx := 70 * 0.25 / baseline
	assert.InDelta(t, wantProx, got.ParameterInfluence["proximity"], 1e-6)

	assert.Greater(t, got.StabilityScore, 0.0)
	assert.LessOrEqual(t, got.StabilityScore, 1.0)
	// No clamping in play, so perturbations stay symmetric and nothing
	// crosses the importance threshold.
	assert.Empty(t, got.CriticalParameters)
}

func TestBayesianUpdate_NoPriors(t *testing.T) {
	got := bayesianUpdate(nil, 80, 25)

	assert.InDelta(t, defaultPriorMean, got.PriorMean, 1e-9)
	assert.InDelta(t, defaultPriorVariance, got.PriorVariance, 1e-9)
	// Posterior sits between prior and observation, nearer the
	// lower-variance measurement.
	assert.Greater(t, got.PosteriorMean, 50.0)
	assert.Less(t, got.PosteriorMean, 80.0)
	assert.Greater(t, got.PosteriorMean, 65.0)
	assert.Less(t, got.PosteriorVariance, 25.0)
}

func TestBayesianUpdate_WithBenchmarks(t *testing.T) {
	similar := []Benchmark{
		{Score: 70}, {Score: 72}, {Score: 68}, {Score: 71}, {Score: 69},
	}

	got := bayesianUpdate(similar, 71, 25)

	assert.InDelta(t, 70, got.PriorMean, 1e-9)
	// Tight agreeing prior keeps the posterior close to it.
	assert.InDelta(t, 70, got.PosteriorMean, 1.5)
	assert.LessOrEqual(t, got.CredibleInterval.High, 100.0)
	assert.GreaterOrEqual(t, got.CredibleInterval.Low, 0.0)
	// Observation within one prior SD supports the model.
	assert.InDelta(t, 3.0, got.BayesFactor, 1e-9)
}

func TestBayesFactor(t *testing.T) {
	assert.InDelta(t, 3.0, bayesFactor(52, 50, 16), 1e-9)
	assert.InDelta(t, 1.0, bayesFactor(56, 50, 16), 1e-9)
	assert.InDelta(t, 0.33, bayesFactor(60, 50, 16), 1e-9)
	assert.InDelta(t, 0.1, bayesFactor(80, 50, 16), 1e-9)
	assert.InDelta(t, 1.0, bayesFactor(80, 50, 0), 1e-9)
}

func TestSimilarBenchmarks(t *testing.T) {
	benchmarks := []Benchmark{
		{ID: "near", Lat: 10.1, Lon: 20.1},
		{ID: "far", Lat: 50, Lon: 120},
	}
	got := similarBenchmarks(benchmarks, 10, 20, 500)
	require.Len(t, got, 1)
	assert.Equal(t, "near", got[0].ID)
}

func TestLoadBenchmarks_InvalidCoordinates(t *testing.T) {
	path := t.TempDir() + "/benchmarks.yaml"
	content := "benchmarks:\n  - id: bad\n    lat: 400\n    lon: 0\n    score: 50\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadBenchmarks(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid coordinates")
}

func TestLoadBenchmarks(t *testing.T) {
	path := t.TempDir() + "/benchmarks.yaml"
	content := "benchmarks:\n  - id: sgp\n    lat: 1.29\n    lon: 103.85\n    score: 88\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := LoadBenchmarks(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sgp", got[0].ID)
	assert.InDelta(t, 88, got[0].Score, 1e-9)
}
