package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonloone/nx1-space-sub002/internal/config"
	"github.com/jonloone/nx1-space-sub002/internal/model"
)

func validationConfig() config.ValidationConfig {
	return config.ValidationConfig{
		BootstrapIterations:  200,
		MonteCarloIterations: 200,
		CrossValidationFolds: 5,
		BenchmarkRadiusKm:    500,
		CoordinateJitterDeg:  0.01,
		MeasurementVariance:  25,
		ImportanceThreshold:  5,
		Seed:                 42,
	}
}

func validationInput(resim Resimulator) Context {
	overall := model.OpportunityScore{
		Value:         68,
		Confidence:    0.85,
		StandardError: 3.3,
		Interval:      model.ConfidenceInterval{Low: 61.4, High: 74.6},
	}
	component := model.OpportunityScore{
		Value: 68, Confidence: 0.85, StandardError: 3.3,
		Interval: model.ConfidenceInterval{Low: 61.4, High: 74.6},
	}
	return Context{
		Lat:     1.29,
		Lon:     103.85,
		Overall: overall,
		Components: model.ComponentScoreSet{
			Proximity: component, Competitive: component, Market: component,
			Maritime: component, Risk: component, Overall: overall,
		},
		Weights: config.ScoringConfig{
			ProximityWeight: 0.25, CompetitiveWeight: 0.25, MarketWeight: 0.25,
			MaritimeWeight: 0.15, RiskWeight: 0.10,
		},
		Resimulate: resim,
	}
}

func steadyResim(ctx context.Context, lat, lon float64) (float64, error) {
	return 68, nil
}

func TestValidate(t *testing.T) {
	benchmarks := []Benchmark{
		{ID: "b1", Lat: 1.3, Lon: 103.8, Score: 70},
		{ID: "b2", Lat: 1.2, Lon: 103.9, Score: 66},
		{ID: "b3", Lat: 1.4, Lon: 103.7, Score: 69},
		{ID: "b4", Lat: 1.1, Lon: 103.6, Score: 71},
		{ID: "b5", Lat: 1.5, Lon: 104.0, Score: 67},
		{ID: "far", Lat: 48.8, Lon: 2.3, Score: 20},
	}

	v := New(validationConfig(), benchmarks)
	got, err := v.Validate(context.Background(), validationInput(steadyResim))
	require.NoError(t, err)

	assert.InDelta(t, 68, got.Score, 1e-9)
	assert.Greater(t, got.Confidence, 0.0)
	assert.LessOrEqual(t, got.Confidence, 1.0)

	// The distant benchmark is excluded from the spatial pool.
	assert.NotContains(t, got.Benchmark.SimilarReferenceIDs, "far")
	assert.Len(t, got.Benchmark.SimilarReferenceIDs, 5)

	// Perfectly steady resimulation gives zero Monte Carlo spread.
	assert.Zero(t, got.MonteCarlo.Variance)
	assert.Equal(t, 200, got.MonteCarlo.Iterations)

	assert.False(t, got.CrossValidation.Trivial)
	assert.Equal(t, got.CrossValidation.Mean, got.CrossValidationScore)
	assert.NotZero(t, got.Bayesian.PosteriorMean)
}

func TestValidate_NoResimulator(t *testing.T) {
	v := New(validationConfig(), nil)
	in := validationInput(nil)

	_, err := v.Validate(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resimulator")
}

func TestValidate_NoBenchmarksIsTrivial(t *testing.T) {
	v := New(validationConfig(), nil)
	got, err := v.Validate(context.Background(), validationInput(steadyResim))
	require.NoError(t, err)

	assert.True(t, got.CrossValidation.Trivial)
	assert.Empty(t, got.Benchmark.SimilarReferenceIDs)
	assert.InDelta(t, 50, got.Benchmark.Percentile, 1e-9)
}

func TestValidate_ReproducibleUnderSeed(t *testing.T) {
	cfg := validationConfig()

	a, err := New(cfg, nil).Validate(context.Background(), validationInput(steadyResim))
	require.NoError(t, err)
	b, err := New(cfg, nil).Validate(context.Background(), validationInput(steadyResim))
	require.NoError(t, err)

	assert.Equal(t, a.Bootstrap, b.Bootstrap)
	assert.Equal(t, a.MonteCarlo, b.MonteCarlo)
	assert.InDelta(t, a.Confidence, b.Confidence, 1e-12)
}

func TestReseed(t *testing.T) {
	v := New(config.ValidationConfig{Seed: 0, BootstrapIterations: 100, MonteCarloIterations: 10}, nil)
	v.Reseed(99)

	a, err := v.Validate(context.Background(), validationInput(steadyResim))
	require.NoError(t, err)

	v.Reseed(99)
	b, err := v.Validate(context.Background(), validationInput(steadyResim))
	require.NoError(t, err)

	assert.Equal(t, a.Bootstrap, b.Bootstrap)
}

func TestCompareBenchmarks(t *testing.T) {
	similar := []Benchmark{
		{ID: "a", Score: 40}, {ID: "b", Score: 60}, {ID: "c", Score: 80},
	}

	got := compareBenchmarks(similar, 70)
	// Two of three references score below 70.
	assert.InDelta(t, 100.0*2/3, got.Percentile, 1e-9)
	assert.Equal(t, []string{"a", "b", "c"}, got.SimilarReferenceIDs)
	assert.Less(t, got.ExpectedRange.Low, got.ExpectedRange.High)
}

func TestBootstrapConfidence(t *testing.T) {
	assert.InDelta(t, 1.0, bootstrapConfidence(model.BootstrapResult{StandardError: 0}), 1e-9)
	assert.InDelta(t, 0.5, bootstrapConfidence(model.BootstrapResult{StandardError: 10}), 1e-9)
	assert.Zero(t, bootstrapConfidence(model.BootstrapResult{StandardError: 40}))
}
