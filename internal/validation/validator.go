package validation

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/jonloone/nx1-space-sub002/internal/config"
	"github.com/jonloone/nx1-space-sub002/internal/model"
)

// Confidence blend weights across the validation methods.
const (
	blendBootstrap   = 0.30
	blendMonteCarlo  = 0.30
	blendCrossVal    = 0.20
	blendSensitivity = 0.20
)

// Resimulator recomputes the overall score for a (possibly perturbed)
// coordinate without touching the cache. Monte Carlo depends on it.
type Resimulator func(ctx context.Context, lat, lon float64) (float64, error)

// Context is the ephemeral input bundle for one validation run. It is not
// retained past the call.
type Context struct {
	Lat        float64
	Lon        float64
	Overall    model.OpportunityScore
	Components model.ComponentScoreSet
	Weights    config.ScoringConfig
	Resimulate Resimulator
}

// Validator runs the five-method statistical validation suite. The random
// source is injected so runs are reproducible under a fixed seed.
type Validator struct {
	cfg        config.ValidationConfig
	benchmarks []Benchmark

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Validator. A zero seed draws one from the clock.
func New(cfg config.ValidationConfig, benchmarks []Benchmark) *Validator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Validator{
		cfg:        cfg,
		benchmarks: benchmarks,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// Reseed resets the random source, making subsequent runs reproducible.
func (v *Validator) Reseed(seed int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rng = rand.New(rand.NewSource(seed))
}

// Validate runs all five checks and blends them into one assessment.
func (v *Validator) Validate(ctx context.Context, vc Context) (*model.StatisticalValidation, error) {
	if vc.Resimulate == nil {
		return nil, eris.New("validation: resimulator is required")
	}

	score := vc.Overall.Value
	similar := similarBenchmarks(v.benchmarks, vc.Lat, vc.Lon, v.cfg.BenchmarkRadiusKm)

	v.mu.Lock()
	defer v.mu.Unlock()

	boot := bootstrap(v.rng, score, vc.Overall.StandardError, v.cfg.BootstrapIterations)

	mc, err := monteCarlo(ctx, v.rng, vc.Resimulate, vc.Lat, vc.Lon, v.cfg.CoordinateJitterDeg, v.cfg.MonteCarloIterations)
	if err != nil {
		return nil, eris.Wrap(err, "validation: monte carlo")
	}

	cv := crossValidate(similar, score, v.cfg.CrossValidationFolds)
	sens := sensitivityAnalysis(vc.Components, vc.Weights, v.cfg.ImportanceThreshold)
	bayes := bayesianUpdate(similar, score, v.cfg.MeasurementVariance)

	confidence := blendBootstrap*bootstrapConfidence(boot) +
		blendMonteCarlo*monteCarloConfidence(mc) +
		blendCrossVal*cv.Consistency +
		blendSensitivity*sens.StabilityScore

	result := &model.StatisticalValidation{
		Score:                score,
		Confidence:           clamp01(confidence),
		CrossValidationScore: cv.Mean,
		Benchmark:            compareBenchmarks(similar, score),
		Sensitivity:          sens,
		Bootstrap:            boot,
		MonteCarlo:           mc,
		CrossValidation:      cv,
		Bayesian:             bayes,
	}

	zap.L().Debug("validation: complete",
		zap.Float64("score", score),
		zap.Float64("confidence", result.Confidence),
		zap.Int("similar_benchmarks", len(similar)),
		zap.String("mc_shape", mc.Shape),
	)
	return result, nil
}

// bootstrapConfidence shrinks with the bootstrap standard error: a 20-point
// SE or worse carries no confidence.
func bootstrapConfidence(b model.BootstrapResult) float64 {
	return clamp01(1 - b.StandardError/20)
}

// monteCarloConfidence shrinks with the resimulated spread.
func monteCarloConfidence(mc model.MonteCarloResult) float64 {
	return clamp01(1 - math.Sqrt(mc.Variance)/25)
}

// compareBenchmarks places the score among the similar reference points.
func compareBenchmarks(similar []Benchmark, score float64) model.BenchmarkComparison {
	if len(similar) == 0 {
		return model.BenchmarkComparison{
			Percentile:    50,
			ExpectedRange: model.ConfidenceInterval{Low: 0, High: 100},
		}
	}

	scores := make([]float64, 0, len(similar))
	ids := make([]string, 0, len(similar))
	below := 0
	for _, b := range similar {
		scores = append(scores, b.Score)
		ids = append(ids, b.ID)
		if b.Score < score {
			below++
		}
	}
	sort.Strings(ids)
	if len(ids) > 10 {
		ids = ids[:10]
	}

	m := mean(scores)
	sd := stdDev(scores)

	return model.BenchmarkComparison{
		Percentile:          float64(below) / float64(len(similar)) * 100,
		SimilarReferenceIDs: ids,
		ExpectedRange: model.ConfidenceInterval{
			Low:  clampScore(m - sd),
			High: clampScore(m + sd),
		},
	}
}
