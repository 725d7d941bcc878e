package validation

import (
	"math"

	"github.com/jonloone/nx1-space-sub002/internal/model"
)

// Uninformative prior used when no historical scores exist near a location.
const (
	defaultPriorMean     = 50.0
	defaultPriorVariance = 400.0
	priorVarianceFloor   = 4.0
)

// bayesianUpdate treats the mean of historical scores at similar locations
// as a Normal prior and the observed score as a noisy measurement, and
// returns the closed-form Normal-Normal posterior.
func bayesianUpdate(similar []Benchmark, observed, measurementVariance float64) model.BayesianResult {
	priorMean := defaultPriorMean
	priorVar := defaultPriorVariance

	if len(similar) > 0 {
		scores := make([]float64, 0, len(similar))
		for _, b := range similar {
			scores = append(scores, b.Score)
		}
		priorMean = mean(scores)
		priorVar = math.Max(priorVarianceFloor, variance(scores))
	}

	if measurementVariance <= 0 {
		measurementVariance = 25
	}

	precision := 1/priorVar + 1/measurementVariance
	posteriorMean := (priorMean/priorVar + observed/measurementVariance) / precision
	posteriorVar := 1 / precision

	halfWidth := 1.96 * math.Sqrt(posteriorVar)

	return model.BayesianResult{
		PriorMean:         priorMean,
		PriorVariance:     priorVar,
		PosteriorMean:     posteriorMean,
		PosteriorVariance: posteriorVar,
		CredibleInterval: model.ConfidenceInterval{
			Low:  clampScore(posteriorMean - halfWidth),
			High: clampScore(posteriorMean + halfWidth),
		},
		BayesFactor: bayesFactor(observed, priorMean, priorVar),
	}
}

// bayesFactor buckets evidence strength by how many prior standard
// deviations the observation falls from the prior mean.
func bayesFactor(observed, priorMean, priorVar float64) float64 {
	sd := math.Sqrt(priorVar)
	if sd == 0 {
		return 1
	}
	z := math.Abs(observed-priorMean) / sd
	switch {
	case z < 1:
		return 3.0
	case z < 2:
		return 1.0
	case z < 3:
		return 0.33
	default:
		return 0.1
	}
}
