package validation

import (
	"math/rand"

	"github.com/jonloone/nx1-space-sub002/internal/model"
)

// bootstrap approximates the sampling distribution of the score by repeated
// perturbation with noise sized to the score's local uncertainty.
func bootstrap(rng *rand.Rand, score, noiseSigma float64, iterations int) model.BootstrapResult {
	if iterations <= 0 {
		iterations = 1000
	}
	if noiseSigma <= 0 {
		noiseSigma = 1
	}

	samples := make([]float64, iterations)
	for i := range samples {
		samples[i] = clampScore(score + rng.NormFloat64()*noiseSigma)
	}

	sorted := sortedCopy(samples)
	m := mean(sorted)

	return model.BootstrapResult{
		Mean:          m,
		StandardError: stdDev(sorted),
		Bias:          m - score,
		Skewness:      skewness(sorted),
		Interval: model.ConfidenceInterval{
			Low:  percentile(sorted, 2.5),
			High: percentile(sorted, 97.5),
		},
		Iterations: iterations,
	}
}
