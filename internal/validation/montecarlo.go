package validation

import (
	"context"
	"math"
	"math/rand"

	"github.com/jonloone/nx1-space-sub002/internal/model"
)

// Distribution-shape thresholds. These are deliberate single-pass
// approximations, kept as documented behavior: for a normal distribution
// IQR/σ ≈ 1.35, so ratios well outside that band indicate heavy or thin
// tails.
const (
	shapeSkewThreshold = 0.5
	shapeIQRRatioLow   = 1.1
	shapeIQRRatioHigh  = 1.6
)

var mcPercentiles = []int{5, 25, 50, 75, 95}

// monteCarlo resimulates the score under small coordinate perturbations and
// summarizes the resulting output distribution.
func monteCarlo(ctx context.Context, rng *rand.Rand, resim Resimulator, lat, lon, jitterDeg float64, iterations int) (model.MonteCarloResult, error) {
	if iterations <= 0 {
		iterations = 1000
	}

	samples := make([]float64, 0, iterations)
	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return model.MonteCarloResult{}, err
		}
		jLat := lat + rng.NormFloat64()*jitterDeg
		jLon := lon + rng.NormFloat64()*jitterDeg

		score, err := resim(ctx, jLat, jLon)
		if err != nil {
			// A perturbed point may fall outside resolvable space; skip it.
			continue
		}
		samples = append(samples, score)
	}

	if len(samples) == 0 {
		return model.MonteCarloResult{Shape: "normal", Percentiles: map[int]float64{}}, nil
	}

	sorted := sortedCopy(samples)
	pct := make(map[int]float64, len(mcPercentiles))
	for _, p := range mcPercentiles {
		pct[p] = percentile(sorted, float64(p))
	}

	return model.MonteCarloResult{
		Mean:        mean(sorted),
		Variance:    variance(sorted),
		Percentiles: pct,
		Shape:       classifyShape(sorted),
		Iterations:  len(samples),
	}, nil
}

// classifyShape buckets a distribution as normal, skewed, or heavy-tailed
// from its skewness and interquartile-to-σ ratio.
func classifyShape(sorted []float64) string {
	sd := stdDev(sorted)
	if sd == 0 {
		return "normal"
	}
	if math.Abs(skewness(sorted)) > shapeSkewThreshold {
		return "skewed"
	}
	ratio := (percentile(sorted, 75) - percentile(sorted, 25)) / sd
	if ratio < shapeIQRRatioLow || ratio > shapeIQRRatioHigh {
		return "heavy_tailed"
	}
	return "normal"
}
