package validation

import (
	"math"

	"github.com/jonloone/nx1-space-sub002/internal/model"
)

// crossValidate partitions nearby benchmarks into k folds and checks how
// consistently the folds predict each other and the actual computed score.
func crossValidate(similar []Benchmark, actualScore float64, k int) model.CrossValidationResult {
	if k <= 1 {
		k = 5
	}

	if len(similar) < k {
		// Too few spatially similar references for a meaningful split.
		return model.CrossValidationResult{
			FoldScores:  []float64{actualScore},
			Mean:        actualScore,
			StdDev:      0,
			Consistency: 0.5,
			Accuracy:    0.5,
			Folds:       1,
			Trivial:     true,
		}
	}

	// Round-robin assignment keeps folds balanced.
	folds := make([][]float64, k)
	for i, b := range similar {
		folds[i%k] = append(folds[i%k], b.Score)
	}

	foldScores := make([]float64, k)
	for i, f := range folds {
		foldScores[i] = mean(f)
	}

	// Each fold is predicted as the mean of the other folds' scores.
	predictions := make([]float64, k)
	for i := range foldScores {
		var others []float64
		for j, s := range foldScores {
			if j != i {
				others = append(others, s)
			}
		}
		predictions[i] = mean(others)
	}

	m := mean(foldScores)
	sd := stdDev(foldScores)

	consistency := 0.0
	if m > 0 {
		consistency = math.Exp(-sd / m)
	}

	var mae float64
	for _, p := range predictions {
		mae += math.Abs(p - actualScore)
	}
	mae /= float64(k)

	return model.CrossValidationResult{
		FoldScores:  foldScores,
		Mean:        m,
		StdDev:      sd,
		Consistency: consistency,
		Accuracy:    math.Max(0, 1-mae/100),
		Folds:       k,
	}
}
