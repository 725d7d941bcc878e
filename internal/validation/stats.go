// Package validation provides the statistical validation suite that attaches
// an independent confidence assessment to every computed opportunity score:
// bootstrap resampling, Monte Carlo resimulation, spatial cross-validation,
// sensitivity analysis, and a Bayesian posterior update.
package validation

import (
	"math"
	"sort"
)

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		sum += (x - m) * (x - m)
	}
	return sum / float64(len(xs)-1)
}

func stdDev(xs []float64) float64 {
	return math.Sqrt(variance(xs))
}

// skewness returns the sample skewness, or 0 when degenerate.
func skewness(xs []float64) float64 {
	if len(xs) < 3 {
		return 0
	}
	m := mean(xs)
	sd := stdDev(xs)
	if sd == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		z := (x - m) / sd
		sum += z * z * z
	}
	return sum / float64(len(xs))
}

// percentile returns the p-th percentile (0-100) of a sorted slice using
// linear interpolation between ranks.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func sortedCopy(xs []float64) []float64 {
	out := append([]float64(nil), xs...)
	sort.Float64s(out)
	return out
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
