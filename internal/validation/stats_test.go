package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Zero(t, mean(nil))
	assert.InDelta(t, 3, mean([]float64{1, 2, 3, 4, 5}), 1e-9)
}

func TestVariance(t *testing.T) {
	assert.Zero(t, variance(nil))
	assert.Zero(t, variance([]float64{7}))
	// Sample variance of 2,4,4,4,5,5,7,9 is 32/7.
	assert.InDelta(t, 32.0/7, variance([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}

func TestSkewness(t *testing.T) {
	assert.Zero(t, skewness([]float64{1, 2}))
	assert.Zero(t, skewness([]float64{5, 5, 5, 5}))

	// Right tail pulls skewness positive.
	assert.Positive(t, skewness([]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 100}))
	assert.Negative(t, skewness([]float64{100, 100, 100, 100, 100, 1}))
}

func TestPercentile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}

	assert.Zero(t, percentile(nil, 50))
	assert.InDelta(t, 7, percentile([]float64{7}, 99), 1e-9)
	assert.InDelta(t, 10, percentile(sorted, 0), 1e-9)
	assert.InDelta(t, 30, percentile(sorted, 50), 1e-9)
	assert.InDelta(t, 50, percentile(sorted, 100), 1e-9)
	// Linear interpolation between ranks.
	assert.InDelta(t, 15, percentile(sorted, 12.5), 1e-9)
}

func TestSortedCopy_LeavesInputAlone(t *testing.T) {
	in := []float64{3, 1, 2}
	out := sortedCopy(in)
	assert.Equal(t, []float64{1, 2, 3}, out)
	assert.Equal(t, []float64{3, 1, 2}, in)
}
