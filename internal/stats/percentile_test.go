package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{"empty", nil, 50, 0},
		{"single value", []float64{7}, 30, 7},
		{"min", []float64{10, 1, 5}, 0, 1},
		{"max", []float64{10, 1, 5}, 100, 10},
		{"exact rank", []float64{10, 1, 5}, 50, 5},
		{"interpolated", []float64{1, 2, 3, 4}, 50, 2.5},
		{"interpolated quarter", []float64{0, 10}, 25, 2.5},
		{"below range clamps", []float64{3, 4}, -10, 3},
		{"above range clamps", []float64{3, 4}, 150, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentile(tt.values, tt.p), 1e-12)
		})
	}
}

func TestPercentile_Bounds(t *testing.T) {
	sets := [][]float64{
		{4},
		{3, -2, 8.5, 8.5, 0},
		{0.1, 0.2, 0.3, 100, -100, 42},
	}

	for _, xs := range sets {
		assert.Equal(t, minOf(xs), Percentile(xs, 0))
		assert.Equal(t, Max(xs), Percentile(xs, 100))
	}
}

func TestPercentile_DoesNotMutateInput(t *testing.T) {
	xs := []float64{3, 1, 2}
	Percentile(xs, 50)
	assert.Equal(t, []float64{3, 1, 2}, xs)
}

func TestPercentileWindow(t *testing.T) {
	lo, hi := PercentileWindow([]float64{1, 5, 10}, 0, 100)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 10.0, hi)

	lo, hi = PercentileWindow(nil, 0, 100)
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs {
		if x < m {
			m = x
		}
	}
	return m
}
