package stats

import (
	"math"
	"sort"
)

// Percentile calculates the p-th percentile (0-100)
// Uses linear interpolation between closest ranks (R-7)
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Percentiles(values, []float64{p})[0]
}

// Percentiles calculates multiple percentiles at once
func Percentiles(values []float64, ps []float64) []float64 {
	if len(values) == 0 {
		return make([]float64, len(ps))
	}

	// Sort once for efficiency
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	results := make([]float64, len(ps))
	for i, p := range ps {
		results[i] = percentileSorted(sorted, p)
	}

	return results
}

// percentileSorted expects sorted to be ascending and non-empty
func percentileSorted(sorted []float64, p float64) float64 {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper {
		return sorted[lower]
	}

	// Linear interpolation
	return sorted[lower] + (index-float64(lower))*(sorted[upper]-sorted[lower])
}

// PercentileWindow returns the lower and upper percentile values used to
// rescale a score distribution
func PercentileWindow(values []float64, minPercentile, maxPercentile float64) (lo, hi float64) {
	ps := Percentiles(values, []float64{minPercentile, maxPercentile})
	return ps[0], ps[1]
}
