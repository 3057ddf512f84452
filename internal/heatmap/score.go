package heatmap

import "sort"

// Score returns the mean of every enabled subcategory value across the given
// categories. A subcategory counts when its flag is true; a missing score
// counts as 0. Returns 0 when nothing is enabled.
func Score(scores map[string]map[string]float64, flags map[string]map[string]bool, categories []string) float64 {
	var sum float64
	var n int

	for _, category := range categories {
		catFlags := flags[category]
		catScores := scores[category]

		// fixed order keeps the floating point sum reproducible
		keys := make([]string, 0, len(catFlags))
		for sub, enabled := range catFlags {
			if enabled {
				keys = append(keys, sub)
			}
		}
		sort.Strings(keys)

		for _, sub := range keys {
			sum += catScores[sub]
			n++
		}
	}

	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
