package heatmap

import (
	"math"
	"sort"

	"github.com/golang/geo/s2"
	"github.com/jengzang/resourcemap-backend-go/internal/models"
	"github.com/jengzang/resourcemap-backend-go/internal/spatial"
	"github.com/jengzang/resourcemap-backend-go/internal/stats"
)

// Kernel computes the value of one cell from its center
type Kernel func(center s2.LatLng) float64

// Strategy is the interface every aggregation strategy implements
type Strategy interface {
	// Validate checks the strategy specific request parameters
	Validate(req models.RasterRequest) error

	// Prepare does the per-generation work (score normalization) once and
	// returns the per-cell kernel
	Prepare(req models.RasterRequest, markers []models.Marker, categories []string) Kernel

	// UsesScores reports whether marker scores (and so categories) matter
	UsesScores() bool

	// NormalizeByMax reports whether raw cell values are divided by the grid
	// maximum after every cell is computed
	NormalizeByMax() bool
}

// StrategyFactory creates a strategy instance
type StrategyFactory func() Strategy

var strategyRegistry = make(map[models.Strategy]StrategyFactory)

// RegisterStrategy registers a strategy factory under a name
func RegisterStrategy(name models.Strategy, factory StrategyFactory) {
	strategyRegistry[name] = factory
}

// GetStrategy returns a strategy for name, or nil when none is registered
func GetStrategy(name models.Strategy) Strategy {
	factory, ok := strategyRegistry[name]
	if !ok {
		return nil
	}
	return factory()
}

// Strategies returns the registered strategy names, sorted
func Strategies() []models.Strategy {
	names := make([]models.Strategy, 0, len(strategyRegistry))
	for name := range strategyRegistry {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func init() {
	RegisterStrategy(models.StrategyProximity, func() Strategy { return proximity{} })
	RegisterStrategy(models.StrategyDistribution, func() Strategy { return distribution{} })
	RegisterStrategy(models.StrategyCumulative, func() Strategy { return cumulative{} })
}

// site is a marker reduced to what the kernels read
type site struct {
	ll    s2.LatLng
	score float64
}

func sites(markers []models.Marker, scores []float64) []site {
	out := make([]site, len(markers))
	for i, m := range markers {
		out[i].ll = s2.LatLngFromDegrees(m.Latitude, m.Longitude)
		if scores != nil {
			out[i].score = scores[i]
		}
	}
	return out
}

// NormalizeScores rescales raw scores into [0,1] using the percentile window
// [minPercentile, maxPercentile]. Scores outside the window are clamped.
func NormalizeScores(raw []float64, minPercentile, maxPercentile float64) []float64 {
	lo, hi := stats.PercentileWindow(raw, minPercentile, maxPercentile)
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = stats.Clamp(stats.NormalizeValue(v, lo, hi), 0, 1)
	}
	return out
}

func markerScores(markers []models.Marker, categories []string, req models.RasterRequest) []float64 {
	raw := make([]float64, len(markers))
	for i, m := range markers {
		raw[i] = Score(m.Scores, m.Categories, categories)
	}
	return NormalizeScores(raw, req.MinPercentile, req.MaxPercentile)
}

func validatePercentiles(req models.RasterRequest) error {
	if !finite(req.MinPercentile) || req.MinPercentile < 0 || req.MinPercentile > 100 {
		return invalid("minPercentile", "must be within [0, 100], got %v", req.MinPercentile)
	}
	if !finite(req.MaxPercentile) || req.MaxPercentile < 0 || req.MaxPercentile > 100 {
		return invalid("maxPercentile", "must be within [0, 100], got %v", req.MaxPercentile)
	}
	if req.MinPercentile >= req.MaxPercentile {
		return invalid("minPercentile", "must be below maxPercentile (%v >= %v)", req.MinPercentile, req.MaxPercentile)
	}
	return nil
}

// proximity: mean decay of every marker in range, scores ignored
type proximity struct{}

func (proximity) UsesScores() bool     { return false }
func (proximity) NormalizeByMax() bool { return false }

func (proximity) Validate(req models.RasterRequest) error {
	if req.DecayMode != models.DecaySlow && req.DecayMode != models.DecayFast {
		return invalid("decayMode", "must be %q or %q, got %q", models.DecaySlow, models.DecayFast, req.DecayMode)
	}
	return nil
}

func (proximity) Prepare(req models.RasterRequest, markers []models.Marker, _ []string) Kernel {
	pts := sites(markers, nil)
	radius := req.BufferRadiusMeters
	slow := req.DecayMode == models.DecaySlow

	return func(center s2.LatLng) float64 {
		var totalInfluence float64
		var totalWeight int

		for _, s := range pts {
			distance := spatial.LatLngDistance(center, s.ll)
			if distance > radius {
				continue
			}

			influence := 1 - distance/radius
			if slow {
				influence = math.Sqrt(influence)
			}

			if influence > 0 {
				totalInfluence += influence
				totalWeight++
			}
		}

		if totalWeight == 0 {
			return 0
		}
		return totalInfluence / float64(totalWeight)
	}
}

// DistributionDecayPower is the falloff exponent used by the distribution
// strategy; larger radii decay faster
func DistributionDecayPower(radius float64) float64 {
	switch {
	case radius > 5000:
		return 6
	case radius > 2000:
		return 3
	default:
		return 1.5
	}
}

// distribution: influence-weighted mean of normalized scores
type distribution struct{}

func (distribution) UsesScores() bool     { return true }
func (distribution) NormalizeByMax() bool { return false }

func (distribution) Validate(req models.RasterRequest) error {
	return validatePercentiles(req)
}

func (distribution) Prepare(req models.RasterRequest, markers []models.Marker, categories []string) Kernel {
	pts := sites(markers, markerScores(markers, categories, req))
	radius := req.BufferRadiusMeters
	power := DistributionDecayPower(radius)

	return func(center s2.LatLng) float64 {
		var totalInfluence, totalWeight float64

		for _, s := range pts {
			distance := spatial.LatLngDistance(center, s.ll)
			if distance > radius {
				continue
			}

			influence := math.Pow(1-distance/radius, power)
			if influence > 0 {
				totalInfluence += influence * s.score
				totalWeight += influence
			}
		}

		if totalWeight == 0 {
			return 0
		}
		return totalInfluence / totalWeight
	}
}

// cumulative: overlapping markers add up, normalized by the grid maximum
type cumulative struct{}

func (cumulative) UsesScores() bool     { return true }
func (cumulative) NormalizeByMax() bool { return true }

func (cumulative) Validate(req models.RasterRequest) error {
	if err := validatePercentiles(req); err != nil {
		return err
	}
	if !finite(req.DecayPower) || req.DecayPower <= 0 {
		return invalid("decayPower", "must be positive, got %v", req.DecayPower)
	}
	return nil
}

func (cumulative) Prepare(req models.RasterRequest, markers []models.Marker, categories []string) Kernel {
	pts := sites(markers, markerScores(markers, categories, req))
	radius := req.BufferRadiusMeters
	power := req.DecayPower

	return func(center s2.LatLng) float64 {
		var raw float64

		for _, s := range pts {
			distance := spatial.LatLngDistance(center, s.ll)
			if distance > radius {
				continue
			}
			raw += s.score * math.Pow(1-distance/radius, power)
		}

		return raw
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
