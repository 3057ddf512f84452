package models

// Strategy selects how marker influence is aggregated per cell
type Strategy string

const (
	StrategyProximity    Strategy = "proximity"
	StrategyDistribution Strategy = "distribution"
	StrategyCumulative   Strategy = "cumulative"
)

// DecayMode controls the proximity falloff curve
type DecayMode string

const (
	DecaySlow DecayMode = "slow" // sqrt(decay)
	DecayFast DecayMode = "fast" // linear decay
)

// SelectorAll selects every category of the schema
const SelectorAll = "all"

// RasterRequest describes one heat grid generation
type RasterRequest struct {
	Strategy           Strategy `json:"strategy"`
	BufferRadiusMeters float64  `json:"bufferRadius"`
	Resolution         int      `json:"resolution"` // grid is Resolution x Resolution

	// CategorySelector is "all", a category name or "catA_catB".
	// Categories, when set, takes precedence and avoids the ambiguous encoding.
	CategorySelector string   `json:"categoryType"`
	Categories       []string `json:"categories,omitempty"`

	DecayMode     DecayMode `json:"decayMode"`     // proximity
	MinPercentile float64   `json:"minPercentile"` // distribution, cumulative
	MaxPercentile float64   `json:"maxPercentile"` // distribution, cumulative
	DecayPower    float64   `json:"decayPower"`    // cumulative
}

// DefaultRasterRequest returns the defaults offered by the map client
func DefaultRasterRequest() RasterRequest {
	return RasterRequest{
		Strategy:           StrategyProximity,
		BufferRadiusMeters: 1000,
		Resolution:         100,
		CategorySelector:   SelectorAll,
		DecayMode:          DecaySlow,
		MinPercentile:      0,
		MaxPercentile:      100,
		DecayPower:         1,
	}
}

// Cell is one raster element
type Cell struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Value float64 `json:"value"` // normalized 0~1
	Color string  `json:"color"`
}

// Raster is a generated heat grid. Bounds is [[south, west], [north, east]];
// Pixels are row-major with row 0 at the northern edge.
type Raster struct {
	Bounds      [2][2]float64 `json:"bounds"`
	Pixels      []Cell        `json:"pixels"`
	Resolution  int           `json:"resolution"`
	Strategy    Strategy      `json:"strategy"`
	MarkerCount int           `json:"markerCount"`
}

// At returns the cell at column x, row y
func (r *Raster) At(x, y int) Cell {
	return r.Pixels[y*r.Resolution+x]
}

// HeatmapOptions lists the parameter choices offered by the map client
type HeatmapOptions struct {
	BufferRadii    []float64  `json:"bufferRadii"`
	Resolutions    []int      `json:"resolutions"`
	DecayModes     []string   `json:"decayModes"`
	MinPercentiles []float64  `json:"minPercentiles"`
	MaxPercentiles []float64  `json:"maxPercentiles"`
	DecayPowers    []float64  `json:"decayPowers"`
	Strategies     []Strategy `json:"strategies"`
}
