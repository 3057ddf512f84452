package spatial

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyInput is returned when a bounding box is requested for no points
var ErrEmptyInput = errors.New("empty point set")

// Point represents a 2D point with latitude and longitude
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether both coordinates are finite and inside the
// geographic range
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lon) && !math.IsInf(p.Lon, 0) &&
		p.Lat >= -90 && p.Lat <= 90 &&
		p.Lon >= -180 && p.Lon <= 180
}

// Box is an axis-aligned lat/lon rectangle
type Box struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Width returns the longitude span in degrees
func (b Box) Width() float64 { return b.MaxLon - b.MinLon }

// Height returns the latitude span in degrees
func (b Box) Height() float64 { return b.MaxLat - b.MinLat }

// Corners returns the box as [[south, west], [north, east]], the convention
// map overlays expect
func (b Box) Corners() [2][2]float64 {
	return [2][2]float64{
		{b.MinLat, b.MinLon},
		{b.MaxLat, b.MaxLon},
	}
}

// BoundingBox calculates the bounding box of a set of points
func BoundingBox(points []Point) (Box, error) {
	if len(points) == 0 {
		return Box{}, ErrEmptyInput
	}

	box := Box{
		MinLat: math.Inf(1),
		MinLon: math.Inf(1),
		MaxLat: math.Inf(-1),
		MaxLon: math.Inf(-1),
	}

	for _, p := range points {
		if !p.Valid() {
			return Box{}, fmt.Errorf("invalid coordinate (%v, %v)", p.Lat, p.Lon)
		}
		box.MinLat = math.Min(box.MinLat, p.Lat)
		box.MaxLat = math.Max(box.MaxLat, p.Lat)
		box.MinLon = math.Min(box.MinLon, p.Lon)
		box.MaxLon = math.Max(box.MaxLon, p.Lon)
	}

	return box, nil
}

// Expand grows the box by fraction of its width and height on each side
func Expand(b Box, fraction float64) Box {
	dLon := b.Width() * fraction
	dLat := b.Height() * fraction
	return Box{
		MinLat: b.MinLat - dLat,
		MinLon: b.MinLon - dLon,
		MaxLat: b.MaxLat + dLat,
		MaxLon: b.MaxLon + dLon,
	}
}
