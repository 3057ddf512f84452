package spatial

import (
	"github.com/golang/geo/s2"
)

// HaversineDistance returns the great-circle distance between two points in
// meters, computed via s2
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	return LatLngDistance(s2.LatLngFromDegrees(lat1, lon1), s2.LatLngFromDegrees(lat2, lon2))
}

// LatLngDistance returns the great-circle distance between two s2 points in meters
func LatLngDistance(p1, p2 s2.LatLng) float64 {
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// DistanceMeters is HaversineDistance for Point values
func DistanceMeters(p, q Point) float64 {
	return HaversineDistance(p.Lat, p.Lon, q.Lat, q.Lon)
}

// ToLatLng converts a Point to an s2.LatLng
func (p Point) ToLatLng() s2.LatLng {
	return s2.LatLngFromDegrees(p.Lat, p.Lon)
}

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
)
