package geo

import (
	"github.com/benmeehan/apmapper/internal/models"
	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the sphere radius used for great-circle distances.
const EarthRadiusMeters = 6378000.0

// HaversineDistance returns the great-circle distance between two points in meters.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// PositionDistance is HaversineDistance between two positions.
func PositionDistance(a, b models.Position) float64 {
	return HaversineDistance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}
