package geo

import (
	"math"

	"github.com/benmeehan/apmapper/internal/models"
)

// CentroidWeight maps RSSI linearly onto [0, +inf): -100 dBm is 0 and -25 dBm is 100.
func CentroidWeight(rssi int8) float64 {
	return math.Max(0, (float64(rssi)+100)/75*100)
}

// WeightedCentroid returns the signal-weighted mean position of the observations, stamped
// with the first observation's timestamp. When every weight is zero it falls back to the
// plain arithmetic mean. ok is false for an empty input.
func WeightedCentroid(observations []models.Observation) (pos models.Position, ok bool) {
	if len(observations) == 0 {
		return pos, false
	}

	var totalWeight, weightedLat, weightedLon float64
	for _, obs := range observations {
		weight := CentroidWeight(obs.SignalStrength)
		totalWeight += weight
		weightedLat += obs.Position.Latitude * weight
		weightedLon += obs.Position.Longitude * weight
	}

	pos.Timestamp = observations[0].Position.Timestamp
	if totalWeight == 0 {
		var lat, lon float64
		for _, obs := range observations {
			lat += obs.Position.Latitude
			lon += obs.Position.Longitude
		}
		n := float64(len(observations))
		pos.Latitude = lat / n
		pos.Longitude = lon / n
		return pos, true
	}

	pos.Latitude = weightedLat / totalWeight
	pos.Longitude = weightedLon / totalWeight
	return pos, true
}
