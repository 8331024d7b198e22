package geo

import (
	"math"

	"github.com/benmeehan/apmapper/internal/models"
)

// Local planar projection factors and numerical guards used by Trilaterate.
const (
	MetersPerDegreeLongitude = 111320.0 // at the equator, scaled by cos(latitude)
	MetersPerDegreeLatitude  = 110540.0
	MinCosLatitude           = 0.01
	MinPlanarDistance        = 0.1 // meters
)

// TrilaterationParams tunes the gradient descent.
type TrilaterationParams struct {
	MaxIterations        int
	LearningRate         float64
	ConvergenceThreshold float64 // degrees per step, applied to both axes
}

// DefaultTrilaterationParams returns 100 iterations, rate 0.001 and threshold 1e-6.
func DefaultTrilaterationParams() TrilaterationParams {
	return TrilaterationParams{
		MaxIterations:        100,
		LearningRate:         0.001,
		ConvergenceThreshold: 1e-6,
	}
}

// TrilaterationWeight is clamp((rssi+100)/70, 0, 1) squared.
func TrilaterationWeight(rssi int8) float64 {
	w := (float64(rssi) + 100) / 70
	w = math.Min(1, math.Max(0, w))
	return w * w
}

// Trilaterate fits a position to the observations' path-loss distances with weighted
// gradient descent, starting from the weighted centroid. Fewer than three observations
// delegate to WeightedCentroid. The result carries the first observation's timestamp.
func Trilaterate(observations []models.Observation, params TrilaterationParams) (models.Position, bool) {
	if len(observations) < 3 {
		return WeightedCentroid(observations)
	}

	initial, ok := WeightedCentroid(observations)
	if !ok {
		return initial, false
	}
	estLat, estLon := initial.Latitude, initial.Longitude

	for i := 0; i < params.MaxIterations; i++ {
		var gradLat, gradLon, totalWeight float64

		for _, obs := range observations {
			cosLat := math.Cos(estLat * math.Pi / 180)
			if math.Abs(cosLat) < MinCosLatitude {
				continue
			}

			dx := (estLon - obs.Position.Longitude) * MetersPerDegreeLongitude * cosLat
			dy := (estLat - obs.Position.Latitude) * MetersPerDegreeLatitude
			calculated := math.Sqrt(dx*dx + dy*dy)
			if calculated < MinPlanarDistance {
				continue
			}

			residual := calculated - obs.Distance
			weight := TrilaterationWeight(obs.SignalStrength)

			gradLat += weight * residual * dy / calculated / MetersPerDegreeLatitude
			gradLon += weight * residual * dx / calculated / (MetersPerDegreeLongitude * cosLat)
			totalWeight += weight
		}

		if totalWeight == 0 {
			return initial, true
		}

		updateLat := gradLat / totalWeight * params.LearningRate
		updateLon := gradLon / totalWeight * params.LearningRate
		estLat -= updateLat
		estLon -= updateLon

		if math.Abs(updateLat) < params.ConvergenceThreshold && math.Abs(updateLon) < params.ConvergenceThreshold {
			break
		}
	}

	return models.Position{
		Latitude:  estLat,
		Longitude: estLon,
		Timestamp: observations[0].Position.Timestamp,
	}, true
}
