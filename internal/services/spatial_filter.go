package services

import (
	"sort"

	"github.com/benmeehan/apmapper/internal/geo"
	"github.com/benmeehan/apmapper/internal/models"
)

// DefaultMinObservationSpacing is the minimum distance in meters between kept observations.
const DefaultMinObservationSpacing = 5.0

// SpatialFilter thins out observations taken close to each other.
type SpatialFilter struct {
	minSpacing float64
}

// NewSpatialFilter creates a SpatialFilter. A non-positive spacing uses the default.
func NewSpatialFilter(minSpacing float64) *SpatialFilter {
	if minSpacing <= 0 {
		minSpacing = DefaultMinObservationSpacing
	}
	return &SpatialFilter{minSpacing: minSpacing}
}

// Filter keeps observations greedily from strongest to weakest signal, dropping any that lie
// within the minimum spacing of one already kept. Ties keep their input order. The result is
// ordered by descending signal strength; inputs with at most one element are returned as is.
func (f *SpatialFilter) Filter(observations []models.Observation) []models.Observation {
	if len(observations) <= 1 {
		return observations
	}

	sorted := make([]models.Observation, len(observations))
	copy(sorted, observations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SignalStrength > sorted[j].SignalStrength
	})

	kept := make([]models.Observation, 0, len(sorted))
	for _, candidate := range sorted {
		if f.isFarFromAll(candidate, kept) {
			kept = append(kept, candidate)
		}
	}
	return kept
}

func (f *SpatialFilter) isFarFromAll(candidate models.Observation, kept []models.Observation) bool {
	for _, k := range kept {
		if geo.PositionDistance(candidate.Position, k.Position) < f.minSpacing {
			return false
		}
	}
	return true
}
