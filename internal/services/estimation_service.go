package services

import (
	"github.com/benmeehan/apmapper/internal/geo"
	"github.com/benmeehan/apmapper/internal/models"
	"github.com/benmeehan/apmapper/internal/utils"
	"github.com/rs/zerolog"
)

// EstimationService assigns an estimated position to access points.
type EstimationService struct {
	filter *SpatialFilter
	params geo.TrilaterationParams
	logger zerolog.Logger
}

// NewEstimationService creates an EstimationService.
func NewEstimationService(filter *SpatialFilter, params geo.TrilaterationParams, logger zerolog.Logger) *EstimationService {
	return &EstimationService{
		filter: filter,
		params: params,
		logger: logger,
	}
}

// Estimate replaces the observations of ap with their spatially filtered subset and picks
// the estimation method from how many remain: none leaves the estimate unset, one copies
// that position, two use the weighted centroid and three or more trilaterate.
func (s *EstimationService) Estimate(ap *models.AccessPoint) {
	ap.Observations = s.filter.Filter(ap.Observations)

	var (
		pos    models.Position
		ok     bool
		method string
	)
	switch n := len(ap.Observations); {
	case n == 0:
		return
	case n == 1:
		pos, ok, method = ap.Observations[0].Position, true, models.MethodSingle
	case n == 2:
		pos, ok = geo.WeightedCentroid(ap.Observations)
		method = models.MethodWeightedCentroid
	default:
		pos, ok = geo.Trilaterate(ap.Observations, s.params)
		method = models.MethodTrilateration
	}

	ap.PositionMethod = utils.Ptr(method)
	if ok {
		ap.EstimatedPosition = &pos
	}

	s.logger.Trace().
		Str("mac", ap.MAC.String()).
		Str("method", method).
		Int("observations", len(ap.Observations)).
		Float64("latitude", pos.Latitude).
		Float64("longitude", pos.Longitude).
		Msg("Access point position estimated")
}

// EstimateAll runs Estimate on every access point and returns how often each method was used.
func (s *EstimationService) EstimateAll(aps []*models.AccessPoint) map[string]int {
	counts := make(map[string]int)
	for _, ap := range aps {
		s.Estimate(ap)
		if ap.EstimatedPosition != nil {
			counts[ap.MethodOrUnknown()]++
		}
	}
	return counts
}

// LogObservationStatistics warns about access points whose estimate will rest on one or two
// raw observations. It is meant to run before spatial filtering.
func LogObservationStatistics(aps []*models.AccessPoint, logger zerolog.Logger) {
	var single, pair int
	for _, ap := range aps {
		switch len(ap.Observations) {
		case 1:
			single++
		case 2:
			pair++
		}
	}

	if single > 0 {
		logger.Warn().Int("access_points", single).Msg("Access points with a single observation, position estimates may be inaccurate")
	}
	if pair > 0 {
		logger.Warn().Int("access_points", pair).Msg("Access points with only two observations, position estimates may be inaccurate")
	}
	logger.Info().Int("access_points", len(aps)-single-pair).Msg("Access points with three or more observations use trilateration")
}
