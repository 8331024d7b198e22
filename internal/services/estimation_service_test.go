package services_test

import (
	"testing"

	"github.com/benmeehan/apmapper/internal/geo"
	"github.com/benmeehan/apmapper/internal/models"
	"github.com/benmeehan/apmapper/internal/services"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEstimationService() *services.EstimationService {
	return services.NewEstimationService(
		services.NewSpatialFilter(services.DefaultMinObservationSpacing),
		geo.DefaultTrilaterationParams(),
		zerolog.Nop(),
	)
}

func TestEstimationService_Methods(t *testing.T) {
	service := newEstimationService()

	tests := []struct {
		name         string
		observations []models.Observation
		method       string
	}{
		{"single", []models.Observation{observation(48.0, 2.0, 1, -60)}, models.MethodSingle},
		{"two", []models.Observation{
			observation(48.0, 2.0, 1, -60),
			observation(48.001, 2.0, 2, -60),
		}, models.MethodWeightedCentroid},
		{"three", []models.Observation{
			observation(48.0, 2.0, 1, -40),
			observation(48.001, 2.0, 2, -50),
			observation(48.0, 2.001, 3, -60),
		}, models.MethodTrilateration},
		{"collapsed to one", []models.Observation{
			observation(48.0, 2.0, 1, -60),
			observation(48.00001, 2.0, 2, -50),
			observation(48.00002, 2.0, 3, -70),
		}, models.MethodSingle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ap := &models.AccessPoint{MAC: mac(1), Observations: tt.observations}
			service.Estimate(ap)

			require.NotNil(t, ap.EstimatedPosition)
			require.NotNil(t, ap.PositionMethod)
			assert.Equal(t, tt.method, *ap.PositionMethod)
		})
	}
}

func TestEstimationService_SingleCopiesPosition(t *testing.T) {
	ap := &models.AccessPoint{Observations: []models.Observation{observation(48.5, 2.5, 42, -60)}}
	newEstimationService().Estimate(ap)

	require.NotNil(t, ap.EstimatedPosition)
	assert.Equal(t, models.Position{Latitude: 48.5, Longitude: 2.5, Timestamp: 42}, *ap.EstimatedPosition)
}

func TestEstimationService_NoObservations(t *testing.T) {
	ap := &models.AccessPoint{MAC: mac(1)}
	newEstimationService().Estimate(ap)

	assert.Nil(t, ap.EstimatedPosition)
	assert.Nil(t, ap.PositionMethod)
}

func TestEstimationService_EstimateAll(t *testing.T) {
	aps := []*models.AccessPoint{
		{MAC: mac(1), Observations: []models.Observation{observation(48.0, 2.0, 1, -60)}},
		{MAC: mac(2), Observations: []models.Observation{observation(48.0, 2.0, 1, -60)}},
		{MAC: mac(3)},
		{MAC: mac(4), Observations: []models.Observation{
			observation(48.0, 2.0, 1, -60),
			observation(48.001, 2.0, 2, -65),
		}},
	}

	counts := newEstimationService().EstimateAll(aps)
	assert.Equal(t, map[string]int{models.MethodSingle: 2, models.MethodWeightedCentroid: 1}, counts)
}
