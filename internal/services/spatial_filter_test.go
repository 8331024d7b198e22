package services_test

import (
	"testing"

	"github.com/benmeehan/apmapper/internal/geo"
	"github.com/benmeehan/apmapper/internal/models"
	"github.com/benmeehan/apmapper/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func observation(lat, lon float64, ts int64, rssi int8) models.Observation {
	return models.Observation{
		Position:       models.Position{Latitude: lat, Longitude: lon, Timestamp: ts},
		SignalStrength: rssi,
		Distance:       geo.RSSIToDistance(rssi),
	}
}

func TestSpatialFilter_Filter(t *testing.T) {
	filter := services.NewSpatialFilter(services.DefaultMinObservationSpacing)

	t.Run("short inputs are returned unchanged", func(t *testing.T) {
		assert.Empty(t, filter.Filter(nil))
		single := []models.Observation{observation(1, 1, 1, -80)}
		assert.Equal(t, single, filter.Filter(single))
	})

	t.Run("strongest of a cluster survives", func(t *testing.T) {
		// ~1.1 m and ~2.2 m north of the first point, then one ~111 m away.
		in := []models.Observation{
			observation(48.00000, 2.0, 1, -70),
			observation(48.00001, 2.0, 2, -50),
			observation(48.00002, 2.0, 3, -60),
			observation(48.00100, 2.0, 4, -80),
		}
		out := filter.Filter(in)

		require.Len(t, out, 2)
		assert.Equal(t, int8(-50), out[0].SignalStrength)
		assert.Equal(t, int8(-80), out[1].SignalStrength)
		assert.Equal(t, int8(-70), in[0].SignalStrength, "input is not reordered")
	})

	t.Run("kept observations are pairwise apart and sorted", func(t *testing.T) {
		var in []models.Observation
		for i := 0; i < 40; i++ {
			in = append(in, observation(48+float64(i)*0.00002, 2, int64(i), int8(-40-i%23)))
		}
		out := filter.Filter(in)

		require.NotEmpty(t, out)
		for i := range out {
			if i > 0 {
				assert.GreaterOrEqual(t, out[i-1].SignalStrength, out[i].SignalStrength)
			}
			for j := i + 1; j < len(out); j++ {
				assert.GreaterOrEqual(t, geo.PositionDistance(out[i].Position, out[j].Position), services.DefaultMinObservationSpacing)
			}
		}
	})

	t.Run("equal signals keep input order", func(t *testing.T) {
		out := filter.Filter([]models.Observation{
			observation(48.0, 2.0, 1, -60),
			observation(48.0, 2.0, 2, -60),
		})
		require.Len(t, out, 1)
		assert.Equal(t, int64(1), out[0].Position.Timestamp)
	})
}

func TestNewSpatialFilter_NonPositiveUsesDefault(t *testing.T) {
	filter := services.NewSpatialFilter(0)
	out := filter.Filter([]models.Observation{
		observation(48.0, 2.0, 1, -60),
		observation(48.00002, 2.0, 2, -70),
	})
	assert.Len(t, out, 1)
}
