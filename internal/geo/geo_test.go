package geo

import (
	"testing"

	"github.com/benmeehan/apmapper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obs(lat, lon float64, ts int64, rssi int8) models.Observation {
	return models.Observation{
		Position:       models.Position{Latitude: lat, Longitude: lon, Timestamp: ts},
		SignalStrength: rssi,
		Distance:       RSSIToDistance(rssi),
	}
}

func TestHaversineDistance(t *testing.T) {
	points := [][2]float64{
		{48.8566, 2.3522},
		{-33.8688, 151.2093},
		{0, 0},
		{51.5007, -0.1246},
	}

	for _, a := range points {
		assert.Equal(t, 0.0, HaversineDistance(a[0], a[1], a[0], a[1]))
		for _, b := range points {
			assert.InDelta(t, HaversineDistance(a[0], a[1], b[0], b[1]), HaversineDistance(b[0], b[1], a[0], a[1]), 1e-9)
		}
	}

	// One degree of latitude on a 6378 km sphere.
	assert.InDelta(t, 111317.1, HaversineDistance(0, 0, 1, 0), 1)
}

func TestRSSIToDistance_StrictlyDecreasing(t *testing.T) {
	prev := RSSIToDistance(-100)
	for rssi := -99; rssi <= 0; rssi++ {
		d := RSSIToDistance(int8(rssi))
		assert.Greater(t, d, 0.0)
		assert.Less(t, d, prev, "rssi %d", rssi)
		prev = d
	}

	assert.InDelta(t, 1.0, RSSIToDistance(-35), 1e-12)
	assert.InDelta(t, 10.0, RSSIToDistance(-60), 1e-9)
}

func TestPathLoss_CustomModel(t *testing.T) {
	model := PathLoss{RSSIAt1m: -40, Exponent: 2}
	assert.InDelta(t, 10.0, model.Distance(-60), 1e-9)
}

func TestWeightedCentroid(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, ok := WeightedCentroid(nil)
		assert.False(t, ok)
	})

	t.Run("equal signals give the midpoint", func(t *testing.T) {
		pos, ok := WeightedCentroid([]models.Observation{
			obs(10, 20, 100, -60),
			obs(12, 24, 200, -60),
		})
		require.True(t, ok)
		assert.InDelta(t, 11.0, pos.Latitude, 1e-12)
		assert.InDelta(t, 22.0, pos.Longitude, 1e-12)
		assert.Equal(t, int64(100), pos.Timestamp)
	})

	t.Run("stronger signal pulls the estimate", func(t *testing.T) {
		pos, ok := WeightedCentroid([]models.Observation{
			obs(0, 0, 1, -25),
			obs(1, 1, 2, -63),
		})
		require.True(t, ok)
		// weights 100 and ~49.3
		assert.InDelta(t, 1.0/3, pos.Latitude, 1e-2)
		assert.Less(t, pos.Latitude, 0.5)
	})

	t.Run("zero total weight falls back to the mean", func(t *testing.T) {
		pos, ok := WeightedCentroid([]models.Observation{
			obs(0, 0, 5, -100),
			obs(2, 4, 6, -110),
			obs(4, 8, 7, -128),
		})
		require.True(t, ok)
		assert.InDelta(t, 2.0, pos.Latitude, 1e-12)
		assert.InDelta(t, 4.0, pos.Longitude, 1e-12)
		assert.Equal(t, int64(5), pos.Timestamp)
	})
}

func TestCentroidWeight(t *testing.T) {
	assert.Equal(t, 0.0, CentroidWeight(-100))
	assert.Equal(t, 0.0, CentroidWeight(-120))
	assert.InDelta(t, 100.0, CentroidWeight(-25), 1e-12)
}

func TestTrilaterationWeight(t *testing.T) {
	assert.Equal(t, 0.0, TrilaterationWeight(-100))
	assert.Equal(t, 1.0, TrilaterationWeight(-30))
	assert.Equal(t, 1.0, TrilaterationWeight(-10))
	assert.InDelta(t, 0.25, TrilaterationWeight(-65), 1e-12)
}

func TestTrilaterate(t *testing.T) {
	params := DefaultTrilaterationParams()

	t.Run("fewer than three delegates to the centroid", func(t *testing.T) {
		in := []models.Observation{obs(10, 20, 1, -50), obs(12, 24, 2, -50)}
		got, ok := Trilaterate(in, params)
		require.True(t, ok)
		want, _ := WeightedCentroid(in)
		assert.Equal(t, want, got)
	})

	t.Run("converges near the weighted centroid", func(t *testing.T) {
		in := []models.Observation{
			obs(48.85660, 2.35220, 1000, -40),
			obs(48.85750, 2.35220, 1010, -50),
			obs(48.85660, 2.35350, 1020, -60),
		}
		got, ok := Trilaterate(in, params)
		require.True(t, ok)
		centroid, _ := WeightedCentroid(in)

		assert.Less(t, PositionDistance(got, centroid), 50.0)
		assert.Equal(t, int64(1000), got.Timestamp)
		assert.NotEqual(t, centroid, got, "at least one descent step is applied")
	})

	t.Run("zero weight returns the initial centroid", func(t *testing.T) {
		in := []models.Observation{
			obs(1, 1, 1, -100),
			obs(2, 2, 2, -100),
			obs(3, 3, 3, -105),
		}
		got, ok := Trilaterate(in, params)
		require.True(t, ok)
		want, _ := WeightedCentroid(in)
		assert.Equal(t, want, got)
	})

	t.Run("near the pole every observation is skipped", func(t *testing.T) {
		in := []models.Observation{
			obs(89.9999, 0, 1, -40),
			obs(89.9999, 90, 2, -40),
			obs(89.9999, 180, 3, -40),
		}
		got, ok := Trilaterate(in, params)
		require.True(t, ok)
		want, _ := WeightedCentroid(in)
		assert.Equal(t, want, got)
	})
}
