package services_test

import (
	"testing"
	"time"

	"github.com/benmeehan/apmapper/internal/geo"
	"github.com/benmeehan/apmapper/internal/models"
	"github.com/benmeehan/apmapper/internal/services"
	"github.com/benmeehan/apmapper/internal/track"
	"github.com/benmeehan/apmapper/internal/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mac(last byte) models.MAC {
	return models.MAC{0x00, 0x11, 0x22, 0x33, 0x44, last}
}

func packet(ts int64, addr *models.MAC, signal *int8) *models.Packet {
	return &models.Packet{
		Timestamp:      time.Unix(ts, 0),
		SourceAddress:  addr,
		SignalStrength: signal,
	}
}

func TestAggregationService_Aggregate(t *testing.T) {
	positions := track.NewTrack([]models.Position{
		{Latitude: 48.0, Longitude: 2.0, Timestamp: 100},
		{Latitude: 48.001, Longitude: 2.001, Timestamp: 110},
	})

	first := packet(100, utils.Ptr(mac(2)), utils.Ptr[int8](-50))
	first.Channel = utils.Ptr[uint8](6)
	second := packet(105, utils.Ptr(mac(2)), utils.Ptr[int8](-60))
	second.SSID = utils.Ptr("cafe")
	second.Channel = utils.Ptr[uint8](11)
	second.Security = utils.Ptr(models.SecurityWPA2)
	third := packet(110, utils.Ptr(mac(2)), utils.Ptr[int8](-70))
	third.SSID = utils.Ptr("other")
	other := packet(101, utils.Ptr(mac(1)), utils.Ptr[int8](-40))

	packets := []*models.Packet{
		first,
		packet(100, nil, utils.Ptr[int8](-50)),
		packet(100, utils.Ptr(mac(3)), nil),
		packet(99, utils.Ptr(mac(3)), utils.Ptr[int8](-50)),
		packet(111, utils.Ptr(mac(3)), utils.Ptr[int8](-50)),
		second,
		third,
		other,
	}

	service := services.NewAggregationService(geo.DefaultPathLoss(), zerolog.Nop())
	aps, stats := service.Aggregate(packets, positions)

	assert.Equal(t, services.AggregationStats{DroppedNoAddress: 1, DroppedNoSignal: 1, DroppedNoPosition: 2}, stats)
	require.Len(t, aps, 2)
	assert.Equal(t, mac(1), aps[0].MAC, "sorted by MAC")

	ap := aps[1]
	assert.Equal(t, mac(2), ap.MAC)
	require.Len(t, ap.Observations, 3)
	assert.Equal(t, "cafe", *ap.SSID, "first known SSID wins")
	assert.Equal(t, uint8(6), *ap.Channel, "first packet seeds the channel")
	assert.Equal(t, models.SecurityWPA2, *ap.Security)

	mid := ap.Observations[1]
	assert.Equal(t, int64(105), mid.Position.Timestamp)
	assert.InDelta(t, 48.0005, mid.Position.Latitude, 1e-9)
	assert.InDelta(t, geo.RSSIToDistance(-60), mid.Distance, 1e-12)
}

func TestAggregationService_EmptyTrack(t *testing.T) {
	service := services.NewAggregationService(geo.DefaultPathLoss(), zerolog.Nop())
	aps, stats := service.Aggregate([]*models.Packet{
		packet(100, utils.Ptr(mac(1)), utils.Ptr[int8](-50)),
	}, track.NewTrack(nil))

	assert.Empty(t, aps)
	assert.Equal(t, 1, stats.DroppedNoPosition)
}
