package services

import (
	"bytes"
	"sort"

	"github.com/benmeehan/apmapper/internal/geo"
	"github.com/benmeehan/apmapper/internal/models"
	"github.com/benmeehan/apmapper/internal/track"
	"github.com/benmeehan/apmapper/internal/utils"
	"github.com/rs/zerolog"
)

// AggregationStats counts the packets that did not become observations.
type AggregationStats struct {
	DroppedNoAddress  int
	DroppedNoSignal   int
	DroppedNoPosition int
}

// AggregationService groups decoded packets into access points.
type AggregationService struct {
	pathLoss geo.PathLoss
	logger   zerolog.Logger
}

// NewAggregationService creates an AggregationService using the given path loss model.
func NewAggregationService(pathLoss geo.PathLoss, logger zerolog.Logger) *AggregationService {
	return &AggregationService{
		pathLoss: pathLoss,
		logger:   logger,
	}
}

// Aggregate turns every packet that has a source address, a signal strength and a track
// position at its capture second into an observation of its access point. The first packet
// of an access point seeds SSID, channel and security; later packets only fill what is still
// unset. Access points are returned sorted by MAC.
func (s *AggregationService) Aggregate(packets []*models.Packet, positions *track.Track) ([]*models.AccessPoint, AggregationStats) {
	var stats AggregationStats
	byMAC := make(map[models.MAC]*models.AccessPoint)

	for _, packet := range packets {
		if packet.SourceAddress == nil {
			stats.DroppedNoAddress++
			continue
		}
		if packet.SignalStrength == nil {
			stats.DroppedNoSignal++
			continue
		}
		pos, ok := positions.At(packet.Timestamp.Unix())
		if !ok {
			stats.DroppedNoPosition++
			continue
		}

		signal := *packet.SignalStrength
		observation := models.Observation{
			Position:       pos,
			SignalStrength: signal,
			Distance:       s.pathLoss.Distance(signal),
		}

		ap, exists := byMAC[*packet.SourceAddress]
		if !exists {
			ap = &models.AccessPoint{MAC: *packet.SourceAddress}
			byMAC[ap.MAC] = ap
		}
		ap.Observations = append(ap.Observations, observation)
		ap.SSID = utils.MergeOptional(ap.SSID, packet.SSID)
		ap.Channel = utils.MergeOptional(ap.Channel, packet.Channel)
		ap.Security = utils.MergeOptional(ap.Security, packet.Security)
	}

	aps := make([]*models.AccessPoint, 0, len(byMAC))
	for _, ap := range byMAC {
		aps = append(aps, ap)
	}
	sort.Slice(aps, func(i, j int) bool {
		return bytes.Compare(aps[i].MAC[:], aps[j].MAC[:]) < 0
	})

	s.logger.Info().
		Int("packets", len(packets)).
		Int("access_points", len(aps)).
		Int("no_address", stats.DroppedNoAddress).
		Int("no_signal", stats.DroppedNoSignal).
		Int("no_position", stats.DroppedNoPosition).
		Msg("Packets grouped by access point")
	return aps, stats
}
