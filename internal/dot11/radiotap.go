package dot11

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// radioInfo is the PHY metadata taken from the radiotap header.
type radioInfo struct {
	headerLength int
	signal       *int8
	channel      *uint8
}

// parseRadiotap decodes the radiotap prefix of data. Decoding goes through gopacket.NewPacket
// so that a malformed header surfaces as a missing layer instead of a panic. The packet is
// lazy: only the radiotap layer is decoded, the 802.11 payload is left to Decode.
func parseRadiotap(data []byte) (radioInfo, bool) {
	packet := gopacket.NewPacket(data, layers.LayerTypeRadioTap, gopacket.DecodeOptions{Lazy: true, NoCopy: true})
	rt, ok := packet.Layer(layers.LayerTypeRadioTap).(*layers.RadioTap)
	if !ok || rt == nil {
		return radioInfo{}, false
	}

	info := radioInfo{headerLength: int(rt.Length)}
	if rt.Present.DBMAntennaSignal() {
		signal := rt.DBMAntennaSignal
		info.signal = &signal
	}
	if rt.Present.Channel() {
		if channel, ok := FrequencyToChannel(uint16(rt.ChannelFrequency)); ok {
			info.channel = &channel
		}
	}
	return info, true
}
