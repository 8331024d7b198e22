// Package dot11 decodes radiotap-framed 802.11 records into access point sightings.
package dot11

import (
	"encoding/binary"
	"time"
	"unicode/utf8"

	"github.com/benmeehan/apmapper/internal/models"
	"github.com/google/gopacket/layers"
)

const (
	// headerLength is the minimal 802.11 MAC header (frame control through sequence control).
	headerLength = 24
	// fixedParamsLength covers timestamp, beacon interval and capability info.
	fixedParamsLength = 12
	// capabilityOffset is relative to the start of the 802.11 frame.
	capabilityOffset = headerLength + 10

	flagToDS   = 0x0100
	flagFromDS = 0x0200
)

// Address byte ranges inside the 802.11 header.
var (
	addr1 = [2]int{4, 10}
	addr2 = [2]int{10, 16}
	addr3 = [2]int{16, 22}
)

// Decode turns one captured record into a Packet. The boolean is false when the record is
// malformed or is a frame kind that names no access point; neither is an error for the caller.
func Decode(data []byte, ts time.Time) (*models.Packet, bool) {
	radio, ok := parseRadiotap(data)
	if !ok || radio.headerLength < 0 || len(data) < radio.headerLength+headerLength {
		return nil, false
	}
	frame := data[radio.headerLength:]

	fc := binary.LittleEndian.Uint16(frame[0:2])
	frameType := layers.Dot11Type((fc >> 2) & 0x3f)

	span, ok := sourceSpan(frameType, fc)
	if !ok {
		return nil, false
	}
	mac := models.MACFromBytes(frame[span[0]:span[1]])

	packet := &models.Packet{
		Timestamp:      ts,
		SourceAddress:  &mac,
		SignalStrength: radio.signal,
		Channel:        radio.channel,
	}

	if advertisesNetwork(frameType) && len(frame) >= headerLength+fixedParamsLength {
		capabilities := binary.LittleEndian.Uint16(frame[capabilityOffset : capabilityOffset+2])
		elements := frame[headerLength+fixedParamsLength:]

		security := ClassifySecurity(capabilities, elements)
		packet.Security = &security
		packet.SSID = extractSSID(elements)
	}

	return packet, true
}

// sourceSpan picks the address field naming the access point for frames that carry one.
func sourceSpan(frameType layers.Dot11Type, fc uint16) ([2]int, bool) {
	switch frameType.MainType() {
	case layers.Dot11TypeMgmt:
		switch frameType {
		case layers.Dot11TypeMgmtBeacon,
			layers.Dot11TypeMgmtProbeResp,
			layers.Dot11TypeMgmtAssociationResp,
			layers.Dot11TypeMgmtReassociationResp:
			return addr2, true
		}
	case layers.Dot11TypeData:
		toDS, fromDS := fc&flagToDS != 0, fc&flagFromDS != 0
		switch {
		case toDS && !fromDS:
			return addr1, true
		case !toDS && fromDS:
			return addr2, true
		case !toDS && !fromDS:
			return addr3, true
		}
	}
	return [2]int{}, false
}

func advertisesNetwork(frameType layers.Dot11Type) bool {
	return frameType == layers.Dot11TypeMgmtBeacon || frameType == layers.Dot11TypeMgmtProbeResp
}

// extractSSID returns the first non-empty SSID element. Zero-length SSID elements (hidden
// networks) are skipped; a non-empty one that is not valid UTF-8 ends the search.
func extractSSID(elements []byte) *string {
	for elem := range Elements(elements) {
		if elem.ID != layers.Dot11InformationElementIDSSID || len(elem.Info) == 0 {
			continue
		}
		if !utf8.Valid(elem.Info) {
			return nil
		}
		ssid := string(elem.Info)
		return &ssid
	}
	return nil
}
