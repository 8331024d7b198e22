package models

import "time"

// Packet is the normalized result of decoding one captured radio frame.
type Packet struct {
	Timestamp      time.Time
	SourceAddress  *MAC
	SSID           *string
	SignalStrength *int8
	Channel        *uint8
	Security       *SecurityKind
}
