package models

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// MAC is a 48-bit IEEE 802 hardware address.
type MAC [6]byte

// MACFromBytes copies the first six bytes of b into a MAC.
func MACFromBytes(b []byte) MAC {
	var mac MAC
	copy(mac[:], b)
	return mac
}

// ParseMAC accepts "aa:bb:cc:dd:ee:ff", "aa-bb-cc-dd-ee-ff" or the bare 12 hex digit form
// used by hashcat.
func ParseMAC(s string) (MAC, error) {
	var mac MAC
	clean := strings.NewReplacer(":", "", "-", "").Replace(strings.TrimSpace(s))
	if len(clean) != 12 {
		return mac, fmt.Errorf("invalid MAC address %q", s)
	}
	raw, err := hex.DecodeString(clean)
	if err != nil {
		return mac, fmt.Errorf("invalid MAC address %q: %w", s, err)
	}
	copy(mac[:], raw)
	return mac, nil
}

// String returns the lowercase colon separated form.
func (m MAC) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// Prefix returns the organizationally unique identifier (first three bytes).
func (m MAC) Prefix() [3]byte {
	return [3]byte{m[0], m[1], m[2]}
}

// MarshalText implements encoding.TextMarshaler so MACs serialize as strings.
func (m MAC) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
