package models

// SecurityKind classifies the protection advertised by an access point.
type SecurityKind string

const (
	SecurityOpen     SecurityKind = "Open"
	SecurityWEP      SecurityKind = "WEP"
	SecurityWPA      SecurityKind = "WPA"
	SecurityWPA2     SecurityKind = "WPA2"
	SecurityWPA3     SecurityKind = "WPA3"
	SecurityWPA2WPA3 SecurityKind = "WPA2/WPA3" // transition mode
	SecurityUnknown  SecurityKind = "Unknown"
)

// String implements fmt.Stringer.
func (s SecurityKind) String() string {
	return string(s)
}

// IsWPAFamily reports whether the scheme needs a pre-shared key to join.
func (s SecurityKind) IsWPAFamily() bool {
	switch s {
	case SecurityWPA, SecurityWPA2, SecurityWPA3, SecurityWPA2WPA3:
		return true
	}
	return false
}
