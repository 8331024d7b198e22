package models

// Position is a geographic fix in decimal degrees with an epoch-second timestamp.
type Position struct {
	Latitude  float64 `json:"latitude"`  // Degrees, WGS84
	Longitude float64 `json:"longitude"` // Degrees, WGS84
	Timestamp int64   `json:"timestamp"` // Seconds since the Unix epoch (UTC)
}

// Observation is one signal sample of an access point taken at a known position.
type Observation struct {
	Position       Position `json:"position"`
	SignalStrength int8     `json:"signal_strength"` // dBm
	Distance       float64  `json:"distance"`        // Path-loss estimate in meters
}
