package models

// Position estimation methods.
const (
	MethodSingle           = "single"
	MethodWeightedCentroid = "weighted_centroid"
	MethodTrilateration    = "trilateration"
)

// AccessPoint accumulates everything known about one BSSID during a run.
type AccessPoint struct {
	MAC               MAC           `json:"mac"`
	SSID              *string       `json:"ssid,omitempty"`
	Observations      []Observation `json:"observations,omitempty"`
	EstimatedPosition *Position     `json:"estimated_position,omitempty"`
	PositionMethod    *string       `json:"position_method,omitempty"`
	Security          *SecurityKind `json:"security,omitempty"`
	Channel           *uint8        `json:"channel,omitempty"`
	Vendor            *string       `json:"vendor,omitempty"`
	Password          *string       `json:"password,omitempty"`
}

// SignalStats summarizes the RSSI of the observations.
type SignalStats struct {
	Min int8
	Max int8
	Avg float64
}

// SignalStats returns min/max/avg RSSI; ok is false when there are no observations.
func (ap *AccessPoint) SignalStats() (stats SignalStats, ok bool) {
	if len(ap.Observations) == 0 {
		return stats, false
	}

	stats.Min = ap.Observations[0].SignalStrength
	stats.Max = ap.Observations[0].SignalStrength
	var sum float64
	for _, obs := range ap.Observations {
		if obs.SignalStrength < stats.Min {
			stats.Min = obs.SignalStrength
		}
		if obs.SignalStrength > stats.Max {
			stats.Max = obs.SignalStrength
		}
		sum += float64(obs.SignalStrength)
	}
	stats.Avg = sum / float64(len(ap.Observations))
	return stats, true
}

// SSIDOrEmpty returns the SSID or "" when unknown.
func (ap *AccessPoint) SSIDOrEmpty() string {
	if ap.SSID == nil {
		return ""
	}
	return *ap.SSID
}

// SecurityOrUnknown returns the security class, defaulting to Unknown.
func (ap *AccessPoint) SecurityOrUnknown() SecurityKind {
	if ap.Security == nil {
		return SecurityUnknown
	}
	return *ap.Security
}

// MethodOrUnknown returns the estimation method or "unknown".
func (ap *AccessPoint) MethodOrUnknown() string {
	if ap.PositionMethod == nil {
		return "unknown"
	}
	return *ap.PositionMethod
}
