package geo

import "math"

// Log-distance path-loss model defaults. Both are empirical tuning values for typical
// outdoor 2.4 GHz propagation, not derived quantities.
const (
	DefaultRSSIAt1m         = -35.0 // dBm received at 1 meter
	DefaultPathLossExponent = 2.5
)

// PathLoss converts received signal strength into an estimated distance.
type PathLoss struct {
	RSSIAt1m float64
	Exponent float64
}

// DefaultPathLoss returns the model with the default constants.
func DefaultPathLoss() PathLoss {
	return PathLoss{RSSIAt1m: DefaultRSSIAt1m, Exponent: DefaultPathLossExponent}
}

// Distance returns 10^((A - rssi) / (10 * n)) meters.
func (p PathLoss) Distance(rssi int8) float64 {
	return math.Pow(10, (p.RSSIAt1m-float64(rssi))/(10*p.Exponent))
}

// RSSIToDistance applies the default path-loss model.
func RSSIToDistance(rssi int8) float64 {
	return DefaultPathLoss().Distance(rssi)
}
