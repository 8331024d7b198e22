package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/benmeehan/apmapper/internal/models"
)

const wiglePreHeader = "WigleWifi-1.4,appRelease=1.0,model=apmapper,release=1.0,device=apmapper,display=,board=,brand=apmapper\n"

var wigleHeader = []string{
	"MAC", "SSID", "AuthMode", "FirstSeen", "Channel", "RSSI",
	"CurrentLatitude", "CurrentLongitude", "AltitudeMeters", "AccuracyMeters", "Type",
}

var wigleAuthModes = map[models.SecurityKind]string{
	models.SecurityOpen:     "[ESS]",
	models.SecurityWEP:      "[WEP][ESS]",
	models.SecurityWPA:      "[WPA-PSK-TKIP][ESS]",
	models.SecurityWPA2:     "[WPA2-PSK-CCMP][ESS]",
	models.SecurityWPA3:     "[WPA3-SAE-CCMP][ESS]",
	models.SecurityWPA2WPA3: "[WPA2-PSK-CCMP][WPA3-SAE-CCMP][ESS]",
}

// WigleAuthMode renders a security class in WiGLE capability notation.
func WigleAuthMode(security models.SecurityKind) string {
	if mode, ok := wigleAuthModes[security]; ok {
		return mode
	}
	return "[ESS]"
}

// WriteWigle writes a WiGLE upload file with one row per observation. The accuracy column
// carries the path loss distance of the observation.
func WriteWigle(w io.Writer, aps []*models.AccessPoint) error {
	if _, err := io.WriteString(w, wiglePreHeader); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(wigleHeader); err != nil {
		return err
	}

	for _, ap := range aps {
		authMode := WigleAuthMode(ap.SecurityOrUnknown())
		channel := optional(ap.Channel, func(c uint8) string { return strconv.Itoa(int(c)) })
		for _, obs := range ap.Observations {
			err := writer.Write([]string{
				ap.MAC.String(),
				ap.SSIDOrEmpty(),
				authMode,
				time.Unix(obs.Position.Timestamp, 0).UTC().Format("2006-01-02 15:04:05"),
				channel,
				strconv.Itoa(int(obs.SignalStrength)),
				formatCoordinate(obs.Position.Latitude),
				formatCoordinate(obs.Position.Longitude),
				"0",
				fmt.Sprintf("%.1f", obs.Distance),
				"WIFI",
			})
			if err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
