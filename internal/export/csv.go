package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/benmeehan/apmapper/internal/models"
)

var csvHeader = []string{
	"MAC", "SSID", "Security", "Latitude", "Longitude", "Observations", "Method",
	"MinRSSI", "MaxRSSI", "AvgRSSI", "Channel", "Vendor", "Password",
}

// WriteCSV writes one row per access point with an estimated position.
func WriteCSV(w io.Writer, aps []*models.AccessPoint) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, ap := range aps {
		if ap.EstimatedPosition == nil {
			continue
		}
		if err := writer.Write(csvRow(ap)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvRow(ap *models.AccessPoint) []string {
	stats, _ := ap.SignalStats()
	return []string{
		ap.MAC.String(),
		strings.ReplaceAll(ap.SSIDOrEmpty(), ",", ";"),
		ap.SecurityOrUnknown().String(),
		formatCoordinate(ap.EstimatedPosition.Latitude),
		formatCoordinate(ap.EstimatedPosition.Longitude),
		strconv.Itoa(len(ap.Observations)),
		ap.MethodOrUnknown(),
		strconv.Itoa(int(stats.Min)),
		strconv.Itoa(int(stats.Max)),
		strconv.FormatFloat(stats.Avg, 'f', 1, 64),
		optional(ap.Channel, func(c uint8) string { return strconv.Itoa(int(c)) }),
		optional(ap.Vendor, func(v string) string { return v }),
		optional(ap.Password, func(p string) string { return p }),
	}
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func optional[T any](v *T, format func(T) string) string {
	if v == nil {
		return ""
	}
	return format(*v)
}
