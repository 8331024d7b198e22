package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/benmeehan/apmapper/internal/models"
)

const kmlNamespace = "http://www.opengis.net/kml/2.2"

// Placemark styles.
const (
	StyleOpen    = "open"
	StyleSecured = "secured"
	StyleCracked = "cracked"
)

type kmlRoot struct {
	XMLName  xml.Name    `xml:"kml"`
	Xmlns    string      `xml:"xmlns,attr"`
	Document kmlDocument `xml:"Document"`
}

type kmlDocument struct {
	Name       string         `xml:"name"`
	Styles     []kmlStyle     `xml:"Style"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlStyle struct {
	ID        string       `xml:"id,attr"`
	IconStyle kmlIconStyle `xml:"IconStyle"`
}

type kmlIconStyle struct {
	Color string  `xml:"color"`
	Icon  kmlIcon `xml:"Icon"`
}

type kmlIcon struct {
	Href string `xml:"href"`
}

type kmlPlacemark struct {
	Name        string   `xml:"name"`
	Description string   `xml:"description"`
	StyleURL    string   `xml:"styleUrl"`
	Point       kmlPoint `xml:"Point"`
}

type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}

// KML colors are aabbggrr.
var kmlStyles = []kmlStyle{
	{ID: StyleOpen, IconStyle: kmlIconStyle{Color: "ff00ff00", Icon: kmlIcon{Href: "http://maps.google.com/mapfiles/kml/paddle/grn-circle.png"}}},
	{ID: StyleSecured, IconStyle: kmlIconStyle{Color: "ff0000ff", Icon: kmlIcon{Href: "http://maps.google.com/mapfiles/kml/paddle/red-circle.png"}}},
	{ID: StyleCracked, IconStyle: kmlIconStyle{Color: "ff00ffff", Icon: kmlIcon{Href: "http://maps.google.com/mapfiles/kml/paddle/ylw-circle.png"}}},
}

// StyleFor picks the placemark style: cracked when a password is known, open for open
// networks, secured otherwise.
func StyleFor(ap *models.AccessPoint) string {
	switch {
	case ap.Password != nil:
		return StyleCracked
	case ap.SecurityOrUnknown() == models.SecurityOpen:
		return StyleOpen
	default:
		return StyleSecured
	}
}

// WriteKML writes one placemark per access point with an estimated position.
func WriteKML(w io.Writer, aps []*models.AccessPoint) error {
	root := kmlRoot{
		Xmlns: kmlNamespace,
		Document: kmlDocument{
			Name:   "WiFi access points",
			Styles: kmlStyles,
		},
	}

	for _, ap := range aps {
		if ap.EstimatedPosition == nil {
			continue
		}
		name := ap.SSIDOrEmpty()
		if name == "" {
			name = ap.MAC.String()
		}
		root.Document.Placemarks = append(root.Document.Placemarks, kmlPlacemark{
			Name:        name,
			Description: kmlDescription(ap),
			StyleURL:    "#" + StyleFor(ap),
			Point: kmlPoint{
				Coordinates: fmt.Sprintf("%.6f,%.6f,0", ap.EstimatedPosition.Longitude, ap.EstimatedPosition.Latitude),
			},
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(root); err != nil {
		return fmt.Errorf("failed to encode KML: %w", err)
	}
	return encoder.Close()
}

func kmlDescription(ap *models.AccessPoint) string {
	lines := []string{
		"MAC: " + ap.MAC.String(),
		"Security: " + ap.SecurityOrUnknown().String(),
		fmt.Sprintf("Observations: %d (%s)", len(ap.Observations), ap.MethodOrUnknown()),
	}
	if stats, ok := ap.SignalStats(); ok {
		lines = append(lines, fmt.Sprintf("RSSI: %d / %d / %.1f dBm", stats.Min, stats.Max, stats.Avg))
	}
	if ap.Channel != nil {
		lines = append(lines, fmt.Sprintf("Channel: %d", *ap.Channel))
	}
	if ap.Vendor != nil {
		lines = append(lines, "Vendor: "+*ap.Vendor)
	}
	if ap.Password != nil {
		lines = append(lines, "Password: "+*ap.Password)
	}
	return strings.Join(lines, "\n")
}
