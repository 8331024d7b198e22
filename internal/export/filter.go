// Package export renders access points into CSV, KML, WiGLE and SQLite outputs.
package export

import (
	"path/filepath"
	"strings"

	"github.com/benmeehan/apmapper/internal/constants"
	"github.com/benmeehan/apmapper/internal/models"
	"github.com/benmeehan/apmapper/internal/utils"
)

var unprotected = utils.SliceToSet([]models.SecurityKind{models.SecurityOpen, models.SecurityWEP})

// Accessible reports whether an access point can be joined: open or WEP networks, and
// WPA-family networks whose password was recovered. Unknown security never qualifies.
func Accessible(ap *models.AccessPoint) bool {
	if ap.Security == nil {
		return false
	}
	if _, ok := unprotected[*ap.Security]; ok {
		return true
	}
	return ap.Security.IsWPAFamily() && ap.Password != nil
}

// FilterAccessible returns the accessible access points, keeping their order.
func FilterAccessible(aps []*models.AccessPoint) []*models.AccessPoint {
	var kept []*models.AccessPoint
	for _, ap := range aps {
		if Accessible(ap) {
			kept = append(kept, ap)
		}
	}
	return kept
}

// FilteredPath inserts the filtered suffix before the extension of path:
// "out/aps.csv" becomes "out/aps_filtered.csv", "aps" becomes "aps_filtered".
func FilteredPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + constants.FilteredSuffix + ext
}
