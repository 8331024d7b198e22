// Package enrichment adds information to access points that the captures do not carry:
// the hardware vendor from the OUI and recovered passphrases from hashcat.
package enrichment

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/benmeehan/apmapper/internal/models"
	"github.com/benmeehan/apmapper/internal/utils"
	"github.com/benmeehan/apmapper/pkg/file"
	"github.com/rs/zerolog"
)

//go:embed mac-vendors.csv
var defaultVendors []byte

// VendorLookup resolves the OUI of a MAC address to a vendor name.
type VendorLookup struct {
	vendors map[[3]byte]string
	logger  zerolog.Logger
}

// NewVendorLookup creates a lookup preloaded with the embedded OUI table.
func NewVendorLookup(logger zerolog.Logger) *VendorLookup {
	v := &VendorLookup{
		vendors: make(map[[3]byte]string),
		logger:  logger,
	}
	if _, err := v.Load(bytes.NewReader(defaultVendors)); err != nil {
		logger.Error().Err(err).Msg("Failed to load embedded vendor table")
	}
	return v
}

// Len returns the number of known prefixes.
func (v *VendorLookup) Len() int {
	return len(v.vendors)
}

// Load reads "prefix","vendor" records. The first line is a header. Entries replace existing
// ones with the same prefix; malformed lines are logged and skipped.
func (v *VendorLookup) Load(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	loaded := 0
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return loaded, nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				v.logger.Debug().Err(err).Msg("Malformed line in vendor table")
				continue
			}
			return loaded, fmt.Errorf("failed to read vendor table: %w", err)
		}
		if header {
			header = false
			continue
		}

		if len(record) < 2 {
			v.logger.Debug().Strs("record", record).Msg("Malformed line in vendor table")
			continue
		}
		prefix, ok := parsePrefix(record[0])
		if !ok {
			v.logger.Debug().Str("prefix", record[0]).Msg("Invalid prefix in vendor table")
			continue
		}
		v.vendors[prefix] = strings.TrimSpace(record[1])
		loaded++
	}
}

// LoadFile merges an external vendor table into the lookup.
func (v *VendorLookup) LoadFile(fileOps file.FileOperations, path string) error {
	rc, err := fileOps.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open vendor file %s: %w", path, err)
	}
	defer rc.Close()

	n, err := v.Load(rc)
	if err != nil {
		return err
	}
	v.logger.Info().Str("file", path).Int("entries", n).Msg("Vendor table loaded")
	return nil
}

// Lookup returns the vendor registered for the OUI of mac.
func (v *VendorLookup) Lookup(mac models.MAC) (string, bool) {
	vendor, ok := v.vendors[mac.Prefix()]
	return vendor, ok
}

// BindVendors sets the vendor of every access point whose OUI is known and whose vendor is
// still unset. It returns how many access points carry a vendor afterwards.
func (v *VendorLookup) BindVendors(aps []*models.AccessPoint) int {
	bound := 0
	for _, ap := range aps {
		if vendor, ok := v.Lookup(ap.MAC); ok {
			ap.Vendor = utils.MergeOptional(ap.Vendor, &vendor)
			v.logger.Trace().Str("mac", ap.MAC.String()).Str("vendor", *ap.Vendor).Msg("Bound vendor")
		}
		if ap.Vendor != nil {
			bound++
		}
	}
	return bound
}

// parsePrefix accepts "AA:BB:CC", "AA-BB-CC" or "AABBCC".
func parsePrefix(s string) ([3]byte, bool) {
	var prefix [3]byte
	mac, err := models.ParseMAC(strings.TrimSpace(s) + ":00:00:00")
	if err != nil {
		return prefix, false
	}
	return mac.Prefix(), true
}
