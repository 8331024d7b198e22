package enrichment

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/benmeehan/apmapper/internal/constants"
	"github.com/benmeehan/apmapper/internal/models"
)

// eapolSuites maps AKM suite selectors found in EAPOL key data to a security class,
// strongest first.
var eapolSuites = []struct {
	selectors []string
	security  models.SecurityKind
}{
	{[]string{"000fac08", "000fac0c"}, models.SecurityWPA3},
	{[]string{"000fac02", "000fac06"}, models.SecurityWPA2},
	{[]string{"000fac01", "0050f202"}, models.SecurityWPA},
}

// ParseHashLine reads the access point MAC and security class from one hashcat mode 22000
// line: WPA*TYPE*PMKID/MIC*MAC_AP*MAC_CLIENT*ESSID*ANONCE*EAPOL*MESSAGEPAIR.
func ParseHashLine(line string) (models.MAC, models.SecurityKind, bool) {
	parts := strings.Split(strings.TrimSpace(line), "*")
	if len(parts) < 5 || parts[0] != "WPA" || len(parts[3]) != 12 {
		return models.MAC{}, "", false
	}
	mac, err := models.ParseMAC(parts[3])
	if err != nil {
		return models.MAC{}, "", false
	}

	// PMKID captures carry no AKM, assume WPA2.
	if parts[1] != constants.HashTypeEAPOL || len(parts) < 9 {
		return mac, models.SecurityWPA2, true
	}
	return mac, securityFromEAPOL(parts[7]), true
}

func securityFromEAPOL(eapol string) models.SecurityKind {
	eapol = strings.ToLower(eapol)
	for _, suite := range eapolSuites {
		for _, selector := range suite.selectors {
			if strings.Contains(eapol, selector) {
				return suite.security
			}
		}
	}
	return models.SecurityWPA2
}

// ParseHashFile collects the security class of every access point in a 22000 file. Later
// lines win for a MAC that appears more than once.
func ParseHashFile(r io.Reader, into map[models.MAC]models.SecurityKind) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if mac, security, ok := ParseHashLine(scanner.Text()); ok {
			into[mac] = security
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read hash file: %w", err)
	}
	return nil
}

// Credential is one cracked network reported by hashcat.
type Credential struct {
	MAC      models.MAC
	SSID     string
	Password string
	Security models.SecurityKind
}

// ParseShowLine reads a `hashcat --show -m 22000` line: MIC:MAC_AP:MAC_CLIENT:ESSID:PASSWORD.
// Everything after the fourth separator is the password, so passwords may contain ':'.
func ParseShowLine(line string) (Credential, bool) {
	parts := strings.SplitN(line, ":", 5)
	if len(parts) < 5 || len(parts[1]) != 12 {
		return Credential{}, false
	}
	mac, err := models.ParseMAC(parts[1])
	if err != nil {
		return Credential{}, false
	}
	return Credential{MAC: mac, SSID: parts[3], Password: parts[4]}, true
}
