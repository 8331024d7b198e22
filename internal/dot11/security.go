package dot11

import (
	"bytes"
	"encoding/binary"

	"github.com/benmeehan/apmapper/internal/models"
	"github.com/google/gopacket/layers"
)

const (
	// capabilityPrivacy is the Privacy bit of the capability information field.
	capabilityPrivacy = 0x0010

	akmSuitePSK = 2
	akmSuiteSAE = 8

	wpaOUIType = 0x01
)

// wpaOUI is the Microsoft OUI carried by the legacy WPA vendor element.
var wpaOUI = []byte{0x00, 0x50, 0xF2}

// securityFlags are the facts gathered from the information elements.
type securityFlags struct {
	privacy bool
	rsn     bool
	psk     bool
	sae     bool
	wpa     bool
}

// resolve applies the fixed precedence RSN (SAE/PSK) > vendor WPA > privacy-only WEP.
func (f securityFlags) resolve() models.SecurityKind {
	switch {
	case !f.privacy:
		return models.SecurityOpen
	case f.rsn && f.sae && f.psk:
		return models.SecurityWPA2WPA3
	case f.rsn && f.sae:
		return models.SecurityWPA3
	case f.rsn:
		return models.SecurityWPA2
	case f.wpa:
		return models.SecurityWPA
	case f.privacy:
		return models.SecurityWEP
	}
	return models.SecurityUnknown
}

// ClassifySecurity derives the security scheme from the capability field and the tagged
// elements of a beacon or probe response. It never fails.
func ClassifySecurity(capabilities uint16, elements []byte) models.SecurityKind {
	flags := securityFlags{privacy: capabilities&capabilityPrivacy != 0}
	if !flags.privacy {
		return models.SecurityOpen
	}

	for elem := range Elements(elements) {
		switch elem.ID {
		case layers.Dot11InformationElementIDRSNInfo:
			flags.rsn = true
			if len(elem.Info) >= 8 {
				flags.psk, flags.sae = rsnAKMs(elem.Info)
			}
		case layers.Dot11InformationElementIDVendor:
			if len(elem.Info) >= 8 && bytes.Equal(elem.Info[:3], wpaOUI) && elem.Info[3] == wpaOUIType {
				flags.wpa = true
			}
		}
	}

	return flags.resolve()
}

// rsnAKMs reports PSK and SAE support from an RSN element body:
// version(2) group cipher(4) pairwise count(2) pairwise suites(4n) AKM count(2) AKM suites(4m).
// Parsing stops at the first field that does not fit.
func rsnAKMs(rsn []byte) (psk, sae bool) {
	if len(rsn) < 8 {
		return false, false
	}
	pairwiseCount := int(binary.LittleEndian.Uint16(rsn[6:8]))

	akmOffset := 8 + pairwiseCount*4
	if len(rsn) < akmOffset+2 {
		return false, false
	}
	akmCount := int(binary.LittleEndian.Uint16(rsn[akmOffset : akmOffset+2]))

	for i := 0; i < akmCount; i++ {
		suite := akmOffset + 2 + i*4
		if len(rsn) < suite+4 {
			break
		}
		switch rsn[suite+3] {
		case akmSuitePSK:
			psk = true
		case akmSuiteSAE:
			sae = true
		}
	}
	return psk, sae
}
