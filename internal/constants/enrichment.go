package constants

import "time"

const (
	// HashcatBinary is looked up on PATH.
	HashcatBinary = "hashcat"
	// HashcatMode is the WPA-PBKDF2-PMKID+EAPOL hash mode.
	HashcatMode = "22000"
	// DefaultHashcatTimeout bounds one "hashcat --show" invocation.
	DefaultHashcatTimeout = 60 * time.Second
)

// Hashcat 22000 record types.
const (
	HashTypePMKID = "01"
	HashTypeEAPOL = "02"
)
