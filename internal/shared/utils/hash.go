package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// FingerprintLength is the number of hex characters kept by Fingerprint
const FingerprintLength = 16

// HashString returns the hex SHA-256 of s
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Fingerprint is a short, stable identifier for a snippet. Logs carry it
// in place of the snippet text so repeat offenders can be correlated.
func Fingerprint(s string) string {
	return HashString(s)[:FingerprintLength]
}
