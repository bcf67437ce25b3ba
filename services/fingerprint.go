package services

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the hex-encoded sha256 digest of input. It is a
// content fingerprint used to seed short-code derivation, not a secret.
func Fingerprint(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
