package services

import (
	"fmt"
	"time"
)

const (
	// CodeLength is the length of a derived short code: the first 8
	// characters of the URL's fingerprint.
	CodeLength = 8

	// maxAttempts bounds the collision-retry loop. Timestamp-salted
	// retries succeed within a handful of tries, so hitting the bound
	// means something is wrong and we fail instead of spinning.
	maxAttempts = 10
)

// candidateCode derives the attempt-th candidate short code for longURL.
// The first attempt fingerprints the URL alone so equal input yields a
// stable candidate; later attempts salt the fingerprint with the current
// timestamp and the attempt counter to escape an occupied code.
func candidateCode(longURL string, attempt int, now time.Time) string {
	input := longURL
	if attempt > 0 {
		input = fmt.Sprintf("%s:%d:%d", longURL, now.UnixNano(), attempt)
	}
	return Fingerprint(input)[:CodeLength]
}
