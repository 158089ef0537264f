package helpers

import (
	"crypto/sha256"
	"encoding/hex"
)

// ClientFingerprint derives a stable client identity hash from request
// headers. Same inputs always yield the same digest; missing headers fall
// back to the literal "unknown".
//
// This is a weak binding signal only: the inputs are spoofable by anyone who
// can forge headers. It complements token secrecy, it does not replace it.
func ClientFingerprint(userAgent, acceptLanguage string) string {
	if userAgent == "" {
		userAgent = "unknown"
	}
	if acceptLanguage == "" {
		acceptLanguage = "unknown"
	}
	sum := sha256.Sum256([]byte(userAgent + "-" + acceptLanguage))
	return hex.EncodeToString(sum[:])
}
