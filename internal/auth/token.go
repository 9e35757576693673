package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

const (
	opaqueTokenBytes = 32

	// OpaqueTokenTTL is the fixed lifetime of verification and reset tokens.
	OpaqueTokenTTL = time.Hour
)

// RandomToken returns a cryptographically random opaque token string.
func RandomToken() (string, error) {
	buf := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// TokenExpiry computes the expiry instant for a token issued now.
func TokenExpiry(now time.Time) time.Time {
	return now.Add(OpaqueTokenTTL)
}
