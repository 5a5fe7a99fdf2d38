package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSessionID returns 32 random hex characters, used for OAuth state values.
func GenerateSessionID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
