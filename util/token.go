package util

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateToken returns n bytes of cryptographically secure randomness as a
// hex string. Session tokens are built on this; 32 bytes gives 256 bits of
// entropy which is far beyond guessable.
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
