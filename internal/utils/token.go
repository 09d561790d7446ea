package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenBytes is the amount of randomness in a generated token.
const TokenBytes = 32

// GenerateToken returns TokenBytes random bytes, hex encoded.
func GenerateToken() (string, error) {
	bytes := make([]byte, TokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return hex.EncodeToString(bytes), nil
}
