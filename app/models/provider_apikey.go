package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

const providerAPIKeyPrefix = "provider_"

// GenerateProviderAPIKey creates a new provider API key.
// Format: provider_<32 base64url chars>.
func GenerateProviderAPIKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return providerAPIKeyPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// IsValidProviderAPIKeyFormat checks the shape of a presented key before any
// database lookup happens.
func IsValidProviderAPIKeyFormat(apiKey string) bool {
	return strings.HasPrefix(apiKey, providerAPIKeyPrefix) && len(apiKey) >= 30
}

// HashProviderAPIKey returns the hex sha256 of a key for logging and
// comparison without exposing the key itself.
func HashProviderAPIKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}
