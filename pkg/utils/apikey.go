package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const (
	// DefaultApiKeyPrefix is prepended to generated secrets when none is configured.
	DefaultApiKeyPrefix = "AeroAPI-"
	// ApiKeyRandomBytes is the entropy of a generated key.
	ApiKeyRandomBytes = 32
)

var apiKeyRandRead = rand.Read

// GenerateApiKey returns prefix followed by 64 random hex characters.
func GenerateApiKey(prefix string) (string, error) {
	b := make([]byte, ApiKeyRandomBytes)
	if _, err := apiKeyRandRead(b); err != nil {
		return "", err
	}
	return prefix + hex.EncodeToString(b), nil
}

// MaskApiKey keeps the prefix and the last four characters of a key for logging.
func MaskApiKey(key string) string {
	if len(key) <= 12 {
		return strings.Repeat("*", len(key))
	}
	head := key
	if i := strings.Index(key, "-"); i >= 0 && i < len(key)-4 {
		head = key[:i+1]
	} else {
		head = ""
	}
	return head + "****" + key[len(key)-4:]
}
