package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dmitrijs2005/credvault/internal/common"
)

// NewResetSecret returns a fresh URL-safe reset secret carrying
// common.ResetSecretSize random bytes.
func NewResetSecret() (string, error) {
	return common.MakeRandURLSafeString(common.ResetSecretSize)
}

// HashResetSecret returns the hex sha256 of secret, the only form of a reset
// secret that is persisted.
func HashResetSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
