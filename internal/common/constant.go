// Package common contains shared constants and sentinel errors used across
// credvault components.
package common

// BearerScheme is the authorization scheme of access tokens issued on login.
const BearerScheme = "bearer"

// ResetSecretSize is the number of random bytes behind a password reset secret.
const ResetSecretSize = 32

// Response messages that must not vary with account existence.
const (
	MessageResetRequested = "If the account exists, a reset email has been sent."
	MessagePasswordReset  = "Password updated successfully."
)
