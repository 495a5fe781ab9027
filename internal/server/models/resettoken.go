package models

import "time"

// PasswordResetToken is the persisted form of a reset secret. Only the
// sha256 of the secret is kept in TokenHash.
//
// A token is active while Used is false and ExpiresAt is in the future.
// UsedAt is set when the token was consumed and stays nil when it was
// invalidated by a newer request.
type PasswordResetToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
	UsedAt    *time.Time
}

// Active reports whether the token can still be consumed at now.
func (t *PasswordResetToken) Active(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
