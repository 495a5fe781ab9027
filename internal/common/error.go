// Package common defines shared constants and sentinel errors used across
// the client and server layers of credvault. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Registration conflicts. Returned both by the pre-checks in the auth
	// service and by repositories when the unique constraints fire.
	ErrEmailTaken    = errors.New("email is already registered")
	ErrUsernameTaken = errors.New("username is already taken")

	// Login failure. Unknown identifier and wrong password are reported
	// with this single value.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Reset failure. Unknown, used and expired secrets are reported with
	// this single value.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")

	// Input errors.
	ErrValidation      = errors.New("validation error")
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

	// Bearer token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
