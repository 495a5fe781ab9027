// Package resettokens declares the repository contract for password reset
// tokens and its PostgreSQL implementation.
package resettokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/credvault/internal/server/models"
)

// Repository stores hashed reset secrets. Callers never pass plaintext.
type Repository interface {
	// Create stores a new unused token.
	Create(ctx context.Context, token *models.PasswordResetToken) (*models.PasswordResetToken, error)

	// InvalidateActive marks every unused token of userID as used without
	// setting used_at, and reports how many were affected.
	InvalidateActive(ctx context.Context, userID string) (int64, error)

	// Consume atomically marks the unused, unexpired token with tokenHash as
	// used at now and returns its owner. When no such token exists it returns
	// common.ErrInvalidOrExpiredToken. Of several concurrent callers with the
	// same hash at most one succeeds.
	Consume(ctx context.Context, tokenHash string, now time.Time) (string, error)

	// DeleteExpired physically removes tokens that expired before cutoff.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)

	// ListByUser returns every token of userID, newest first. The reset flow
	// never reads it; it exists for inspecting a user's token history in
	// diagnostics and tests.
	ListByUser(ctx context.Context, userID string) ([]*models.PasswordResetToken, error)
}
