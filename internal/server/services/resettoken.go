package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/server/auth"
	"github.com/dmitrijs2005/credvault/internal/server/models"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/repomanager"
)

// ResetTokenManager issues and consumes password reset secrets. Only the
// sha256 of a secret is stored. Its methods take the DBTX handle to work on
// so that callers can compose them into a wider transaction.
type ResetTokenManager struct {
	repos     repomanager.RepositoryManager
	ttl       time.Duration
	now       func() time.Time
	newSecret func() (string, error)
}

// NewResetTokenManager returns a manager issuing secrets valid for ttl.
// A non-positive ttl would make every secret expire on issue and is rejected.
func NewResetTokenManager(repos repomanager.RepositoryManager, ttl time.Duration) (*ResetTokenManager, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("reset token ttl must be positive, got %s", ttl)
	}
	return &ResetTokenManager{
		repos:     repos,
		ttl:       ttl,
		now:       time.Now,
		newSecret: auth.NewResetSecret,
	}, nil
}

// RequestReset invalidates the user's active tokens and stores a new one,
// returning its plaintext secret. Run it inside a transaction so that a
// failed insert does not leave the user without the previous token.
func (m *ResetTokenManager) RequestReset(ctx context.Context, db dbx.DBTX, userID string) (string, error) {
	repo := m.repos.ResetTokens(db)

	if _, err := repo.InvalidateActive(ctx, userID); err != nil {
		return "", fmt.Errorf("error invalidating reset tokens: %w", err)
	}

	secret, err := m.newSecret()
	if err != nil {
		return "", fmt.Errorf("error generating reset secret: %w", err)
	}

	token := &models.PasswordResetToken{
		UserID:    userID,
		TokenHash: auth.HashResetSecret(secret),
		ExpiresAt: m.now().Add(m.ttl).UTC(),
	}
	if _, err := repo.Create(ctx, token); err != nil {
		return "", fmt.Errorf("error storing reset token: %w", err)
	}

	return secret, nil
}

// Consume marks the token behind secret as used and returns its owner.
// Unknown, used and expired secrets all yield common.ErrInvalidOrExpiredToken.
func (m *ResetTokenManager) Consume(ctx context.Context, db dbx.DBTX, secret string) (string, error) {
	return m.repos.ResetTokens(db).Consume(ctx, auth.HashResetSecret(secret), m.now().UTC())
}

// PurgeExpired deletes tokens that expired more than retention ago.
func (m *ResetTokenManager) PurgeExpired(ctx context.Context, db dbx.DBTX, retention time.Duration) (int64, error) {
	n, err := m.repos.ResetTokens(db).DeleteExpired(ctx, m.now().Add(-retention).UTC())
	if err != nil {
		return 0, fmt.Errorf("error purging reset tokens: %w", err)
	}
	return n, nil
}
