// Package users is the user directory: lookup and persistence of accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/credvault/internal/server/models"
)

// Repository stores user accounts. Lookups return common.ErrorNotFound when
// no account matches; Create returns common.ErrEmailTaken or
// common.ErrUsernameTaken when a uniqueness constraint fires.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetByIdentifier matches either the username or the email, preferring
	// the username when both would match different accounts.
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	// UpdatePassword replaces the password digest and touches updated_at.
	UpdatePassword(ctx context.Context, userID string, hashedPassword string) error
}
