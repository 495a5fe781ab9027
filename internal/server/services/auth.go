// Package services contains server-side business logic: the auth
// orchestrator and the reset token manager.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/server/metrics"
	"github.com/dmitrijs2005/credvault/internal/server/models"
	"github.com/dmitrijs2005/credvault/internal/server/notify"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/repomanager"
)

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// TokenIssuer mints access tokens.
type TokenIssuer interface {
	Issue(subjectID string) (string, error)
}

// ResetNotifier hands reset emails to a delivery mechanism. It must not
// block; the return value reports whether the message was accepted.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, msg notify.PasswordReset) bool
}

// RegisterInput carries a validated registration request.
type RegisterInput struct {
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Contact          string
	ShortDescription *string
	Username         string
	Password         string
}

// TokenResponse is the result of a successful login.
type TokenResponse struct {
	AccessToken string
	TokenType   string
}

const dummyPassword = "credvault-timing-equaliser"

// AuthService coordinates the user directory, hasher, token issuer, reset
// token manager and notifier.
type AuthService struct {
	tx       dbx.Transactor
	repos    repomanager.RepositoryManager
	hasher   Hasher
	issuer   TokenIssuer
	resets   *ResetTokenManager
	notifier ResetNotifier
	log      logging.Logger
	metrics  *metrics.Metrics

	dummyOnce   sync.Once
	dummyDigest string
}

// NewAuthService wires an AuthService. m may be nil.
func NewAuthService(
	tx dbx.Transactor,
	repos repomanager.RepositoryManager,
	hasher Hasher,
	issuer TokenIssuer,
	resets *ResetTokenManager,
	notifier ResetNotifier,
	log logging.Logger,
	m *metrics.Metrics,
) *AuthService {
	return &AuthService{
		tx:       tx,
		repos:    repos,
		hasher:   hasher,
		issuer:   issuer,
		resets:   resets,
		notifier: notifier,
		log:      log.With("module", "auth"),
		metrics:  m,
	}
}

// Register creates a user after checking that neither the email nor the
// username is taken. The returned user has no password digest.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	user, err := s.register(ctx, in)
	s.record(ctx, "register", err)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) register(ctx context.Context, in RegisterInput) (*models.User, error) {
	repo := s.repos.Users(s.tx.Conn())

	if _, err := repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, common.ErrEmailTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	if _, err := repo.GetByUsername(ctx, in.Username); err == nil {
		return nil, common.ErrUsernameTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error checking username: %w", err)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, common.ErrPasswordTooLong) {
			return nil, err
		}
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Email:            in.Email,
		Phone:            in.Phone,
		Contact:          in.Contact,
		ShortDescription: in.ShortDescription,
		Username:         in.Username,
		HashedPassword:   digest,
	})
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) || errors.Is(err, common.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	user.HashedPassword = ""
	return user, nil
}

// Login checks identifier and password and returns a bearer token. Unknown
// identifiers and wrong passwords both yield common.ErrInvalidCredentials,
// and both cost one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*TokenResponse, error) {
	resp, err := s.login(ctx, identifier, password)
	s.record(ctx, "login", err)
	return resp, err
}

func (s *AuthService) login(ctx context.Context, identifier, password string) (*TokenResponse, error) {
	user, err := s.repos.Users(s.tx.Conn()).GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyHash())
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	return &TokenResponse{AccessToken: token, TokenType: common.BearerScheme}, nil
}

// RequestPasswordReset issues a reset secret for the account behind
// identifier and queues the reset email. Unknown identifiers succeed
// without side effects. Delivery problems are never returned.
func (s *AuthService) RequestPasswordReset(ctx context.Context, identifier string) error {
	err := s.requestPasswordReset(ctx, identifier)
	s.record(ctx, "forgot_password", err)
	return err
}

func (s *AuthService) requestPasswordReset(ctx context.Context, identifier string) error {
	user, err := s.repos.Users(s.tx.Conn()).GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Debug(ctx, "password reset requested for unknown identifier")
			return nil
		}
		return fmt.Errorf("error looking up user: %w", err)
	}

	var secret string
	err = s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		secret, err = s.resets.RequestReset(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return err
	}

	s.notifier.NotifyPasswordReset(ctx, notify.PasswordReset{
		Recipient: user.Email,
		Name:      user.FirstName,
		Secret:    secret,
	})
	s.log.Info(ctx, "password reset requested", "user_id", user.ID)
	return nil
}

// ResetPassword consumes secret and sets the new password in one
// transaction: if the update fails the secret stays usable.
func (s *AuthService) ResetPassword(ctx context.Context, secret, newPassword string) error {
	err := s.resetPassword(ctx, secret, newPassword)
	s.record(ctx, "reset_password", err)
	return err
}

func (s *AuthService) resetPassword(ctx context.Context, secret, newPassword string) error {
	var userID string
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		userID, err = s.resets.Consume(ctx, tx, secret)
		if err != nil {
			return err
		}

		digest, err := s.hasher.Hash(newPassword)
		if err != nil {
			if errors.Is(err, common.ErrPasswordTooLong) {
				return err
			}
			return fmt.Errorf("error hashing password: %w", err)
		}

		if err := s.repos.Users(tx).UpdatePassword(ctx, userID, digest); err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "password reset completed", "user_id", userID)
	return nil
}

// Profile returns the user with id, without the password digest.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repos.Users(s.tx.Conn()).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	user.HashedPassword = ""
	return user, nil
}

// PurgeExpiredResetTokens deletes reset tokens that expired more than
// retention ago.
func (s *AuthService) PurgeExpiredResetTokens(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := s.resets.PurgeExpired(ctx, s.tx.Conn(), retention)
	if err != nil {
		return 0, err
	}
	s.metrics.TokensPurged(n)
	return n, nil
}

func (s *AuthService) dummyHash() string {
	s.dummyOnce.Do(func() {
		d, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.log.Error(context.Background(), "dummy hash failed", "error", err)
			return
		}
		s.dummyDigest = d
	})
	return s.dummyDigest
}

func (s *AuthService) record(ctx context.Context, operation string, err error) {
	switch {
	case err == nil:
		s.metrics.AuthOperation(operation, metrics.OutcomeOK)
	case isDomainError(err):
		s.metrics.AuthOperation(operation, metrics.OutcomeRejected)
	default:
		s.metrics.AuthOperation(operation, metrics.OutcomeError)
		s.log.Error(ctx, "auth operation failed", "operation", operation, "error", err)
	}
}

// isDomainError reports whether err is a client-facing failure.
func isDomainError(err error) bool {
	return errors.Is(err, common.ErrEmailTaken) ||
		errors.Is(err, common.ErrUsernameTaken) ||
		errors.Is(err, common.ErrInvalidCredentials) ||
		errors.Is(err, common.ErrInvalidOrExpiredToken) ||
		errors.Is(err, common.ErrPasswordTooLong) ||
		errors.Is(err, common.ErrorNotFound)
}
