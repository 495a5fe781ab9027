package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/server/models"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/users"
	"github.com/google/uuid"
)

var errNoSQL = errors.New("in-memory store does not execute SQL")

// InMemoryRepositoryManager keeps users and reset tokens in process memory.
// It is both a RepositoryManager and a dbx.Transactor: WithTx serialises
// units of work and restores the previous state when one fails.
type InMemoryRepositoryManager struct {
	mu     sync.Mutex
	users  map[string]*models.User
	tokens map[string]*models.PasswordResetToken
	now    func() time.Time
}

// NewInMemoryRepositoryManager returns an empty store.
func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:  make(map[string]*models.User),
		tokens: make(map[string]*models.PasswordResetToken),
		now:    time.Now,
	}
}

// memHandle stands in for a pool or a transaction. It satisfies dbx.DBTX so
// it can travel through the same code paths as SQL handles, but never runs
// SQL. inTx marks handles whose holder already owns the store lock.
type memHandle struct {
	inTx bool
}

func (memHandle) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errNoSQL
}

func (memHandle) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errNoSQL
}

func (memHandle) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

// Conn returns the non-transactional handle.
func (m *InMemoryRepositoryManager) Conn() dbx.DBTX {
	return memHandle{}
}

// WithTx runs fn while holding the store lock. If fn fails or panics every
// change it made is discarded.
func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn dbx.TxFunc) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	usersSnap, tokensSnap := m.snapshot()

	defer func() {
		if p := recover(); p != nil {
			m.users, m.tokens = usersSnap, tokensSnap
			panic(p)
		}
		if err != nil {
			m.users, m.tokens = usersSnap, tokensSnap
		}
	}()

	err = fn(ctx, memHandle{inTx: true})
	return err
}

func (m *InMemoryRepositoryManager) snapshot() (map[string]*models.User, map[string]*models.PasswordResetToken) {
	u := make(map[string]*models.User, len(m.users))
	for k, v := range m.users {
		c := *v
		u[k] = &c
	}
	t := make(map[string]*models.PasswordResetToken, len(m.tokens))
	for k, v := range m.tokens {
		c := *v
		t[k] = &c
	}
	return u, t
}

// RunMigrations is a no-op; the store has no schema.
func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

// Users returns the user directory view of the store.
func (m *InMemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return &memUsers{m: m, locked: isTx(db)}
}

// ResetTokens returns the reset token view of the store.
func (m *InMemoryRepositoryManager) ResetTokens(db dbx.DBTX) resettokens.Repository {
	return &memTokens{m: m, locked: isTx(db)}
}

func isTx(db dbx.DBTX) bool {
	h, ok := db.(memHandle)
	return ok && h.inTx
}

// run executes f under the store lock unless the caller already holds it.
func (m *InMemoryRepositoryManager) run(locked bool, f func()) {
	if !locked {
		m.mu.Lock()
		defer m.mu.Unlock()
	}
	f()
}

type memUsers struct {
	m      *InMemoryRepositoryManager
	locked bool
}

func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}

func (r *memUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	var err error
	r.m.run(r.locked, func() {
		// email first, matching the order of the service pre-checks
		for _, u := range r.m.users {
			if u.Email == user.Email {
				err = common.ErrEmailTaken
				return
			}
		}
		for _, u := range r.m.users {
			if u.Username == user.Username {
				err = common.ErrUsernameTaken
				return
			}
		}
		if user.ID == "" {
			user.ID = uuid.NewString()
		}
		now := r.m.now().UTC()
		user.CreatedAt, user.UpdatedAt = now, now
		r.m.users[user.ID] = cloneUser(user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *memUsers) find(match func(*models.User) bool) (*models.User, error) {
	var found *models.User
	r.m.run(r.locked, func() {
		for _, u := range r.m.users {
			if match(u) {
				found = cloneUser(u)
				return
			}
		}
	})
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}

func (r *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *memUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *memUsers) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if u, err := r.GetByUsername(ctx, identifier); err == nil {
		return u, nil
	}
	return r.GetByEmail(ctx, identifier)
}

func (r *memUsers) UpdatePassword(ctx context.Context, userID string, hashedPassword string) error {
	var err error
	r.m.run(r.locked, func() {
		u, ok := r.m.users[userID]
		if !ok {
			err = common.ErrorNotFound
			return
		}
		u.HashedPassword = hashedPassword
		u.UpdatedAt = r.m.now().UTC()
	})
	return err
}

type memTokens struct {
	m      *InMemoryRepositoryManager
	locked bool
}

func (r *memTokens) Create(ctx context.Context, token *models.PasswordResetToken) (*models.PasswordResetToken, error) {
	var err error
	r.m.run(r.locked, func() {
		if _, ok := r.m.users[token.UserID]; !ok {
			err = common.ErrorNotFound
			return
		}
		for _, t := range r.m.tokens {
			if t.TokenHash == token.TokenHash {
				err = errors.New("duplicate token hash")
				return
			}
		}
		if token.ID == "" {
			token.ID = uuid.NewString()
		}
		token.Used = false
		token.CreatedAt = r.m.now().UTC()
		c := *token
		r.m.tokens[token.ID] = &c
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (r *memTokens) InvalidateActive(ctx context.Context, userID string) (int64, error) {
	var n int64
	r.m.run(r.locked, func() {
		for _, t := range r.m.tokens {
			if t.UserID == userID && !t.Used {
				t.Used = true
				n++
			}
		}
	})
	return n, nil
}

func (r *memTokens) Consume(ctx context.Context, tokenHash string, now time.Time) (string, error) {
	var userID string
	r.m.run(r.locked, func() {
		for _, t := range r.m.tokens {
			if t.TokenHash == tokenHash && t.Active(now) {
				t.Used = true
				usedAt := now
				t.UsedAt = &usedAt
				userID = t.UserID
				return
			}
		}
	})
	if userID == "" {
		return "", common.ErrInvalidOrExpiredToken
	}
	return userID, nil
}

func (r *memTokens) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	r.m.run(r.locked, func() {
		for id, t := range r.m.tokens {
			if t.ExpiresAt.Before(cutoff) {
				delete(r.m.tokens, id)
				n++
			}
		}
	})
	return n, nil
}

func (r *memTokens) ListByUser(ctx context.Context, userID string) ([]*models.PasswordResetToken, error) {
	var result []*models.PasswordResetToken
	r.m.run(r.locked, func() {
		for _, t := range r.m.tokens {
			if t.UserID == userID {
				c := *t
				result = append(result, &c)
			}
		}
	})
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}
