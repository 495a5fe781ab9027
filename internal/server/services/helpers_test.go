package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/server/auth"
	"github.com/dmitrijs2005/credvault/internal/server/metrics"
	"github.com/dmitrijs2005/credvault/internal/server/notify"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/repomanager"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notify.PasswordReset
}

func (f *fakeNotifier) NotifyPasswordReset(ctx context.Context, msg notify.PasswordReset) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return true
}

func (f *fakeNotifier) last(t *testing.T) notify.PasswordReset {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no notification was dispatched")
	return f.sent[len(f.sent)-1]
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type testEnv struct {
	store    *repomanager.InMemoryRepositoryManager
	svc      *AuthService
	resets   *ResetTokenManager
	notifier *fakeNotifier
	issuer   *auth.TokenIssuer
	metrics  *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repomanager.NewInMemoryRepositoryManager()
	issuer, err := auth.NewTokenIssuer("test-secret", "HS256", time.Hour)
	require.NoError(t, err)

	resets, err := NewResetTokenManager(store, 30*time.Minute)
	require.NoError(t, err)
	notifier := &fakeNotifier{}
	m := metrics.New(prometheus.NewRegistry())

	svc := NewAuthService(store, store, auth.NewBcryptHasher(bcrypt.MinCost), issuer, resets, notifier, logging.Nop{}, m)

	return &testEnv{store: store, svc: svc, resets: resets, notifier: notifier, issuer: issuer, metrics: m}
}

func janeInput() RegisterInput {
	return RegisterInput{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@x.com",
		Phone:     "5551234567",
		Contact:   "email",
		Username:  "janedoe",
		Password:  "supersecret",
	}
}
