package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/server/auth"
	"github.com/dmitrijs2005/credvault/internal/server/metrics"
	"github.com/dmitrijs2005/credvault/internal/server/notify"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/credvault/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type captureNotifier struct {
	mu      sync.Mutex
	secrets []string
}

func (n *captureNotifier) NotifyPasswordReset(ctx context.Context, msg notify.PasswordReset) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.secrets = append(n.secrets, msg.Secret)
	return true
}

func (n *captureNotifier) lastSecret(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.secrets)
	return n.secrets[len(n.secrets)-1]
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.secrets)
}

type testAPI struct {
	server   *Server
	notifier *captureNotifier
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := repomanager.NewInMemoryRepositoryManager()
	issuer, err := auth.NewTokenIssuer("test-secret", "HS256", time.Hour)
	require.NoError(t, err)

	resets, err := services.NewResetTokenManager(store, 30*time.Minute)
	require.NoError(t, err)

	notifier := &captureNotifier{}
	m := metrics.New(prometheus.NewRegistry())
	svc := services.NewAuthService(store, store, auth.NewBcryptHasher(bcrypt.MinCost), issuer,
		resets, notifier, logging.Nop{}, m)

	return &testAPI{server: NewServer("127.0.0.1:0", svc, issuer, m, logging.Nop{}), notifier: notifier}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, a.server, method, path, body, header...)
}

func serve(t *testing.T, s *Server, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(strings.NewReader(rec.Body.String())).Decode(&out))
	return out
}

func janeRegistration() map[string]any {
	return map[string]any{
		"first_name":       "Jane",
		"last_name":        "Doe",
		"email":            "jane@x.com",
		"phone":            "5551234567",
		"contact":          "email",
		"username":         "janedoe",
		"password":         "supersecret",
		"confirm_password": "supersecret",
	}
}
