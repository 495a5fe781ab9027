package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/server/models"
	"github.com/dmitrijs2005/credvault/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJaneDoe_EndToEnd(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/auth/register", janeRegistration())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")
	user := decode[UserResponse](t, rec)
	assert.Equal(t, "janedoe", user.Username)
	assert.Equal(t, "jane@x.com", user.Email)
	assert.NotEmpty(t, user.ID)

	rec = api.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"identifier": "janedoe", "password": "supersecret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tok := decode[TokenResponse](t, rec)
	assert.Equal(t, "bearer", tok.TokenType)
	require.NotEmpty(t, tok.AccessToken)

	rec = api.do(t, http.MethodGet, "/api/v1/auth/me", nil, "Authorization", "Bearer "+tok.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, user.ID, decode[UserResponse](t, rec).ID)

	rec = api.do(t, http.MethodPost, "/api/v1/auth/forgot-password", map[string]string{"identifier": "jane@x.com"})
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, common.MessageResetRequested, decode[MessageResponse](t, rec).Message)
	secret := api.notifier.lastSecret(t)

	reset := map[string]string{"token": secret, "new_password": "evenmoresecret", "confirm_password": "evenmoresecret"}
	rec = api.do(t, http.MethodPost, "/api/v1/auth/reset-password", reset)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, common.MessagePasswordReset, decode[MessageResponse](t, rec).Message)

	rec = api.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"identifier": "janedoe", "password": "supersecret"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"identifier": "jane@x.com", "password": "evenmoresecret"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/auth/reset-password", reset)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, common.ErrInvalidOrExpiredToken.Error(), decode[map[string]any](t, rec)["detail"])
}

func TestRegister_Conflicts(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/api/v1/auth/register", janeRegistration()).Code)

	sameEmail := janeRegistration()
	sameEmail["username"] = "someoneelse"
	rec := api.do(t, http.MethodPost, "/api/v1/auth/register", sameEmail)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email is already registered", decode[map[string]any](t, rec)["detail"])

	sameUsername := janeRegistration()
	sameUsername["email"] = "other@x.com"
	rec = api.do(t, http.MethodPost, "/api/v1/auth/register", sameUsername)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "username is already taken", decode[map[string]any](t, rec)["detail"])
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		patch map[string]any
		field string
	}{
		{"short password", map[string]any{"password": "short", "confirm_password": "short"}, "password"},
		{"mismatched confirmation", map[string]any{"confirm_password": "different1"}, "confirm_password"},
		{"bad email", map[string]any{"email": "not-an-email"}, "email"},
		{"short first name", map[string]any{"first_name": "J"}, "first_name"},
		{"short phone", map[string]any{"phone": "123"}, "phone"},
		{"long description", map[string]any{"short_description": strings.Repeat("d", 256)}, "short_description"},
		{"missing username", map[string]any{"username": ""}, "username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)
			body := janeRegistration()
			for k, v := range tt.patch {
				body[k] = v
			}

			rec := api.do(t, http.MethodPost, "/api/v1/auth/register", body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

			resp := decode[struct {
				Detail []FieldError `json:"detail"`
			}](t, rec)
			var fields []string
			for _, f := range resp.Detail {
				fields = append(fields, f.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestRegister_PasswordOverBcryptLimit(t *testing.T) {
	api := newTestAPI(t)
	body := janeRegistration()
	long := strings.Repeat("p", 100)
	body["password"], body["confirm_password"] = long, long

	rec := api.do(t, http.MethodPost, "/api/v1/auth/register", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, common.ErrPasswordTooLong.Error(), decode[map[string]any](t, rec)["detail"])
}

func TestLogin_UnknownAndWrongPasswordLookTheSame(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/api/v1/auth/register", janeRegistration()).Code)

	unknown := api.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"identifier": "nobody", "password": "supersecret"})
	wrong := api.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"identifier": "janedoe", "password": "wrongpassword"})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	assert.Equal(t, "Bearer", unknown.Header().Get("WWW-Authenticate"))
}

func TestForgotPassword_UnknownIdentifierLooksSuccessful(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/auth/forgot-password", map[string]string{"identifier": "nobody@x.com"})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, common.MessageResetRequested, decode[MessageResponse](t, rec).Message)
	assert.Zero(t, api.notifier.count())
}

func TestResetPassword_Validation(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/auth/reset-password",
		map[string]string{"token": "short", "new_password": "evenmoresecret", "confirm_password": "evenmoresecret"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/auth/reset-password",
		map[string]string{"token": "0123456789abcdef", "new_password": "evenmoresecret", "confirm_password": "mismatch123"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/auth/reset-password",
		map[string]string{"token": "0123456789abcdef", "new_password": "evenmoresecret", "confirm_password": "evenmoresecret"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMe_RequiresBearer(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name   string
		header []string
	}{
		{"no header", nil},
		{"wrong scheme", []string{"Authorization", "Basic abc"}},
		{"garbage token", []string{"Authorization", "Bearer not.a.jwt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodGet, "/api/v1/auth/me", nil, tt.header...)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestMalformedBody(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/auth/login", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "malformed request body", decode[map[string]any](t, rec)["detail"])
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])

	rec = api.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type brokenAuth struct{}

var errBroken = errors.New("connection refused")

func (brokenAuth) Register(context.Context, services.RegisterInput) (*models.User, error) {
	return nil, errBroken
}
func (brokenAuth) Login(context.Context, string, string) (*services.TokenResponse, error) {
	return nil, errBroken
}
func (brokenAuth) RequestPasswordReset(context.Context, string) error    { return errBroken }
func (brokenAuth) ResetPassword(context.Context, string, string) error   { return errBroken }
func (brokenAuth) Profile(context.Context, string) (*models.User, error) { return nil, errBroken }

type staticParser struct{}

func (staticParser) Parse(string) (string, error) { return "user-1", nil }

func TestInfrastructureFailure_HidesCause(t *testing.T) {
	s := NewServer("127.0.0.1:0", brokenAuth{}, staticParser{}, nil, logging.Nop{})

	requests := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/api/v1/auth/register", janeRegistration()},
		{http.MethodPost, "/api/v1/auth/login", map[string]string{"identifier": "janedoe", "password": "supersecret"}},
		{http.MethodPost, "/api/v1/auth/forgot-password", map[string]string{"identifier": "janedoe"}},
		{http.MethodPost, "/api/v1/auth/reset-password", map[string]string{"token": "0123456789abcdef", "new_password": "evenmoresecret", "confirm_password": "evenmoresecret"}},
		{http.MethodGet, "/api/v1/auth/me", nil},
	}
	for _, r := range requests {
		t.Run(r.path, func(t *testing.T) {
			rec := serve(t, s, r.method, r.path, r.body, "Authorization", "Bearer anything")
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "internal error", decode[map[string]any](t, rec)["detail"])
			assert.NotContains(t, rec.Body.String(), "connection refused")
		})
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	api := newTestAPI(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- api.server.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_BadAddress(t *testing.T) {
	s := NewServer("127.0.0.1:99999", brokenAuth{}, staticParser{}, nil, logging.Nop{})
	err := s.Run(context.Background())
	require.Error(t, err)
}
