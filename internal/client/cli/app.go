package cli

import (
	"bufio"
	"context"
	"io"

	"github.com/dmitrijs2005/credvault/internal/client/client"
	"github.com/dmitrijs2005/credvault/internal/client/config"
)

// AuthAPI is the server surface the CLI needs. *client.APIClient satisfies it.
type AuthAPI interface {
	Register(ctx context.Context, req client.RegisterRequest) (*client.User, error)
	Login(ctx context.Context, identifier, password string) (*client.Token, error)
	ForgotPassword(ctx context.Context, identifier string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword, confirm string) (string, error)
	Me(ctx context.Context, accessToken string) (*client.User, error)
}

type App struct {
	config      *config.Config
	api         AuthAPI
	reader      *bufio.Reader
	out         io.Writer
	accessToken string
	userName    string
}

func NewApp(c *config.Config, in io.Reader, out io.Writer) (*App, error) {
	apiClient, err := client.NewAPIClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return &App{config: c, api: apiClient, reader: bufio.NewReader(in), out: out}, nil
}

func (a *App) isLoggedIn() bool {
	return a.accessToken != ""
}
