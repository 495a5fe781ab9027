package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/credvault/internal/client/client"
	"github.com/dmitrijs2005/credvault/internal/common"
)

// getSimpleText, getMultiline and getPassword are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getMultiline = GetMultiline
var getPassword = GetPassword

var errNotLoggedIn = errors.New("not logged in")

// promptPasswordTwice reads a password and its confirmation. Both slices
// are wiped before returning.
func (a *App) promptPasswordTwice(prompt string) (string, string, error) {
	password, err := getPassword(a.reader, prompt, a.out)
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(confirm)

	return string(password), string(confirm), nil
}

// Register prompts for the profile fields and credentials and creates an
// account. Mismatched or too short passwords are rejected by the server.
func (a *App) Register(ctx context.Context) error {
	var req client.RegisterRequest

	fields := []struct {
		prompt string
		dst    *string
	}{
		{"First name", &req.FirstName},
		{"Last name", &req.LastName},
		{"Email", &req.Email},
		{"Phone", &req.Phone},
		{"Preferred contact", &req.Contact},
		{"Username", &req.Username},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	description, err := getMultiline(a.reader, "Short description (optional)", a.out)
	if err != nil {
		return err
	}
	if description != "" {
		req.ShortDescription = &description
	}

	req.Password, req.ConfirmPassword, err = a.promptPasswordTwice("Password")
	if err != nil {
		return err
	}

	user, err := a.api.Register(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s (%s)\n", user.Username, user.ID)
	return nil
}

// Login authenticates with a username or email and keeps the access token
// for the rest of the session.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Username or email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	token, err := a.api.Login(ctx, identifier, string(password))
	if err != nil {
		return err
	}

	a.accessToken = token.AccessToken
	a.userName = identifier
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) ForgotPassword(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Username or email", a.out)
	if err != nil {
		return err
	}

	msg, err := a.api.ForgotPassword(ctx, identifier)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) ResetPassword(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Reset token (from the email link)", a.out)
	if err != nil {
		return err
	}

	password, confirm, err := a.promptPasswordTwice("New password")
	if err != nil {
		return err
	}

	msg, err := a.api.ResetPassword(ctx, token, password, confirm)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, msg)
	return nil
}

// WhoAmI prints the account behind the current access token.
func (a *App) WhoAmI(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	user, err := a.api.Me(ctx, a.accessToken)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			a.accessToken, a.userName = "", ""
		}
		return err
	}

	fmt.Fprintf(a.out, "%s %s <%s> username=%s id=%s\n", user.FirstName, user.LastName, user.Email, user.Username, user.ID)
	return nil
}

// Logout forgets the access token. Tokens are not revoked server-side.
func (a *App) Logout(ctx context.Context) error {
	a.accessToken, a.userName = "", ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
