// Package notify delivers password reset emails. Messages go through a
// Dispatcher, which hands them to a Sender on a background worker so that
// callers never wait on SMTP.
package notify

import (
	"fmt"
	"net/url"
)

// PasswordReset is a request to email a reset secret to a user.
type PasswordReset struct {
	Recipient string
	Name      string
	Secret    string
}

// Email is a rendered plain-text message.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Composer renders reset emails for a project.
type Composer struct {
	ProjectName  string
	ResetBaseURL string
}

// ResetLink returns the reset base URL with the secret in its token query
// parameter. Existing query parameters are kept.
func (c Composer) ResetLink(secret string) string {
	u, err := url.Parse(c.ResetBaseURL)
	if err != nil {
		return c.ResetBaseURL + "?token=" + url.QueryEscape(secret)
	}
	q := u.Query()
	q.Set("token", secret)
	u.RawQuery = q.Encode()
	return u.String()
}

// PasswordReset renders the reset email for msg.
func (c Composer) PasswordReset(msg PasswordReset) Email {
	name := msg.Name
	if name == "" {
		name = "there"
	}
	body := fmt.Sprintf("Hi %s,\n\n"+
		"We received a request to reset the password to your account.\n"+
		"Use the secure link below to choose a new password. The link expires soon.\n\n"+
		"Reset password: %s\n\n"+
		"If you did not request this change you can safely ignore this email.",
		name, c.ResetLink(msg.Secret))

	return Email{
		To:      msg.Recipient,
		Subject: fmt.Sprintf("Reset your %s password", c.ProjectName),
		Body:    body,
	}
}
