package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/credvault/internal/logging"
	"gopkg.in/gomail.v2"
)

// Sender delivers a single password reset email.
type Sender interface {
	SendPasswordReset(ctx context.Context, msg PasswordReset) error
}

// SMTPSettings configures SMTPSender.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

// dialAndSender is the part of *gomail.Dialer used here.
type dialAndSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender sends reset emails through an SMTP relay.
type SMTPSender struct {
	dialer   dialAndSender
	from     string
	composer Composer
}

// NewSMTPSender builds a sender. Authentication is used only when both
// username and password are set. With UseTLS the server certificate is
// verified against Host when the connection is upgraded with STARTTLS.
func NewSMTPSender(s SMTPSettings, composer Composer) (*SMTPSender, error) {
	if s.Host == "" {
		return nil, errors.New("smtp host is empty")
	}
	if s.Port <= 0 {
		return nil, fmt.Errorf("invalid smtp port %d", s.Port)
	}
	if s.From == "" {
		return nil, errors.New("smtp sender is empty")
	}

	username, password := s.Username, s.Password
	if username == "" || password == "" {
		username, password = "", ""
	}

	dialer := gomail.NewDialer(s.Host, s.Port, username, password)
	if s.UseTLS {
		dialer.TLSConfig = &tls.Config{ServerName: s.Host, MinVersion: tls.VersionTLS12}
	}

	return &SMTPSender{dialer: dialer, from: s.From, composer: composer}, nil
}

// SendPasswordReset renders and sends msg.
func (s *SMTPSender) SendPasswordReset(ctx context.Context, msg PasswordReset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.Recipient == "" {
		return errors.New("no recipient specified")
	}

	email := s.composer.PasswordReset(msg)

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email.To)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/plain", email.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogSender writes reset emails to the log instead of sending them. It is
// meant for development, where the secret has to be read from the log.
type LogSender struct {
	log      logging.Logger
	composer Composer
}

// NewLogSender returns a sender that only logs.
func NewLogSender(log logging.Logger, composer Composer) *LogSender {
	return &LogSender{log: log.With("module", "notify"), composer: composer}
}

// SendPasswordReset logs the would-be email, link included.
func (s *LogSender) SendPasswordReset(ctx context.Context, msg PasswordReset) error {
	email := s.composer.PasswordReset(msg)
	s.log.Info(ctx, "smtp send suppressed",
		"to", email.To,
		"subject", email.Subject,
		"reset_link", s.composer.ResetLink(msg.Secret))
	return nil
}
