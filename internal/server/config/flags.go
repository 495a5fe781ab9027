package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/credvault/internal/flagx"
)

var serverFlags = []string{
	"-a", "-g", "-d", "-s", "-j", "-t", "-r", "-u", "-n", "-l", "-q", "-cost",
	"-smtp-host", "-smtp-port", "-smtp-user", "-smtp-password", "-smtp-sender",
	"-smtp-tls", "-smtp-suppress",
}

var serverBoolFlags = []string{"-smtp-tls", "-smtp-suppress"}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string          HTTP bind address (e.g., ":8080")
//	-g string          gRPC health bind address (e.g., ":50051")
//	-d string          PostgreSQL DSN, empty for the in-memory store
//	-s string          JWT HMAC secret key
//	-j string          JWT algorithm (HS256, HS384, HS512)
//	-t int             access token validity, minutes
//	-r int             reset token validity, minutes
//	-u string          reset link base URL
//	-n string          project name used in emails
//	-l string          log level
//	-q int             notification queue size
//	-cost int          bcrypt cost
//	-smtp-host string, -smtp-port int, -smtp-user string,
//	-smtp-password string, -smtp-sender string
//	-smtp-tls bool, -smtp-suppress bool   (use the -flag=false form)
//
// Duration flags are accepted as integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags, serverBoolFlags...)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run HTTP server")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "address and port to run gRPC health server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.JWTAlgorithm, "j", config.JWTAlgorithm, "jwt algorithm")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	resetTokenValidityDuration := fs.Int("r", int(config.ResetTokenValidityDuration.Minutes()), "reset_token_validity_duration (in minutes)")

	fs.StringVar(&config.ResetBaseURL, "u", config.ResetBaseURL, "password reset link base URL")
	fs.StringVar(&config.ProjectName, "n", config.ProjectName, "project name")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.IntVar(&config.NotifyQueueSize, "q", config.NotifyQueueSize, "notification queue size")
	fs.IntVar(&config.HashCost, "cost", config.HashCost, "bcrypt cost")

	fs.StringVar(&config.SMTPHost, "smtp-host", config.SMTPHost, "SMTP host")
	fs.IntVar(&config.SMTPPort, "smtp-port", config.SMTPPort, "SMTP port")
	fs.StringVar(&config.SMTPUsername, "smtp-user", config.SMTPUsername, "SMTP username")
	fs.StringVar(&config.SMTPPassword, "smtp-password", config.SMTPPassword, "SMTP password")
	fs.StringVar(&config.SMTPSender, "smtp-sender", config.SMTPSender, "SMTP sender address")
	fs.BoolVar(&config.SMTPUseTLS, "smtp-tls", config.SMTPUseTLS, "use STARTTLS")
	fs.BoolVar(&config.SMTPSuppressSend, "smtp-suppress", config.SMTPSuppressSend, "log emails instead of sending")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Durations from JSON may be finer than a minute; only flags that were
	// actually given replace them.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "r":
			config.ResetTokenValidityDuration = time.Duration(*resetTokenValidityDuration) * time.Minute
		}
	})
}
