// Package cli provides the credvault command-line client.
//
// Without a subcommand it starts an interactive REPL; register, login,
// forgot-password and reset-password are also available as one-shot
// subcommands. Passwords are read from the terminal without echo.
//
// Key features:
//   - Register a new account
//   - Login / Logout, with the access token kept in memory for the session
//   - Request a password reset and complete it with the emailed token
//   - whoami, which shows the account behind the current token
package cli
