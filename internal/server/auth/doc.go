// Package auth holds the credential primitives of the server: password
// hashing, access token issuing and parsing, and reset secret generation.
package auth
