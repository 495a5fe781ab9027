// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered account. HashedPassword is the bcrypt digest and
// never leaves the server.
type User struct {
	ID               string
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Contact          string
	ShortDescription *string
	Username         string
	HashedPassword   string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DisplayName is the greeting used in emails: the first name when present,
// otherwise "there".
func (u *User) DisplayName() string {
	if u == nil || u.FirstName == "" {
		return "there"
	}
	return u.FirstName
}
