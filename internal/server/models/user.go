package models

import "time"

// User is an account record. PasswordHash is a bcrypt hash; the plaintext is
// never stored. Username mirrors the normalized email and is the login handle.
type User struct {
	ID           string
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
	IsVerified   bool
	IsStaff      bool
	IsSuperuser  bool
	IsActive     bool
	CreatedAt    time.Time
}
