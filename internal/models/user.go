package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User captures the stored account record for an authenticated identity.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CurrentToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MatchPassword reports whether candidate hashes to the stored password hash.
func (u User) MatchPassword(candidate string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(candidate)) == nil
}
