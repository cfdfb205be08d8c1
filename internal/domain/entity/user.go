package entity

import (
	"time"
)

// User is an identity record keyed by email and/or mobile number. At least one
// of the two keys is always set. PasswordHash is a bcrypt hash and is present
// only for email-registered identities.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email,omitempty"`
	Mobile       string    `json:"mobile,omitempty"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name,omitempty"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
