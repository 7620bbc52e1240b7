// Package domain contains entities without logic, just meta-data.
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const (
	MaxUsernameLen = 36
)

var (
	ErrUsernameEmpty     = errors.New("username empty")
	ErrUsernameTooLong   = errors.New("username too long")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrAccessDenied      = errors.New("access denied")
)

type UserID string

type User struct {
	ID           UserID `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	ImageURL     string `json:"imageUrl,omitempty"`
	PasswordHash string `json:"-"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
// The password must already be hashed by the caller.
func NewUser(username, email, passwordHash string) (*User, error) {
	if len(username) == 0 {
		return nil, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	id := UserID(uuid.NewString())
	return &User{ID: id, Username: username, Email: email, PasswordHash: passwordHash}, nil
}

func (u *User) SetUsername(username string) error {
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	u.Username = username
	return nil
}
