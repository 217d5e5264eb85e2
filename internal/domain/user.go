// Package domain contains entities without logic, just meta-data.
package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MaxUsernameLen = 36
	MaxEmailLen    = 254
	MaxBioLen      = 500
)

type UserID string

type User struct {
	ID           UserID    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Verified     bool      `json:"verified"`
	Bio          string    `json:"bio,omitempty"`
	AvatarID     string    `json:"avatarId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(username, email, passwordHash string) (*User, error) {
	if len(username) == 0 {
		return nil, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	if len(email) == 0 || len(email) > MaxEmailLen {
		return nil, ErrInvalidEmail
	}
	return &User{
		ID:           UserID(uuid.NewString()),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}, nil
}

// PublicProfile strips credentials for directory responses.
type PublicProfile struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
	Bio      string `json:"bio,omitempty"`
	AvatarID string `json:"avatarId,omitempty"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, Username: u.Username, Bio: u.Bio, AvatarID: u.AvatarID}
}
