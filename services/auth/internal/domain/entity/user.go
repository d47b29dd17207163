package entity

import (
	"errors"
	"strings"
	"time"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is an account holder. PasswordHash is nil for OAuth-only accounts.
type User struct {
	ID               string
	Email            string
	Name             string
	PasswordHash     *string
	Role             Role
	EmailVerifiedAt  *time.Time
	Image            string
	TwoFactorSecret  *string
	TwoFactorEnabled bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser builds a USER-role account.
func NewUser(id, name, email string, passwordHash *string, image string) (*User, error) {
	if id == "" {
		return nil, errors.New("user id is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("name is required")
	}
	email = NormalizeEmail(email)
	if email == "" {
		return nil, errors.New("email is required")
	}

	return &User{
		ID:           id,
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
		Role:         RoleUser,
		Image:        image,
	}, nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsEmailVerified() bool {
	return u.EmailVerifiedAt != nil
}

// HasPassword reports whether the account can sign in with credentials.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) VerifyEmail(at time.Time) {
	u.EmailVerifiedAt = &at
}
