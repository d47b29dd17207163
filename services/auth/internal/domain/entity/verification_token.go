package entity

import "time"

// TokenKind distinguishes email verification codes from password reset tokens.
type TokenKind string

const (
	TokenKindEmailVerification TokenKind = "EMAIL_VERIFICATION"
	TokenKindPasswordReset     TokenKind = "PASSWORD_RESET"
)

// VerificationToken is a single-use secret bound to a user.
type VerificationToken struct {
	ID        string
	UserID    string
	Token     string
	Kind      TokenKind
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t *VerificationToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
