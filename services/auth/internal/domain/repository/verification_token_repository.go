package repository

import (
	"context"
	"time"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
)

// VerificationTokenRepository persists single-use tokens.
type VerificationTokenRepository interface {
	// Create returns ErrDuplicate when the token string already exists.
	Create(ctx context.Context, token *entity.VerificationToken) error
	FindByToken(ctx context.Context, token string) (*entity.VerificationToken, error)
	CountLive(ctx context.Context, userID string, kind entity.TokenKind, now time.Time) (int64, error)
	DeleteExpired(ctx context.Context, userID string, kind entity.TokenKind, now time.Time) error
	Delete(ctx context.Context, id string) error
	// ConsumeEmailVerification marks the user verified and deletes the token
	// atomically. ErrNotFound means the token was already consumed.
	ConsumeEmailVerification(ctx context.Context, tokenID, userID string, at time.Time) error
	// ConsumePasswordReset rotates the password hash and deletes the token atomically.
	ConsumePasswordReset(ctx context.Context, tokenID, userID, passwordHash string) error
}
