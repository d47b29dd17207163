package repository

import (
	"context"
	"time"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
)

// UserRepository persists users. Lookups return nil, nil when nothing matches.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// Create returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, user *entity.User) error
	MarkEmailVerified(ctx context.Context, userID string, at time.Time) error
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	UpdateTwoFactor(ctx context.Context, userID string, secretEnc *string, enabled bool) error
}
