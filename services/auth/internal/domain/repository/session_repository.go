package repository

import (
	"context"
	"time"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
)

// SessionStore is a session view bound to a single user lock.
type SessionStore interface {
	FindByDevice(ctx context.Context, userID, deviceID string) (*entity.UserSession, error)
	// ListActive returns live sessions in eviction order.
	ListActive(ctx context.Context, userID string, now time.Time) ([]*entity.UserSession, error)
	DeleteExpired(ctx context.Context, userID string, now time.Time) error
	Create(ctx context.Context, session *entity.UserSession) error
	Update(ctx context.Context, session *entity.UserSession) error
	Delete(ctx context.Context, id string) error
}

// SessionRepository persists sessions.
type SessionRepository interface {
	SessionStore
	// WithinUserLock runs fn in one transaction holding an exclusive lock on
	// userID. Concurrent calls for the same user are serialized.
	WithinUserLock(ctx context.Context, userID string, fn func(store SessionStore) error) error
	DeleteByDevice(ctx context.Context, userID, deviceID string) error
}
