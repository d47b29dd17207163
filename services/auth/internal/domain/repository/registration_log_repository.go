package repository

import (
	"context"
	"time"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
)

// RegistrationLogRepository is an append-only store of signup origins.
type RegistrationLogRepository interface {
	Create(ctx context.Context, log *entity.RegistrationLog) error
	// ExistsSince reports whether a log matches ip or device after since.
	// Empty values never match.
	ExistsSince(ctx context.Context, ip, deviceID string, since time.Time) (bool, error)
}
