package repository

import (
	"context"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
)

// AppConfigRepository persists the singleton configuration row.
type AppConfigRepository interface {
	// Get returns the stored configuration merged over defaults, or nil, nil
	// when no row exists.
	Get(ctx context.Context) (*entity.AppConfig, error)
	// ApplyPatch writes the non-nil fields, creating the row if needed.
	ApplyPatch(ctx context.Context, patch entity.AppConfigPatch) error
}
