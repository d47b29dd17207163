package interfaces

import (
	"context"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
)

// AppConfigUseCase resolves and updates the application-wide configuration.
type AppConfigUseCase interface {
	// Get returns the resolved config. The result must not be modified.
	Get(ctx context.Context) (*entity.AppConfig, error)

	// GetOrDefault is Get falling back to defaults on error.
	GetOrDefault(ctx context.Context) *entity.AppConfig

	// Update applies patch and invalidates every cached copy.
	Update(ctx context.Context, patch entity.AppConfigPatch, actorID string) (*entity.AppConfig, error)

	UpdateGeneral(ctx context.Context, req dto.GeneralSettingsRequest, actorID string) (*entity.AppConfig, error)
	UpdateSEO(ctx context.Context, req dto.SEOSettingsRequest, actorID string) (*entity.AppConfig, error)
	UpdateUserPolicy(ctx context.Context, req dto.UserSettingsRequest, actorID string) (*entity.AppConfig, error)
	// UpdateSMTP encrypts a non-empty password before storing it.
	UpdateSMTP(ctx context.Context, req dto.SMTPSettingsRequest, actorID string) (*entity.AppConfig, error)

	// Invalidate drops the in-process copy.
	Invalidate()

	// Listen drops the in-process copy whenever another process updates the
	// config. It returns when ctx is done.
	Listen(ctx context.Context) error
}
