package interfaces

import (
	"context"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
)

// OTPUseCase manages TOTP two-factor authentication.
type OTPUseCase interface {
	// Setup creates a new secret for userID. It is not active until Enable.
	Setup(ctx context.Context, userID string) (*dto.TwoFactorSetup, error)

	// Enable activates two-factor after checking a code against the pending secret.
	Enable(ctx context.Context, userID, code string) error

	// Validate checks code for an enrolled user.
	Validate(ctx context.Context, user *entity.User, code string) error
}
