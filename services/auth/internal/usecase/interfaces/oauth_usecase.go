package interfaces

import (
	"context"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
)

// OAuthUseCase links identity provider profiles to accounts.
type OAuthUseCase interface {
	// ProvisionIfAbsent returns the account for profile.Email, creating a
	// verified one when none exists. created reports which happened.
	ProvisionIfAbsent(ctx context.Context, profile dto.OAuthProfile, device dto.DeviceInfo) (user *entity.User, created bool, err error)

	// SignIn provisions the account then opens a session for it.
	SignIn(ctx context.Context, profile dto.OAuthProfile, device dto.DeviceInfo) (*dto.SignInResult, error)
}
