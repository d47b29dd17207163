package interfaces

import (
	"context"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
)

// AuthUseCase signs users in and out.
type AuthUseCase interface {
	// SignIn checks credentials and the second factor, then opens a session.
	SignIn(ctx context.Context, params dto.SignInParams) (*dto.SignInResult, error)

	// StartSession opens a session for an already authenticated user.
	StartSession(ctx context.Context, user *entity.User, device dto.DeviceInfo) (*dto.SignInResult, error)

	// SignOut closes the device session.
	SignOut(ctx context.Context, userID, deviceID string) error

	// Me loads the signed-in user.
	Me(ctx context.Context, userID string) (*entity.User, error)
}
