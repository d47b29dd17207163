package interfaces

import (
	"context"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
)

// RegistrationUseCase creates credential accounts and verifies their email.
type RegistrationUseCase interface {
	SignUp(ctx context.Context, params dto.SignUpParams) (*dto.SignUpResult, error)

	// VerifyEmail consumes an email verification code.
	VerifyEmail(ctx context.Context, token string) (*entity.User, error)

	// ResendVerification issues a new code for an unverified account.
	ResendVerification(ctx context.Context, email string) error
}
