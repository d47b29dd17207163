package interfaces

import (
	"context"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
)

// CredentialUseCase checks email and password pairs.
type CredentialUseCase interface {
	// Verify returns the user or ErrInvalidCredentials. It never reveals
	// whether the email exists.
	Verify(ctx context.Context, email, password string) (*entity.User, error)

	// HashPassword hashes a new password with the configured cost.
	HashPassword(password string) (string, error)
}
