package interfaces

import (
	"context"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
)

// VerificationTokenUseCase issues and consumes single-use tokens.
type VerificationTokenUseCase interface {
	// Issue creates a token of kind for userID.
	Issue(ctx context.Context, userID string, kind entity.TokenKind) (*entity.VerificationToken, error)

	// ConsumeEmailVerification marks the owner verified and returns them.
	ConsumeEmailVerification(ctx context.Context, token string) (*entity.User, error)

	// ConsumePasswordReset replaces the owner's password hash and returns their id.
	ConsumePasswordReset(ctx context.Context, token, passwordHash string) (string, error)
}
