package usecase

import (
	"context"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/errors"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/constants"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CredentialUseCase verifies email and password pairs
type CredentialUseCase struct {
	logger         *zap.Logger
	userRepository repository.UserRepository
	hashCost       int
	// dummyHash is compared against when the user has no password so every
	// failure costs one bcrypt comparison.
	dummyHash []byte
}

// NewCredentialUseCase creates the credential use case
func NewCredentialUseCase(
	logger *zap.Logger,
	userRepo repository.UserRepository,
	hashCost int,
) interfaces.CredentialUseCase {
	if hashCost < constants.MinPasswordHashCost {
		hashCost = constants.MinPasswordHashCost
	}

	dummyHash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), hashCost)
	if err != nil {
		logger.Warn("Failed to build dummy password hash", zap.Error(err))
	}

	return &CredentialUseCase{
		logger:         logger,
		userRepository: userRepo,
		hashCost:       hashCost,
		dummyHash:      dummyHash,
	}
}

// Verify checks the password of the account registered under email
func (uc *CredentialUseCase) Verify(ctx context.Context, email, password string) (*entity.User, error) {
	email = entity.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domainErrors.ErrInvalidCredentials
	}

	user, err := uc.userRepository.FindByEmail(ctx, email)
	if err != nil {
		uc.logger.Error("Failed to load user for credential check", zap.Error(err))
		return nil, err
	}

	if user == nil || !user.HasPassword() {
		if uc.dummyHash != nil {
			_ = bcrypt.CompareHashAndPassword(uc.dummyHash, []byte(password))
		}
		return nil, domainErrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, domainErrors.ErrInvalidCredentials
	}

	return user, nil
}

// HashPassword hashes a new password
func (uc *CredentialUseCase) HashPassword(password string) (string, error) {
	return HashPassword(password, uc.hashCost)
}
