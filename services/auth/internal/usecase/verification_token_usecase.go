package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/errors"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/constants"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
)

// TokenGenerator produces the secret string of a token.
type TokenGenerator func(kind entity.TokenKind) (string, error)

// VerificationTokenConfig tunes token issuance. Zero values use the defaults.
type VerificationTokenConfig struct {
	TTL         time.Duration
	MaxPending  int
	MaxAttempts int
}

// VerificationTokenUseCase issues and consumes email verification codes and
// password reset tokens
type VerificationTokenUseCase struct {
	logger          *zap.Logger
	config          VerificationTokenConfig
	tokenRepository repository.VerificationTokenRepository
	userRepository  repository.UserRepository
	generate        TokenGenerator
	now             func() time.Time
}

// NewVerificationTokenUseCase creates the token use case. A nil generator uses GenerateToken.
func NewVerificationTokenUseCase(
	logger *zap.Logger,
	config VerificationTokenConfig,
	tokenRepo repository.VerificationTokenRepository,
	userRepo repository.UserRepository,
	generate TokenGenerator,
) interfaces.VerificationTokenUseCase {
	if config.TTL <= 0 {
		config.TTL = constants.VerificationTokenExpiry
	}
	if config.MaxPending <= 0 {
		config.MaxPending = constants.MaxPendingVerificationTokens
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = constants.MaxTokenGenerationAttempts
	}
	if generate == nil {
		generate = GenerateToken
	}

	return &VerificationTokenUseCase{
		logger:          logger,
		config:          config,
		tokenRepository: tokenRepo,
		userRepository:  userRepo,
		generate:        generate,
		now:             time.Now,
	}
}

// Issue creates a new token, rejecting the request when the user already has
// MaxPending live tokens of that kind
func (uc *VerificationTokenUseCase) Issue(ctx context.Context, userID string, kind entity.TokenKind) (*entity.VerificationToken, error) {
	now := uc.now()

	if err := uc.tokenRepository.DeleteExpired(ctx, userID, kind, now); err != nil {
		uc.logger.Warn("Failed to purge expired tokens",
			zap.String("userID", userID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}

	live, err := uc.tokenRepository.CountLive(ctx, userID, kind, now)
	if err != nil {
		return nil, err
	}
	if live >= int64(uc.config.MaxPending) {
		uc.logger.Info("Verification token limit reached",
			zap.String("userID", userID),
			zap.String("kind", string(kind)),
			zap.Int64("live", live),
		)
		return nil, domainErrors.ErrVerificationLimitExceeded
	}

	var lastErr error
	for attempt := 1; attempt <= uc.config.MaxAttempts; attempt++ {
		secret, err := uc.generate(kind)
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}

		token := &entity.VerificationToken{
			ID:        uuid.NewString(),
			UserID:    userID,
			Token:     secret,
			Kind:      kind,
			ExpiresAt: now.Add(uc.config.TTL),
			CreatedAt: now,
		}

		err = uc.tokenRepository.Create(ctx, token)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}

		uc.logger.Debug("Token collision, regenerating", zap.Int("attempt", attempt))
		lastErr = err
	}

	return nil, domainErrors.NewTokenGenerationExhaustedError(uc.config.MaxAttempts, lastErr)
}

// ConsumeEmailVerification marks the token owner as verified
func (uc *VerificationTokenUseCase) ConsumeEmailVerification(ctx context.Context, secret string) (*entity.User, error) {
	token, user, err := uc.load(ctx, secret, entity.TokenKindEmailVerification)
	if err != nil {
		return nil, err
	}

	if user.IsEmailVerified() {
		uc.discard(ctx, token)
		return nil, domainErrors.ErrAlreadyVerified
	}

	now := uc.now()
	if err := uc.tokenRepository.ConsumeEmailVerification(ctx, token.ID, user.ID, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domainErrors.ErrInvalidOrExpiredToken
		}
		return nil, err
	}

	user.VerifyEmail(now)
	return user, nil
}

// ConsumePasswordReset stores passwordHash for the token owner
func (uc *VerificationTokenUseCase) ConsumePasswordReset(ctx context.Context, secret, passwordHash string) (string, error) {
	token, user, err := uc.load(ctx, secret, entity.TokenKindPasswordReset)
	if err != nil {
		return "", err
	}

	if err := uc.tokenRepository.ConsumePasswordReset(ctx, token.ID, user.ID, passwordHash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domainErrors.ErrInvalidOrExpiredToken
		}
		return "", err
	}

	return user.ID, nil
}

// load finds a live token of kind and its owner. Expired or orphaned tokens
// are deleted on the way.
func (uc *VerificationTokenUseCase) load(ctx context.Context, secret string, kind entity.TokenKind) (*entity.VerificationToken, *entity.User, error) {
	if secret == "" {
		return nil, nil, domainErrors.ErrInvalidOrExpiredToken
	}

	token, err := uc.tokenRepository.FindByToken(ctx, secret)
	if err != nil {
		return nil, nil, err
	}
	if token == nil || token.Kind != kind {
		return nil, nil, domainErrors.ErrInvalidOrExpiredToken
	}

	if token.IsExpired(uc.now()) {
		uc.discard(ctx, token)
		return nil, nil, domainErrors.ErrInvalidOrExpiredToken
	}

	user, err := uc.userRepository.FindByID(ctx, token.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		uc.discard(ctx, token)
		return nil, nil, domainErrors.ErrInvalidOrExpiredToken
	}

	return token, user, nil
}

func (uc *VerificationTokenUseCase) discard(ctx context.Context, token *entity.VerificationToken) {
	if err := uc.tokenRepository.Delete(ctx, token.ID); err != nil {
		uc.logger.Warn("Failed to delete verification token",
			zap.String("tokenID", token.ID),
			zap.Error(err),
		)
	}
}
