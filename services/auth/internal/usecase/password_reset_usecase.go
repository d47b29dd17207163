package usecase

import (
	"context"
	"strings"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/errors"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
)

// PasswordResetUseCase handles forgotten passwords
type PasswordResetUseCase struct {
	logger            *zap.Logger
	userRepository    repository.UserRepository
	credential        interfaces.CredentialUseCase
	verificationToken interfaces.VerificationTokenUseCase
	email             interfaces.EmailUseCase
	auditLog          interfaces.AuditLogUseCase
	passwordMinLength int
}

// NewPasswordResetUseCase creates the password reset use case
func NewPasswordResetUseCase(
	logger *zap.Logger,
	userRepo repository.UserRepository,
	credential interfaces.CredentialUseCase,
	verificationToken interfaces.VerificationTokenUseCase,
	email interfaces.EmailUseCase,
	auditLog interfaces.AuditLogUseCase,
	passwordMinLength int,
) interfaces.PasswordResetUseCase {
	if passwordMinLength <= 0 {
		passwordMinLength = defaultPasswordMinLength
	}
	return &PasswordResetUseCase{
		logger:            logger,
		userRepository:    userRepo,
		credential:        credential,
		verificationToken: verificationToken,
		email:             email,
		auditLog:          auditLog,
		passwordMinLength: passwordMinLength,
	}
}

// RequestReset mails a reset link. Unknown emails return nil so callers
// cannot enumerate accounts.
func (uc *PasswordResetUseCase) RequestReset(ctx context.Context, email string) error {
	email = entity.NormalizeEmail(email)
	if email == "" {
		return domainErrors.NewValidationError("Email is required", nil)
	}

	user, err := uc.userRepository.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		uc.logger.Info("Password reset requested for unknown email")
		return nil
	}

	token, err := uc.verificationToken.Issue(ctx, user.ID, entity.TokenKindPasswordReset)
	if err != nil {
		return err
	}

	if err := uc.email.SendPasswordResetEmail(ctx, user.Email, token.Token); err != nil {
		return err
	}

	recordAudit(ctx, uc.logger, uc.auditLog, entity.AuditLogTypePasswordResetSent, map[string]interface{}{
		"email": user.Email,
	}, stringPtr(user.ID))
	return nil
}

// ResetPassword stores a new password for the token owner
func (uc *PasswordResetUseCase) ResetPassword(ctx context.Context, token, password string) error {
	token = strings.TrimSpace(token)
	if len(token) < 10 {
		return domainErrors.ErrInvalidOrExpiredToken
	}
	if len(password) < uc.passwordMinLength {
		return domainErrors.NewValidationError("Password is too short", nil)
	}

	hash, err := uc.credential.HashPassword(password)
	if err != nil {
		uc.logger.Error("Failed to hash password", zap.Error(err))
		return err
	}

	userID, err := uc.verificationToken.ConsumePasswordReset(ctx, token, hash)
	if err != nil {
		return err
	}

	recordAudit(ctx, uc.logger, uc.auditLog, entity.AuditLogTypePasswordReset, nil, stringPtr(userID))
	return nil
}
