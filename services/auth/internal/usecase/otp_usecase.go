package usecase

import (
	"context"
	"strings"

	"github.com/pquerna/otp/totp"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/errors"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
)

// OTPUseCase manages TOTP secrets. Secrets are stored encrypted on the user.
type OTPUseCase struct {
	logger         *zap.Logger
	userRepository repository.UserRepository
	cipher         interfaces.SecretCipher
	auditLog       interfaces.AuditLogUseCase
	issuer         string
}

// NewOTPUseCase creates the OTP use case
func NewOTPUseCase(
	logger *zap.Logger,
	userRepo repository.UserRepository,
	cipher interfaces.SecretCipher,
	auditLog interfaces.AuditLogUseCase,
	issuer string,
) interfaces.OTPUseCase {
	return &OTPUseCase{
		logger:         logger,
		userRepository: userRepo,
		cipher:         cipher,
		auditLog:       auditLog,
		issuer:         issuer,
	}
}

// Setup generates a new secret. Two-factor stays disabled until Enable.
func (uc *OTPUseCase) Setup(ctx context.Context, userID string) (*dto.TwoFactorSetup, error) {
	user, err := uc.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      uc.issuer,
		AccountName: user.Email,
	})
	if err != nil {
		uc.logger.Error("Failed to generate TOTP secret", zap.String("userID", userID), zap.Error(err))
		return nil, err
	}

	encrypted, err := uc.cipher.Encrypt(key.Secret())
	if err != nil {
		return nil, err
	}

	if err := uc.userRepository.UpdateTwoFactor(ctx, user.ID, &encrypted, false); err != nil {
		return nil, err
	}

	return &dto.TwoFactorSetup{Secret: key.Secret(), URL: key.URL()}, nil
}

// Enable turns two-factor on once code matches the pending secret
func (uc *OTPUseCase) Enable(ctx context.Context, userID, code string) error {
	user, err := uc.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.TwoFactorSecret == nil {
		return domainErrors.NewValidationError("Two-factor setup has not been started", nil)
	}

	if err := uc.check(user, code); err != nil {
		return err
	}

	if err := uc.userRepository.UpdateTwoFactor(ctx, user.ID, user.TwoFactorSecret, true); err != nil {
		return err
	}

	recordAudit(ctx, uc.logger, uc.auditLog, entity.AuditLogType2FAEnabled, nil, stringPtr(user.ID))
	return nil
}

// Validate checks code for an enrolled user
func (uc *OTPUseCase) Validate(ctx context.Context, user *entity.User, code string) error {
	if strings.TrimSpace(code) == "" {
		return domainErrors.ErrTwoFactorRequired
	}
	if err := uc.check(user, code); err != nil {
		return err
	}

	recordAudit(ctx, uc.logger, uc.auditLog, entity.AuditLogType2FAVerified, nil, stringPtr(user.ID))
	return nil
}

func (uc *OTPUseCase) check(user *entity.User, code string) error {
	if user.TwoFactorSecret == nil {
		return domainErrors.ErrInvalidTwoFactorCode
	}

	secret, err := uc.cipher.Decrypt(*user.TwoFactorSecret)
	if err != nil {
		uc.logger.Error("Failed to decrypt TOTP secret", zap.String("userID", user.ID), zap.Error(err))
		return err
	}

	if !totp.Validate(strings.TrimSpace(code), secret) {
		return domainErrors.ErrInvalidTwoFactorCode
	}
	return nil
}

func (uc *OTPUseCase) loadUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domainErrors.ErrUserNotFound
	}
	return user, nil
}
