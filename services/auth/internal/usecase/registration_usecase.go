package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/errors"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
)

const defaultPasswordMinLength = 8

// RegistrationUseCase creates credential accounts
type RegistrationUseCase struct {
	logger            *zap.Logger
	appConfig         interfaces.AppConfigUseCase
	userRepository    repository.UserRepository
	credential        interfaces.CredentialUseCase
	deviceThrottle    interfaces.DeviceThrottleUseCase
	verificationToken interfaces.VerificationTokenUseCase
	email             interfaces.EmailUseCase
	auditLog          interfaces.AuditLogUseCase
	passwordMinLength int
}

// NewRegistrationUseCase creates the registration use case
func NewRegistrationUseCase(
	logger *zap.Logger,
	appConfig interfaces.AppConfigUseCase,
	userRepo repository.UserRepository,
	credential interfaces.CredentialUseCase,
	deviceThrottle interfaces.DeviceThrottleUseCase,
	verificationToken interfaces.VerificationTokenUseCase,
	email interfaces.EmailUseCase,
	auditLog interfaces.AuditLogUseCase,
	passwordMinLength int,
) interfaces.RegistrationUseCase {
	if passwordMinLength <= 0 {
		passwordMinLength = defaultPasswordMinLength
	}
	return &RegistrationUseCase{
		logger:            logger,
		appConfig:         appConfig,
		userRepository:    userRepo,
		credential:        credential,
		deviceThrottle:    deviceThrottle,
		verificationToken: verificationToken,
		email:             email,
		auditLog:          auditLog,
		passwordMinLength: passwordMinLength,
	}
}

// SignUp registers a credential account and mails a verification code when
// the config requires one
func (uc *RegistrationUseCase) SignUp(ctx context.Context, params dto.SignUpParams) (*dto.SignUpResult, error) {
	cfg, err := uc.appConfig.Get(ctx)
	if err != nil {
		return nil, err
	}

	if !cfg.SignUpEnabled {
		return nil, domainErrors.ErrRegistrationDisabled
	}

	if cfg.SingleUserPerIPOrDevice {
		if err := uc.deviceThrottle.Check(ctx, params.Device.IP, params.Device.DeviceID); err != nil {
			if errors.Is(err, domainErrors.ErrDuplicateDeviceOrIP) {
				recordAudit(ctx, uc.logger, uc.auditLog, entity.AuditLogTypeBlockedRegistration, map[string]interface{}{
					"ip":        params.Device.IP,
					"device_id": params.Device.DeviceID,
				}, nil)
			}
			return nil, err
		}
	}

	email := entity.NormalizeEmail(params.Email)
	name := strings.TrimSpace(params.Name)
	if name == "" || email == "" {
		return nil, domainErrors.NewValidationError("Name and email are required", nil)
	}
	if len(params.Password) < uc.passwordMinLength {
		return nil, domainErrors.NewValidationError("Password is too short", nil)
	}

	existing, err := uc.userRepository.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domainErrors.ErrEmailInUse
	}

	hash, err := uc.credential.HashPassword(params.Password)
	if err != nil {
		uc.logger.Error("Failed to hash password", zap.Error(err))
		return nil, err
	}

	id, err := GenerateUserID()
	if err != nil {
		return nil, err
	}

	user, err := entity.NewUser(id, name, email, &hash, params.Image)
	if err != nil {
		return nil, domainErrors.NewValidationError(err.Error(), err)
	}

	if err := uc.userRepository.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domainErrors.ErrEmailInUse
		}
		uc.logger.Error("Failed to create user", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	if err := uc.deviceThrottle.Record(ctx, user.ID, params.Device.IP, params.Device.DeviceID); err != nil {
		uc.logger.Warn("Registration log not written", zap.String("userID", user.ID), zap.Error(err))
	}

	recordAudit(ctx, uc.logger, uc.auditLog, entity.AuditLogTypeUserRegistered, map[string]interface{}{
		"email":      user.Email,
		"ip":         params.Device.IP,
		"device_id":  params.Device.DeviceID,
		"user_agent": params.Device.UserAgent,
	}, stringPtr(user.ID))

	result := &dto.SignUpResult{User: user, VerificationRequired: cfg.EmailVerificationRequired}
	if cfg.EmailVerificationRequired {
		if err := uc.sendVerification(ctx, user); err != nil {
			uc.logger.Warn("Verification email not sent after signup",
				zap.String("userID", user.ID),
				zap.Error(err),
			)
		} else {
			result.VerificationSent = true
		}
	}

	return result, nil
}

// VerifyEmail consumes an email verification code
func (uc *RegistrationUseCase) VerifyEmail(ctx context.Context, token string) (*entity.User, error) {
	user, err := uc.verificationToken.ConsumeEmailVerification(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, uc.logger, uc.auditLog, entity.AuditLogTypeEmailVerified, map[string]interface{}{
		"email": user.Email,
	}, stringPtr(user.ID))

	return user, nil
}

// ResendVerification mails a new code to an unverified account
func (uc *RegistrationUseCase) ResendVerification(ctx context.Context, email string) error {
	email = entity.NormalizeEmail(email)
	if email == "" {
		return domainErrors.NewValidationError("Email is required", nil)
	}

	user, err := uc.userRepository.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return domainErrors.ErrUserNotFound
	}
	if user.IsEmailVerified() {
		return domainErrors.ErrAlreadyVerified
	}

	return uc.sendVerification(ctx, user)
}

func (uc *RegistrationUseCase) sendVerification(ctx context.Context, user *entity.User) error {
	token, err := uc.verificationToken.Issue(ctx, user.ID, entity.TokenKindEmailVerification)
	if err != nil {
		return err
	}
	return uc.email.SendVerificationEmail(ctx, user.Email, token.Token)
}
