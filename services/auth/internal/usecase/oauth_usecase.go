package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/errors"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
)

// OAuthUseCase provisions accounts for identity provider sign-ins
type OAuthUseCase struct {
	logger         *zap.Logger
	userRepository repository.UserRepository
	appConfig      interfaces.AppConfigUseCase
	deviceThrottle interfaces.DeviceThrottleUseCase
	auth           interfaces.AuthUseCase
	auditLog       interfaces.AuditLogUseCase
	now            func() time.Time
}

// NewOAuthUseCase creates the OAuth use case
func NewOAuthUseCase(
	logger *zap.Logger,
	userRepo repository.UserRepository,
	appConfig interfaces.AppConfigUseCase,
	deviceThrottle interfaces.DeviceThrottleUseCase,
	auth interfaces.AuthUseCase,
	auditLog interfaces.AuditLogUseCase,
) interfaces.OAuthUseCase {
	return &OAuthUseCase{
		logger:         logger,
		userRepository: userRepo,
		appConfig:      appConfig,
		deviceThrottle: deviceThrottle,
		auth:           auth,
		auditLog:       auditLog,
		now:            time.Now,
	}
}

// ProvisionIfAbsent returns the existing account for the profile email or
// creates a verified one. Signup policy applies to new accounts only.
func (uc *OAuthUseCase) ProvisionIfAbsent(ctx context.Context, profile dto.OAuthProfile, device dto.DeviceInfo) (*entity.User, bool, error) {
	name := strings.TrimSpace(profile.Name)
	email := entity.NormalizeEmail(profile.Email)
	if name == "" || email == "" {
		return nil, false, domainErrors.ErrMissingOAuthInfo
	}

	existing, err := uc.userRepository.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	cfg, err := uc.appConfig.Get(ctx)
	if err != nil {
		return nil, false, err
	}
	if !cfg.SignUpEnabled {
		return nil, false, domainErrors.ErrRegistrationDisabled
	}
	if cfg.SingleUserPerIPOrDevice {
		if err := uc.deviceThrottle.Check(ctx, device.IP, device.DeviceID); err != nil {
			return nil, false, err
		}
	}

	id, err := GenerateUserID()
	if err != nil {
		return nil, false, err
	}

	user, err := entity.NewUser(id, name, email, nil, profile.Image)
	if err != nil {
		return nil, false, domainErrors.ErrMissingOAuthInfo
	}
	user.VerifyEmail(uc.now())

	if err := uc.userRepository.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with a concurrent sign-in for the same email.
			existing, findErr := uc.userRepository.FindByEmail(ctx, email)
			if findErr == nil && existing != nil {
				return existing, false, nil
			}
		}
		uc.logger.Error("Failed to create OAuth user", zap.String("email", email), zap.Error(err))
		return nil, false, err
	}

	if err := uc.deviceThrottle.Record(ctx, user.ID, device.IP, device.DeviceID); err != nil {
		uc.logger.Warn("Registration log not written", zap.String("userID", user.ID), zap.Error(err))
	}

	recordAudit(ctx, uc.logger, uc.auditLog, entity.AuditLogTypeOAuthUserRegistered, map[string]interface{}{
		"provider":  profile.Provider,
		"email":     email,
		"ip":        device.IP,
		"device_id": device.DeviceID,
	}, stringPtr(user.ID))

	return user, true, nil
}

// SignIn provisions the account and opens a session on the device
func (uc *OAuthUseCase) SignIn(ctx context.Context, profile dto.OAuthProfile, device dto.DeviceInfo) (*dto.SignInResult, error) {
	user, _, err := uc.ProvisionIfAbsent(ctx, profile, device)
	if err != nil {
		return nil, err
	}
	return uc.auth.StartSession(ctx, user, device)
}
