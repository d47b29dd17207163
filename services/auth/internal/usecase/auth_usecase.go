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

// AuthConfig holds sign-in policy that is not part of the app config
type AuthConfig struct {
	// RequireVerifiedEmail rejects sign-in until the email is verified
	RequireVerifiedEmail bool
}

// AuthUseCase signs users in and out
type AuthUseCase struct {
	logger         *zap.Logger
	config         AuthConfig
	userRepository repository.UserRepository
	appConfig      interfaces.AppConfigUseCase
	credential     interfaces.CredentialUseCase
	session        interfaces.SessionUseCase
	token          interfaces.TokenUseCase
	otp            interfaces.OTPUseCase
	auditLog       interfaces.AuditLogUseCase
}

// NewAuthUseCase creates the auth use case
func NewAuthUseCase(
	logger *zap.Logger,
	config AuthConfig,
	userRepo repository.UserRepository,
	appConfig interfaces.AppConfigUseCase,
	credential interfaces.CredentialUseCase,
	session interfaces.SessionUseCase,
	token interfaces.TokenUseCase,
	otp interfaces.OTPUseCase,
	auditLog interfaces.AuditLogUseCase,
) interfaces.AuthUseCase {
	return &AuthUseCase{
		logger:         logger,
		config:         config,
		userRepository: userRepo,
		appConfig:      appConfig,
		credential:     credential,
		session:        session,
		token:          token,
		otp:            otp,
		auditLog:       auditLog,
	}
}

// SignIn verifies the credentials and the second factor, then opens a session
func (uc *AuthUseCase) SignIn(ctx context.Context, params dto.SignInParams) (*dto.SignInResult, error) {
	user, err := uc.credential.Verify(ctx, params.Email, params.Password)
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidCredentials) {
			recordAudit(ctx, uc.logger, uc.auditLog, entity.AuditLogTypeLoginFailed, map[string]interface{}{
				"email": entity.NormalizeEmail(params.Email),
				"ip":    params.Device.IP,
			}, nil)
		}
		return nil, err
	}

	if uc.config.RequireVerifiedEmail && !user.IsEmailVerified() {
		return nil, domainErrors.ErrEmailNotVerified
	}

	cfg := uc.appConfig.GetOrDefault(ctx)
	if cfg.GlobalTwoFactorEnabled && user.TwoFactorEnabled {
		if err := uc.otp.Validate(ctx, user, params.Code); err != nil {
			if errors.Is(err, domainErrors.ErrInvalidTwoFactorCode) {
				recordAudit(ctx, uc.logger, uc.auditLog, entity.AuditLogTypeLoginFailed, map[string]interface{}{
					"reason": "invalid_2fa_code",
					"ip":     params.Device.IP,
				}, stringPtr(user.ID))
			}
			return nil, err
		}
	}

	return uc.StartSession(ctx, user, params.Device)
}

// StartSession upserts the device session and signs an identity token for it
func (uc *AuthUseCase) StartSession(ctx context.Context, user *entity.User, device dto.DeviceInfo) (*dto.SignInResult, error) {
	if strings.TrimSpace(device.DeviceID) == "" {
		return nil, domainErrors.NewValidationError("Device id is required", nil)
	}

	cfg := uc.appConfig.GetOrDefault(ctx)
	session, err := uc.session.Upsert(ctx, dto.UpsertSessionParams{
		UserID:            user.ID,
		DeviceID:          device.DeviceID,
		IP:                device.IP,
		UserAgent:         device.UserAgent,
		MaxActiveSessions: cfg.MaxSessions(),
		Duration:          cfg.SessionDuration(),
	})
	if err != nil {
		return nil, err
	}

	token, tokenExpiresAt, err := uc.token.Issue(user, device.DeviceID, session.ExpiresAt)
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, uc.logger, uc.auditLog, entity.AuditLogTypeLoginSuccess, map[string]interface{}{
		"session_id": session.SessionID,
		"device_id":  device.DeviceID,
		"ip":         device.IP,
		"user_agent": device.UserAgent,
		"evicted":    len(session.EvictedIDs),
	}, stringPtr(user.ID))

	return &dto.SignInResult{
		User:             user,
		Token:            token,
		TokenExpiresAt:   tokenExpiresAt,
		SessionExpiresAt: session.ExpiresAt,
	}, nil
}

// SignOut closes the device session
func (uc *AuthUseCase) SignOut(ctx context.Context, userID, deviceID string) error {
	if err := uc.session.Revoke(ctx, userID, deviceID); err != nil {
		return err
	}

	recordAudit(ctx, uc.logger, uc.auditLog, entity.AuditLogTypeLogoutSuccess, map[string]interface{}{
		"device_id": deviceID,
	}, stringPtr(userID))
	return nil
}

// Me loads the signed-in user
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domainErrors.ErrUserNotFound
	}
	return user, nil
}
