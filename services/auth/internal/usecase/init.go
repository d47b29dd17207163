package usecase

import (
	"github.com/wekeepgrowing/semo-starter/pkg/messaging"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/config"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
)

// UseCases holds every use case of the service
type UseCases struct {
	AuditLog          interfaces.AuditLogUseCase
	AppConfig         interfaces.AppConfigUseCase
	Credential        interfaces.CredentialUseCase
	DeviceThrottle    interfaces.DeviceThrottleUseCase
	VerificationToken interfaces.VerificationTokenUseCase
	Session           interfaces.SessionUseCase
	Token             interfaces.TokenUseCase
	OTP               interfaces.OTPUseCase
	Email             interfaces.EmailUseCase
	Auth              interfaces.AuthUseCase
	Registration      interfaces.RegistrationUseCase
	PasswordReset     interfaces.PasswordResetUseCase
	OAuth             interfaces.OAuthUseCase
}

// SetupUseCases builds the use cases and injects their dependencies
func SetupUseCases(
	logger *zap.Logger,
	cfg *config.Config,
	repositories *repository.Repositories,
	messagingClient messaging.RedisClient,
	cipher interfaces.SecretCipher,
) *UseCases {
	// 1. Leaf use cases
	auditLogUC := NewAuditLogUseCase(logger, repositories.AuditLog)

	appConfigUC := NewAppConfigUseCase(
		logger,
		AppConfigCacheConfig{
			TTL:     cfg.Cache.ConfigTTL,
			MemoTTL: cfg.Cache.ConfigMemoTTL,
		},
		repositories.AppConfig,
		repositories.TagCache,
		messagingClient,
		cipher,
		auditLogUC,
	)

	credentialUC := NewCredentialUseCase(logger, repositories.User, cfg.Auth.HashCost)

	deviceThrottleUC := NewDeviceThrottleUseCase(
		logger,
		repositories.RegistrationLog,
		cfg.Auth.RegistrationWindow,
	)

	verificationTokenUC := NewVerificationTokenUseCase(
		logger,
		VerificationTokenConfig{
			TTL:        cfg.Auth.TokenTTL,
			MaxPending: cfg.Auth.MaxPendingTokens,
		},
		repositories.VerificationToken,
		repositories.User,
		nil,
	)

	sessionUC := NewSessionUseCase(logger, repositories.Session, repositories.Lease, auditLogUC)

	tokenUC := NewTokenUseCase(logger, TokenConfig{
		ServiceName:       cfg.Service.Name,
		Secret:            cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.AccessTokenExpiry,
	})

	otpUC := NewOTPUseCase(logger, repositories.User, cipher, auditLogUC, cfg.Service.Name)

	emailUC := NewEmailUseCase(
		logger,
		appConfigUC,
		repositories.Mail,
		cipher,
		cfg.Service.BaseURL,
		cfg.Email.SenderEmail,
		cfg.Auth.TokenTTL,
	)

	// 2. Flows built on the use cases above
	authUC := NewAuthUseCase(
		logger,
		AuthConfig{RequireVerifiedEmail: cfg.Auth.RequireVerifiedEmailForSignin},
		repositories.User,
		appConfigUC,
		credentialUC,
		sessionUC,
		tokenUC,
		otpUC,
		auditLogUC,
	)

	registrationUC := NewRegistrationUseCase(
		logger,
		appConfigUC,
		repositories.User,
		credentialUC,
		deviceThrottleUC,
		verificationTokenUC,
		emailUC,
		auditLogUC,
		cfg.Auth.PasswordMinLength,
	)

	passwordResetUC := NewPasswordResetUseCase(
		logger,
		repositories.User,
		credentialUC,
		verificationTokenUC,
		emailUC,
		auditLogUC,
		cfg.Auth.PasswordMinLength,
	)

	oauthUC := NewOAuthUseCase(
		logger,
		repositories.User,
		appConfigUC,
		deviceThrottleUC,
		authUC,
		auditLogUC,
	)

	return &UseCases{
		AuditLog:          auditLogUC,
		AppConfig:         appConfigUC,
		Credential:        credentialUC,
		DeviceThrottle:    deviceThrottleUC,
		VerificationToken: verificationTokenUC,
		Session:           sessionUC,
		Token:             tokenUC,
		OTP:               otpUC,
		Email:             emailUC,
		Auth:              authUC,
		Registration:      registrationUC,
		PasswordReset:     passwordResetUC,
		OAuth:             oauthUC,
	}
}
