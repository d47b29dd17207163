package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/errors"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/mail"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/constants"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
)

const defaultSMTPPort = 587

// EmailUseCase sends mail with the SMTP settings stored in the app config
type EmailUseCase struct {
	logger           *zap.Logger
	appConfig        interfaces.AppConfigUseCase
	mailRepository   repository.MailRepository
	cipher           interfaces.SecretCipher
	appURL           string
	emailSenderEmail string
	tokenTTL         time.Duration
}

// NewEmailUseCase creates the email use case. Links point at appURL, or at
// the configured site url when appURL is empty. tokenTTL is the lifetime
// quoted in verification and reset mails.
func NewEmailUseCase(
	logger *zap.Logger,
	appConfig interfaces.AppConfigUseCase,
	mailRepo repository.MailRepository,
	cipher interfaces.SecretCipher,
	appURL string,
	emailSenderEmail string,
	tokenTTL time.Duration,
) interfaces.EmailUseCase {
	if tokenTTL <= 0 {
		tokenTTL = constants.VerificationTokenExpiry
	}
	return &EmailUseCase{
		logger:           logger,
		appConfig:        appConfig,
		mailRepository:   mailRepo,
		cipher:           cipher,
		appURL:           appURL,
		emailSenderEmail: emailSenderEmail,
		tokenTTL:         tokenTTL,
	}
}

// Send delivers a message built by the caller
func (uc *EmailUseCase) Send(ctx context.Context, req dto.SendEmailRequest) error {
	if strings.TrimSpace(req.To) == "" || strings.TrimSpace(req.Subject) == "" || req.Text == "" || req.HTML == "" {
		return domainErrors.NewValidationError("Missing required fields", nil)
	}

	settings, err := uc.storedSettings(ctx)
	if err != nil {
		return err
	}

	return uc.mailRepository.Send(ctx, settings, repository.MailMessage{
		To:      strings.TrimSpace(req.To),
		Subject: req.Subject,
		Text:    req.Text,
		HTML:    req.HTML,
	})
}

// VerifySMTP dials the given server with the stored password
func (uc *EmailUseCase) VerifySMTP(ctx context.Context, req dto.VerifySMTPRequest) error {
	host := strings.TrimSpace(req.Host)
	user := strings.TrimSpace(req.User)
	if host == "" || user == "" || req.Port < 1 || req.Port > 65535 {
		return domainErrors.NewValidationError("Missing required fields or invalid port", nil)
	}

	cfg, err := uc.appConfig.Get(ctx)
	if err != nil {
		return err
	}
	if cfg.SMTPPasswordEnc == "" {
		return domainErrors.ErrEmailNotConfigured
	}

	password, err := uc.cipher.Decrypt(cfg.SMTPPasswordEnc)
	if err != nil {
		uc.logger.Error("Failed to decrypt SMTP password", zap.Error(err))
		return fmt.Errorf("failed to decrypt smtp password: %w", err)
	}

	return uc.mailRepository.Verify(ctx, repository.SMTPSettings{
		Host:     host,
		Port:     req.Port,
		User:     user,
		Password: password,
		Secure:   req.Secure,
	}, constants.SMTPVerifyTimeout)
}

// SendVerificationEmail mails a verification code with a link to the verify page
func (uc *EmailUseCase) SendVerificationEmail(ctx context.Context, to, code string) error {
	cfg, err := uc.appConfig.Get(ctx)
	if err != nil {
		return err
	}

	link := mail.VerificationURL(uc.baseURL(cfg.SiteURL), code)
	return uc.sendTemplate(ctx, mail.VerificationEmail(to, cfg.SiteDisplayName, code, link, uc.tokenTTL))
}

// SendPasswordResetEmail mails a link to the reset page
func (uc *EmailUseCase) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	cfg, err := uc.appConfig.Get(ctx)
	if err != nil {
		return err
	}

	link := mail.PasswordResetURL(uc.baseURL(cfg.SiteURL), token)
	return uc.sendTemplate(ctx, mail.PasswordResetEmail(to, cfg.SiteDisplayName, link, uc.tokenTTL))
}

func (uc *EmailUseCase) sendTemplate(ctx context.Context, msg repository.MailMessage) error {
	settings, err := uc.storedSettings(ctx)
	if err != nil {
		return err
	}

	if err := uc.mailRepository.Send(ctx, settings, msg); err != nil {
		uc.logger.Error("Failed to send email",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// storedSettings builds SMTP settings from the app config. Port 465 uses
// implicit TLS.
func (uc *EmailUseCase) storedSettings(ctx context.Context) (repository.SMTPSettings, error) {
	cfg, err := uc.appConfig.Get(ctx)
	if err != nil {
		return repository.SMTPSettings{}, err
	}
	if cfg.SMTPHost == "" || cfg.SMTPPasswordEnc == "" {
		uc.logger.Error("Email requested without SMTP configuration")
		return repository.SMTPSettings{}, domainErrors.ErrEmailNotConfigured
	}

	password, err := uc.cipher.Decrypt(cfg.SMTPPasswordEnc)
	if err != nil {
		uc.logger.Error("Failed to decrypt SMTP password", zap.Error(err))
		return repository.SMTPSettings{}, fmt.Errorf("failed to decrypt smtp password: %w", err)
	}

	port := cfg.SMTPPort
	if port == 0 {
		port = defaultSMTPPort
	}

	from := uc.emailSenderEmail
	if from == "" {
		from = cfg.SMTPUser
	}

	return repository.SMTPSettings{
		Host:     cfg.SMTPHost,
		Port:     port,
		User:     cfg.SMTPUser,
		Password: password,
		From:     from,
		Secure:   port == 465,
	}, nil
}

func (uc *EmailUseCase) baseURL(siteURL string) string {
	if uc.appURL != "" {
		return uc.appURL
	}
	return siteURL
}
