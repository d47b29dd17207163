package interfaces

import (
	"context"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
)

// EmailUseCase sends mail through the SMTP server stored in the app config.
type EmailUseCase interface {
	// Send delivers an arbitrary message.
	Send(ctx context.Context, req dto.SendEmailRequest) error

	// VerifySMTP checks that the server accepts the stored password.
	VerifySMTP(ctx context.Context, req dto.VerifySMTPRequest) error

	// SendVerificationEmail mails a verification code and link.
	SendVerificationEmail(ctx context.Context, to, code string) error

	// SendPasswordResetEmail mails a password reset link.
	SendPasswordResetEmail(ctx context.Context, to, token string) error
}
