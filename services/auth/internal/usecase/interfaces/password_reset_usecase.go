package interfaces

import "context"

// PasswordResetUseCase handles forgotten passwords.
type PasswordResetUseCase interface {
	// RequestReset mails a reset link. Unknown emails succeed silently.
	RequestReset(ctx context.Context, email string) error

	// ResetPassword consumes the token and stores the new password.
	ResetPassword(ctx context.Context, token, password string) error
}
