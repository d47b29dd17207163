package errors

import (
	"errors"
	"fmt"

	apperrors "github.com/wekeepgrowing/semo-starter/pkg/errors"
)

// AuthError is a policy or security failure with a message safe to show users.
type AuthError struct {
	Type    string
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s - %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// Is matches on Type so callers can compare against the sentinel constructors.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Type == e.Type
}

// Code maps the error type onto the shared error codes.
func (e *AuthError) Code() string {
	switch e.Type {
	case ErrTypeInvalidCredentials, ErrTypeTwoFactorRequired, ErrTypeInvalidTwoFactorCode:
		return apperrors.ErrUnauthenticated
	case ErrTypeRegistrationDisabled, ErrTypeDuplicateDeviceOrIP, ErrTypeEmailNotVerified:
		return apperrors.ErrUnauthorized
	case ErrTypeEmailInUse, ErrTypeAlreadyVerified:
		return apperrors.ErrConflict
	case ErrTypeVerificationLimitExceeded:
		return apperrors.ErrTooManyRequests
	case ErrTypeUserNotFound, ErrTypeSessionNotFound:
		return apperrors.ErrNotFound
	case ErrTypeTokenGenerationExhausted, ErrTypeEmailNotConfigured:
		return apperrors.ErrInternal
	default:
		return apperrors.ErrInvalidArgument
	}
}

const (
	ErrTypeInvalidCredentials        = "INVALID_CREDENTIALS"
	ErrTypeRegistrationDisabled      = "REGISTRATION_DISABLED"
	ErrTypeDuplicateDeviceOrIP       = "DUPLICATE_DEVICE_OR_IP"
	ErrTypeEmailInUse                = "EMAIL_IN_USE"
	ErrTypeVerificationLimitExceeded = "VERIFICATION_LIMIT_EXCEEDED"
	ErrTypeAlreadyVerified           = "ALREADY_VERIFIED"
	ErrTypeInvalidOrExpiredToken     = "INVALID_OR_EXPIRED_TOKEN"
	ErrTypeTokenGenerationExhausted  = "TOKEN_GENERATION_EXHAUSTED"
	ErrTypeTwoFactorRequired         = "TWO_FACTOR_REQUIRED"
	ErrTypeInvalidTwoFactorCode      = "INVALID_TWO_FACTOR_CODE"
	ErrTypeEmailNotVerified          = "EMAIL_NOT_VERIFIED"
	ErrTypeUserNotFound              = "USER_NOT_FOUND"
	ErrTypeSessionNotFound           = "SESSION_NOT_FOUND"
	ErrTypeMissingOAuthInfo          = "MISSING_OAUTH_INFO"
	ErrTypeEmailNotConfigured        = "EMAIL_NOT_CONFIGURED"
	ErrTypeValidation                = "VALIDATION_FAILED"
)

var (
	ErrInvalidCredentials = &AuthError{
		Type:    ErrTypeInvalidCredentials,
		Message: "Invalid email or password",
	}
	ErrRegistrationDisabled = &AuthError{
		Type:    ErrTypeRegistrationDisabled,
		Message: "User registration is currently disabled",
	}
	ErrDuplicateDeviceOrIP = &AuthError{
		Type:    ErrTypeDuplicateDeviceOrIP,
		Message: "An account has already been registered from this device or network",
	}
	ErrEmailInUse = &AuthError{
		Type:    ErrTypeEmailInUse,
		Message: "Email is already in use",
	}
	ErrVerificationLimitExceeded = &AuthError{
		Type:    ErrTypeVerificationLimitExceeded,
		Message: "Too many pending requests. Please use one of the emails already sent or try again later",
	}
	ErrAlreadyVerified = &AuthError{
		Type:    ErrTypeAlreadyVerified,
		Message: "Email is already verified",
	}
	ErrInvalidOrExpiredToken = &AuthError{
		Type:    ErrTypeInvalidOrExpiredToken,
		Message: "Invalid or expired token",
	}
	ErrTwoFactorRequired = &AuthError{
		Type:    ErrTypeTwoFactorRequired,
		Message: "Two-factor authentication code required",
	}
	ErrInvalidTwoFactorCode = &AuthError{
		Type:    ErrTypeInvalidTwoFactorCode,
		Message: "Invalid two-factor authentication code",
	}
	ErrEmailNotVerified = &AuthError{
		Type:    ErrTypeEmailNotVerified,
		Message: "Please verify your email before signing in",
	}
	ErrUserNotFound = &AuthError{
		Type:    ErrTypeUserNotFound,
		Message: "Email is not registered",
	}
	ErrSessionNotFound = &AuthError{
		Type:    ErrTypeSessionNotFound,
		Message: "Session not found",
	}
	ErrMissingOAuthInfo = &AuthError{
		Type:    ErrTypeMissingOAuthInfo,
		Message: "The provider did not return a name and email",
	}
	ErrEmailNotConfigured = &AuthError{
		Type:    ErrTypeEmailNotConfigured,
		Message: "Missing email configuration",
	}
)

// NewTokenGenerationExhaustedError reports that no unique token could be produced.
func NewTokenGenerationExhaustedError(attempts int, cause error) *AuthError {
	return &AuthError{
		Type:    ErrTypeTokenGenerationExhausted,
		Message: fmt.Sprintf("could not generate a unique token after %d attempts", attempts),
		Cause:   cause,
	}
}

// NewValidationError wraps a request validation failure.
func NewValidationError(message string, cause error) *AuthError {
	return &AuthError{
		Type:    ErrTypeValidation,
		Message: message,
		Cause:   cause,
	}
}

// AsAuthError unwraps err into an AuthError.
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}
