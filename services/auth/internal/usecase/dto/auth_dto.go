package dto

import (
	"time"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
)

// DeviceInfo identifies where a request came from.
type DeviceInfo struct {
	DeviceID  string
	IP        string
	UserAgent string
}

// SignUpRequest is the body of POST /api/auth/signup.
type SignUpRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Image    string `json:"image" validate:"omitempty,url"`
}

// SignUpParams is a validated signup.
type SignUpParams struct {
	Name     string
	Email    string
	Password string
	Image    string
	Device   DeviceInfo
}

// SignUpResult reports the created user and whether a verification email went out.
type SignUpResult struct {
	User                 *entity.User
	VerificationRequired bool
	VerificationSent     bool
}

// SignInRequest is the body of POST /api/auth/signin.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Code     string `json:"code" validate:"omitempty,len=6,numeric"`
}

// SignInParams is a validated sign-in.
type SignInParams struct {
	Email    string
	Password string
	Code     string
	Device   DeviceInfo
}

// SignInResult carries the identity token to set on the client.
type SignInResult struct {
	User             *entity.User
	Token            string
	TokenExpiresAt   time.Time
	SessionExpiresAt time.Time
}

// TokenRequest carries a verification code.
type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// EmailRequest carries an email address.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the body of POST /api/auth/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required,min=10"`
	Password string `json:"password" validate:"required,min=8"`
}

// TwoFactorCodeRequest carries a TOTP code.
type TwoFactorCodeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// TwoFactorSetup is returned when a user starts TOTP enrollment.
type TwoFactorSetup struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauthUrl"`
}

// OAuthProfile is what an identity provider tells us about a user.
type OAuthProfile struct {
	Provider string
	Subject  string
	Name     string
	Email    string
	Image    string
}

// UserView is the signed-in user as returned by /api/auth/me.
type UserView struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Email            string      `json:"email"`
	Image            string      `json:"image,omitempty"`
	Role             entity.Role `json:"role"`
	EmailVerified    bool        `json:"emailVerified"`
	TwoFactorEnabled bool        `json:"twoFactorEnabled"`
}

// NewUserView builds the public view of u.
func NewUserView(u *entity.User) UserView {
	return UserView{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Image:            u.Image,
		Role:             u.Role,
		EmailVerified:    u.IsEmailVerified(),
		TwoFactorEnabled: u.TwoFactorEnabled,
	}
}
