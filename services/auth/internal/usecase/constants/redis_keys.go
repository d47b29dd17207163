package constants

import "time"

// Cache keys and tags
const (
	// AppConfigCacheKey caches the resolved application config
	AppConfigCacheKey = "app-config:resolved"

	// AppConfigCacheTag groups every cached entry derived from the config row
	AppConfigCacheTag = "app-config"

	// AppConfigInvalidationChannel carries config change notices between processes
	AppConfigInvalidationChannel = "app-config:invalidate"

	sessionExtendLeasePrefix = "session-extend:"
)

// SessionExtendLeaseKey is the extension lease of one device session
func SessionExtendLeaseKey(userID, deviceID string) string {
	return sessionExtendLeasePrefix + userID + ":" + deviceID
}

// Token and session defaults
const (
	// VerificationTokenExpiry verification and reset token lifetime
	VerificationTokenExpiry = 15 * time.Minute

	// MaxPendingVerificationTokens live tokens allowed per user and kind
	MaxPendingVerificationTokens = 3

	// MaxTokenGenerationAttempts retries on token collision
	MaxTokenGenerationAttempts = 5

	// RegistrationWindow device/ip throttle lookback
	RegistrationWindow = 30 * 24 * time.Hour

	// IdentityTokenExpiry identity token lifetime
	IdentityTokenExpiry = 30 * 24 * time.Hour

	// SessionEffectTimeout bounds fire-and-forget session work
	SessionEffectTimeout = 5 * time.Second

	// SMTPVerifyTimeout bounds the SMTP connection check
	SMTPVerifyTimeout = 10 * time.Second

	// MinPasswordHashCost bcrypt cost floor
	MinPasswordHashCost = 10
)

// Cookie names
const (
	// IdentityCookieName carries the identity token
	IdentityCookieName = "auth_token"

	// DeviceCookieName carries the device id
	DeviceCookieName = "deviceId"

	// OAuthSessionName is the gorilla session holding the OAuth state
	OAuthSessionName = "oauth_state"
)
