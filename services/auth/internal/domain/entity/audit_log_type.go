package entity

// AuditLogType classifies audit events.
type AuditLogType string

const (
	AuditLogTypeUserRegistered      AuditLogType = "USER_REGISTERED"
	AuditLogTypeOAuthUserRegistered AuditLogType = "OAUTH_USER_REGISTERED"
	AuditLogTypeLoginSuccess        AuditLogType = "LOGIN_SUCCESS"
	AuditLogTypeLoginFailed         AuditLogType = "LOGIN_FAILED"
	AuditLogTypeLogoutSuccess       AuditLogType = "LOGOUT_SUCCESS"
	AuditLogTypeSessionEvicted      AuditLogType = "SESSION_EVICTED"
	AuditLogTypeEmailVerified       AuditLogType = "EMAIL_VERIFIED"
	AuditLogTypePasswordResetSent   AuditLogType = "PASSWORD_RESET_REQUESTED"
	AuditLogTypePasswordReset       AuditLogType = "PASSWORD_RESET"
	AuditLogType2FAEnabled          AuditLogType = "2FA_ENABLED"
	AuditLogType2FAVerified         AuditLogType = "2FA_VERIFIED"
	AuditLogTypeConfigUpdated       AuditLogType = "CONFIG_UPDATED"
	AuditLogTypeBlockedRegistration AuditLogType = "BLOCKED_REGISTRATION" // device or ip already registered
)
