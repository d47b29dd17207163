package model

import "time"

// AppConfigModel is the singleton app_configs row. Nullable columns fall back
// to defaults when read.
type AppConfigModel struct {
	ID int `gorm:"primaryKey;autoIncrement:false" json:"id"`

	ContactEmail    *string `gorm:"size:255" json:"contact_email"`
	LogoURL         *string `gorm:"size:255" json:"logo_url"`
	MaintenanceMode *bool   `json:"maintenance_mode"`
	AnalyticsID     *string `gorm:"size:64" json:"analytics_id"`

	SignUpEnabled             *bool `json:"sign_up_enabled"`
	MaxActiveSessionsPerUser  *int  `json:"max_active_sessions_per_user"`
	SingleUserPerIPOrDevice   *bool `json:"single_user_per_ip_or_device"`
	EmailVerificationRequired *bool `json:"email_verification_required"`
	GlobalTwoFactorEnabled    *bool `json:"global_two_factor_enabled"`
	SessionTimeoutMinutes     *int  `json:"session_timeout_minutes"`

	SiteDisplayName *string `gorm:"size:255" json:"site_display_name"`
	SiteDescription *string `gorm:"type:text" json:"site_description"`
	SiteURL         *string `gorm:"size:255" json:"site_url"`
	FaviconURL      *string `gorm:"size:255" json:"favicon_url"`
	DefaultLocale   *string `gorm:"size:16" json:"default_locale"`
	NoIndex         *bool   `json:"no_index"`
	Keywords        *string `gorm:"type:text" json:"keywords"`

	SMTPHost        *string `gorm:"column:smtp_host;size:255" json:"smtp_host"`
	SMTPPort        *int    `gorm:"column:smtp_port" json:"smtp_port"`
	SMTPUser        *string `gorm:"column:smtp_user;size:255" json:"smtp_user"`
	SMTPPasswordEnc *string `gorm:"column:smtp_password_enc;size:512" json:"-"`
	SMTPConfigured  *bool   `gorm:"column:smtp_configured" json:"smtp_configured"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AppConfigModel) TableName() string {
	return "app_configs"
}
