package dto

import (
	"time"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
)

// PublicAppConfig is the config as served to browsers. SMTP credentials are omitted.
type PublicAppConfig struct {
	ID int `json:"id"`

	ContactEmail              string `json:"contactEmail"`
	LogoURL                   string `json:"logoUrl"`
	IsMaintenanceMode         bool   `json:"isMaintenanceMode"`
	GoogleAnalyticsTrackingID string `json:"googleAnalyticsTrackingId"`

	IsUserSignUpEnabled          bool `json:"isUserSignUpEnabled"`
	MaxActiveSessionsPerUser     int  `json:"maxActiveSessionsPerUser"`
	IsSingleUserPerIPEnforced    bool `json:"isSingleUserPerIpEnforced"`
	IsEmailVerificationRequired  bool `json:"isEmailVerificationRequired"`
	IsGlobalTwoFactorAuthEnabled bool `json:"isGlobalTwoFactorAuthEnabled"`
	SessionTimeoutLimitMinutes   int  `json:"sessionTimeoutLimitMinutes"`

	SiteDisplayName      string   `json:"siteDisplayName"`
	SiteDescription      string   `json:"siteDescription"`
	SiteURL              string   `json:"siteUrl"`
	FaviconURL           string   `json:"faviconUrl"`
	DefaultLocale        string   `json:"defaultLocale"`
	IsSiteNoIndexEnabled bool     `json:"isSiteNoIndexEnabled"`
	SEODefaultKeywords   []string `json:"seoDefaultKeywords"`

	IsEmailConfigured bool `json:"isEmailConfigured"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AdminAppConfig adds the SMTP connection settings, still without the password.
type AdminAppConfig struct {
	PublicAppConfig
	EmailHost string `json:"emailHost"`
	EmailPort int    `json:"emailPort"`
	EmailUser string `json:"emailUser"`
}

// NewPublicAppConfig strips secrets from cfg.
func NewPublicAppConfig(cfg *entity.AppConfig) PublicAppConfig {
	return PublicAppConfig{
		ID:                           cfg.ID,
		ContactEmail:                 cfg.ContactEmail,
		LogoURL:                      cfg.LogoURL,
		IsMaintenanceMode:            cfg.MaintenanceMode,
		GoogleAnalyticsTrackingID:    cfg.AnalyticsID,
		IsUserSignUpEnabled:          cfg.SignUpEnabled,
		MaxActiveSessionsPerUser:     cfg.MaxSessions(),
		IsSingleUserPerIPEnforced:    cfg.SingleUserPerIPOrDevice,
		IsEmailVerificationRequired:  cfg.EmailVerificationRequired,
		IsGlobalTwoFactorAuthEnabled: cfg.GlobalTwoFactorEnabled,
		SessionTimeoutLimitMinutes:   cfg.SessionTimeoutMinutes,
		SiteDisplayName:              cfg.SiteDisplayName,
		SiteDescription:              cfg.SiteDescription,
		SiteURL:                      cfg.SiteURL,
		FaviconURL:                   cfg.FaviconURL,
		DefaultLocale:                cfg.DefaultLocale,
		IsSiteNoIndexEnabled:         cfg.NoIndex,
		SEODefaultKeywords:           append([]string{}, cfg.Keywords...),
		IsEmailConfigured:            cfg.SMTPConfigured,
		CreatedAt:                    cfg.CreatedAt,
		UpdatedAt:                    cfg.UpdatedAt,
	}
}

// NewAdminAppConfig is NewPublicAppConfig plus SMTP host, port and user.
func NewAdminAppConfig(cfg *entity.AppConfig) AdminAppConfig {
	return AdminAppConfig{
		PublicAppConfig: NewPublicAppConfig(cfg),
		EmailHost:       cfg.SMTPHost,
		EmailPort:       cfg.SMTPPort,
		EmailUser:       cfg.SMTPUser,
	}
}

// GeneralSettingsRequest updates the general section.
type GeneralSettingsRequest struct {
	SiteDisplayName           string  `json:"siteDisplayName" validate:"required"`
	SiteURL                   string  `json:"siteUrl" validate:"required,url"`
	LogoURL                   *string `json:"logoUrl" validate:"omitempty,url"`
	ContactEmail              *string `json:"contactEmail" validate:"omitempty,email"`
	GoogleAnalyticsTrackingID string  `json:"googleAnalyticsTrackingId"`
	IsMaintenanceMode         bool    `json:"isMaintenanceMode"`
}

// Patch converts the request into a config patch.
func (r GeneralSettingsRequest) Patch() entity.AppConfigPatch {
	return entity.AppConfigPatch{
		SiteDisplayName: &r.SiteDisplayName,
		SiteURL:         &r.SiteURL,
		LogoURL:         r.LogoURL,
		ContactEmail:    r.ContactEmail,
		AnalyticsID:     &r.GoogleAnalyticsTrackingID,
		MaintenanceMode: &r.IsMaintenanceMode,
	}
}

// SEOSettingsRequest updates the SEO section.
type SEOSettingsRequest struct {
	SiteDisplayName      string  `json:"siteDisplayName" validate:"required"`
	SiteURL              string  `json:"siteUrl" validate:"required,url"`
	SiteDescription      *string `json:"siteDescription"`
	DefaultLocale        *string `json:"defaultLocale"`
	FaviconURL           *string `json:"faviconUrl"`
	IsSiteNoIndexEnabled bool    `json:"isSiteNoIndexEnabled"`
	// SEODefaultKeywords is a comma separated list.
	SEODefaultKeywords *string `json:"seoDefaultKeywords"`
}

func (r SEOSettingsRequest) Patch() entity.AppConfigPatch {
	patch := entity.AppConfigPatch{
		SiteDisplayName: &r.SiteDisplayName,
		SiteURL:         &r.SiteURL,
		SiteDescription: r.SiteDescription,
		DefaultLocale:   r.DefaultLocale,
		FaviconURL:      r.FaviconURL,
		NoIndex:         &r.IsSiteNoIndexEnabled,
	}
	if r.SEODefaultKeywords != nil {
		keywords := entity.ParseKeywords(*r.SEODefaultKeywords)
		patch.Keywords = &keywords
	}
	return patch
}

// UserSettingsRequest updates the user policy section.
type UserSettingsRequest struct {
	IsUserSignUpEnabled          bool `json:"isUserSignUpEnabled"`
	IsSingleUserPerIPEnforced    bool `json:"isSingleUserPerIpEnforced"`
	IsEmailVerificationRequired  bool `json:"isEmailVerificationRequired"`
	IsGlobalTwoFactorAuthEnabled bool `json:"isGlobalTwoFactorAuthEnabled"`
	MaxActiveSessionsPerUser     int  `json:"maxActiveSessionsPerUser" validate:"min=1,max=10"`
	SessionTimeoutLimitMinutes   int  `json:"sessionTimeoutLimitMinutes" validate:"min=5,max=10080"`
}

func (r UserSettingsRequest) Patch() entity.AppConfigPatch {
	return entity.AppConfigPatch{
		SignUpEnabled:             &r.IsUserSignUpEnabled,
		SingleUserPerIPOrDevice:   &r.IsSingleUserPerIPEnforced,
		EmailVerificationRequired: &r.IsEmailVerificationRequired,
		GlobalTwoFactorEnabled:    &r.IsGlobalTwoFactorAuthEnabled,
		MaxActiveSessionsPerUser:  &r.MaxActiveSessionsPerUser,
		SessionTimeoutMinutes:     &r.SessionTimeoutLimitMinutes,
	}
}

// SMTPSettingsRequest updates the SMTP section. An empty password keeps the
// stored one.
type SMTPSettingsRequest struct {
	EmailHost         string `json:"emailHost" validate:"required"`
	EmailPort         int    `json:"emailPort" validate:"min=1,max=65535"`
	EmailUser         string `json:"emailUser" validate:"required,email"`
	EmailPassword     string `json:"emailPassEnc"`
	IsEmailConfigured bool   `json:"isEmailConfigured"`
}
