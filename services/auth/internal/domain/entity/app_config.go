package entity

import (
	"strings"
	"time"
)

// AppConfigID is the primary key of the singleton configuration row.
const AppConfigID = 1

const (
	DefaultMaxActiveSessions     = 3
	DefaultSessionTimeoutMinutes = 30
	MinSessionTimeoutMinutes     = 5
)

// AppConfig is the resolved application-wide configuration. Every field holds
// a usable value; missing stored values are filled from DefaultAppConfig.
type AppConfig struct {
	ID int

	// General
	ContactEmail    string
	LogoURL         string
	MaintenanceMode bool
	AnalyticsID     string

	// User policy
	SignUpEnabled             bool
	MaxActiveSessionsPerUser  int
	SingleUserPerIPOrDevice   bool
	EmailVerificationRequired bool
	GlobalTwoFactorEnabled    bool
	SessionTimeoutMinutes     int

	// SEO
	SiteDisplayName string
	SiteDescription string
	SiteURL         string
	FaviconURL      string
	DefaultLocale   string
	NoIndex         bool
	Keywords        []string

	// SMTP. SMTPPasswordEnc holds the encrypted password.
	SMTPHost        string
	SMTPPort        int
	SMTPUser        string
	SMTPPasswordEnc string
	SMTPConfigured  bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultAppConfig returns the configuration used when nothing is stored.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		ID:                        AppConfigID,
		MaintenanceMode:           false,
		SignUpEnabled:             true,
		MaxActiveSessionsPerUser:  DefaultMaxActiveSessions,
		SingleUserPerIPOrDevice:   false,
		EmailVerificationRequired: true,
		GlobalTwoFactorEnabled:    false,
		SessionTimeoutMinutes:     DefaultSessionTimeoutMinutes,
		SiteDisplayName:           "New App",
		SiteDescription:           "Welcome to your new app",
		SiteURL:                   "http://localhost:3000",
		DefaultLocale:             "es",
		NoIndex:                   false,
		Keywords:                  []string{},
	}
}

// SessionDuration is the configured session timeout, never below the floor.
func (c *AppConfig) SessionDuration() time.Duration {
	minutes := c.SessionTimeoutMinutes
	if minutes < MinSessionTimeoutMinutes {
		minutes = MinSessionTimeoutMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// MaxSessions is the configured cap, defaulting when unset.
func (c *AppConfig) MaxSessions() int {
	if c.MaxActiveSessionsPerUser <= 0 {
		return DefaultMaxActiveSessions
	}
	return c.MaxActiveSessionsPerUser
}

// Clone returns a deep copy.
func (c *AppConfig) Clone() *AppConfig {
	clone := *c
	clone.Keywords = append([]string{}, c.Keywords...)
	return &clone
}

// AppConfigPatch carries a partial update. Nil fields are left untouched.
type AppConfigPatch struct {
	ContactEmail    *string
	LogoURL         *string
	MaintenanceMode *bool
	AnalyticsID     *string

	SignUpEnabled             *bool
	MaxActiveSessionsPerUser  *int
	SingleUserPerIPOrDevice   *bool
	EmailVerificationRequired *bool
	GlobalTwoFactorEnabled    *bool
	SessionTimeoutMinutes     *int

	SiteDisplayName *string
	SiteDescription *string
	SiteURL         *string
	FaviconURL      *string
	DefaultLocale   *string
	NoIndex         *bool
	Keywords        *[]string

	SMTPHost        *string
	SMTPPort        *int
	SMTPUser        *string
	SMTPPasswordEnc *string
	SMTPConfigured  *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p AppConfigPatch) IsEmpty() bool {
	return p == AppConfigPatch{}
}

// Apply overlays the non-nil fields of p onto c.
func (c *AppConfig) Apply(p AppConfigPatch) {
	setString(&c.ContactEmail, p.ContactEmail)
	setString(&c.LogoURL, p.LogoURL)
	setBool(&c.MaintenanceMode, p.MaintenanceMode)
	setString(&c.AnalyticsID, p.AnalyticsID)

	setBool(&c.SignUpEnabled, p.SignUpEnabled)
	setInt(&c.MaxActiveSessionsPerUser, p.MaxActiveSessionsPerUser)
	setBool(&c.SingleUserPerIPOrDevice, p.SingleUserPerIPOrDevice)
	setBool(&c.EmailVerificationRequired, p.EmailVerificationRequired)
	setBool(&c.GlobalTwoFactorEnabled, p.GlobalTwoFactorEnabled)
	setInt(&c.SessionTimeoutMinutes, p.SessionTimeoutMinutes)

	setString(&c.SiteDisplayName, p.SiteDisplayName)
	setString(&c.SiteDescription, p.SiteDescription)
	setString(&c.SiteURL, p.SiteURL)
	setString(&c.FaviconURL, p.FaviconURL)
	setString(&c.DefaultLocale, p.DefaultLocale)
	setBool(&c.NoIndex, p.NoIndex)
	if p.Keywords != nil {
		c.Keywords = append([]string{}, (*p.Keywords)...)
	}

	setString(&c.SMTPHost, p.SMTPHost)
	setInt(&c.SMTPPort, p.SMTPPort)
	setString(&c.SMTPUser, p.SMTPUser)
	setString(&c.SMTPPasswordEnc, p.SMTPPasswordEnc)
	setBool(&c.SMTPConfigured, p.SMTPConfigured)
}

// ParseKeywords splits a comma separated keyword list, dropping blanks.
func ParseKeywords(raw string) []string {
	keywords := []string{}
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

// JoinKeywords is the inverse of ParseKeywords.
func JoinKeywords(keywords []string) string {
	return strings.Join(keywords, ", ")
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
