package main

import (
	"bytes"
	"fmt"
	"net/mail"
	"os"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Config seedConfig `yaml:"config"`
	Admin  *seedAdmin `yaml:"admin"`
}

// seedConfig mirrors the admin settings forms. Omitted keys keep their
// stored or default value.
type seedConfig struct {
	SiteDisplayName *string   `yaml:"site_display_name"`
	SiteDescription *string   `yaml:"site_description"`
	SiteURL         *string   `yaml:"site_url"`
	ContactEmail    *string   `yaml:"contact_email"`
	LogoURL         *string   `yaml:"logo_url"`
	FaviconURL      *string   `yaml:"favicon_url"`
	DefaultLocale   *string   `yaml:"default_locale"`
	AnalyticsID     *string   `yaml:"analytics_id"`
	Keywords        *[]string `yaml:"keywords"`
	NoIndex         *bool     `yaml:"no_index"`
	MaintenanceMode *bool     `yaml:"maintenance_mode"`

	SignUpEnabled             *bool `yaml:"sign_up_enabled"`
	MaxActiveSessionsPerUser  *int  `yaml:"max_active_sessions_per_user"`
	SessionTimeoutMinutes     *int  `yaml:"session_timeout_minutes"`
	SingleUserPerIPOrDevice   *bool `yaml:"single_user_per_ip_or_device"`
	EmailVerificationRequired *bool `yaml:"email_verification_required"`
	GlobalTwoFactorEnabled    *bool `yaml:"global_two_factor_enabled"`

	SMTP *seedSMTP `yaml:"smtp"`
}

type seedSMTP struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type seedAdmin struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

func loadSeedFile(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return &seedFile{}, nil
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal seed yaml: %w", err)
	}

	if err := file.validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

func (f *seedFile) validate() error {
	c := f.Config
	if c.MaxActiveSessionsPerUser != nil && (*c.MaxActiveSessionsPerUser < 1 || *c.MaxActiveSessionsPerUser > 10) {
		return fmt.Errorf("config.max_active_sessions_per_user must be between 1 and 10")
	}
	if c.SessionTimeoutMinutes != nil && (*c.SessionTimeoutMinutes < 5 || *c.SessionTimeoutMinutes > 10080) {
		return fmt.Errorf("config.session_timeout_minutes must be between 5 and 10080")
	}
	if s := c.SMTP; s != nil {
		if s.Host == "" || s.User == "" {
			return fmt.Errorf("config.smtp: host and user are required")
		}
		if s.Port < 1 || s.Port > 65535 {
			return fmt.Errorf("config.smtp.port must be between 1 and 65535")
		}
	}

	if a := f.Admin; a != nil {
		if a.Name == "" {
			return fmt.Errorf("admin.name is required")
		}
		if _, err := mail.ParseAddress(a.Email); err != nil {
			return fmt.Errorf("admin.email is invalid: %w", err)
		}
		if len(a.Password) < 8 {
			return fmt.Errorf("admin.password must be at least 8 characters")
		}
	}
	return nil
}

// patch converts the config section. encryptedPassword is stored only when
// the seed carries SMTP settings with a password.
func (c seedConfig) patch(encryptedPassword string) entity.AppConfigPatch {
	p := entity.AppConfigPatch{
		SiteDisplayName:           c.SiteDisplayName,
		SiteDescription:           c.SiteDescription,
		SiteURL:                   c.SiteURL,
		ContactEmail:              c.ContactEmail,
		LogoURL:                   c.LogoURL,
		FaviconURL:                c.FaviconURL,
		DefaultLocale:             c.DefaultLocale,
		AnalyticsID:               c.AnalyticsID,
		Keywords:                  c.Keywords,
		NoIndex:                   c.NoIndex,
		MaintenanceMode:           c.MaintenanceMode,
		SignUpEnabled:             c.SignUpEnabled,
		MaxActiveSessionsPerUser:  c.MaxActiveSessionsPerUser,
		SessionTimeoutMinutes:     c.SessionTimeoutMinutes,
		SingleUserPerIPOrDevice:   c.SingleUserPerIPOrDevice,
		EmailVerificationRequired: c.EmailVerificationRequired,
		GlobalTwoFactorEnabled:    c.GlobalTwoFactorEnabled,
	}

	if s := c.SMTP; s != nil {
		configured := encryptedPassword != ""
		p.SMTPHost = &s.Host
		p.SMTPPort = &s.Port
		p.SMTPUser = &s.User
		if configured {
			p.SMTPPasswordEnc = &encryptedPassword
		}
		p.SMTPConfigured = &configured
	}
	return p
}
