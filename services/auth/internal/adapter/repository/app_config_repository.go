package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/db/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AppConfigRepositoryImpl struct {
	db *gorm.DB
}

// NewAppConfigRepository builds the gorm app config repository.
func NewAppConfigRepository(db *gorm.DB) repository.AppConfigRepository {
	return &AppConfigRepositoryImpl{db: db}
}

// toAppConfigPatch converts the nullable row into a patch over defaults.
func toAppConfigPatch(m *model.AppConfigModel) entity.AppConfigPatch {
	patch := entity.AppConfigPatch{
		ContactEmail:              m.ContactEmail,
		LogoURL:                   m.LogoURL,
		MaintenanceMode:           m.MaintenanceMode,
		AnalyticsID:               m.AnalyticsID,
		SignUpEnabled:             m.SignUpEnabled,
		MaxActiveSessionsPerUser:  m.MaxActiveSessionsPerUser,
		SingleUserPerIPOrDevice:   m.SingleUserPerIPOrDevice,
		EmailVerificationRequired: m.EmailVerificationRequired,
		GlobalTwoFactorEnabled:    m.GlobalTwoFactorEnabled,
		SessionTimeoutMinutes:     m.SessionTimeoutMinutes,
		SiteDisplayName:           m.SiteDisplayName,
		SiteDescription:           m.SiteDescription,
		SiteURL:                   m.SiteURL,
		FaviconURL:                m.FaviconURL,
		DefaultLocale:             m.DefaultLocale,
		NoIndex:                   m.NoIndex,
		SMTPHost:                  m.SMTPHost,
		SMTPPort:                  m.SMTPPort,
		SMTPUser:                  m.SMTPUser,
		SMTPPasswordEnc:           m.SMTPPasswordEnc,
		SMTPConfigured:            m.SMTPConfigured,
	}
	if m.Keywords != nil {
		keywords := entity.ParseKeywords(*m.Keywords)
		patch.Keywords = &keywords
	}
	return patch
}

func toAppConfigEntity(m *model.AppConfigModel) *entity.AppConfig {
	cfg := entity.DefaultAppConfig()
	cfg.Apply(toAppConfigPatch(m))
	cfg.ID = m.ID
	cfg.CreatedAt = m.CreatedAt
	cfg.UpdatedAt = m.UpdatedAt
	return cfg
}

// patchColumns lists the columns a patch writes.
func patchColumns(p entity.AppConfigPatch) map[string]interface{} {
	columns := map[string]interface{}{}
	put := func(name string, set bool, value interface{}) {
		if set {
			columns[name] = value
		}
	}

	put("contact_email", p.ContactEmail != nil, p.ContactEmail)
	put("logo_url", p.LogoURL != nil, p.LogoURL)
	put("maintenance_mode", p.MaintenanceMode != nil, p.MaintenanceMode)
	put("analytics_id", p.AnalyticsID != nil, p.AnalyticsID)
	put("sign_up_enabled", p.SignUpEnabled != nil, p.SignUpEnabled)
	put("max_active_sessions_per_user", p.MaxActiveSessionsPerUser != nil, p.MaxActiveSessionsPerUser)
	put("single_user_per_ip_or_device", p.SingleUserPerIPOrDevice != nil, p.SingleUserPerIPOrDevice)
	put("email_verification_required", p.EmailVerificationRequired != nil, p.EmailVerificationRequired)
	put("global_two_factor_enabled", p.GlobalTwoFactorEnabled != nil, p.GlobalTwoFactorEnabled)
	put("session_timeout_minutes", p.SessionTimeoutMinutes != nil, p.SessionTimeoutMinutes)
	put("site_display_name", p.SiteDisplayName != nil, p.SiteDisplayName)
	put("site_description", p.SiteDescription != nil, p.SiteDescription)
	put("site_url", p.SiteURL != nil, p.SiteURL)
	put("favicon_url", p.FaviconURL != nil, p.FaviconURL)
	put("default_locale", p.DefaultLocale != nil, p.DefaultLocale)
	put("no_index", p.NoIndex != nil, p.NoIndex)
	if p.Keywords != nil {
		columns["keywords"] = entity.JoinKeywords(*p.Keywords)
	}
	put("smtp_host", p.SMTPHost != nil, p.SMTPHost)
	put("smtp_port", p.SMTPPort != nil, p.SMTPPort)
	put("smtp_user", p.SMTPUser != nil, p.SMTPUser)
	put("smtp_password_enc", p.SMTPPasswordEnc != nil, p.SMTPPasswordEnc)
	put("smtp_configured", p.SMTPConfigured != nil, p.SMTPConfigured)

	return columns
}

func (r *AppConfigRepositoryImpl) Get(ctx context.Context) (*entity.AppConfig, error) {
	var configModel model.AppConfigModel
	if err := r.db.WithContext(ctx).Where("id = ?", entity.AppConfigID).First(&configModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}
	return toAppConfigEntity(&configModel), nil
}

// ApplyPatch makes sure the singleton row exists, then updates only the
// patched columns. Concurrent patches to different fields do not clobber
// each other; the same field is last write wins.
func (r *AppConfigRepositoryImpl) ApplyPatch(ctx context.Context, patch entity.AppConfigPatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.AppConfigModel{ID: entity.AppConfigID}).Error
		if err != nil {
			return fmt.Errorf("failed to create app config row: %w", err)
		}

		columns := patchColumns(patch)
		if len(columns) == 0 {
			return nil
		}

		err = tx.Model(&model.AppConfigModel{}).
			Where("id = ?", entity.AppConfigID).
			Updates(columns).Error
		if err != nil {
			return fmt.Errorf("failed to update app config: %w", err)
		}
		return nil
	})
}
