package db

import (
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/db/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate creates or updates the auth schema.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&model.UserModel{},
		&model.VerificationTokenModel{},
		&model.RegistrationLogModel{},
		&model.UserSessionModel{},
		&model.AppConfigModel{},
		&model.AuditLogModel{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes adds indexes gorm tags cannot express.
func createCustomIndexes(db *gorm.DB) error {
	// eviction order scan
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_user_sessions_eviction ON user_sessions (user_id, expires_at, created_at, id)`).Error; err != nil {
		return err
	}

	// throttle lookups only consider non-empty values
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_registration_logs_ip_recent ON user_registration_logs (ip_address, created_at) WHERE ip_address <> ''`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_registration_logs_device_recent ON user_registration_logs (device_id, created_at) WHERE device_id <> ''`).Error; err != nil {
		return err
	}

	return nil
}
