package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/db/model"
	"gorm.io/gorm"
)

type RegistrationLogRepositoryImpl struct {
	db *gorm.DB
}

// NewRegistrationLogRepository builds the gorm registration log repository.
func NewRegistrationLogRepository(db *gorm.DB) repository.RegistrationLogRepository {
	return &RegistrationLogRepositoryImpl{db: db}
}

func (r *RegistrationLogRepositoryImpl) Create(ctx context.Context, log *entity.RegistrationLog) error {
	logModel := &model.RegistrationLogModel{
		UserID:    log.UserID,
		IPAddress: log.IPAddress,
		DeviceID:  log.DeviceID,
	}
	if err := r.db.WithContext(ctx).Create(logModel).Error; err != nil {
		return fmt.Errorf("failed to create registration log: %w", err)
	}
	log.ID = logModel.ID
	log.CreatedAt = logModel.CreatedAt
	return nil
}

func (r *RegistrationLogRepositoryImpl) ExistsSince(ctx context.Context, ip, deviceID string, since time.Time) (bool, error) {
	if ip == "" && deviceID == "" {
		return false, nil
	}

	query := r.db.WithContext(ctx).Model(&model.RegistrationLogModel{}).Where("created_at > ?", since)
	switch {
	case ip != "" && deviceID != "":
		query = query.Where("(ip_address = ? OR device_id = ?)", ip, deviceID)
	case ip != "":
		query = query.Where("ip_address = ?", ip)
	default:
		query = query.Where("device_id = ?", deviceID)
	}

	var count int64
	if err := query.Limit(1).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to query registration logs: %w", err)
	}
	return count > 0, nil
}
