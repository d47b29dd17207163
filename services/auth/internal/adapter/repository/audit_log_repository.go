package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/db/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditLogRepositoryImpl struct {
	db *gorm.DB
}

// NewAuditLogRepository builds the gorm audit log repository.
func NewAuditLogRepository(db *gorm.DB) repository.AuditLogRepository {
	return &AuditLogRepositoryImpl{db: db}
}

func toAuditLogModel(auditLog *entity.AuditLog) (*model.AuditLogModel, error) {
	content, err := auditLog.ContentJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit content: %w", err)
	}

	return &model.AuditLogModel{
		ID:        auditLog.ID,
		UserID:    auditLog.UserID,
		Type:      string(auditLog.Type),
		Content:   datatypes.JSON(content),
		CreatedAt: auditLog.CreatedAt,
	}, nil
}

func toAuditLogEntity(m *model.AuditLogModel) (*entity.AuditLog, error) {
	var content map[string]interface{}
	if len(m.Content) > 0 {
		if err := json.Unmarshal(m.Content, &content); err != nil {
			return nil, fmt.Errorf("failed to decode audit content: %w", err)
		}
	}

	return &entity.AuditLog{
		ID:        m.ID,
		UserID:    m.UserID,
		Type:      entity.AuditLogType(m.Type),
		Content:   content,
		CreatedAt: m.CreatedAt,
	}, nil
}

func (r *AuditLogRepositoryImpl) Create(ctx context.Context, log *entity.AuditLog) error {
	auditLogModel, err := toAuditLogModel(log)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(auditLogModel).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	log.ID = auditLogModel.ID
	return nil
}

func (r *AuditLogRepositoryImpl) ListByUserID(ctx context.Context, userID string, page, limit int) ([]*entity.AuditLog, int64, error) {
	var auditLogModels []model.AuditLogModel
	var total int64

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	if err := r.db.WithContext(ctx).Model(&model.AuditLogModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&auditLogModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}

	auditLogs := make([]*entity.AuditLog, len(auditLogModels))
	for i := range auditLogModels {
		auditLog, err := toAuditLogEntity(&auditLogModels[i])
		if err != nil {
			return nil, 0, err
		}
		auditLogs[i] = auditLog
	}

	return auditLogs, total, nil
}
