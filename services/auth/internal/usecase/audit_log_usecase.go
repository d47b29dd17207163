package usecase

import (
	"context"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
)

// AuditLogUseCase records security events
type AuditLogUseCase struct {
	logger          *zap.Logger
	auditRepository repository.AuditLogRepository
}

// NewAuditLogUseCase creates the audit log use case
func NewAuditLogUseCase(
	logger *zap.Logger,
	auditRepo repository.AuditLogRepository,
) interfaces.AuditLogUseCase {
	return &AuditLogUseCase{
		logger:          logger,
		auditRepository: auditRepo,
	}
}

// AddLog stores an audit event
func (uc *AuditLogUseCase) AddLog(ctx context.Context, logType entity.AuditLogType, content map[string]interface{}, userID *string) error {
	auditLog := entity.NewAuditLog(userID, logType, content)

	if err := uc.auditRepository.Create(ctx, auditLog); err != nil {
		uc.logger.Error("Failed to store audit log",
			zap.String("type", string(logType)),
			zap.Any("content", content),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// GetUserLogs pages through a user's events
func (uc *AuditLogUseCase) GetUserLogs(ctx context.Context, userID string, page, limit int) ([]*entity.AuditLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	logs, total, err := uc.auditRepository.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		uc.logger.Error("Failed to list audit logs",
			zap.String("userID", userID),
			zap.Error(err),
		)
		return nil, 0, err
	}

	return logs, total, nil
}

// recordAudit stores an event without failing the caller.
func recordAudit(ctx context.Context, logger *zap.Logger, audit interfaces.AuditLogUseCase, logType entity.AuditLogType, content map[string]interface{}, userID *string) {
	if audit == nil {
		return
	}
	if err := audit.AddLog(ctx, logType, content, userID); err != nil {
		logger.Warn("Audit log dropped", zap.String("type", string(logType)), zap.Error(err))
	}
}
