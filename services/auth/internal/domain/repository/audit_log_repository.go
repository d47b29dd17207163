package repository

import (
	"context"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
)

// AuditLogRepository stores audit events.
type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	ListByUserID(ctx context.Context, userID string, page, limit int) ([]*entity.AuditLog, int64, error)
}
