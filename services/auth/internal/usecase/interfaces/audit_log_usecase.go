package interfaces

import (
	"context"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
)

// AuditLogUseCase records security events.
type AuditLogUseCase interface {
	// AddLog stores an event. userID is nil for anonymous events.
	AddLog(ctx context.Context, logType entity.AuditLogType, content map[string]interface{}, userID *string) error

	// GetUserLogs pages through a user's events, newest first.
	GetUserLogs(ctx context.Context, userID string, page, limit int) ([]*entity.AuditLog, int64, error)
}
