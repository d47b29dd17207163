package entity

import (
	"encoding/json"
	"time"
)

// AuditLog stores a security relevant event.
type AuditLog struct {
	ID      uint
	UserID  *string
	Type    AuditLogType
	Content map[string]interface{}

	CreatedAt time.Time
}

// NewAuditLog builds an audit entry stamped with the current time.
func NewAuditLog(userID *string, logType AuditLogType, content map[string]interface{}) *AuditLog {
	return &AuditLog{
		UserID:    userID,
		Type:      logType,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// ContentJSON encodes Content, using "{}" for an empty entry.
func (al *AuditLog) ContentJSON() ([]byte, error) {
	if al.Content == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(al.Content)
}
