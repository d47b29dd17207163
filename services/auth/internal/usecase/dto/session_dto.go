package dto

import (
	"time"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
)

// UpsertSessionParams describes a sign-in on a device.
type UpsertSessionParams struct {
	UserID    string
	DeviceID  string
	IP        string
	UserAgent string
	// MaxActiveSessions caps live sessions per user. Zero uses the default.
	MaxActiveSessions int
	// Duration is the session lifetime. Values under the floor are raised.
	Duration time.Duration
}

// UpsertSessionResult reports the stored session and who got evicted for it.
type UpsertSessionResult struct {
	SessionID  string
	ExpiresAt  time.Time
	Created    bool
	EvictedIDs []string
}

// ExtendSessionParams slides the expiry of a device session.
type ExtendSessionParams struct {
	UserID            string
	DeviceID          string
	MaxActiveSessions int
	Duration          time.Duration
}

// ExtendOutcome says what Extend did.
type ExtendOutcome string

const (
	ExtendOutcomeExtended ExtendOutcome = "extended"
	ExtendOutcomeRevived  ExtendOutcome = "revived"
	// ExtendOutcomeSkipped means the session had expired and the user is at the cap.
	ExtendOutcomeSkipped ExtendOutcome = "skipped"
)

// ExtendSessionResult is the result of Extend.
type ExtendSessionResult struct {
	Outcome   ExtendOutcome
	ExpiresAt time.Time
}

// SessionView is a session as listed to its owner.
type SessionView struct {
	ID           string    `json:"id"`
	DeviceID     string    `json:"deviceId"`
	IPAddress    string    `json:"ipAddress"`
	UserAgent    string    `json:"userAgent"`
	ExpiresAt    time.Time `json:"expiresAt"`
	LastSignInAt time.Time `json:"lastSignInAt"`
	Current      bool      `json:"current"`
}

// AuditLogView is a security event as listed to its owner.
type AuditLogView struct {
	ID        uint                   `json:"id"`
	Type      entity.AuditLogType    `json:"type"`
	Content   map[string]interface{} `json:"content,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// NewAuditLogView builds the listed view of log.
func NewAuditLogView(log *entity.AuditLog) AuditLogView {
	return AuditLogView{
		ID:        log.ID,
		Type:      log.Type,
		Content:   log.Content,
		CreatedAt: log.CreatedAt,
	}
}
