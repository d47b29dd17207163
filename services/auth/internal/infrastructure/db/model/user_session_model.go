package model

import "time"

// UserSessionModel is the user_sessions table. (user_id, device_id) is unique.
type UserSessionModel struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string    `gorm:"type:char(12);not null;uniqueIndex:idx_user_sessions_user_device" json:"user_id"`
	DeviceID     string    `gorm:"size:128;not null;uniqueIndex:idx_user_sessions_user_device" json:"device_id"`
	IPAddress    string    `gorm:"size:64;not null;default:''" json:"ip_address"`
	UserAgent    string    `gorm:"size:512;not null;default:''" json:"user_agent"`
	ExpiresAt    time.Time `gorm:"not null;index" json:"expires_at"`
	LastSignInAt time.Time `gorm:"not null" json:"last_sign_in_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserSessionModel) TableName() string {
	return "user_sessions"
}
