package model

import "time"

// RegistrationLogModel is the user_registration_logs table.
type RegistrationLogModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:char(12);not null;index" json:"user_id"`
	IPAddress string    `gorm:"size:64;not null;default:'';index" json:"ip_address"`
	DeviceID  string    `gorm:"size:128;not null;default:'';index" json:"device_id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (RegistrationLogModel) TableName() string {
	return "user_registration_logs"
}
