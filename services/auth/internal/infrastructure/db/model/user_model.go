package model

import (
	"time"
)

// UserModel is the users table.
type UserModel struct {
	ID                 string     `gorm:"type:char(12);primaryKey" json:"id"`
	Email              string     `gorm:"size:250;not null;uniqueIndex" json:"email"`
	Name               string     `gorm:"size:100;not null;default:''" json:"name"`
	PasswordHash       *string    `gorm:"size:250" json:"-"`
	Role               string     `gorm:"size:20;not null;default:'USER'" json:"role"`
	EmailVerifiedAt    *time.Time `json:"email_verified_at,omitempty"`
	Image              string     `gorm:"size:255;not null;default:''" json:"image"`
	TwoFactorSecretEnc *string    `gorm:"size:255" json:"-"`
	TwoFactorEnabled   bool       `gorm:"not null;default:false" json:"two_factor_enabled"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Sessions         []UserSessionModel       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"sessions,omitempty"`
	Tokens           []VerificationTokenModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"tokens,omitempty"`
	RegistrationLogs []RegistrationLogModel   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"registration_logs,omitempty"`
}

func (UserModel) TableName() string {
	return "users"
}
