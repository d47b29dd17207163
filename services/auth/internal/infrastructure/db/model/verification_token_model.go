package model

import "time"

// VerificationTokenModel is the user_verification_tokens table.
type VerificationTokenModel struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:char(12);not null;index:idx_verification_tokens_user_kind" json:"user_id"`
	Token     string    `gorm:"size:128;not null;uniqueIndex" json:"token"`
	Kind      string    `gorm:"size:32;not null;index:idx_verification_tokens_user_kind" json:"kind"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (VerificationTokenModel) TableName() string {
	return "user_verification_tokens"
}
