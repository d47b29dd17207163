package entity

import "time"

// RegistrationLog records the ip and device a user signed up from. Rows are
// never updated.
type RegistrationLog struct {
	ID        uint
	UserID    string
	IPAddress string
	DeviceID  string
	CreatedAt time.Time
}
