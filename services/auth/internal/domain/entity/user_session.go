package entity

import "time"

// UserSession is the server-side record of a signed-in device. A user has at
// most one session per device.
type UserSession struct {
	ID           string
	UserID       string
	DeviceID     string
	IPAddress    string
	UserAgent    string
	ExpiresAt    time.Time
	LastSignInAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (s *UserSession) IsActive(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// EvictsBefore orders sessions for eviction: earliest expiry first, then
// oldest creation, then id.
func (s *UserSession) EvictsBefore(other *UserSession) bool {
	if !s.ExpiresAt.Equal(other.ExpiresAt) {
		return s.ExpiresAt.Before(other.ExpiresAt)
	}
	if !s.CreatedAt.Equal(other.CreatedAt) {
		return s.CreatedAt.Before(other.CreatedAt)
	}
	return s.ID < other.ID
}
