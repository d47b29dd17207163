package entity

import "time"

// Identity is what a valid identity token says about the caller.
type Identity struct {
	UserID        string
	Name          string
	Email         string
	Role          Role
	EmailVerified bool
	DeviceID      string
	// SessionExpiresAt is the session expiry known when the token was issued.
	SessionExpiresAt *time.Time
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}
