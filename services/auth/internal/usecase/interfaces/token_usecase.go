package interfaces

import (
	"time"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
)

// TokenUseCase signs and parses identity tokens.
type TokenUseCase interface {
	// Issue signs a token for user on deviceID. sessionExpiresAt is embedded
	// so the access gate knows when to consider extending.
	Issue(user *entity.User, deviceID string, sessionExpiresAt time.Time) (token string, expiresAt time.Time, err error)

	// Parse validates token and returns the identity it carries.
	Parse(token string) (*entity.Identity, error)
}
