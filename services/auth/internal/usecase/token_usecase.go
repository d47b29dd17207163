package usecase

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/constants"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
)

// TokenConfig configures identity tokens
type TokenConfig struct {
	ServiceName string
	Secret      string
	// AccessTokenExpiry is the token lifetime in minutes
	AccessTokenExpiry int
}

type identityClaims struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
	DeviceID      string `json:"device_id,omitempty"`
	SessionExp    int64  `json:"session_exp,omitempty"`
	jwt.RegisteredClaims
}

// TokenUseCase signs identity tokens with HS256
type TokenUseCase struct {
	logger *zap.Logger
	config TokenConfig
	now    func() time.Time
}

// NewTokenUseCase creates the token use case
func NewTokenUseCase(logger *zap.Logger, config TokenConfig) interfaces.TokenUseCase {
	return &TokenUseCase{
		logger: logger,
		config: config,
		now:    time.Now,
	}
}

func (uc *TokenUseCase) expiry() time.Duration {
	if uc.config.AccessTokenExpiry <= 0 {
		return constants.IdentityTokenExpiry
	}
	return time.Duration(uc.config.AccessTokenExpiry) * time.Minute
}

// Issue signs a token describing user on deviceID
func (uc *TokenUseCase) Issue(user *entity.User, deviceID string, sessionExpiresAt time.Time) (string, time.Time, error) {
	return uc.sign(&entity.Identity{
		UserID:        user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Role:          user.Role,
		EmailVerified: user.IsEmailVerified(),
		DeviceID:      deviceID,
	}, sessionExpiresAt)
}

func (uc *TokenUseCase) sign(id *entity.Identity, sessionExpiresAt time.Time) (string, time.Time, error) {
	now := uc.now()
	expiresAt := now.Add(uc.expiry())

	claims := identityClaims{
		Name:          id.Name,
		Email:         id.Email,
		Role:          string(id.Role),
		EmailVerified: id.EmailVerified,
		DeviceID:      id.DeviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    uc.config.ServiceName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if !sessionExpiresAt.IsZero() {
		claims.SessionExp = sessionExpiresAt.Unix()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.config.Secret))
	if err != nil {
		uc.logger.Error("Failed to sign identity token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("failed to sign identity token: %w", err)
	}

	return signed, expiresAt, nil
}

// Parse validates the signature and expiry of token
func (uc *TokenUseCase) Parse(token string) (*entity.Identity, error) {
	claims := &identityClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(uc.config.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(uc.now))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid identity token")
	}

	id := &entity.Identity{
		UserID:        claims.Subject,
		Name:          claims.Name,
		Email:         claims.Email,
		Role:          entity.Role(claims.Role),
		EmailVerified: claims.EmailVerified,
		DeviceID:      claims.DeviceID,
	}
	if claims.SessionExp > 0 {
		sessionExpiresAt := time.Unix(claims.SessionExp, 0)
		id.SessionExpiresAt = &sessionExpiresAt
	}
	return id, nil
}
