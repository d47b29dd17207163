package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/constants"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
)

// Context keys
const (
	IdentityKey = "identity"
	DeviceIDKey = "device_id"
)

// IdentityMiddleware resolves the caller from the identity cookie or a bearer
// token. Token validation is delegated to TokenUseCase. A missing or invalid
// token leaves the request anonymous.
type IdentityMiddleware struct {
	tokenUseCase interfaces.TokenUseCase
	logger       *zap.Logger
}

// NewIdentityMiddleware creates the identity middleware.
func NewIdentityMiddleware(tokenUseCase interfaces.TokenUseCase, logger *zap.Logger) *IdentityMiddleware {
	return &IdentityMiddleware{
		tokenUseCase: tokenUseCase,
		logger:       logger,
	}
}

// Handle returns the echo middleware.
func (m *IdentityMiddleware) Handle() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := tokenFromRequest(c)
			if token == "" {
				return next(c)
			}

			id, err := m.tokenUseCase.Parse(token)
			if err != nil {
				m.logger.Debug("ignoring invalid identity token",
					zap.String("error", err.Error()),
					zap.String("ip", c.RealIP()),
					zap.String("path", c.Request().URL.Path),
				)
				return next(c)
			}

			c.Set(IdentityKey, id)
			return next(c)
		}
	}
}

// tokenFromRequest prefers the identity cookie over the Authorization header.
func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(constants.IdentityCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// IdentityFrom returns the caller set by IdentityMiddleware, or nil.
func IdentityFrom(c echo.Context) *entity.Identity {
	id, _ := c.Get(IdentityKey).(*entity.Identity)
	return id
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IdentityFrom(c) == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"ok":    false,
					"error": "Unauthorized",
				})
			}
			return next(c)
		}
	}
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IdentityFrom(c)
			if id == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"ok":    false,
					"error": "Unauthorized",
				})
			}
			if !id.IsAdmin() {
				return c.JSON(http.StatusForbidden, echo.Map{
					"ok":    false,
					"error": "Forbidden",
				})
			}
			return next(c)
		}
	}
}
