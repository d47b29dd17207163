package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/errors"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/service"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/constants"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
)

// AccessConfig configures the access gate.
type AccessConfig struct {
	// ExtendThreshold is the fraction of the session timeout below which a
	// session is extended.
	ExtendThreshold float64
}

// AccessMiddleware runs DecideAccess for every page request. It serves the
// maintenance page to non-admins and extends sessions close to expiry without
// blocking the response. The identity cookie is left alone: the session row
// is the source of truth for expiry, and a device is extended at most once
// per lease hold.
type AccessMiddleware struct {
	appConfig interfaces.AppConfigUseCase
	session   interfaces.SessionUseCase
	cfg       AccessConfig
	logger    *zap.Logger

	now func() time.Time
	// spawn runs session effects detached from the request.
	spawn func(func())
}

// NewAccessMiddleware creates the access gate.
func NewAccessMiddleware(
	appConfig interfaces.AppConfigUseCase,
	session interfaces.SessionUseCase,
	cfg AccessConfig,
	logger *zap.Logger,
) *AccessMiddleware {
	return &AccessMiddleware{
		appConfig: appConfig,
		session:   session,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		spawn:     func(f func()) { go f() },
	}
}

// Handle returns the echo middleware. It must run after IdentityMiddleware.
func (m *AccessMiddleware) Handle() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path
			if service.IsExcludedPath(path) {
				return next(c)
			}

			id := IdentityFrom(c)
			appCfg, cfgErr := m.appConfig.Get(req.Context())
			now := m.now()

			decision := service.DecideAccess(
				service.RequestDescriptor{Method: req.Method, Path: path},
				id,
				appCfg,
				cfgErr,
				now,
				service.ExtensionPolicy{Threshold: m.cfg.ExtendThreshold},
			)

			if decision.FailOpen {
				m.logger.Warn("access gate failing open",
					zap.String("path", path),
					zap.Error(cfgErr),
				)
			}

			switch decision.Kind {
			case service.DecisionMaintenance:
				c.Response().Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter))
				return c.HTML(http.StatusServiceUnavailable, MaintenancePage(appCfg.SiteDisplayName, appCfg.DefaultLocale))
			case service.DecisionPassThrough:
				if decision.Extend != nil {
					m.extend(appCfg, decision.Extend)
				}
			}

			return next(c)
		}
	}
}

// extend claims the device's extension lease and slides the session, all
// detached from the request.
func (m *AccessMiddleware) extend(appCfg *entity.AppConfig, effect *service.ExtendSessionEffect) {
	params := dto.ExtendSessionParams{
		UserID:            effect.UserID,
		DeviceID:          effect.DeviceID,
		MaxActiveSessions: appCfg.MaxSessions(),
		Duration:          appCfg.SessionDuration(),
	}
	hold := m.leaseHold(params.Duration)

	m.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.SessionEffectTimeout)
		defer cancel()

		claimed, err := m.session.ClaimExtension(ctx, params.UserID, params.DeviceID, hold)
		if err != nil || !claimed {
			return
		}

		result, err := m.session.Extend(ctx, params)
		switch {
		case errors.Is(err, domainErrors.ErrSessionNotFound):
			m.logger.Debug("no session to extend",
				zap.String("userID", params.UserID),
				zap.String("deviceID", params.DeviceID),
			)
		case err != nil:
			m.logger.Warn("session extension failed",
				zap.String("userID", params.UserID),
				zap.String("deviceID", params.DeviceID),
				zap.Error(err),
			)
		case result.Outcome == dto.ExtendOutcomeSkipped:
			m.logger.Info("expired session left at the cap",
				zap.String("userID", params.UserID),
				zap.String("deviceID", params.DeviceID),
			)
		}
	})
}

// leaseHold is how long a slid session stays above the extension threshold.
func (m *AccessMiddleware) leaseHold(duration time.Duration) time.Duration {
	threshold := m.cfg.ExtendThreshold
	if threshold <= 0 || threshold >= 1 {
		threshold = service.DefaultExtendThreshold
	}
	return time.Duration(float64(duration) * (1 - threshold))
}
