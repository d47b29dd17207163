package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/http/middleware"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
)

type AppConfigHandler struct {
	appConfigUseCase interfaces.AppConfigUseCase
	logger           *zap.Logger
}

func NewAppConfigHandler(appConfigUseCase interfaces.AppConfigUseCase, logger *zap.Logger) *AppConfigHandler {
	return &AppConfigHandler{
		appConfigUseCase: appConfigUseCase,
		logger:           logger,
	}
}

// GetPublic handles GET /api/app-config. Defaults are served when the
// config cannot be loaded.
func (h *AppConfigHandler) GetPublic(c echo.Context) error {
	cfg := h.appConfigUseCase.GetOrDefault(c.Request().Context())
	return c.JSON(http.StatusOK, dto.NewPublicAppConfig(cfg))
}

// GetAdmin handles GET /api/admin/config
func (h *AppConfigHandler) GetAdmin(c echo.Context) error {
	cfg, err := h.appConfigUseCase.Get(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, dto.NewAdminAppConfig(cfg))
}

// UpdateGeneral handles PUT /api/admin/config/general
func (h *AppConfigHandler) UpdateGeneral(c echo.Context) error {
	var req dto.GeneralSettingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	cfg, err := h.appConfigUseCase.UpdateGeneral(c.Request().Context(), req, actorID(c))
	return h.respondUpdated(c, cfg, err)
}

// UpdateSEO handles PUT /api/admin/config/seo
func (h *AppConfigHandler) UpdateSEO(c echo.Context) error {
	var req dto.SEOSettingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	cfg, err := h.appConfigUseCase.UpdateSEO(c.Request().Context(), req, actorID(c))
	return h.respondUpdated(c, cfg, err)
}

// UpdateUserPolicy handles PUT /api/admin/config/user
func (h *AppConfigHandler) UpdateUserPolicy(c echo.Context) error {
	var req dto.UserSettingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	cfg, err := h.appConfigUseCase.UpdateUserPolicy(c.Request().Context(), req, actorID(c))
	return h.respondUpdated(c, cfg, err)
}

// UpdateSMTP handles PUT /api/admin/config/smtp
func (h *AppConfigHandler) UpdateSMTP(c echo.Context) error {
	var req dto.SMTPSettingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	cfg, err := h.appConfigUseCase.UpdateSMTP(c.Request().Context(), req, actorID(c))
	return h.respondUpdated(c, cfg, err)
}

func (h *AppConfigHandler) respondUpdated(c echo.Context, cfg *entity.AppConfig, err error) error {
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"ok":     true,
		"config": dto.NewAdminAppConfig(cfg),
	})
}

func actorID(c echo.Context) string {
	if id := middleware.IdentityFrom(c); id != nil {
		return id.UserID
	}
	return ""
}
