package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	apperrors "github.com/wekeepgrowing/semo-starter/pkg/errors"
	domainErrors "github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/errors"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/http/middleware"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
	"go.uber.org/zap"
)

const internalErrorMessage = "Internal server error"

// respondError writes {ok:false, error} with the status that matches err.
// Auth errors carry a message safe for users; anything else is logged and
// reported generically.
func respondError(c echo.Context, logger *zap.Logger, err error) error {
	if authErr, ok := domainErrors.AsAuthError(err); ok {
		status := apperrors.ToHTTPStatus(authErr.Code())
		if status >= http.StatusInternalServerError {
			apperrors.LogError(logger, err, "request failed", zap.String("path", c.Request().URL.Path))
		}
		return c.JSON(status, echo.Map{"ok": false, "error": authErr.Message})
	}

	apperrors.LogError(logger, err, "request failed", zap.String("path", c.Request().URL.Path))
	return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": internalErrorMessage})
}

// NewHTTPErrorHandler renders errors that escape handlers, such as unknown
// routes or a recovered panic, in the same {ok:false, error} shape.
func NewHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if _, ok := domainErrors.AsAuthError(err); ok {
			_ = respondError(c, logger, err)
			return
		}

		var appErr *apperrors.AppError
		if !apperrors.As(apperrors.FromHTTPError(err), &appErr) {
			_ = respondError(c, logger, err)
			return
		}

		status := apperrors.ToHTTPStatus(appErr.Code())
		message := appErr.Message()
		if status >= http.StatusInternalServerError {
			apperrors.LogError(logger, err, "request failed", zap.String("path", c.Request().URL.Path))
			message = internalErrorMessage
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, echo.Map{"ok": false, "error": message})
	}
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": message})
}

// bindAndValidate binds the body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return domainErrors.NewValidationError("Invalid request body", err)
	}
	if err := c.Validate(req); err != nil {
		return domainErrors.NewValidationError(validationMessage(err), err)
	}
	return nil
}

func deviceInfo(c echo.Context) dto.DeviceInfo {
	return dto.DeviceInfo{
		DeviceID:  middleware.DeviceIDFrom(c),
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}
