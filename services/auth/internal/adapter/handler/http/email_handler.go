package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	domainErrors "github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/errors"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
)

type EmailHandler struct {
	emailUseCase interfaces.EmailUseCase
	logger       *zap.Logger
}

func NewEmailHandler(emailUseCase interfaces.EmailUseCase, logger *zap.Logger) *EmailHandler {
	return &EmailHandler{
		emailUseCase: emailUseCase,
		logger:       logger,
	}
}

// SendEmail handles POST /api/auth/send-email
func (h *EmailHandler) SendEmail(c echo.Context) error {
	var req dto.SendEmailRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Missing required fields")
	}

	if err := h.emailUseCase.Send(c.Request().Context(), req); err != nil {
		if authErr, ok := domainErrors.AsAuthError(err); ok {
			if authErr.Type == domainErrors.ErrTypeValidation {
				return badRequest(c, "Missing required fields")
			}
			return respondError(c, h.logger, err)
		}

		h.logger.Error("failed to send email", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"ok":    false,
			"error": "Failed to send email",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"ok":      true,
		"message": "Email sent",
	})
}

// VerifySMTP handles POST /api/verify-smtp. The connection check is bounded
// by a 10 second timeout.
func (h *EmailHandler) VerifySMTP(c echo.Context) error {
	var req dto.VerifySMTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"ok":      false,
			"message": "Missing required fields or invalid port",
		})
	}

	err := h.emailUseCase.VerifySMTP(c.Request().Context(), req)
	if err == nil {
		return c.JSON(http.StatusOK, echo.Map{
			"ok":      true,
			"message": "SMTP connection verified",
		})
	}

	if authErr, ok := domainErrors.AsAuthError(err); ok && authErr.Type == domainErrors.ErrTypeValidation {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"ok":      false,
			"message": authErr.Message,
		})
	}

	h.logger.Warn("SMTP verification failed",
		zap.String("host", req.Host),
		zap.Int("port", req.Port),
		zap.Error(err),
	)

	// Raw dial and auth errors stay in the log.
	detail := "Could not connect to the SMTP server"
	if authErr, ok := domainErrors.AsAuthError(err); ok {
		detail = authErr.Message
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"ok":      false,
		"message": "Error verifying SMTP",
		"error":   detail,
	})
}
