package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/http/middleware"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
)

// AuthHandlerDeps groups the use cases behind the /api/auth routes.
type AuthHandlerDeps struct {
	Auth          interfaces.AuthUseCase
	Registration  interfaces.RegistrationUseCase
	PasswordReset interfaces.PasswordResetUseCase
	Session       interfaces.SessionUseCase
	OTP           interfaces.OTPUseCase
	AuditLog      interfaces.AuditLogUseCase
}

type AuthHandler struct {
	deps    AuthHandlerDeps
	cookies middleware.CookieOptions
	logger  *zap.Logger
}

func NewAuthHandler(deps AuthHandlerDeps, cookies middleware.CookieOptions, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		deps:    deps,
		cookies: cookies,
		logger:  logger,
	}
}

// SignUp handles POST /api/auth/signup
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req dto.SignUpRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	result, err := h.deps.Registration.SignUp(c.Request().Context(), dto.SignUpParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Image:    req.Image,
		Device:   deviceInfo(c),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"ok":                   true,
		"user":                 dto.NewUserView(result.User),
		"verificationRequired": result.VerificationRequired,
		"verificationSent":     result.VerificationSent,
	})
}

// SignIn handles POST /api/auth/signin. The identity token is set as an
// HttpOnly cookie and also returned for bearer clients.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req dto.SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	result, err := h.deps.Auth.SignIn(c.Request().Context(), dto.SignInParams{
		Email:    req.Email,
		Password: req.Password,
		Code:     req.Code,
		Device:   deviceInfo(c),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return h.respondSignedIn(c, result)
}

func (h *AuthHandler) respondSignedIn(c echo.Context, result *dto.SignInResult) error {
	middleware.SetIdentityCookie(c, result.Token, result.TokenExpiresAt, h.cookies)
	return c.JSON(http.StatusOK, echo.Map{
		"ok":               true,
		"user":             dto.NewUserView(result.User),
		"token":            result.Token,
		"sessionExpiresAt": result.SessionExpiresAt,
	})
}

// SignOut handles POST /api/auth/signout. The cookie is cleared even when the
// session is already gone.
func (h *AuthHandler) SignOut(c echo.Context) error {
	id := middleware.IdentityFrom(c)
	middleware.ClearIdentityCookie(c, h.cookies)

	deviceID := id.DeviceID
	if deviceID == "" {
		deviceID = middleware.DeviceIDFrom(c)
	}

	if err := h.deps.Auth.SignOut(c.Request().Context(), id.UserID, deviceID); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// VerifyEmail handles POST /api/auth/verify
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req dto.TokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	user, err := h.deps.Registration.VerifyEmail(c.Request().Context(), req.Token)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"ok":   true,
		"user": dto.NewUserView(user),
	})
}

// ResendVerification handles POST /api/auth/resend-verification
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req dto.EmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.deps.Registration.ResendVerification(c.Request().Context(), req.Email); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"ok":      true,
		"message": "Verification email sent",
	})
}

// ForgotPassword handles POST /api/auth/forgot-password. Unknown emails get
// the same answer as known ones.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req dto.EmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.deps.PasswordReset.RequestReset(c.Request().Context(), req.Email); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"ok":      true,
		"message": "If the email is registered, a reset link has been sent",
	})
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req dto.ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.deps.PasswordReset.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"ok":      true,
		"message": "Password updated",
	})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	id := middleware.IdentityFrom(c)

	user, err := h.deps.Auth.Me(c.Request().Context(), id.UserID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"ok":   true,
		"user": dto.NewUserView(user),
	})
}

// ListSessions handles GET /api/auth/sessions
func (h *AuthHandler) ListSessions(c echo.Context) error {
	id := middleware.IdentityFrom(c)

	sessions, err := h.deps.Session.ListActive(c.Request().Context(), id.UserID, id.DeviceID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"ok":       true,
		"sessions": sessions,
	})
}

// ListActivity handles GET /api/auth/activity?page=&limit=
func (h *AuthHandler) ListActivity(c echo.Context) error {
	id := middleware.IdentityFrom(c)
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	logs, total, err := h.deps.AuditLog.GetUserLogs(c.Request().Context(), id.UserID, page, limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	views := make([]dto.AuditLogView, 0, len(logs))
	for _, log := range logs {
		views = append(views, dto.NewAuditLogView(log))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"ok":     true,
		"events": views,
		"total":  total,
	})
}

// SetupTwoFactor handles POST /api/auth/2fa/setup
func (h *AuthHandler) SetupTwoFactor(c echo.Context) error {
	id := middleware.IdentityFrom(c)

	setup, err := h.deps.OTP.Setup(c.Request().Context(), id.UserID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"ok":         true,
		"secret":     setup.Secret,
		"otpauthUrl": setup.URL,
	})
}

// EnableTwoFactor handles POST /api/auth/2fa/enable
func (h *AuthHandler) EnableTwoFactor(c echo.Context) error {
	var req dto.TwoFactorCodeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	id := middleware.IdentityFrom(c)
	if err := h.deps.OTP.Enable(c.Request().Context(), id.UserID, req.Code); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
