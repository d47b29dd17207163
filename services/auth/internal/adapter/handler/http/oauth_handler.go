package http

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/http/middleware"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
)

// OAuthProvider runs an authorization code flow.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*dto.OAuthProfile, error)
}

const (
	oauthSuccessRedirect = "/"
	oauthFailureRedirect = "/auth/signin"
)

type OAuthHandler struct {
	oauthUseCase interfaces.OAuthUseCase
	provider     OAuthProvider
	cookies      middleware.CookieOptions
	logger       *zap.Logger
}

// NewOAuthHandler creates the handler. A nil provider disables the flow.
func NewOAuthHandler(
	oauthUseCase interfaces.OAuthUseCase,
	provider OAuthProvider,
	cookies middleware.CookieOptions,
	logger *zap.Logger,
) *OAuthHandler {
	return &OAuthHandler{
		oauthUseCase: oauthUseCase,
		provider:     provider,
		cookies:      cookies,
		logger:       logger,
	}
}

// Login handles GET /api/auth/oauth/google/login
func (h *OAuthHandler) Login(c echo.Context) error {
	if h.provider == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"ok": false, "error": "OAuth sign-in is not configured"})
	}

	state := uuid.NewString()
	if err := middleware.SaveOAuthState(c, state, h.cookies); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

// Callback handles GET /api/auth/oauth/google/callback
func (h *OAuthHandler) Callback(c echo.Context) error {
	if h.provider == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"ok": false, "error": "OAuth sign-in is not configured"})
	}

	expected, err := middleware.ConsumeOAuthState(c, h.cookies)
	if err != nil || expected != c.QueryParam("state") {
		h.logger.Warn("OAuth state mismatch", zap.String("ip", c.RealIP()))
		return h.fail(c, "state")
	}

	if providerErr := c.QueryParam("error"); providerErr != "" {
		h.logger.Info("OAuth consent denied", zap.String("error", providerErr))
		return h.fail(c, "denied")
	}

	code := c.QueryParam("code")
	if code == "" {
		return h.fail(c, "code")
	}

	ctx := c.Request().Context()
	profile, err := h.provider.Exchange(ctx, code)
	if err != nil {
		h.logger.Warn("OAuth exchange failed", zap.Error(err))
		return h.fail(c, "exchange")
	}

	result, err := h.oauthUseCase.SignIn(ctx, *profile, deviceInfo(c))
	if err != nil {
		h.logger.Info("OAuth sign-in rejected",
			zap.String("provider", profile.Provider),
			zap.Error(err),
		)
		return h.fail(c, "signin")
	}

	middleware.SetIdentityCookie(c, result.Token, result.TokenExpiresAt, h.cookies)
	return c.Redirect(http.StatusFound, oauthSuccessRedirect)
}

func (h *OAuthHandler) fail(c echo.Context, reason string) error {
	return c.Redirect(http.StatusFound, oauthFailureRedirect+"?error="+url.QueryEscape(reason))
}
