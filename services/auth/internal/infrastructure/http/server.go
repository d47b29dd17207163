package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/wekeepgrowing/semo-starter/pkg/logger"
	handler "github.com/wekeepgrowing/semo-starter/services/auth/internal/adapter/handler/http"
	appmw "github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/http/middleware"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase"
	"go.uber.org/zap"
)

// Server wraps the echo router and the underlying http.Server.
type Server struct {
	router   *echo.Echo
	server   *http.Server
	logger   *zap.Logger
	address  string
	cfg      Config
	useCases *usecase.UseCases
	oauth    handler.OAuthProvider
}

// Config is the HTTP server configuration.
type Config struct {
	Port    string
	Timeout int
	Debug   bool

	Cookies         appmw.CookieOptions
	ExtendThreshold float64
	RateLimit       appmw.RateLimitConfig
	Frontend        FrontendConfig
}

// FrontendConfig locates the pages served behind the access gate.
type FrontendConfig struct {
	// ProxyURL forwards page requests to a running frontend server.
	ProxyURL string
	// StaticDir serves a built single page app, falling back to index.html.
	StaticDir string
}

// NewServer creates the HTTP server. oauthProvider may be nil when Google
// sign-in is not configured.
func NewServer(
	cfg Config,
	zapLogger *zap.Logger,
	useCases *usecase.UseCases,
	store sessions.Store,
	oauthProvider handler.OAuthProvider,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Debug = cfg.Debug
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(zapLogger)

	e.Use(middleware.Recover())
	e.Use(logger.NewEchoRequestLogger(zapLogger))
	logger.WithEchoLogger(e, zapLogger)
	e.Use(session.Middleware(store))

	address := fmt.Sprintf(":%s", cfg.Port)

	server := &http.Server{
		Addr:         address,
		ReadTimeout:  time.Duration(cfg.Timeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Timeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Timeout) * time.Second,
	}

	return &Server{
		router:   e,
		server:   server,
		logger:   zapLogger,
		address:  address,
		cfg:      cfg,
		useCases: useCases,
		oauth:    oauthProvider,
	}
}

// Router returns the echo instance.
func (s *Server) Router() *echo.Echo {
	return s.router
}

// RegisterRoutes installs the request gate, every API route and the page
// surface.
func (s *Server) RegisterRoutes() error {
	uc := s.useCases

	// Gate: device id, then identity, then maintenance and session extension.
	s.router.Use(appmw.DeviceMiddleware(s.cfg.Cookies))
	s.router.Use(appmw.NewIdentityMiddleware(uc.Token, s.logger).Handle())
	s.router.Use(appmw.NewAccessMiddleware(
		uc.AppConfig,
		uc.Session,
		appmw.AccessConfig{
			ExtendThreshold: s.cfg.ExtendThreshold,
		},
		s.logger,
	).Handle())

	appConfigHandler := handler.NewAppConfigHandler(uc.AppConfig, s.logger)
	emailHandler := handler.NewEmailHandler(uc.Email, s.logger)
	seoHandler := handler.NewSEOHandler(uc.AppConfig, s.logger)
	oauthHandler := handler.NewOAuthHandler(uc.OAuth, s.oauth, s.cfg.Cookies, s.logger)
	authHandler := handler.NewAuthHandler(handler.AuthHandlerDeps{
		Auth:          uc.Auth,
		Registration:  uc.Registration,
		PasswordReset: uc.PasswordReset,
		Session:       uc.Session,
		OTP:           uc.OTP,
		AuditLog:      uc.AuditLog,
	}, s.cfg.Cookies, s.logger)

	s.router.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	s.router.GET("/robots.txt", seoHandler.Robots)
	s.router.GET("/sitemap.xml", seoHandler.Sitemap)
	s.router.GET("/maintenance", seoHandler.Maintenance)

	api := s.router.Group("/api")
	api.GET("/app-config", appConfigHandler.GetPublic)
	api.POST("/verify-smtp", emailHandler.VerifySMTP, appmw.RequireAdmin())

	limiter := appmw.CredentialRateLimiter(s.cfg.RateLimit)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.SignUp, limiter)
		auth.POST("/signin", authHandler.SignIn, limiter)
		auth.POST("/verify", authHandler.VerifyEmail)
		auth.POST("/resend-verification", authHandler.ResendVerification, limiter)
		auth.POST("/forgot-password", authHandler.ForgotPassword, limiter)
		auth.POST("/reset-password", authHandler.ResetPassword, limiter)

		auth.GET("/oauth/google/login", oauthHandler.Login)
		auth.GET("/oauth/google/callback", oauthHandler.Callback)

		auth.POST("/send-email", emailHandler.SendEmail, appmw.RequireAdmin())
	}

	signedIn := auth.Group("", appmw.RequireAuth())
	{
		signedIn.POST("/signout", authHandler.SignOut)
		signedIn.GET("/me", authHandler.Me)
		signedIn.GET("/sessions", authHandler.ListSessions)
		signedIn.GET("/activity", authHandler.ListActivity)
		signedIn.POST("/2fa/setup", authHandler.SetupTwoFactor)
		signedIn.POST("/2fa/enable", authHandler.EnableTwoFactor)
	}

	admin := api.Group("/admin", appmw.RequireAdmin())
	{
		admin.GET("/config", appConfigHandler.GetAdmin)
		admin.PUT("/config/general", appConfigHandler.UpdateGeneral)
		admin.PUT("/config/seo", appConfigHandler.UpdateSEO)
		admin.PUT("/config/user", appConfigHandler.UpdateUserPolicy)
		admin.PUT("/config/smtp", appConfigHandler.UpdateSMTP)
	}

	return s.registerPages()
}

// registerPages serves every path not owned by an API route from the
// frontend. It runs after the gate, so maintenance and session extension
// apply to pages while assets the gate excludes are still served.
func (s *Server) registerPages() error {
	skipAPI := func(c echo.Context) bool {
		return servedByAPI(c.Request().URL.Path)
	}

	switch {
	case s.cfg.Frontend.ProxyURL != "":
		target, err := url.Parse(s.cfg.Frontend.ProxyURL)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return fmt.Errorf("invalid frontend proxy url %q", s.cfg.Frontend.ProxyURL)
		}
		s.router.Use(middleware.ProxyWithConfig(middleware.ProxyConfig{
			Skipper:  skipAPI,
			Balancer: middleware.NewRoundRobinBalancer([]*middleware.ProxyTarget{{URL: target}}),
		}))
		s.logger.Info("Proxying pages to frontend", zap.String("url", target.String()))
	case s.cfg.Frontend.StaticDir != "":
		s.router.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Skipper: skipAPI,
			Root:    s.cfg.Frontend.StaticDir,
			HTML5:   true,
		}))
		s.logger.Info("Serving pages from static bundle", zap.String("dir", s.cfg.Frontend.StaticDir))
	}
	return nil
}

// servedByAPI reports whether path belongs to a route registered here.
func servedByAPI(path string) bool {
	switch path {
	case "/health", "/robots.txt", "/sitemap.xml", "/maintenance":
		return true
	}
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

// Start serves HTTP until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting",
		zap.String("address", s.address),
	)

	s.server.Handler = s.router
	return s.router.StartServer(s.server)
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	s.logger.Info("HTTP server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.router.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}
