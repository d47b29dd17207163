// Package app wires configuration, infrastructure, repositories, use cases
// and transports into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"

	handler "github.com/wekeepgrowing/semo-starter/services/auth/internal/adapter/handler/http"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/adapter/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/config"
	domainrepo "github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/repository"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/db"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/grpc"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/http"
	appmw "github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/http/middleware"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/oauth"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase"
	"go.uber.org/zap"
)

// App holds every long-lived component of the auth service.
type App struct {
	Config         *config.Config
	Logger         *zap.Logger
	Infrastructure *db.Infrastructure
	Repositories   *domainrepo.Repositories
	UseCases       *usecase.UseCases
	HTTPServer     *http.Server
	GRPCServer     *grpc.Server
}

// New connects the infrastructure and builds the servers. Call Close when done.
func New(cfg *config.Config) (*App, error) {
	logger := cfg.Logger

	infrastructure, err := db.NewInfrastructure(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}

	repositories := repository.InitRepositories(infrastructure)
	useCases := usecase.SetupUseCases(logger, cfg, repositories, infrastructure.Messaging, infrastructure.Encryption)

	cookies := appmw.CookieOptions{
		Secure: cfg.Session.CookieSecure,
		Domain: cfg.Session.CookieDomain,
	}

	store, err := http.NewSessionStore(infrastructure.SessionPool, cfg.Session.StoreSecret, cfg.Session.StoreKeyPrefix, cookies)
	if err != nil {
		infrastructure.Close()
		return nil, err
	}

	httpServer := http.NewServer(http.Config{
		Port:            cfg.Server.HTTP.Port,
		Timeout:         cfg.Server.HTTP.Timeout,
		Debug:           cfg.Server.HTTP.Debug,
		Cookies:         cookies,
		ExtendThreshold: cfg.Session.ExtendThreshold,
		RateLimit: appmw.RateLimitConfig{
			Rate:      cfg.RateLimit.Rate,
			Burst:     cfg.RateLimit.Burst,
			ExpiresIn: cfg.RateLimit.ExpiresIn,
		},
		Frontend: http.FrontendConfig{
			ProxyURL:  cfg.Frontend.ProxyURL,
			StaticDir: cfg.Frontend.StaticDir,
		},
	}, logger, useCases, store, googleProvider(cfg))
	if err := httpServer.RegisterRoutes(); err != nil {
		infrastructure.Close()
		return nil, err
	}

	grpcServer := grpc.NewServer(grpc.Config{
		Port:    cfg.Server.GRPC.Port,
		Timeout: cfg.Server.GRPC.Timeout,
	}, logger)

	return &App{
		Config:         cfg,
		Logger:         logger,
		Infrastructure: infrastructure,
		Repositories:   repositories,
		UseCases:       useCases,
		HTTPServer:     httpServer,
		GRPCServer:     grpcServer,
	}, nil
}

// googleProvider keeps the handler's provider nil when Google is not configured.
func googleProvider(cfg *config.Config) handler.OAuthProvider {
	provider := oauth.NewGoogleProvider(oauth.GoogleConfig{
		ClientID:     cfg.OAuth.Google.ClientID,
		ClientSecret: cfg.OAuth.Google.ClientSecret,
		RedirectURL:  cfg.OAuth.Google.RedirectURL,
	})
	if provider == nil {
		cfg.Logger.Info("Google sign-in disabled: client credentials are not configured")
		return nil
	}
	return provider
}

// Run starts the servers and background workers and blocks until ctx is
// cancelled or a server fails. Servers are stopped before it returns.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)

	go func() {
		if err := a.HTTPServer.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go func() {
		if err := a.GRPCServer.Start(); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	go func() {
		if err := a.UseCases.AppConfig.Listen(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.Logger.Error("App config listener stopped", zap.Error(err))
		}
	}()

	go a.GRPCServer.WatchMaintenance(ctx, a.UseCases.AppConfig)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		a.Logger.Error("Server failed", zap.Error(runErr))
	}

	if err := a.HTTPServer.Stop(); err != nil {
		a.Logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	a.GRPCServer.Stop()

	return runErr
}

// Close releases database and Redis connections.
func (a *App) Close() {
	if err := a.Infrastructure.Close(); err != nil {
		a.Logger.Error("Failed to close infrastructure", zap.Error(err))
	}
}
