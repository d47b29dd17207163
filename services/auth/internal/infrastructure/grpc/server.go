package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/wekeepgrowing/semo-starter/pkg/logger"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/interfaces"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// SiteServiceName is the health service that reports NOT_SERVING while the
// site is in maintenance. The overall "" service stays SERVING.
const SiteServiceName = "semo.site"

const defaultHealthInterval = 15 * time.Second

// Server is the gRPC server.
type Server struct {
	server       *grpc.Server
	healthServer *health.Server
	logger       *zap.Logger
	address      string
	interval     time.Duration
}

// Config is the gRPC server configuration.
type Config struct {
	Port    string
	Timeout int
	// HealthInterval is how often the maintenance flag is polled.
	HealthInterval time.Duration
}

// NewServer creates the gRPC server with health and reflection services.
func NewServer(cfg Config, zapLogger *zap.Logger) *Server {
	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(logger.NewGrpcUnaryServerInterceptor(zapLogger)),
		grpc.StreamInterceptor(logger.NewGrpcStreamServerInterceptor(zapLogger)),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, grpc.ConnectionTimeout(time.Duration(cfg.Timeout)*time.Second))
	}
	server := grpc.NewServer(opts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(SiteServiceName, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(server)

	interval := cfg.HealthInterval
	if interval <= 0 {
		interval = defaultHealthInterval
	}

	return &Server{
		server:       server,
		healthServer: healthServer,
		logger:       zapLogger,
		address:      fmt.Sprintf(":%s", cfg.Port),
		interval:     interval,
	}
}

// WatchMaintenance mirrors the maintenance flag into the site health status
// until ctx is done. A config read failure leaves the last status in place.
func (s *Server) WatchMaintenance(ctx context.Context, appConfig interfaces.AppConfigUseCase) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.refreshSiteStatus(ctx, appConfig)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) refreshSiteStatus(ctx context.Context, appConfig interfaces.AppConfigUseCase) {
	cfg, err := appConfig.Get(ctx)
	if err != nil {
		s.logger.Warn("health check could not load app config", zap.Error(err))
		return
	}

	status := healthpb.HealthCheckResponse_SERVING
	if cfg.MaintenanceMode {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.healthServer.SetServingStatus(SiteServiceName, status)
}

// Start serves gRPC until Stop is called.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC: %w", err)
	}

	s.logger.Info("gRPC server starting",
		zap.String("address", s.address),
	)

	return s.server.Serve(listener)
}

// Stop drains in-flight calls and stops the server.
func (s *Server) Stop() {
	s.logger.Info("gRPC server shutting down")
	s.healthServer.Shutdown()
	s.server.GracefulStop()
	s.logger.Info("gRPC server stopped")
}
