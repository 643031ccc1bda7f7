package common

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// RegisterFunc registers gRPC services on a server.
type RegisterFunc func(*grpc.Server)

// ServerConfig configures a gRPC server.
type ServerConfig struct {
	Domain string
	Port   string
}

// RunServer listens on cfg.Port and serves until ctx is cancelled.
func RunServer(ctx context.Context, cfg ServerConfig, logger *zap.Logger, register RegisterFunc) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.Port, err)
	}
	return Serve(ctx, lis, cfg, logger, register)
}

// Serve runs a gRPC server with health checks on lis. It stops gracefully
// when ctx is cancelled.
func Serve(ctx context.Context, lis net.Listener, cfg ServerConfig, logger *zap.Logger, register RegisterFunc) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := grpc.NewServer()
	register(s)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	logger.Info("grpc server started",
		zap.String("domain", cfg.Domain),
		zap.String("addr", lis.Addr().String()),
	)

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			healthServer.Shutdown()
			s.GracefulStop()
		case <-done:
		}
	}()

	err := s.Serve(lis)
	close(done)
	<-stopped
	if ctx.Err() != nil {
		logger.Info("grpc server stopped", zap.String("domain", cfg.Domain))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}
