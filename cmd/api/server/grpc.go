package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"

	grpcadapter "user-registry/internal/adapter/grpc"
	"user-registry/internal/adapter/grpc/middleware"
	"user-registry/internal/usecase/registry"
	"user-registry/pkg/logger"
)

// SetupGRPC creates and configures the gRPC server. A nil rate limiter
// leaves requests unlimited.
func SetupGRPC(uc registry.Usecase, l *zap.Logger, rateLimiter *middleware.RateLimiter) *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{
		logger.RequestIDInterceptor(),
		middleware.RecoveryInterceptor(l),
	}
	if rateLimiter != nil {
		interceptors = append(interceptors, rateLimiter.UnaryInterceptor())
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	grpcadapter.Register(grpcServer, grpcadapter.NewRegistryServer(uc, l))

	return grpcServer
}
