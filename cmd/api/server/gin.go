package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	ginhandler "user-registry/internal/adapter/gin/handler"
	ginrouter "user-registry/internal/adapter/gin/router"
	grpcmiddleware "user-registry/internal/adapter/grpc/middleware"
)

// SetupGinServer creates and configures the Gin HTTP server
func SetupGinServer(
	api *ginhandler.RegistryHandler,
	view *ginhandler.ViewHandler,
	rateLimiter *grpcmiddleware.RateLimiter,
	swaggerFile string,
	addr string,
	l *zap.Logger,
) *http.Server {
	router := ginrouter.SetupRouter(api, view, ginrouter.Options{
		SwaggerFile: swaggerFile,
		RateLimiter: rateLimiter,
	}, l)

	l.Info("Gin HTTP server configured", zap.String("address", addr))

	// Request contexts derive from base so open event streams end on Shutdown.
	base, cancel := context.WithCancel(context.Background())

	// No WriteTimeout: /v1/registry/events is a long-lived stream.
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
	srv.RegisterOnShutdown(cancel)
	return srv
}
