package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"user-registry/cmd/api/di"
	"user-registry/internal/config"
)

// Server holds the gRPC and HTTP servers
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	GRPC   *grpc.Server
	Gin    *http.Server
}

// New creates a new server instance from the container
func New(c *di.Container) *Server {
	cfg := c.Config
	return &Server{
		Config: cfg,
		Logger: c.Logger,
		GRPC:   SetupGRPC(c.Registry, c.Logger, c.RateLimiter),
		Gin: SetupGinServer(
			c.APIHandler,
			c.ViewHandler,
			c.RateLimiter,
			cfg.App.SwaggerFile,
			":"+cfg.App.HTTPPort,
			c.Logger,
		),
	}
}

// Start runs both servers and returns when either stops with an error.
func (s *Server) Start(ctx context.Context) error {
	grpcLis, err := s.listen(ctx, ":"+s.Config.App.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to start gRPC server: %w", err)
	}
	httpLis, err := s.listen(ctx, s.Gin.Addr)
	if err != nil {
		_ = grpcLis.Close()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return s.Serve(grpcLis, httpLis)
}

// Serve runs both servers on the given listeners. When one fails the other
// is stopped.
func (s *Server) Serve(grpcLis, httpLis net.Listener) error {
	g, gctx := errgroup.WithContext(context.Background())
	go func() {
		<-gctx.Done()
		s.GRPC.Stop()
		_ = s.Gin.Close()
	}()

	g.Go(func() error {
		s.Logger.Info("gRPC server running", zap.String("address", grpcLis.Addr().String()))
		if err := s.GRPC.Serve(grpcLis); err != nil {
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.Logger.Info("HTTP server running", zap.String("address", httpLis.Addr().String()))
		if err := s.Gin.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Shutdown stops both servers, waiting for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.Gin != nil {
		s.Logger.Info("shutting down HTTP server...")
		if err := s.Gin.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
		}
	}

	if s.GRPC != nil {
		s.Logger.Info("shutting down gRPC server...")
		stopped := make(chan struct{})
		go func() {
			s.GRPC.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			s.GRPC.Stop()
		}
	}

	return errors.Join(errs...)
}

func (s *Server) listen(ctx context.Context, addr string) (net.Listener, error) {
	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return lis, nil
}
