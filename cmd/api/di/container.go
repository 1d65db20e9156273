package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-registry/cmd/api/infrastructure"
	"user-registry/internal/adapter/cache"
	ginhandler "user-registry/internal/adapter/gin/handler"
	"user-registry/internal/adapter/grpc/middleware"
	"user-registry/internal/adapter/pubsub"
	"user-registry/internal/adapter/source"
	"user-registry/internal/adapter/source/cached"
	"user-registry/internal/config"
	"user-registry/internal/usecase/registry"
	redisclient "user-registry/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB           // set only for postgres:// and sqlite:// sources
	RedisClient *redisclient.Client // nil when REDIS_ENABLED is false
	Registry    *registry.Registry
	Source      registry.Source
	RateLimiter *middleware.RateLimiter // nil when rate limiting is off
	Publisher   pubsub.Publisher        // nil when snapshots are not published
	APIHandler  *ginhandler.RegistryHandler
	ViewHandler *ginhandler.ViewHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}

	if cfg.Redis.Enabled {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		c.RedisClient = rdb
	}

	src, err := c.openSource(ctx)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	c.Source = src

	c.Registry = registry.New(l)

	if c.RedisClient != nil {
		if cfg.RateLimit.Enabled {
			c.RateLimiter = middleware.NewRateLimiter(
				c.RedisClient.Client,
				middleware.RateLimiterConfig{
					RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
					WindowSeconds:     cfg.RateLimit.WindowSeconds,
					Enabled:           true,
				},
				l,
			)
		}
		if cfg.Redis.SnapshotChannel != "" {
			c.Publisher = pubsub.NewRedisPublisher(c.RedisClient.Client, cfg.Redis.SnapshotChannel, l)
		}
	}

	c.APIHandler = ginhandler.NewRegistryHandler(c.Registry, l)
	c.ViewHandler = ginhandler.NewViewHandler(c.Registry, l)

	return c, nil
}

// openSource builds the startup source from SOURCE_URL, behind the Redis
// cache when Redis is enabled.
func (c *Container) openSource(ctx context.Context) (registry.Source, error) {
	cfg, l := c.Config, c.Logger

	openers := source.Openers{
		HTTPClient: &http.Client{},
		S3: func(ctx context.Context) (source.GetObjectAPI, error) {
			return infrastructure.NewS3Client(ctx, cfg, l)
		},
		DB: func(driver, dsn string) (*gorm.DB, error) {
			db, err := infrastructure.NewDatabase(cfg, driver, dsn, l)
			if err != nil {
				return nil, err
			}
			c.DB = db
			return db, nil
		},
	}

	src, err := source.Open(ctx, cfg.Source.URL, openers, l)
	if err != nil {
		return nil, err
	}

	if c.RedisClient == nil {
		return src, nil
	}

	listCache := cache.NewRedisListCache(
		c.RedisClient.Client,
		time.Duration(cfg.Redis.CacheTTL)*time.Second,
		l,
	)
	return cached.New(src, listCache, l), nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
