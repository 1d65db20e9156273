package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-registry/internal/domain/user"
)

// ErrCorruptEntry is returned by Get when the stored value cannot be decoded.
var ErrCorruptEntry = errors.New("corrupt cache entry")

// ListCache stores fetched user lists by source name.
type ListCache interface {
	// Get returns the cached list, or nil with no error on a miss. An
	// undecodable entry yields ErrCorruptEntry.
	Get(ctx context.Context, source string) ([]domain.User, error)

	// Set stores the list with the configured TTL.
	Set(ctx context.Context, source string, users []domain.User) error

	// Delete drops the cached list.
	Delete(ctx context.Context, source string) error
}

// RedisListCache implements ListCache using Redis as the backing store.
type RedisListCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisListCache creates a new Redis-backed list cache.
func NewRedisListCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisListCache {
	return &RedisListCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Key returns the Redis key for a source.
func Key(source string) string {
	return fmt.Sprintf("registry:source:%s", source)
}

// Get retrieves a list from Redis.
func (c *RedisListCache) Get(ctx context.Context, source string) ([]domain.User, error) {
	data, err := c.client.Get(ctx, Key(source)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.String("source", source))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.String("source", source), zap.Error(err))
		return nil, err
	}

	users := []domain.User{}
	if err := json.Unmarshal(data, &users); err != nil {
		c.log.Error("failed to unmarshal cached list", zap.String("source", source), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrCorruptEntry, err)
	}

	c.log.Debug("cache hit", zap.String("source", source), zap.Int("count", len(users)))
	return users, nil
}

// Set stores a list in Redis with TTL.
func (c *RedisListCache) Set(ctx context.Context, source string, users []domain.User) error {
	if users == nil {
		return errors.New("cannot cache nil user list")
	}

	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("marshal user list: %w", err)
	}

	if err := c.client.Set(ctx, Key(source), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.String("source", source), zap.Error(err))
		return err
	}

	c.log.Debug("cached user list", zap.String("source", source), zap.Int("count", len(users)), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes a list from Redis.
func (c *RedisListCache) Delete(ctx context.Context, source string) error {
	if err := c.client.Del(ctx, Key(source)).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.String("source", source), zap.Error(err))
		return err
	}
	return nil
}
