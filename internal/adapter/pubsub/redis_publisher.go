package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-registry/internal/domain/user"
)

// Publisher publishes registry snapshots to other processes.
type Publisher interface {
	Publish(ctx context.Context, s domain.Snapshot) error
}

// Subscriber is the part of the registry a forwarder reads from.
type Subscriber interface {
	Subscribe() (<-chan domain.Snapshot, func())
}

// RedisPublisher publishes snapshots as JSON on a Redis channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	log     *zap.Logger
}

// NewRedisPublisher creates a publisher for channel.
func NewRedisPublisher(client *redis.Client, channel string, log *zap.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel, log: log}
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, s domain.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	receivers, err := p.client.Publish(ctx, p.channel, data).Result()
	if err != nil {
		return fmt.Errorf("publish snapshot %d: %w", s.Version, err)
	}

	p.log.Debug("snapshot published",
		zap.String("channel", p.channel),
		zap.Uint64("version", s.Version),
		zap.Int64("receivers", receivers),
	)
	return nil
}

// Forward publishes every snapshot the registry produces until ctx is done.
// Publish failures are logged and skipped.
func Forward(ctx context.Context, sub Subscriber, pub Publisher, log *zap.Logger) {
	ch, cancel := sub.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-ch:
			if !ok {
				return
			}
			if err := pub.Publish(ctx, s); err != nil {
				log.Warn("failed to publish snapshot", zap.Uint64("version", s.Version), zap.Error(err))
			}
		}
	}
}
