package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-registry/internal/domain/user"
	"user-registry/internal/usecase/registry"
)

func setupTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisPublisher_Publish(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, "registry:snapshots")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := NewRedisPublisher(client, "registry:snapshots", zaptest.NewLogger(t))
	snap := domain.Snapshot{
		Version: 3,
		Status:  domain.StatusReady,
		Users:   []domain.User{{ID: 1, Name: "A", Email: "a@x.com"}},
		Mode:    domain.ModeCreate,
	}
	require.NoError(t, pub.Publish(ctx, snap))

	select {
	case msg := <-sub.Channel():
		var got domain.Snapshot
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, snap, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestForward_PublishesRegistryChanges(t *testing.T) {
	client := setupTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := client.Subscribe(ctx, "snapshots")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	reg := registry.New(zaptest.NewLogger(t))
	done := make(chan struct{})
	go func() {
		defer close(done)
		Forward(ctx, reg, NewRedisPublisher(client, "snapshots", zaptest.NewLogger(t)), zaptest.NewLogger(t))
	}()

	// The initial snapshot is forwarded first.
	readSnapshot := func() domain.Snapshot {
		select {
		case msg := <-sub.Channel():
			var s domain.Snapshot
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &s))
			return s
		case <-time.After(2 * time.Second):
			t.Fatal("no snapshot forwarded")
			return domain.Snapshot{}
		}
	}
	assert.Empty(t, readSnapshot().Users)

	_, err = reg.Create(ctx, registry.CreateUserRequest{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)

	assert.Equal(t, []domain.User{{ID: 1, Name: "A", Email: "a@x.com"}}, readSnapshot().Users)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Forward did not stop")
	}
}
