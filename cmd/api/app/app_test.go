package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-registry/cmd/api/di"
	"user-registry/internal/config"
)

func newTestApp(t *testing.T, sourceURL string, timeoutSeconds int) *App {
	cfg := &config.Config{}
	cfg.App.HTTPPort = "0"
	cfg.App.GRPCPort = "0"
	cfg.App.ShutdownTimeoutSeconds = 5
	cfg.Source.URL = sourceURL
	cfg.Source.TimeoutSeconds = timeoutSeconds

	l := zaptest.NewLogger(t)
	c, err := di.NewContainer(context.Background(), cfg, l)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return &App{Config: cfg, Logger: l, Container: c}
}

func TestStartLoad_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"A","email":"a@x.com"}]`))
	}))
	defer srv.Close()

	a := newTestApp(t, srv.URL, 0)
	a.startLoad(context.Background())

	select {
	case <-a.Container.Registry.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("load did not finish")
	}
	assert.Len(t, a.Container.Registry.Snapshot().Users, 1)
}

func TestStartLoad_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	a := newTestApp(t, srv.URL, 1)
	a.startLoad(context.Background())

	select {
	case <-a.Container.Registry.Ready():
	case <-time.After(3 * time.Second):
		t.Fatal("load did not time out")
	}

	snap := a.Container.Registry.Snapshot()
	assert.Empty(t, snap.Users)
	assert.NotEmpty(t, snap.LoadError)
}
