package source

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	domain "user-registry/internal/domain/user"
)

// HTTP fetches the user list with a GET request.
type HTTP struct {
	client *http.Client
	url    string
	log    *zap.Logger
}

// NewHTTP creates an HTTP source. A nil client means http.DefaultClient.
func NewHTTP(client *http.Client, url string, log *zap.Logger) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{client: client, url: url, log: log}
}

// Name implements registry.Source.
func (h *HTTP) Name() string {
	return h.url
}

// Fetch implements registry.Source.
func (h *HTTP) Fetch(ctx context.Context) ([]domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	h.log.Debug("received user list response", zap.String("url", h.url), zap.String("status", resp.Status))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: unexpected status %s", h.url, resp.Status)
	}

	users, err := DecodeUsers(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", h.url, err)
	}
	return users, nil
}
