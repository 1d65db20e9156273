// Package source provides the read-only providers of the startup user list.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	domain "user-registry/internal/domain/user"
)

// maxPayloadBytes bounds how much of a source is read.
const maxPayloadBytes = 10 << 20

// ErrNotArray is returned when a payload is valid JSON but not an array.
var ErrNotArray = errors.New("user list must be a JSON array")

// Kind identifies the transport behind a source URL.
type Kind string

const (
	KindFile Kind = "file"
	KindHTTP Kind = "http"
	KindS3   Kind = "s3"
	KindSQL  Kind = "sql"
)

// Location is a parsed SOURCE_URL.
type Location struct {
	Kind   Kind
	Raw    string
	Path   string // file path
	URL    string // http(s) URL
	Bucket string // s3 bucket
	Key    string // s3 object key
	Driver string // postgres or sqlite
	DSN    string // gorm DSN
}

// Parse maps a source URL to its Location. A value without a scheme is a file path.
func Parse(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, errors.New("empty source url")
	}

	scheme, rest, found := strings.Cut(raw, "://")
	if !found {
		return Location{Kind: KindFile, Raw: raw, Path: raw}, nil
	}

	switch strings.ToLower(scheme) {
	case "file":
		if rest == "" {
			return Location{}, fmt.Errorf("source %q: missing file path", raw)
		}
		return Location{Kind: KindFile, Raw: raw, Path: rest}, nil

	case "http", "https":
		u, err := url.Parse(raw)
		if err != nil {
			return Location{}, fmt.Errorf("source %q: %w", raw, err)
		}
		if u.Host == "" {
			return Location{}, fmt.Errorf("source %q: missing host", raw)
		}
		return Location{Kind: KindHTTP, Raw: raw, URL: u.String()}, nil

	case "s3":
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Location{}, fmt.Errorf("source %q: expected s3://bucket/key", raw)
		}
		return Location{Kind: KindS3, Raw: raw, Bucket: bucket, Key: key}, nil

	case "postgres", "postgresql":
		return Location{Kind: KindSQL, Raw: raw, Driver: "postgres", DSN: raw}, nil

	case "sqlite":
		if rest == "" {
			return Location{}, fmt.Errorf("source %q: missing database path", raw)
		}
		return Location{Kind: KindSQL, Raw: raw, Driver: "sqlite", DSN: rest}, nil

	default:
		return Location{}, fmt.Errorf("source %q: unsupported scheme %q", raw, scheme)
	}
}

// DecodeUsers reads a JSON array of {id, name, email} objects.
func DecodeUsers(r io.Reader) ([]domain.User, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read user list: %w", err)
	}
	if len(data) > maxPayloadBytes {
		return nil, fmt.Errorf("user list exceeds %d bytes", maxPayloadBytes)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			return nil, errors.New("user list is not valid JSON")
		}
		return nil, ErrNotArray
	}

	var users []domain.User
	if err := json.Unmarshal(trimmed, &users); err != nil {
		return nil, fmt.Errorf("decode user list: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}
