package source

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	domain "user-registry/internal/domain/user"
)

// File reads the user list from a JSON file.
type File struct {
	path string
	log  *zap.Logger
}

// NewFile creates a file source.
func NewFile(path string, log *zap.Logger) *File {
	return &File{path: path, log: log}
}

// Name implements registry.Source.
func (f *File) Name() string {
	return "file:" + f.path
}

// Fetch implements registry.Source.
func (f *File) Fetch(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}
	defer fh.Close()

	users, err := DecodeUsers(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}

	f.log.Debug("read user list from file", zap.String("path", f.path), zap.Int("count", len(users)))
	return users, nil
}
