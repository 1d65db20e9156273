package cached

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-registry/internal/adapter/cache"
	domain "user-registry/internal/domain/user"
	"user-registry/internal/usecase/registry"
)

// Source implements registry.Source with a read-through cache in front of
// another source.
type Source struct {
	origin registry.Source
	cache  cache.ListCache
	log    *zap.Logger
	group  singleflight.Group
}

// New wraps origin with the cache. A nil cache disables caching.
func New(origin registry.Source, c cache.ListCache, log *zap.Logger) *Source {
	return &Source{
		origin: origin,
		cache:  c,
		log:    log,
	}
}

// Name returns the name of the wrapped source.
func (s *Source) Name() string {
	return s.origin.Name()
}

// Fetch returns the cached list when present; otherwise one caller fetches
// from the origin and stores the result while concurrent callers wait for it.
func (s *Source) Fetch(ctx context.Context) ([]domain.User, error) {
	name := s.origin.Name()

	if users := s.fromCache(ctx, name); users != nil {
		s.log.Debug("user list served from cache", zap.String("source", name))
		return users, nil
	}

	result, err, shared := s.group.Do(name, func() (any, error) {
		// Another caller may have filled the cache while we waited
		if users := s.fromCache(ctx, name); users != nil {
			return users, nil
		}

		users, err := s.origin.Fetch(ctx)
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			if err := s.cache.Set(ctx, name, users); err != nil {
				s.log.Warn("failed to cache user list", zap.String("source", name), zap.Error(err))
			}
		}
		return users, nil
	})
	if err != nil {
		return nil, err
	}

	users := result.([]domain.User)
	if shared {
		// Callers must not share a backing array.
		users = append([]domain.User(nil), users...)
	}
	return users, nil
}

func (s *Source) fromCache(ctx context.Context, name string) []domain.User {
	if s.cache == nil {
		return nil
	}
	users, err := s.cache.Get(ctx, name)
	if errors.Is(err, cache.ErrCorruptEntry) {
		s.log.Warn("dropping corrupt cached user list", zap.String("source", name), zap.Error(err))
		if err := s.cache.Delete(ctx, name); err != nil {
			s.log.Warn("failed to drop cached user list", zap.String("source", name), zap.Error(err))
		}
		return nil
	}
	if err != nil {
		s.log.Warn("cache get error, falling back to source", zap.String("source", name), zap.Error(err))
		return nil
	}
	return users
}
