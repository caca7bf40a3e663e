package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Store is the remember/forget cache consumed by the configuration services.
type Store struct {
	backend Backend
	prefix  string
	logger  *zap.Logger

	sf singleflight.Group

	mu   sync.Mutex
	gens map[string]uint64
}

// NewStore wraps backend, prefixing every key with prefix.
func NewStore(backend Backend, prefix string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend: backend,
		prefix:  prefix,
		logger:  logger,
		gens:    make(map[string]uint64),
	}
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

func (s *Store) generation(k string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[k]
}

// Forget removes key so that the next Remember rebuilds it.
func (s *Store) Forget(ctx context.Context, key string) error {
	s.mu.Lock()
	s.gens[key]++
	s.mu.Unlock()

	if err := s.backend.Delete(ctx, s.key(key)); err != nil {
		return fmt.Errorf("failed to forget cache key %s: %w", key, err)
	}
	return nil
}

// Remember returns the cached value for key, or calls producer, stores its result
// for ttl and returns it. Concurrent misses for the same key share one producer call.
// A value produced while the key was forgotten is returned but not stored.
func Remember[T any](ctx context.Context, s *Store, key string, ttl time.Duration, producer func(context.Context) (T, error)) (T, error) {
	var zero T

	if raw, err := s.backend.Get(ctx, s.key(key)); err == nil {
		var out T
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
		s.logger.Warn("Dropping undecodable cache entry", zap.String("key", key))
	} else if !errors.Is(err, ErrMiss) {
		s.logger.Warn("Cache read failed, rebuilding", zap.String("key", key), zap.Error(err))
	}

	// The flight outlives any single caller; each caller still stops waiting on its own ctx.
	flight := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(key, func() (any, error) {
		gen := s.generation(key)

		value, err := producer(flight)
		if err != nil {
			return nil, err
		}

		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode cache value %s: %w", key, err)
		}

		if s.generation(key) == gen {
			if err := s.backend.Set(flight, s.key(key), raw, ttl); err != nil {
				s.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
		return value, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	if res.Err != nil {
		return zero, res.Err
	}
	return res.Val.(T), nil
}
