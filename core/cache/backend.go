package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrMiss indicates the key was not found in the backend.
var ErrMiss = errors.New("cache miss")

// Backend is the raw key/value store behind a Store.
// A ttl of zero or less stores the value without expiration.
type Backend interface {
	// Get returns the stored bytes or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// NewBackend creates the backend selected by cfg.Driver.
func NewBackend(ctx context.Context, cfg Config) (Backend, error) {
	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverRedis:
		return NewRedis(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported cache driver %q", cfg.Driver)
	}
}
