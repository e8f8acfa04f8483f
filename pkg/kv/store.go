package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is missing or expired
var ErrNotFound = errors.New("not found")

// ErrBackendUnavailable is returned when the backend storage is unavailable
var ErrBackendUnavailable = errors.New("backend unavailable")

// Store defines the subset of Redis string and key commands the site uses.
type Store interface {
	// Set stores value; an optional positive ttl expires it.
	Set(ctx context.Context, key string, value []byte, ttl ...time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)

	Del(ctx context.Context, keys ...string) (int64, error)
	Exists(ctx context.Context, keys ...string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// TTL returns -1 for keys without expiry and ErrNotFound for missing keys.
	TTL(ctx context.Context, key string) (time.Duration, error)

	IncrBy(ctx context.Context, key string, n int64) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}
