package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"

	"github.com/erselk/ugur-sahan-website/pkg/kv"
	"github.com/erselk/ugur-sahan-website/pkg/kv/kvtest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set, skipping Redis tests")
	}

	kvtest.RunConformanceTests(t, func(t *testing.T) kv.Store {
		store, err := New(redisURL)
		require.NoError(t, err)
		require.NoError(t, store.client.FlushDB(context.Background()).Err())
		return store
	})
}

func TestParseOptions(t *testing.T) {
	opt, err := ParseOptions("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opt.Addr)

	opt, err = ParseOptions("redis://:secret@cache:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 2, opt.DB)
}

func TestIsConnectionError(t *testing.T) {
	assert.False(t, IsConnectionError(nil))
	assert.False(t, IsConnectionError(redis.Nil))
	assert.False(t, IsConnectionError(context.Canceled))
	assert.True(t, IsConnectionError(fmt.Errorf("dial: %w", syscall.ECONNREFUSED)))
	assert.True(t, IsConnectionError(errors.New("write: broken pipe")))
	assert.False(t, IsConnectionError(errors.New("WRONGTYPE Operation against a key")))
}
