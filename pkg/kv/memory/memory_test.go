package memory

import (
	"context"
	"testing"
	"time"

	"github.com/erselk/ugur-sahan-website/pkg/kv"
	"github.com/erselk/ugur-sahan-website/pkg/kv/kvtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	kvtest.RunConformanceTests(t, func(t *testing.T) kv.Store {
		return New(0)
	})
}

func TestMemoryStoreWithJanitor(t *testing.T) {
	store := New(10 * time.Millisecond)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "test:janitor", []byte("test"), 20*time.Millisecond))

	_, err := store.Get(ctx, "test:janitor")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		_, present := store.values["test:janitor"]
		return !present
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryStoreIsolatesValues(t *testing.T) {
	store := New(0)
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
	assert.ErrorIs(t, store.Ping(ctx), kv.ErrBackendUnavailable)
}
