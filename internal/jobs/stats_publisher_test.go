package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type counter struct {
	a, b int64
	err  error
}

func (c *counter) Counts(context.Context) (int64, int64, error) {
	return c.a, c.b, c.err
}

type recordingBus struct {
	mu        sync.Mutex
	published [][]byte
	keys      []string
}

func (b *recordingBus) Set(_ context.Context, key string, _ interface{}, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keys = append(b.keys, key)
	return nil
}

func (b *recordingBus) Publish(_ context.Context, _ string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, data)
	return nil
}

func (b *recordingBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published)
}

func TestStatsPublisher_Tick(t *testing.T) {
	posts := &counter{a: 3, b: 2}
	messages := &counter{a: 5, b: 1}
	bus := &recordingBus{}
	p := NewStatsPublisher(posts, messages, bus, zap.NewNop().Sugar(), DefaultStatsPublisherConfig())

	ctx := context.Background()
	require.True(t, p.Tick(ctx))
	require.Len(t, bus.published, 1)
	assert.Equal(t, []string{StatsKey}, bus.keys)

	var frame map[string]interface{}
	require.NoError(t, json.Unmarshal(bus.published[0], &frame))
	assert.Equal(t, string(events.StatsUpdated), frame["type"])
	assert.EqualValues(t, 3, frame["total_posts"])
	assert.EqualValues(t, 2, frame["published_posts"])
	assert.EqualValues(t, 5, frame["total_messages"])
	assert.EqualValues(t, 1, frame["unread_messages"])

	t.Run("unchanged counts are not republished", func(t *testing.T) {
		assert.False(t, p.Tick(ctx))
		assert.Equal(t, 1, bus.count())
	})

	t.Run("a new message triggers a frame", func(t *testing.T) {
		messages.a, messages.b = 6, 2
		assert.True(t, p.Tick(ctx))
		assert.Equal(t, 2, bus.count())
	})

	t.Run("count failures skip the tick", func(t *testing.T) {
		posts.err = errors.New("db down")
		assert.False(t, p.Tick(ctx))
		assert.Equal(t, 2, bus.count())
	})
}

func TestStatsPublisher_StartStop(t *testing.T) {
	bus := &recordingBus{}
	p := NewStatsPublisher(&counter{a: 1}, &counter{}, bus, zap.NewNop().Sugar(), StatsPublisherConfig{
		Interval: 10 * time.Millisecond,
		Channel:  "test",
	})

	done := make(chan error, 1)
	go func() { done <- p.Start(context.Background()) }()

	require.Eventually(t, func() bool { return bus.count() == 1 }, time.Second, 5*time.Millisecond)
	p.Stop()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop")
	}
}
