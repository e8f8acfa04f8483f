// Package store is the read-through cache and event bus in front of the
// database. It uses Redis when reachable and an in-process fallback
// otherwise.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/metrics"
	"github.com/erselk/ugur-sahan-website/pkg/kv"
	memkv "github.com/erselk/ugur-sahan-website/pkg/kv/memory"
	rediskv "github.com/erselk/ugur-sahan-website/pkg/kv/redis"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Cache struct {
	// nil when Redis is unavailable
	client *redis.Client
	// all key operations; shares client in Redis mode
	kvStore kv.Store
	// in-process pub/sub used when client is nil
	pubsubHub *PubSubHub

	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

// NewCache connects to Redis at addr (host:port or redis:// URL). An empty
// or unreachable addr selects in-memory mode.
func NewCache(addr string, logger *zap.SugaredLogger, metrics *metrics.Metrics) (*Cache, error) {
	if addr == "" {
		logger.Infow("No Redis address configured; using in-memory cache")
		return newMemoryCache(logger, metrics), nil
	}

	opt, err := rediskv.ParseOptions(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis address %q: %w", addr, err)
	}
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		logger.Warnw("Redis unavailable; using in-memory cache and pubsub", "addr", redactAddr(addr), "error", err)
		return newMemoryCache(logger, metrics), nil
	}

	logger.Infow("Connected to Redis", "addr", redactAddr(addr))
	return &Cache{
		client:  client,
		kvStore: rediskv.NewFromClient(client),
		logger:  logger,
		metrics: metrics,
	}, nil
}

func newMemoryCache(logger *zap.SugaredLogger, metrics *metrics.Metrics) *Cache {
	return &Cache{
		kvStore:   memkv.NewStore(),
		pubsubHub: NewPubSubHub(),
		logger:    logger,
		metrics:   metrics,
	}
}

// NewMemoryCache builds a cache that never touches the network.
func NewMemoryCache(logger *zap.SugaredLogger) *Cache {
	return newMemoryCache(logger, nil)
}

func redactAddr(addr string) string {
	u, err := url.Parse(addr)
	if err != nil || u.User == nil {
		return addr
	}
	return u.Redacted()
}

// Cache keys and channels
const (
	KeyPostGeneration = "blog:posts:gen"
	keyPostSlug       = "blog:post:slug"
	keyPostList       = "blog:posts:list"

	ChannelEvents = "blog:events"
)

// PostSlugKey addresses a cached published post for one generation.
func PostSlugKey(generation int64, slug string) string {
	return fmt.Sprintf("%s:%d:%s", keyPostSlug, generation, slug)
}

// PostListKey addresses a cached published listing; an empty category is
// the unfiltered list.
func PostListKey(generation int64, category string) string {
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf("%s:%d:%s", keyPostList, generation, category)
}

// KV exposes the underlying store so sessions share the cache backend.
func (c *Cache) KV() kv.Store {
	return c.kvStore
}

func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.kvStore.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			c.metrics.RecordCacheMiss(ctx, key)
			return ErrCacheMiss
		}
		c.logger.Errorw("Cache get error", "key", key, "error", err)
		return fmt.Errorf("cache get error: %w", err)
	}
	c.metrics.RecordCacheHit(ctx, key)
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	if err := c.kvStore.Set(ctx, key, data, ttl); err != nil {
		c.logger.Errorw("Cache set error", "key", key, "error", err)
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := c.kvStore.Del(ctx, keys...); err != nil {
		c.logger.Errorw("Cache delete error", "keys", keys, "error", err)
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	count, err := c.kvStore.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("cache exists error: %w", err)
	}
	return count > 0, nil
}

// Incr bumps a counter and returns its new value.
func (c *Cache) Incr(ctx context.Context, key string) (int64, error) {
	n, err := c.kvStore.IncrBy(ctx, key, 1)
	if err != nil {
		c.logger.Errorw("Cache incr error", "key", key, "error", err)
		return 0, fmt.Errorf("cache incr error: %w", err)
	}
	return n, nil
}

// Counter reads a counter written by Incr; a missing counter is zero.
func (c *Cache) Counter(ctx context.Context, key string) (int64, error) {
	data, err := c.kvStore.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache counter error: %w", err)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cache counter %s is not an integer: %w", key, err)
	}
	return n, nil
}

// Publish fans a JSON message out to subscribers of channel.
func (c *Cache) Publish(ctx context.Context, channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("pubsub marshal error: %w", err)
	}

	if c.client != nil {
		if err := c.client.Publish(ctx, channel, data).Err(); err != nil {
			c.logger.Errorw("Publish error", "channel", channel, "error", err)
			return fmt.Errorf("pubsub publish error: %w", err)
		}
		return nil
	}

	c.pubsubHub.Publish(channel, string(data))
	c.logger.Debugw("Published to in-memory pubsub", "channel", channel)
	return nil
}

// Subscribe returns a Redis subscription, or nil in in-memory mode.
func (c *Cache) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	if c.client != nil {
		return c.client.Subscribe(ctx, channels...)
	}
	return nil
}

// SubscribeInMemory returns an in-process subscription, or nil in Redis mode.
func (c *Cache) SubscribeInMemory(ctx context.Context, channels ...string) *Subscription {
	if c.pubsubHub != nil {
		return c.pubsubHub.Subscribe(ctx, channels...)
	}
	return nil
}

func (c *Cache) IsInMemoryMode() bool {
	return c.client == nil
}

func (c *Cache) Ping(ctx context.Context) error {
	if c.client != nil {
		return c.client.Ping(ctx).Err()
	}
	return nil
}

func (c *Cache) Close() error {
	var err error
	if c.client != nil {
		err = c.client.Close()
	}
	if closeErr := c.kvStore.Close(); err == nil {
		err = closeErr
	}
	return err
}

var ErrCacheMiss = errors.New("cache miss")
