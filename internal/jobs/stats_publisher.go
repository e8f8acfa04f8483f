package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/erselk/ugur-sahan-website/internal/events"
	"go.uber.org/zap"
)

// StatsKey holds the last dashboard snapshot.
const StatsKey = "blog:stats"

type PostCounter interface {
	Counts(ctx context.Context) (total, published int64, err error)
}

type MessageCounter interface {
	Counts(ctx context.Context) (total, unread int64, err error)
}

// Bus is satisfied by *store.Cache.
type Bus interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Publish(ctx context.Context, channel string, message interface{}) error
}

type StatsPublisherConfig struct {
	Interval time.Duration
	Channel  string
}

type statsFrame struct {
	Type events.Type `json:"type"`
	domain.Stats
	Timestamp time.Time `json:"timestamp"`
}

// StatsPublisher refreshes the dashboard counters on an interval and pushes
// them to the live feed whenever they change.
type StatsPublisher struct {
	posts    PostCounter
	messages MessageCounter
	bus      Bus
	logger   *zap.SugaredLogger
	config   StatsPublisherConfig

	mu        sync.Mutex
	last      *domain.Stats
	cancelCtx context.CancelFunc
}

func NewStatsPublisher(posts PostCounter, messages MessageCounter, bus Bus, logger *zap.SugaredLogger, config StatsPublisherConfig) *StatsPublisher {
	if config.Interval <= 0 {
		config.Interval = DefaultStatsPublisherConfig().Interval
	}
	return &StatsPublisher{
		posts:    posts,
		messages: messages,
		bus:      bus,
		logger:   logger,
		config:   config,
	}
}

func (p *StatsPublisher) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancelCtx = cancel
	p.mu.Unlock()

	p.logger.Infow("Starting stats publisher", "interval", p.config.Interval, "channel", p.config.Channel)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Infow("Stats publisher stopping due to context cancellation")
			return ctx.Err()
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

func (p *StatsPublisher) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancelCtx != nil {
		p.cancelCtx()
	}
}

// Tick takes one snapshot. It reports whether a frame was published.
func (p *StatsPublisher) Tick(ctx context.Context) bool {
	var stats domain.Stats
	var err error
	if stats.TotalPosts, stats.PublishedPosts, err = p.posts.Counts(ctx); err != nil {
		p.logger.Warnw("Failed to count posts", "error", err)
		return false
	}
	if stats.TotalMessages, stats.UnreadMessages, err = p.messages.Counts(ctx); err != nil {
		p.logger.Warnw("Failed to count messages", "error", err)
		return false
	}

	p.mu.Lock()
	unchanged := p.last != nil && *p.last == stats
	p.mu.Unlock()
	if unchanged {
		return false
	}

	if err := p.bus.Set(ctx, StatsKey, stats, 2*p.config.Interval); err != nil {
		p.logger.Warnw("Failed to cache stats", "error", err)
	}
	frame := statsFrame{Type: events.StatsUpdated, Stats: stats, Timestamp: time.Now().UTC()}
	if err := p.bus.Publish(ctx, p.config.Channel, frame); err != nil {
		p.logger.Warnw("Failed to publish stats", "channel", p.config.Channel, "error", err)
		return false
	}
	p.logger.Debugw("Published stats", "posts", stats.TotalPosts, "unread", stats.UnreadMessages)

	p.mu.Lock()
	p.last = &stats
	p.mu.Unlock()
	return true
}

func DefaultStatsPublisherConfig() StatsPublisherConfig {
	return StatsPublisherConfig{
		Interval: 30 * time.Second,
		Channel:  "blog:events",
	}
}
