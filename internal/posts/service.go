// Package posts is the application service for writings: composing and
// persisting edits, and serving cached public reads.
package posts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/composer"
	"github.com/erselk/ugur-sahan-website/internal/db/interfaces"
	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/erselk/ugur-sahan-website/internal/events"
	"github.com/erselk/ugur-sahan-website/internal/search"
	"github.com/erselk/ugur-sahan-website/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Composer interface {
	Compose(ctx context.Context, draft composer.Draft, authorID string) (*domain.Post, error)
}

// Cache is the subset of store.Cache the service reads through.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Counter(ctx context.Context, key string) (int64, error)
}

type Recorder interface {
	RecordPostWrite(ctx context.Context, op string, ok bool)
}

type Service struct {
	store    interfaces.PostStore
	composer Composer
	cache    Cache
	cacheTTL time.Duration
	notifier events.Notifier
	metrics  Recorder
	logger   *zap.SugaredLogger
	now      func() time.Time

	group singleflight.Group
}

type Config struct {
	CacheTTL time.Duration
}

func NewService(posts interfaces.PostStore, c Composer, cache Cache, notifier events.Notifier, metrics Recorder, cfg Config, logger *zap.SugaredLogger) *Service {
	if notifier == nil {
		notifier = events.Nop{}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &Service{
		store:    posts,
		composer: c,
		cache:    cache,
		cacheTTL: cfg.CacheTTL,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) recordWrite(ctx context.Context, op string, err error) {
	if s.metrics != nil {
		s.metrics.RecordPostWrite(ctx, op, err == nil)
	}
}

// Create composes the draft and stores it as a published post.
func (s *Service) Create(ctx context.Context, draft composer.Draft, authorID string) (post *domain.Post, err error) {
	defer func() { s.recordWrite(ctx, "create", err) }()

	composed, err := s.composer.Compose(ctx, draft, authorID)
	if err != nil {
		return nil, err
	}
	created, err := s.store.Insert(ctx, composed)
	if err != nil {
		s.logger.Errorw("Failed to insert post", "author_id", authorID, "slug", composed.Slug, "error", err)
		return nil, err
	}

	s.logger.Infow("Post created", "id", created.ID, "author_id", authorID, "slug", created.Slug)
	s.invalidate(ctx)
	s.notifier.Notify(ctx, events.PostEvent(events.PostCreated, created))
	return created, nil
}

// Update recomposes the post. Publication state, views and author survive;
// a draft without a date keeps the stored one.
func (s *Service) Update(ctx context.Context, id string, draft composer.Draft, authorID string) (post *domain.Post, err error) {
	defer func() { s.recordWrite(ctx, "update", err) }()

	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != authorID {
		return nil, interfaces.NewError(interfaces.KindPermissionDenied, "update post")
	}
	if draft.CreatedAt == "" {
		draft.CreatedAt = existing.CreatedAt
	}

	composed, err := s.composer.Compose(ctx, draft, authorID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	composed.UpdatedAt = &now

	updated, err := s.store.Update(ctx, id, authorID, composed)
	if err != nil {
		s.logger.Errorw("Failed to update post", "id", id, "author_id", authorID, "error", err)
		return nil, err
	}

	s.logger.Infow("Post updated", "id", id, "author_id", authorID)
	s.invalidate(ctx)
	s.notifier.Notify(ctx, events.PostEvent(events.PostUpdated, updated))
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id, authorID string) (err error) {
	defer func() { s.recordWrite(ctx, "delete", err) }()

	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id, authorID); err != nil {
		return err
	}

	s.logger.Infow("Post deleted", "id", id, "author_id", authorID)
	s.invalidate(ctx)
	s.notifier.Notify(ctx, events.PostEvent(events.PostDeleted, existing))
	return nil
}

// Get returns any post, published or not.
func (s *Service) Get(ctx context.Context, id string) (*domain.Post, error) {
	return s.store.GetByID(ctx, id)
}

// ListAll returns every post for the admin area, newest first.
func (s *Service) ListAll(ctx context.Context) ([]*domain.Post, error) {
	return s.store.List(ctx, interfaces.PostFilter{})
}

// Counts returns the total and published post counts.
func (s *Service) Counts(ctx context.Context) (total, published int64, err error) {
	total, err = s.store.Count(ctx, interfaces.PostFilter{})
	if err != nil {
		return 0, 0, err
	}
	published, err = s.store.Count(ctx, interfaces.PostFilter{PublishedOnly: true})
	if err != nil {
		return 0, 0, err
	}
	return total, published, nil
}

// GetBySlug returns the published post with slug in either locale.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	if slug == "" {
		return nil, interfaces.NewError(interfaces.KindNotFound, "get post by slug")
	}
	var post domain.Post
	err := s.cached(ctx, func(gen int64) string { return store.PostSlugKey(gen, slug) }, &post, func() (interface{}, error) {
		return s.store.GetPublishedBySlug(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPublished lists published posts, optionally for one category given by
// label or alias.
func (s *Service) ListPublished(ctx context.Context, categoryFilter string) ([]*domain.Post, error) {
	var category domain.Category
	if categoryFilter != "" {
		c, ok := domain.CategoryFromFilter(categoryFilter)
		if !ok {
			return nil, domain.NewValidationError("category", domain.ReasonInvalid)
		}
		category = c
	}

	var posts []*domain.Post
	err := s.cached(ctx, func(gen int64) string { return store.PostListKey(gen, string(category)) }, &posts, func() (interface{}, error) {
		list, err := s.store.List(ctx, interfaces.PostFilter{PublishedOnly: true, Category: category})
		if list == nil && err == nil {
			list = []*domain.Post{}
		}
		return list, err
	})
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*domain.Post{}
	}
	return posts, nil
}

// Search matches published posts against query.
func (s *Service) Search(ctx context.Context, query string) ([]*domain.Post, error) {
	posts, err := s.ListPublished(ctx, "")
	if err != nil {
		return nil, err
	}
	return search.Filter(posts, query), nil
}

// cached reads key (built from the current generation) into dest, loading
// and filling the cache on a miss. Concurrent misses for one key share a
// single load. Cache failures degrade to a direct load.
func (s *Service) cached(ctx context.Context, keyFor func(gen int64) string, dest interface{}, load func() (interface{}, error)) error {
	gen, err := s.cache.Counter(ctx, store.KeyPostGeneration)
	if err != nil {
		s.logger.Warnw("Cache generation unavailable; reading through", "error", err)
		v, err := load()
		if err != nil {
			return err
		}
		return assign(dest, v)
	}
	key := keyFor(gen)

	if err := s.cache.Get(ctx, key, dest); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrCacheMiss) {
		s.logger.Warnw("Cache read failed", "key", key, "error", err)
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		v, err := load()
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, v, s.cacheTTL); err != nil {
			s.logger.Warnw("Cache write failed", "key", key, "error", err)
		}
		return v, nil
	})
	if err != nil {
		return err
	}
	return assign(dest, v)
}

// assign copies a loaded value into dest, deep-copying posts so callers
// never share them.
func assign(dest, v interface{}) error {
	switch d := dest.(type) {
	case *domain.Post:
		p, ok := v.(*domain.Post)
		if !ok {
			return fmt.Errorf("cached value is %T, want *domain.Post", v)
		}
		*d = *p.Clone()
	case *[]*domain.Post:
		list, ok := v.([]*domain.Post)
		if !ok {
			return fmt.Errorf("cached value is %T, want []*domain.Post", v)
		}
		out := make([]*domain.Post, len(list))
		for i, p := range list {
			out[i] = p.Clone()
		}
		*d = out
	default:
		return fmt.Errorf("unsupported cache destination %T", dest)
	}
	return nil
}

// invalidate bumps the generation so every cached public read goes stale.
func (s *Service) invalidate(ctx context.Context) {
	if _, err := s.cache.Incr(ctx, store.KeyPostGeneration); err != nil {
		s.logger.Errorw("Failed to invalidate post cache", "error", err)
	}
}
