package memory

import (
	"context"
	"sort"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/db/interfaces"
	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/google/uuid"
)

type postRecord struct {
	post *domain.Post
	seq  int64
}

// PostStore implements interfaces.PostStore.
type PostStore struct {
	db *Database
}

func (s *PostStore) Insert(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p := post.Clone()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, exists := s.db.posts[p.ID]; exists {
		return nil, interfaces.NewError(interfaces.KindDuplicate, "insert post")
	}
	if err := s.checkSlugs(p, ""); err != nil {
		return nil, err
	}

	s.db.posts[p.ID] = postRecord{post: p, seq: s.db.nextSeq()}
	return p.Clone(), nil
}

func (s *PostStore) Update(ctx context.Context, id, authorID string, post *domain.Post) (*domain.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec, ok := s.db.posts[id]
	if !ok {
		return nil, interfaces.NewError(interfaces.KindNotFound, "update post")
	}
	if rec.post.AuthorID != authorID {
		return nil, interfaces.NewError(interfaces.KindPermissionDenied, "update post")
	}

	p := post.Clone()
	p.ID = id
	p.AuthorID = rec.post.AuthorID
	p.IsPublished = rec.post.IsPublished
	p.Views = rec.post.Views
	if p.UpdatedAt == nil {
		now := time.Now().UTC()
		p.UpdatedAt = &now
	}
	if err := s.checkSlugs(p, id); err != nil {
		return nil, err
	}

	s.db.posts[id] = postRecord{post: p, seq: rec.seq}
	return p.Clone(), nil
}

func (s *PostStore) Delete(ctx context.Context, id, authorID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec, ok := s.db.posts[id]
	if !ok {
		return interfaces.NewError(interfaces.KindNotFound, "delete post")
	}
	if rec.post.AuthorID != authorID {
		return interfaces.NewError(interfaces.KindPermissionDenied, "delete post")
	}
	delete(s.db.posts, id)
	return nil
}

func (s *PostStore) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	rec, ok := s.db.posts[id]
	if !ok {
		return nil, interfaces.NewError(interfaces.KindNotFound, "get post")
	}
	return rec.post.Clone(), nil
}

func (s *PostStore) GetPublishedBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, rec := range s.db.posts {
		if !rec.post.IsPublished {
			continue
		}
		for _, l := range domain.Locales {
			if rec.post.Slug[l] == slug {
				return rec.post.Clone(), nil
			}
		}
	}
	return nil, interfaces.NewError(interfaces.KindNotFound, "get post by slug")
}

func (s *PostStore) List(ctx context.Context, filter interfaces.PostFilter) ([]*domain.Post, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	records := s.matching(filter)
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.post.CreatedAt != b.post.CreatedAt {
			return a.post.CreatedAt > b.post.CreatedAt
		}
		return a.seq > b.seq
	})

	out := make([]*domain.Post, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.post.Clone())
	}
	return out, nil
}

func (s *PostStore) Count(ctx context.Context, filter interfaces.PostFilter) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return int64(len(s.matching(filter))), nil
}

// matching filters posts. Caller holds mu.
func (s *PostStore) matching(filter interfaces.PostFilter) []postRecord {
	var out []postRecord
	for _, rec := range s.db.posts {
		if filter.PublishedOnly && !rec.post.IsPublished {
			continue
		}
		if filter.Category != "" && rec.post.Category != filter.Category {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// checkSlugs enforces per-locale slug uniqueness. Caller holds mu.
func (s *PostStore) checkSlugs(p *domain.Post, skipID string) error {
	for id, rec := range s.db.posts {
		if id == skipID {
			continue
		}
		for _, l := range domain.Locales {
			if slug := p.Slug[l]; slug != "" && rec.post.Slug[l] == slug {
				return &interfaces.Error{
					Kind:   interfaces.KindDuplicate,
					Op:     "save post",
					Detail: "slug " + string(l) + " '" + slug + "' already exists",
				}
			}
		}
	}
	return nil
}
