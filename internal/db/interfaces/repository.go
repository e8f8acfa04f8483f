package interfaces

import (
	"context"

	"github.com/erselk/ugur-sahan-website/internal/domain"
)

// PostFilter narrows List and Count. The zero value matches every post.
type PostFilter struct {
	PublishedOnly bool
	Category      domain.Category
}

// PostStore persists writings. Update and Delete are scoped to the author:
// a post owned by someone else yields KindPermissionDenied, a missing one
// KindNotFound.
type PostStore interface {
	Insert(ctx context.Context, post *domain.Post) (*domain.Post, error)
	Update(ctx context.Context, id, authorID string, post *domain.Post) (*domain.Post, error)
	Delete(ctx context.Context, id, authorID string) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	// GetPublishedBySlug matches the slug of either locale.
	GetPublishedBySlug(ctx context.Context, slug string) (*domain.Post, error)
	// List returns posts newest first by created_at.
	List(ctx context.Context, filter PostFilter) ([]*domain.Post, error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
}

type MessageStore interface {
	Insert(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	// List returns messages newest first.
	List(ctx context.Context) ([]*domain.Message, error)
	ToggleRead(ctx context.Context, id string) (*domain.Message, error)
	Count(ctx context.Context, unreadOnly bool) (int64, error)
}

type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	// Upsert inserts a profile or updates the one with the same email.
	Upsert(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
}
