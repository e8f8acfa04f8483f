package db

import (
	"context"
	"fmt"

	"github.com/erselk/ugur-sahan-website/internal/db/interfaces"
	"github.com/erselk/ugur-sahan-website/internal/domain"
)

// SamplePosts are the writings seeded into an empty development database.
func SamplePosts(authorID string) []*domain.Post {
	first := &domain.Post{
		Title: domain.LocalizedText{
			domain.LocaleTR: "Sabah Kahvesi",
			domain.LocaleEN: "Morning Coffee",
		},
		Content: domain.LocalizedText{
			domain.LocaleTR: "Güne bir fincan kahveyle başlamak, sessizliği dinlemek demektir.",
			domain.LocaleEN: "Starting the day with a cup of coffee means listening to the silence.",
		},
		Excerpt: domain.LocalizedText{
			domain.LocaleTR: "Güne bir fincan kahveyle başlamak...",
			domain.LocaleEN: "Starting the day with a cup of coffee...",
		},
		Slug: domain.LocalizedText{
			domain.LocaleTR: "sabah-kahvesi",
			domain.LocaleEN: "morning-coffee",
		},
		Category:    domain.CategoryTastings,
		ImageURL:    "/ugursahan.webp",
		ReadingTime: 1,
		CreatedAt:   "2024-01-15",
		AuthorID:    authorID,
		IsPublished: true,
	}
	first.Tags.Set(domain.LocaleTR, []string{"kahve", "sabah"})
	first.Tags.Set(domain.LocaleEN, []string{"coffee", "morning"})

	second := &domain.Post{
		Title: domain.LocalizedText{
			domain.LocaleTR: "Girişimin İlk Günü",
			domain.LocaleEN: "Day One of a Venture",
		},
		Content: domain.LocalizedText{
			domain.LocaleTR: "Her girişim bir soruyla başlar ve cevabı sahada bulunur.",
			domain.LocaleEN: "Every venture starts with a question and finds its answer in the field.",
		},
		Excerpt: domain.LocalizedText{
			domain.LocaleTR: "Her girişim bir soruyla başlar...",
			domain.LocaleEN: "Every venture starts with a question...",
		},
		Slug: domain.LocalizedText{
			domain.LocaleTR: "girisimin-ilk-gunu",
			domain.LocaleEN: "day-one-of-a-venture",
		},
		Category:    domain.CategoryInnovation,
		ImageURL:    "/ugursahan.webp",
		ReadingTime: 1,
		CreatedAt:   "2024-02-03",
		AuthorID:    authorID,
		IsPublished: true,
	}
	return []*domain.Post{first, second}
}

// Seed creates the admin profile and, when no posts exist yet, the sample
// posts. It is safe to run repeatedly.
func Seed(ctx context.Context, database interfaces.Database, admin *domain.Profile) (*domain.Profile, error) {
	profile, err := database.Profiles().Upsert(ctx, admin)
	if err != nil {
		return nil, fmt.Errorf("seed admin profile: %w", err)
	}

	n, err := database.Posts().Count(ctx, interfaces.PostFilter{})
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	if n > 0 {
		return profile, nil
	}

	for _, p := range SamplePosts(profile.ID) {
		if _, err := database.Posts().Insert(ctx, p); err != nil {
			return nil, fmt.Errorf("seed post %s: %w", p.Slug[domain.LocaleEN], err)
		}
	}
	return profile, nil
}
