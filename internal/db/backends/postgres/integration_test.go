//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/db/interfaces"
	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	db        *Database
	author    *domain.Profile
	other     *domain.Profile
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := tcpostgres.Run(s.ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("blog_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := Open(s.ctx, Config{DSN: dsn, MaxConns: 4}, zap.NewNop().Sugar())
	s.Require().NoError(err)
	s.Require().NoError(db.Migrate(s.ctx))
	s.db = db

	s.author, err = db.Profiles().Upsert(s.ctx, &domain.Profile{Email: "Ugur@Example.com", DisplayName: "Uğur", Role: domain.RoleAdmin})
	s.Require().NoError(err)
	s.other, err = db.Profiles().Upsert(s.ctx, &domain.Profile{Email: "guest@example.com", Role: domain.RoleAuthor})
	s.Require().NoError(err)
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.pool.Exec(s.ctx, "DELETE FROM writings")
	_, _ = s.db.pool.Exec(s.ctx, "DELETE FROM contact_messages")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) newPost(slugTR, slugEN string) *domain.Post {
	p := &domain.Post{
		Title:       domain.LocalizedText{domain.LocaleTR: "Başlık", domain.LocaleEN: "Title"},
		Content:     domain.LocalizedText{domain.LocaleTR: "İçerik", domain.LocaleEN: "Content"},
		Excerpt:     domain.LocalizedText{domain.LocaleTR: "Özet", domain.LocaleEN: "Summary"},
		Slug:        domain.LocalizedText{domain.LocaleTR: slugTR, domain.LocaleEN: slugEN},
		Category:    domain.CategoryEssays,
		ImageURL:    "/ugursahan.webp",
		ReadingTime: 3,
		CreatedAt:   "2024-03-15",
		AuthorID:    s.author.ID,
		IsPublished: true,
	}
	p.Tags.Set(domain.LocaleTR, []string{"deneme"})
	return p
}

func (s *PostgresIntegrationSuite) TestPostRoundTrip() {
	store := s.db.Posts()

	created, err := store.Insert(s.ctx, s.newPost("baslik", "title"))
	s.Require().NoError(err)
	s.NotEmpty(created.ID)
	s.Equal("2024-03-15", created.CreatedAt)
	s.Equal([]string{"deneme"}, created.Tags.Get(domain.LocaleTR))
	s.Nil(created.UpdatedAt)

	bySlug, err := store.GetPublishedBySlug(s.ctx, "title")
	s.Require().NoError(err)
	s.Equal(created.ID, bySlug.ID)
	s.Equal("İçerik", bySlug.Content[domain.LocaleTR])
}

func (s *PostgresIntegrationSuite) TestMalformedIDIsNotFound() {
	_, err := s.db.Posts().GetByID(s.ctx, "not-a-uuid")
	s.Equal(interfaces.KindNotFound, interfaces.KindOf(err))
}

func (s *PostgresIntegrationSuite) TestDuplicateSlug() {
	store := s.db.Posts()
	_, err := store.Insert(s.ctx, s.newPost("ayni", "same"))
	s.Require().NoError(err)

	_, err = store.Insert(s.ctx, s.newPost("farkli", "same"))
	s.Equal(interfaces.KindDuplicate, interfaces.KindOf(err))

	var storeErr *interfaces.Error
	s.ErrorAs(err, &storeErr)
	s.Equal("23505", storeErr.Code)
}

func (s *PostgresIntegrationSuite) TestUpdateOwnership() {
	store := s.db.Posts()
	created, err := store.Insert(s.ctx, s.newPost("sahip", "owner"))
	s.Require().NoError(err)

	edit := created.Clone()
	edit.Title[domain.LocaleEN] = "Edited"

	_, err = store.Update(s.ctx, created.ID, s.other.ID, edit)
	s.Equal(interfaces.KindPermissionDenied, interfaces.KindOf(err))

	_, err = store.Update(s.ctx, "00000000-0000-0000-0000-000000000001", s.author.ID, edit)
	s.Equal(interfaces.KindNotFound, interfaces.KindOf(err))

	updated, err := store.Update(s.ctx, created.ID, s.author.ID, edit)
	s.Require().NoError(err)
	s.Equal("Edited", updated.Title[domain.LocaleEN])
	s.NotNil(updated.UpdatedAt)

	s.Equal(interfaces.KindPermissionDenied, interfaces.KindOf(store.Delete(s.ctx, created.ID, s.other.ID)))
	s.NoError(store.Delete(s.ctx, created.ID, s.author.ID))
	s.Equal(interfaces.KindNotFound, interfaces.KindOf(store.Delete(s.ctx, created.ID, s.author.ID)))
}

func (s *PostgresIntegrationSuite) TestListFilters() {
	store := s.db.Posts()
	older := s.newPost("eski", "old")
	older.CreatedAt = "2023-01-01"
	_, err := store.Insert(s.ctx, older)
	s.Require().NoError(err)

	draft := s.newPost("taslak", "draft")
	draft.IsPublished = false
	draft.Category = domain.CategoryPoems
	_, err = store.Insert(s.ctx, draft)
	s.Require().NoError(err)

	_, err = store.Insert(s.ctx, s.newPost("yeni", "new"))
	s.Require().NoError(err)

	published, err := store.List(s.ctx, interfaces.PostFilter{PublishedOnly: true})
	s.Require().NoError(err)
	s.Require().Len(published, 2)
	s.Equal("new", published[0].Slug[domain.LocaleEN])

	poems, err := store.Count(s.ctx, interfaces.PostFilter{Category: domain.CategoryPoems})
	s.Require().NoError(err)
	s.Equal(int64(1), poems)
}

func (s *PostgresIntegrationSuite) TestMessages() {
	store := s.db.Messages()
	msg, err := store.Insert(s.ctx, &domain.Message{Name: "Ali", Email: "ali@example.com", Subject: "Merhaba", Message: "Selam"})
	s.Require().NoError(err)
	s.False(msg.IsRead)

	toggled, err := store.ToggleRead(s.ctx, msg.ID)
	s.Require().NoError(err)
	s.True(toggled.IsRead)

	unread, err := store.Count(s.ctx, true)
	s.Require().NoError(err)
	s.Equal(int64(0), unread)
}

func (s *PostgresIntegrationSuite) TestProfileLookupIsCaseInsensitive() {
	p, err := s.db.Profiles().GetByEmail(s.ctx, "UGUR@example.com")
	s.Require().NoError(err)
	s.Equal(s.author.ID, p.ID)
	s.Equal("ugur@example.com", p.Email)
}
