package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/db/interfaces"
	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postColumns = `id::text, title, content, excerpt, slug, category, tags, image_url,
	reading_time, to_char(created_at, 'YYYY-MM-DD'), updated_at, author_id::text, is_published, views`

// PostStore implements interfaces.PostStore on the writings table.
type PostStore struct {
	pool *pgxpool.Pool
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*domain.Post, error) {
	var (
		p                                 domain.Post
		title, content, excerpt, slug, tg []byte
		category                          string
		updatedAt                         *time.Time
	)
	err := row.Scan(&p.ID, &title, &content, &excerpt, &slug, &category, &tg, &p.ImageURL,
		&p.ReadingTime, &p.CreatedAt, &updatedAt, &p.AuthorID, &p.IsPublished, &p.Views)
	if err != nil {
		return nil, err
	}
	for _, field := range []struct {
		raw []byte
		dst *domain.LocalizedText
	}{{title, &p.Title}, {content, &p.Content}, {excerpt, &p.Excerpt}, {slug, &p.Slug}} {
		if err := json.Unmarshal(field.raw, field.dst); err != nil {
			return nil, fmt.Errorf("decode localized column: %w", err)
		}
	}
	if len(tg) > 0 {
		if err := json.Unmarshal(tg, &p.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	p.Category = domain.Category(category)
	p.UpdatedAt = updatedAt
	return &p, nil
}

// postArgs encodes the jsonb columns as text; empty tags become NULL.
func postArgs(p *domain.Post) ([]any, error) {
	args := make([]any, 0, 6)
	for _, v := range []domain.LocalizedText{p.Title, p.Content, p.Excerpt, p.Slug} {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		args = append(args, string(raw))
	}
	if p.Tags.IsEmpty() {
		args = append(args, nil)
	} else {
		raw, err := json.Marshal(p.Tags)
		if err != nil {
			return nil, err
		}
		args = append(args, string(raw))
	}
	return args, nil
}

func (s *PostStore) Insert(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	const op = "insert post"
	args, err := postArgs(post)
	if err != nil {
		return nil, &interfaces.Error{Kind: interfaces.KindUnknown, Op: op, Err: err}
	}
	var createdAt any
	if post.CreatedAt != "" {
		createdAt = post.CreatedAt
	}
	args = append(args, string(post.Category), post.ImageURL, post.ReadingTime, createdAt, post.AuthorID, post.IsPublished)

	row := s.pool.QueryRow(ctx, `
		INSERT INTO writings (title, content, excerpt, slug, tags, category, image_url,
			reading_time, created_at, author_id, is_published)
		VALUES ($1::jsonb, $2::jsonb, $3::jsonb, $4::jsonb, $5::jsonb, $6, $7,
			$8, COALESCE($9::date, current_date), $10::uuid, $11)
		RETURNING `+postColumns, args...)

	out, err := scanPost(row)
	if err != nil {
		return nil, mapError(op, err)
	}
	return out, nil
}

func (s *PostStore) Update(ctx context.Context, id, authorID string, post *domain.Post) (*domain.Post, error) {
	const op = "update post"
	if _, err := uuid.Parse(id); err != nil {
		return nil, interfaces.NewError(interfaces.KindNotFound, op)
	}
	args, err := postArgs(post)
	if err != nil {
		return nil, &interfaces.Error{Kind: interfaces.KindUnknown, Op: op, Err: err}
	}
	var createdAt any
	if post.CreatedAt != "" {
		createdAt = post.CreatedAt
	}
	args = append(args, string(post.Category), post.ImageURL, post.ReadingTime, createdAt,
		post.UpdatedAt, id, ownerParam(authorID))

	row := s.pool.QueryRow(ctx, `
		UPDATE writings SET
			title = $1::jsonb, content = $2::jsonb, excerpt = $3::jsonb, slug = $4::jsonb,
			tags = $5::jsonb, category = $6, image_url = $7, reading_time = $8,
			created_at = COALESCE($9::date, created_at),
			updated_at = COALESCE($10::timestamptz, now())
		WHERE id = $11::uuid AND author_id = $12::uuid
		RETURNING `+postColumns, args...)

	out, err := scanPost(row)
	if err != nil {
		mapped := mapError(op, err)
		if interfaces.IsNotFound(mapped) {
			return nil, s.missingOrForeign(ctx, op, id)
		}
		return nil, mapped
	}
	return out, nil
}

func (s *PostStore) Delete(ctx context.Context, id, authorID string) error {
	const op = "delete post"
	if _, err := uuid.Parse(id); err != nil {
		return interfaces.NewError(interfaces.KindNotFound, op)
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM writings WHERE id = $1::uuid AND author_id = $2::uuid`, id, ownerParam(authorID))
	if err != nil {
		return mapError(op, err)
	}
	if tag.RowsAffected() == 0 {
		return s.missingOrForeign(ctx, op, id)
	}
	return nil
}

// missingOrForeign decides why an author-scoped write touched no row.
func (s *PostStore) missingOrForeign(ctx context.Context, op, id string) error {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM writings WHERE id = $1::uuid)`, id).Scan(&exists); err != nil {
		return mapError(op, err)
	}
	if exists {
		return interfaces.NewError(interfaces.KindPermissionDenied, op)
	}
	return interfaces.NewError(interfaces.KindNotFound, op)
}

func (s *PostStore) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	const op = "get post"
	if _, err := uuid.Parse(id); err != nil {
		return nil, interfaces.NewError(interfaces.KindNotFound, op)
	}
	out, err := scanPost(s.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM writings WHERE id = $1::uuid`, id))
	if err != nil {
		return nil, mapError(op, err)
	}
	return out, nil
}

func (s *PostStore) GetPublishedBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	out, err := scanPost(s.pool.QueryRow(ctx, `
		SELECT `+postColumns+` FROM writings
		WHERE is_published AND (slug ->> 'tr' = $1 OR slug ->> 'en' = $1)
		LIMIT 1`, slug))
	if err != nil {
		return nil, mapError("get post by slug", err)
	}
	return out, nil
}

func (s *PostStore) List(ctx context.Context, filter interfaces.PostFilter) ([]*domain.Post, error) {
	const op = "list posts"
	rows, err := s.pool.Query(ctx, `
		SELECT `+postColumns+` FROM writings
		WHERE ($1::bool = false OR is_published) AND ($2::text = '' OR category = $2::text)
		ORDER BY created_at DESC, inserted_at DESC`,
		filter.PublishedOnly, string(filter.Category))
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	var out []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return out, nil
}

func (s *PostStore) Count(ctx context.Context, filter interfaces.PostFilter) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM writings
		WHERE ($1::bool = false OR is_published) AND ($2::text = '' OR category = $2::text)`,
		filter.PublishedOnly, string(filter.Category)).Scan(&n)
	if err != nil {
		return 0, mapError("count posts", err)
	}
	return n, nil
}

// ownerParam keeps malformed author ids from failing the cast; they can
// never own a row.
func ownerParam(authorID string) string {
	if _, err := uuid.Parse(authorID); err != nil {
		return uuid.Nil.String()
	}
	return authorID
}
