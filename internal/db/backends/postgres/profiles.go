package postgres

import (
	"context"
	"strings"

	"github.com/erselk/ugur-sahan-website/internal/db/interfaces"
	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileColumns = `id::text, email, display_name, role, password_hash, created_at`

// ProfileStore implements interfaces.ProfileStore.
type ProfileStore struct {
	pool *pgxpool.Pool
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var (
		p    domain.Profile
		role string
	)
	if err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &role, &p.PasswordHash, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Role = domain.Role(role)
	return &p, nil
}

func (s *ProfileStore) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	const op = "get profile"
	if _, err := uuid.Parse(id); err != nil {
		return nil, interfaces.NewError(interfaces.KindNotFound, op)
	}
	out, err := scanProfile(s.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1::uuid`, id))
	if err != nil {
		return nil, mapError(op, err)
	}
	return out, nil
}

func (s *ProfileStore) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	out, err := scanProfile(s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
	if err != nil {
		return nil, mapError("get profile by email", err)
	}
	return out, nil
}

func (s *ProfileStore) Upsert(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	out, err := scanProfile(s.pool.QueryRow(ctx, `
		INSERT INTO profiles (email, display_name, role, password_hash)
		VALUES (lower($1), $2, $3, $4)
		ON CONFLICT ((lower(email))) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			role = EXCLUDED.role,
			password_hash = EXCLUDED.password_hash
		RETURNING `+profileColumns,
		strings.TrimSpace(profile.Email), profile.DisplayName, string(profile.Role), profile.PasswordHash))
	if err != nil {
		return nil, mapError("upsert profile", err)
	}
	return out, nil
}
