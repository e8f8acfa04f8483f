package memory

import (
	"context"
	"strings"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/db/interfaces"
	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/google/uuid"
)

type profileRecord struct {
	profile domain.Profile
}

// ProfileStore implements interfaces.ProfileStore. Profiles are keyed by id.
type ProfileStore struct {
	db *Database
}

func (s *ProfileStore) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	rec, ok := s.db.profiles[id]
	if !ok {
		return nil, interfaces.NewError(interfaces.KindNotFound, "get profile")
	}
	p := rec.profile
	return &p, nil
}

func (s *ProfileStore) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	if rec := s.findByEmail(email); rec != nil {
		p := rec.profile
		return &p, nil
	}
	return nil, interfaces.NewError(interfaces.KindNotFound, "get profile by email")
}

func (s *ProfileStore) Upsert(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p := *profile
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))

	if rec := s.findByEmail(p.Email); rec != nil {
		p.ID = rec.profile.ID
		p.CreatedAt = rec.profile.CreatedAt
		rec.profile = p
		return &p, nil
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.db.profiles[p.ID] = &profileRecord{profile: p}
	return &p, nil
}

// findByEmail scans profiles. Caller holds mu.
func (s *ProfileStore) findByEmail(email string) *profileRecord {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, rec := range s.db.profiles {
		if rec.profile.Email == email {
			return rec
		}
	}
	return nil
}
