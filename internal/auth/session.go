package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/erselk/ugur-sahan-website/pkg/kv"
)

const sessionKeyPrefix = "blog:session:"

// Session is the signed-in state carried by an opaque token.
type Session struct {
	Token       string      `json:"token"`
	UserID      string      `json:"user_id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Role        domain.Role `json:"role"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == domain.RoleAdmin
}

// SessionStore keeps sessions in a kv.Store with the session TTL as expiry.
type SessionStore struct {
	kv  kv.Store
	ttl time.Duration
	now func() time.Time
}

func NewSessionStore(store kv.Store, ttl time.Duration) *SessionStore {
	return &SessionStore{kv: store, ttl: ttl, now: time.Now}
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *SessionStore) Create(ctx context.Context, profile *domain.Profile) (*Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	session := &Session{
		Token:       token,
		UserID:      profile.ID,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		Role:        profile.Role,
		ExpiresAt:   s.now().Add(s.ttl).UTC(),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := s.kv.Set(ctx, sessionKeyPrefix+token, data, s.ttl); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return session, nil
}

// Get returns ErrNoSession for unknown or expired tokens.
func (s *SessionStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	data, err := s.kv.Get(ctx, sessionKeyPrefix+token)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if !s.now().Before(session.ExpiresAt) {
		return nil, ErrNoSession
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if _, err := s.kv.Del(ctx, sessionKeyPrefix+token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
