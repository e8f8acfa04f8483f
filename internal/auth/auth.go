// Package auth signs editors in and resolves the session behind a request.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/db/interfaces"
	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/erselk/ugur-sahan-website/pkg/kv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNoSession          = errors.New("no active session")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("admin access required")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

const minPasswordLength = 8

// ProfileLookup is the part of the profile store login needs.
type ProfileLookup interface {
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
}

type Config struct {
	SessionTTL    time.Duration
	CookieName    string
	SecureCookies bool
}

type Service struct {
	profiles   ProfileLookup
	sessions   *SessionStore
	cookieName string
	secure     bool
	logger     *zap.SugaredLogger
}

func NewService(profiles ProfileLookup, store kv.Store, cfg Config, logger *zap.SugaredLogger) *Service {
	if cfg.CookieName == "" {
		cfg.CookieName = "blog_session"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &Service{
		profiles:   profiles,
		sessions:   NewSessionStore(store, cfg.SessionTTL),
		cookieName: cfg.CookieName,
		secure:     cfg.SecureCookies,
		logger:     logger,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// equalizeTiming spends a bcrypt comparison when no profile matched.
func equalizeTiming(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// Login checks the credentials and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if interfaces.IsNotFound(err) {
			equalizeTiming(password)
			s.logger.Infow("Login rejected", "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up profile: %w", err)
	}
	if profile.PasswordHash == "" {
		equalizeTiming(password)
		s.logger.Infow("Login rejected", "reason", "no password set", "user_id", profile.ID)
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		s.logger.Infow("Login rejected", "reason", "password mismatch", "user_id", profile.ID)
		return nil, ErrInvalidCredentials
	}

	session, err := s.sessions.Create(ctx, profile)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("Login succeeded", "user_id", profile.ID, "role", profile.Role)
	return session, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// TokenFromRequest reads a bearer token, falling back to the session cookie.
func (s *Service) TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(s.cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// CurrentSession resolves the request's session or returns ErrNoSession.
func (s *Service) CurrentSession(r *http.Request) (*Session, error) {
	return s.sessions.Get(r.Context(), s.TokenFromRequest(r))
}

func (s *Service) SetCookie(w http.ResponseWriter, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Service) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// HashPassword returns a bcrypt hash for storing on a profile.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

type ctxKey struct{}

func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, session)
}

// FromContext returns the session attached by the API middleware, or nil.
func FromContext(ctx context.Context) *Session {
	session, _ := ctx.Value(ctxKey{}).(*Session)
	return session
}
