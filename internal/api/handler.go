package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/auth"
	"github.com/erselk/ugur-sahan-website/internal/composer"
	"github.com/erselk/ugur-sahan-website/internal/contact"
	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/erselk/ugur-sahan-website/internal/media"
	"go.uber.org/zap"
)

const maxJSONBody = 2 << 20

type PostService interface {
	Create(ctx context.Context, draft composer.Draft, authorID string) (*domain.Post, error)
	Update(ctx context.Context, id string, draft composer.Draft, authorID string) (*domain.Post, error)
	Delete(ctx context.Context, id, authorID string) error
	Get(ctx context.Context, id string) (*domain.Post, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Post, error)
	ListPublished(ctx context.Context, category string) ([]*domain.Post, error)
	Search(ctx context.Context, query string) ([]*domain.Post, error)
	ListAll(ctx context.Context) ([]*domain.Post, error)
	Counts(ctx context.Context) (total, published int64, err error)
}

type ContactService interface {
	Submit(ctx context.Context, sub contact.Submission) (*domain.Message, error)
	List(ctx context.Context) ([]*domain.Message, error)
	ToggleRead(ctx context.Context, id string) (*domain.Message, error)
	Counts(ctx context.Context) (total, unread int64, err error)
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Logout(ctx context.Context, token string) error
	TokenFromRequest(r *http.Request) string
	CurrentSession(r *http.Request) (*auth.Session, error)
	SetCookie(w http.ResponseWriter, session *auth.Session)
	ClearCookie(w http.ResponseWriter)
}

type Uploader interface {
	Upload(ctx context.Context, r io.Reader, contentType string) (*media.Result, error)
	MaxBytes() int64
}

type Translator interface {
	Translate(ctx context.Context, text string, source, target domain.Locale) (string, error)
}

// LiveFeed upgrades an admin request to the event websocket.
type LiveFeed interface {
	HandleWebSocket(w http.ResponseWriter, r *http.Request, userID string)
}

// HealthCheck is one readiness probe, such as a database ping.
type HealthCheck func(ctx context.Context) error

type Services struct {
	Posts      PostService
	Contact    ContactService
	Auth       Authenticator
	Uploads    Uploader
	Translator Translator
	Feed       LiveFeed
	Checks     map[string]HealthCheck
}

type Handler struct {
	posts      PostService
	contact    ContactService
	auth       Authenticator
	uploads    Uploader
	translator Translator
	feed       LiveFeed
	checks     map[string]HealthCheck
	logger     *zap.SugaredLogger
}

func NewHandler(svc Services, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		posts:      svc.Posts,
		contact:    svc.Contact,
		auth:       svc.Auth,
		uploads:    svc.Uploads,
		translator: svc.Translator,
		feed:       svc.Feed,
		checks:     svc.Checks,
		logger:     logger,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Readyz runs every readiness probe with a short deadline.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	dto := HealthDTO{Status: "ok", Checks: make(map[string]string, len(names))}
	status := http.StatusOK
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warnw("Readiness check failed", "check", name, "error", err)
			dto.Checks[name] = err.Error()
			dto.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		dto.Checks[name] = "ok"
	}
	h.writeJSON(w, status, dto)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeJSON reads a single JSON document of at most maxJSONBody bytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is empty", nil)
		}
		return badRequest("invalid JSON body", err)
	}
	return nil
}
