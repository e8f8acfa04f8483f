package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	CORSOrigins    []string
	RateLimitRPM   int
	RequestTimeout time.Duration
	// MediaDir is served under /media/ when set.
	MediaDir string
	Metrics  http.Handler
}

func (h *Handler) Routes(m *Middleware, cfg RouterConfig) *chi.Mux {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(m.RequestID)
	r.Use(m.RequestLogger)
	r.Use(m.Recoverer)
	r.Use(m.SecurityHeaders)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(m.CORS(cfg.CORSOrigins))
	r.Use(m.RateLimit(cfg.RateLimitRPM))

	// The websocket hijacks the connection, so it stays outside the
	// compression and timeout wrappers.
	r.With(h.RequireSession, h.RequireAdmin).Get("/v1/admin/ws", h.HandleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(m.Compress)
		r.Use(m.Timeout(cfg.RequestTimeout))

		r.Get("/healthz", h.Healthz)
		r.Get("/readyz", h.Readyz)
		if cfg.Metrics != nil {
			r.Handle("/metrics", cfg.Metrics)
		}
		if cfg.MediaDir != "" {
			r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.MediaDir))))
		}

		// Public
		r.Post("/v1/auth/login", h.Login)
		r.Get("/v1/posts", h.ListPosts)
		r.Get("/v1/posts/slug/{slug}", h.GetPostBySlug)
		r.Get("/v1/search", h.Search)
		r.Post("/v1/contact", h.SubmitContact)

		// Signed in
		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)

			r.Post("/v1/auth/logout", h.Logout)
			r.Get("/v1/auth/session", h.Session)

			r.Post("/v1/posts", h.CreatePost)
			r.Get("/v1/posts/{id}", h.GetPost)
			r.Put("/v1/posts/{id}", h.UpdatePost)
			r.Delete("/v1/posts/{id}", h.DeletePost)

			r.Post("/v1/uploads", h.UploadImage)
			r.Post("/v1/translate", h.Translate)
		})

		// Admin
		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)
			r.Use(h.RequireAdmin)

			r.Get("/v1/admin/posts", h.ListAllPosts)
			r.Get("/v1/admin/stats", h.Stats)
			r.Get("/v1/admin/messages", h.ListMessages)
			r.Post("/v1/admin/messages/{id}/toggle-read", h.ToggleMessageRead)
		})
	})

	return r
}
