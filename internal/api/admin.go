package api

import (
	"net/http"

	"github.com/erselk/ugur-sahan-website/internal/auth"
	"github.com/erselk/ugur-sahan-website/internal/domain"
)

func (h *Handler) ListAllPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	var stats domain.Stats
	var err error

	if stats.TotalPosts, stats.PublishedPosts, err = h.posts.Counts(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	if stats.TotalMessages, stats.UnreadMessages, err = h.contact.Counts(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.feed.HandleWebSocket(w, r, auth.FromContext(r.Context()).UserID)
}
