package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/erselk/ugur-sahan-website/internal/auth"
	"github.com/erselk/ugur-sahan-website/internal/composer"
	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/go-chi/chi/v5"
)

// toDraft converts the wire form into a composer draft. Only shape errors
// are reported here; the composer validates content.
func (req *PostRequest) toDraft() (composer.Draft, error) {
	verr := &domain.ValidationError{}

	// an unknown source language is reported by the composer
	var tags domain.Tags
	if source, ok := domain.ParseLocale(req.SourceLanguage); ok {
		parsed, err := domain.ParseTags(req.Tags, source)
		if err != nil {
			verr.Add("tags", domain.ReasonInvalid)
		}
		tags = parsed
	}

	readingTime, ok := rawScalar(req.ReadingTime)
	if !ok {
		verr.Add("reading_time", domain.ReasonInvalid)
	}

	if !verr.Empty() {
		return composer.Draft{}, verr
	}
	return composer.Draft{
		Title:           req.Title,
		Content:         req.Content,
		Excerpt:         req.Excerpt,
		Tags:            tags,
		Category:        req.Category,
		ImageURL:        req.ImageURL,
		CreatedAt:       req.CreatedAt,
		ReadingTime:     readingTime,
		SourceLocale:    req.SourceLanguage,
		ShouldTranslate: req.ShouldTranslate,
	}, nil
}

// rawScalar accepts a JSON string or number and returns its text; null and
// absent give "".
func rawScalar(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", true
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false
		}
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return "", false
	}
	return n.String(), true
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPublished(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) GetPostBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, post)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.Search(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) readDraft(w http.ResponseWriter, r *http.Request) (composer.Draft, error) {
	var req PostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return composer.Draft{}, err
	}
	return req.toDraft()
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())

	draft, err := h.readDraft(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	post, err := h.posts.Create(r.Context(), draft, session.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, post)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, post)
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())

	draft, err := h.readDraft(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	post, err := h.posts.Update(r.Context(), chi.URLParam(r, "id"), draft, session.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, post)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())

	if err := h.posts.Delete(r.Context(), chi.URLParam(r, "id"), session.UserID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
