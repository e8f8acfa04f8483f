package api

import (
	"net/http"

	"github.com/erselk/ugur-sahan-website/internal/auth"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.auth.SetCookie(w, session)
	h.writeJSON(w, http.StatusOK, sessionDTO(session, true))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), h.auth.TokenFromRequest(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.auth.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, sessionDTO(auth.FromContext(r.Context()), false))
}

// RequireSession rejects requests without a live session and stores the
// session in the request context.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := h.auth.CurrentSession(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
	})
}

// RequireAdmin must run after RequireSession.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.FromContext(r.Context()).IsAdmin() {
			h.writeError(w, r, auth.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
