package api

import (
	"net/http"

	"github.com/erselk/ugur-sahan-website/internal/contact"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var sub contact.Submission
	if err := decodeJSON(w, r, &sub); err != nil {
		h.writeError(w, r, err)
		return
	}

	msg, err := h.contact.Submit(r.Context(), sub)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, ContactResponse{Message: "message sent", Data: msg})
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.contact.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, msgs)
}

func (h *Handler) ToggleMessageRead(w http.ResponseWriter, r *http.Request) {
	msg, err := h.contact.ToggleRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, msg)
}
