package api

import (
	"net/http"

	"github.com/erselk/ugur-sahan-website/internal/domain"
)

func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	verr := &domain.ValidationError{}
	if req.Text == "" {
		verr.Add("text", domain.ReasonRequired)
	}
	source, ok := domain.ParseLocale(req.SourceLanguage)
	if !ok {
		verr.Add("sourceLanguage", domain.ReasonInvalid)
	}
	target, ok := domain.ParseLocale(req.TargetLanguage)
	if !ok {
		verr.Add("targetLanguage", domain.ReasonInvalid)
	}
	if !verr.Empty() {
		h.writeError(w, r, verr)
		return
	}

	out, err := h.translator.Translate(r.Context(), req.Text, source, target)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, TranslateResponse{TranslatedText: out})
}
