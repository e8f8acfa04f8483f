package api

import (
	"errors"
	"net/http"

	"github.com/erselk/ugur-sahan-website/internal/media"
)

// multipart framing allowance on top of the file limit
const multipartOverhead = 1 << 20

// UploadImage accepts one image in the "file" form field.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploads.MaxBytes()+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			h.writeError(w, r, media.ErrTooLarge)
		case errors.Is(err, http.ErrMissingFile):
			h.writeError(w, r, media.ErrMissingFile)
		default:
			h.writeError(w, r, badRequest("invalid multipart form", err))
		}
		return
	}
	defer file.Close()

	res, err := h.uploads.Upload(r.Context(), file, header.Header.Get("Content-Type"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, UploadResponse{
		Success: true,
		URL:     res.URL,
		Name:    res.Name,
		Width:   res.Width,
		Height:  res.Height,
		Bytes:   res.Bytes,
	})
}
