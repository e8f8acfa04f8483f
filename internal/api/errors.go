package api

import (
	"errors"
	"net/http"

	"github.com/erselk/ugur-sahan-website/internal/auth"
	"github.com/erselk/ugur-sahan-website/internal/composer"
	"github.com/erselk/ugur-sahan-website/internal/db/interfaces"
	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/erselk/ugur-sahan-website/internal/media"
	"github.com/erselk/ugur-sahan-website/internal/translate"
	"github.com/go-chi/chi/v5/middleware"
)

// requestError is a malformed request that never reached a service.
type requestError struct {
	msg string
	err error
}

func (e *requestError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *requestError) Unwrap() error { return e.err }

func badRequest(msg string, err error) error {
	return &requestError{msg: msg, err: err}
}

// classify maps any error a handler sees to a status and a response body.
func classify(err error) (int, ErrorResponse) {
	var (
		verr   *domain.ValidationError
		reqErr *requestError
		maxErr *http.MaxBytesError
		trErr  *composer.TranslationError
		upErr  *translate.UpstreamError
		dbErr  *interfaces.Error
	)

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrorResponse{Error: verr.Error(), Details: verr.Fields, Code: "validation_failed"}

	case errors.As(err, &maxErr), errors.Is(err, media.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, ErrorResponse{Error: media.ErrTooLarge.Error(), Code: "too_large"}

	case errors.As(err, &reqErr):
		return http.StatusBadRequest, ErrorResponse{Error: reqErr.Error(), Code: "bad_request"}

	case errors.Is(err, media.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, ErrorResponse{Error: media.ErrUnsupportedType.Error(), Code: "unsupported_media_type"}

	case errors.Is(err, media.ErrMissingFile):
		return http.StatusBadRequest, ErrorResponse{Error: media.ErrMissingFile.Error(), Code: "missing_file"}

	case errors.Is(err, auth.ErrNoSession):
		return http.StatusUnauthorized, ErrorResponse{Error: "session is missing or expired", Code: "unauthorized"}

	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorResponse{Error: auth.ErrInvalidCredentials.Error(), Code: "invalid_credentials"}

	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: auth.ErrForbidden.Error(), Code: "forbidden"}

	case errors.As(err, &trErr), errors.As(err, &upErr),
		errors.Is(err, translate.ErrNotConfigured), errors.Is(err, translate.ErrEmptyResult):
		return http.StatusBadGateway, ErrorResponse{Error: "translation failed", Details: err.Error(), Code: "translation_failed"}

	case errors.As(err, &dbErr):
		body := ErrorResponse{Error: dbErr.Message, Code: dbErr.Code, Hint: dbErr.Hint}
		if body.Error == "" {
			body.Error = dbErr.Kind.DefaultMessage()
		}
		if body.Code == "" {
			body.Code = dbErr.Kind.String()
		}
		if dbErr.Detail != "" {
			body.Details = dbErr.Detail
		}
		return storageStatus(dbErr.Kind), body
	}

	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "internal"}
}

func storageStatus(kind interfaces.Kind) int {
	switch kind {
	case interfaces.KindNotFound:
		return http.StatusNotFound
	case interfaces.KindPermissionDenied:
		return http.StatusForbidden
	case interfaces.KindDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)

	fields := []any{
		"request_id", middleware.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"code", body.Code,
		"error", err,
	}
	if status >= http.StatusInternalServerError {
		h.logger.Errorw("API error", fields...)
	} else {
		h.logger.Infow("API error", fields...)
	}

	h.writeJSON(w, status, body)
}
