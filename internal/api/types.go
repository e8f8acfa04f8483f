package api

import (
	"encoding/json"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/auth"
	"github.com/erselk/ugur-sahan-website/internal/domain"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// PostRequest is the body of create and update. reading_time may be a
// number or a numeric string; tags may be a list for the source language or
// a locale-keyed object.
type PostRequest struct {
	Title           domain.LocalizedText `json:"title"`
	Content         domain.LocalizedText `json:"content"`
	Excerpt         domain.LocalizedText `json:"excerpt"`
	Tags            json.RawMessage      `json:"tags"`
	Category        string               `json:"category"`
	ImageURL        string               `json:"image_url"`
	CreatedAt       string               `json:"created_at"`
	ReadingTime     json.RawMessage      `json:"reading_time"`
	SourceLanguage  string               `json:"source_language"`
	ShouldTranslate bool                 `json:"should_translate"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserDTO struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Role        domain.Role `json:"role"`
}

type SessionDTO struct {
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserDTO   `json:"user"`
}

func sessionDTO(s *auth.Session, withToken bool) SessionDTO {
	dto := SessionDTO{
		ExpiresAt: s.ExpiresAt,
		User: UserDTO{
			ID:          s.UserID,
			Email:       s.Email,
			DisplayName: s.DisplayName,
			Role:        s.Role,
		},
	}
	if withToken {
		dto.Token = s.Token
	}
	return dto
}

type TranslateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

type TranslateResponse struct {
	TranslatedText string `json:"translatedText"`
}

type UploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Bytes   int    `json:"bytes"`
}

type ContactResponse struct {
	Message string          `json:"message"`
	Data    *domain.Message `json:"data"`
}

type HealthDTO struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
