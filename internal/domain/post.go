// Package domain holds the records shared by the composer, the stores and the
// HTTP layer: bilingual posts, contact messages and author profiles.
package domain

import (
	"strings"
	"time"
)

// Locale is one of the two content languages.
type Locale string

const (
	LocaleTR Locale = "tr"
	LocaleEN Locale = "en"
)

// Locales lists the supported locales in display order.
var Locales = []Locale{LocaleTR, LocaleEN}

// ParseLocale accepts "tr" or "en" in any case.
func ParseLocale(s string) (Locale, bool) {
	switch Locale(strings.ToLower(strings.TrimSpace(s))) {
	case LocaleTR:
		return LocaleTR, true
	case LocaleEN:
		return LocaleEN, true
	default:
		return "", false
	}
}

// Companion returns the other supported locale.
func (l Locale) Companion() Locale {
	if l == LocaleTR {
		return LocaleEN
	}
	return LocaleTR
}

// LocalizedText maps a locale to its text. Only locales with content have keys.
type LocalizedText map[Locale]string

// Has reports whether the locale has non-blank text.
func (t LocalizedText) Has(l Locale) bool {
	return strings.TrimSpace(t[l]) != ""
}

// Get returns the trimmed text for a locale.
func (t LocalizedText) Get(l Locale) string {
	return strings.TrimSpace(t[l])
}

func (t LocalizedText) Clone() LocalizedText {
	if t == nil {
		return nil
	}
	out := make(LocalizedText, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Post is a bilingual writing as stored.
type Post struct {
	ID          string        `json:"id"`
	Title       LocalizedText `json:"title"`
	Content     LocalizedText `json:"content"`
	Excerpt     LocalizedText `json:"excerpt"`
	Slug        LocalizedText `json:"slug"`
	Category    Category      `json:"category"`
	Tags        Tags          `json:"tags"`
	ImageURL    string        `json:"image_url"`
	ReadingTime int           `json:"reading_time"`
	// CreatedAt is a calendar date in YYYY-MM-DD form.
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	AuthorID    string     `json:"author_id"`
	IsPublished bool       `json:"is_published"`
	Views       int        `json:"views"`
}

// Clone returns a deep copy so stores never share maps with callers.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	out := *p
	out.Title = p.Title.Clone()
	out.Content = p.Content.Clone()
	out.Excerpt = p.Excerpt.Clone()
	out.Slug = p.Slug.Clone()
	out.Tags = p.Tags.Clone()
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		out.UpdatedAt = &t
	}
	return &out
}

// Stats backs the admin dashboard counters.
type Stats struct {
	TotalMessages  int64 `json:"total_messages"`
	UnreadMessages int64 `json:"unread_messages"`
	TotalPosts     int64 `json:"total_posts"`
	PublishedPosts int64 `json:"published_posts"`
}
