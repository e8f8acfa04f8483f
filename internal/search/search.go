// Package search filters posts by a free-text query.
package search

import (
	"strings"

	"github.com/erselk/ugur-sahan-website/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fold lower-cases s with Turkish rules and maps dotless ı to i, so "Işık",
// "ışık" and "isik" all compare equal.
func Fold(s string) string {
	// cases.Caser is stateful and not safe for concurrent use
	lower := cases.Lower(language.Turkish).String(s)
	return strings.ReplaceAll(lower, "ı", "i")
}

// Filter returns the posts whose text matches query, in input order. An
// empty query matches nothing.
func Filter(posts []*domain.Post, query string) []*domain.Post {
	needle := Fold(strings.TrimSpace(query))
	if needle == "" {
		return []*domain.Post{}
	}

	out := make([]*domain.Post, 0)
	for _, p := range posts {
		if Matches(p, needle) {
			out = append(out, p)
		}
	}
	return out
}

// Matches checks one post against an already folded needle.
func Matches(p *domain.Post, needle string) bool {
	for _, field := range []domain.LocalizedText{p.Title, p.Excerpt, p.Content} {
		for _, l := range domain.Locales {
			if strings.Contains(Fold(field[l]), needle) {
				return true
			}
		}
	}
	for _, l := range domain.Locales {
		for _, tag := range p.Tags.Get(l) {
			if strings.Contains(Fold(tag), needle) {
				return true
			}
		}
	}
	return strings.Contains(Fold(string(p.Category)), needle)
}
