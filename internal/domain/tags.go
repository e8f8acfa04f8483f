package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Tags holds per-locale tag lists. The zero value means "no tags" and
// serializes as null.
type Tags struct {
	ByLocale map[Locale][]string
}

func (t Tags) IsEmpty() bool {
	for _, list := range t.ByLocale {
		if len(list) > 0 {
			return false
		}
	}
	return true
}

func (t Tags) Get(l Locale) []string {
	if t.ByLocale == nil {
		return nil
	}
	return t.ByLocale[l]
}

// Set stores a cleaned copy of tags for the locale. Blank entries are dropped.
func (t *Tags) Set(l Locale, tags []string) {
	cleaned := CleanTags(tags)
	if len(cleaned) == 0 {
		if t.ByLocale != nil {
			delete(t.ByLocale, l)
		}
		return
	}
	if t.ByLocale == nil {
		t.ByLocale = make(map[Locale][]string, 2)
	}
	t.ByLocale[l] = cleaned
}

func (t Tags) Clone() Tags {
	if t.ByLocale == nil {
		return Tags{}
	}
	out := Tags{ByLocale: make(map[Locale][]string, len(t.ByLocale))}
	for k, v := range t.ByLocale {
		out.ByLocale[k] = append([]string(nil), v...)
	}
	return out
}

func (t Tags) MarshalJSON() ([]byte, error) {
	if t.IsEmpty() {
		return []byte("null"), nil
	}
	return json.Marshal(t.ByLocale)
}

// UnmarshalJSON reads the stored form: null or a locale-keyed object.
func (t *Tags) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = Tags{}
		return nil
	}
	var byLocale map[Locale][]string
	if err := json.Unmarshal(trimmed, &byLocale); err != nil {
		return fmt.Errorf("decode tags: %w", err)
	}
	*t = Tags{}
	for l, list := range byLocale {
		t.Set(l, list)
	}
	return nil
}

// ParseTags converts the request form of tags into Tags. A bare list belongs
// to the source locale; an object is keyed by locale.
func ParseTags(raw json.RawMessage, source Locale) (Tags, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Tags{}, nil
	}

	var tags Tags
	switch trimmed[0] {
	case '[':
		var list []string
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return Tags{}, fmt.Errorf("decode tag list: %w", err)
		}
		if source == "" {
			return Tags{}, fmt.Errorf("tag list needs a source locale")
		}
		tags.Set(source, list)
	case '{':
		var byLocale map[string][]string
		if err := json.Unmarshal(trimmed, &byLocale); err != nil {
			return Tags{}, fmt.Errorf("decode tag map: %w", err)
		}
		for key, list := range byLocale {
			l, ok := ParseLocale(key)
			if !ok {
				return Tags{}, fmt.Errorf("unsupported tag locale %q", key)
			}
			tags.Set(l, list)
		}
	default:
		return Tags{}, fmt.Errorf("tags must be a list or a locale map")
	}
	return tags, nil
}

// CleanTags trims entries and drops blanks.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
