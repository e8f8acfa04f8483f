package domain

import "strings"

// Category is one of the five fixed writing sections.
type Category string

const (
	CategoryPoems      Category = "Şiirler"
	CategoryMemories   Category = "Anılar ve Öyküler"
	CategoryEssays     Category = "Denemeler"
	CategoryInnovation Category = "İnovasyon ve Girişimcilik"
	CategoryTastings   Category = "Tadımlar"
)

var Categories = []Category{
	CategoryPoems,
	CategoryMemories,
	CategoryEssays,
	CategoryInnovation,
	CategoryTastings,
}

var categoryAliases = map[string]Category{
	"poems":      CategoryPoems,
	"memories":   CategoryMemories,
	"essays":     CategoryEssays,
	"innovation": CategoryInnovation,
	"tastings":   CategoryTastings,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// CategoryFromFilter resolves a listing filter given as a label or a URL alias.
func CategoryFromFilter(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if c := Category(s); c.Valid() {
		return c, true
	}
	c, ok := categoryAliases[strings.ToLower(s)]
	return c, ok
}
