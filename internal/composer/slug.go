package composer

import "strings"

var turkishFolding = strings.NewReplacer(
	"Ğ", "g", "Ü", "u", "Ş", "s", "İ", "i", "Ö", "o", "Ç", "c",
	"ğ", "g", "ü", "u", "ş", "s", "ı", "i", "ö", "o", "ç", "c",
)

// Slugify turns a title into a URL-safe slug: Turkish letters are folded to
// ASCII, everything is lower-cased, and every run of characters outside
// [a-z0-9] becomes a single hyphen with none at either end.
func Slugify(title string) string {
	folded := strings.ToLower(turkishFolding.Replace(title))

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
