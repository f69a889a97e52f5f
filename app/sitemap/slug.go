package sitemap

import (
	"strings"
	"unicode"
)

// turkishReplacer transliterates the Turkish letters that have a plain
// ASCII counterpart. Everything else non-ASCII is dropped by Slugify.
var turkishReplacer = strings.NewReplacer(
	"ç", "c", "Ç", "c",
	"ğ", "g", "Ğ", "g",
	"ş", "s", "Ş", "s",
	"ü", "u", "Ü", "u",
	"İ", "i", "ı", "i",
	"ö", "o", "Ö", "o",
)

// Slugify converts free text into a URL slug: Turkish transliteration,
// lowercase, non-alphanumerics removed, whitespace collapsed to single
// hyphens. Applying it to its own output is a no-op, so slugs read back
// from upstream data can be passed through safely.
func Slugify(text string) string {
	s := strings.ToLower(turkishReplacer.Replace(text))

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	s = strings.Join(strings.Fields(b.String()), "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}
