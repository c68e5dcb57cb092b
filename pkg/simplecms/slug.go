package simplecms

import "strings"

// Slugify derives a URL-safe slug from a title: lowercase, ASCII letters,
// digits and hyphens only, single hyphens between words, no leading or
// trailing hyphen. The function is pure and idempotent; two titles that
// normalize to the same slug are surfaced as ErrDuplicateSlug by the
// repository, not disambiguated here.
func Slugify(title string) string {
	lower := strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '-':
			b.WriteByte('-')
		}
	}

	// Collapse hyphen runs and trim the ends.
	parts := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '-' })
	return strings.Join(parts, "-")
}
