package common

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrEmptySlug = errors.New("slug cannot be empty")
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	umlauts      = strings.NewReplacer(
		"ä", "ae",
		"ö", "oe",
		"ü", "ue",
		"ß", "ss",
	)
)

// Slugify derives a stable identifier from input, falling back to the
// fallback string when input yields nothing usable. German umlauts are
// transliterated so that question texts produce readable ASCII IDs.
func Slugify(input, fallback string) (string, error) {
	slug := slugify(input)
	if slug == "" {
		slug = slugify(fallback)
	}
	if slug == "" {
		return "", ErrEmptySlug
	}
	return slug, nil
}

func slugify(s string) string {
	lower := umlauts.Replace(strings.ToLower(strings.TrimSpace(s)))
	slug := nonSlugChars.ReplaceAllString(lower, "_")
	return strings.Trim(slug, "_")
}
