// Package keywords derives the searchable token set and genre slugs stored on
// every book document.
package keywords

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	// Matches any non-alphanumeric character.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches multiple hyphens.
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Generate builds the keyword set for a book from its title and author.
// Tokens are case-folded, split on whitespace, and deduplicated in first-seen
// order. Matching against them is always done on folded input, so lookups stay
// correct for scripts where ToLower alone is lossy.
func Generate(title, author string) []string {
	folder := cases.Fold()

	seen := make(map[string]struct{})
	var out []string
	for _, source := range []string{title, author} {
		for _, tok := range strings.Fields(folder.String(source)) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	return out
}

// Matches reports whether every whitespace-separated term in query is a prefix
// of at least one keyword. An empty query matches everything.
func Matches(keywords []string, query string) bool {
	folder := cases.Fold()
	terms := strings.Fields(folder.String(query))
	for _, term := range terms {
		found := false
		for _, kw := range keywords {
			if strings.HasPrefix(kw, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// GenreSlug converts a raw genre string to its canonical slug.
// "Science Fiction" -> "science-fiction".
// "Sci-Fi/Fantasy" -> "sci-fi-fantasy".
func GenreSlug(s string) string {
	// Normalize unicode (decompose accented characters).
	s = norm.NFKD.String(s)

	// Remove non-ASCII characters.
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	return s
}

// GenreSlugs normalizes a list of raw genre strings, dropping empties and
// duplicates while preserving order.
func GenreSlugs(raw []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, g := range raw {
		slug := GenreSlug(g)
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	return out
}
