package index

import (
	"strings"
	"unicode"
)

// Wildcard is the marker character recognised in query terms.
const Wildcard = '*'

// Normalize lowercases token and strips every rune that is not a letter or
// digit, so "Side" and "side," index as the same term. With keepWildcard set,
// '*' also survives in place; query terms are normalized this way so their
// wildcard markers are preserved. The result may be empty (for example an
// all-punctuation token); ingestion skips empty terms.
func Normalize(token string, keepWildcard bool) string {
	var b strings.Builder
	b.Grow(len(token))
	for _, r := range strings.ToLower(token) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case keepWildcard && r == Wildcard:
			b.WriteRune(r)
		}
	}
	return b.String()
}
