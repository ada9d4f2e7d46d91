// Package normalize computes derived search keys from display text.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key normalizes display text into a search key: diacritics folded,
// lowercased, whitespace runs collapsed to single spaces, trimmed.
// Key is pure and idempotent: Key(Key(s)) == Key(s).
func Key(s string) string {
	// Chain state is not safe for concurrent use, so build it per call.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
