// Package normalize infers missing structured attributes from listing free
// text. Each inference is driven by an explicit rule table evaluated in fixed
// priority order; a field the source already populated is never overwritten,
// except to correct an internally contradictory value.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases text and strips diacritics, so Slovak/Czech keyword
// variants ("poškodené" vs "poskodene") match a single pattern.
func Fold(s string) string {
	out, _, err := transform.String(foldChain, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
