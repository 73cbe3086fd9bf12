// Package search ranks records against free-text queries typed by office
// staff. Matching tolerates missing accents, punctuation and small typos.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopwords are dropped from queries. Spanish first, the office works in Spanish.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		a al ante bajo con contra de del desde el en entre hacia hasta la las lo los
		para por que se sin sobre su sus un una unas unos y o e u ni mi
		the an and or of in on at to for with by from is are
	`) {
		stopwords[w] = struct{}{}
	}
}

// Normalize folds s into the canonical form used for matching: accents are
// stripped, letters lowercased, and every other rune becomes a single space.
// "Cancún, Q.Roo!" normalizes to "cancun q roo".
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	space := true
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Tokens splits the normalized form of s into words.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// Keywords extracts the meaningful words of a query: normalized, without
// stopwords or single letters, each word once in the order first seen.
func Keywords(query string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, tok := range Tokens(query) {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if len([]rune(tok)) == 1 && !isNumeric(tok) {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
