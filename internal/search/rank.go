package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Field weights used by the property listing.
const (
	WeightTitle        = 3.0
	WeightNeighborhood = 2.0
	WeightCity         = 2.0
	WeightType         = 2.0
	WeightAddress      = 1.5
	WeightState        = 1.0
	WeightFeatures     = 1.0
	WeightDescription  = 1.0
)

// Scores for the ways a keyword can match a word.
const (
	scoreExact    = 1.0
	scorePrefix   = 0.9
	scoreContains = 0.75
	fuzzyFactor   = 0.8

	// fuzzyThreshold is the minimum similarity for a typo to count.
	fuzzyThreshold = 0.7
	// minPartialLen is the shortest keyword allowed to match by prefix or substring.
	minPartialLen = 3
)

// Field is one weighted piece of searchable text.
type Field struct {
	Name   string
	Text   string
	Weight float64
}

// Document is anything that can be ranked.
type Document interface {
	SearchFields() []Field
}

// Result is a ranked item.
type Result[T Document] struct {
	Item  T
	Score float64
	// Matched counts the query keywords that hit at least one field.
	Matched int
}

// Similarity returns 1 - distance/maxLen for the Levenshtein distance of a and
// b measured in runes. Two empty strings are identical.
func Similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// TokenScore scores one normalized keyword against one normalized word.
func TokenScore(keyword, token string) float64 {
	if keyword == token {
		return scoreExact
	}
	if isNumeric(keyword) {
		return 0
	}
	if utf8.RuneCountInString(keyword) >= minPartialLen {
		if strings.HasPrefix(token, keyword) {
			return scorePrefix
		}
		if strings.Contains(token, keyword) {
			return scoreContains
		}
	}
	if sim := Similarity(keyword, token); sim >= fuzzyThreshold {
		return sim * fuzzyFactor
	}
	return 0
}

type preparedField struct {
	tokens []string
	weight float64
}

func prepare(fields []Field) []preparedField {
	out := make([]preparedField, 0, len(fields))
	for _, f := range fields {
		if tokens := Tokens(f.Text); len(tokens) > 0 {
			out = append(out, preparedField{tokens: tokens, weight: f.Weight})
		}
	}
	return out
}

// keywordScore is the best weighted match of keyword over all fields.
func keywordScore(keyword string, fields []preparedField) float64 {
	best := 0.0
	for _, f := range fields {
		for _, tok := range f.tokens {
			if s := TokenScore(keyword, tok) * f.weight; s > best {
				best = s
			}
		}
	}
	return best
}

// Score returns the aggregate score of doc for the given keywords and how
// many keywords matched.
func Score(doc Document, keywords []string) (float64, int) {
	fields := prepare(doc.SearchFields())
	total, matched := 0.0, 0
	for _, kw := range keywords {
		if s := keywordScore(kw, fields); s > 0 {
			total += s
			matched++
		}
	}
	return total, matched
}

// Rank scores items against query and returns the matching ones, best first:
// more matched keywords, then higher score, then original order. A blank
// query keeps every item in its original order with a zero score.
func Rank[T Document](items []T, query string) []Result[T] {
	keywords := Keywords(query)
	if len(keywords) == 0 {
		out := make([]Result[T], len(items))
		for i, item := range items {
			out[i] = Result[T]{Item: item}
		}
		return out
	}

	out := make([]Result[T], 0, len(items))
	for _, item := range items {
		score, matched := Score(item, keywords)
		if score <= 0 {
			continue
		}
		out = append(out, Result[T]{Item: item, Score: score, Matched: matched})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Matched != out[j].Matched {
			return out[i].Matched > out[j].Matched
		}
		return out[i].Score > out[j].Score
	})
	return out
}
