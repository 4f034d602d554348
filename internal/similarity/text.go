package similarity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TextSimilarity is the Jaccard similarity of the lowercase whitespace-delimited
// word sets of a and b. It is 0 when either side has no words.
func TextSimilarity(a, b string) float64 {
	// A Caser is stateful, so each call gets its own.
	lower := cases.Lower(language.Und)
	return jaccard(wordSet(lower, a), wordSet(lower, b))
}

func wordSet(lower cases.Caser, s string) map[string]struct{} {
	words := strings.Fields(lower.String(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// jaccard returns |a∩b| / |a∪b|, or 0 if either set is empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
