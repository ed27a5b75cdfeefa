package cluster

import (
	"strings"
	"unicode"
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true,
}

// NormalizeTitle lower-cases title, drops every rune that is neither a word
// character nor whitespace, and removes stopwords. Words are rejoined with
// single spaces.
func NormalizeTitle(title string) string {
	title = strings.ToLower(title)

	b := make([]rune, 0, len(title))
	for _, r := range title {
		if isWordRune(r) || unicode.IsSpace(r) {
			b = append(b, r)
		}
	}

	words := strings.Fields(string(b))
	kept := words[:0]
	for _, w := range words {
		if stopWords[w] {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// Tokens returns the distinct normalized words of title.
func Tokens(title string) map[string]struct{} {
	words := strings.Fields(NormalizeTitle(title))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Similarity is the Jaccard index of the two titles' token sets. It is 0
// when either title normalizes to nothing.
func Similarity(a, b string) float64 {
	return jaccard(Tokens(a), Tokens(b))
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
