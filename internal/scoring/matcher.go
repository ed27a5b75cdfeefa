package scoring

import (
	"regexp"
	"strings"
	"sync"
)

// Matcher is the heuristic keyword test shared by the scorer and classifier.
// Text and keywords are already lower-cased by the caller.
type Matcher interface {
	Contains(text, keyword string) bool
}

// SubstringMatcher is plain substring containment. It false-positives on
// short keywords ("ap" inside "apnews" or "happy") and is the default because
// published scores depend on it.
type SubstringMatcher struct{}

func (SubstringMatcher) Contains(text, keyword string) bool {
	return strings.Contains(text, keyword)
}

// WordMatcher requires whole-word matches for keywords of three bytes or
// fewer (avoids "ai" matching "said"); phrases and longer words still match
// as substrings.
type WordMatcher struct {
	mu    sync.Mutex
	cache map[string]*regexp.Regexp
}

// NewWordMatcher returns a WordMatcher with an empty pattern cache.
func NewWordMatcher() *WordMatcher {
	return &WordMatcher{cache: make(map[string]*regexp.Regexp)}
}

func (m *WordMatcher) Contains(text, keyword string) bool {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return false
	}
	if strings.Contains(keyword, " ") || len(keyword) > 3 {
		return strings.Contains(text, keyword)
	}
	return m.pattern(keyword).MatchString(text)
}

func (m *WordMatcher) pattern(keyword string) *regexp.Regexp {
	m.mu.Lock()
	defer m.mu.Unlock()

	if re, ok := m.cache[keyword]; ok {
		return re
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
	m.cache[keyword] = re
	return re
}

// countMatches returns how many distinct keywords occur in text.
func countMatches(m Matcher, text string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if m.Contains(text, k) {
			n++
		}
	}
	return n
}

func containsAny(m Matcher, text string, keywords []string) bool {
	for _, k := range keywords {
		if m.Contains(text, k) {
			return true
		}
	}
	return false
}

func combinedText(title, summary string) string {
	return strings.ToLower(title) + " " + strings.ToLower(summary)
}
