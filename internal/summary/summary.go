// Package summary carries generated summaries across runs and decides which
// articles still need one.
package summary

import (
	"sort"
	"strings"

	"github.com/deusflow/newsmin/internal/news"
)

// GeneratedPredicate reports whether text looks like a generated summary
// rather than a pass-through feed description.
type GeneratedPredicate func(text string) bool

const russianLower = "абвгдеёжзийклмнопрстуфхцчшщъыьэюя"

// IsRussian accepts text containing at least one lower-case Russian letter.
// A single letter is enough.
func IsRussian(text string) bool {
	return strings.ContainsAny(text, russianLower)
}

// LoadCached keeps the previous summaries that pred accepts. A nil pred
// means IsRussian. Empty summaries are never kept.
func LoadCached(previous map[string]string, pred GeneratedPredicate) map[string]string {
	if pred == nil {
		pred = IsRussian
	}

	cached := make(map[string]string, len(previous))
	for id, text := range previous {
		if text == "" || !pred(text) {
			continue
		}
		cached[id] = text
	}
	return cached
}

// Reconcile seeds each article's display summary from the cache. Articles
// without a cached summary show their feed description.
func Reconcile(articles []news.Article, cached map[string]string) []news.Article {
	out := news.Clone(articles)
	for i := range out {
		if text, ok := cached[out[i].ID]; ok {
			out[i].Summary = text
			out[i].Language = news.LanguageGenerated
			continue
		}
		out[i].Summary = out[i].OriginalDescription
		out[i].Language = news.LanguageOriginal
	}
	return out
}

// Candidates returns the ids of articles with no cached summary, most
// significant first, at most max of them. max <= 0 means no cap.
func Candidates(articles []news.Article, cached map[string]string, max int) []string {
	pending := make([]news.Article, 0, len(articles))
	for _, a := range articles {
		if _, ok := cached[a.ID]; ok {
			continue
		}
		pending = append(pending, a)
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].SignificanceScore > pending[j].SignificanceScore
	})

	if max > 0 && len(pending) > max {
		pending = pending[:max]
	}

	ids := make([]string, len(pending))
	for i, a := range pending {
		ids[i] = a.ID
	}
	return ids
}
