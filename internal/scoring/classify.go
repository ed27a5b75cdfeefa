package scoring

import "github.com/deusflow/newsmin/internal/news"

// Classifier assigns the topic category by keyword vote.
type Classifier struct {
	matcher Matcher
}

// NewClassifier builds a Classifier; a nil matcher means SubstringMatcher.
func NewClassifier(m Matcher) *Classifier {
	if m == nil {
		m = SubstringMatcher{}
	}
	return &Classifier{matcher: m}
}

// Classify returns the category whose vocabulary matches most often in the
// title and summary. Ties go to the category listed first in
// news.Categories; no match at all falls back to the feed's category.
func (c *Classifier) Classify(title, summary string, feedCategory news.Category) news.Category {
	text := combinedText(title, summary)

	best := news.Category("")
	bestScore := 0
	for _, cat := range news.Categories {
		score := countMatches(c.matcher, text, categoryKeywords[cat])
		if score > bestScore {
			best, bestScore = cat, score
		}
	}

	if bestScore == 0 {
		return feedCategory
	}
	return best
}
