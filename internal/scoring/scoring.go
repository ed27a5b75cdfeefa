// Package scoring computes the heuristic significance bundle and topic
// category for an article.
package scoring

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/deusflow/newsmin/internal/news"
)

// Composite weights. Credibility is scaled by 10 before weighting so every
// input spans 0–10; the weights sum to 1.0.
const (
	weightScale       = 0.20
	weightImpact      = 0.25
	weightNovelty     = 0.15
	weightPotential   = 0.15
	weightLegacy      = 0.10
	weightPositivity  = 0.05
	weightCredibility = 0.10
)

// HighSignificance is the score at or above which an article counts as
// highly significant in stats.
const HighSignificance = 5.5

// Scorer produces significance scores. It holds no per-article state.
type Scorer struct {
	matcher Matcher
}

// NewScorer builds a Scorer; a nil matcher means SubstringMatcher.
func NewScorer(m Matcher) *Scorer {
	if m == nil {
		m = SubstringMatcher{}
	}
	return &Scorer{matcher: m}
}

// Score returns the significance bundle for an article. Noise comes from a
// generator seeded by the title alone, so identical inputs always produce
// identical output regardless of call order.
func (s *Scorer) Score(title, summary, source string) news.Scores {
	rng := seededRand(title)
	text := combinedText(title, summary)

	highCount := countMatches(s.matcher, text, highImpactKeywords)
	mediumCount := countMatches(s.matcher, text, mediumImpactKeywords)

	base := 2.0 + uniform(rng, -0.5, 0.5)
	base += math.Min(float64(highCount)*1.2, 4.0)
	base += math.Min(float64(mediumCount)*0.4, 2.0)

	credibility := 0.7
	if containsAny(s.matcher, strings.ToLower(source), credibleSources) {
		credibility += 0.2
	}

	scale := clamp(base*0.8 + uniform(rng, -0.5, 0.5))
	impact := clamp(base*0.9 + uniform(rng, -0.5, 0.5))
	novelty := clamp(3.0 + uniform(rng, -1, 2))
	potential := clamp(base*0.7 + uniform(rng, -0.5, 0.5))
	legacy := clamp(base*0.5 + uniform(rng, -0.5, 0.5))
	positivity := 0.3 + uniform(rng, 0, 0.5)

	scores := news.Scores{
		Scale:       round(scale, 1),
		Impact:      round(impact, 1),
		Novelty:     round(novelty, 1),
		Potential:   round(potential, 1),
		Legacy:      round(legacy, 1),
		Positivity:  round(positivity, 2),
		Credibility: round(credibility, 2),
	}
	scores.SignificanceScore = Composite(scores)
	return scores
}

// Composite recomputes the weighted significance score from the emitted
// sub-scores, clamped to [0,10] and rounded to one decimal.
func Composite(s news.Scores) float64 {
	sum := s.Scale*weightScale +
		s.Impact*weightImpact +
		s.Novelty*weightNovelty +
		s.Potential*weightPotential +
		s.Legacy*weightLegacy +
		s.Positivity*weightPositivity +
		s.Credibility*10*weightCredibility
	return round(clamp(sum), 1)
}

// Apply scores and classifies every article, returning a new slice.
func Apply(articles []news.Article, scorer *Scorer, classifier *Classifier) []news.Article {
	out := news.Clone(articles)
	for i := range out {
		a := &out[i]
		a.Scores = scorer.Score(a.Title, a.OriginalDescription, a.Source)
		a.Category = classifier.Classify(a.Title, a.OriginalDescription, a.Category)
	}
	return out
}

func seededRand(key string) *rand.Rand {
	sum := sha256.Sum256([]byte(key))
	return rand.New(rand.NewPCG(
		binary.BigEndian.Uint64(sum[0:8]),
		binary.BigEndian.Uint64(sum[8:16]),
	))
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

func clamp(v float64) float64 {
	return math.Min(math.Max(v, 0), 10)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
