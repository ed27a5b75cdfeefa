package news

import (
	"crypto/md5"
	"encoding/hex"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"
)

// Category is one of the fixed topic buckets used by feeds and the classifier.
type Category string

const (
	CategoryPolitics    Category = "politics"
	CategoryBusiness    Category = "business"
	CategoryTechnology  Category = "technology"
	CategoryScience     Category = "science"
	CategoryEnvironment Category = "environment"
	CategoryHealth      Category = "health"
	CategorySociety     Category = "society"
	CategoryCulture     Category = "culture"
	CategorySports      Category = "sports"
)

// Categories lists every category in declaration order. Classification ties
// resolve to the earliest entry.
var Categories = []Category{
	CategoryPolitics,
	CategoryBusiness,
	CategoryTechnology,
	CategoryScience,
	CategoryEnvironment,
	CategoryHealth,
	CategorySociety,
	CategoryCulture,
	CategorySports,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Language tags the text held in Article.Summary.
type Language string

const (
	// LanguageGenerated marks a summary produced by the summary generator.
	LanguageGenerated Language = "Russian"
	// LanguageOriginal marks pass-through feed text.
	LanguageOriginal Language = "English"
)

// UnknownSource is returned by SourceDomain for links without a usable host.
const UnknownSource = "unknown"

// RawEntry is a single item yielded by a feed source.
type RawEntry struct {
	Title        string
	Summary      string
	Link         string
	FeedCategory Category
	Published    *time.Time
}

// Scores is the significance bundle attached to every article.
type Scores struct {
	SignificanceScore float64 `json:"significance_score"`
	Scale             float64 `json:"scale"`
	Impact            float64 `json:"impact"`
	Novelty           float64 `json:"novelty"`
	Potential         float64 `json:"potential"`
	Legacy            float64 `json:"legacy"`
	Positivity        float64 `json:"positivity"`
	Credibility       float64 `json:"credibility"`
}

// Article is the durable record published to the front end.
type Article struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Summary             string   `json:"summary"`
	OriginalDescription string   `json:"original_description"`
	URL                 string   `json:"url"`
	Source              string   `json:"source"`
	Category            Category `json:"category"`
	Scores
	PublishedAt   time.Time `json:"published_at"`
	CoverageCount int       `json:"coverage_count"`
	RelatedIDs    []string  `json:"related_ids"`
	Language      Language  `json:"language"`
	TimeAgo       string    `json:"time_ago"`
}

var sourcePattern = regexp.MustCompile(`https?://(?:www\.)?([^/]+)`)

// SourceDomain derives a registrable-domain approximation from a link: the
// last two labels of the host with any leading "www." removed.
func SourceDomain(link string) string {
	m := sourcePattern.FindStringSubmatch(link)
	if m == nil {
		return UnknownSource
	}
	parts := strings.Split(m[1], ".")
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return UnknownSource
}

// GenerateID returns the stable 12-character article id for (title, source).
// The input is hashed verbatim, without case folding.
func GenerateID(title, source string) string {
	sum := md5.Sum([]byte(title + ":" + source))
	return hex.EncodeToString(sum[:])[:12]
}

// TimestampPolicy fills in publication times missing from feed entries.
type TimestampPolicy struct {
	Now  func() time.Time
	Rand *rand.Rand
}

// NewTimestampPolicy returns the production policy backed by the wall clock.
func NewTimestampPolicy() TimestampPolicy {
	return TimestampPolicy{
		Now:  time.Now,
		Rand: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
	}
}

// Resolve returns published when set, otherwise a synthetic time between 1
// and 48 whole hours before now.
func (p TimestampPolicy) Resolve(published *time.Time) time.Time {
	if published != nil {
		return published.UTC()
	}
	hours := 1 + p.Rand.IntN(48)
	return p.Now().UTC().Add(-time.Duration(hours) * time.Hour).Truncate(time.Second)
}

// Dedupe turns raw entries into base articles keyed by GenerateID. The first
// entry for an id wins; later ones are dropped along with their description
// and link. The returned slice preserves first-encounter order.
func Dedupe(entries []RawEntry, policy TimestampPolicy) ([]Article, int) {
	seen := make(map[string]struct{}, len(entries))
	articles := make([]Article, 0, len(entries))
	dropped := 0

	for _, e := range entries {
		source := SourceDomain(e.Link)
		id := GenerateID(e.Title, source)
		if _, dup := seen[id]; dup {
			dropped++
			continue
		}
		seen[id] = struct{}{}

		articles = append(articles, Article{
			ID:                  id,
			Title:               e.Title,
			Summary:             e.Summary,
			OriginalDescription: e.Summary,
			URL:                 e.Link,
			Source:              source,
			Category:            e.FeedCategory,
			PublishedAt:         policy.Resolve(e.Published),
			CoverageCount:       1,
			RelatedIDs:          []string{},
			Language:            LanguageOriginal,
		})
	}

	return articles, dropped
}

// Index maps article ids to their position in articles.
func Index(articles []Article) map[string]int {
	idx := make(map[string]int, len(articles))
	for i, a := range articles {
		idx[a.ID] = i
	}
	return idx
}

// Clone returns a deep copy so stages never share RelatedIDs backing arrays.
func Clone(articles []Article) []Article {
	out := make([]Article, len(articles))
	for i, a := range articles {
		out[i] = a
		out[i].RelatedIDs = append([]string{}, a.RelatedIDs...)
	}
	return out
}
