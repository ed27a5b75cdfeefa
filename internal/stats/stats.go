// Package stats builds the run summary published next to the articles.
package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/deusflow/newsmin/internal/news"
	"github.com/deusflow/newsmin/internal/scoring"
)

// Buckets is the number of histogram keys, "0.0" through "10.0".
const Buckets = 101

type Stats struct {
	TotalArticles         int            `json:"total_articles"`
	HighSignificanceCount int            `json:"high_significance_count"`
	Histogram             map[string]int `json:"histogram"`
	LastRefresh           time.Time      `json:"last_refresh"`
}

// Build aggregates the final article set. rawCount is the number of feed
// entries fetched before deduplication.
func Build(articles []news.Article, rawCount int, now time.Time) Stats {
	s := Stats{
		TotalArticles: rawCount,
		Histogram:     Histogram(articles),
		LastRefresh:   now.UTC(),
	}
	for _, a := range articles {
		if a.SignificanceScore >= scoring.HighSignificance {
			s.HighSignificanceCount++
		}
	}
	return s
}

// Histogram counts articles per 0.1 score bucket. Every bucket is present.
func Histogram(articles []news.Article) map[string]int {
	h := make(map[string]int, Buckets)
	for i := 0; i < Buckets; i++ {
		h[bucketKey(i)] = 0
	}
	for _, a := range articles {
		i := int(math.Round(a.SignificanceScore * 10))
		if i < 0 {
			i = 0
		}
		if i >= Buckets {
			i = Buckets - 1
		}
		h[bucketKey(i)]++
	}
	return h
}

func bucketKey(i int) string {
	return fmt.Sprintf("%.1f", float64(i)/10)
}

// TimeAgo renders the age of published relative to now: "<1m", "Nm", "Nh"
// or "Nd". Future times read as "<1m".
func TimeAgo(published, now time.Time) string {
	d := now.Sub(published)
	switch {
	case d < time.Minute:
		return "<1m"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	}
}

// StampTimeAgo returns a copy of articles with TimeAgo filled in.
func StampTimeAgo(articles []news.Article, now time.Time) []news.Article {
	out := news.Clone(articles)
	for i := range out {
		out[i].TimeAgo = TimeAgo(out[i].PublishedAt, now)
	}
	return out
}
