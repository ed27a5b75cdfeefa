// Package cluster groups articles that cover the same event by title
// similarity.
package cluster

import (
	"sort"

	"github.com/deusflow/newsmin/internal/news"
)

// DefaultThreshold is the minimum similarity to a seed for cluster membership.
const DefaultThreshold = 0.4

// Clusters maps each seed id to its member ids, seed first. Order lists the
// seeds in the order their clusters were opened.
type Clusters struct {
	Order   []string
	Members map[string][]string
}

// Cluster runs a greedy, seed-centric sweep over articles ordered by
// significance (ties keep input order). Each unassigned article opens a
// cluster and pulls in every other unassigned article whose title is at
// least threshold-similar to it. Members are not checked against each
// other, only against the seed.
func Cluster(articles []news.Article, threshold float64) Clusters {
	sorted := make([]news.Article, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SignificanceScore > sorted[j].SignificanceScore
	})

	tokens := make([]map[string]struct{}, len(sorted))
	for i, a := range sorted {
		tokens[i] = Tokens(a.Title)
	}

	result := Clusters{Members: make(map[string][]string)}
	assigned := make([]bool, len(sorted))

	for i, seed := range sorted {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		members := []string{seed.ID}

		for j := range sorted {
			if assigned[j] {
				continue
			}
			if jaccard(tokens[i], tokens[j]) >= threshold {
				members = append(members, sorted[j].ID)
				assigned[j] = true
			}
		}

		result.Order = append(result.Order, seed.ID)
		result.Members[seed.ID] = members
	}

	return result
}

// Apply writes coverage_count and related_ids onto every cluster member and
// returns the updated copy.
func Apply(articles []news.Article, clusters Clusters) []news.Article {
	out := news.Clone(articles)
	idx := news.Index(out)

	for _, seed := range clusters.Order {
		members := clusters.Members[seed]
		for _, id := range members {
			i, ok := idx[id]
			if !ok {
				continue
			}
			related := make([]string, 0, len(members)-1)
			for _, other := range members {
				if other != id {
					related = append(related, other)
				}
			}
			out[i].CoverageCount = len(members)
			out[i].RelatedIDs = related
		}
	}

	return out
}
