package normalize

import (
	"sort"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/jonesrussell/cocktail-search/internal/recipe"
)

// JaroWinkler parameters; the standard boost threshold and prefix size.
const (
	jwBoostThreshold = 0.7
	jwPrefixSize     = 4
)

// Dedupe groups items by their normalized title key and keeps a single
// representative per group: the item whose lowercased URL most resembles the
// key. A URL slug close to the canonical name is treated as the most
// authoritative source page among near-duplicate reprints.
//
// Output order is deterministic (sorted by group key) so reindexing is
// reproducible.
func Dedupe(items []*recipe.Item) []*recipe.Item {
	groups := make(map[string][]*recipe.Item)
	for _, item := range items {
		key := Title(item.Title)
		groups[key] = append(groups[key], item)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]*recipe.Item, 0, len(groups))
	for _, key := range keys {
		result = append(result, representative(key, groups[key]))
	}
	return result
}

// representative selects the group member maximizing similarity between the
// group key and the member's URL, breaking ties on the lexicographically
// smallest URL.
func representative(key string, group []*recipe.Item) *recipe.Item {
	best := group[0]
	bestScore := urlSimilarity(key, best.URL)
	for _, item := range group[1:] {
		score := urlSimilarity(key, item.URL)
		if score > bestScore || (score == bestScore && item.URL < best.URL) {
			best = item
			bestScore = score
		}
	}
	return best
}

func urlSimilarity(key, url string) float64 {
	return smetrics.JaroWinkler(key, strings.ToLower(url), jwBoostThreshold, jwPrefixSize)
}

// GroupByTitle buckets items by normalized title key without selecting
// representatives. The feed uses it to report duplicate counts.
func GroupByTitle(items []*recipe.Item) map[string][]*recipe.Item {
	groups := make(map[string][]*recipe.Item)
	for _, item := range items {
		key := Title(item.Title)
		groups[key] = append(groups[key], item)
	}
	return groups
}
