// Package recipe defines the canonical extracted record for one cocktail
// recipe and the newline-delimited JSON stream it travels on.
package recipe

import "strings"

// Item is the canonical extracted unit produced by a site extractor.
// Items are immutable once emitted; downstream passes derive new fields but
// never mutate an Item in place.
type Item struct {
	// Title is the human-readable recipe name, unescaped and
	// whitespace-normalized.
	Title string `json:"title"`
	// Picture is an absolute URL to a representative image, empty if none.
	Picture string `json:"picture,omitempty"`
	// URL is the absolute URL of the source page. It is the provenance of
	// the record and the dedup tiebreaker.
	URL string `json:"url"`
	// Source is the human-readable name of the origin site.
	Source string `json:"source"`
	// Ingredients holds one entry per ingredient line in source order.
	Ingredients []string `json:"ingredients"`
	// ExtraIngredients holds secondary ingredient lines (garnish sub-lists,
	// infusions, bitters sub-recipes) that are indexed but not shown as the
	// primary list.
	ExtraIngredients []string `json:"extra_ingredients,omitempty"`
}

// Valid reports whether the item may be emitted: a non-empty title and at
// least one non-empty ingredient line.
func (i *Item) Valid() bool {
	if strings.TrimSpace(i.Title) == "" {
		return false
	}
	for _, ing := range i.Ingredients {
		if strings.TrimSpace(ing) != "" {
			return true
		}
	}
	return false
}
