// Package indexer turns crawled recipe records into index documents and
// feeds them to the index engine, either directly over the bulk API or as
// an XML docset for an external indexer.
package indexer

import (
	"regexp"
	"strings"

	"github.com/jonesrussell/cocktail-search/internal/normalize"
	"github.com/jonesrussell/cocktail-search/internal/recipe"
	"github.com/jonesrussell/cocktail-search/internal/synonyms"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Document is the wire record sent to the index engine.
type Document struct {
	// Title is the display title, searchable.
	Title string `json:"title" mapstructure:"title"`
	// TitleNormalized is the grouping key derived from Title.
	TitleNormalized string `json:"title_normalized" mapstructure:"title_normalized"`
	// Ingredients is the searchable copy: one entry per ingredient line
	// (primary then extra), whitespace-normalized and synonym-expanded.
	// Indexed as a multi-valued text field, each entry is one "sentence".
	Ingredients []string `json:"ingredients" mapstructure:"ingredients"`
	// IngredientsText is the display copy: the primary ingredient lines
	// joined with newlines, unexpanded.
	IngredientsText string `json:"ingredients_text" mapstructure:"ingredients_text"`
	URL             string `json:"url" mapstructure:"url"`
	Source          string `json:"source" mapstructure:"source"`
	Picture         string `json:"picture,omitempty" mapstructure:"picture"`
}

// BuildDocument derives the index document for one record. The record
// itself is never mutated; synonym expansion applies only to the searchable
// copy.
func BuildDocument(item *recipe.Item, table *synonyms.Table) *Document {
	lines := make([]string, 0, len(item.Ingredients)+len(item.ExtraIngredients))
	for _, line := range item.Ingredients {
		lines = append(lines, expandLine(line, table))
	}
	for _, line := range item.ExtraIngredients {
		lines = append(lines, expandLine(line, table))
	}

	return &Document{
		Title:           item.Title,
		TitleNormalized: normalize.Title(item.Title),
		Ingredients:     lines,
		IngredientsText: strings.Join(item.Ingredients, "\n"),
		URL:             item.URL,
		Source:          item.Source,
		Picture:         item.Picture,
	}
}

func expandLine(line string, table *synonyms.Table) string {
	line = strings.TrimSpace(whitespaceRegex.ReplaceAllString(line, " "))
	if table == nil {
		return line
	}
	return table.Expand(line)
}
