package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/cocktail-search/internal/recipe"
	"github.com/jonesrussell/cocktail-search/internal/synonyms"
)

func TestBuildDocument(t *testing.T) {
	table := synonyms.New(map[string][]string{
		"simple syrup": {"sugar syrup"},
	})
	item := &recipe.Item{
		Title:   "Gin  Fizz",
		URL:     "https://example.com/gin-fizz",
		Source:  "Test Site",
		Picture: "https://example.com/fizz.jpg",
		Ingredients: []string{
			"2 oz gin",
			"1 oz  simple syrup",
		},
		ExtraIngredients: []string{"soda water"},
	}

	doc := BuildDocument(item, table)

	assert.Equal(t, "Gin  Fizz", doc.Title)
	assert.Equal(t, "ginfizz", doc.TitleNormalized)
	assert.Equal(t, "https://example.com/gin-fizz", doc.URL)
	assert.Equal(t, "Test Site", doc.Source)
	assert.Equal(t, "https://example.com/fizz.jpg", doc.Picture)

	// Searchable copy: one entry per line, primary then extra,
	// whitespace-normalized and synonym-expanded.
	assert.Equal(t, []string{
		"2 oz gin",
		"1 oz simple syrup sugar syrup",
		"soda water",
	}, doc.Ingredients)

	// Display copy: primary lines only, unexpanded, original spacing.
	assert.Equal(t, "2 oz gin\n1 oz  simple syrup", doc.IngredientsText)
}

func TestBuildDocumentNilTable(t *testing.T) {
	item := &recipe.Item{
		Title:       "Negroni",
		URL:         "u",
		Source:      "s",
		Ingredients: []string{"1 oz gin", "1 oz campari", "1 oz sweet vermouth"},
	}

	doc := BuildDocument(item, nil)
	assert.Equal(t, []string{"1 oz gin", "1 oz campari", "1 oz sweet vermouth"}, doc.Ingredients)
	assert.Equal(t, "negroni", doc.TitleNormalized)
}

func TestBuildDocumentDoesNotMutateItem(t *testing.T) {
	table := synonyms.New(map[string][]string{"gin": {"dry gin"}})
	item := &recipe.Item{
		Title:       "Martini",
		URL:         "u",
		Source:      "s",
		Ingredients: []string{"2 oz gin"},
	}

	_ = BuildDocument(item, table)
	assert.Equal(t, []string{"2 oz gin"}, item.Ingredients)
}
