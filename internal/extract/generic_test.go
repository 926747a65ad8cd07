package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailPage = `
<html><body>
<h1 class="recipe-title">The <em>Perfect</em> Martini</h1>
<img class="photo" src="/img/martini.jpg">
<div class="ingredients">
  <ul>
    <li>2 1/2 oz gin</li>
    <li>1/2 oz dry vermouth</li>
    <li></li>
    <li>1 dash orange bitters</li>
  </ul>
</div>
</body></html>`

const brSeparatedPage = `
<html><body>
<h2 id="name">Sazerac</h2>
<div id="recipe">2 oz rye whiskey<br>1 sugar cube<br>3 dashes Peychaud's bitters<br>Stir with ice and strain</div>
</body></html>`

const sectionedPage = `
<html><body>
<h1>Gin Fizz</h1>
<div class="list">
  <p>SYRUP</p>
  <p>1 oz sugar</p>
  <p>1 oz water</p>
  <p>COCKTAIL</p>
  <p>2 oz gin</p>
  <p>1 oz syrup</p>
</div>
</body></html>`

func mustDocument(t *testing.T, html string) Document {
	t.Helper()
	doc, err := NewDocument(html)
	require.NoError(t, err)
	return doc
}

func TestGeneric_ItemSelectors(t *testing.T) {
	fn := Generic(Config{
		Source:          "Test Site",
		Title:           "h1.recipe-title",
		Ingredients:     "div.ingredients",
		IngredientItems: "li",
		Picture:         "img.photo",
	})

	outcomes := fn(mustDocument(t, detailPage), "https://example.com/recipes/martini", nil)
	require.Len(t, outcomes, 1)
	item, ok := outcomes[0].Item()
	require.True(t, ok)

	assert.Equal(t, "The Perfect Martini", item.Title)
	assert.Equal(t, "https://example.com/recipes/martini", item.URL)
	assert.Equal(t, "Test Site", item.Source)
	assert.Equal(t, "https://example.com/img/martini.jpg", item.Picture)
	assert.Equal(t, []string{
		"2 1/2 oz gin",
		"1/2 oz dry vermouth",
		"1 dash orange bitters",
	}, item.Ingredients)
	assert.Empty(t, item.ExtraIngredients)
}

func TestGeneric_BrSeparatedWithStopPhrase(t *testing.T) {
	fn := Generic(Config{
		Source:      "Test Site",
		Title:       "h2#name",
		Ingredients: "div#recipe",
		StopPhrases: []string{"Stir", "Shake"},
	})

	outcomes := fn(mustDocument(t, brSeparatedPage), "https://example.com/sazerac", nil)
	require.Len(t, outcomes, 1)
	item, _ := outcomes[0].Item()

	assert.Equal(t, "Sazerac", item.Title)
	assert.Equal(t, []string{
		"2 oz rye whiskey",
		"1 sugar cube",
		"3 dashes Peychaud's bitters",
	}, item.Ingredients)
}

func TestGeneric_UpperSectionHeaders(t *testing.T) {
	fn := Generic(Config{
		Source:          "Test Site",
		Title:           "h1",
		Ingredients:     "div.list",
		IngredientItems: "p",
		SectionHeader:   SectionHeaderUpper,
	})

	outcomes := fn(mustDocument(t, sectionedPage), "https://example.com/gin-fizz", nil)
	require.Len(t, outcomes, 1)
	item, _ := outcomes[0].Item()

	assert.Equal(t, []string{"2 oz gin", "1 oz syrup"}, item.Ingredients)
	assert.Equal(t, []string{"1 oz sugar", "1 oz water"}, item.ExtraIngredients)
}

func TestGeneric_NoTitleNoRecord(t *testing.T) {
	fn := Generic(Config{
		Source:      "Test Site",
		Title:       "h1.missing",
		Ingredients: "div.ingredients",
	})

	outcomes := fn(mustDocument(t, detailPage), "https://example.com/x", nil)
	assert.Empty(t, outcomes)
}

func TestGeneric_NoIngredientsNoRecord(t *testing.T) {
	fn := Generic(Config{
		Source:      "Test Site",
		Title:       "h1.recipe-title",
		Ingredients: "div.missing",
	})

	outcomes := fn(mustDocument(t, detailPage), "https://example.com/x", nil)
	assert.Empty(t, outcomes)
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		ref      string
		expected string
	}{
		{"relative path", "https://example.com/a/b", "/img/x.jpg", "https://example.com/img/x.jpg"},
		{"relative to page", "https://example.com/a/", "x.jpg", "https://example.com/a/x.jpg"},
		{"already absolute", "https://example.com/a", "https://cdn.example.com/x.jpg", "https://cdn.example.com/x.jpg"},
		{"whitespace trimmed", "https://example.com/", " /x.jpg ", "https://example.com/x.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AbsoluteURL(tt.base, tt.ref))
		})
	}
}
