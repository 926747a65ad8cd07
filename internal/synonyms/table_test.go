package synonyms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	input := `
# ingredient synonyms
simple syrup > sugar syrup
rye > rye whiskey

cointreau > triple sec
cointreau > curacao
`
	table, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing separator", "simple syrup sugar syrup"},
		{"empty phrase", "> sugar syrup"},
		{"empty expansion", "simple syrup >"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestExpandInclusive(t *testing.T) {
	table := New(map[string][]string{
		"simple syrup": {"sugar syrup"},
	})

	expanded := table.Expand("1 oz simple syrup")
	assert.Contains(t, expanded, "simple syrup")
	assert.Contains(t, expanded, "sugar syrup")
	assert.True(t, strings.HasPrefix(expanded, "1 oz "))
}

func TestExpandTransitive(t *testing.T) {
	table := New(map[string][]string{
		"cointreau":  {"triple sec"},
		"triple sec": {"curacao"},
	})

	expanded := table.Expand("1 oz cointreau")
	assert.Contains(t, expanded, "cointreau")
	assert.Contains(t, expanded, "triple sec")
	assert.Contains(t, expanded, "curacao")
}

func TestExpandCycleSafe(t *testing.T) {
	table := New(map[string][]string{
		"absinthe": {"pastis"},
		"pastis":   {"absinthe"},
	})

	expanded := table.Expand("rinse of absinthe")
	assert.Equal(t, "rinse of absinthe pastis", expanded)
}

func TestExpandKeepsOriginalCasing(t *testing.T) {
	table := New(map[string][]string{
		"angostura": {"angostura bitters"},
	})

	expanded := table.Expand("2 dashes Angostura")
	assert.Equal(t, "2 dashes Angostura angostura bitters", expanded)
}

func TestExpandPrefersLongerPhrase(t *testing.T) {
	table := New(map[string][]string{
		"orange":         {"orange juice"},
		"orange bitters": {"aromatic bitters"},
	})

	expanded := table.Expand("2 dashes orange bitters")
	assert.Contains(t, expanded, "aromatic bitters")
	assert.NotContains(t, expanded, "orange juice")
}

func TestExpandNoMatchPassesThrough(t *testing.T) {
	table := New(map[string][]string{
		"simple syrup": {"sugar syrup"},
	})
	assert.Equal(t, "2 oz gin", table.Expand("2 oz gin"))

	empty := New(nil)
	assert.Equal(t, "2 oz gin", empty.Expand("2 oz gin"))
}
