package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		expected string
	}{
		{"plain text passes through", "2 oz gin", "2 oz gin"},
		{"surrounding whitespace stripped", "  2 oz gin \n", "2 oz gin"},
		{"whitespace collapsed", "2  oz\t\tgin", "2 oz gin"},
		{"inline tags removed", "<b>Old <i>Fashioned</i></b> &amp; Friends", "Old Fashioned & Friends"},
		{"entities unescaped", "Rum &amp; Coke &mdash; classic", "Rum & Coke — classic"},
		{"block tags become spaces", "<p>2 oz gin</p><p>1 oz vermouth</p>", "2 oz gin 1 oz vermouth"},
		{"attributes stripped with tag", `<span class="qty">2</span> oz`, "2 oz"},
		{"empty input", "", ""},
		{"only markup", "<div><br/></div>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clean(tt.fragment))
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		opts     []Option
		expected []string
	}{
		{
			name:     "br separated",
			fragment: "2 oz gin<br>1 oz vermouth<br>dash of bitters",
			expected: []string{"2 oz gin", "1 oz vermouth", "dash of bitters"},
		},
		{
			name:     "self closing br",
			fragment: "2 oz gin<br/>1 oz vermouth",
			expected: []string{"2 oz gin", "1 oz vermouth"},
		},
		{
			name:     "block elements break lines",
			fragment: "<p>2 oz gin</p><p>1 oz vermouth</p>",
			expected: []string{"2 oz gin", "1 oz vermouth"},
		},
		{
			name:     "inline markup stays on one line",
			fragment: "2 oz <b>gin</b><br>1 oz <i>dry</i> vermouth",
			expected: []string{"2 oz gin", "1 oz dry vermouth"},
		},
		{
			name:     "consecutive breaks collapse by default",
			fragment: "2 oz gin<br><br>1 oz vermouth",
			expected: []string{"2 oz gin", "1 oz vermouth"},
		},
		{
			name:     "consecutive breaks kept with IncludeBlank",
			fragment: "2 oz gin<br><br>1 oz vermouth",
			opts:     []Option{IncludeBlank()},
			expected: []string{"2 oz gin", "", "1 oz vermouth"},
		},
		{
			name:     "entities unescaped per line",
			fragment: "rum &amp; coke<br>lime",
			expected: []string{"rum & coke", "lime"},
		},
		{
			name:     "empty fragment",
			fragment: "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitLines(tt.fragment, tt.opts...))
		})
	}
}
