package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clauseField(t *testing.T, clause map[string]any) string {
	t.Helper()
	intervals, ok := clause["intervals"].(map[string]any)
	require.True(t, ok, "clause should be an intervals query")
	require.Len(t, intervals, 1)
	for field := range intervals {
		return field
	}
	return ""
}

func shouldClauses(t *testing.T, query map[string]any) []map[string]any {
	t.Helper()
	boolQuery, ok := query["bool"].(map[string]any)
	require.True(t, ok)
	raw, ok := boolQuery["should"].([]map[string]any)
	require.True(t, ok)
	return raw
}

func TestBuildQueryFieldScoping(t *testing.T) {
	engine := &spyEngine{}

	query, err := BuildQuery(context.Background(), engine, []string{"bitters:orange", "gin"})
	require.NoError(t, err)
	require.NotNil(t, query)

	clauses := shouldClauses(t, query)
	require.Len(t, clauses, 2)
	assert.Equal(t, "bitters", clauseField(t, clauses[0]))
	assert.Equal(t, "ingredients", clauseField(t, clauses[1]))
}

func TestBuildQueryAnalyzesEveryWord(t *testing.T) {
	engine := &spyEngine{}

	_, err := BuildQuery(context.Background(), engine, []string{"dry vermouth"})
	require.NoError(t, err)
	assert.Equal(t, []string{"dry", "vermouth"}, engine.analyzeCalls)
}

func TestBuildQueryQuotedSpanStaysAtomic(t *testing.T) {
	engine := &spyEngine{}

	query, err := BuildQuery(context.Background(), engine, []string{`"sweet vermouth" gin`})
	require.NoError(t, err)
	require.NotNil(t, query)

	// The quoted span is analyzed whole, not word by word.
	assert.Contains(t, engine.analyzeCalls, "sweet vermouth")
	assert.Contains(t, engine.analyzeCalls, "gin")

	clauses := shouldClauses(t, query)
	require.Len(t, clauses, 1)
	allOf := clauses[0]["intervals"].(map[string]any)["ingredients"].(map[string]any)["all_of"].(map[string]any)
	intervals := allOf["intervals"].([]map[string]any)
	require.Len(t, intervals, 2)
	quoted := intervals[0]["match"].(map[string]any)
	assert.Equal(t, 0, quoted["max_gaps"], "quoted words must be contiguous")
	assert.Equal(t, true, quoted["ordered"])
}

func TestBuildQueryPhraseConstrainedToOneLine(t *testing.T) {
	engine := &spyEngine{}

	query, err := BuildQuery(context.Background(), engine, []string{"gin vermouth"})
	require.NoError(t, err)

	clauses := shouldClauses(t, query)
	allOf := clauses[0]["intervals"].(map[string]any)["ingredients"].(map[string]any)["all_of"].(map[string]any)
	gaps, ok := allOf["max_gaps"].(int)
	require.True(t, ok)
	assert.Less(t, gaps, 100, "a phrase must never span two ingredient lines")
}

func TestBuildQueryErrorPropagation(t *testing.T) {
	engine := &spyEngine{analyzeErr: errors.New("connect refused"), analyzeErrOn: "gin"}

	query, err := BuildQuery(context.Background(), engine, []string{"vermouth", "gin", "bitters"})
	require.Error(t, err)
	assert.Nil(t, query, "no partial query may survive a failed build")
}

func TestBuildQueryBlankPhrasesIgnored(t *testing.T) {
	engine := &spyEngine{}

	query, err := BuildQuery(context.Background(), engine, []string{"", "   "})
	require.NoError(t, err)
	assert.Nil(t, query)
	assert.Zero(t, engine.calls())
}

func TestSplitQuoted(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []querySpan
	}{
		{
			name:     "no quotes",
			input:    "dry gin",
			expected: []querySpan{{text: "dry gin"}},
		},
		{
			name:  "quoted middle",
			input: `2 oz "sweet vermouth" stirred`,
			expected: []querySpan{
				{text: "2 oz "},
				{text: "sweet vermouth", quoted: true},
				{text: " stirred"},
			},
		},
		{
			name:  "unterminated quote runs to the end",
			input: `gin "sweet vermouth`,
			expected: []querySpan{
				{text: "gin "},
				{text: "sweet vermouth", quoted: true},
			},
		},
		{
			name:     "empty quoted span dropped",
			input:    `gin "" tonic`,
			expected: []querySpan{{text: "gin "}, {text: " tonic"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitQuoted(tt.input))
		})
	}
}
