package search

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// defaultField is the indexed field a phrase matches when it carries no
// field prefix.
const defaultField = "ingredients"

// sentenceMaxGaps bounds how far apart a phrase's words may sit and still
// match. The indexed ingredients field separates lines with a position gap
// larger than this, so one phrase can never match across two lines.
const sentenceMaxGaps = 50

var fieldPrefixRegex = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*):(.*)$`)

// BuildQuery turns user ingredient phrases into one boolean query. Each
// phrase becomes a per-line proximity clause on its field and the clauses
// are joined with OR. Every word is run through the engine's analyzer so
// user input stems the same way the index did; an analyzer failure fails
// the whole build. Returns nil when no phrase produced a clause.
func BuildQuery(ctx context.Context, engine Engine, phrases []string) (map[string]any, error) {
	var clauses []map[string]any
	for _, phrase := range phrases {
		clause, err := phraseClause(ctx, engine, phrase)
		if err != nil {
			return nil, err
		}
		if clause != nil {
			clauses = append(clauses, clause)
		}
	}
	if len(clauses) == 0 {
		return nil, nil
	}
	return map[string]any{
		"bool": map[string]any{
			"should":               clauses,
			"minimum_should_match": 1,
		},
	}, nil
}

func phraseClause(ctx context.Context, engine Engine, phrase string) (map[string]any, error) {
	field := defaultField
	body := strings.TrimSpace(phrase)
	if m := fieldPrefixRegex.FindStringSubmatch(body); m != nil {
		field = m[1]
		body = strings.TrimSpace(m[2])
	}
	if body == "" {
		return nil, nil
	}

	var intervals []map[string]any
	for _, span := range splitQuoted(body) {
		if span.quoted {
			// A quoted span stays contiguous: its analyzed words must
			// appear adjacent and in order.
			tokens, err := engine.Analyze(ctx, span.text)
			if err != nil {
				return nil, fmt.Errorf("analyzing %q: %w", span.text, err)
			}
			if len(tokens) == 0 {
				continue
			}
			intervals = append(intervals, map[string]any{
				"match": map[string]any{
					"query":    strings.Join(tokens, " "),
					"max_gaps": 0,
					"ordered":  true,
				},
			})
			continue
		}
		for _, word := range strings.Fields(span.text) {
			tokens, err := engine.Analyze(ctx, word)
			if err != nil {
				return nil, fmt.Errorf("analyzing %q: %w", word, err)
			}
			for _, token := range tokens {
				intervals = append(intervals, map[string]any{
					"match": map[string]any{"query": token},
				})
			}
		}
	}
	if len(intervals) == 0 {
		return nil, nil
	}

	return map[string]any{
		"intervals": map[string]any{
			field: map[string]any{
				"all_of": map[string]any{
					"ordered":   true,
					"max_gaps":  sentenceMaxGaps,
					"intervals": intervals,
				},
			},
		},
	}, nil
}

type querySpan struct {
	text   string
	quoted bool
}

// splitQuoted slices a phrase into quoted and unquoted spans. An
// unterminated quote runs to the end of the phrase.
func splitQuoted(s string) []querySpan {
	parts := strings.Split(s, `"`)
	spans := make([]querySpan, 0, len(parts))
	for i, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		spans = append(spans, querySpan{text: part, quoted: i%2 == 1})
	}
	return spans
}
