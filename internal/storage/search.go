package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Hit is one matched document.
type Hit struct {
	ID     string
	Score  float64
	Source map[string]any
}

// Result is the decoded body of one search.
type Result struct {
	Total int64
	Hits  []Hit
}

// esSearchResponse is the subset of the Elasticsearch response body the
// query engine consumes.
type esSearchResponse struct {
	Error *json.RawMessage `json:"error"`
	Hits  struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string         `json:"_id"`
			Score  float64        `json:"_score"`
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (r *esSearchResponse) toResult() Result {
	result := Result{Total: r.Hits.Total.Value}
	for _, h := range r.Hits.Hits {
		result.Hits = append(result.Hits, Hit{ID: h.ID, Score: h.Score, Source: h.Source})
	}
	return result
}

// Search executes one query body against the configured index.
func (c *Client) Search(ctx context.Context, body map[string]any) (*Result, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.cfg.Index),
		c.es.Search.WithBody(bytes.NewReader(raw)),
	)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var decoded esSearchResponse
	if decodeErr := json.NewDecoder(res.Body).Decode(&decoded); decodeErr != nil {
		return nil, fmt.Errorf("decode search response: %w", decodeErr)
	}
	result := decoded.toResult()
	return &result, nil
}

// MultiSearch batches several query bodies into a single msearch
// round-trip, preserving order. Any per-query error fails the whole call.
func (c *Client) MultiSearch(ctx context.Context, bodies []map[string]any) ([]Result, error) {
	if len(bodies) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	for _, body := range bodies {
		// Header line selects the index; body line carries the query.
		header, err := json.Marshal(map[string]any{"index": c.cfg.Index})
		if err != nil {
			return nil, fmt.Errorf("marshal msearch header: %w", err)
		}
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal msearch body: %w", err)
		}
		buf.Write(header)
		buf.WriteByte('\n')
		buf.Write(raw)
		buf.WriteByte('\n')
	}

	res, err := c.es.Msearch(
		&buf,
		c.es.Msearch.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("execute msearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("msearch error: %s", res.String())
	}

	var decoded struct {
		Responses []esSearchResponse `json:"responses"`
	}
	if decodeErr := json.NewDecoder(res.Body).Decode(&decoded); decodeErr != nil {
		return nil, fmt.Errorf("decode msearch response: %w", decodeErr)
	}

	results := make([]Result, 0, len(decoded.Responses))
	for i, r := range decoded.Responses {
		if r.Error != nil {
			return nil, fmt.Errorf("msearch query %d error: %s", i, string(*r.Error))
		}
		results = append(results, r.toResult())
	}
	if len(results) != len(bodies) {
		return nil, fmt.Errorf("msearch returned %d responses for %d queries", len(results), len(bodies))
	}
	return results, nil
}

// Analyze runs text through the ingredients field analyzer of the
// configured index, returning the extracted tokens. This mirrors the
// index's own tokenizer so user input matches what was indexed.
func (c *Client) Analyze(ctx context.Context, text string) ([]string, error) {
	body, err := json.Marshal(map[string]any{
		"field": "ingredients",
		"text":  text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal analyze body: %w", err)
	}

	res, err := c.es.Indices.Analyze(
		c.es.Indices.Analyze.WithContext(ctx),
		c.es.Indices.Analyze.WithIndex(c.cfg.Index),
		c.es.Indices.Analyze.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("analyze text: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("analyze error: %s", res.String())
	}

	var decoded struct {
		Tokens []struct {
			Token string `json:"token"`
		} `json:"tokens"`
	}
	if decodeErr := json.NewDecoder(res.Body).Decode(&decoded); decodeErr != nil {
		return nil, fmt.Errorf("decode analyze response: %w", decodeErr)
	}

	tokens := make([]string, 0, len(decoded.Tokens))
	for _, t := range decoded.Tokens {
		tokens = append(tokens, t.Token)
	}
	return tokens, nil
}
