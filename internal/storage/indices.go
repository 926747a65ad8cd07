package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// positionIncrementGap separates ingredient lines in the indexed
// ingredients field. A phrase constrained to a smaller slop can never span
// two lines.
const positionIncrementGap = 100

// Mapping returns the index mapping for recipe documents. `ingredients` is
// the searchable per-line field; `title_normalized` is the grouping key;
// everything else is stored for display only.
func Mapping() map[string]any {
	return map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"title": map[string]any{
					"type": "text",
				},
				"title_normalized": map[string]any{
					"type": "keyword",
				},
				"ingredients": map[string]any{
					"type":                   "text",
					"analyzer":               "english",
					"position_increment_gap": positionIncrementGap,
				},
				"ingredients_text": map[string]any{
					"type":  "keyword",
					"index": false,
				},
				"url": map[string]any{
					"type":  "keyword",
					"index": false,
				},
				"source": map[string]any{
					"type":  "keyword",
					"index": false,
				},
				"picture": map[string]any{
					"type":  "keyword",
					"index": false,
				},
			},
		},
	}
}

// CreateIndex creates the named index with the recipe mapping.
func (c *Client) CreateIndex(ctx context.Context, name string) error {
	body, err := json.Marshal(Mapping())
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}

	res, err := c.es.Indices.Create(
		name,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index error: %s", res.String())
	}
	return nil
}

// DeleteIndex deletes the named index.
func (c *Client) DeleteIndex(ctx context.Context, name string) error {
	res, err := c.es.Indices.Delete(
		[]string{name},
		c.es.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete index: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == 404 {
		return fmt.Errorf("%w: %s", ErrIndexNotFound, name)
	}
	if res.IsError() {
		return fmt.Errorf("delete index error: %s", res.String())
	}
	return nil
}

// IndexExists reports whether the named index exists.
func (c *Client) IndexExists(ctx context.Context, name string) (bool, error) {
	res, err := c.es.Indices.Exists(
		[]string{name},
		c.es.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("check index existence: %w", err)
	}
	defer res.Body.Close()
	return res.StatusCode == 200, nil
}

// IndexInfo describes one index for the admin listing.
type IndexInfo struct {
	Name     string `json:"index"`
	Health   string `json:"health"`
	DocCount string `json:"docs.count"`
	Size     string `json:"store.size"`
}

// ListIndices lists non-system indices.
func (c *Client) ListIndices(ctx context.Context) ([]IndexInfo, error) {
	res, err := c.es.Cat.Indices(
		c.es.Cat.Indices.WithContext(ctx),
		c.es.Cat.Indices.WithFormat("json"),
	)
	if err != nil {
		return nil, fmt.Errorf("list indices: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("list indices error: %s", res.String())
	}

	var all []IndexInfo
	if decodeErr := json.NewDecoder(res.Body).Decode(&all); decodeErr != nil {
		return nil, fmt.Errorf("decode indices listing: %w", decodeErr)
	}

	indices := make([]IndexInfo, 0, len(all))
	for _, info := range all {
		if strings.HasPrefix(info.Name, ".") {
			continue
		}
		indices = append(indices, info)
	}
	return indices, nil
}

// SetIndexUpdated records the index build timestamp in the mapping _meta.
// The HTTP layer uses it as the cache-busting token.
func (c *Client) SetIndexUpdated(ctx context.Context, index string, ts int64) error {
	body, err := json.Marshal(map[string]any{
		"_meta": map[string]any{"updated": ts},
	})
	if err != nil {
		return fmt.Errorf("marshal meta mapping: %w", err)
	}

	res, err := c.es.Indices.PutMapping(
		[]string{index},
		bytes.NewReader(body),
		c.es.Indices.PutMapping.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("set index updated: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("set index updated error: %s", res.String())
	}
	return nil
}

// IndexUpdated reads the index build timestamp, zero when never set.
func (c *Client) IndexUpdated(ctx context.Context) (int64, error) {
	res, err := c.es.Indices.GetMapping(
		c.es.Indices.GetMapping.WithContext(ctx),
		c.es.Indices.GetMapping.WithIndex(c.cfg.Index),
	)
	if err != nil {
		return 0, fmt.Errorf("get index mapping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("get index mapping error: %s", res.String())
	}

	var payload map[string]struct {
		Mappings struct {
			Meta struct {
				Updated int64 `json:"updated"`
			} `json:"_meta"`
		} `json:"mappings"`
	}
	if decodeErr := json.NewDecoder(res.Body).Decode(&payload); decodeErr != nil {
		return 0, fmt.Errorf("decode index mapping: %w", decodeErr)
	}
	for _, idx := range payload {
		return idx.Mappings.Meta.Updated, nil
	}
	return 0, nil
}
