package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// BulkLoad indexes documents in one bulk request. Document ids are assigned
// monotonically starting at startID, matching the docset protocol's
// increasing integer ids, and the ids used are returned.
func (c *Client) BulkLoad(ctx context.Context, index string, docs []any, startID int) ([]int, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	ids := make([]int, 0, len(docs))
	for i, doc := range docs {
		id := startID + i
		action, err := json.Marshal(map[string]any{
			"index": map[string]any{
				"_index": index,
				"_id":    strconv.Itoa(id),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("marshal bulk action: %w", err)
		}
		source, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshal bulk document %d: %w", id, err)
		}
		buf.Write(action)
		buf.WriteByte('\n')
		buf.Write(source)
		buf.WriteByte('\n')
		ids = append(ids, id)
	}

	res, err := c.es.Bulk(
		&buf,
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return nil, fmt.Errorf("execute bulk load: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("bulk load error: %s", res.String())
	}

	var decoded struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
			Error  *struct {
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if decodeErr := json.NewDecoder(res.Body).Decode(&decoded); decodeErr != nil {
		return nil, fmt.Errorf("decode bulk response: %w", decodeErr)
	}
	if decoded.Errors {
		for i, item := range decoded.Items {
			for _, op := range item {
				if op.Error != nil {
					return nil, fmt.Errorf("bulk item %d failed (status %d): %s", i, op.Status, op.Error.Reason)
				}
			}
		}
		return nil, fmt.Errorf("bulk load reported errors")
	}
	return ids, nil
}
