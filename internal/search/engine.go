// Package search builds structured queries from user ingredient phrases
// and assembles grouped cocktail results from the index engine.
package search

import (
	"context"

	"github.com/jonesrussell/cocktail-search/internal/storage"
)

// Engine is the slice of the index engine the query side depends on.
// *storage.Client satisfies it.
type Engine interface {
	// Analyze tokenizes text through the index's ingredient analyzer.
	Analyze(ctx context.Context, text string) ([]string, error)
	// Search executes one query body.
	Search(ctx context.Context, body map[string]any) (*storage.Result, error)
	// MultiSearch executes several bodies in one round-trip, in order.
	MultiSearch(ctx context.Context, bodies []map[string]any) ([]storage.Result, error)
	// IndexUpdated returns the index's last-modified stamp.
	IndexUpdated(ctx context.Context) (int64, error)
}
