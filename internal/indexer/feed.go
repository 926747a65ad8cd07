package indexer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jonesrussell/cocktail-search/internal/logger"
	"github.com/jonesrussell/cocktail-search/internal/normalize"
	"github.com/jonesrussell/cocktail-search/internal/recipe"
	"github.com/jonesrussell/cocktail-search/internal/synonyms"
)

// Format selects the feed output.
type Format string

const (
	// FormatElastic loads documents straight into Elasticsearch.
	FormatElastic Format = "es"
	// FormatXMLPipe writes an XML docset to Options.Output instead of
	// touching the index.
	FormatXMLPipe Format = "xmlpipe"
)

const defaultBatchSize = 500

// Store is the slice of the storage client the feeder needs.
type Store interface {
	Index() string
	IndexExists(ctx context.Context, name string) (bool, error)
	CreateIndex(ctx context.Context, name string) error
	BulkLoad(ctx context.Context, index string, docs []any, startID int) ([]int, error)
	SetIndexUpdated(ctx context.Context, index string, ts int64) error
}

// Options control a single feed run.
type Options struct {
	// Dedupe collapses near-duplicate recipes across all input files
	// before indexing. When false each record is indexed as read.
	Dedupe bool
	Format Format
	// Output receives the XML docset when Format is FormatXMLPipe.
	Output io.Writer
	// BatchSize caps documents per bulk request. Zero means the default.
	BatchSize int
}

// Stats summarizes a feed run.
type Stats struct {
	Read    int
	Dropped int
	Indexed int
}

// Feeder reads crawled recipe files and loads them into the index.
type Feeder struct {
	store  Store
	table  *synonyms.Table
	logger logger.Logger
}

func New(store Store, table *synonyms.Table, log logger.Logger) *Feeder {
	if log == nil {
		log = logger.NewNop()
	}
	return &Feeder{store: store, table: table, logger: log}
}

// Feed reads every input file, builds documents and sends them to the
// configured output. Records that fail validation are dropped with a
// warning rather than failing the run.
func (f *Feeder) Feed(ctx context.Context, paths []string, opts Options) (*Stats, error) {
	if opts.Format == "" {
		opts.Format = FormatElastic
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}

	stats := &Stats{}
	var items []*recipe.Item
	for _, path := range paths {
		fileItems, err := recipe.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		stats.Read += len(fileItems)
		for _, item := range fileItems {
			if !item.Valid() {
				stats.Dropped++
				f.logger.Warn("dropping invalid record",
					logger.String("url", item.URL),
					logger.String("title", item.Title))
				continue
			}
			items = append(items, item)
		}
	}

	if opts.Dedupe {
		before := len(items)
		items = normalize.Dedupe(items)
		f.logger.Info("deduplicated records",
			logger.Int("before", before),
			logger.Int("after", len(items)))
	}

	docs := make([]*Document, len(items))
	for i, item := range items {
		docs[i] = BuildDocument(item, f.table)
	}

	switch opts.Format {
	case FormatXMLPipe:
		if err := f.writeDocset(docs, opts.Output); err != nil {
			return nil, err
		}
	case FormatElastic:
		if err := f.load(ctx, docs, opts.BatchSize); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown feed format %q", opts.Format)
	}

	stats.Indexed = len(docs)
	return stats, nil
}

func (f *Feeder) load(ctx context.Context, docs []*Document, batchSize int) error {
	index := f.store.Index()
	exists, err := f.store.IndexExists(ctx, index)
	if err != nil {
		return err
	}
	if !exists {
		f.logger.Info("creating index", logger.String("index", index))
		if err := f.store.CreateIndex(ctx, index); err != nil {
			return err
		}
	}

	nextID := 1
	for start := 0; start < len(docs); start += batchSize {
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := make([]any, 0, end-start)
		for _, doc := range docs[start:end] {
			batch = append(batch, doc)
		}
		ids, err := f.store.BulkLoad(ctx, index, batch, nextID)
		if err != nil {
			return fmt.Errorf("bulk load: %w", err)
		}
		nextID += len(ids)
		f.logger.Debug("loaded batch",
			logger.Int("size", len(batch)),
			logger.Int("next_id", nextID))
	}

	if err := f.store.SetIndexUpdated(ctx, index, time.Now().Unix()); err != nil {
		return fmt.Errorf("stamping index: %w", err)
	}
	return nil
}

func (f *Feeder) writeDocset(docs []*Document, out io.Writer) error {
	if out == nil {
		return fmt.Errorf("xmlpipe output not set")
	}
	w := NewDocsetWriter(out, 1)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	for _, doc := range docs {
		if err := w.WriteDocument(doc); err != nil {
			return err
		}
	}
	return w.Close()
}
