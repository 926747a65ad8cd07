package indexer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/cocktail-search/internal/recipe"
)

type fakeStore struct {
	index    string
	exists   bool
	created  []string
	loaded   [][]any
	startIDs []int
	updated  int64
}

func (f *fakeStore) Index() string { return f.index }

func (f *fakeStore) IndexExists(_ context.Context, _ string) (bool, error) {
	return f.exists, nil
}

func (f *fakeStore) CreateIndex(_ context.Context, name string) error {
	f.created = append(f.created, name)
	f.exists = true
	return nil
}

func (f *fakeStore) BulkLoad(_ context.Context, _ string, docs []any, startID int) ([]int, error) {
	f.loaded = append(f.loaded, docs)
	f.startIDs = append(f.startIDs, startID)
	ids := make([]int, len(docs))
	for i := range docs {
		ids[i] = startID + i
	}
	return ids, nil
}

func (f *fakeStore) SetIndexUpdated(_ context.Context, _ string, ts int64) error {
	f.updated = ts
	return nil
}

func writeRecords(t *testing.T, items ...*recipe.Item) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.jsonl")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := recipe.NewWriter(f)
	for _, item := range items {
		require.NoError(t, w.Write(item))
	}
	require.NoError(t, w.Flush())
	require.NoError(t, f.Close())
	return path
}

func testItem(title, url string) *recipe.Item {
	return &recipe.Item{
		Title:       title,
		URL:         url,
		Source:      "test",
		Ingredients: []string{"2 oz gin"},
	}
}

func TestFeedLoadsDocuments(t *testing.T) {
	store := &fakeStore{index: "cocktails"}
	path := writeRecords(t,
		testItem("Martini", "a"),
		testItem("Negroni", "b"),
	)

	feeder := New(store, nil, nil)
	stats, err := feeder.Feed(context.Background(), []string{path}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Read)
	assert.Equal(t, 0, stats.Dropped)
	assert.Equal(t, 2, stats.Indexed)

	// The missing index is created before loading, ids start at 1, and
	// the build stamp is recorded afterwards.
	assert.Equal(t, []string{"cocktails"}, store.created)
	require.Len(t, store.loaded, 1)
	assert.Len(t, store.loaded[0], 2)
	assert.Equal(t, []int{1}, store.startIDs)
	assert.NotZero(t, store.updated)
}

func TestFeedDropsInvalidRecords(t *testing.T) {
	store := &fakeStore{index: "cocktails", exists: true}
	path := writeRecords(t,
		testItem("Martini", "a"),
		&recipe.Item{Title: "", URL: "b", Source: "test", Ingredients: []string{"x"}},
	)

	feeder := New(store, nil, nil)
	stats, err := feeder.Feed(context.Background(), []string{path}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Read)
	assert.Equal(t, 1, stats.Dropped)
	assert.Equal(t, 1, stats.Indexed)
}

func TestFeedGlobalDedupe(t *testing.T) {
	store := &fakeStore{index: "cocktails", exists: true}
	// Duplicates split across two input files; --dedupe runs across the
	// concatenation, not per file.
	first := writeRecords(t, testItem("Dry Martini Cocktail", "a"))
	second := writeRecords(t, testItem("The Martini", "b"))

	feeder := New(store, nil, nil)
	stats, err := feeder.Feed(context.Background(), []string{first, second}, Options{Dedupe: true})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Read)
	assert.Equal(t, 1, stats.Indexed)
	require.Len(t, store.loaded, 1)
	assert.Len(t, store.loaded[0], 1)
}

func TestFeedWithoutDedupeKeepsDuplicates(t *testing.T) {
	store := &fakeStore{index: "cocktails", exists: true}
	path := writeRecords(t,
		testItem("Dry Martini Cocktail", "a"),
		testItem("The Martini", "b"),
	)

	feeder := New(store, nil, nil)
	stats, err := feeder.Feed(context.Background(), []string{path}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Indexed)
}

func TestFeedBatching(t *testing.T) {
	store := &fakeStore{index: "cocktails", exists: true}
	items := make([]*recipe.Item, 5)
	for i := range items {
		items[i] = testItem("Drink "+string(rune('A'+i)), "u")
	}
	path := writeRecords(t, items...)

	feeder := New(store, nil, nil)
	_, err := feeder.Feed(context.Background(), []string{path}, Options{BatchSize: 2})
	require.NoError(t, err)

	require.Len(t, store.loaded, 3)
	assert.Equal(t, []int{1, 3, 5}, store.startIDs)
}

func TestFeedXMLPipe(t *testing.T) {
	var buf bytes.Buffer
	path := writeRecords(t, testItem("Martini", "a"))

	feeder := New(nil, nil, nil)
	stats, err := feeder.Feed(context.Background(), []string{path}, Options{
		Format: FormatXMLPipe,
		Output: &buf,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Indexed)
	assert.Contains(t, buf.String(), "<sphinx:docset>")
	assert.Contains(t, buf.String(), "<title>Martini</title>")
}

func TestFeedUnknownFormat(t *testing.T) {
	path := writeRecords(t, testItem("Martini", "a"))
	feeder := New(&fakeStore{index: "c", exists: true}, nil, nil)
	_, err := feeder.Feed(context.Background(), []string{path}, Options{Format: "bogus"})
	assert.Error(t, err)
}

func TestFeedMissingFile(t *testing.T) {
	feeder := New(&fakeStore{index: "c", exists: true}, nil, nil)
	_, err := feeder.Feed(context.Background(), []string{"/nonexistent/records.jsonl"}, Options{})
	assert.Error(t, err)
}
