package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/cocktail-search/internal/config"
	"github.com/jonesrussell/cocktail-search/internal/extract"
	"github.com/jonesrussell/cocktail-search/internal/logger"
	"github.com/jonesrussell/cocktail-search/internal/recipe"
	"github.com/jonesrussell/cocktail-search/internal/sources"
)

type memSink struct {
	mu    sync.Mutex
	items []*recipe.Item
}

func (s *memSink) Write(item *recipe.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
	return nil
}

func (s *memSink) all() []*recipe.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*recipe.Item(nil), s.items...)
}

func testConfig() config.CrawlerConfig {
	return config.CrawlerConfig{
		UserAgent:        "test-agent",
		RequestTimeout:   5 * time.Second,
		RateLimit:        time.Millisecond,
		Parallelism:      2,
		HTTPRetryMax:     0,
		HTTPRetryDelay:   time.Millisecond,
		RespectRobotsTxt: false,
	}
}

const recipePage = `<html><body>
<h1>%s</h1>
<div class="ingredients"><ul><li>2 oz gin</li><li>1 oz vermouth</li></ul></div>
</body></html>`

func testRule(name string) *sources.Rule {
	rule := &sources.Rule{
		Name:           name,
		AllowedDomains: []string{"127.0.0.1"},
		Follow: []sources.FollowRule{
			{Pattern: `/tag/`, Action: sources.ActionDeny},
			{Pattern: `/recipes/[a-z]+$`, Action: sources.ActionExtract},
			{Pattern: `/list$`, Action: sources.ActionFollow},
		},
		Extractor: sources.ExtractorSpec{
			Kind: sources.KindGeneric,
			Generic: extract.Config{
				Title:           "h1",
				Ingredients:     "div.ingredients",
				IngredientItems: "li",
			},
		},
	}
	return rule
}

func TestCrawlExtractsLinkedRecipes(t *testing.T) {
	var tagHits atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<a href="/recipes/negroni">Negroni</a>
<a href="/recipes/martini">Martini</a>
<a href="/tag/gin">tagged</a>
</body></html>`)
	})
	mux.HandleFunc("/recipes/negroni", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, recipePage, "Negroni")
	})
	mux.HandleFunc("/recipes/martini", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, recipePage, "Martini")
	})
	mux.HandleFunc("/tag/", func(w http.ResponseWriter, r *http.Request) {
		tagHits.Add(1)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	rule := testRule("Test Site")
	rule.StartURLs = []string{server.URL + "/list"}
	require.NoError(t, rule.Validate())

	sink := &memSink{}
	c := New(testConfig(), logger.NewNop(), sink)
	require.NoError(t, c.Crawl(context.Background(), []*sources.Rule{rule}))

	items := sink.all()
	require.Len(t, items, 2)
	titles := map[string]bool{}
	for _, item := range items {
		titles[item.Title] = true
		assert.Equal(t, "Test Site", item.Source)
		assert.Equal(t, []string{"2 oz gin", "1 oz vermouth"}, item.Ingredients)
	}
	assert.True(t, titles["Negroni"])
	assert.True(t, titles["Martini"])

	assert.Zero(t, tagHits.Load(), "denied links must not be fetched")
	assert.EqualValues(t, 2, c.Stats().RecordsEmitted.Load())
	assert.GreaterOrEqual(t, c.Stats().PagesFetched.Load(), int64(3))
}

func TestCrawlRetriesTransientErrors(t *testing.T) {
	var attempts atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/recipes/sazerac", func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, recipePage, "Sazerac")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := testConfig()
	cfg.HTTPRetryMax = 3

	rule := testRule("Retry Site")
	rule.StartURLs = []string{server.URL + "/recipes/sazerac"}
	require.NoError(t, rule.Validate())

	sink := &memSink{}
	c := New(cfg, logger.NewNop(), sink)
	require.NoError(t, c.Crawl(context.Background(), []*sources.Rule{rule}))

	assert.EqualValues(t, 3, attempts.Load())
	require.Len(t, sink.all(), 1)
	assert.Equal(t, "Sazerac", sink.all()[0].Title)
	assert.EqualValues(t, 2, c.Stats().Retries.Load())
}

func TestCrawlDropsPermanentFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/recipes/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	rule := testRule("Gone Site")
	rule.StartURLs = []string{server.URL + "/recipes/gone"}
	require.NoError(t, rule.Validate())

	sink := &memSink{}
	c := New(testConfig(), logger.NewNop(), sink)
	require.NoError(t, c.Crawl(context.Background(), []*sources.Rule{rule}))

	assert.Empty(t, sink.all())
	assert.EqualValues(t, 1, c.Stats().RequestsFailed.Load())
}

func TestCrawlPaginatedListingChain(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<a class="r" href="/recipes/negroni">Negroni</a>
<a class="next" href="/list2">next page</a>
</body></html>`)
	})
	mux.HandleFunc("/list2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<a class="r" href="/recipes/martini">Martini</a>
</body></html>`)
	})
	mux.HandleFunc("/recipes/negroni", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, recipePage, "Negroni")
	})
	mux.HandleFunc("/recipes/martini", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, recipePage, "Martini")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	// The detail pages are reachable only through the listing extractor's
	// fetch requests; no follow rule matches them.
	rule := &sources.Rule{
		Name:           "Paginated Site",
		AllowedDomains: []string{"127.0.0.1"},
		StartURLs:      []string{server.URL + "/list"},
		Follow: []sources.FollowRule{
			{Pattern: `/list$`, Action: sources.ActionList},
		},
		Extractor: sources.ExtractorSpec{
			Kind: sources.KindGeneric,
			Generic: extract.Config{
				Title:           "h1",
				Ingredients:     "div.ingredients",
				IngredientItems: "li",
			},
		},
		Listing: &extract.LinksConfig{
			Links:    "a.r",
			NextPage: "a.next",
			Callback: extract.CallbackDetail,
		},
	}
	require.NoError(t, rule.Validate())

	sink := &memSink{}
	c := New(testConfig(), logger.NewNop(), sink)
	require.NoError(t, c.Crawl(context.Background(), []*sources.Rule{rule}))

	items := sink.all()
	require.Len(t, items, 2)
	titles := map[string]bool{}
	for _, item := range items {
		titles[item.Title] = true
	}
	assert.True(t, titles["Negroni"])
	assert.True(t, titles["Martini"], "recipes on later listing pages must be extracted")
}

func TestCrawlCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rule := testRule("Cancelled")
	rule.StartURLs = []string{"http://127.0.0.1:1/list"}
	require.NoError(t, rule.Validate())

	c := New(testConfig(), logger.NewNop(), &memSink{})
	assert.Error(t, c.Crawl(ctx, []*sources.Rule{rule}))
}
