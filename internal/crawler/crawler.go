// Package crawler drives the per-source crawl: it turns site rules into
// colly collectors, dispatches fetched pages to the right extractor, and
// forwards every record to a sink.
package crawler

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	colly "github.com/gocolly/colly/v2"
	"github.com/google/uuid"

	"github.com/jonesrussell/cocktail-search/internal/config"
	"github.com/jonesrussell/cocktail-search/internal/extract"
	"github.com/jonesrussell/cocktail-search/internal/logger"
	"github.com/jonesrussell/cocktail-search/internal/recipe"
	"github.com/jonesrussell/cocktail-search/internal/sources"
)

// Request context keys.
const (
	// callbackCtxKey names the extractor an enqueued request should run,
	// overriding follow-rule dispatch.
	callbackCtxKey = "callback"
	// retryCountKey tracks HTTP retry count in OnError.
	retryCountKey = "retry_count"
	// bagPrefix prefixes extractor context-bag entries in the request context.
	bagPrefix = "bag:"
)

// RecordSink receives every record the crawl emits.
type RecordSink interface {
	Write(item *recipe.Item) error
}

// Stats holds crawl counters. All fields are updated atomically from
// collector callbacks.
type Stats struct {
	PagesFetched   atomic.Int64
	RecordsEmitted atomic.Int64
	RequestsFailed atomic.Int64
	Retries        atomic.Int64
	PagesDropped   atomic.Int64
}

// Crawler owns the crawl configuration and the record sink.
type Crawler struct {
	cfg    config.CrawlerConfig
	logger logger.Logger
	sink   RecordSink
	stats  Stats
}

// New creates a crawler writing records to sink.
func New(cfg config.CrawlerConfig, log logger.Logger, sink RecordSink) *Crawler {
	return &Crawler{
		cfg:    cfg,
		logger: log,
		sink:   sink,
	}
}

// Stats returns the crawl counters.
func (c *Crawler) Stats() *Stats {
	return &c.stats
}

// Crawl runs every source rule to completion. Sources are crawled one after
// another; requests within a source run concurrently up to the configured
// per-host parallelism. The crawl for a source terminates when its frontier
// drains.
func (c *Crawler) Crawl(ctx context.Context, rules []*sources.Rule) error {
	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.crawlSource(ctx, rule); err != nil {
			return fmt.Errorf("crawl source %s: %w", rule.Name, err)
		}
	}
	return nil
}

// crawlSource crawls a single source to frontier exhaustion.
func (c *Crawler) crawlSource(ctx context.Context, rule *sources.Rule) error {
	log := c.logger.With(
		logger.String("source", rule.Name),
		logger.String("crawl_id", uuid.NewString()),
	)

	collector, err := c.setupCollector(ctx, rule)
	if err != nil {
		return err
	}
	c.setupCallbacks(ctx, collector, rule, log)

	log.Info("Starting crawl",
		logger.Int("start_urls", len(rule.StartURLs)),
		logger.Duration("rate_limit", rule.RateLimitDuration(c.cfg.RateLimit)),
	)

	for _, seed := range rule.StartURLs {
		if visitErr := collector.Visit(seed); visitErr != nil {
			log.Warn("Failed to enqueue start URL",
				logger.URL(seed),
				logger.Error(visitErr),
			)
		}
	}
	collector.Wait()

	log.Info("Crawl finished",
		logger.Int64("pages_fetched", c.stats.PagesFetched.Load()),
		logger.Int64("records", c.stats.RecordsEmitted.Load()),
		logger.Int64("failed", c.stats.RequestsFailed.Load()),
	)
	return nil
}

// setupCollector configures a collector for the given source rule.
func (c *Crawler) setupCollector(ctx context.Context, rule *sources.Rule) (*colly.Collector, error) {
	opts := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.Async(true),
		colly.UserAgent(c.cfg.UserAgent),
	}
	if len(rule.AllowedDomains) > 0 {
		opts = append(opts, colly.AllowedDomains(rule.AllowedDomains...))
	}
	if !c.cfg.RespectRobotsTxt {
		opts = append(opts, colly.IgnoreRobotsTxt())
	}

	collector := colly.NewCollector(opts...)
	collector.SetRequestTimeout(c.cfg.RequestTimeout)

	err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       rule.RateLimitDuration(c.cfg.RateLimit),
		Parallelism: c.cfg.Parallelism,
	})
	if err != nil {
		return nil, fmt.Errorf("set rate limit: %w", err)
	}
	return collector, nil
}

// setupCallbacks wires the collector's request, HTML, link, and error
// handling for one source.
func (c *Crawler) setupCallbacks(ctx context.Context, collector *colly.Collector, rule *sources.Rule, log logger.Logger) {
	collector.OnRequest(func(r *colly.Request) {
		select {
		case <-ctx.Done():
			r.Abort()
		default:
			log.Debug("Visiting URL", logger.URL(r.URL.String()))
		}
	})

	collector.OnResponse(func(r *colly.Response) {
		c.stats.PagesFetched.Add(1)
	})

	collector.OnHTML("html", func(e *colly.HTMLElement) {
		c.processPage(collector, rule, e, log)
	})

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		select {
		case <-ctx.Done():
			return
		default:
		}
		c.handleLink(rule, e, log)
	})

	collector.OnError(func(r *colly.Response, visitErr error) {
		c.handleCrawlError(r, visitErr, log)
	})
}

// processPage runs the extractor selected for the page and forwards its
// outcomes. Extractor panics are recovered so one malformed page never halts
// the crawl.
func (c *Crawler) processPage(collector *colly.Collector, rule *sources.Rule, e *colly.HTMLElement, log logger.Logger) {
	pageURL := e.Request.URL.String()

	fn := c.resolveExtractor(rule, e.Request, pageURL)
	if fn == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.stats.PagesDropped.Add(1)
			log.Error("Extractor panic, page dropped",
				logger.URL(pageURL),
				logger.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	doc := extract.FromSelection(e.DOM)
	outcomes := fn(doc, pageURL, requestBag(e.Request))
	if len(outcomes) == 0 {
		c.stats.PagesDropped.Add(1)
		log.Debug("Page yielded no outcomes", logger.URL(pageURL))
		return
	}

	for _, outcome := range outcomes {
		if item, ok := outcome.Item(); ok {
			if writeErr := c.sink.Write(item); writeErr != nil {
				log.Error("Failed to write record",
					logger.URL(pageURL),
					logger.Error(writeErr),
				)
				continue
			}
			c.stats.RecordsEmitted.Add(1)
			log.Debug("Record emitted",
				logger.String("title", item.Title),
				logger.URL(item.URL),
			)
		}
		if req, ok := outcome.Request(); ok {
			c.enqueue(collector, req, log)
		}
	}
}

// resolveExtractor picks the extraction function for a fetched page: an
// explicit callback set when the request was enqueued wins, otherwise the
// follow-rule chain decides.
func (c *Crawler) resolveExtractor(rule *sources.Rule, r *colly.Request, pageURL string) extract.Func {
	switch r.Ctx.Get(callbackCtxKey) {
	case extract.CallbackDetail:
		return rule.ExtractorFunc()
	case extract.CallbackListing:
		return rule.ListingFunc()
	}

	switch rule.Match(pageURL) {
	case sources.ActionExtract:
		return rule.ExtractorFunc()
	case sources.ActionList:
		return rule.ListingFunc()
	default:
		// Start URLs and follow-only pages are crawled for links but not
		// extracted.
		return nil
	}
}

// handleLink applies the follow-rule chain to a discovered link.
func (c *Crawler) handleLink(rule *sources.Rule, e *colly.HTMLElement, log logger.Logger) {
	link := e.Request.AbsoluteURL(e.Attr("href"))
	if link == "" {
		return
	}
	if rule.Match(link) == sources.ActionDeny {
		return
	}
	if visitErr := e.Request.Visit(link); visitErr != nil && !isExpectedVisitError(visitErr) {
		log.Debug("Failed to follow link",
			logger.URL(link),
			logger.Error(visitErr),
		)
	}
}

// enqueue turns an extractor's FetchRequest into a collector request,
// carrying the callback name and context bag in the request context.
func (c *Crawler) enqueue(collector *colly.Collector, req *extract.FetchRequest, log logger.Logger) {
	cctx := colly.NewContext()
	callback := req.Callback
	if callback == "" {
		callback = extract.CallbackDetail
	}
	cctx.Put(callbackCtxKey, callback)
	for k, v := range req.Context {
		cctx.Put(bagPrefix+k, v)
	}

	if err := collector.Request("GET", req.URL, nil, cctx, nil); err != nil && !isExpectedVisitError(err) {
		log.Debug("Failed to enqueue fetch request",
			logger.URL(req.URL),
			logger.Error(err),
		)
	}
}

// requestBag extracts the context bag entries from a request context.
func requestBag(r *colly.Request) map[string]string {
	bag := map[string]string{}
	r.Ctx.ForEach(func(k string, v interface{}) interface{} {
		if strings.HasPrefix(k, bagPrefix) {
			if s, ok := v.(string); ok {
				bag[strings.TrimPrefix(k, bagPrefix)] = s
			}
		}
		return nil
	})
	return bag
}

// handleCrawlError categorizes fetch failures: transient errors retry a
// bounded number of times, permanent failures are dropped and logged.
func (c *Crawler) handleCrawlError(r *colly.Response, visitErr error, log logger.Logger) {
	if isExpectedVisitError(visitErr) {
		return
	}

	pageURL := ""
	if r != nil && r.Request != nil {
		pageURL = r.Request.URL.String()
	}

	if c.isTransient(r, visitErr) && c.cfg.HTTPRetryMax > 0 && r != nil {
		count := 0
		if v := r.Request.Ctx.GetAny(retryCountKey); v != nil {
			if n, ok := v.(int); ok {
				count = n
			}
		}
		if count < c.cfg.HTTPRetryMax {
			r.Request.Ctx.Put(retryCountKey, count+1)
			c.stats.Retries.Add(1)
			time.Sleep(c.cfg.HTTPRetryDelay)
			if retryErr := r.Request.Retry(); retryErr != nil {
				log.Warn("Retry failed",
					logger.URL(pageURL),
					logger.Error(retryErr),
				)
			}
			return
		}
		log.Error("Fetch failed after retries",
			logger.URL(pageURL),
			logger.Int("retries", count),
			logger.Error(visitErr),
		)
		c.stats.RequestsFailed.Add(1)
		return
	}

	status := 0
	if r != nil {
		status = r.StatusCode
	}
	log.Warn("Fetch dropped",
		logger.URL(pageURL),
		logger.Int("status", status),
		logger.Error(visitErr),
	)
	c.stats.RequestsFailed.Add(1)
}

// isTransient reports whether the error looks retryable: 5xx responses and
// connection-level failures.
func (c *Crawler) isTransient(r *colly.Response, visitErr error) bool {
	if r != nil && r.StatusCode >= 500 && r.StatusCode < 600 {
		return true
	}
	msg := strings.ToLower(visitErr.Error())
	for _, p := range []string{
		"connection refused", "connection reset", "temporary failure",
		"eof", "broken pipe", "no such host", "i/o timeout",
		"timeout", "deadline exceeded",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// isExpectedVisitError filters colly bookkeeping errors that are part of
// normal crawling, not failures.
func isExpectedVisitError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "already visited") ||
		strings.Contains(msg, "Already visited") ||
		strings.Contains(msg, "forbidden domain") ||
		strings.Contains(msg, "Forbidden domain") ||
		strings.Contains(msg, "max depth") ||
		strings.Contains(msg, "Max depth") ||
		strings.Contains(msg, "missing URL") ||
		strings.Contains(msg, "robots.txt")
}
