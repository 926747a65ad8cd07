// Package storage wraps the Elasticsearch client with the operations the
// feed and the query engine need: index lifecycle, bulk load, analyze,
// search, and multi-search.
package storage

import (
	"errors"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/jonesrussell/cocktail-search/internal/config"
	"github.com/jonesrussell/cocktail-search/internal/logger"
)

// Sentinel errors.
var (
	// ErrIndexNotFound indicates the target index does not exist.
	ErrIndexNotFound = errors.New("index not found")
)

// Client is the Elasticsearch-backed index engine client.
type Client struct {
	es     *es.Client
	cfg    config.ElasticsearchConfig
	logger logger.Logger
}

// NewClient creates a client and verifies connectivity with a ping.
func NewClient(cfg config.ElasticsearchConfig, log logger.Logger) (*Client, error) {
	esClient, err := es.NewClient(es.Config{
		Addresses:  cfg.Addresses,
		Username:   cfg.Username,
		Password:   cfg.Password,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := esClient.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch ping error: %s", res.String())
	}

	log.Debug("Connected to Elasticsearch",
		logger.String("index", cfg.Index),
	)
	return &Client{es: esClient, cfg: cfg, logger: log}, nil
}

// Index returns the configured index name.
func (c *Client) Index() string {
	return c.cfg.Index
}
