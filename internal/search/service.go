package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/jonesrussell/cocktail-search/internal/logger"
)

const (
	// PageSize is the number of cocktail groups per result page.
	PageSize = 20
	// groupLimit caps how many recipes a single cocktail group carries.
	groupLimit = 10

	defaultTimeout = 10 * time.Second
)

// Recipe is one indexed recipe as returned to clients.
type Recipe struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	URL         string   `json:"url"`
	PictureURL  string   `json:"picture_url"`
	Source      string   `json:"source"`
}

// Cocktail is one group of recipes sharing a normalized title.
type Cocktail struct {
	Recipes []Recipe `json:"recipes"`
}

// Result is one page of grouped search results.
type Result struct {
	Cocktails []Cocktail `json:"cocktails"`
}

// docSource is the stored document shape coming back in _source.
type docSource struct {
	Title           string `mapstructure:"title"`
	TitleNormalized string `mapstructure:"title_normalized"`
	IngredientsText string `mapstructure:"ingredients_text"`
	URL             string `mapstructure:"url"`
	Source          string `mapstructure:"source"`
	Picture         string `mapstructure:"picture"`
}

// Service answers ingredient searches against the index engine.
type Service struct {
	engine  Engine
	logger  logger.Logger
	timeout time.Duration
}

// Option adjusts a Service.
type Option func(*Service)

// WithTimeout bounds both index round-trips of one search request.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewService(engine Engine, log logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Service{engine: engine, logger: log, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IndexUpdated reports the index's last-modified stamp.
func (s *Service) IndexUpdated(ctx context.Context) (int64, error) {
	return s.engine.IndexUpdated(ctx)
}

// Search runs the grouped query for the given ingredient phrases and
// fetches up to ten recipes per cocktail group in one batched follow-up.
// Blank phrases are ignored; all-blank input returns an empty result
// without touching the engine. Any engine failure fails the whole search.
func (s *Service) Search(ctx context.Context, phrases []string, offset int) (*Result, error) {
	trimmed := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if strings.TrimSpace(p) != "" {
			trimmed = append(trimmed, p)
		}
	}
	if len(trimmed) == 0 {
		return &Result{Cocktails: []Cocktail{}}, nil
	}
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query, err := BuildQuery(ctx, s.engine, trimmed)
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	if query == nil {
		return &Result{Cocktails: []Cocktail{}}, nil
	}

	sort := []any{
		map[string]any{"_score": "desc"},
		map[string]any{"_id": "asc"},
	}
	grouped, err := s.engine.Search(ctx, map[string]any{
		"query":    query,
		"collapse": map[string]any{"field": "title_normalized"},
		"from":     offset,
		"size":     PageSize,
		"sort":     sort,
	})
	if err != nil {
		return nil, fmt.Errorf("grouped query: %w", err)
	}
	if len(grouped.Hits) == 0 {
		return &Result{Cocktails: []Cocktail{}}, nil
	}

	keys := make([]string, 0, len(grouped.Hits))
	bodies := make([]map[string]any, 0, len(grouped.Hits))
	for _, hit := range grouped.Hits {
		var doc docSource
		if decodeErr := mapstructure.Decode(hit.Source, &doc); decodeErr != nil {
			return nil, fmt.Errorf("decoding group hit %s: %w", hit.ID, decodeErr)
		}
		keys = append(keys, doc.TitleNormalized)
		bodies = append(bodies, map[string]any{
			"query": map[string]any{
				"bool": map[string]any{
					"must": []any{
						query,
						map[string]any{"term": map[string]any{"title_normalized": doc.TitleNormalized}},
					},
				},
			},
			"size": groupLimit,
			"sort": sort,
		})
	}

	followUps, err := s.engine.MultiSearch(ctx, bodies)
	if err != nil {
		return nil, fmt.Errorf("group follow-up query: %w", err)
	}

	result := &Result{Cocktails: make([]Cocktail, 0, len(followUps))}
	for i, group := range followUps {
		cocktail := Cocktail{Recipes: make([]Recipe, 0, len(group.Hits))}
		for _, hit := range group.Hits {
			var doc docSource
			if decodeErr := mapstructure.Decode(hit.Source, &doc); decodeErr != nil {
				return nil, fmt.Errorf("decoding recipe hit %s: %w", hit.ID, decodeErr)
			}
			cocktail.Recipes = append(cocktail.Recipes, Recipe{
				Title:       doc.Title,
				Ingredients: splitIngredients(doc.IngredientsText),
				URL:         doc.URL,
				PictureURL:  doc.Picture,
				Source:      doc.Source,
			})
		}
		if len(cocktail.Recipes) == 0 {
			s.logger.Warn("group follow-up returned no documents",
				logger.String("key", keys[i]))
			continue
		}
		result.Cocktails = append(result.Cocktails, cocktail)
	}
	return result, nil
}

func splitIngredients(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
