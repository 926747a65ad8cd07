package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/cocktail-search/internal/logger"
	"github.com/jonesrussell/cocktail-search/internal/search"
)

// Results stay cacheable for a year; the index_updated token in the URL
// changes whenever the index does, so stale entries are never served
// under a current token.
const cacheControl = "public, max-age=31536000"

// Searcher is the slice of the search service the handlers use.
type Searcher interface {
	Search(ctx context.Context, phrases []string, offset int) (*search.Result, error)
	IndexUpdated(ctx context.Context) (int64, error)
}

// RecipesResponse is the body of a successful /recipes call.
type RecipesResponse struct {
	Cocktails    []search.Cocktail `json:"cocktails"`
	IndexUpdated int64             `json:"index_updated"`
}

// Handler holds HTTP request handlers.
type Handler struct {
	searcher Searcher
	logger   logger.Logger
}

// NewHandler creates a new handler instance.
func NewHandler(searcher Searcher, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{searcher: searcher, logger: log}
}

// Recipes answers ingredient searches. The repeatable ingredient
// parameter carries the phrases; blank values are ignored. A stale or
// missing index_updated token redirects to the corrected URL before any
// query runs.
func (h *Handler) Recipes(c *gin.Context) {
	offset, err := parseOffset(c.Query("offset"))
	if err != nil {
		c.String(http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}

	updated, err := h.searcher.IndexUpdated(c.Request.Context())
	if err != nil {
		h.logger.Error("reading index stamp", logger.Error(err))
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	token := strconv.FormatInt(updated, 10)
	if c.Query("index_updated") != token {
		c.Redirect(http.StatusFound, correctedURL(c.Request.URL, token))
		return
	}

	phrases := make([]string, 0)
	for _, p := range c.QueryArray("ingredient") {
		if strings.TrimSpace(p) != "" {
			phrases = append(phrases, p)
		}
	}

	result, err := h.searcher.Search(c.Request.Context(), phrases, offset)
	if err != nil {
		h.logger.Error("search failed",
			logger.Error(err),
			logger.String("ingredients", strings.Join(phrases, ", ")))
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	c.Header("Cache-Control", cacheControl)
	c.JSON(http.StatusOK, RecipesResponse{
		Cocktails:    result.Cocktails,
		IndexUpdated: updated,
	})
}

// HealthCheck reports service liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func parseOffset(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		return 0, strconv.ErrSyntax
	}
	return offset, nil
}

func correctedURL(u *url.URL, token string) string {
	q := u.Query()
	q.Set("index_updated", token)
	corrected := *u
	corrected.RawQuery = q.Encode()
	return corrected.String()
}
