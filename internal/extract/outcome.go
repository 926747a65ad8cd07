package extract

import (
	"github.com/jonesrussell/cocktail-search/internal/recipe"
)

// Callback names resolvable on a FetchRequest.
const (
	// CallbackDetail runs the source's detail extractor on the fetched page.
	CallbackDetail = "detail"
	// CallbackListing runs the source's listing extractor on the fetched page.
	CallbackListing = "listing"
)

// FetchRequest asks the orchestrator to fetch a further page and run the
// named extractor on it. The context bag is passed through opaquely; archive
// extractors use it to carry state across a chain of requests.
type FetchRequest struct {
	URL      string
	Callback string
	Context  map[string]string
}

// Outcome is one result of an extractor invocation: either a finished record
// or a follow-up fetch request, never both.
type Outcome struct {
	item   *recipe.Item
	follow *FetchRequest
}

// Record wraps a finished recipe item.
func Record(item *recipe.Item) Outcome {
	return Outcome{item: item}
}

// Follow wraps a follow-up fetch request.
func Follow(req *FetchRequest) Outcome {
	return Outcome{follow: req}
}

// Item returns the record held by the outcome, if any.
func (o Outcome) Item() (*recipe.Item, bool) {
	return o.item, o.item != nil
}

// Request returns the fetch request held by the outcome, if any.
func (o Outcome) Request() (*FetchRequest, bool) {
	return o.follow, o.follow != nil
}

// Func is a per-page extraction function. It returns a finite slice of
// outcomes; a page that is not a recipe yields an empty slice, which is not
// an error.
type Func func(doc Document, pageURL string, reqCtx map[string]string) []Outcome
