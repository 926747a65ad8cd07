package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonesrussell/cocktail-search/internal/htmltext"
	"github.com/jonesrussell/cocktail-search/internal/recipe"
)

// MultiConfig drives extraction of archive pages where several recipes share
// one detail page (e.g. a bitters-recipe archive), each introduced by a
// repeated header element.
type MultiConfig struct {
	// Source is the origin site name stamped on records.
	Source string `yaml:"source"`
	// Header selects the per-recipe title header that partitions the page.
	Header string `yaml:"header"`
	// SectionHeader has the same meaning as Config.SectionHeader but only
	// the "upper" predicate applies in line mode.
	SectionHeader string `yaml:"section_header"`
	// StopPhrases end ingredient accumulation, as in Config.
	StopPhrases []string `yaml:"stop_phrases"`
}

// MultiRecipe builds an extractor that splits one page into a record per
// repeated header, accumulating the following sibling content per recipe.
// Accumulation stops at the first blank line, an instruction line, or a
// section header for something else entirely.
func MultiRecipe(cfg MultiConfig) Func {
	stop := stopMatcher(cfg.StopPhrases)
	upperSections := cfg.SectionHeader == SectionHeaderUpper

	return func(doc Document, pageURL string, _ map[string]string) []Outcome {
		headers := doc.Select(cfg.Header)
		var outcomes []Outcome

		for _, header := range headers {
			title := htmltext.Clean(doc.Text(header))
			if title == "" {
				continue
			}

			lines := siblingLines(doc, header, cfg.Header, stop)

			var isHeader func(string) bool
			if upperSections {
				isHeader = IsUpperLine
			}
			ingredients, extra := SplitSections(lines, isHeader)

			item := &recipe.Item{
				Title:            title,
				URL:              pageURL,
				Source:           cfg.Source,
				Ingredients:      ingredients,
				ExtraIngredients: extra,
			}
			if item.Valid() {
				outcomes = append(outcomes, Record(item))
			}
		}
		return outcomes
	}
}

// siblingLines walks the siblings after header until the next recipe header,
// collecting logical lines and honoring the accumulation stop conditions.
func siblingLines(doc Document, header Node, headerSelector string, stop *regexp.Regexp) []string {
	var lines []string
	for node := doc.Next(header); node != nil; node = doc.Next(node) {
		if doc.Is(node, headerSelector) {
			break
		}
		nodeLines := htmltext.SplitLines(doc.HTML(node), htmltext.IncludeBlank())
		for _, line := range nodeLines {
			if line == "" {
				// Blank line ends this recipe's ingredient run.
				return lines
			}
			if stop != nil && stop.MatchString(line) {
				return lines
			}
			lines = append(lines, line)
		}
	}
	return lines
}

// LinksConfig drives a listing-page extractor that only enqueues follow-up
// fetches.
type LinksConfig struct {
	// Links selects anchors to recipe detail pages.
	Links string `yaml:"links"`
	// NextPage selects the pagination anchor, if the source paginates.
	NextPage string `yaml:"next_page"`
	// Callback names the extractor to run on followed detail pages.
	Callback string `yaml:"callback"`
}

// Links builds an extractor for archive and listing pages: it emits one
// FetchRequest per detail link (and the next listing page when present) and
// never emits records itself. The context bag carries the listing URL and
// the number of sibling links remaining, for extractors that care.
func Links(cfg LinksConfig) Func {
	return func(doc Document, pageURL string, _ map[string]string) []Outcome {
		var outcomes []Outcome

		anchors := doc.Select(cfg.Links)
		for i, a := range anchors {
			href, ok := doc.Attr(a, "href")
			if !ok || strings.TrimSpace(href) == "" {
				continue
			}
			outcomes = append(outcomes, Follow(&FetchRequest{
				URL:      AbsoluteURL(pageURL, href),
				Callback: cfg.Callback,
				Context: map[string]string{
					"listing":   pageURL,
					"remaining": strconv.Itoa(len(anchors) - i - 1),
				},
			}))
		}

		if cfg.NextPage != "" {
			if next := doc.Select(cfg.NextPage); len(next) > 0 {
				if href, ok := doc.Attr(next[0], "href"); ok && strings.TrimSpace(href) != "" {
					outcomes = append(outcomes, Follow(&FetchRequest{
						URL: AbsoluteURL(pageURL, href),
						// Listing pages chain to themselves.
						Callback: CallbackListing,
					}))
				}
			}
		}
		return outcomes
	}
}
