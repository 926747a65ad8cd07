package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/jonesrussell/cocktail-search/internal/htmltext"
	"github.com/jonesrussell/cocktail-search/internal/recipe"
)

// SectionHeaderUpper selects the all-uppercase-line header predicate.
const SectionHeaderUpper = "upper"

// Config drives the generic selector-based extractor. One Config describes
// how a single source lays out its recipe detail pages.
type Config struct {
	// Source is the human-readable origin site name stamped on records.
	Source string `yaml:"source"`
	// Title selects the recipe title element.
	Title string `yaml:"title"`
	// Ingredients selects the ingredients container.
	Ingredients string `yaml:"ingredients"`
	// IngredientItems selects per-line elements within the container. When
	// empty the container's inner HTML is split on <br> boundaries instead;
	// several sources publish the whole list as one <br>-separated blob.
	IngredientItems string `yaml:"ingredient_items"`
	// Picture selects the representative image element.
	Picture string `yaml:"picture"`
	// SectionHeader partitions primary from secondary ingredient sections.
	// The value "upper" treats all-uppercase lines as headers; any other
	// non-empty value is a CSS selector matched against item nodes (e.g.
	// "b" for a bolded leading node).
	SectionHeader string `yaml:"section_header"`
	// StopPhrases are case-insensitive patterns that end ingredient
	// accumulation: instruction lines such as "stir" or "fill glass".
	// The exact set is per-site data, not core logic.
	StopPhrases []string `yaml:"stop_phrases"`
}

// stopMatcher compiles StopPhrases into a line predicate. Returns nil when
// there are no phrases.
func stopMatcher(phrases []string) *regexp.Regexp {
	if len(phrases) == 0 {
		return nil
	}
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(p))
	}
	return regexp.MustCompile(`(?i)^(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Generic builds an extractor for a conventional one-recipe-per-page source
// described by cfg.
func Generic(cfg Config) Func {
	stop := stopMatcher(cfg.StopPhrases)

	return func(doc Document, pageURL string, _ map[string]string) []Outcome {
		title := firstCleanText(doc, cfg.Title)
		if title == "" {
			return nil
		}

		lines, headerFromNodes := ingredientLines(doc, cfg)
		lines = truncateAtStop(lines, stop)

		isHeader := headerPredicate(cfg, headerFromNodes)
		ingredients, extra := SplitSections(lines, isHeader)

		item := &recipe.Item{
			Title:            title,
			URL:              pageURL,
			Source:           cfg.Source,
			Picture:          pictureURL(doc, cfg.Picture, pageURL),
			Ingredients:      ingredients,
			ExtraIngredients: extra,
		}
		if !item.Valid() {
			return nil
		}
		return []Outcome{Record(item)}
	}
}

// headerMarker is prefixed onto lines whose node matched the section-header
// selector, so node-level header detection survives the flattening to lines.
const headerMarker = "\x00hdr\x00"

// ingredientLines collects cleaned ingredient lines. When cfg.SectionHeader
// is a node selector, matching lines carry the header marker and
// headerFromNodes is true.
func ingredientLines(doc Document, cfg Config) (lines []string, headerFromNodes bool) {
	nodeHeaders := cfg.SectionHeader != "" && cfg.SectionHeader != SectionHeaderUpper

	if cfg.IngredientItems != "" {
		for _, container := range doc.Select(cfg.Ingredients) {
			for _, item := range doc.SelectIn(container, cfg.IngredientItems) {
				line := htmltext.Clean(doc.Text(item))
				if line == "" {
					continue
				}
				if nodeHeaders && doc.Is(item, cfg.SectionHeader) {
					line = headerMarker + line
				}
				lines = append(lines, line)
			}
		}
		return lines, nodeHeaders
	}

	containers := doc.Select(cfg.Ingredients)
	if len(containers) == 0 {
		return nil, false
	}
	return htmltext.SplitLines(doc.HTML(containers[0])), false
}

// headerPredicate returns the section-header predicate for cfg, or nil when
// the source has no secondary sections.
func headerPredicate(cfg Config, markers bool) func(string) bool {
	switch {
	case markers:
		return func(line string) bool { return strings.HasPrefix(line, headerMarker) }
	case cfg.SectionHeader == SectionHeaderUpper:
		return IsUpperLine
	default:
		return nil
	}
}

// truncateAtStop cuts the line sequence at the first instruction line.
func truncateAtStop(lines []string, stop *regexp.Regexp) []string {
	if stop == nil {
		return lines
	}
	for i, line := range lines {
		if stop.MatchString(strings.TrimPrefix(line, headerMarker)) {
			return lines[:i]
		}
	}
	return lines
}

// firstCleanText returns the cleaned text of the first node matching
// selector, empty when nothing matches.
func firstCleanText(doc Document, selector string) string {
	if selector == "" {
		return ""
	}
	nodes := doc.Select(selector)
	if len(nodes) == 0 {
		return ""
	}
	return htmltext.Clean(doc.Text(nodes[0]))
}

// pictureURL resolves the first matching picture to an absolute URL, empty
// when the source has none.
func pictureURL(doc Document, selector, pageURL string) string {
	if selector == "" {
		return ""
	}
	nodes := doc.Select(selector)
	if len(nodes) == 0 {
		return ""
	}
	src, ok := doc.Attr(nodes[0], "src")
	if !ok || src == "" {
		return ""
	}
	return AbsoluteURL(pageURL, src)
}

// AbsoluteURL resolves ref against base, returning ref unchanged when either
// fails to parse.
func AbsoluteURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
