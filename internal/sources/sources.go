// Package sources manages per-site crawl rules: where a source starts, which
// links to follow, and how its pages are extracted.
package sources

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jonesrussell/cocktail-search/internal/extract"
)

// Follow rule actions.
const (
	// ActionExtract follows the link and runs the source's detail extractor
	// on the fetched page.
	ActionExtract = "extract"
	// ActionList follows the link and runs the source's listing extractor.
	ActionList = "list"
	// ActionFollow follows the link for discovery only.
	ActionFollow = "follow"
	// ActionDeny never follows the link.
	ActionDeny = "deny"
)

// Extractor kinds.
const (
	KindGeneric = "generic"
	KindMulti   = "multi"
)

// FollowRule pairs a URL pattern with a crawl action. Rules are evaluated in
// order; the first match wins.
type FollowRule struct {
	Pattern string `yaml:"pattern"`
	Action  string `yaml:"action"`

	re *regexp.Regexp
}

// ExtractorSpec selects and configures a source's detail extractor.
type ExtractorSpec struct {
	// Kind is "generic" (one recipe per page) or "multi" (several recipes
	// split on a repeated header).
	Kind    string              `yaml:"kind"`
	Generic extract.Config      `yaml:"generic"`
	Multi   extract.MultiConfig `yaml:"multi"`
}

// Rule is the crawl configuration for one source site.
type Rule struct {
	// Name is the unique identifier for the source; it becomes the `source`
	// field on every record the source emits.
	Name string `yaml:"name"`
	// AllowedDomains restricts the crawl to these hosts.
	AllowedDomains []string `yaml:"allowed_domains"`
	// StartURLs seed the frontier for this source.
	StartURLs []string `yaml:"start_urls"`
	// RateLimit is the per-host delay between requests, e.g. "2s".
	RateLimit string `yaml:"rate_limit"`
	// Follow is the ordered allow/deny rule chain for discovered links.
	Follow []FollowRule `yaml:"follow"`
	// Extractor describes the detail-page extractor.
	Extractor ExtractorSpec `yaml:"extractor"`
	// Listing optionally describes a listing-page extractor that enqueues
	// detail fetches explicitly instead of relying on link discovery.
	Listing *extract.LinksConfig `yaml:"listing"`
}

// Validate checks the rule and compiles its follow patterns.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return errors.New("source name is required")
	}
	if len(r.StartURLs) == 0 {
		return fmt.Errorf("source %s: at least one start_url is required", r.Name)
	}
	if r.RateLimit != "" {
		if _, err := time.ParseDuration(r.RateLimit); err != nil {
			return fmt.Errorf("source %s: invalid rate_limit: %w", r.Name, err)
		}
	}
	switch r.Extractor.Kind {
	case KindGeneric:
		if r.Extractor.Generic.Title == "" || r.Extractor.Generic.Ingredients == "" {
			return fmt.Errorf("source %s: generic extractor requires title and ingredients selectors", r.Name)
		}
	case KindMulti:
		if r.Extractor.Multi.Header == "" {
			return fmt.Errorf("source %s: multi extractor requires a header selector", r.Name)
		}
	default:
		return fmt.Errorf("source %s: unknown extractor kind %q", r.Name, r.Extractor.Kind)
	}
	for i := range r.Follow {
		fr := &r.Follow[i]
		switch fr.Action {
		case ActionExtract, ActionList, ActionFollow, ActionDeny:
		default:
			return fmt.Errorf("source %s: unknown follow action %q", r.Name, fr.Action)
		}
		re, err := regexp.Compile(fr.Pattern)
		if err != nil {
			return fmt.Errorf("source %s: invalid follow pattern %q: %w", r.Name, fr.Pattern, err)
		}
		fr.re = re
	}
	if r.Listing != nil && r.Listing.Links == "" {
		return fmt.Errorf("source %s: listing extractor requires a links selector", r.Name)
	}
	return nil
}

// RateLimitDuration returns the parsed rate limit, or fallback when unset.
func (r *Rule) RateLimitDuration(fallback time.Duration) time.Duration {
	if r.RateLimit == "" {
		return fallback
	}
	d, err := time.ParseDuration(r.RateLimit)
	if err != nil {
		return fallback
	}
	return d
}

// Match evaluates the follow rule chain against a URL and returns the action
// of the first matching rule. URLs matching no rule are dropped.
func (r *Rule) Match(url string) string {
	for i := range r.Follow {
		fr := &r.Follow[i]
		if fr.re == nil {
			// Validate was skipped; compile lazily and tolerate bad patterns.
			re, err := regexp.Compile(fr.Pattern)
			if err != nil {
				continue
			}
			fr.re = re
		}
		if fr.re.MatchString(url) {
			return fr.Action
		}
	}
	return ActionDeny
}

// ExtractorFunc builds the detail-page extraction function for the rule.
func (r *Rule) ExtractorFunc() extract.Func {
	switch r.Extractor.Kind {
	case KindMulti:
		cfg := r.Extractor.Multi
		cfg.Source = r.Name
		return extract.MultiRecipe(cfg)
	default:
		cfg := r.Extractor.Generic
		cfg.Source = r.Name
		return extract.Generic(cfg)
	}
}

// ListingFunc builds the listing-page extraction function, nil when the rule
// has none.
func (r *Rule) ListingFunc() extract.Func {
	if r.Listing == nil {
		return nil
	}
	return extract.Links(*r.Listing)
}
