// Package htmltext normalizes raw HTML fragments into clean text lines for
// recipe extraction.
package htmltext

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// inlineTagRegex matches opening and closing forms of transparent inline
	// formatting tags whose text content should be kept without a separating
	// space.
	inlineTagRegex = regexp.MustCompile(`(?i)</?(?:a|b|i|u|em|strong|span|small|sub|sup|abbr|cite|q|mark)(?:\s[^>]*)?>`)
	// tagRegex matches any remaining tag; those become a single space so text
	// on either side of a block boundary does not run together.
	tagRegex           = regexp.MustCompile(`<[^>]*>`)
	repeatedSpaceRegex = regexp.MustCompile(`\s+`)
	strictPolicy       = bluemonday.StrictPolicy()
)

// Clean strips markup from an HTML fragment and returns plain text.
// Inline formatting tags are removed outright, every other tag is replaced
// with a single space, entities are unescaped, and runs of whitespace
// collapse to one ASCII space.
func Clean(fragment string) string {
	s := inlineTagRegex.ReplaceAllString(fragment, "")
	s = tagRegex.ReplaceAllString(s, " ")
	// Anything the patterns missed (unterminated tags, comments) is dropped
	// here rather than leaking markup into item fields.
	s = strictPolicy.Sanitize(s)
	s = html.UnescapeString(s)
	s = repeatedSpaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// splitOptions carries the optional behavior of SplitLines.
type splitOptions struct {
	includeBlank  bool
	breakElements map[string]bool
}

// Option configures SplitLines.
type Option func(*splitOptions)

// IncludeBlank preserves blank lines as empty strings. Callers use blank-line
// runs to detect section boundaries in loosely structured pages.
func IncludeBlank() Option {
	return func(o *splitOptions) { o.includeBlank = true }
}

// BreakOn adds element names (e.g. "p", "div") that terminate a logical line
// in addition to the default "br".
func BreakOn(elements ...string) Option {
	return func(o *splitOptions) {
		for _, el := range elements {
			o.breakElements[strings.ToLower(el)] = true
		}
	}
}

// SplitLines splits an HTML fragment into logical lines at break elements,
// cleaning each line. Several sources publish an entire ingredient list as
// one blob separated only by <br> tags, so text-node boundaries alone are
// not enough.
func SplitLines(fragment string, opts ...Option) []string {
	o := splitOptions{breakElements: map[string]bool{"br": true}}
	for _, opt := range opts {
		opt(&o)
	}

	nodes, err := xhtml.ParseFragment(strings.NewReader(fragment), bodyContext())
	if err != nil {
		// Degrade to a single cleaned line rather than failing extraction.
		if line := Clean(fragment); line != "" || o.includeBlank {
			return []string{line}
		}
		return nil
	}

	var lines []string
	var current strings.Builder
	flush := func() {
		line := Clean(current.String())
		current.Reset()
		if line != "" || o.includeBlank {
			lines = append(lines, line)
		}
	}

	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		switch n.Type {
		case xhtml.TextNode:
			current.WriteString(n.Data)
		case xhtml.ElementNode:
			if o.breakElements[strings.ToLower(n.Data)] {
				flush()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		// Block-level elements end the current line once their subtree is
		// consumed, so sibling paragraphs never merge.
		if n.Type == xhtml.ElementNode && isBlockElement(n.Data) {
			flush()
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	flush()

	// Trailing flush of empty accumulation produces one junk blank; drop it.
	if o.includeBlank && len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// isBlockElement reports whether the element renders as a block and thus
// terminates a logical line.
func isBlockElement(name string) bool {
	switch strings.ToLower(name) {
	case "p", "div", "li", "ul", "ol", "table", "tr", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "section", "article":
		return true
	}
	return false
}

// bodyContext returns a body element node used as the fragment parse context.
func bodyContext() *xhtml.Node {
	return &xhtml.Node{
		Type:     xhtml.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
}
