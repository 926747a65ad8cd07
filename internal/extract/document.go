// Package extract turns fetched recipe pages into canonical records.
//
// Site rules are expressed against the Document capability interface rather
// than a concrete parser, so extraction logic stays testable and the parser
// can be swapped without touching site rules.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Node is an opaque handle to one element of a parsed document.
type Node interface{}

// Document is the capability interface extractors work with.
type Document interface {
	// Select returns all nodes matching the selector, in document order.
	Select(selector string) []Node
	// SelectIn returns all nodes matching the selector within node.
	SelectIn(node Node, selector string) []Node
	// Text returns the raw text content of node, markup included as-is.
	Text(node Node) string
	// HTML returns the inner HTML of node, empty on failure.
	HTML(node Node) string
	// Attr returns the named attribute of node.
	Attr(node Node, name string) (string, bool)
	// Is reports whether node matches the selector.
	Is(node Node, selector string) bool
	// Next returns the next sibling element of node, nil when exhausted.
	Next(node Node) Node
	// Name returns the element name of node, lowercased.
	Name(node Node) string
}

// goqueryDocument implements Document over a goquery parse.
type goqueryDocument struct {
	root *goquery.Selection
}

// NewDocument parses an HTML page into a Document.
func NewDocument(html string) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return &goqueryDocument{root: doc.Selection}, nil
}

// FromSelection wraps an already-parsed subtree; the crawler uses it to
// avoid re-parsing pages colly has already parsed.
func FromSelection(root *goquery.Selection) Document {
	return &goqueryDocument{root: root}
}

func (d *goqueryDocument) Select(selector string) []Node {
	return collect(d.root.Find(selector))
}

func (d *goqueryDocument) SelectIn(node Node, selector string) []Node {
	sel, ok := node.(*goquery.Selection)
	if !ok {
		return nil
	}
	return collect(sel.Find(selector))
}

func (d *goqueryDocument) Text(node Node) string {
	sel, ok := node.(*goquery.Selection)
	if !ok {
		return ""
	}
	return sel.Text()
}

func (d *goqueryDocument) HTML(node Node) string {
	sel, ok := node.(*goquery.Selection)
	if !ok {
		return ""
	}
	html, err := sel.Html()
	if err != nil {
		return ""
	}
	return html
}

func (d *goqueryDocument) Attr(node Node, name string) (string, bool) {
	sel, ok := node.(*goquery.Selection)
	if !ok {
		return "", false
	}
	return sel.Attr(name)
}

func (d *goqueryDocument) Is(node Node, selector string) bool {
	sel, ok := node.(*goquery.Selection)
	if !ok {
		return false
	}
	return sel.Is(selector)
}

func (d *goqueryDocument) Next(node Node) Node {
	sel, ok := node.(*goquery.Selection)
	if !ok {
		return nil
	}
	next := sel.Next()
	if next.Length() == 0 {
		return nil
	}
	return next
}

func (d *goqueryDocument) Name(node Node) string {
	sel, ok := node.(*goquery.Selection)
	if !ok || sel.Length() == 0 {
		return ""
	}
	return strings.ToLower(goquery.NodeName(sel))
}

// collect splits a multi-element selection into per-element nodes.
func collect(sel *goquery.Selection) []Node {
	nodes := make([]Node, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, s)
	})
	return nodes
}
