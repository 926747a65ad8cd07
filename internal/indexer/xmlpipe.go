package indexer

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DocsetWriter streams documents as an xmlpipe2-style docset. Full-text
// fields carry the searchable copies, everything else rides along as
// string attributes so an external indexer can return them untouched.
type DocsetWriter struct {
	w      *bufio.Writer
	nextID int
	open   bool
}

// NewDocsetWriter writes to out, numbering documents from startID.
// Document ids must be positive.
func NewDocsetWriter(out io.Writer, startID int) *DocsetWriter {
	if startID < 1 {
		startID = 1
	}
	return &DocsetWriter{w: bufio.NewWriter(out), nextID: startID}
}

// WriteHeader emits the docset opening and the schema. Call once before
// the first document.
func (d *DocsetWriter) WriteHeader() error {
	d.open = true
	header := `<?xml version="1.0" encoding="utf-8"?>
<sphinx:docset>
<sphinx:schema>
<sphinx:field name="title"/>
<sphinx:field name="ingredients"/>
<sphinx:attr name="title_normalized" type="string"/>
<sphinx:attr name="ingredients_text" type="string"/>
<sphinx:attr name="url" type="string"/>
<sphinx:attr name="source" type="string"/>
<sphinx:attr name="picture" type="string"/>
</sphinx:schema>
`
	_, err := d.w.WriteString(header)
	return err
}

// WriteDocument emits one document and advances the id counter.
// Ingredient lines are separated by sentence boundaries so that phrase
// matches cannot cross lines.
func (d *DocsetWriter) WriteDocument(doc *Document) error {
	if !d.open {
		if err := d.WriteHeader(); err != nil {
			return err
		}
	}
	id := d.nextID
	d.nextID++

	fmt.Fprintf(d.w, "<sphinx:document id=\"%d\">\n", id)
	writeElement(d.w, "title", doc.Title)
	writeElement(d.w, "ingredients", strings.Join(doc.Ingredients, ". "))
	writeElement(d.w, "title_normalized", doc.TitleNormalized)
	writeElement(d.w, "ingredients_text", doc.IngredientsText)
	writeElement(d.w, "url", doc.URL)
	writeElement(d.w, "source", doc.Source)
	writeElement(d.w, "picture", doc.Picture)
	_, err := d.w.WriteString("</sphinx:document>\n")
	return err
}

// Close terminates the docset and flushes buffered output. It does not
// close the underlying writer.
func (d *DocsetWriter) Close() error {
	if d.open {
		if _, err := d.w.WriteString("</sphinx:docset>\n"); err != nil {
			return err
		}
		d.open = false
	}
	return d.w.Flush()
}

func writeElement(w *bufio.Writer, name, value string) {
	fmt.Fprintf(w, "<%s>%s</%s>\n", name, escapeXML(value), name)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	// EscapeText only fails on writer errors, which bytes.Buffer never
	// returns.
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
