// Package synonyms expands known ingredient-name synonyms inline in the
// searchable copy of ingredient text.
package synonyms

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Table maps a canonical lowercase phrase to its expansion phrases. It is
// built once at startup from its source file and is read-only afterwards, so
// a single Table may be shared across goroutines.
type Table struct {
	expansions map[string][]string
	matcher    *regexp.Regexp
}

// Load reads a synonym table from the file at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open synonyms file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads `phrase > expansion` rules, one per line. The left side
// matches case-insensitively; blank lines and lines starting with '#' are
// skipped.
func Parse(r io.Reader) (*Table, error) {
	expansions := make(map[string][]string)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		phrase, expansion, ok := strings.Cut(text, ">")
		if !ok {
			return nil, fmt.Errorf("synonyms line %d: missing '>' separator", line)
		}
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		expansion = strings.TrimSpace(expansion)
		if phrase == "" || expansion == "" {
			return nil, fmt.Errorf("synonyms line %d: empty phrase or expansion", line)
		}
		expansions[phrase] = append(expansions[phrase], expansion)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read synonyms: %w", err)
	}
	return New(expansions), nil
}

// New builds a table from an explicit phrase map.
func New(expansions map[string][]string) *Table {
	t := &Table{expansions: expansions}
	if len(expansions) == 0 {
		return t
	}

	phrases := make([]string, 0, len(expansions))
	for phrase := range expansions {
		phrases = append(phrases, phrase)
	}
	// Longer phrases first so "orange bitters" wins over "orange" when both
	// are mapped.
	sort.Slice(phrases, func(i, j int) bool {
		if len(phrases[i]) != len(phrases[j]) {
			return len(phrases[i]) > len(phrases[j])
		}
		return phrases[i] < phrases[j]
	})
	quoted := make([]string, len(phrases))
	for i, phrase := range phrases {
		quoted[i] = regexp.QuoteMeta(phrase)
	}
	t.matcher = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	return t
}

// Expand replaces every occurrence of a mapped phrase in text with the
// space-joined set of the original phrase and all of its transitive
// expansions. Expansion is inclusive: the original phrase is always kept.
// Non-matching text passes through unchanged.
func (t *Table) Expand(text string) string {
	if t.matcher == nil {
		return text
	}
	return t.matcher.ReplaceAllStringFunc(text, func(match string) string {
		seen := map[string]bool{}
		ordered := t.collect(strings.ToLower(match), seen, nil)
		// Keep the match's original casing for the leading term.
		if len(ordered) > 0 {
			ordered[0] = match
		}
		return strings.Join(ordered, " ")
	})
}

// collect walks the expansion graph transitively, cycle-safe, preserving
// first-seen order starting with phrase itself.
func (t *Table) collect(phrase string, seen map[string]bool, out []string) []string {
	if seen[phrase] {
		return out
	}
	seen[phrase] = true
	out = append(out, phrase)
	for _, expansion := range t.expansions[phrase] {
		out = t.collect(strings.ToLower(expansion), seen, out)
	}
	return out
}

// Len returns the number of mapped phrases.
func (t *Table) Len() int {
	return len(t.expansions)
}
