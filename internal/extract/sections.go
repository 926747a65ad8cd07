package extract

import (
	"strings"
	"unicode"
)

// SplitSections partitions ingredient lines into a primary list and earlier
// secondary sections. Sections are delimited by lines for which isHeader is
// true; the header line itself is never an ingredient. The section before
// any header (or, absent one, the last section) becomes the primary list;
// all other sections flatten into extras in original order.
//
// The function is pure and knows nothing about HTML; extractors feed it any
// line-like sequence.
func SplitSections(lines []string, isHeader func(string) bool) (ingredients, extra []string) {
	type section struct {
		headed bool
		lines  []string
	}

	var sections []section
	current := section{}
	started := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isHeader != nil && isHeader(line) {
			if started {
				sections = append(sections, current)
			}
			current = section{headed: true}
			started = true
			continue
		}
		started = true
		current.lines = append(current.lines, line)
	}
	if started {
		sections = append(sections, current)
	}

	if len(sections) == 0 {
		return nil, nil
	}

	// A headerless leading section is the primary list; otherwise the last
	// section is.
	primary := len(sections) - 1
	if !sections[0].headed {
		primary = 0
	}

	for i, sec := range sections {
		if i == primary {
			ingredients = append(ingredients, sec.lines...)
		} else {
			extra = append(extra, sec.lines...)
		}
	}
	return ingredients, extra
}

// IsUpperLine reports whether a line reads as an all-uppercase section
// header: it contains at least one letter and no lowercase letters.
func IsUpperLine(line string) bool {
	hasLetter := false
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
