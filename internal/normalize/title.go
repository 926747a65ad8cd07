// Package normalize derives the canonical title key used to group duplicate
// recipes at dedup time and at search time.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonWordRegex = regexp.MustCompile(`[^\w\s]`)

// diacriticStripper decomposes to NFKD and drops combining marks, so
// "Añejo" and "Anejo" produce the same key.
var diacriticStripper = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Boilerplate tokens are compared in stemmed form so that stripping stays
// consistent with the stemmed title tokens.
var (
	stemThe      = stem("the")
	stemDry      = stem("dry")
	stemRye      = stem("rye")
	stemSazerac  = stem("sazerac")
	stemCocktail = stem("cocktail")
	stemCrowdTail = []string{stem("for"), stem("a"), stem("crowd")}
)

// Title reduces a recipe title to its grouping key: diacritics and
// punctuation stripped, lowercased, tokens stemmed, boilerplate words
// dropped, whitespace removed. The key is never shown to users.
func Title(title string) string {
	s, _, err := transform.String(diacriticStripper, title)
	if err != nil {
		s = title
	}
	s = nonWordRegex.ReplaceAllString(s, "")
	s = strings.ToLower(s)

	tokens := strings.Fields(s)
	for i, t := range tokens {
		tokens[i] = stem(t)
	}
	tokens = stripBoilerplate(tokens)

	return strings.Join(tokens, "")
}

// stem runs the English snowball stemmer, falling back to the input token
// when stemming fails.
func stem(token string) string {
	stemmed, err := snowball.Stem(token, "english", true)
	if err != nil || stemmed == "" {
		return token
	}
	return stemmed
}

// stripBoilerplate drops the fixed set of leading and trailing filler
// tokens: leading "the"/"dry" ("rye" only before "sazerac"), trailing
// "cocktail"/"for a crowd"/"dry"/"the". A key is never stripped to nothing.
func stripBoilerplate(tokens []string) []string {
	if len(tokens) > 1 && tokens[0] == stemThe {
		tokens = tokens[1:]
	}
	if len(tokens) > 1 && tokens[0] == stemDry {
		tokens = tokens[1:]
	}
	if len(tokens) > 1 && tokens[0] == stemRye && tokens[1] == stemSazerac {
		tokens = tokens[1:]
	}
	if len(tokens) > 1 && tokens[len(tokens)-1] == stemCocktail {
		tokens = tokens[:len(tokens)-1]
	}
	if n := len(tokens); n > len(stemCrowdTail) && hasSuffix(tokens, stemCrowdTail) {
		tokens = tokens[:n-len(stemCrowdTail)]
	}
	if len(tokens) > 1 && tokens[len(tokens)-1] == stemDry {
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) > 1 && tokens[len(tokens)-1] == stemThe {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

// hasSuffix reports whether tokens ends with the given token sequence.
func hasSuffix(tokens, suffix []string) bool {
	offset := len(tokens) - len(suffix)
	if offset < 0 {
		return false
	}
	for i, s := range suffix {
		if tokens[offset+i] != s {
			return false
		}
	}
	return true
}
