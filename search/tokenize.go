package search

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases text and splits it on every rune that is not a letter
// or a digit. "log-explorer" yields ["log", "explorer"].
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// uniqueTokens tokenizes every input and drops repeats, keeping first
// occurrence order.
func uniqueTokens(texts ...string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, text := range texts {
		for _, tok := range Tokenize(text) {
			if seen[tok] {
				continue
			}
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}
