package corpus

import (
	"strings"
	"unicode"
)

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// Tokenize splits text into word tokens and punctuation tokens. Runs of
// non-word characters are kept as single tokens with surrounding whitespace
// trimmed, so "apple." yields "apple" and ".".
func Tokenize(text string) []string {
	tokens := make([]string, 0, len(text)/4)
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		j := i
		word := isWordRune(runes[i])
		for j < len(runes) && isWordRune(runes[j]) == word {
			j++
		}
		frag := strings.TrimSpace(string(runes[i:j]))
		if frag != "" {
			tokens = append(tokens, frag)
		}
		i = j
	}
	return tokens
}
