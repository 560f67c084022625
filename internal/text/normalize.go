// Package text cleans free-form chat text before it is matched, stored or echoed.
package text

import (
	"strings"
	"unicode"
)

// Normalize removes decorative symbols (Unicode category So, which covers
// emoji and other pictographs). Every other rune is kept as is, including
// punctuation and non-Latin scripts.
func Normalize(s string) string {
	if strings.IndexFunc(s, isSymbol) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isSymbol(r) {
			return -1
		}
		return r
	}, s)
}

func isSymbol(r rune) bool {
	return unicode.Is(unicode.So, r)
}
