package pricing

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fold lower-cases s with Turkish rules and treats dotless ı as i, since
// "IPHONE" and "iPhone" must meet. Punctuation becomes space and runs of
// whitespace collapse.
func Fold(s string) string {
	lowered := cases.Lower(language.Turkish).String(s)
	mapped := strings.Map(func(r rune) rune {
		if r == 'ı' {
			return 'i'
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, lowered)
	return strings.Join(strings.Fields(mapped), " ")
}

// ProductKey is the cache key of a title within a category.
func ProductKey(category, title string) string {
	return Fold(category) + "|" + Fold(title)
}
