package vectorizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

const minTokenRunes = 2

// tokenizer splits banner text into lowercase word tokens.
type tokenizer struct {
	fold cases.Caser
}

func newTokenizer() *tokenizer {
	return &tokenizer{fold: cases.Fold()}
}

// tokenize case-folds text and splits it on every rune that is not a letter,
// digit or underscore. Tokens shorter than two runes are dropped.
func (t *tokenizer) tokenize(text string) []string {
	text = t.fold.String(text)
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !isWordRune(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minTokenRunes {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
