package vectorizer

import (
	"strings"
	"unicode"
)

// analyzer turns a document into the terms of one feature block.
type analyzer interface {
	terms(text string) []string
}

// wordAnalyzer emits word n-grams over Unicode letter/digit tokens,
// n-grams joined by a single space.
type wordAnalyzer struct {
	lo, hi    int
	lowercase bool
}

func (a wordAnalyzer) terms(text string) []string {
	if a.lowercase {
		text = strings.ToLower(text)
	}
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(tokens) == 0 {
		return nil
	}

	out := make([]string, 0, len(tokens)*(a.hi-a.lo+1))
	for n := a.lo; n <= a.hi; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

// charAnalyzer emits rune n-grams over the raw text.
type charAnalyzer struct {
	lo, hi    int
	lowercase bool
}

func (a charAnalyzer) terms(text string) []string {
	if a.lowercase {
		text = strings.ToLower(text)
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	out := make([]string, 0, len(runes)*(a.hi-a.lo+1))
	for n := a.lo; n <= a.hi; n++ {
		for i := 0; i+n <= len(runes); i++ {
			out = append(out, string(runes[i:i+n]))
		}
	}
	return out
}
