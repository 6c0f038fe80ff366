// Package textutil provides the token and string similarity helpers shared by
// clustering and field inference.
//
// Tokenization lowercases text, splits on runs of anything but letters and
// digits in any script, and drops tokens shorter than MinTokenLength.
// Overlap is order independent.
package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTokenLength is the shortest token kept by Tokenize, in characters.
const MinTokenLength = 3

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// Tokenize splits text into lowercase tokens, filtering short tokens.
func Tokenize(text string) []string {
	raw := Words(text)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if utf8.RuneCountInString(token) < MinTokenLength {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// Words splits text into lowercase words of letters and digits, in any
// script, of any length.
func Words(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), isSeparator)
	if len(words) == 0 {
		return nil
	}
	return words
}

// TokenSet returns the unique tokens of text.
func TokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Overlap returns the fraction of shared tokens between a and b, measured
// against the smaller of the two token sets. Empty text on either side
// yields 0.
func Overlap(a, b string) float64 {
	setA := TokenSet(a)
	setB := TokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	small, large := setA, setB
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for t := range small {
		if _, ok := large[t]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(small))
}

// SplitName breaks a file name into lowercase words, splitting on separators
// and camelCase boundaries. The extension is dropped. Unlike Tokenize no
// minimum length applies.
func SplitName(name string) []string {
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case isSeparator(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && unicode.IsLower(runes[i-1]):
			flush()
			current = append(current, r)
		case unicode.IsDigit(r) && i > 0 && unicode.IsLetter(runes[i-1]),
			unicode.IsLetter(r) && i > 0 && unicode.IsDigit(runes[i-1]):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()
	return words
}

// Squash lowercases text and removes everything but letters and digits, so
// "Social Proof" and "social-proof" both become "socialproof".
func Squash(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
