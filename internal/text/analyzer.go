// Package text turns free text into the word n-grams the vectorizer counts.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Analyzer splits a document into word n-grams.
type Analyzer struct {
	NGramMin  int
	NGramMax  int
	Lowercase bool
	// StopWords are dropped before n-grams are formed. nil keeps every token.
	StopWords map[string]struct{}
}

// Tokenize returns the word tokens of s: maximal runs of letters, digits or
// underscores that are at least two runes long.
func Tokenize(s string) []string {
	var out []string
	start := -1
	runes := 0
	flush := func(end int) {
		if start >= 0 && runes >= 2 {
			out = append(out, s[start:end])
		}
		start, runes = -1, 0
	}
	for i, r := range s {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			runes++
			continue
		}
		flush(i)
	}
	flush(len(s))
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// Analyze lowercases (when enabled), tokenizes, removes stop words and
// expands the remaining tokens into n-grams of NGramMin..NGramMax words.
func (a Analyzer) Analyze(doc string) []string {
	if a.Lowercase {
		// cases.Caser keeps state, so build one per call.
		doc = cases.Lower(language.Und).String(doc)
	}
	toks := Tokenize(doc)
	if a.StopWords != nil {
		kept := toks[:0]
		for _, t := range toks {
			if _, stop := a.StopWords[t]; !stop {
				kept = append(kept, t)
			}
		}
		toks = kept
	}
	return NGrams(toks, a.NGramMin, a.NGramMax)
}

// NGrams expands tokens into contiguous n-grams for n in [min, max], joined
// by single spaces. Unigrams come first. min < 1 is treated as 1 and
// max < min as min.
func NGrams(tokens []string, min, max int) []string {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	if min == 1 && max == 1 {
		return tokens
	}
	var out []string
	for n := min; n <= max; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if n == 1 {
				out = append(out, tokens[i])
				continue
			}
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
