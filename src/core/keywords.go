package core

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// keywordMatcher matches any of a keyword table case-insensitively. A keyword
// edge that is a letter or digit must sit on a word boundary, so "Over" does
// not fire inside "Dover".
type keywordMatcher struct {
	re *regexp.Regexp
}

func newKeywordMatcher(words []string) *keywordMatcher {
	alts := keywordAlternatives(words)
	if len(alts) == 0 {
		return &keywordMatcher{}
	}

	return &keywordMatcher{
		re: regexp.MustCompile(`(?i)` + strings.Join(alts, "|")),
	}
}

// newLabelMatcher matches lines that start with one of the labels.
func newLabelMatcher(labels []string) *keywordMatcher {
	alts := keywordAlternatives(labels)
	if len(alts) == 0 {
		return &keywordMatcher{}
	}

	return &keywordMatcher{
		re: regexp.MustCompile(`(?i)^\s*(?:` + strings.Join(alts, "|") + `)`),
	}
}

func (m *keywordMatcher) match(s string) bool {
	return m.re != nil && m.re.MatchString(s)
}

func keywordAlternatives(words []string) []string {
	sorted := longestFirst(words)

	alts := make([]string, 0, len(sorted))
	for _, w := range sorted {
		alt := regexp.QuoteMeta(w)

		first, _ := utf8.DecodeRuneInString(w)
		if isWordRune(first) {
			alt = `(?:^|[^\p{L}\p{N}])` + alt
		}
		last, _ := utf8.DecodeLastRuneInString(w)
		if isWordRune(last) {
			alt += `(?:[^\p{L}\p{N}]|$)`
		}

		alts = append(alts, "(?:"+alt+")")
	}

	return alts
}

// longestFirst drops blank words and orders the rest longest first, since
// regexp alternation is leftmost-first.
func longestFirst(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i]) > len(out[j])
	})

	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
