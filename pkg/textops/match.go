// Package textops provides regex-free string helpers: case-insensitive
// comparisons, character category filters, segment splitting, numeric
// extraction and quoting.
//
// All functions are pure and safe for concurrent use. Offsets returned by
// the occurrence finders are byte offsets into the input.
package textops

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// The folding Caser is stateless and may be shared.
var folder = cases.Fold()

// Fold returns the full Unicode case fold of s.
func Fold(s string) string {
	if isASCII(s) {
		return strings.ToLower(s)
	}
	return folder.String(s)
}

// FoldAlphanum strips every non-alphanumeric character and case-folds the
// rest. Folding can introduce combining marks (U+0130 folds to "i̇"),
// so the result is stripped a second time to keep the function idempotent.
func FoldAlphanum(s string) string {
	return StripNonAlphanum(Fold(StripNonAlphanum(s)))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// EqualsCI reports whether s and pattern are equal under case folding.
func EqualsCI(s, pattern string) bool {
	return Fold(s) == Fold(pattern)
}

// EqualsCIAlphanum compares only the alphanumeric characters of s and
// pattern, ignoring case.
func EqualsCIAlphanum(s, pattern string) bool {
	return FoldAlphanum(s) == FoldAlphanum(pattern)
}

func StartsWithCI(s, pattern string) bool {
	return strings.HasPrefix(Fold(s), Fold(pattern))
}

func StartsWithCIAlphanum(s, pattern string) bool {
	return strings.HasPrefix(FoldAlphanum(s), FoldAlphanum(pattern))
}

func EndsWithCI(s, pattern string) bool {
	return strings.HasSuffix(Fold(s), Fold(pattern))
}

func EndsWithCIAlphanum(s, pattern string) bool {
	return strings.HasSuffix(FoldAlphanum(s), FoldAlphanum(pattern))
}

func ContainsCI(s, pattern string) bool {
	return strings.Contains(Fold(s), Fold(pattern))
}

func ContainsCIAlphanum(s, pattern string) bool {
	return strings.Contains(FoldAlphanum(s), FoldAlphanum(pattern))
}

// MatchedIndices returns the byte offsets of every non-overlapping
// occurrence of pattern in s. An empty pattern matches nothing.
func MatchedIndices(s, pattern string) []int {
	if pattern == "" {
		return nil
	}
	var out []int
	offset := 0
	for {
		i := strings.Index(s[offset:], pattern)
		if i < 0 {
			return out
		}
		out = append(out, offset+i)
		offset += i + len(pattern)
	}
}

// CharIndices returns the byte offsets of every occurrence of r in s.
func CharIndices(s string, r rune) []int {
	var out []int
	for i, c := range s {
		if c == r {
			out = append(out, i)
		}
	}
	return out
}
