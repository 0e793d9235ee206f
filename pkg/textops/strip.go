package textops

import (
	"strings"
	"unicode/utf8"
)

func keep(s string, pred func(rune) bool) string {
	return strings.Map(func(r rune) rune {
		if pred(r) {
			return r
		}
		return -1
	}, s)
}

// StripNonAlphanum removes every character that is neither a letter nor a
// number in any script, including spaces.
func StripNonAlphanum(s string) string {
	return keep(s, isAlphanumeric)
}

// StripNonDigits keeps only ASCII decimal digits. Decimal points are
// removed too; use StripNonNumeric to keep whole numbers.
func StripNonDigits(s string) string {
	return keep(s, DecDigit.Contains)
}

func StripSpaces(s string) string {
	return StripByType(s, Spaces)
}

// StripByType removes the characters belonging to ct.
func StripByType(s string, ct CharType) string {
	return keep(s, func(r rune) bool { return !ct.Contains(r) })
}

// StripByTypes removes the characters belonging to any of cts.
func StripByTypes(s string, cts ...CharType) string {
	return keep(s, func(r rune) bool { return !containsAny(cts, r) })
}

// FilterByType keeps only the characters belonging to ct.
func FilterByType(s string, ct CharType) string {
	return keep(s, ct.Contains)
}

// FilterByTypes keeps only the characters belonging to any of cts.
func FilterByTypes(s string, cts ...CharType) string {
	return keep(s, func(r rune) bool { return containsAny(cts, r) })
}

func HasDigits(s string) bool {
	return strings.ContainsFunc(s, DecDigit.Contains)
}

func HasDigitsRadix(s string, radix int) bool {
	return strings.ContainsFunc(s, Digit(radix).Contains)
}

func HasAlphanumeric(s string) bool {
	return strings.ContainsFunc(s, isAlphanumeric)
}

func HasAlphabetic(s string) bool {
	return strings.ContainsFunc(s, isAlphabetic)
}

// IsDigitsOnly reports whether every character is an ASCII digit. The empty
// string is vacuously digits-only.
func IsDigitsOnly(s string) bool {
	return !strings.ContainsFunc(s, func(r rune) bool { return !DecDigit.Contains(r) })
}

func IsDigitsOnlyRadix(s string, radix int) bool {
	ct := Digit(radix)
	return !strings.ContainsFunc(s, func(r rune) bool { return !ct.Contains(r) })
}

// ContainsType reports whether any character of s belongs to ct.
func ContainsType(s string, ct CharType) bool {
	return strings.ContainsFunc(s, ct.Contains)
}

func ContainsTypes(s string, cts ...CharType) bool {
	return strings.ContainsFunc(s, func(r rune) bool { return containsAny(cts, r) })
}

// StartsWithType reports whether the first character of s belongs to ct.
func StartsWithType(s string, ct CharType) bool {
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return ct.Contains(r)
}

func StartsWithTypes(s string, cts ...CharType) bool {
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return containsAny(cts, r)
}

// EndsWithType reports whether the last character of s belongs to ct.
func EndsWithType(s string, ct CharType) bool {
	r, ok := lastRune(s)
	return ok && ct.Contains(r)
}

func EndsWithTypes(s string, cts ...CharType) bool {
	r, ok := lastRune(s)
	return ok && containsAny(cts, r)
}

func lastRune(s string) (rune, bool) {
	if s == "" {
		return 0, false
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return r, true
}
