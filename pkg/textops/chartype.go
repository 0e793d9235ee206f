package textops

import (
	"slices"
	"unicode"
)

type charKind uint8

const (
	kindAny charKind = iota
	kindDecDigit
	kindDigit
	kindNumeric
	kindAlphaNum
	kindUpper
	kindLower
	kindAlpha
	kindSpaces
	kindPunctuation
	kindChar
	kindChars
	kindRange
	kindBetween
)

// CharType is a character category or an explicit set/range of characters
// used by the Strip*, Filter* and *Type functions.
type CharType struct {
	kind  charKind
	radix int
	chars []rune
	lo    rune
	hi    rune
}

var (
	// AnyChar matches every character.
	AnyChar = CharType{kind: kindAny}
	// DecDigit matches ASCII decimal digits.
	DecDigit = CharType{kind: kindDecDigit}
	// Numeric matches any Unicode number (Nd, Nl, No).
	Numeric = CharType{kind: kindNumeric}
	// AlphaNum matches alphabetic or numeric characters in any script.
	AlphaNum    = CharType{kind: kindAlphaNum}
	Upper       = CharType{kind: kindUpper}
	Lower       = CharType{kind: kindLower}
	Alpha       = CharType{kind: kindAlpha}
	Spaces      = CharType{kind: kindSpaces}
	Punctuation = CharType{kind: kindPunctuation} // ASCII punctuation only
)

// Digit matches digits of the given radix (2..36), where letters a-z in
// either case count as digits above 9.
func Digit(radix int) CharType {
	return CharType{kind: kindDigit, radix: radix}
}

// Char matches exactly r.
func Char(r rune) CharType {
	return CharType{kind: kindChar, lo: r}
}

// Chars matches any of rs.
func Chars(rs ...rune) CharType {
	return CharType{kind: kindChars, chars: slices.Clone(rs)}
}

// Range matches lo <= r < hi.
func Range(lo, hi rune) CharType {
	return CharType{kind: kindRange, lo: lo, hi: hi}
}

// Between matches lo <= r <= hi.
func Between(lo, hi rune) CharType {
	return CharType{kind: kindBetween, lo: lo, hi: hi}
}

// Contains reports whether r belongs to the category.
func (ct CharType) Contains(r rune) bool {
	switch ct.kind {
	case kindAny:
		return true
	case kindDecDigit:
		return r >= '0' && r <= '9'
	case kindDigit:
		return isDigitRadix(r, ct.radix)
	case kindNumeric:
		return unicode.IsNumber(r)
	case kindAlphaNum:
		return isAlphanumeric(r)
	case kindUpper:
		return unicode.IsUpper(r)
	case kindLower:
		return unicode.IsLower(r)
	case kindAlpha:
		return isAlphabetic(r)
	case kindSpaces:
		return unicode.IsSpace(r)
	case kindPunctuation:
		return isASCIIPunct(r)
	case kindChar:
		return r == ct.lo
	case kindChars:
		return slices.Contains(ct.chars, r)
	case kindRange:
		return r >= ct.lo && r < ct.hi
	case kindBetween:
		return r >= ct.lo && r <= ct.hi
	default:
		return false
	}
}

func containsAny(cts []CharType, r rune) bool {
	for _, ct := range cts {
		if ct.Contains(r) {
			return true
		}
	}
	return false
}

func isAlphabetic(r rune) bool {
	return unicode.IsLetter(r) || unicode.Is(unicode.Other_Alphabetic, r) || unicode.Is(unicode.Nl, r)
}

func isAlphanumeric(r rune) bool {
	return isAlphabetic(r) || unicode.IsNumber(r)
}

func isDigitRadix(r rune, radix int) bool {
	if radix < 2 || radix > 36 {
		return false
	}
	var v int
	switch {
	case r >= '0' && r <= '9':
		v = int(r - '0')
	case r >= 'a' && r <= 'z':
		v = int(r-'a') + 10
	case r >= 'A' && r <= 'Z':
		v = int(r-'A') + 10
	default:
		return false
	}
	return v < radix
}

// ASCII punctuation in the POSIX sense, which includes symbols such as $ + < = > ^ ` | ~.
func isASCIIPunct(r rune) bool {
	return r < 0x80 && (unicode.IsPunct(r) || unicode.IsSymbol(r))
}
