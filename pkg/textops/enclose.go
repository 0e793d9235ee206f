package textops

import "strings"

// NoEscape disables escaping in EncloseInChars.
const NoEscape rune = -1

// EncloseInChars wraps s in start and end, inserting prefix right after
// start. When escape is not NoEscape, every end character inside s is
// preceded by escape unless it is already escaped or is the first
// character.
func EncloseInChars(s string, start, end rune, prefix string, escape rune) string {
	body := s
	if escape != NoEscape && strings.ContainsRune(s, end) {
		body = EscapeInString(s, end, escape)
	}
	var b strings.Builder
	b.Grow(len(body) + len(prefix) + 8)
	b.WriteRune(start)
	b.WriteString(prefix)
	b.WriteString(body)
	b.WriteRune(end)
	return b.String()
}

// EscapeInString inserts esc before each occurrence of end in s. Characters
// already preceded by esc are left alone, as is an end character at the
// very start of s.
func EscapeInString(s string, end, esc rune) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	prev := ' '
	for _, r := range s {
		if r == end && prev != esc && b.Len() > 0 {
			b.WriteRune(esc)
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func Enclose(s string, start, end rune) string {
	return EncloseInChars(s, start, end, "", NoEscape)
}

func EncloseEscaped(s string, start, end, escape rune) string {
	return EncloseInChars(s, start, end, "", escape)
}

// EncloseSafe escapes inner end characters with a backslash.
func EncloseSafe(s string, start, end rune) string {
	return EncloseInChars(s, start, end, "", '\\')
}

// closingFor returns the matching bracket for ( < { [ and the opening
// character itself otherwise.
func closingFor(opening rune) rune {
	switch opening {
	case '(':
		return ')'
	case '<':
		return '>'
	case '{':
		return '}'
	case '[':
		return ']'
	default:
		return opening
	}
}

// Wrap encloses s in opening and its closing counterpart.
func Wrap(s string, opening rune) string {
	return EncloseInChars(s, opening, closingFor(opening), "", NoEscape)
}

func WrapEscaped(s string, opening, escape rune) string {
	return EncloseInChars(s, opening, closingFor(opening), "", escape)
}

func WrapSafe(s string, opening rune) string {
	return EncloseInChars(s, opening, closingFor(opening), "", '\\')
}

// InParentheses wraps s in round brackets with prefix after the opening
// bracket, e.g. InParentheses("x", "?=") is "(?=x)".
func InParentheses(s, prefix string) string {
	return EncloseInChars(s, '(', ')', prefix, NoEscape)
}

func Parenthesize(s string) string     { return Wrap(s, '(') }
func ParenthesizeSafe(s string) string { return WrapSafe(s, '(') }
func DoubleQuotes(s string) string     { return Wrap(s, '"') }
func SingleQuotes(s string) string     { return Wrap(s, '\'') }
func DoubleQuotesSafe(s string) string { return WrapEscaped(s, '"', '\\') }
func SingleQuotesSafe(s string) string { return WrapEscaped(s, '\'', '\\') }
