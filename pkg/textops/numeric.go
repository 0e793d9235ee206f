package textops

import (
	"strconv"
	"strings"
)

// Number is the set of types the numeric extractors can parse into.
type Number interface {
	int | int8 | int16 | int32 | int64 |
		uint | uint8 | uint16 | uint32 | uint64 |
		float32 | float64
}

// IsNumeric reports whether s parses directly as a decimal number: ASCII
// digits, an optional leading minus and at most one decimal point that is
// not the final character. Thousand separators are rejected; run
// CorrectNumericString first for looser input.
func IsNumeric(s string) bool {
	rs := []rune(s)
	if len(rs) == 0 {
		return false
	}
	last := len(rs) - 1
	points, digits := 0, 0
	for i, r := range rs {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '-' && i == 0:
		case r == '.' && i < last && points == 0:
			points++
		default:
			return false
		}
	}
	return digits > 0
}

// CorrectNumericString rewrites the first number in s so that a dot is the
// only decimal separator and thousand separators are removed. With euro
// set, a single comma is always read as the decimal separator and dots as
// thousand separators; otherwise the format is deduced from the order and
// count of separators.
func CorrectNumericString(s string, euro bool) string {
	commas := MatchedIndices(s, ",")
	points := MatchedIndices(s, ".")
	lastComma, lastPoint := 0, 0
	if len(commas) > 0 {
		lastComma = commas[len(commas)-1]
	}
	if len(points) > 0 {
		lastPoint = points[len(points)-1]
	}
	if len(points) > 1 || (lastComma > lastPoint && len(commas) <= 1) || (euro && len(commas) <= 1) {
		if len(commas) == 0 {
			return strings.ReplaceAll(s, ".", "")
		}
		main, dec := StartEnd(s, ",")
		return strings.ReplaceAll(main, ".", "") + "." + dec
	}
	return strings.ReplaceAll(s, ",", "")
}

// NumericStrings extracts the numbers embedded in s as normalized numeric
// strings, in order of appearance.
func NumericStrings(s string) []string {
	return NumericStringsConditional(s, false)
}

// NumericStringsEuro is NumericStrings with commas as decimal separators
// and dots as thousand separators.
func NumericStringsEuro(s string) []string {
	return NumericStringsConditional(s, true)
}

// NumericStringsConditional scans s for digit runs joined by single
// separators ('.', ',' or U+2024) and returns each run corrected by
// CorrectNumericString. A minus sign directly before a run is kept.
func NumericStringsConditional(s string, euro bool) []string {
	rs := []rune(s)
	last := max(len(rs)-1, 0)

	var (
		out     []string
		num     []byte
		seq     int
		prev    = ' '
		prevSep bool
	)
	for i, r := range rs {
		isEnd := i == last
		isDigit := r >= '0' && r <= '9'

		// A separator not followed by a digit closes the number.
		if prevSep && !isDigit && len(num) > 1 {
			num = num[:len(num)-1]
			isEnd = true
			seq = len(num)
		}

		switch {
		case isDigit:
			if prev == '-' {
				num = append(num, '-')
			}
			num = append(num, byte(r))
			seq++
			prevSep = false
		case prev >= '0' && prev <= '9':
			switch r {
			case '.', '\u2024', ',':
				if i == last {
					isEnd = true
				} else {
					if r == ',' {
						num = append(num, ',')
					} else {
						num = append(num, '.')
					}
					seq = 0
				}
				prevSep = true
			default:
				isEnd = true
			}
		default:
			isEnd = true
			prevSep = false
		}

		if isEnd && seq > 0 {
			n := CorrectNumericString(string(num), euro)
			out = append(out, strings.TrimRight(strings.TrimRight(n, "."), ","))
			num = num[:0]
			seq = 0
		}
		prev = r
	}
	return out
}

// StripNonNumeric returns the numbers found in s separated by single spaces.
func StripNonNumeric(s string) string {
	return strings.Join(NumericStrings(s), " ")
}

// ToNumbers parses every number embedded in s as T. Numbers that do not fit
// T, such as decimals when T is an integer type, are skipped.
func ToNumbers[T Number](s string) []T {
	return parseAll[T](NumericStrings(s))
}

// ToNumbersEuro is ToNumbers with European separators.
func ToNumbersEuro[T Number](s string) []T {
	return parseAll[T](NumericStringsEuro(s))
}

// FirstNumber returns the first number in s that parses as T.
func FirstNumber[T Number](s string) (T, bool) {
	return first(ToNumbers[T](s))
}

func FirstNumberEuro[T Number](s string) (T, bool) {
	return first(ToNumbersEuro[T](s))
}

// SplitToNumbers splits s on sep and returns the first number of every
// segment that has one.
func SplitToNumbers[T Number](s, sep string) []T {
	var out []T
	for _, seg := range Segments(s, sep) {
		if n, ok := FirstNumber[T](seg); ok {
			out = append(out, n)
		}
	}
	return out
}

func first[T Number](ns []T) (T, bool) {
	if len(ns) == 0 {
		var zero T
		return zero, false
	}
	return ns[0], true
}

func parseAll[T Number](strs []string) []T {
	out := make([]T, 0, len(strs))
	for _, s := range strs {
		if n, err := ParseNumber[T](s); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// ParseNumber parses s as T using the strconv rules for T's kind.
func ParseNumber[T Number](s string) (T, error) {
	var out T
	var err error
	switch p := any(&out).(type) {
	case *float64:
		*p, err = strconv.ParseFloat(s, 64)
	case *float32:
		var f float64
		f, err = strconv.ParseFloat(s, 32)
		*p = float32(f)
	case *int:
		var v int64
		v, err = strconv.ParseInt(s, 10, 0)
		*p = int(v)
	case *int8:
		var v int64
		v, err = strconv.ParseInt(s, 10, 8)
		*p = int8(v)
	case *int16:
		var v int64
		v, err = strconv.ParseInt(s, 10, 16)
		*p = int16(v)
	case *int32:
		var v int64
		v, err = strconv.ParseInt(s, 10, 32)
		*p = int32(v)
	case *int64:
		*p, err = strconv.ParseInt(s, 10, 64)
	case *uint:
		var v uint64
		v, err = strconv.ParseUint(s, 10, 0)
		*p = uint(v)
	case *uint8:
		var v uint64
		v, err = strconv.ParseUint(s, 10, 8)
		*p = uint8(v)
	case *uint16:
		var v uint64
		v, err = strconv.ParseUint(s, 10, 16)
		*p = uint16(v)
	case *uint32:
		var v uint64
		v, err = strconv.ParseUint(s, 10, 32)
		*p = uint32(v)
	case *uint64:
		*p, err = strconv.ParseUint(s, 10, 64)
	}
	return out, err
}
