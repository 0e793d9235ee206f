package textops

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Parts splits s on every occurrence of sep, keeping empty parts produced
// by leading, trailing or repeated separators.
func Parts(s, sep string) []string {
	return strings.Split(s, sep)
}

// Segments splits s on sep and drops empty parts.
func Segments(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Head returns the text before the first sep, or s when sep is absent.
func Head(s, sep string) string {
	head, _, found := strings.Cut(s, sep)
	if !found {
		return s
	}
	return head
}

// Tail returns everything after the first sep. It is empty when sep is
// absent.
func Tail(s, sep string) string {
	_, tail, _ := strings.Cut(s, sep)
	return tail
}

// First is Head ignoring a leading separator.
func First(s, sep string) string {
	if len(s) > len(sep) && strings.HasPrefix(s, sep) {
		return Head(s[len(sep):], sep)
	}
	return Head(s, sep)
}

// RemainderEnd is Tail ignoring a leading separator.
func RemainderEnd(s, sep string) string {
	if len(s) > len(sep) && strings.HasPrefix(s, sep) {
		return Tail(s[len(sep):], sep)
	}
	return Tail(s, sep)
}

// Last is End ignoring a trailing separator.
func Last(s, sep string) string {
	if len(s) > len(sep) && strings.HasSuffix(s, sep) {
		return End(s[:len(s)-len(sep)], sep)
	}
	return End(s, sep)
}

// RemainderStart is Start ignoring a trailing separator.
func RemainderStart(s, sep string) string {
	if len(s) > len(sep) && strings.HasSuffix(s, sep) {
		return Start(s[:len(s)-len(sep)], sep)
	}
	return Start(s, sep)
}

// End returns the text after the last sep, possibly empty.
func End(s, sep string) string {
	_, end := StartEnd(s, sep)
	return end
}

// Start returns the text before the last sep, or s when sep is absent.
func Start(s, sep string) string {
	start, _ := StartEnd(s, sep)
	return start
}

// Segment returns the non-empty segment at index. Negative indices count
// from the end, so -1 is the last segment.
func Segment(s, sep string, index int) (string, bool) {
	return elementAt(Segments(s, sep), index)
}

// Part returns the part at index, counting empty parts. Negative indices
// count from the end.
func Part(s, sep string, index int) (string, bool) {
	return elementAt(Parts(s, sep), index)
}

func elementAt(items []string, index int) (string, bool) {
	if index < 0 {
		index += len(items)
	}
	if index < 0 || index >= len(items) {
		return "", false
	}
	return items[index], true
}

// SegmentIndex is one step of an InnerSegment walk.
type SegmentIndex struct {
	Sep   string
	Index int
}

// InnerSegment applies Segment repeatedly, each step working on the result
// of the previous one. For "pictures/holiday-france-1983/originals" the
// steps {"/", 1}, {"-", 2} yield "1983".
func InnerSegment(s string, steps ...SegmentIndex) (string, bool) {
	if len(steps) == 0 {
		return "", false
	}
	current := s
	matched, ok := "", false
	for _, step := range steps {
		if current == "" {
			continue
		}
		matched, ok = Segment(current, step.Sep, step.Index)
		current = matched
	}
	return matched, ok
}

// HeadTail splits s at the first sep. When sep is absent the head is empty
// and the tail is s.
func HeadTail(s, sep string) (string, string) {
	head, tail, found := strings.Cut(s, sep)
	if !found {
		return "", s
	}
	return head, tail
}

// StartEnd splits s at the last sep. When sep is absent the start is s and
// the end is empty.
func StartEnd(s, sep string) (string, string) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+len(sep):]
}

// SplitOnAnyChar splits s wherever any of seps occurs. Empty parts are kept.
func SplitOnAnyChar(s string, seps ...rune) []string {
	match := isSep(seps)
	var parts []string
	start := 0
	for i, r := range s {
		if match(r) {
			parts = append(parts, s[start:i])
			start = i + utf8.RuneLen(r)
		}
	}
	return append(parts, s[start:])
}

// HeadTailOnAnyChar splits at the first occurrence of the first separator
// in seps that is present in s.
func HeadTailOnAnyChar(s string, seps ...rune) (string, string) {
	for _, sep := range seps {
		if head, tail, found := strings.Cut(s, string(sep)); found {
			return head, tail
		}
	}
	return "", s
}

// StartEndOnAnyChar splits at the last occurrence of the first separator
// in seps that is present in s.
func StartEndOnAnyChar(s string, seps ...rune) (string, string) {
	for _, sep := range seps {
		if strings.ContainsRune(s, sep) {
			return StartEnd(s, string(sep))
		}
	}
	return s, ""
}

func isSep(seps []rune) func(rune) bool {
	return func(r rune) bool { return slices.Contains(seps, r) }
}
