// pkg/rules/casemode.go
package rules

import (
	"fmt"
	"strings"

	"github.com/solatis/strbounds/pkg/textops"
)

/*
 * Case sensitivity modes.
 *
 * A CaseMode selects how pattern and candidate are normalized before the
 * anchored comparison. Both sides always go through the same Normalize, so
 * "ci_alphanum" compares "Picture_of my cat" and "pictureofmycat" equal.
 *
 * Normalization:
 *   - cs:          identity
 *   - ci:          full Unicode case fold (x/text/cases)
 *   - ci_alphanum: strip non-alphanumerics, fold, strip again
 *
 * All three are idempotent: Normalize(Normalize(s)) == Normalize(s).
 */

// CaseMode selects the normalization applied before comparison.
type CaseMode uint8

const (
	CaseSensitive CaseMode = iota
	CaseInsensitive
	CaseInsensitiveAlphanum
)

// caseModeCount sizes the per-candidate normalization cache.
const caseModeCount = 3

var caseModeNames = [caseModeCount]string{"cs", "ci", "ci_alphanum"}

func (m CaseMode) String() string {
	if int(m) < len(caseModeNames) {
		return caseModeNames[m]
	}
	return fmt.Sprintf("CaseMode(%d)", m)
}

// ParseCaseMode accepts cs, ci and ci_alphanum (case-insensitive). The
// empty string is CaseSensitive.
func ParseCaseMode(s string) (CaseMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cs", "sensitive":
		return CaseSensitive, nil
	case "ci", "insensitive":
		return CaseInsensitive, nil
	case "ci_alphanum", "alphanum":
		return CaseInsensitiveAlphanum, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidCaseMode, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m CaseMode) MarshalText() ([]byte, error) {
	if int(m) >= len(caseModeNames) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCaseMode, m)
	}
	return []byte(caseModeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *CaseMode) UnmarshalText(text []byte) error {
	parsed, err := ParseCaseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Normalize maps s to the form compared under m.
func (m CaseMode) Normalize(s string) string {
	switch m {
	case CaseInsensitive:
		return textops.Fold(s)
	case CaseInsensitiveAlphanum:
		return textops.FoldAlphanum(s)
	default:
		return s
	}
}

// Equal reports whether candidate and pattern are equal under m.
func (m CaseMode) Equal(candidate, pattern string) bool {
	return compare(AnchorWhole, m.Normalize(candidate), m.Normalize(pattern))
}

// HasPrefix reports whether candidate starts with pattern under m.
func (m CaseMode) HasPrefix(candidate, pattern string) bool {
	return compare(AnchorStartsWith, m.Normalize(candidate), m.Normalize(pattern))
}

// HasSuffix reports whether candidate ends with pattern under m.
func (m CaseMode) HasSuffix(candidate, pattern string) bool {
	return compare(AnchorEndsWith, m.Normalize(candidate), m.Normalize(pattern))
}

// Contains reports whether candidate contains pattern under m.
func (m CaseMode) Contains(candidate, pattern string) bool {
	return compare(AnchorContains, m.Normalize(candidate), m.Normalize(pattern))
}
