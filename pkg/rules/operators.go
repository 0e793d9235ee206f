// pkg/rules/operators.go
package rules

import (
	"fmt"
	"strings"
)

/*
 * Anchor comparison logic.
 *
 * Four anchored comparisons over already-normalized strings. Callers
 * normalize both sides with the same CaseMode before reaching compare().
 *
 * Anchors:
 *   - contains:    pattern occurs anywhere in the candidate
 *   - starts_with: candidate begins with pattern
 *   - ends_with:   candidate ends with pattern
 *   - is:          candidate equals pattern
 *
 * Empty pattern: contains/starts_with/ends_with are trivially true; "is"
 * holds only for an empty candidate.
 */

// Anchor is the position constraint of a Condition. The zero value is
// AnchorContains.
type Anchor uint8

const (
	AnchorContains Anchor = iota
	AnchorStartsWith
	AnchorEndsWith
	AnchorWhole
)

var anchorNames = [...]string{"contains", "starts_with", "ends_with", "is"}

func (a Anchor) String() string {
	if int(a) < len(anchorNames) {
		return anchorNames[a]
	}
	return fmt.Sprintf("Anchor(%d)", a)
}

// ParseAnchor accepts the names produced by Anchor.String plus a few
// common aliases.
func ParseAnchor(s string) (Anchor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "contains", "containing":
		return AnchorContains, nil
	case "starts_with", "startswith", "starting_with", "prefix":
		return AnchorStartsWith, nil
	case "ends_with", "endswith", "ending_with", "suffix":
		return AnchorEndsWith, nil
	case "is", "whole", "equals":
		return AnchorWhole, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidAnchor, s)
	}
}

// compare applies the anchor to normalized candidate and pattern.
func compare(a Anchor, candidate, pattern string) bool {
	switch a {
	case AnchorStartsWith:
		return strings.HasPrefix(candidate, pattern)
	case AnchorEndsWith:
		return strings.HasSuffix(candidate, pattern)
	case AnchorWhole:
		return candidate == pattern
	default:
		return strings.Contains(candidate, pattern)
	}
}
