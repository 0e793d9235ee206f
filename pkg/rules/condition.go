package rules

import "strconv"

// Condition is a single anchored string test. Positive=false inverts the
// raw comparison result.
type Condition struct {
	Anchor   Anchor
	Pattern  string
	Positive bool
	Mode     CaseMode
}

// StartsWith returns a condition matching candidates that begin with pattern.
func StartsWith(pattern string, positive bool, mode CaseMode) Condition {
	return Condition{Anchor: AnchorStartsWith, Pattern: pattern, Positive: positive, Mode: mode}
}

// EndsWith returns a condition matching candidates that end with pattern.
func EndsWith(pattern string, positive bool, mode CaseMode) Condition {
	return Condition{Anchor: AnchorEndsWith, Pattern: pattern, Positive: positive, Mode: mode}
}

// Contains returns a condition matching candidates containing pattern.
func Contains(pattern string, positive bool, mode CaseMode) Condition {
	return Condition{Anchor: AnchorContains, Pattern: pattern, Positive: positive, Mode: mode}
}

// Whole returns a condition matching candidates equal to pattern.
func Whole(pattern string, positive bool, mode CaseMode) Condition {
	return Condition{Anchor: AnchorWhole, Pattern: pattern, Positive: positive, Mode: mode}
}

// Match evaluates the condition against candidate.
func (c Condition) Match(candidate string) bool {
	return c.matchNormalized(c.Mode.Normalize(candidate))
}

func (c Condition) matchNormalized(candidate string) bool {
	return compare(c.Anchor, candidate, c.Mode.Normalize(c.Pattern)) == c.Positive
}

// String renders the condition as e.g. `not ends_with_ci(".psd")`.
func (c Condition) String() string {
	s := c.Anchor.String() + "_" + c.Mode.String() + "(" + strconv.Quote(c.Pattern) + ")"
	if !c.Positive {
		return "not " + s
	}
	return s
}
