package rules

import "errors"

// Sentinel errors for rule construction and compilation. Evaluation itself
// never fails.
var (
	// ErrNestedRules indicates a flat condition list was requested from a
	// rule set that contains All/Any groups.
	ErrNestedRules = errors.New("rule set contains nested groups")

	// ErrRuleTooDeep indicates a rule tree exceeds the configured MaxDepth.
	ErrRuleTooDeep = errors.New("rule tree exceeds maximum depth")

	// ErrTooManyConditions indicates a rule tree has more leaves than
	// MaxConditions.
	ErrTooManyConditions = errors.New("rule tree has too many conditions")

	// ErrInvalidCaseMode indicates an unknown case mode name.
	ErrInvalidCaseMode = errors.New("invalid case mode")

	// ErrInvalidAnchor indicates an unknown anchor name.
	ErrInvalidAnchor = errors.New("invalid anchor")
)
