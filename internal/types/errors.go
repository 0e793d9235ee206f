package types

import "errors"

// Sentinel errors for strbounds service operations.
var (
	// ErrRuleSetNotFound indicates no rule set with the given id or name
	// exists for the client.
	ErrRuleSetNotFound = errors.New("rule set not found")

	// ErrDuplicateRuleSetName indicates the client already has a rule set
	// with that name.
	ErrDuplicateRuleSetName = errors.New("rule set name already exists")

	// ErrInvalidRuleSetName indicates an empty, overlong or malformed name.
	ErrInvalidRuleSetName = errors.New("invalid rule set name")

	// ErrInvalidKind indicates a rule set kind other than all or any.
	ErrInvalidKind = errors.New("invalid rule set kind")

	// ErrExpressionTooLarge indicates a rule definition exceeds MaxExpressionSize.
	ErrExpressionTooLarge = errors.New("rule expression exceeds maximum size")

	// ErrBatchTooLarge indicates more candidates than the configured batch size.
	ErrBatchTooLarge = errors.New("candidate batch exceeds maximum size")

	// ErrCandidateTooLarge indicates a candidate exceeds MaxCandidateLength.
	ErrCandidateTooLarge = errors.New("candidate exceeds maximum length")

	// ErrInvalidRuleSetID indicates a malformed rule set identifier.
	ErrInvalidRuleSetID = errors.New("invalid rule set id")
)
