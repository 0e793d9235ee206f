// Package types provides domain models shared across strbounds service
// components: persisted rule sets, their identifiers and resource limits.
//
// The rule engine itself lives in pkg/rules and knows nothing about
// storage; this package carries what the catalog, the API and the CLI
// exchange.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/solatis/strbounds/pkg/rules"
)

// RuleSetID is a UUIDv7 rule set identifier.
type RuleSetID string

// ClientID scopes rule sets and API keys. The CLI uses LocalClient.
type ClientID string

// LocalClient owns rule sets created from the command line.
const LocalClient ClientID = "local"

// RuleSetKind selects how the top-level items of a rule set combine.
type RuleSetKind string

const (
	RuleSetAll RuleSetKind = "all"
	RuleSetAny RuleSetKind = "any"
)

// ParseRuleSetKind accepts all, any or an empty string (all).
func ParseRuleSetKind(s string) (RuleSetKind, error) {
	switch RuleSetKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", RuleSetAll:
		return RuleSetAll, nil
	case RuleSetAny:
		return RuleSetAny, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Kind returns the group kind used by rules.Filter.
func (k RuleSetKind) Kind() rules.Kind {
	if k == RuleSetAny {
		return rules.KindAny
	}
	return rules.KindAll
}

// RuleSet is a named rule tree owned by one client. Expression holds the
// JSON rule definition (pkg/ruledef).
type RuleSet struct {
	ID         RuleSetID       `json:"id"`
	ClientID   ClientID        `json:"client_id"`
	Name       string          `json:"name"`
	Kind       RuleSetKind     `json:"kind"`
	Expression json.RawMessage `json:"expression"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Resource limits enforced by the catalog and the filter API.
const (
	// MaxRuleSetNameLength bounds rule set names.
	MaxRuleSetNameLength = 128

	// MaxExpressionSize bounds a stored JSON rule definition.
	MaxExpressionSize = 256 * 1024

	// MaxCandidateLength bounds a single candidate string sent to the API.
	MaxCandidateLength = 64 * 1024

	// MaxRuleSetsPerClient bounds list results.
	MaxRuleSetsPerClient = 10000
)

// ValidateRuleSetName checks length and character set. Names may contain
// letters, digits and the punctuation - _ . /
func ValidateRuleSetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidRuleSetName)
	}
	if len(name) > MaxRuleSetNameLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidRuleSetName, MaxRuleSetNameLength)
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("-_./", r) {
			continue
		}
		return fmt.Errorf("%w: character %q not allowed", ErrInvalidRuleSetName, r)
	}
	return nil
}
