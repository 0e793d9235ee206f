// Package ruledef reads and writes rule trees as JSON, YAML or TOML
// documents.
//
// A definition object holds exactly one of the keys all, any, starts_with,
// ends_with, contains or is, plus the optional keys case (cs, ci or
// ci_alphanum; default cs) and not (default false):
//
//	{"all": [
//	  {"any": [{"starts_with": "cat", "case": "ci_alphanum"},
//	           {"starts_with": "dog", "case": "ci_alphanum"}]},
//	  {"ends_with": ".psd", "case": "ci", "not": true}
//	]}
//
// A JSON or YAML document whose top level is a list is read as an implicit
// all.
package ruledef

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/solatis/strbounds/pkg/rules"
)

var (
	// ErrInvalidDefinition is returned when a definition object names no
	// kind or several kinds, or carries keys its kind does not allow.
	ErrInvalidDefinition = errors.New("invalid rule definition")

	// ErrUnknownFormat is returned for an unsupported document format.
	ErrUnknownFormat = errors.New("unknown rule definition format")
)

// Definition is the document form of a rules.Node. Pointer fields tell an
// absent key from an empty value: {"all": []} is an empty All-group and
// {"contains": ""} is a condition with an empty pattern.
type Definition struct {
	All        *[]Definition `json:"all,omitempty" yaml:"all,omitempty" toml:"all,omitempty"`
	Any        *[]Definition `json:"any,omitempty" yaml:"any,omitempty" toml:"any,omitempty"`
	StartsWith *string       `json:"starts_with,omitempty" yaml:"starts_with,omitempty" toml:"starts_with,omitempty"`
	EndsWith   *string       `json:"ends_with,omitempty" yaml:"ends_with,omitempty" toml:"ends_with,omitempty"`
	Contains   *string       `json:"contains,omitempty" yaml:"contains,omitempty" toml:"contains,omitempty"`
	Is         *string       `json:"is,omitempty" yaml:"is,omitempty" toml:"is,omitempty"`
	Case       string        `json:"case,omitempty" yaml:"case,omitempty" toml:"case,omitempty"`
	Not        bool          `json:"not,omitempty" yaml:"not,omitempty" toml:"not,omitempty"`
}

// Node converts d to a rule tree no deeper than maxDepth levels. A
// non-positive maxDepth selects rules.DefaultMaxDepth.
func (d Definition) Node(maxDepth int) (rules.Node, error) {
	if maxDepth <= 0 {
		maxDepth = rules.DefaultMaxDepth
	}
	return d.node("$", 1, maxDepth)
}

func (d Definition) node(path string, depth, maxDepth int) (rules.Node, error) {
	if depth > maxDepth {
		return rules.Node{}, fmt.Errorf("%s: %w: limit %d", path, rules.ErrRuleTooDeep, maxDepth)
	}

	kinds := 0
	for _, set := range []bool{
		d.All != nil, d.Any != nil,
		d.StartsWith != nil, d.EndsWith != nil, d.Contains != nil, d.Is != nil,
	} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return rules.Node{}, fmt.Errorf("%s: %w: want exactly one of all, any, starts_with, ends_with, contains, is (found %d)",
			path, ErrInvalidDefinition, kinds)
	}

	if d.All != nil || d.Any != nil {
		if d.Case != "" || d.Not {
			return rules.Node{}, fmt.Errorf("%s: %w: case and not apply to conditions only", path, ErrInvalidDefinition)
		}
		key, members := "all", d.All
		if d.Any != nil {
			key, members = "any", d.Any
		}
		children := make([]rules.Node, len(*members))
		for i, m := range *members {
			child, err := m.node(path+"."+key+"["+strconv.Itoa(i)+"]", depth+1, maxDepth)
			if err != nil {
				return rules.Node{}, err
			}
			children[i] = child
		}
		if d.Any != nil {
			return rules.Any(children...), nil
		}
		return rules.All(children...), nil
	}

	mode, err := rules.ParseCaseMode(d.Case)
	if err != nil {
		return rules.Node{}, fmt.Errorf("%s: %w", path, err)
	}

	var c rules.Condition
	switch {
	case d.StartsWith != nil:
		c = rules.StartsWith(*d.StartsWith, !d.Not, mode)
	case d.EndsWith != nil:
		c = rules.EndsWith(*d.EndsWith, !d.Not, mode)
	case d.Contains != nil:
		c = rules.Contains(*d.Contains, !d.Not, mode)
	default:
		c = rules.Whole(*d.Is, !d.Not, mode)
	}
	return rules.Leaf(c), nil
}

// FromNode returns the definition of n. The case key is omitted for
// case-sensitive conditions.
func FromNode(n rules.Node) Definition {
	if c, ok := n.Condition(); ok {
		d := Definition{Not: !c.Positive}
		if c.Mode != rules.CaseSensitive {
			d.Case = c.Mode.String()
		}
		pattern := c.Pattern
		switch c.Anchor {
		case rules.AnchorStartsWith:
			d.StartsWith = &pattern
		case rules.AnchorEndsWith:
			d.EndsWith = &pattern
		case rules.AnchorWhole:
			d.Is = &pattern
		default:
			d.Contains = &pattern
		}
		return d
	}

	children := n.Children()
	members := make([]Definition, len(children))
	for i, child := range children {
		members[i] = FromNode(child)
	}
	if n.Kind() == rules.KindAny {
		return Definition{Any: &members}
	}
	return Definition{All: &members}
}

// MarshalJSON encodes n as an indented JSON definition.
func MarshalJSON(n rules.Node) ([]byte, error) {
	return json.MarshalIndent(FromNode(n), "", "  ")
}
