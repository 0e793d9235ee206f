// pkg/rules/prefilter.go
package rules

import (
	"github.com/armon/go-radix"
	ac "github.com/petar-dambovaliev/aho-corasick"
)

/*
 * Pattern sets for homogeneous Any-groups.
 *
 * An Any-group of positive leaves with one anchor and one mode is true iff
 * some normalized pattern relates to the normalized candidate. One
 * structure answers that per anchor:
 *   - contains:    Aho-Corasick automaton, any match found
 *   - starts_with: radix tree, any key is a prefix of the candidate
 *   - ends_with:   radix tree over reversed keys and reversed candidate
 *   - is:          hash set
 *
 * Patterns are stored normalized and the automaton runs case-sensitively
 * over the normalized candidate, so Unicode folding semantics are exactly
 * those of the leaves.
 *
 * An empty normalized pattern is a prefix, suffix and substring of every
 * string, so such a set is always true (except for "is").
 */

type patternSet struct {
	anchor Anchor
	mode   CaseMode
	always bool

	automaton *ac.AhoCorasick
	tree      *radix.Tree
	whole     map[string]struct{}
}

// newPatternSet returns nil when children are not positive leaves sharing
// one anchor and one mode.
func newPatternSet(children []Node) *patternSet {
	if len(children) == 0 {
		return nil
	}
	first := children[0].cond
	patterns := make([]string, 0, len(children))
	for i := range children {
		c := &children[i]
		if c.kind != KindLeaf || !c.cond.Positive || c.cond.Anchor != first.Anchor || c.cond.Mode != first.Mode {
			return nil
		}
		patterns = append(patterns, c.norm)
	}

	s := &patternSet{anchor: first.Anchor, mode: first.Mode}
	if s.anchor == AnchorWhole {
		s.whole = make(map[string]struct{}, len(patterns))
		for _, p := range patterns {
			s.whole[p] = struct{}{}
		}
		return s
	}

	for _, p := range patterns {
		if p == "" {
			s.always = true
			return s
		}
	}

	switch s.anchor {
	case AnchorContains:
		builder := ac.NewAhoCorasickBuilder(ac.Opts{
			AsciiCaseInsensitive: false,
			MatchKind:            ac.LeftMostLongestMatch,
		})
		automaton := builder.Build(patterns)
		s.automaton = &automaton
	case AnchorStartsWith:
		s.tree = radix.New()
		for _, p := range patterns {
			s.tree.Insert(p, struct{}{})
		}
	case AnchorEndsWith:
		s.tree = radix.New()
		for _, p := range patterns {
			s.tree.Insert(reverseBytes(p), struct{}{})
		}
	}
	return s
}

func (s *patternSet) match(subj *subject) bool {
	if s.always {
		return true
	}
	text := subj.normalized(s.mode)
	switch s.anchor {
	case AnchorContains:
		return len(s.automaton.FindAll(text)) > 0
	case AnchorStartsWith:
		_, _, ok := s.tree.LongestPrefix(text)
		return ok
	case AnchorEndsWith:
		_, _, ok := s.tree.LongestPrefix(reverseBytes(text))
		return ok
	case AnchorWhole:
		_, ok := s.whole[text]
		return ok
	default:
		return false
	}
}

// reverseBytes reverses s byte-wise. The result is not valid UTF-8 but
// suffix tests on bytes only need the reversal to be consistent.
func reverseBytes(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		b[len(s)-1-i] = s[i]
	}
	return string(b)
}
