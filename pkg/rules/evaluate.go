// pkg/rules/evaluate.go
package rules

/*
 * Rule evaluation.
 *
 * Walks a Node tree against one candidate with an explicit stack, so tree
 * depth is bounded by memory rather than by the goroutine stack.
 *
 * Evaluation flow:
 *   1. Leaf: normalize candidate for the leaf's mode (cached), compare
 *      against the pre-normalized pattern, apply positivity
 *   2. All: children in order, stop at the first false
 *   3. Any: children in order, stop at the first true
 *   4. A group that runs out of children yields its identity: true for
 *      All, false for Any
 *   5. Compiled Any-groups with a pattern set answer in one lookup
 *
 * Child order is never changed, so short-circuiting is deterministic and
 * the first deciding child is always the leftmost one.
 *
 * Normalization cache: each candidate is normalized at most once per
 * CaseMode per evaluation, however many leaves share the mode.
 */

// subject is a candidate with its normalized forms computed on demand.
type subject struct {
	raw  string
	norm [caseModeCount]string
	have uint8
}

func (s *subject) reset(raw string) {
	s.raw = raw
	s.have = 0
}

func (s *subject) normalized(m CaseMode) string {
	if m == CaseSensitive || int(m) >= caseModeCount {
		return s.raw
	}
	bit := uint8(1) << m
	if s.have&bit == 0 {
		s.norm[m] = m.Normalize(s.raw)
		s.have |= bit
	}
	return s.norm[m]
}

func matchLeaf(n *Node, s *subject) bool {
	return compare(n.cond.Anchor, s.normalized(n.cond.Mode), n.norm) == n.cond.Positive
}

type evalFrame struct {
	node *Node
	next int
}

// evaluator reuses its stack across candidates. Not safe for concurrent use.
type evaluator struct {
	stack []evalFrame
	subj  subject
}

func (e *evaluator) eval(root *Node, candidate string) bool {
	e.subj.reset(candidate)
	return e.evalSubject(root)
}

// evalSubject evaluates root against the current subject, keeping any
// normalized forms already cached.
func (e *evaluator) evalSubject(root *Node) bool {
	e.stack = append(e.stack[:0], evalFrame{node: root})

	var result bool
	for len(e.stack) > 0 {
		top := &e.stack[len(e.stack)-1]
		n := top.node

		switch {
		case n.kind == KindLeaf:
			result = matchLeaf(n, &e.subj)
			e.stack = e.stack[:len(e.stack)-1]
			continue
		case n.set != nil:
			result = n.set.match(&e.subj)
			e.stack = e.stack[:len(e.stack)-1]
			continue
		}

		// A child has just been evaluated; stop early if it decides the group.
		if top.next > 0 && result == (n.kind == KindAny) {
			e.stack = e.stack[:len(e.stack)-1]
			continue
		}
		if top.next == len(n.children) {
			result = n.kind == KindAll
			e.stack = e.stack[:len(e.stack)-1]
			continue
		}

		child := &n.children[top.next]
		top.next++
		e.stack = append(e.stack, evalFrame{node: child})
	}
	return result
}

// Match evaluates the tree against candidate.
func (n Node) Match(candidate string) bool {
	var e evaluator
	return e.eval(&n, candidate)
}

// Evaluate reports whether candidate satisfies rs, reading a plain list of
// conditions as an All-group.
func Evaluate(rs RuleSet, candidate string) bool {
	root := rootOf(rs)
	var e evaluator
	return e.eval(&root, candidate)
}

// MatchEach evaluates every top-level item of rs separately and returns the
// results in order.
func MatchEach(rs RuleSet, candidate string) []bool {
	seq := rs.sequence()
	out := make([]bool, len(seq))
	var e evaluator
	e.subj.reset(candidate)
	for i := range seq {
		out[i] = e.evalSubject(&seq[i])
	}
	return out
}

// MatchAll reports whether every top-level item of rs matches. An empty
// rule set matches.
func MatchAll(rs RuleSet, candidate string) bool {
	root := groupOf(KindAll, rs)
	var e evaluator
	return e.eval(&root, candidate)
}

// MatchAny reports whether some top-level item of rs matches. An empty
// rule set does not match.
func MatchAny(rs RuleSet, candidate string) bool {
	root := groupOf(KindAny, rs)
	var e evaluator
	return e.eval(&root, candidate)
}

// ContainsAll reports whether candidate contains every pattern under mode.
func ContainsAll(candidate string, mode CaseMode, patterns ...string) bool {
	return containsEach(candidate, mode, patterns, true)
}

// ContainsAny reports whether candidate contains at least one pattern under
// mode.
func ContainsAny(candidate string, mode CaseMode, patterns ...string) bool {
	return containsEach(candidate, mode, patterns, false)
}

func containsEach(candidate string, mode CaseMode, patterns []string, all bool) bool {
	norm := mode.Normalize(candidate)
	for _, p := range patterns {
		if compare(AnchorContains, norm, mode.Normalize(p)) != all {
			return !all
		}
	}
	return all
}
