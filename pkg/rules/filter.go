// pkg/rules/filter.go
package rules

/*
 * Batch filtering.
 *
 * FilterAll/FilterAny accept any RuleSet:
 *   - Node:       a tree; an All-node's children form the top-level sequence
 *   - Conditions: a plain list of conditions, one Leaf each
 *   - *Builder:   the builder's accumulated children
 *   - *Compiled:  a validated, accelerated tree
 *
 * FilterAll keeps candidates matching All(sequence); FilterAny keeps those
 * matching Any(sequence). For a plain list this is exactly the explicit
 * All/Any wrapping of its leaves.
 *
 * Output preserves input order and element type and holds the original
 * values. Nothing is sorted or deduplicated.
 *
 * Uncompiled rule sets are accelerated once per call (see compile.go)
 * without limit checks, so filtering never fails.
 */

// RuleSet is implemented by Node, Conditions, *Builder and *Compiled.
type RuleSet interface {
	sequence() []Node
}

// Conditions is a flat list of conditions usable as a RuleSet.
type Conditions []Condition

func (cs Conditions) sequence() []Node { return Leaves(cs...) }

func (n Node) sequence() []Node {
	if n.kind == KindAll {
		return n.children
	}
	return []Node{n}
}

func (b *Builder) sequence() []Node { return b.children }

// rootOf returns the tree Evaluate walks for rs.
func rootOf(rs RuleSet) Node {
	switch v := rs.(type) {
	case Node:
		return v
	case *Compiled:
		return v.root
	default:
		return Node{kind: KindAll, children: rs.sequence()}
	}
}

// groupOf wraps the top-level sequence of rs in a group of the given kind.
// The sequence is shared, not copied; callers must not modify it.
func groupOf(kind Kind, rs RuleSet) Node {
	if n, ok := rs.(Node); ok && n.kind == kind {
		return n
	}
	return Node{kind: kind, children: rs.sequence()}
}

// FilterAll returns the candidates that satisfy every top-level item of rs.
func FilterAll[S ~string](candidates []S, rs RuleSet) []S {
	return filter(candidates, rs, KindAll)
}

// FilterAny returns the candidates that satisfy at least one top-level item
// of rs.
func FilterAny[S ~string](candidates []S, rs RuleSet) []S {
	return filter(candidates, rs, KindAny)
}

// Filter dispatches to FilterAny for KindAny and to FilterAll otherwise.
func Filter[S ~string](candidates []S, rs RuleSet, kind Kind) []S {
	if kind != KindAny {
		kind = KindAll
	}
	return filter(candidates, rs, kind)
}

func filter[S ~string](candidates []S, rs RuleSet, kind Kind) []S {
	root := groupOf(kind, rs)
	if _, compiled := rs.(*Compiled); !compiled {
		root, _ = accelerate(root, DefaultMinSetPatterns, 0)
	}

	out := make([]S, 0)
	var e evaluator
	for _, c := range candidates {
		if e.eval(&root, string(c)) {
			out = append(out, c)
		}
	}
	return out
}
