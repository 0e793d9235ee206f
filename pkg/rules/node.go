// pkg/rules/node.go
package rules

import (
	"fmt"
	"strings"
)

/*
 * Rule trees.
 *
 * A Node is one of three kinds:
 *   - Leaf: a single Condition
 *   - All:  true when every child is true (empty All is true)
 *   - Any:  true when some child is true (empty Any is false)
 *
 * Nodes are immutable values. Constructors copy the child slice they are
 * given and Children() returns a copy, so no two trees share storage and a
 * tree cannot contain itself. The zero Node is an empty All-group.
 *
 * Leaves carry their pattern pre-normalized for the leaf's CaseMode so the
 * evaluator only normalizes candidates.
 */

// Kind distinguishes the three node variants.
type Kind uint8

const (
	KindAll Kind = iota
	KindAny
	KindLeaf
)

func (k Kind) String() string {
	switch k {
	case KindAll:
		return "all"
	case KindAny:
		return "any"
	case KindLeaf:
		return "leaf"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Node is a rule tree.
type Node struct {
	kind     Kind
	cond     Condition
	norm     string
	children []Node

	// set replaces children evaluation in compiled trees.
	set *patternSet
}

// Leaf wraps a single condition.
func Leaf(c Condition) Node {
	return Node{kind: KindLeaf, cond: c, norm: c.Mode.Normalize(c.Pattern)}
}

// All returns a group that is true when every child is true.
func All(children ...Node) Node {
	return Node{kind: KindAll, children: cloneNodes(children)}
}

// Any returns a group that is true when at least one child is true.
func Any(children ...Node) Node {
	return Node{kind: KindAny, children: cloneNodes(children)}
}

// Leaves wraps each condition in a Leaf.
func Leaves(conds ...Condition) []Node {
	out := make([]Node, len(conds))
	for i, c := range conds {
		out[i] = Leaf(c)
	}
	return out
}

func cloneNodes(nodes []Node) []Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return out
}

func (n Node) Kind() Kind { return n.kind }

// IsLeaf reports whether n is a Leaf.
func (n Node) IsLeaf() bool { return n.kind == KindLeaf }

// Condition returns the leaf condition. ok is false for groups.
func (n Node) Condition() (c Condition, ok bool) {
	if n.kind != KindLeaf {
		return Condition{}, false
	}
	return n.cond, true
}

// Children returns a copy of the group's children, nil for leaves.
func (n Node) Children() []Node {
	return cloneNodes(n.children)
}

// Len returns the number of direct children.
func (n Node) Len() int { return len(n.children) }

// Depth returns the number of nodes on the longest root-to-leaf path. A
// leaf and an empty group both have depth 1.
func (n Node) Depth() int {
	d, _, _ := n.shape()
	return d
}

// Size returns the number of leaves in the tree.
func (n Node) Size() int {
	_, leaves, _ := n.shape()
	return leaves
}

// shape walks the tree once without recursion and returns depth, leaf
// count and group count.
func (n Node) shape() (depth, leaves, groups int) {
	type frame struct {
		node  *Node
		level int
	}
	stack := []frame{{&n, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		depth = max(depth, f.level)
		if f.node.kind == KindLeaf {
			leaves++
			continue
		}
		groups++
		for i := range f.node.children {
			stack = append(stack, frame{&f.node.children[i], f.level + 1})
		}
	}
	return depth, leaves, groups
}

// Equal reports whether n and other describe the same tree. Like shape it
// walks without recursion, so tree depth is not limited by the stack.
func (n Node) Equal(other Node) bool {
	type pair struct{ a, b *Node }
	stack := []pair{{&n, &other}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.a.kind != p.b.kind || len(p.a.children) != len(p.b.children) {
			return false
		}
		if p.a.kind == KindLeaf {
			if p.a.cond != p.b.cond {
				return false
			}
			continue
		}
		for i := range p.a.children {
			stack = append(stack, pair{&p.a.children[i], &p.b.children[i]})
		}
	}
	return true
}

// String renders the tree, e.g. all(starts_with_ci("cat"), not contains_ci("video")).
func (n Node) String() string {
	var b strings.Builder
	n.writeTo(&b)
	return b.String()
}

func (n Node) writeTo(b *strings.Builder) {
	if n.kind == KindLeaf {
		b.WriteString(n.cond.String())
		return
	}
	b.WriteString(n.kind.String())
	b.WriteByte('(')
	for i := range n.children {
		if i > 0 {
			b.WriteString(", ")
		}
		n.children[i].writeTo(b)
	}
	b.WriteByte(')')
}
