// pkg/rules/compile.go
package rules

import "fmt"

/*
 * Rule compilation and validation.
 *
 * Compiles a RuleSet into a Compiled rule with validated resource limits and
 * accelerated Any-groups.
 *
 * Compilation workflow:
 *   1. Validate resource limits (tree depth, leaf count)
 *   2. Copy the tree, replacing eligible Any-groups with pattern sets
 *   3. Record shape statistics
 *
 * Eligible Any-group: at least MinSetPatterns children, all positive
 * leaves sharing one anchor and one case mode. Such a group is true iff
 * the normalized candidate hits any normalized pattern, which a single
 * automaton/trie/map lookup answers (prefilter.go).
 *
 * Child order is preserved everywhere. Groups that are not eligible keep
 * their left-to-right short-circuit evaluation, so compiled and
 * uncompiled trees give identical answers for every candidate.
 *
 * Compile-time validation moves limit errors to rule creation so that
 * stored rule sets cannot make evaluation unbounded.
 */

// Resource limits applied by Compile when options are left zero.
const (
	DefaultMaxDepth       = 32
	DefaultMaxConditions  = 4096
	DefaultMinSetPatterns = 4

	// accelerateDepth bounds the recursion of the acceleration pass.
	// Deeper subtrees are evaluated without pattern sets.
	accelerateDepth = 64
)

// CompileOptions bounds the rule trees Compile accepts.
type CompileOptions struct {
	MaxDepth       int
	MaxConditions  int
	MinSetPatterns int
}

// DefaultCompileOptions returns the default limits.
func DefaultCompileOptions() CompileOptions {
	return CompileOptions{
		MaxDepth:       DefaultMaxDepth,
		MaxConditions:  DefaultMaxConditions,
		MinSetPatterns: DefaultMinSetPatterns,
	}
}

func (o CompileOptions) withDefaults() CompileOptions {
	d := DefaultCompileOptions()
	if o.MaxDepth <= 0 {
		o.MaxDepth = d.MaxDepth
	}
	if o.MaxConditions <= 0 {
		o.MaxConditions = d.MaxConditions
	}
	if o.MinSetPatterns <= 0 {
		o.MinSetPatterns = d.MinSetPatterns
	}
	return o
}

// Stats describes a compiled tree.
type Stats struct {
	Conditions  int
	Groups      int
	Depth       int
	PatternSets int
}

// Compiled is a validated rule tree ready for repeated evaluation. It is
// immutable and safe for concurrent use.
type Compiled struct {
	root  Node
	stats Stats
}

// Compile validates rs against opts and builds its accelerated form.
func Compile(rs RuleSet, opts CompileOptions) (*Compiled, error) {
	opts = opts.withDefaults()
	root := rootOf(rs)

	depth, leaves, groups := root.shape()
	if depth > opts.MaxDepth {
		return nil, fmt.Errorf("%w: depth %d > %d", ErrRuleTooDeep, depth, opts.MaxDepth)
	}
	if leaves > opts.MaxConditions {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyConditions, leaves, opts.MaxConditions)
	}

	accelerated, _ := accelerate(root, opts.MinSetPatterns, 0)
	return &Compiled{
		root: accelerated,
		stats: Stats{
			Conditions:  leaves,
			Groups:      groups,
			Depth:       depth,
			PatternSets: countSets(&accelerated),
		},
	}, nil
}

// Match reports whether candidate satisfies the compiled rule.
func (c *Compiled) Match(candidate string) bool {
	var e evaluator
	return e.eval(&c.root, candidate)
}

// Node returns the compiled tree.
func (c *Compiled) Node() Node { return c.root }

func (c *Compiled) Stats() Stats { return c.stats }

func (c *Compiled) String() string { return c.root.String() }

func (c *Compiled) sequence() []Node { return c.root.sequence() }

// accelerate returns n with eligible Any-groups backed by pattern sets.
// n is never modified; changed reports whether a copy was made.
func accelerate(n Node, minSet, depth int) (out Node, changed bool) {
	if n.kind == KindLeaf || n.set != nil || depth >= accelerateDepth {
		return n, false
	}
	if n.kind == KindAny && len(n.children) >= minSet {
		if set := newPatternSet(n.children); set != nil {
			n.set = set
			return n, true
		}
	}

	var children []Node
	for i := range n.children {
		child, ok := accelerate(n.children[i], minSet, depth+1)
		if !ok {
			continue
		}
		if children == nil {
			children = cloneNodes(n.children)
		}
		children[i] = child
	}
	if children == nil {
		return n, false
	}
	n.children = children
	return n, true
}

func countSets(root *Node) int {
	count := 0
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.set != nil {
			count++
			continue
		}
		for i := range n.children {
			stack = append(stack, &n.children[i])
		}
	}
	return count
}
