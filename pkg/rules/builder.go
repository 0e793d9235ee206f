// pkg/rules/builder.go
package rules

/*
 * Fluent rule construction.
 *
 * A Builder accumulates the children of an implicit top-level All-group:
 *
 *	rules.Build().
 *		StartingWithCI("cat").
 *		NotContainingCI("video").
 *		Node()
 *
 * Method families:
 *   - {Not}{Anchor}{Mode}(pattern): append one Leaf
 *   - Or{Anchor}{Mode}(patterns...): append one Any-group of positive Leaves
 *   - And(sub): append sub as a single child, never merged
 *   - Or(sub):  append Any(sub) as a single child
 *
 * Anchors are StartingWith, EndingWith, Containing and Is; modes are CS,
 * CI and CIAlphanum. A Builder is owned by one goroutine; the Node it
 * produces is immutable and can be shared.
 */

// Builder accumulates rule children. The zero value is ready to use.
type Builder struct {
	children []Node
}

// Build starts an empty rule set.
func Build() *Builder { return &Builder{} }

// NewBuilder is an alias of Build.
func NewBuilder() *Builder { return &Builder{} }

// Rule appends a Leaf for the given condition parts.
func (b *Builder) Rule(anchor Anchor, pattern string, positive bool, mode CaseMode) *Builder {
	return b.Condition(Condition{Anchor: anchor, Pattern: pattern, Positive: positive, Mode: mode})
}

// Condition appends a Leaf for c.
func (b *Builder) Condition(c Condition) *Builder {
	b.children = append(b.children, Leaf(c))
	return b
}

// OrRule appends one Any-group holding a Leaf per pattern, all sharing
// anchor, mode and positivity.
func (b *Builder) OrRule(anchor Anchor, mode CaseMode, positive bool, patterns ...string) *Builder {
	leaves := make([]Node, len(patterns))
	for i, p := range patterns {
		leaves[i] = Leaf(Condition{Anchor: anchor, Pattern: p, Positive: positive, Mode: mode})
	}
	b.children = append(b.children, Node{kind: KindAny, children: leaves})
	return b
}

// And appends sub as one child. An All-subtree stays a nested group.
func (b *Builder) And(sub Node) *Builder {
	b.children = append(b.children, sub)
	return b
}

// AndBuilder appends the rule set accumulated by other as one All-group.
func (b *Builder) AndBuilder(other *Builder) *Builder {
	return b.And(other.Node())
}

// Or appends Any(sub) as one child. The parent remains an All-group.
func (b *Builder) Or(sub Node) *Builder {
	b.children = append(b.children, Any(sub))
	return b
}

// OrBuilder appends Any(other.Node()) as one child.
func (b *Builder) OrBuilder(other *Builder) *Builder {
	return b.Or(other.Node())
}

// Len returns the number of top-level children.
func (b *Builder) Len() int { return len(b.children) }

// Node returns the accumulated All-group. The builder may keep being used;
// later appends do not affect the returned tree.
func (b *Builder) Node() Node {
	return All(b.children...)
}

// Conditions returns the top-level children as a flat list. It fails with
// ErrNestedRules when any child is a group. An empty builder yields an
// empty, non-nil list.
func (b *Builder) Conditions() (Conditions, error) {
	out := make(Conditions, 0, len(b.children))
	for _, c := range b.children {
		if c.kind != KindLeaf {
			return nil, ErrNestedRules
		}
		out = append(out, c.cond)
	}
	return out, nil
}

func (b *Builder) StartingWithCS(p string) *Builder {
	return b.Rule(AnchorStartsWith, p, true, CaseSensitive)
}

func (b *Builder) StartingWithCI(p string) *Builder {
	return b.Rule(AnchorStartsWith, p, true, CaseInsensitive)
}

func (b *Builder) StartingWithCIAlphanum(p string) *Builder {
	return b.Rule(AnchorStartsWith, p, true, CaseInsensitiveAlphanum)
}

func (b *Builder) NotStartingWithCS(p string) *Builder {
	return b.Rule(AnchorStartsWith, p, false, CaseSensitive)
}

func (b *Builder) NotStartingWithCI(p string) *Builder {
	return b.Rule(AnchorStartsWith, p, false, CaseInsensitive)
}

func (b *Builder) NotStartingWithCIAlphanum(p string) *Builder {
	return b.Rule(AnchorStartsWith, p, false, CaseInsensitiveAlphanum)
}

func (b *Builder) EndingWithCS(p string) *Builder {
	return b.Rule(AnchorEndsWith, p, true, CaseSensitive)
}

func (b *Builder) EndingWithCI(p string) *Builder {
	return b.Rule(AnchorEndsWith, p, true, CaseInsensitive)
}

func (b *Builder) EndingWithCIAlphanum(p string) *Builder {
	return b.Rule(AnchorEndsWith, p, true, CaseInsensitiveAlphanum)
}

func (b *Builder) NotEndingWithCS(p string) *Builder {
	return b.Rule(AnchorEndsWith, p, false, CaseSensitive)
}

func (b *Builder) NotEndingWithCI(p string) *Builder {
	return b.Rule(AnchorEndsWith, p, false, CaseInsensitive)
}

func (b *Builder) NotEndingWithCIAlphanum(p string) *Builder {
	return b.Rule(AnchorEndsWith, p, false, CaseInsensitiveAlphanum)
}

func (b *Builder) ContainingCS(p string) *Builder {
	return b.Rule(AnchorContains, p, true, CaseSensitive)
}

func (b *Builder) ContainingCI(p string) *Builder {
	return b.Rule(AnchorContains, p, true, CaseInsensitive)
}

func (b *Builder) ContainingCIAlphanum(p string) *Builder {
	return b.Rule(AnchorContains, p, true, CaseInsensitiveAlphanum)
}

func (b *Builder) NotContainingCS(p string) *Builder {
	return b.Rule(AnchorContains, p, false, CaseSensitive)
}

func (b *Builder) NotContainingCI(p string) *Builder {
	return b.Rule(AnchorContains, p, false, CaseInsensitive)
}

func (b *Builder) NotContainingCIAlphanum(p string) *Builder {
	return b.Rule(AnchorContains, p, false, CaseInsensitiveAlphanum)
}

func (b *Builder) IsCS(p string) *Builder {
	return b.Rule(AnchorWhole, p, true, CaseSensitive)
}

func (b *Builder) IsCI(p string) *Builder {
	return b.Rule(AnchorWhole, p, true, CaseInsensitive)
}

func (b *Builder) IsCIAlphanum(p string) *Builder {
	return b.Rule(AnchorWhole, p, true, CaseInsensitiveAlphanum)
}

func (b *Builder) NotIsCS(p string) *Builder {
	return b.Rule(AnchorWhole, p, false, CaseSensitive)
}

func (b *Builder) NotIsCI(p string) *Builder {
	return b.Rule(AnchorWhole, p, false, CaseInsensitive)
}

func (b *Builder) NotIsCIAlphanum(p string) *Builder {
	return b.Rule(AnchorWhole, p, false, CaseInsensitiveAlphanum)
}

func (b *Builder) OrStartingWithCS(ps ...string) *Builder {
	return b.OrRule(AnchorStartsWith, CaseSensitive, true, ps...)
}

func (b *Builder) OrStartingWithCI(ps ...string) *Builder {
	return b.OrRule(AnchorStartsWith, CaseInsensitive, true, ps...)
}

func (b *Builder) OrStartingWithCIAlphanum(ps ...string) *Builder {
	return b.OrRule(AnchorStartsWith, CaseInsensitiveAlphanum, true, ps...)
}

func (b *Builder) OrEndingWithCS(ps ...string) *Builder {
	return b.OrRule(AnchorEndsWith, CaseSensitive, true, ps...)
}

func (b *Builder) OrEndingWithCI(ps ...string) *Builder {
	return b.OrRule(AnchorEndsWith, CaseInsensitive, true, ps...)
}

func (b *Builder) OrEndingWithCIAlphanum(ps ...string) *Builder {
	return b.OrRule(AnchorEndsWith, CaseInsensitiveAlphanum, true, ps...)
}

func (b *Builder) OrContainingCS(ps ...string) *Builder {
	return b.OrRule(AnchorContains, CaseSensitive, true, ps...)
}

func (b *Builder) OrContainingCI(ps ...string) *Builder {
	return b.OrRule(AnchorContains, CaseInsensitive, true, ps...)
}

func (b *Builder) OrContainingCIAlphanum(ps ...string) *Builder {
	return b.OrRule(AnchorContains, CaseInsensitiveAlphanum, true, ps...)
}

func (b *Builder) OrIsCS(ps ...string) *Builder {
	return b.OrRule(AnchorWhole, CaseSensitive, true, ps...)
}

func (b *Builder) OrIsCI(ps ...string) *Builder {
	return b.OrRule(AnchorWhole, CaseInsensitive, true, ps...)
}

func (b *Builder) OrIsCIAlphanum(ps ...string) *Builder {
	return b.OrRule(AnchorWhole, CaseInsensitiveAlphanum, true, ps...)
}
