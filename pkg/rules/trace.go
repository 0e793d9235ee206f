package rules

// Trace records how one node contributed to an evaluation. Children after
// the one that decided a group are listed with Evaluated=false.
type Trace struct {
	Node      Node
	Result    bool
	Evaluated bool
	Children  []Trace
}

// Explain evaluates rs against candidate and returns the full trace. The
// root Result always equals Evaluate(rs, candidate). The walk uses an
// explicit stack, so any tree Evaluate accepts can be explained.
func Explain(rs RuleSet, candidate string) Trace {
	var subj subject
	subj.reset(candidate)

	out := Trace{Node: rootOf(rs)}
	if !openTrace(&out, &subj) {
		return out
	}

	type frame struct {
		t    *Trace
		next int
	}
	stack := []frame{{t: &out}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		children := f.t.Node.children

		// The previous child is complete; stop once it decides the group.
		if f.next > 0 && f.t.Children[f.next-1].Result == (f.t.Node.kind == KindAny) {
			f.t.Result = !f.t.Result
			for i := f.next; i < len(children); i++ {
				f.t.Children[i] = Trace{Node: children[i]}
			}
			stack = stack[:len(stack)-1]
			continue
		}
		if f.next == len(children) {
			stack = stack[:len(stack)-1]
			continue
		}

		child := &f.t.Children[f.next]
		*child = Trace{Node: children[f.next]}
		f.next++
		if openTrace(child, &subj) {
			stack = append(stack, frame{t: child})
		}
	}
	return out
}

// openTrace marks t evaluated. A leaf gets its result at once and openTrace
// returns false; a group starts at its empty-group result with one slot per
// child and openTrace returns true.
func openTrace(t *Trace, subj *subject) bool {
	t.Evaluated = true
	if t.Node.kind == KindLeaf {
		t.Result = matchLeaf(&t.Node, subj)
		return false
	}
	t.Result = t.Node.kind == KindAll
	t.Children = make([]Trace, len(t.Node.children))
	return true
}
