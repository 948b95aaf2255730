package rewrite

import "github.com/mmgbartels/merc/pkg/term"

// naiveRewrite is a reference implementation used only to cross-validate
// the optimized APMA-driven engine on small inputs (spec.md §4.3.4): it
// uses ordinary Go recursion and no automaton, trying every rule in
// insertion order against every subterm, bottom-up, until no rule fires.
func naiveRewrite(p *term.Pool, w *term.Worker, rules []*compiledRule, input term.Handle) (term.Handle, error) {
	r := input.Ref()
	if r.IsInt() {
		return input, nil
	}

	arity := r.Arity()
	args := make([]term.Handle, arity)
	refs := make([]term.Ref, arity)
	for i := 0; i < arity; i++ {
		h, err := naiveRewrite(p, w, rules, p.Protect(w, r.Arg(i)))
		if err != nil {
			return term.Handle{}, err
		}
		args[i] = h
		refs[i] = h.Ref()
	}
	sym := r.Head()
	input.Release()

	candidate, err := p.Create(w, sym, refs)
	for _, a := range args {
		a.Release()
	}
	if err != nil {
		return term.Handle{}, err
	}

	for _, rule := range rules {
		bindings, ok := naiveMatch(p, w, rule.rule.LHS, candidate.Ref())
		if !ok {
			continue
		}
		if !naiveCheckConditions(p, w, rules, rule, bindings) {
			releaseBindings(bindings)
			continue
		}
		rhs, err := buildTemplate(p, w, rule.rule.RHS, bindings)
		releaseBindings(bindings)
		candidate.Release()
		if err != nil {
			return term.Handle{}, err
		}
		return naiveRewrite(p, w, rules, rhs)
	}

	return candidate, nil
}

// naiveMatch attempts to match pat against t by ordinary recursive
// structural comparison, recording variable bindings (the first binding
// for a repeated variable wins; later occurrences are checked for
// equality against it).
func naiveMatch(p *term.Pool, w *term.Worker, pat Pattern, t term.Ref) (map[string]term.Handle, bool) {
	bindings := make(map[string]term.Handle)
	if !naiveMatchInto(p, w, pat, t, bindings) {
		releaseBindings(bindings)
		return nil, false
	}
	return bindings, true
}

func naiveMatchInto(p *term.Pool, w *term.Worker, pat Pattern, t term.Ref, bindings map[string]term.Handle) bool {
	switch n := pat.(type) {
	case Var:
		if existing, ok := bindings[n.Name]; ok {
			return existing.Ref().Equal(t)
		}
		bindings[n.Name] = p.Protect(w, t)
		return true
	case Int:
		return t.IsInt() && t.Int() == n.Value
	case Lit:
		return t.Equal(n.Handle.Ref())
	case App:
		if t.IsInt() || t.Head() != n.Symbol || t.Arity() != len(n.Args) {
			return false
		}
		for i, arg := range n.Args {
			if !naiveMatchInto(p, w, arg, t.Arg(i), bindings) {
				return false
			}
		}
		return true
	}
	return false
}

func naiveCheckConditions(p *term.Pool, w *term.Worker, rules []*compiledRule, rule *compiledRule, bindings map[string]term.Handle) bool {
	for _, c := range rule.rule.Conditions {
		lhs, err := buildTemplate(p, w, c.LHS, bindings)
		if err != nil {
			return false
		}
		rhs, err := buildTemplate(p, w, c.RHS, bindings)
		if err != nil {
			lhs.Release()
			return false
		}
		lhsNF, err := naiveRewrite(p, w, rules, lhs)
		if err != nil {
			rhs.Release()
			return false
		}
		rhsNF, err := naiveRewrite(p, w, rules, rhs)
		if err != nil {
			lhsNF.Release()
			return false
		}
		equal := lhsNF.Ref().Equal(rhsNF.Ref())
		lhsNF.Release()
		rhsNF.Release()
		if equal != c.Equality {
			return false
		}
	}
	return true
}
