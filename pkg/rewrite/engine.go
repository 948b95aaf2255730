// Package rewrite implements the Rewrite Engine (RE): it compiles a set of
// conditional rewrite rules into an Adaptive Pattern-Matching Automaton and
// evaluates terms to normal form with an explicit, non-recursive evaluation
// stack. See spec.md §4.3.
package rewrite

import (
	"github.com/mmgbartels/merc/pkg/symbol"
	"github.com/mmgbartels/merc/pkg/term"
)

// Stats counts the observability figures spec.md §6's Rewrite API asks
// for: recursions, rewrite steps, symbol comparisons.
type Stats struct {
	Recursions        int64
	RewriteSteps      int64
	SymbolComparisons int64
}

// Engine encapsulates a compiled APMA, ready to rewrite terms to normal
// form (spec.md §6's "Rewrite API": "Load a specification (rules[]);
// produce an Engine... engine.rewrite(term) -> term").
type Engine struct {
	automaton *automaton
	rules     []*compiledRule
}

// Compile builds an Engine from rules, pre-computing equivalence classes
// and the APMA per spec.md §4.3.1-§4.3.2. Returns ErrParse if a rule's rhs
// references a variable not bound by its lhs, ErrInvalidArgument if a
// condition does.
func Compile(rules []Rule) (*Engine, error) {
	compiled := make([]*compiledRule, len(rules))
	for i, r := range rules {
		c, err := compileRule(r, i)
		if err != nil {
			return nil, err
		}
		compiled[i] = c
	}
	return &Engine{automaton: buildAutomaton(compiled), rules: compiled}, nil
}

// Rewrite evaluates input to normal form under the engine's conditional
// term rewriting system, innermost strategy (spec.md §4.3.3). The caller
// owns the returned Handle.
func (e *Engine) Rewrite(p *term.Pool, w *term.Worker, input term.Handle, stats *Stats) (term.Handle, error) {
	return e.rewriteAux(p, w, input, stats)
}

// frameKind distinguishes the three evaluation-stack frame shapes of
// spec.md §4.3.3.
type frameKind int

const (
	frameRewrite frameKind = iota
	frameConstruct
	frameReturn
)

// frame is one entry of the explicit evaluation stack. Construction
// frames never carry a live handle (their arguments are already protected
// results sitting in the result slots); Rewrite frames own the handle of
// the term still to be reduced, released the moment its head/args have
// been read and its arguments individually re-protected.
type frame struct {
	kind  frameKind
	h     term.Handle
	sym   *symbol.Symbol
	arity int
	slot  int
}

// rewriteAux is spec.md §4.3.3's algorithm: push Return(), push the input
// term and a Rewrite(top) frame, then loop popping frames until Return is
// reached. No Go-level recursion occurs proportional to term size or
// depth; the only recursion in this package is the bounded, rule-count-
// proportional recursion of condition checking (matching the reference
// innermost_rewriter.rs, whose check_conditions also recurses into
// rewrite_aux for each condition side).
func (e *Engine) rewriteAux(p *term.Pool, w *term.Worker, input term.Handle, stats *Stats) (term.Handle, error) {
	stats.Recursions++

	results := make([]*term.Handle, 1)
	frames := []frame{{kind: frameReturn}, {kind: frameRewrite, h: input, slot: 0}}

	for len(frames) > 0 {
		n := len(frames) - 1
		f := frames[n]
		frames = frames[:n]

		switch f.kind {
		case frameRewrite:
			r := f.h.Ref()
			if r.IsInt() {
				results[f.slot] = &f.h
				continue
			}
			sym := r.Head()
			arity := r.Arity()
			argHandles := make([]term.Handle, arity)
			for i := 0; i < arity; i++ {
				argHandles[i] = w.Protect(r.Arg(i))
			}
			f.h.Release()

			base := len(results)
			for range argHandles {
				results = append(results, nil)
			}
			frames = append(frames, frame{kind: frameConstruct, sym: sym, arity: arity, slot: f.slot})
			for i := arity - 1; i >= 0; i-- {
				frames = append(frames, frame{kind: frameRewrite, h: argHandles[i], slot: base + i})
			}

		case frameConstruct:
			children := make([]term.Handle, f.arity)
			base := len(results) - f.arity
			refs := make([]term.Ref, f.arity)
			for i := 0; i < f.arity; i++ {
				children[i] = *results[base+i]
				refs[i] = children[i].Ref()
				results[base+i] = nil
			}
			results = results[:base]

			candidate, err := p.Create(w, f.sym, refs)
			for _, c := range children {
				c.Release()
			}
			if err != nil {
				return term.Handle{}, err
			}

			m, bindings, bindingErr := e.findMatch(p, w, stats, candidate.Ref())
			if bindingErr != nil {
				candidate.Release()
				return term.Handle{}, bindingErr
			}
			if m == nil {
				results[f.slot] = &candidate
				continue
			}

			stats.RewriteSteps++
			candidate.Release()
			rhs, err := buildTemplate(p, w, m.rule.rule.RHS, bindings)
			releaseBindings(bindings)
			if err != nil {
				return term.Handle{}, err
			}
			// The substituted rhs may itself contain redexes (e.g. a
			// freshly assembled succ(plus(x,y)) where plus(x,y) is now a
			// ground redex); push it back through Rewrite at the same
			// slot, implementing innermost re-normalization of the
			// rewritten result.
			frames = append(frames, frame{kind: frameRewrite, h: rhs, slot: f.slot})

		case frameReturn:
			return *results[0], nil
		}
	}
	panic("rewrite: evaluation stack emptied without reaching Return")
}

func releaseBindings(bindings map[string]term.Handle) {
	for _, h := range bindings {
		h.Release()
	}
}

// findMatch walks the APMA from state 0, following the transition keyed
// by the head symbol (or literal) at each state's position, exactly as
// spec.md §4.3.2 describes. It returns the first announcement (in
// insertion order within the winning transition) whose equivalence
// classes and conditions hold, plus the variable bindings extracted from
// t for that rule.
func (e *Engine) findMatch(p *term.Pool, w *term.Worker, stats *Stats, t term.Ref) (*matchAnnouncement, map[string]term.Handle, error) {
	state := 0
	for {
		pos := e.automaton.positions[state]
		sub, ok := navigate(t, pos)
		if !ok {
			return nil, nil, nil
		}
		stats.SymbolComparisons++
		var key matchKey
		if sub.IsInt() {
			key = matchKey{isInt: true, lit: sub.Int()}
		} else {
			key = matchKey{sym: sub.Head()}
		}

		tr, ok := e.automaton.transitions[transitionKey{state: state, key: key}]
		if !ok {
			return nil, nil, nil
		}

		for i := range tr.announcements {
			ann := &tr.announcements[i]
			if !checkEquivalenceClasses(t, ann.rule.equivs) {
				continue
			}
			bindings := extractBindings(p, w, t, ann.rule)
			ok, err := e.checkConditions(p, w, stats, ann.rule, bindings)
			if err != nil {
				releaseBindings(bindings)
				return nil, nil, err
			}
			if ok {
				return ann, bindings, nil
			}
			releaseBindings(bindings)
		}

		if tr.destination < 0 {
			return nil, nil, nil
		}
		state = tr.destination
	}
}

// navigate walks t along pos (a 1-indexed argument-index path, spec.md
// §4.3.1), returning (zero, false) if t is not shaped deeply enough.
func navigate(t term.Ref, pos []int) (term.Ref, bool) {
	cur := t
	for _, p := range pos {
		if cur.IsInt() || p-1 >= cur.Arity() {
			return term.Ref{}, false
		}
		cur = cur.Arg(p - 1)
	}
	return cur, true
}

// checkEquivalenceClasses verifies every non-linear variable's positions
// all denote the same subterm in t (spec.md's "equivalence class").
func checkEquivalenceClasses(t term.Ref, equivs []equivClass) bool {
	for _, ec := range equivs {
		first, ok := navigate(t, ec.positions[0])
		if !ok {
			return false
		}
		for _, pos := range ec.positions[1:] {
			other, ok := navigate(t, pos)
			if !ok || !first.Equal(other) {
				return false
			}
		}
	}
	return true
}

// extractBindings reads, for each variable bound by rule's lhs, the
// subterm at its first occurrence position in t, protecting each as an
// owned Handle for the rule's rhs/condition construction.
func extractBindings(p *term.Pool, w *term.Worker, t term.Ref, rule *compiledRule) map[string]term.Handle {
	bindings := make(map[string]term.Handle, len(rule.varPositions))
	for name, positions := range rule.varPositions {
		sub, ok := navigate(t, positions[0])
		if !ok {
			continue
		}
		bindings[name] = p.Protect(w, sub)
	}
	return bindings
}

// checkConditions evaluates each of rule's conditions left-to-right,
// short-circuiting on the first failure, per spec.md §4.3.3's ordering
// guarantee. Each side is rewritten to normal form under this same
// engine, then compared for pointer equality.
func (e *Engine) checkConditions(p *term.Pool, w *term.Worker, stats *Stats, rule *compiledRule, bindings map[string]term.Handle) (bool, error) {
	for _, c := range rule.rule.Conditions {
		lhs, err := buildTemplate(p, w, c.LHS, bindings)
		if err != nil {
			return false, err
		}
		rhs, err := buildTemplate(p, w, c.RHS, bindings)
		if err != nil {
			lhs.Release()
			return false, err
		}

		lhsNF, err := e.rewriteAux(p, w, lhs, stats)
		if err != nil {
			rhs.Release()
			return false, err
		}
		rhsNF, err := e.rewriteAux(p, w, rhs, stats)
		if err != nil {
			lhsNF.Release()
			return false, err
		}

		equal := lhsNF.Ref().Equal(rhsNF.Ref())
		lhsNF.Release()
		rhsNF.Release()

		if equal != c.Equality {
			return false, nil
		}
	}
	return true, nil
}
