package rewrite

import (
	"github.com/mmgbartels/merc/pkg/term"
)

// buildTemplate materializes pat under bindings into a ground term.Handle.
// It reuses term.Evaluate — the same explicit-stack builder the term pool
// exposes for the no-host-recursion construction contract of spec.md
// §4.2.6 — treating a Pattern node as Evaluate's inductive input. This is
// precisely spec.md §4.3.1's "term-stack template for rhs": a sequence of
// Construct/Term instructions plus variable-position bindings, expressed
// here as Evaluate's Transformer/Constructor pair instead of a bespoke
// instruction array, so the rewrite engine's RHS construction gets the
// same overflow-proof guarantee the term builder already provides.
func buildTemplate(p *term.Pool, w *term.Worker, pat Pattern, bindings map[string]term.Handle) (term.Handle, error) {
	transform := func(_ *term.Pool, _ *term.Worker, input Pattern) term.Yield[Pattern] {
		switch n := input.(type) {
		case Var:
			h := bindings[n.Name]
			return term.Done[Pattern](h.Clone())
		case Int:
			// Signalled to the constructor via a nil Args zero-arity
			// App-shaped key; handled directly in the constructor below.
			return term.Construct[Pattern](n)
		case App:
			children := make([]Pattern, len(n.Args))
			copy(children, n.Args)
			return term.Construct[Pattern](n, children...)
		case Lit:
			return term.Done[Pattern](n.Handle.Clone())
		}
		panic("rewrite: unreachable pattern kind")
	}

	construct := func(p *term.Pool, w *term.Worker, key any, children []term.Handle) (term.Handle, error) {
		switch n := key.(type) {
		case Int:
			return p.CreateInt(w, n.Value), nil
		case App:
			args := make([]term.Ref, len(children))
			for i, c := range children {
				args[i] = c.Ref()
			}
			h, err := p.Create(w, n.Symbol, args)
			for _, c := range children {
				c.Release()
			}
			return h, err
		}
		panic("rewrite: unreachable construction key")
	}

	return term.Evaluate(p, w, pat, transform, construct)
}
