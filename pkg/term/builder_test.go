package term

import "testing"

// natInput builds a unary-encoded successor chain: depth applications of
// succ/1 around zero/0. A host-recursive builder at a few hundred thousand
// would blow the Go call stack; Evaluate must not.
type natInput int

func TestEvaluateBuildsDeepChainWithoutRecursion(t *testing.T) {
	sp, tp := newTestPool(t)
	w := tp.NewWorker()
	defer w.Close()

	zero := sp.Intern("zero", 0)
	succ := sp.Intern("succ", 1)

	const depth = 200_000

	transform := func(p *Pool, w *Worker, input natInput) Yield[natInput] {
		if input == 0 {
			h, err := p.Create(w, zero, nil)
			if err != nil {
				panic(err)
			}
			return Done[natInput](h)
		}
		return Construct[natInput]("succ", input-1)
	}
	construct := func(p *Pool, w *Worker, key any, children []Handle) (Handle, error) {
		h, err := p.Create(w, succ, []Ref{children[0].Ref()})
		for _, c := range children {
			c.Release()
		}
		return h, err
	}

	h, err := Evaluate(tp, w, natInput(depth), transform, construct)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	// Count the succ chain by walking arguments, again without recursion.
	count := 0
	cur := h.Ref()
	for cur.Arity() == 1 {
		count++
		cur = cur.Arg(0)
	}
	if count != depth {
		t.Fatalf("expected chain depth %d, got %d", depth, count)
	}
}

func TestEvaluateSharesEqualSubterms(t *testing.T) {
	sp, tp := newTestPool(t)
	w := tp.NewWorker()
	defer w.Close()

	a := sp.Intern("a", 0)
	f := sp.Intern("f", 2)

	transform := func(p *Pool, w *Worker, input int) Yield[int] {
		if input == 0 {
			h, err := p.Create(w, a, nil)
			if err != nil {
				panic(err)
			}
			return Done[int](h)
		}
		return Construct[int]("pair", 0, 0)
	}
	construct := func(p *Pool, w *Worker, key any, children []Handle) (Handle, error) {
		h, err := p.Create(w, f, []Ref{children[0].Ref(), children[1].Ref()})
		children[0].Release()
		children[1].Release()
		return h, err
	}

	h, err := Evaluate(tp, w, 1, transform, construct)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	if got, want := h.String(), "f(a,a)"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
