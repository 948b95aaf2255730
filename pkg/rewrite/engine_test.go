package rewrite

import (
	"testing"

	"github.com/mmgbartels/merc/pkg/symbol"
	"github.com/mmgbartels/merc/pkg/term"
)

func newTestEngine(t *testing.T) (*symbol.Pool, *term.Pool, *term.Worker) {
	t.Helper()
	sp := symbol.New()
	tp := term.New(sp, term.WithAutoGC(false), term.WithDebugGenerations(true))
	w := tp.NewWorker()
	t.Cleanup(w.Close)
	return sp, tp, w
}

// buildPeano constructs succ^n(zero) as a term.Handle.
func buildPeano(tp *term.Pool, w *term.Worker, succ, zero *symbol.Symbol, n int) term.Handle {
	h, err := tp.Create(w, zero, nil)
	if err != nil {
		panic(err)
	}
	for i := 0; i < n; i++ {
		next, err := tp.Create(w, succ, []term.Ref{h.Ref()})
		if err != nil {
			panic(err)
		}
		h.Release()
		h = next
	}
	return h
}

// TestRewriteNormalForm is spec.md §8 scenario 3.
func TestRewriteNormalForm(t *testing.T) {
	sp, tp, w := newTestEngine(t)

	zero := sp.Intern("zero", 0)
	succ := sp.Intern("succ", 1)
	plus := sp.Intern("plus", 2)

	rules := []Rule{
		{
			LHS: App{Symbol: plus, Args: []Pattern{App{Symbol: zero}, Var{Name: "x"}}},
			RHS: Var{Name: "x"},
		},
		{
			LHS: App{Symbol: plus, Args: []Pattern{App{Symbol: succ, Args: []Pattern{Var{Name: "x"}}}, Var{Name: "y"}}},
			RHS: App{Symbol: succ, Args: []Pattern{App{Symbol: plus, Args: []Pattern{Var{Name: "x"}, Var{Name: "y"}}}}},
		},
	}

	eng, err := Compile(rules)
	if err != nil {
		t.Fatal(err)
	}

	two := buildPeano(tp, w, succ, zero, 2)
	one := buildPeano(tp, w, succ, zero, 1)
	input, err := tp.Create(w, plus, []term.Ref{two.Ref(), one.Ref()})
	two.Release()
	one.Release()
	if err != nil {
		t.Fatal(err)
	}

	var stats Stats
	result, err := eng.Rewrite(tp, w, input, &stats)
	if err != nil {
		t.Fatal(err)
	}
	defer result.Release()

	expected := buildPeano(tp, w, succ, zero, 3)
	defer expected.Release()

	if !result.Ref().Equal(expected.Ref()) {
		t.Fatalf("plus(2,1): got %s, want %s", result.Ref(), expected.Ref())
	}
	if stats.RewriteSteps == 0 {
		t.Fatal("expected at least one rewrite step to be recorded")
	}
}

// TestConditionalRule is spec.md §8 scenario 4: max(x,y) -> x if geq(x,y).
func TestConditionalRule(t *testing.T) {
	sp, tp, w := newTestEngine(t)

	zero := sp.Intern("zero", 0)
	succ := sp.Intern("succ", 1)
	geq := sp.Intern("geq", 2)
	max := sp.Intern("max", 2)
	tru := sp.Intern("true", 0)
	fls := sp.Intern("false", 0)

	rules := []Rule{
		// geq(x, zero) -> true
		{LHS: App{Symbol: geq, Args: []Pattern{Var{Name: "x"}, App{Symbol: zero}}}, RHS: App{Symbol: tru}},
		// geq(zero, succ(y)) -> false
		{LHS: App{Symbol: geq, Args: []Pattern{App{Symbol: zero}, App{Symbol: succ, Args: []Pattern{Var{Name: "y"}}}}}, RHS: App{Symbol: fls}},
		// geq(succ(x), succ(y)) -> geq(x, y)
		{
			LHS: App{Symbol: geq, Args: []Pattern{App{Symbol: succ, Args: []Pattern{Var{Name: "x"}}}, App{Symbol: succ, Args: []Pattern{Var{Name: "y"}}}}},
			RHS: App{Symbol: geq, Args: []Pattern{Var{Name: "x"}, Var{Name: "y"}}},
		},
		// max(x, y) -> x if geq(x, y) = true
		{
			LHS: App{Symbol: max, Args: []Pattern{Var{Name: "x"}, Var{Name: "y"}}},
			RHS: Var{Name: "x"},
			Conditions: []Condition{
				{LHS: App{Symbol: geq, Args: []Pattern{Var{Name: "x"}, Var{Name: "y"}}}, RHS: App{Symbol: tru}, Equality: true},
			},
		},
		// max(x, y) -> y if geq(x, y) = false
		{
			LHS: App{Symbol: max, Args: []Pattern{Var{Name: "x"}, Var{Name: "y"}}},
			RHS: Var{Name: "y"},
			Conditions: []Condition{
				{LHS: App{Symbol: geq, Args: []Pattern{Var{Name: "x"}, Var{Name: "y"}}}, RHS: App{Symbol: tru}, Equality: false},
			},
		},
	}

	eng, err := Compile(rules)
	if err != nil {
		t.Fatal(err)
	}

	three := buildPeano(tp, w, succ, zero, 3)
	five := buildPeano(tp, w, succ, zero, 5)

	maxTerm, err := tp.Create(w, max, []term.Ref{three.Ref(), five.Ref()})
	if err != nil {
		t.Fatal(err)
	}
	var stats Stats
	result, err := eng.Rewrite(tp, w, maxTerm, &stats)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Ref().Equal(five.Ref()) {
		t.Fatalf("max(3,5): got %s, want 5", result.Ref())
	}
	result.Release()

	maxTerm2, err := tp.Create(w, max, []term.Ref{five.Ref(), three.Ref()})
	if err != nil {
		t.Fatal(err)
	}
	result2, err := eng.Rewrite(tp, w, maxTerm2, &stats)
	if err != nil {
		t.Fatal(err)
	}
	if !result2.Ref().Equal(five.Ref()) {
		t.Fatalf("max(5,3): got %s, want 5", result2.Ref())
	}
	result2.Release()

	three.Release()
	five.Release()
}

func TestNormalFormIsIdempotent(t *testing.T) {
	sp, tp, w := newTestEngine(t)
	zero := sp.Intern("zero", 0)
	succ := sp.Intern("succ", 1)
	plus := sp.Intern("plus", 2)
	rules := []Rule{
		{LHS: App{Symbol: plus, Args: []Pattern{App{Symbol: zero}, Var{Name: "x"}}}, RHS: Var{Name: "x"}},
		{
			LHS: App{Symbol: plus, Args: []Pattern{App{Symbol: succ, Args: []Pattern{Var{Name: "x"}}}, Var{Name: "y"}}},
			RHS: App{Symbol: succ, Args: []Pattern{App{Symbol: plus, Args: []Pattern{Var{Name: "x"}, Var{Name: "y"}}}}},
		},
	}
	eng, err := Compile(rules)
	if err != nil {
		t.Fatal(err)
	}
	two := buildPeano(tp, w, succ, zero, 2)
	defer two.Release()

	var stats Stats
	nf, err := eng.Rewrite(tp, w, two.Clone(), &stats)
	if err != nil {
		t.Fatal(err)
	}
	nf2, err := eng.Rewrite(tp, w, nf.Clone(), &stats)
	if err != nil {
		t.Fatal(err)
	}
	if !nf.Ref().Equal(nf2.Ref()) {
		t.Fatal("rewrite(rewrite(t)) != rewrite(t)")
	}
	nf.Release()
	nf2.Release()
}

func TestCompileRejectsUnboundRHSVariable(t *testing.T) {
	sp, _, _ := newTestEngine(t)
	f := sp.Intern("f", 1)
	_, err := Compile([]Rule{{LHS: App{Symbol: f, Args: []Pattern{Var{Name: "x"}}}, RHS: Var{Name: "y"}}})
	if err == nil {
		t.Fatal("expected an error for an rhs variable not bound by lhs")
	}
}
