package rewrite

import (
	"testing"

	"github.com/mmgbartels/merc/pkg/term"
)

// TestNaiveMatchesEngine cross-validates the optimized APMA-driven engine
// against the naive recursive reference rewriter on small peano-arithmetic
// inputs, per spec.md §4.3.4.
func TestNaiveMatchesEngine(t *testing.T) {
	sp, tp, w := newTestEngine(t)
	zero := sp.Intern("zero", 0)
	succ := sp.Intern("succ", 1)
	plus := sp.Intern("plus", 2)
	times := sp.Intern("times", 2)

	rules := []Rule{
		{LHS: App{Symbol: plus, Args: []Pattern{App{Symbol: zero}, Var{Name: "x"}}}, RHS: Var{Name: "x"}},
		{
			LHS: App{Symbol: plus, Args: []Pattern{App{Symbol: succ, Args: []Pattern{Var{Name: "x"}}}, Var{Name: "y"}}},
			RHS: App{Symbol: succ, Args: []Pattern{App{Symbol: plus, Args: []Pattern{Var{Name: "x"}, Var{Name: "y"}}}}},
		},
		{LHS: App{Symbol: times, Args: []Pattern{App{Symbol: zero}, Var{Name: "x"}}}, RHS: App{Symbol: zero}},
		{
			LHS: App{Symbol: times, Args: []Pattern{App{Symbol: succ, Args: []Pattern{Var{Name: "x"}}}, Var{Name: "y"}}},
			RHS: App{Symbol: plus, Args: []Pattern{Var{Name: "y"}, App{Symbol: times, Args: []Pattern{Var{Name: "x"}, Var{Name: "y"}}}}},
		},
	}

	eng, err := Compile(rules)
	if err != nil {
		t.Fatal(err)
	}
	compiled := make([]*compiledRule, len(rules))
	for i, r := range rules {
		c, err := compileRule(r, i)
		if err != nil {
			t.Fatal(err)
		}
		compiled[i] = c
	}

	for a := 0; a <= 3; a++ {
		for b := 0; b <= 3; b++ {
			ha := buildPeano(tp, w, succ, zero, a)
			hb := buildPeano(tp, w, succ, zero, b)
			inputFast, err := tp.Create(w, times, []term.Ref{ha.Ref(), hb.Ref()})
			ha.Release()
			hb.Release()
			if err != nil {
				t.Fatal(err)
			}
			inputSlow := inputFast.Clone()

			var stats Stats
			fast, err := eng.Rewrite(tp, w, inputFast, &stats)
			if err != nil {
				t.Fatalf("a=%d b=%d: engine: %v", a, b, err)
			}
			slow, err := naiveRewrite(tp, w, compiled, inputSlow)
			if err != nil {
				t.Fatalf("a=%d b=%d: naive: %v", a, b, err)
			}

			if !fast.Ref().Equal(slow.Ref()) {
				t.Fatalf("a=%d b=%d: engine gave %s, naive gave %s", a, b, fast.Ref(), slow.Ref())
			}
			fast.Release()
			slow.Release()
		}
	}
}
