package symbol

import (
	"sync"
	"testing"
)

func TestInternSharesIdenticalSymbols(t *testing.T) {
	p := New()

	t.Run("same name and arity share one pointer", func(t *testing.T) {
		a := p.Intern("f", 2)
		b := p.Intern("f", 2)
		if a != b {
			t.Fatalf("expected Intern to return the same pointer, got %p and %p", a, b)
		}
	})

	t.Run("different arity is a different symbol", func(t *testing.T) {
		f2 := p.Intern("f", 2)
		f1 := p.Intern("f", 1)
		if f2 == f1 {
			t.Fatal("f/1 and f/2 must not share a symbol")
		}
	})

	t.Run("stats reflect distinct interned symbols", func(t *testing.T) {
		p2 := New()
		p2.Intern("a", 0)
		p2.Intern("a", 0)
		p2.Intern("b", 0)
		stats := p2.Stats()
		if stats.Live != 2 || stats.Total != 2 {
			t.Fatalf("expected 2 live/total, got %+v", stats)
		}
	})
}

func TestInternConcurrent(t *testing.T) {
	p := New()
	const n = 200
	var wg sync.WaitGroup
	results := make([]*Symbol, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.Intern("shared", 3)
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Fatalf("concurrent Intern produced divergent pointers at %d", i)
		}
	}
}

func TestRegisterPrefixAdvancesOnCollision(t *testing.T) {
	p := New()
	c := p.RegisterPrefix("v")

	if n := c.Next(); n != 0 {
		t.Fatalf("expected fresh counter to start at 0, got %d", n)
	}

	p.Intern("v5", 0)
	if n := c.Next(); n != 6 {
		t.Fatalf("expected counter to advance past v5, got %d", n)
	}

	p.Intern("v3", 0) // lower than the current counter: must not move it backwards
	if n := c.Next(); n != 7 {
		t.Fatalf("expected counter unaffected by lower suffix, got %d", n)
	}
}

func TestRetainZeroPredicate(t *testing.T) {
	p := New()
	s := p.Intern("a", 0)
	s.Retain()
	s.Retain()
	s.Release()

	p.Retain(func(s *Symbol) bool { return s.RefCount() > 0 })
	if p.Stats().Live != 1 {
		t.Fatal("symbol with positive refcount must survive Retain")
	}

	s.Release()
	p.Retain(func(s *Symbol) bool { return s.RefCount() > 0 })
	if p.Stats().Live != 0 {
		t.Fatal("symbol with zero refcount must be removed by Retain")
	}
}

func TestSymbolString(t *testing.T) {
	p := New()
	if got := p.Intern("nil", 0).String(); got != "nil" {
		t.Fatalf("expected %q, got %q", "nil", got)
	}
	if got := p.Intern("cons", 2).String(); got != "cons/2" {
		t.Fatalf("expected %q, got %q", "cons/2", got)
	}
}
