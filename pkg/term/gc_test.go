package term

import "testing"

func TestContainerProtectionSurvivesGC(t *testing.T) {
	sp, tp := newTestPool(t)
	w := tp.NewWorker()
	defer w.Close()

	f := sp.Intern("f", 1)
	a := sp.Intern("a", 0)
	ha, err := tp.Create(w, a, nil)
	if err != nil {
		t.Fatal(err)
	}
	term, err := tp.Create(w, f, []Ref{ha.Ref()})
	if err != nil {
		t.Fatal(err)
	}
	ha.Release()

	set := NewTermSet()
	set.Add(term.Ref())
	ch := w.ProtectContainer(set)

	r := term.Ref()
	term.Release() // drop the only Handle; the container must still keep it alive

	tp.Collect(w)

	if !set.Contains(r) || tp.Stats().LiveTerms != 2 {
		t.Fatal("term protected only via a Markable container was collected")
	}

	ch.Release()
	tp.Collect(w)
	if tp.Stats().LiveTerms != 0 {
		t.Fatal("expected table empty once the container root is released")
	}
}

func TestCollectIdempotentWithNoMutation(t *testing.T) {
	sp, tp := newTestPool(t)
	w := tp.NewWorker()
	defer w.Close()

	a := sp.Intern("a", 0)
	h, err := tp.Create(w, a, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	tp.Collect(w)
	before := tp.Stats()
	tp.Collect(w)
	after := tp.Stats()

	if before != after {
		t.Fatalf("expected running GC twice with no mutation to be a no-op: %+v vs %+v", before, after)
	}
}

func TestSweepHookFiresOnCollect(t *testing.T) {
	_, tp := newTestPool(t)
	w := tp.NewWorker()
	defer w.Close()

	fired := false
	tp.RegisterSweepHook(func() { fired = true })
	tp.Collect(w)

	if !fired {
		t.Fatal("expected sweep hook to fire on Collect")
	}
}
