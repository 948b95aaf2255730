package ldd

import "testing"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(WithAutoGC(false), WithDebugGenerations(true))
}

func TestInsertShares(t *testing.T) {
	s := newTestStore(t)
	w := s.NewWorker()
	defer w.Close()

	tailH, err := s.Insert(w, 2, s.EmptyVector(), s.EmptySet())
	if err != nil {
		t.Fatal(err)
	}
	defer tailH.Release()

	h1, err := s.Insert(w, 1, tailH.Ref(), s.EmptySet())
	if err != nil {
		t.Fatal(err)
	}
	defer h1.Release()

	h2, err := s.Insert(w, 1, tailH.Ref(), s.EmptySet())
	if err != nil {
		t.Fatal(err)
	}
	defer h2.Release()

	if !h1.Ref().Equal(h2.Ref()) {
		t.Fatal("expected the same (value, down, right) triple interned twice to be pointer-equal")
	}
}

func TestInsertRejectsFalseDown(t *testing.T) {
	s := newTestStore(t)
	w := s.NewWorker()
	defer w.Close()

	if _, err := s.Insert(w, 1, s.EmptySet(), s.EmptySet()); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestInsertRejectsTrueRight(t *testing.T) {
	s := newTestStore(t)
	w := s.NewWorker()
	defer w.Close()

	if _, err := s.Insert(w, 1, s.EmptyVector(), s.EmptyVector()); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestInsertRejectsHeightMismatch(t *testing.T) {
	s := newTestStore(t)
	w := s.NewWorker()
	defer w.Close()

	// right at height 1 (single-element chain), down at height 0 (True):
	// node(1, True, right) wants right at height 1, which is fine; build a
	// genuine mismatch by giving right a different height than down+1.
	rightH, err := s.Insert(w, 5, s.EmptyVector(), s.EmptySet())
	if err != nil {
		t.Fatal(err)
	}
	defer rightH.Release()

	deeperTailH, err := s.Insert(w, 9, s.EmptyVector(), s.EmptySet())
	if err != nil {
		t.Fatal(err)
	}
	defer deeperTailH.Release()
	deeperH, err := s.Insert(w, 3, deeperTailH.Ref(), s.EmptySet())
	if err != nil {
		t.Fatal(err)
	}
	defer deeperH.Release()

	if _, err := s.Insert(w, 1, deeperH.Ref(), rightH.Ref()); err != ErrInvariant {
		t.Fatalf("expected ErrInvariant for a height-mismatched right sibling, got %v", err)
	}
}

func TestInsertRejectsOutOfOrderValue(t *testing.T) {
	s := newTestStore(t)
	w := s.NewWorker()
	defer w.Close()

	rightH, err := s.Insert(w, 5, s.EmptyVector(), s.EmptySet())
	if err != nil {
		t.Fatal(err)
	}
	defer rightH.Release()

	if _, err := s.Insert(w, 5, s.EmptyVector(), rightH.Ref()); err != ErrInvariant {
		t.Fatalf("expected ErrInvariant for value >= right's value, got %v", err)
	}
}

func TestGCReclaimsUnprotectedNodes(t *testing.T) {
	s := newTestStore(t)
	w := s.NewWorker()
	defer w.Close()

	for i := uint32(0); i < 1000; i++ {
		h, err := s.Insert(w, i, s.EmptyVector(), s.EmptySet())
		if err != nil {
			t.Fatal(err)
		}
		h.Release()
	}

	s.Collect(w)
	if got := s.Stats().LiveNodes; got != 0 {
		t.Fatalf("expected every unreferenced node to be swept, got %d live", got)
	}
}

func TestGCKeepsProtectedNodes(t *testing.T) {
	s := newTestStore(t)
	w := s.NewWorker()
	defer w.Close()

	h, err := s.Insert(w, 1, s.EmptyVector(), s.EmptySet())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	s.Collect(w)
	if got := s.Stats().LiveNodes; got != 1 {
		t.Fatalf("expected the protected node to survive collection, got %d live", got)
	}
}

func TestSentinelsSurviveCollection(t *testing.T) {
	s := newTestStore(t)
	w := s.NewWorker()
	defer w.Close()

	s.Collect(w)
	if !s.EmptySet().IsFalse() || !s.EmptyVector().IsTrue() {
		t.Fatal("sentinels must remain well-formed across a collection")
	}
}
