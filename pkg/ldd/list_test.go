package ldd

import "testing"

func sliceEqual(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsVector(vs [][]uint32, v []uint32) bool {
	for _, c := range vs {
		if sliceEqual(c, v) {
			return true
		}
	}
	return false
}

// TestFromSlicesToSliceRoundTrips is spec.md §8's LDD round-trip law:
// FromSlices(ToSlice(x)) must reproduce the same set of vectors, and,
// since FromSlices rebuilds through hash-consed Insert, the very same
// canonical node.
func TestFromSlicesToSliceRoundTrips(t *testing.T) {
	s := newTestStore(t)
	w := s.NewWorker()
	defer w.Close()

	want := [][]uint32{{1, 2, 3}, {1, 2, 4}, {5, 6, 7}}
	h := vectors(t, s, w, want...)
	defer h.Release()

	got, err := s.ToSlice(h)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("ToSlice returned %d vectors, want %d", len(got), len(want))
	}
	for _, v := range want {
		if !containsVector(got, v) {
			t.Fatalf("ToSlice result %v missing vector %v", got, v)
		}
	}

	h2 := vectors(t, s, w, got...)
	defer h2.Release()
	if !h.Ref().Equal(h2.Ref()) {
		t.Fatal("expected re-encoding a decoded vector set to rebuild the identical, maximally-shared node")
	}
}

func TestToSliceEmptySet(t *testing.T) {
	s := newTestStore(t)
	w := s.NewWorker()
	defer w.Close()

	h := w.Protect(s.EmptySet())
	defer h.Release()

	got, err := s.ToSlice(h)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("ToSlice(EmptySet) = %v, want empty", got)
	}
}

func TestToSliceEmptyVector(t *testing.T) {
	s := newTestStore(t)
	w := s.NewWorker()
	defer w.Close()

	h := w.Protect(s.EmptyVector())
	defer h.Release()

	got, err := s.ToSlice(h)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || len(got[0]) != 0 {
		t.Fatalf("ToSlice(EmptyVector) = %v, want [[]]", got)
	}
}

func TestFromSlicesSharesCommonPrefixes(t *testing.T) {
	s := newTestStore(t)
	w := s.NewWorker()
	defer w.Close()

	h := vectors(t, s, w, []uint32{1, 2}, []uint32{1, 3})
	defer h.Release()

	before := s.Stats().LiveNodes

	h2 := vectors(t, s, w, []uint32{1, 4})
	defer h2.Release()

	// Inserting a third vector sharing the "1" prefix should add exactly
	// one new node family (the new tail plus one new top-level node), not
	// duplicate the shared prefix.
	after := s.Stats().LiveNodes
	if after-before > 3 {
		t.Fatalf("expected common prefix sharing, live node count grew by %d", after-before)
	}
}
