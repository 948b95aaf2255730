package term

import "testing"

func TestListRoundTrip(t *testing.T) {
	sp, tp := newTestPool(t)
	w := tp.NewWorker()
	defer w.Close()
	ls := InternListSymbols(sp)

	zero := sp.Intern("zero", 0)
	one := sp.Intern("one", 0)
	two := sp.Intern("two", 0)

	var items []Handle
	h0, err := tp.Create(w, zero, nil)
	if err != nil {
		t.Fatal(err)
	}
	h1, err := tp.Create(w, one, nil)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := tp.Create(w, two, nil)
	if err != nil {
		t.Fatal(err)
	}
	items = append(items, h0, h1, h2)
	defer func() {
		for _, h := range items {
			h.Release()
		}
	}()

	refs := []Ref{h0.Ref(), h1.Ref(), h2.Ref()}
	list, err := FromSlice(tp, w, ls, refs)
	if err != nil {
		t.Fatal(err)
	}
	defer list.Release()

	if list.Ref().String() != "cons(zero,cons(one,cons(two,nil)))" {
		t.Fatalf("unexpected list rendering: %s", list.Ref())
	}

	out, err := ToSlice(list.Ref(), ls)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 || !out[0].Equal(h0.Ref()) || !out[1].Equal(h1.Ref()) || !out[2].Equal(h2.Ref()) {
		t.Fatalf("round-trip mismatch: %v", out)
	}
}

func TestEmptyListIsNil(t *testing.T) {
	sp, tp := newTestPool(t)
	w := tp.NewWorker()
	defer w.Close()
	ls := InternListSymbols(sp)

	list, err := FromSlice(tp, w, ls, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer list.Release()

	if list.Ref().String() != "nil" {
		t.Fatalf("expected nil, got %s", list.Ref())
	}
	out, err := ToSlice(list.Ref(), ls)
	if err != nil || len(out) != 0 {
		t.Fatalf("expected empty slice, got %v, err %v", out, err)
	}
}
