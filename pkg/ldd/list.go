package ldd

// ToSlice enumerates every vector contained in ldd as a [][]uint32, per
// spec.md §8's LDD round-trip law and grounded on
// original_source/merc/crates/ldd/src/iterators.rs's Iter (a depth-first
// walk that descends via down, recording values, and backtracks via
// right once a vector bottoms out at True). Implemented with an explicit
// stack rather than the host recursion iterators.rs uses, matching this
// package's no-host-recursion-for-graph-shaped-data discipline.
func (s *Store) ToSlice(root Handle) ([][]uint32, error) {
	r := root.Ref()
	if r.IsFalse() {
		return nil, nil
	}
	if r.IsTrue() {
		return [][]uint32{{}}, nil
	}

	var out [][]uint32
	var path []uint32
	var stack []frame
	stack = append(stack, frame{n: r})

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.depth == 0 {
			path = append(path, top.n.Value())
		}
		down := top.n.Down()
		if down.IsTrue() {
			vec := make([]uint32, len(path))
			copy(vec, path)
			out = append(out, vec)
			s.advanceRight(&stack, &path)
			continue
		}
		top.depth = 1
		stack = append(stack, frame{n: down})
	}
	return out, nil
}

// advanceRight pops exhausted frames (nodes whose right sibling is False)
// off stack, trimming path in step, until it finds one with a live right
// sibling to move to. A right sibling replaces its predecessor's value at
// the same vector position, so path is trimmed either way: the top frame's
// own value is always popped here, and the loop's depth-0 case re-pushes
// the sibling's value on the next iteration.
func (s *Store) advanceRight(stack *[]frame, path *[]uint32) {
	for len(*stack) > 0 {
		top := &(*stack)[len(*stack)-1]
		right := top.n.Right()
		*path = (*path)[:len(*path)-1]
		if right.IsFalse() {
			*stack = (*stack)[:len(*stack)-1]
			continue
		}
		top.n = right
		top.depth = 0
		return
	}
}

type frame struct {
	n     Ref
	depth int
}

// FromSlices builds the LDD representing exactly the given vectors (all
// must share the same length), the inverse of ToSlice. Vectors are
// inserted independently (each as a straight chain of nodes terminating
// in True) and folded together with Union, so maximal sharing across
// vectors with common prefixes/suffixes falls out of Insert's hash-
// consing automatically.
func (s *Store) FromSlices(w *Worker, vectors [][]uint32) (Handle, error) {
	result := w.Protect(s.EmptySet())
	for _, v := range vectors {
		chain, err := s.buildChain(w, v)
		if err != nil {
			result.Release()
			return Handle{}, err
		}
		next, err := s.Union(w, result, chain)
		result.Release()
		chain.Release()
		if err != nil {
			return Handle{}, err
		}
		result = next
	}
	return result, nil
}

// buildChain inserts a single vector as a straight-line chain of nodes,
// built bottom-up (True first, so every intermediate down is already
// live when the next Insert needs it).
func (s *Store) buildChain(w *Worker, v []uint32) (Handle, error) {
	tail := w.Protect(s.EmptyVector())
	for i := len(v) - 1; i >= 0; i-- {
		node, err := s.Insert(w, v[i], tail.Ref(), s.EmptySet())
		tail.Release()
		if err != nil {
			return Handle{}, err
		}
		tail = node
	}
	return tail, nil
}
