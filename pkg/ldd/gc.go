package ldd

// Collect runs a full mark-sweep cycle over the node table, per spec.md
// §4.4.1's "same maximal-sharing + per-thread root set + mark-sweep GC as
// TP". w is the calling goroutine's Worker; the collection does not use
// it and always runs with exclusive access.
func (s *Store) Collect(w *Worker) {
	s.collectLocked(w)
}

// collectLocked mirrors term.Pool.collectLocked: acquire exclusivity,
// flush the operation cache (it holds unprotected node ids, spec.md
// §4.4.2), mark from every protection set, sweep unmarked nodes, release
// exclusivity. The cache is cleared before the mark/sweep so no caller
// can ever observe a cache hit referencing a pre-sweep id, per spec.md
// §4.4.3's "cache_invalidate_on_gc must fire before any caller can
// observe post-sweep ids" — clearing first trivially satisfies this since
// nothing can look the stale id up again at all.
func (s *Store) collectLocked(w *Worker) {
	_ = w
	s.sm.Exclusive(func() {
		s.cache.clear()
		s.markPhase()
		s.sweepPhase()
	})
}

func (s *Store) markPhase() {
	s.regMu.Lock()
	workers := make([]*Worker, len(s.workers))
	copy(workers, s.workers)
	s.regMu.Unlock()

	var worklist []*sharedNode
	for _, w := range workers {
		if w == nil {
			continue
		}
		w.eachProtectedNode(func(n *sharedNode) { worklist = append(worklist, n) })
	}

	for len(worklist) > 0 {
		n := len(worklist) - 1
		node := worklist[n]
		worklist = worklist[:n]
		if node.sentinel != sentinelNone || node.marked {
			continue
		}
		node.marked = true
		if node.down != nil && node.down.sentinel == sentinelNone && !node.down.marked {
			worklist = append(worklist, node.down)
		}
		if node.right != nil && node.right.sentinel == sentinelNone && !node.right.marked {
			worklist = append(worklist, node.right)
		}
	}
}

func (s *Store) sweepPhase() {
	s.tableMu.Lock()
	for k, n := range s.table {
		if n.marked {
			n.marked = false
			continue
		}
		delete(s.table, k)
		s.alloc.Release(nodeSize)
	}
	s.tableMu.Unlock()
}
