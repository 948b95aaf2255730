package term

// Collect runs a full mark-sweep cycle, per spec.md §4.2.4. w is the
// calling goroutine's Worker; the collection does not use it and always
// runs with exclusive access regardless of which worker requested it.
func (p *Pool) Collect(w *Worker) {
	p.collectLocked(w)
}

// collectLocked performs the cycle described by spec.md §4.2.4: acquire
// exclusivity, mark from every protection set and container set, sweep
// unmarked entries, invalidate registered sweep hooks (e.g. a cache
// layered on top of the pool), release exclusivity.
func (p *Pool) collectLocked(w *Worker) {
	_ = w // exclusivity is global, not per-caller; kept for API symmetry
	p.sm.Exclusive(func() {
		p.markPhase()
		p.sweepPhase()
	})
}

func (p *Pool) markPhase() {
	p.regMu.Lock()
	workers := make([]*Worker, len(p.workers))
	copy(workers, p.workers)
	p.regMu.Unlock()

	var worklist []*sharedTerm
	marker := &Marker{push: func(t *sharedTerm) { worklist = append(worklist, t) }}

	for _, w := range workers {
		if w == nil {
			continue
		}
		w.eachProtectedTerm(func(t *sharedTerm) { worklist = append(worklist, t) })
		w.eachContainer(func(m Markable) { m.Mark(marker) })
	}

	for len(worklist) > 0 {
		n := len(worklist) - 1
		t := worklist[n]
		worklist = worklist[:n]
		if t.marked {
			continue
		}
		t.marked = true
		for _, a := range t.args {
			if !a.marked {
				worklist = append(worklist, a)
			}
		}
	}
}

func (p *Pool) sweepPhase() {
	p.tableMu.Lock()
	for k, t := range p.table {
		if t.marked {
			t.marked = false
			continue
		}
		delete(p.table, k)
		if t.sym != nil {
			t.sym.Release()
		}
		p.alloc.Release(estimateSize(t))
	}
	p.tableMu.Unlock()

	p.regMu.Lock()
	hooks := make([]func(), len(p.sweepHooks))
	copy(hooks, p.sweepHooks)
	p.regMu.Unlock()
	for _, h := range hooks {
		h()
	}
}
