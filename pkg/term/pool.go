package term

import (
	"log"
	"sync"

	"github.com/mmgbartels/merc/internal/sharedmutex"
	"github.com/mmgbartels/merc/internal/slab"
	"github.com/mmgbartels/merc/pkg/symbol"
)

// Pool is the process-wide term table (spec.md §4.2). Construct one with
// New and share it across every goroutine that needs to build or inspect
// terms; each such goroutine should call NewWorker once.
type Pool struct {
	cfg Config
	sp  *symbol.Pool
	sm  *sharedmutex.SharedMutex

	tableMu sync.RWMutex
	table   map[termKey]*sharedTerm
	total   int64

	regMu   sync.Mutex
	workers []*Worker

	countUntilCollection int64

	alloc      slab.CountingAllocator
	sweepHooks []func()
}

// New constructs a Pool backed by sp (its Symbol Pool dependency, per
// spec.md §2: "TP depends on SP").
func New(sp *symbol.Pool, opts ...Option) *Pool {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	p := &Pool{
		cfg:   cfg,
		sp:    sp,
		sm:    sharedmutex.New(),
		table: make(map[termKey]*sharedTerm),
	}
	p.countUntilCollection = int64(cfg.Watermark(0))
	return p
}

// Close tears the pool down; if configured, prints final metrics. There is
// nothing to release on the Go side beyond what the runtime GC already
// owns, but Close gives the teacher-style symmetry of NewX/Close(x).
func (p *Pool) Close() {
	if p.cfg.PrintMetricsOnClose {
		log.Printf("term pool closing: %+v", p.Stats())
	}
}

// Stats is a point-in-time snapshot of pool occupancy.
type Stats struct {
	LiveTerms  int
	TotalTerms int64
	Workers    int
	Alloc      slab.CountingStats
}

// Stats returns current occupancy counters.
func (p *Pool) Stats() Stats {
	p.tableMu.RLock()
	live := len(p.table)
	total := p.total
	p.tableMu.RUnlock()

	p.regMu.Lock()
	workers := 0
	for _, w := range p.workers {
		if w != nil {
			workers++
		}
	}
	p.regMu.Unlock()

	return Stats{LiveTerms: live, TotalTerms: total, Workers: workers, Alloc: p.alloc.Snapshot()}
}

// RegisterSweepHook appends a callback invoked after every sweep, holding
// no obligations beyond "the call happens after table entries are
// removed". pkg/ldd's operation cache (a GC-sensitive cache per spec.md
// §4.2.4 step 7, and §4.4.2) does not use this hook: DDS is its own
// independent pool and clears its cache inside its own collection. This
// hook lets any other pool-adjacent cache built on top of TP invalidate
// itself after a sweep.
func (p *Pool) RegisterSweepHook(fn func()) {
	p.regMu.Lock()
	p.sweepHooks = append(p.sweepHooks, fn)
	p.regMu.Unlock()
}

// internKey performs the lookup-or-insert that backs Create/CreateInt. It
// takes a read-guard for the common "already present" path and only
// escalates to exclusive table access to insert a genuinely new term.
func (p *Pool) internKey(w *Worker, k termKey, build func() *sharedTerm) Handle {
	w.guard.Enter()
	p.tableMu.RLock()
	if existing, ok := p.table[k]; ok {
		p.tableMu.RUnlock()
		w.guard.Leave()
		return w.Protect(Ref{t: existing})
	}
	p.tableMu.RUnlock()
	w.guard.Leave()

	// Build and insert under exclusive table access; a losing concurrent
	// builder discards its term and returns the winner's pointer, giving
	// the "linearizable with respect to other insertions for the same
	// key" guarantee of spec.md §5.
	w.guard.Enter()
	p.tableMu.Lock()
	if existing, ok := p.table[k]; ok {
		p.tableMu.Unlock()
		h := w.Protect(Ref{t: existing})
		w.guard.Leave()
		return h
	}
	t := build()
	p.table[k] = t
	p.total++
	if t.sym != nil {
		t.sym.Retain()
	}
	p.alloc.Record(estimateSize(t))
	left := int64(len(p.table))
	threshold := p.countUntilCollection
	p.tableMu.Unlock()

	// Protect the new term before ever consulting the watermark: a sweep
	// triggered here must not be able to collect a term nothing has rooted
	// yet. The guard must be released before a possible collectLocked call
	// below: collectLocked's Exclusive waits for every registered
	// reader's busy flag to clear, including this worker's, and that flag
	// can only be cleared by this same goroutine calling Leave — holding
	// it across collectLocked would deadlock the calling goroutine against
	// itself on every watermark-triggered collection.
	h := w.Protect(Ref{t: t})
	w.guard.Leave()

	if p.cfg.AutoGC && left >= threshold {
		p.collectLocked(w)
		p.tableMu.Lock()
		p.countUntilCollection = int64(p.cfg.Watermark(len(p.table)))
		p.tableMu.Unlock()
	}
	return h
}

// Create returns the unique term for (sym, args), building it in the pool
// if necessary. Fails with ErrArityMismatch if len(args) != sym.Arity().
func (p *Pool) Create(w *Worker, sym *symbol.Symbol, args []Ref) (Handle, error) {
	if int(sym.Arity()) != len(args) {
		return Handle{}, ErrArityMismatch
	}
	raw := make([]*sharedTerm, len(args))
	for i, a := range args {
		raw[i] = a.t
	}
	k := termKey{sym: sym, args: sliceKey(raw)}
	return p.internKey(w, k, func() *sharedTerm {
		return &sharedTerm{sym: sym, args: raw}
	}), nil
}

// CreateAnnotated is Create plus an opaque u64 annotation participating
// in identity, per spec.md §4.2.5.
func (p *Pool) CreateAnnotated(w *Worker, sym *symbol.Symbol, args []Ref, annotation uint64) (Handle, error) {
	if int(sym.Arity()) != len(args) {
		return Handle{}, ErrArityMismatch
	}
	raw := make([]*sharedTerm, len(args))
	for i, a := range args {
		raw[i] = a.t
	}
	k := termKey{sym: sym, args: sliceKey(raw), hasAnn: true, annVal: annotation}
	return p.internKey(w, k, func() *sharedTerm {
		a := annotation
		return &sharedTerm{sym: sym, args: raw, annotation: &a}
	}), nil
}

// CreateInt returns the unique term for the integer literal v.
func (p *Pool) CreateInt(w *Worker, v int64) Handle {
	k := termKey{isInt: true, lit: v}
	return p.internKey(w, k, func() *sharedTerm {
		return &sharedTerm{isInt: true, lit: v}
	})
}

// Protect promotes an unowned Ref (e.g. an argument of an already
// protected term) to an owned Handle in w's protection set.
func (p *Pool) Protect(w *Worker, r Ref) Handle {
	return w.Protect(r)
}
