package ldd

import (
	"log"
	"sync"

	"github.com/mmgbartels/merc/internal/sharedmutex"
	"github.com/mmgbartels/merc/internal/slab"
)

// Store is the process-wide LDD node table (spec.md §4.4): a hash-consed
// table of (value, down, right) nodes plus the operation cache that sits
// on top of it. Construct one with New and share it across every
// goroutine that needs to build or inspect LDDs; each such goroutine
// should call NewWorker once, the same discipline term.Pool uses.
type Store struct {
	cfg Config
	sm  *sharedmutex.SharedMutex

	tableMu sync.RWMutex
	table   map[nodeKey]*sharedNode
	total   int64

	regMu   sync.Mutex
	workers []*Worker

	countUntilCollection int64

	falseSentinel *sharedNode
	trueSentinel  *sharedNode

	alloc slab.CountingAllocator
	cache *OperationCache
}

// New constructs a Store. Per spec.md §4.4.1, the node table needs no
// Symbol Pool dependency (unlike term.Pool) since LDD values are bare
// u32s, not interned symbols.
func New(opts ...Option) *Store {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	s := &Store{
		cfg:   cfg,
		sm:    sharedmutex.New(),
		table: make(map[nodeKey]*sharedNode),
	}
	s.falseSentinel = &sharedNode{sentinel: sentinelFalse}
	s.trueSentinel = &sharedNode{sentinel: sentinelTrue}
	s.countUntilCollection = int64(cfg.Watermark(0))
	s.cache = newOperationCache(s)
	return s
}

// Close tears the store down, optionally printing final metrics.
func (s *Store) Close() {
	if s.cfg.PrintMetricsOnClose {
		log.Printf("ldd store closing: %+v", s.Stats())
	}
}

// Stats is a point-in-time snapshot of store occupancy.
type Stats struct {
	LiveNodes   int
	TotalNodes  int64
	Workers     int
	CacheLen    int
	Alloc       slab.CountingStats
}

// Stats returns current occupancy counters.
func (s *Store) Stats() Stats {
	s.tableMu.RLock()
	live := len(s.table)
	total := s.total
	s.tableMu.RUnlock()

	s.regMu.Lock()
	workers := 0
	for _, w := range s.workers {
		if w != nil {
			workers++
		}
	}
	s.regMu.Unlock()

	return Stats{LiveNodes: live, TotalNodes: total, Workers: workers, CacheLen: s.cache.Len(), Alloc: s.alloc.Snapshot()}
}

// OperationCache returns the store's memoizing cache for the binary and
// ternary DD operations (spec.md §6's "operation_cache() -> &mut OpCache").
func (s *Store) OperationCache() *OperationCache { return s.cache }

// EmptySet returns the False sentinel: the LDD representing the empty
// set of vectors. Never needs protection: sentinels are never swept
// (spec.md's testable property "the empty LDD set and empty vector
// sentinels are never swept").
func (s *Store) EmptySet() Ref { return Ref{n: s.falseSentinel} }

// EmptyVector returns the True sentinel: the LDD representing the set
// containing only the zero-length vector.
func (s *Store) EmptyVector() Ref { return Ref{n: s.trueSentinel} }

// internKey performs the lookup-or-insert backing Insert, escalating to
// exclusive table access only to build a genuinely new node, exactly the
// same two-phase discipline as term.Pool.internKey.
func (s *Store) internKey(w *Worker, down, right Ref, value uint32) (Handle, error) {
	if down.n == s.falseSentinel {
		return Handle{}, ErrInvalidArgument
	}
	if right.n == s.trueSentinel {
		return Handle{}, ErrInvalidArgument
	}
	height := down.n.height + 1
	if right.n != s.falseSentinel {
		if right.n.height != height {
			return Handle{}, ErrInvariant
		}
		if value >= right.n.value {
			return Handle{}, ErrInvariant
		}
	}

	k := nodeKey{value: value, down: uintptrOf(down.n), right: uintptrOf(right.n)}

	w.guard.Enter()
	s.tableMu.RLock()
	if existing, ok := s.table[k]; ok {
		s.tableMu.RUnlock()
		w.guard.Leave()
		return w.Protect(Ref{n: existing}), nil
	}
	s.tableMu.RUnlock()
	w.guard.Leave()

	w.guard.Enter()
	s.tableMu.Lock()
	if existing, ok := s.table[k]; ok {
		s.tableMu.Unlock()
		h := w.Protect(Ref{n: existing})
		w.guard.Leave()
		return h, nil
	}
	n := &sharedNode{value: value, down: down.n, right: right.n, height: height}
	s.table[k] = n
	s.total++
	s.alloc.Record(nodeSize)
	left := int64(len(s.table))
	threshold := s.countUntilCollection
	s.tableMu.Unlock()

	// The guard must be released before a possible collectLocked call
	// below: collectLocked's Exclusive waits for every registered
	// reader's busy flag to clear, including this worker's, and only this
	// goroutine calling Leave can clear it — holding it across
	// collectLocked would deadlock the calling goroutine against itself
	// on every watermark-triggered collection.
	h := w.Protect(Ref{n: n})
	w.guard.Leave()

	if s.cfg.AutoGC && left >= threshold {
		s.collectLocked(w)
		s.tableMu.Lock()
		s.countUntilCollection = int64(s.cfg.Watermark(len(s.table)))
		s.tableMu.Unlock()
	}
	return h, nil
}

// nodeSize is the fixed per-node footprint the counting allocator tracks:
// value (u32) plus two child pointers, per spec.md §4.4.1's "fixed size
// (u32, NodeId, NodeId)".
const nodeSize = 4 + 8 + 8

// Insert returns the unique node for (value, down, right), building it if
// necessary. It rejects (ErrInvalidArgument) down == False or right ==
// True, and (ErrInvariant) a height or ordering violation, per spec.md
// §4.4.3.
func (s *Store) Insert(w *Worker, value uint32, down, right Ref) (Handle, error) {
	return s.internKey(w, down, right, value)
}

// Get returns (value, down, right) for a non-sentinel node, matching
// spec.md §6's DD API "get(ldd) -> (value, down, right)".
func (s *Store) Get(r Ref) (uint32, Ref, Ref) {
	return r.Value(), r.Down(), r.Right()
}

// Protect promotes an unowned Ref to an owned Handle in w's protection
// set.
func (s *Store) Protect(w *Worker, r Ref) Handle {
	return w.Protect(r)
}

// EnableGarbageCollection toggles automatic collection on watermark
// breach, matching spec.md §6's "enable_garbage_collection(bool)".
func (s *Store) EnableGarbageCollection(enabled bool) {
	s.cfg.AutoGC = enabled
}

// protSlot locates a protected node: which worker's slab, and which slot.
type protSlot struct {
	owner *Worker
	slot  slab.Handle
}

// Worker is a per-goroutine handle into the store: it owns a protection
// slab of node roots, mirroring term.Worker.
type Worker struct {
	store *Store
	guard *sharedmutex.Guard

	mu    sync.Mutex
	nodes *slab.Slab[*sharedNode]
}

// NewWorker registers a new worker (the per-goroutine root set) with the
// store. Call Close when the goroutine is done using the store.
func (s *Store) NewWorker() *Worker {
	w := &Worker{
		store: s,
		guard: s.sm.Register(),
		nodes: slab.New[*sharedNode](s.cfg.DebugGenerations),
	}
	s.regMu.Lock()
	s.workers = append(s.workers, w)
	s.regMu.Unlock()
	return w
}

// Close unregisters the worker. Its protection slab must be empty or
// Close panics, the same clean-shutdown discipline as term.Worker.Close.
func (w *Worker) Close() {
	w.mu.Lock()
	live := w.nodes.Len()
	w.mu.Unlock()
	if live != 0 {
		panic("ldd: Worker.Close called with outstanding protected handles")
	}
	w.store.sm.Unregister(w.guard)
	w.store.regMu.Lock()
	for i, ww := range w.store.workers {
		if ww == w {
			w.store.workers[i] = nil
			break
		}
	}
	w.store.regMu.Unlock()
}

// Protect acquires a new protection slot for r's node and returns an
// owned Handle.
func (w *Worker) Protect(r Ref) Handle {
	w.guard.Enter()
	defer w.guard.Leave()
	w.mu.Lock()
	h := w.nodes.Alloc(r.n)
	w.mu.Unlock()
	return Handle{store: w.store, ref: protSlot{owner: w, slot: h}}
}

// eachProtectedNode calls fn for every node currently protected by w.
func (w *Worker) eachProtectedNode(fn func(*sharedNode)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nodes.Each(func(_ slab.Handle, n *sharedNode) { fn(n) })
}
