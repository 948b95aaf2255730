package term

import (
	"sync"

	"github.com/mmgbartels/merc/internal/sharedmutex"
	"github.com/mmgbartels/merc/internal/slab"
)

// Worker is a per-goroutine handle into the pool: it owns a protection
// slab of term roots and a container-protection slab of Markable roots
// (spec.md §3's "protection set (per thread)" / "container protection").
//
// Go has no thread-local storage a library can hook transparently, so
// unlike the Rust source's THREAD_TERM_POOL this is an explicit object a
// goroutine must create once (Pool.NewWorker) and pass to every call that
// creates or inspects terms, then Close on exit — the same explicit
// lifetime discipline the teacher uses for its pooled stores
// (pkg/minikanren/pool.go's Get*/Put* pairs) rather than an implicit one.
type Worker struct {
	pool  *Pool
	guard *sharedmutex.Guard

	mu         sync.Mutex
	terms      *slab.Slab[*sharedTerm]
	containers *slab.Slab[Markable]
}

// protSlot locates a protected term: which worker's slab, and which slot.
type protSlot struct {
	owner *Worker
	slot  slab.Handle
}

// ContainerHandle is the container analogue of Handle: a registered
// Markable that the GC will call Mark on.
type ContainerHandle struct {
	owner *Worker
	slot  slab.Handle
}

// NewWorker registers a new worker (the per-goroutine root set) with the
// pool. Call Close when the goroutine is done using the pool.
func (p *Pool) NewWorker() *Worker {
	w := &Worker{
		pool:       p,
		guard:      p.sm.Register(),
		terms:      slab.New[*sharedTerm](p.cfg.DebugGenerations),
		containers: slab.New[Markable](p.cfg.DebugGenerations),
	}
	p.regMu.Lock()
	p.workers = append(p.workers, w)
	p.regMu.Unlock()
	return w
}

// Close unregisters the worker. Its protection and container slabs must be
// empty (no outstanding Handles/ContainerHandles) or Close panics, the same
// way the teacher asserts clean shutdown of pooled resources.
func (w *Worker) Close() {
	w.mu.Lock()
	live := w.terms.Len() + w.containers.Len()
	w.mu.Unlock()
	if live != 0 {
		panic("term: Worker.Close called with outstanding protected handles")
	}
	w.pool.sm.Unregister(w.guard)
	w.pool.regMu.Lock()
	for i, ww := range w.pool.workers {
		if ww == w {
			w.pool.workers[i] = nil
			break
		}
	}
	w.pool.regMu.Unlock()
}

// Protect acquires a new protection slot for r's term and returns an owned
// Handle. The handle keeps the term (and transitively its symbol and
// arguments) alive across any future GC cycle until Release is called.
func (w *Worker) Protect(r Ref) Handle {
	w.guard.Enter()
	defer w.guard.Leave()
	w.mu.Lock()
	h := w.terms.Alloc(r.t)
	w.mu.Unlock()
	return Handle{pool: w.pool, ref: protSlot{owner: w, slot: h}}
}

// Release frees the protection slot held by h. Using h again after Release
// is a use-after-free, caught by the slab's generation check as an
// ErrUseAfterFree panic, whether or not WithDebugGenerations is set.
func (h Handle) Release() {
	h.ref.owner.mu.Lock()
	h.ref.owner.terms.Free(h.ref.slot)
	h.ref.owner.mu.Unlock()
}

// Clone acquires a second, independent protection slot for the same term.
func (h Handle) Clone() Handle {
	return h.ref.owner.Protect(h.Ref())
}

// ProtectContainer registers m as a GC root: every live term reachable
// through m.Mark survives collection. See the Markable capability in
// spec.md §4.2.4.
func (w *Worker) ProtectContainer(m Markable) ContainerHandle {
	w.mu.Lock()
	h := w.containers.Alloc(m)
	w.mu.Unlock()
	return ContainerHandle{owner: w, slot: h}
}

// ReleaseContainer unregisters a container root.
func (h ContainerHandle) Release() {
	h.owner.mu.Lock()
	h.owner.containers.Free(h.slot)
	h.owner.mu.Unlock()
}

// eachProtectedTerm calls fn for every term currently protected by w.
func (w *Worker) eachProtectedTerm(fn func(*sharedTerm)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.terms.Each(func(_ slab.Handle, t *sharedTerm) { fn(t) })
}

// eachContainer calls fn for every Markable currently registered by w.
func (w *Worker) eachContainer(fn func(Markable)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.containers.Each(func(_ slab.Handle, m Markable) { fn(m) })
}
