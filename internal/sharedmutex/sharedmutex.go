// Package sharedmutex implements the busy/forbidden protocol: a cooperative
// reader/writer lock whose read-side critical sections lock only the
// reader's own mutex (never one shared between readers), at the cost of the
// rare writer waiting on every registered reader in turn.
//
// Readers call Enter/Leave around short critical sections (creating or
// inspecting a pooled term/node). The writer calls Exclusive, which blocks
// until every registered reader has left its critical section, runs the
// given function with exclusive access, then releases all readers.
package sharedmutex

import (
	"sync"
)

// reader holds one goroutine's busy/forbidden flags plus a recursion depth
// so nested read-guards on the same goroutine do not deadlock against a
// writer that set forbidden between the outer and inner Enter call.
type reader struct {
	mu        sync.Mutex
	cond      *sync.Cond
	busy      bool
	forbidden bool
	depth     int
}

func newReader() *reader {
	r := &reader{}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// SharedMutex coordinates many readers against one writer using the
// busy/forbidden protocol described in spec.md §4.2.3.
type SharedMutex struct {
	writerMu sync.Mutex // serializes writers

	regMu   sync.Mutex
	readers []*reader
}

// New returns a ready-to-use SharedMutex.
func New() *SharedMutex {
	return &SharedMutex{}
}

// Guard is a per-goroutine handle into the registry. Call Register once per
// worker goroutine and Unregister when the goroutine tears down.
type Guard struct {
	m *SharedMutex
	r *reader
	i int
}

// Register creates the calling goroutine's reader-side state. The returned
// Guard must be used for all subsequent Enter/Leave calls made by this
// goroutine, and Unregister'd on teardown.
func (m *SharedMutex) Register() *Guard {
	r := newReader()
	m.regMu.Lock()
	idx := len(m.readers)
	m.readers = append(m.readers, r)
	m.regMu.Unlock()
	return &Guard{m: m, r: r, i: idx}
}

// Unregister removes the goroutine's slot. Call this on goroutine exit; a
// guard that is mid read-section must not be unregistered.
func (m *SharedMutex) Unregister(g *Guard) {
	m.regMu.Lock()
	defer m.regMu.Unlock()
	if g.i >= 0 && g.i < len(m.readers) {
		m.readers[g.i] = nil
	}
}

// Enter begins a read-critical section. It is cheap (a lock of the
// reader's own, normally uncontended mutex) unless a writer currently holds
// forbidden, in which case it
// blocks until the writer releases. Enter is reentrant: nested Enter/Leave
// pairs on the same goroutine only toggle busy on the outermost pair.
func (g *Guard) Enter() {
	r := g.r
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.depth > 0 {
		r.depth++
		return
	}
	for r.forbidden {
		r.cond.Wait()
	}
	r.busy = true
	r.depth = 1
}

// Leave ends a read-critical section begun by Enter.
func (g *Guard) Leave() {
	r := g.r
	r.mu.Lock()
	defer r.mu.Unlock()
	r.depth--
	if r.depth == 0 {
		r.busy = false
		r.cond.Broadcast()
	}
}

// Exclusive acquires exclusive access: it serializes against other writers,
// raises forbidden on every registered reader, waits on each one's
// condition variable until it reports busy == false, runs fn, then lowers forbidden and wakes any waiters.
func (m *SharedMutex) Exclusive(fn func()) {
	m.writerMu.Lock()
	defer m.writerMu.Unlock()

	m.regMu.Lock()
	snapshot := make([]*reader, len(m.readers))
	copy(snapshot, m.readers)
	m.regMu.Unlock()

	for _, r := range snapshot {
		if r == nil {
			continue
		}
		r.mu.Lock()
		r.forbidden = true
		r.mu.Unlock()
	}

	for _, r := range snapshot {
		if r == nil {
			continue
		}
		r.mu.Lock()
		for r.busy {
			// r.cond shares r.mu as its locker; Wait releases it and
			// reacquires on wake, so the loop re-checks busy under lock.
			r.cond.Wait()
		}
		r.mu.Unlock()
	}

	fn()

	for _, r := range snapshot {
		if r == nil {
			continue
		}
		r.mu.Lock()
		r.forbidden = false
		r.cond.Broadcast()
		r.mu.Unlock()
	}
}
