// Package ldd implements the Decision-Diagram Store (DDS): a hash-consed
// table of list-decision-diagram nodes with the same maximal-sharing,
// per-thread protection, and mark-sweep discipline as pkg/term, plus an
// operation cache that memoizes the binary/ternary node-level operations.
// See spec.md §4.4. Grounded on
// original_source/merc/crates/ldd/src/storage.rs; independent of pkg/term
// (spec.md §2: DDS depends on nothing but the shared sharedmutex/slab
// primitives).
package ldd

import "unsafe"

// sentinelKind distinguishes the two base nodes from ordinary ones. Both
// sentinels are ordinary *sharedNode values (never nil), so every real
// node's down/right pointer is always non-nil — down points at True when
// a vector ends there, right points at False when there are no further
// alternatives at that level.
type sentinelKind int8

const (
	sentinelNone sentinelKind = iota
	sentinelFalse
	sentinelTrue
)

// sharedNode is the canonical representation of one LDD node: a value
// plus down/right children, fixed-size per spec.md §4.4.1. height is
// computed once at construction (down is always already built, by
// maximal-sharing/bottom-up construction) rather than walked on every
// query, mirroring spec.md §4.4.3's "heights are deterministic".
type sharedNode struct {
	value    uint32
	down     *sharedNode
	right    *sharedNode
	height   uint32
	sentinel sentinelKind

	marked bool // GC mark bit; only touched under store exclusivity
}

// nodeKey is a value type usable as a Go map key for the node table,
// mirroring pkg/term's termKey. Sentinels are never interned through the
// table (they are pre-seeded singletons), so a key always identifies an
// ordinary node.
type nodeKey struct {
	value uint32
	down  uintptr
	right uintptr
}

func (n *sharedNode) key() nodeKey {
	return nodeKey{value: n.value, down: uintptrOf(n.down), right: uintptrOf(n.right)}
}

// uintptrOf returns n's address as an opaque, stable, comparable integer.
func uintptrOf(n *sharedNode) uintptr {
	return uintptr(unsafe.Pointer(n))
}

// Ref is an unowned borrow of an LDD node, valid as long as the Handle (or
// deeper Ref) it was taken from remains protected. Mirrors term.Ref.
type Ref struct {
	n *sharedNode
}

// IsFalse reports whether r is the empty-set sentinel.
func (r Ref) IsFalse() bool { return r.n.sentinel == sentinelFalse }

// IsTrue reports whether r is the empty-vector sentinel.
func (r Ref) IsTrue() bool { return r.n.sentinel == sentinelTrue }

// Value returns the node's value. Panics on a sentinel, which carries no
// meaningful value.
func (r Ref) Value() uint32 {
	if r.n.sentinel != sentinelNone {
		panic("ldd: Value called on a sentinel node")
	}
	return r.n.value
}

// Down returns the down-child ref. Panics on a sentinel.
func (r Ref) Down() Ref {
	if r.n.sentinel != sentinelNone {
		panic("ldd: Down called on a sentinel node")
	}
	return Ref{n: r.n.down}
}

// Right returns the right-sibling ref. Panics on a sentinel.
func (r Ref) Right() Ref {
	if r.n.sentinel != sentinelNone {
		panic("ldd: Right called on a sentinel node")
	}
	return Ref{n: r.n.right}
}

// Height returns the node's precomputed height (0 for both sentinels).
func (r Ref) Height() uint32 { return r.n.height }

// Equal is pointer equality on the underlying canonical node, the same
// "identity is by content" contract as term.Ref.Equal.
func (r Ref) Equal(other Ref) bool { return r.n == other.n }

// PointerID returns an opaque, stable, comparable identifier, used as the
// operation-cache sort/key basis (spec.md §4.4.2's "keyed after sorting
// operand ids").
func (r Ref) PointerID() uintptr { return uintptrOf(r.n) }

// Handle is the owned, GC-rooted form of an LDD node.
type Handle struct {
	store *Store
	ref   protSlot
}

// Ref returns an unowned borrow of h's node, valid until Release.
func (h Handle) Ref() Ref {
	h.ref.owner.mu.Lock()
	n, ok := h.ref.owner.nodes.Get(h.ref.slot)
	h.ref.owner.mu.Unlock()
	if !ok {
		panic(ErrUseAfterFree)
	}
	return Ref{n: n}
}

// Clone acquires a second, independent protection slot for the same node.
func (h Handle) Clone() Handle {
	return h.ref.owner.Protect(h.Ref())
}

// Release frees the protection slot held by h.
func (h Handle) Release() {
	h.ref.owner.mu.Lock()
	h.ref.owner.nodes.Free(h.ref.slot)
	h.ref.owner.mu.Unlock()
}
