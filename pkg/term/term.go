// Package term implements the Term Pool (TP): a process-wide hash-consed
// store of immutable tree terms, with pointer-identity equality, a
// protection discipline for GC roots, and a concurrent mark-sweep
// collector synchronized by the busy/forbidden protocol. See spec.md §4.2.
package term

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmgbartels/merc/pkg/symbol"
)

// sharedTerm is the single canonical representation of a term: either an
// application (symbol, args, optional annotation) or an integer literal.
// It is never mutated after construction (spec.md §3: "Terms are
// immutable after creation") except for the GC mark bit, which is only
// touched while the owning Pool holds exclusive access.
//
// Storage mirrors spec.md §4.2.2's layout: a fixed header (sym/isInt/lit)
// followed by the variable-length args tail, with the annotation folded
// into a pointer so unannotated terms pay nothing for the distinction
// (spec.md's "Annotations" design note).
type sharedTerm struct {
	sym        *symbol.Symbol // nil for integer literals
	args        []*sharedTerm
	annotation *uint64 // nil means "not annotated"
	isInt      bool
	lit        int64

	marked bool // GC mark bit; only touched under pool exclusivity
}

// estimateSize approximates the on-heap size of t's record for the
// counting allocator: a fixed header plus the variable-length args tail
// plus one word if annotated, matching the layout spec.md §4.2.2
// describes.
func estimateSize(t *sharedTerm) int64 {
	const header = 24 // sym pointer + isInt + lit
	size := int64(header) + int64(len(t.args))*8
	if t.annotation != nil {
		size += 8
	}
	return size
}

func (t *sharedTerm) key() termKey {
	k := termKey{
		sym:   t.sym,
		isInt: t.isInt,
		lit:   t.lit,
		args:  sliceKey(t.args),
	}
	if t.annotation != nil {
		k.hasAnn = true
		k.annVal = *t.annotation
	}
	return k
}

// termKey is a value type usable as a Go map key, mirroring spec.md
// §4.2.2's "borrow-compatible key" requirement (lookups never allocate a
// throwaway *sharedTerm just to probe the table). The annotation
// participates by value (hasAnn, annVal), not by pointer, so that two
// terms annotated with the same u64 compare equal as keys — equality
// "includes the annotation" (spec.md §4.2.5), not the address that
// happened to carry it.
type termKey struct {
	sym    *symbol.Symbol
	isInt  bool
	lit    int64
	args   string // packed pointer sequence, see sliceKey
	hasAnn bool
	annVal uint64
}

// sliceKey packs a []*sharedTerm into a string of raw pointer words so it
// can participate in a comparable struct key without per-lookup slice
// hashing helpers. This trades a small amount of arithmetic for avoiding
// map[string][]*sharedTerm-style double indirection.
func sliceKey(args []*sharedTerm) string {
	if len(args) == 0 {
		return ""
	}
	buf := make([]byte, len(args)*8)
	for i, a := range args {
		v := uintptrOf(a)
		for b := 0; b < 8; b++ {
			buf[i*8+b] = byte(v >> (8 * b))
		}
	}
	return string(buf)
}

// Ref is an unowned borrow of a term: a pointer with no protection
// guarantee of its own. Spec.md §4.2.1 derives a Ref's validity from the
// protected owner it was taken from (a Handle, or a deeper Ref taken from
// one); Go has no borrow checker to enforce this statically, so it is a
// documented caller discipline, identical in spirit to the teacher's use
// of plain struct values passed by value without its own lifetime.
type Ref struct {
	t *sharedTerm
}

// IsNil reports whether this Ref was never initialized.
func (r Ref) IsNil() bool { return r.t == nil }

// Handle is the owned, GC-rooted form of a term: it holds one slot in the
// creating goroutine's protection set for as long as it is alive. Release
// it with Handle.Release when done, the same explicit give-back discipline
// the teacher uses for pooled constraint stores (pkg/minikanren/pool.go's
// PutLocal/PutGlobal) in place of Rust's compiler-enforced Drop.
type Handle struct {
	pool *Pool
	ref  protSlot
}

// Ref returns an unowned borrow of the handle's term, valid as long as the
// handle itself has not been released.
func (h Handle) Ref() Ref {
	h.ref.owner.mu.Lock()
	t, ok := h.ref.owner.terms.Get(h.ref.slot)
	h.ref.owner.mu.Unlock()
	if !ok {
		panic(ErrUseAfterFree)
	}
	return Ref{t: t}
}

// Head returns the term's leading symbol. Panics (an assertable
// precondition per spec.md §7) if called on an integer literal.
func (r Ref) Head() *symbol.Symbol {
	if r.t.isInt {
		panic("term: Head called on an integer literal")
	}
	return r.t.sym
}

// Arity returns the number of arguments; 0 for both constants and
// integer literals.
func (r Ref) Arity() int {
	if r.t.isInt {
		return 0
	}
	return len(r.t.args)
}

// Arg returns the i-th argument (0-indexed here; spec.md's "1-indexed
// list of argument indices" describes rewrite-rule *positions*, not this
// accessor). Panics if i is out of range or the term is an integer.
func (r Ref) Arg(i int) Ref {
	if r.t.isInt || i < 0 || i >= len(r.t.args) {
		panic("term: Arg index out of range")
	}
	return Ref{t: r.t.args[i]}
}

// IsInt reports whether this term is an integer literal.
func (r Ref) IsInt() bool { return r.t.isInt }

// Int returns the literal value. Panics if !IsInt().
func (r Ref) Int() int64 {
	if !r.t.isInt {
		panic("term: Int called on a non-integer term")
	}
	return r.t.lit
}

// Annotation returns the term's optional u64 annotation.
func (r Ref) Annotation() (uint64, bool) {
	if r.t.annotation == nil {
		return 0, false
	}
	return *r.t.annotation, true
}

// Arguments returns a non-restartable lazy sequence over the arguments,
// per spec.md §4.2.1. Go has no generator coroutines in the stdlib, so
// this is modeled the same way the teacher models finite lazy sequences
// in pkg/minikanren/stream.go: an iterator struct whose Next method
// returns (value, ok) pairs.
type ArgIter struct {
	t *sharedTerm
	i int
}

// Arguments returns an iterator over r's arguments, in order.
func (r Ref) Arguments() *ArgIter {
	return &ArgIter{t: r.t}
}

// Next returns the next argument, or (zero, false) once exhausted.
func (it *ArgIter) Next() (Ref, bool) {
	if it.t.isInt || it.i >= len(it.t.args) {
		return Ref{}, false
	}
	a := it.t.args[it.i]
	it.i++
	return Ref{t: a}, true
}

// Equal is pointer equality on the underlying canonical term, per spec.md
// §4.2.1 ("Equality on TermHandle is pointer equality").
func (r Ref) Equal(other Ref) bool { return r.t == other.t }

// PointerID returns an opaque, stable, comparable identifier for this
// term's identity — used for hashing into caller-managed sets/maps and for
// the total arbitrary order spec.md §4.2.1 requires.
func (r Ref) PointerID() uintptr { return uintptrOf(r.t) }

// Less provides the "ordering is arbitrary but total" contract by
// comparing pointer identity.
func (r Ref) Less(other Ref) bool { return r.PointerID() < other.PointerID() }

// String renders the canonical S-expression text form from spec.md §6.
func (r Ref) String() string {
	var b strings.Builder
	r.writeTo(&b)
	return b.String()
}

func (r Ref) writeTo(b *strings.Builder) {
	if r.t.isInt {
		b.WriteString(strconv.FormatInt(r.t.lit, 10))
		return
	}
	b.WriteString(r.t.sym.Name())
	if len(r.t.args) == 0 {
		return
	}
	b.WriteByte('(')
	for i, a := range r.t.args {
		if i > 0 {
			b.WriteByte(',')
		}
		(Ref{t: a}).writeTo(b)
	}
	b.WriteByte(')')
}

// String implements fmt.Stringer for a Handle by delegating to its Ref.
func (h Handle) String() string { return h.Ref().String() }

var _ fmt.Stringer = Handle{}
