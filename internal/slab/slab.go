// Package slab implements a fixed-size-record allocator with a freelist
// threaded through unused slots, and a counting wrapper for allocation
// diagnostics. It backs the protection sets of pkg/term and pkg/ldd, and
// the LDD node table.
package slab

// Slab is a generational slot array: Alloc returns an index that stays
// valid (and distinguishable from a reused slot) until Free is called.
// The zero value is not usable; use New.
type Slab[T any] struct {
	slots     []entry[T]
	free      []int32 // stack of free slot indices
	live      int
	nextDebug bool // recorded by New; Get, Set and Free check generations regardless
}

type entry[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Handle is a slot index plus a generation stamp, returned by Alloc and
// required by Get/Free so that a stale handle from a freed-and-reused slot
// is detectable instead of silently aliasing new data.
type Handle struct {
	index      int32
	generation uint32
}

// Valid reports whether h has a non-negative index. NilHandle is not
// valid; the zero Handle is (it names slot 0, generation 0).
func (h Handle) Valid() bool { return h.index >= 0 }

// NilHandle is returned by operations that found nothing to free/get.
var NilHandle = Handle{index: -1}

// New returns an empty slab. debugGenerations is recorded but does not
// change behaviour: Free always bumps the slot's generation, so Get returns
// false for a handle whose slot has been freed, reused or not (catching
// use-after-free the way spec.md §7 describes for debug builds).
func New[T any](debugGenerations bool) *Slab[T] {
	return &Slab[T]{nextDebug: debugGenerations}
}

// Alloc stores value in a free slot (reusing one from the freelist when
// available) and returns its handle.
func (s *Slab[T]) Alloc(value T) Handle {
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		e := &s.slots[idx]
		e.value = value
		e.occupied = true
		s.live++
		return Handle{index: idx, generation: e.generation}
	}
	idx := int32(len(s.slots))
	s.slots = append(s.slots, entry[T]{value: value, occupied: true})
	s.live++
	return Handle{index: idx, generation: 0}
}

// Get returns the value at h and whether h is still live.
func (s *Slab[T]) Get(h Handle) (T, bool) {
	var zero T
	if h.index < 0 || int(h.index) >= len(s.slots) {
		return zero, false
	}
	e := &s.slots[h.index]
	if !e.occupied || e.generation != h.generation {
		return zero, false
	}
	return e.value, true
}

// Set overwrites the value stored at h, if h is live.
func (s *Slab[T]) Set(h Handle, value T) bool {
	if h.index < 0 || int(h.index) >= len(s.slots) {
		return false
	}
	e := &s.slots[h.index]
	if !e.occupied || e.generation != h.generation {
		return false
	}
	e.value = value
	return true
}

// Free releases the slot at h, bumping its generation so stale handles
// to the reused slot are rejected by Get.
func (s *Slab[T]) Free(h Handle) bool {
	if h.index < 0 || int(h.index) >= len(s.slots) {
		return false
	}
	e := &s.slots[h.index]
	if !e.occupied || e.generation != h.generation {
		return false
	}
	var zero T
	e.value = zero
	e.occupied = false
	e.generation++
	s.free = append(s.free, h.index)
	s.live--
	return true
}

// Len returns the number of live (allocated, unfreed) entries.
func (s *Slab[T]) Len() int { return s.live }

// Each calls fn for every live entry's handle and value. fn must not call
// Alloc or Free on s.
func (s *Slab[T]) Each(fn func(Handle, T)) {
	for i := range s.slots {
		e := &s.slots[i]
		if e.occupied {
			fn(Handle{index: int32(i), generation: e.generation}, e.value)
		}
	}
}
