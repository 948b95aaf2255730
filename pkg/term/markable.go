package term

// Marker collects term pointers reachable from a container root during the
// mark phase. It is only ever handed to Mark implementations by the GC
// itself (see gc.go), and only valid for the duration of that call.
type Marker struct {
	push func(*sharedTerm)
}

// MarkTerm pushes t's term onto the GC work list.
func (m *Marker) MarkTerm(t Ref) { m.push(t.t) }

// MarkHandle pushes h's protected term onto the GC work list. Useful for
// containers that store Handles directly rather than raw Refs.
func (m *Marker) MarkHandle(h Handle) { m.push(h.Ref().t) }

// Markable is the capability a bulk container of term pointers implements
// so it can register once with a Worker's container-protection slab
// instead of wrapping every element in its own Handle (spec.md §4.2.4,
// design note "Containers vs handles").
type Markable interface {
	// Mark pushes every term (and, transitively through MarkTerm, every
	// term reachable from them) this container owns onto marker.
	Mark(marker *Marker)

	// ContainsTerm is a debug-mode diagnostic predicate.
	ContainsTerm(t Ref) bool

	// Len reports how many terms the container holds. The collector does
	// not consult it.
	Len() int
}

// TermSlice is a Markable wrapping a plain slice of Refs, for worklists
// and similar bulk storage that does not need per-element protection.
type TermSlice []Ref

func (s TermSlice) Mark(marker *Marker) {
	for _, r := range s {
		marker.MarkTerm(r)
	}
}

func (s TermSlice) ContainsTerm(t Ref) bool {
	for _, r := range s {
		if r.Equal(t) {
			return true
		}
	}
	return false
}

func (s TermSlice) Len() int { return len(s) }

// TermSet is a Markable set of terms keyed by pointer identity.
type TermSet map[*sharedTerm]struct{}

// NewTermSet returns an empty TermSet.
func NewTermSet() TermSet { return make(TermSet) }

// Add inserts t into the set.
func (s TermSet) Add(t Ref) { s[t.t] = struct{}{} }

// Contains reports whether t is in the set.
func (s TermSet) Contains(t Ref) bool { _, ok := s[t.t]; return ok }

func (s TermSet) Mark(marker *Marker) {
	for t := range s {
		marker.push(t)
	}
}

func (s TermSet) ContainsTerm(t Ref) bool { return s.Contains(t) }

func (s TermSet) Len() int { return len(s) }

// TermPair is a Markable holding exactly two terms.
type TermPair struct {
	First, Second Ref
}

func (p TermPair) Mark(marker *Marker) {
	marker.MarkTerm(p.First)
	marker.MarkTerm(p.Second)
}

func (p TermPair) ContainsTerm(t Ref) bool {
	return p.First.Equal(t) || p.Second.Equal(t)
}

func (p TermPair) Len() int { return 2 }

// TermOption is a Markable holding zero or one term.
type TermOption struct {
	Value Ref
	Set   bool
}

func (o TermOption) Mark(marker *Marker) {
	if o.Set {
		marker.MarkTerm(o.Value)
	}
}

func (o TermOption) ContainsTerm(t Ref) bool { return o.Set && o.Value.Equal(t) }

func (o TermOption) Len() int {
	if o.Set {
		return 1
	}
	return 0
}

// TermDeque is a Markable double-ended queue of terms, backed by a slice,
// for worklist-style algorithms that push/pop from either end.
type TermDeque struct {
	items []Ref
}

// NewTermDeque returns an empty deque.
func NewTermDeque() *TermDeque { return &TermDeque{} }

func (d *TermDeque) PushBack(t Ref)  { d.items = append(d.items, t) }
func (d *TermDeque) PushFront(t Ref) { d.items = append([]Ref{t}, d.items...) }

func (d *TermDeque) PopFront() (Ref, bool) {
	if len(d.items) == 0 {
		return Ref{}, false
	}
	v := d.items[0]
	d.items = d.items[1:]
	return v, true
}

func (d *TermDeque) PopBack() (Ref, bool) {
	n := len(d.items)
	if n == 0 {
		return Ref{}, false
	}
	v := d.items[n-1]
	d.items = d.items[:n-1]
	return v, true
}

func (d *TermDeque) Mark(marker *Marker) {
	for _, r := range d.items {
		marker.MarkTerm(r)
	}
}

func (d *TermDeque) ContainsTerm(t Ref) bool {
	for _, r := range d.items {
		if r.Equal(t) {
			return true
		}
	}
	return false
}

func (d *TermDeque) Len() int { return len(d.items) }
