package term

import "github.com/mmgbartels/merc/pkg/symbol"

// List, Cons and Nil give the "two distinguished symbols cons/2 and nil/0"
// convention of spec.md §3 a typed surface, recovered from
// original_source/merc/crates/aterm/src/aterm_list.rs's ATermList, which
// the distilled spec.md text dropped down to a one-line invariant.
const (
	consName = "cons"
	nilName  = "nil"
)

// ListSymbols interns the two list symbols this package's helpers build
// on. Callers that hand-roll list terms with FromText must use the same
// names ("cons"/"nil") for FromSlice/ToSlice to recognize them.
type ListSymbols struct {
	Cons *symbol.Symbol
	Nil  *symbol.Symbol
}

// InternListSymbols interns cons/2 and nil/0 in sp.
func InternListSymbols(sp *symbol.Pool) ListSymbols {
	return ListSymbols{
		Cons: sp.Intern(consName, 2),
		Nil:  sp.Intern(nilName, 0),
	}
}

// Nil returns the unique nil/0 term, building it in p if necessary.
func Nil(p *Pool, w *Worker, ls ListSymbols) (Handle, error) {
	return p.Create(w, ls.Nil, nil)
}

// Cons builds cons(head, tail).
func Cons(p *Pool, w *Worker, ls ListSymbols, head, tail Ref) (Handle, error) {
	return p.Create(w, ls.Cons, []Ref{head, tail})
}

// FromSlice builds a proper list term from items, right-to-left, using
// the non-recursive builder of spec.md §4.2.6 (Evaluate) so an
// arbitrarily long slice never overflows the Go call stack the way a
// naive recursive cons-chain builder would.
func FromSlice(p *Pool, w *Worker, ls ListSymbols, items []Ref) (Handle, error) {
	// The inductive input is just "how far into items have we consumed":
	// index len(items) yields nil, index i yields cons(items[i], <i+1>).
	transform := func(_ *Pool, _ *Worker, idx int) Yield[int] {
		if idx >= len(items) {
			return Construct[int](-1)
		}
		return Construct[int](idx, idx+1)
	}
	construct := func(p *Pool, w *Worker, key any, children []Handle) (Handle, error) {
		idx := key.(int)
		if idx < 0 {
			return Nil(p, w, ls)
		}
		tail := children[0]
		h, err := Cons(p, w, ls, items[idx], tail.Ref())
		tail.Release()
		return h, err
	}
	return Evaluate(p, w, 0, transform, construct)
}

// ToSlice walks a proper list term (a cons/nil chain) into a slice of
// Refs, in order. Returns ErrInvalidArgument if t is not shaped like a
// proper list built from ls.Cons/ls.Nil.
func ToSlice(t Ref, ls ListSymbols) ([]Ref, error) {
	var out []Ref
	cur := t
	for {
		if cur.IsInt() {
			return nil, ErrInvalidArgument
		}
		switch cur.Head() {
		case ls.Nil:
			return out, nil
		case ls.Cons:
			out = append(out, cur.Arg(0))
			cur = cur.Arg(1)
		default:
			return nil, ErrInvalidArgument
		}
	}
}
