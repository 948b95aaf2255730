package term

// Yield is what a Transformer produces for one input value: either a
// completed term to splice in directly, or a construction key plus zero
// or more child inputs to push for further reduction. See spec.md §4.2.6.
type Yield[I any] struct {
	done Handle
	isDone bool

	key      any
	children []I
}

// Done yields an already-built term directly, skipping construction.
func Done[I any](h Handle) Yield[I] { return Yield[I]{done: h, isDone: true} }

// Construct yields a construction key and the child inputs that must be
// reduced (in order) before Constructor is invoked for this key.
func Construct[I any](key any, children ...I) Yield[I] {
	return Yield[I]{key: key, children: children}
}

// Transformer inspects one input value and produces a Yield.
type Transformer[I any] func(p *Pool, w *Worker, input I) Yield[I]

// Constructor builds a term from a construction key and its already
// reduced children, in the order the Transformer pushed them.
type Constructor[I any] func(p *Pool, w *Worker, key any, children []Handle) (Handle, error)

// frameKind distinguishes the two config-stack frame shapes of spec.md
// §4.2.6: "Apply(input, result_slot)" and "Construct(key, arity, result_slot)".
type frameKind int

const (
	frameApply frameKind = iota
	frameConstruct
)

type buildFrame[I any] struct {
	kind  frameKind
	input I
	key   any
	arity int
	slot  int
}

// Evaluate consumes an inductively-shaped input and produces a term using
// an explicit control stack instead of host-language recursion, so terms
// of depth far exceeding the Go call stack's practical limit can still be
// built (spec.md §4.2.6's central guarantee).
func Evaluate[I any](p *Pool, w *Worker, input I, transform Transformer[I], build Constructor[I]) (Handle, error) {
	results := []*Handle{nil} // slot 0 holds the final answer
	var frames []buildFrame[I]
	frames = append(frames, buildFrame[I]{kind: frameApply, input: input, slot: 0})

	for len(frames) > 0 {
		n := len(frames) - 1
		f := frames[n]
		frames = frames[:n]

		switch f.kind {
		case frameApply:
			y := transform(p, w, f.input)
			if y.isDone {
				h := y.done
				results[f.slot] = &h
				continue
			}
			base := len(results)
			for range y.children {
				results = append(results, nil)
			}
			frames = append(frames, buildFrame[I]{
				kind: frameConstruct, key: y.key, arity: len(y.children), slot: f.slot,
			})
			for i := len(y.children) - 1; i >= 0; i-- {
				frames = append(frames, buildFrame[I]{kind: frameApply, input: y.children[i], slot: base + i})
			}

		case frameConstruct:
			children := make([]Handle, f.arity)
			base := len(results) - f.arity
			for i := 0; i < f.arity; i++ {
				children[i] = *results[base+i]
				results[base+i] = nil
			}
			results = results[:base]
			h, err := build(p, w, f.key, children)
			if err != nil {
				return Handle{}, err
			}
			results[f.slot] = &h
		}
	}

	return *results[0], nil
}
