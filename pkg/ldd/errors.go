package ldd

import "errors"

// Sentinel errors implementing spec.md §7's error-kind taxonomy, the same
// style as pkg/term's errors.go.
var (
	// ErrInvalidArgument covers down == False, right == True at
	// insertion, and malformed vectors given to FromSlices.
	ErrInvalidArgument = errors.New("ldd: invalid argument")

	// ErrInvariant marks a height or value-ordering violation detected
	// at insertion (spec.md §4.4.3).
	ErrInvariant = errors.New("ldd: invariant violation")

	// ErrExhaustion models allocator failure; kept for errors.Is
	// uniformity with pkg/term, unused on the Go allocator path.
	ErrExhaustion = errors.New("ldd: allocation exhausted")

	// ErrUseAfterFree is the debug-mode generational-mismatch error: a
	// protection handle whose slot was already freed was used again.
	ErrUseAfterFree = errors.New("ldd: use of a released handle")
)
