package term

import "errors"

// Sentinel errors implementing spec.md §7's error-kind taxonomy as typed,
// wrapped errors rather than panics (panics are reserved for debug-only
// assertions per spec.md §7's propagation policy).
var (
	// ErrArityMismatch is InvalidArgument: args.len() != symbol.arity.
	ErrArityMismatch = errors.New("term: argument count does not match symbol arity")

	// ErrInvalidArgument covers other malformed-input conditions, such as
	// ToSlice being given a term that is not a proper cons/nil list.
	ErrInvalidArgument = errors.New("term: invalid argument")

	// ErrParse is returned by FromText on malformed input.
	ErrParse = errors.New("term: parse error")

	// ErrExhaustion models allocator failure; unused on the Go allocator
	// path but kept so callers can errors.Is against it uniformly with
	// other pool-backed components (pkg/ldd mirrors this).
	ErrExhaustion = errors.New("term: allocation exhausted")

	// ErrUseAfterFree is the debug-mode generational-mismatch error
	// spec.md §7 describes: a protection handle whose slot was already
	// freed (dropped) was used again.
	ErrUseAfterFree = errors.New("term: use of a released handle")

	// ErrInvariant marks a debug-only internal assertion failure.
	ErrInvariant = errors.New("term: invariant violation")
)
