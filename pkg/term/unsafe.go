package term

import "unsafe"

// uintptrOf returns t's address as an opaque, comparable integer. Go's
// garbage collector is non-moving for heap objects reachable only through
// ordinary pointers, so this value is stable for the lifetime of t — the
// same "stable pointer" property spec.md §4.1/§4.2.1 asks handles to have.
func uintptrOf(t *sharedTerm) uintptr {
	return uintptr(unsafe.Pointer(t))
}
