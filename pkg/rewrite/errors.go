// Package rewrite implements the Rewrite Engine (RE): it compiles a
// conditional term rewriting system into an Adaptive Pattern-Matching
// Automaton and evaluates terms to normal form with an explicit,
// non-recursive evaluation stack. See spec.md §4.3.
package rewrite

import "errors"

var (
	// ErrParse is returned when a Rule's right-hand side references a
	// variable that does not occur in its left-hand side.
	ErrParse = errors.New("rewrite: rhs references a variable not bound by lhs")

	// ErrInvalidArgument covers other malformed-rule conditions, such as
	// a condition naming an unbound variable.
	ErrInvalidArgument = errors.New("rewrite: invalid rule")
)
