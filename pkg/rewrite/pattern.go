package rewrite

import (
	"fmt"

	"github.com/mmgbartels/merc/pkg/symbol"
	"github.com/mmgbartels/merc/pkg/term"
)

// Pattern is a term shape with free variables: a left-hand side, a
// right-hand side, or a condition side of a rule (spec.md §4.3.1). Unlike
// pkg/term's Ref/Handle, a Pattern is never interned — rules are compiled
// once, at load time, and are typically small relative to the terms they
// rewrite.
type Pattern interface {
	isPattern()
	String() string
}

// Var is a pattern variable. Two Vars with the same Name are the same
// variable for non-linearity purposes (spec.md's "equivalence class").
type Var struct{ Name string }

func (Var) isPattern()      {}
func (v Var) String() string { return v.Name }

// App is a function application pattern.
type App struct {
	Symbol *symbol.Symbol
	Args   []Pattern
}

func (App) isPattern() {}
func (a App) String() string {
	if len(a.Args) == 0 {
		return a.Symbol.Name()
	}
	s := a.Symbol.Name() + "("
	for i, arg := range a.Args {
		if i > 0 {
			s += ","
		}
		s += arg.String()
	}
	return s + ")"
}

// Int is an integer literal pattern.
type Int struct{ Value int64 }

func (Int) isPattern()        {}
func (i Int) String() string { return fmt.Sprintf("%d", i.Value) }

// Lit wraps an already-built closed term.Handle for splicing a ground
// subterm into an RHS or condition without re-describing its structure as
// a Pattern. Used for literals produced elsewhere (e.g. by a boundary
// parser) that should be treated as a single opaque leaf.
type Lit struct{ Handle term.Handle }

func (Lit) isPattern()        {}
func (l Lit) String() string { return l.Handle.String() }

// collectVarPositions appends every variable occurrence's position path to
// out[name], in the order encountered, for building equivalence classes.
func collectVarPositions(p Pattern, path []int, out map[string][][]int) {
	switch n := p.(type) {
	case Var:
		cp := append([]int(nil), path...)
		out[n.Name] = append(out[n.Name], cp)
	case App:
		for i, arg := range n.Args {
			child := make([]int, len(path)+1)
			copy(child, path)
			child[len(path)] = i + 1 // 1-indexed per spec.md §4.3.1
			collectVarPositions(arg, child, out)
		}
	}
}

func patternVariables(p Pattern) map[string]struct{} {
	set := make(map[string]struct{})
	var walk func(Pattern)
	walk = func(p Pattern) {
		switch n := p.(type) {
		case Var:
			set[n.Name] = struct{}{}
		case App:
			for _, a := range n.Args {
				walk(a)
			}
		}
	}
	walk(p)
	return set
}
