package rewrite

// Condition is one side-condition of a conditional rule: after
// substitution, both sides are rewritten to normal form, and the rule
// fires iff (nf(LHS) == nf(RHS)) == Equality. See spec.md §4.3.1.
type Condition struct {
	LHS, RHS Pattern
	Equality bool
}

// Rule is (lhs, rhs, conditions): lhs's free variables bind terms by
// matching; rhs uses a subset of them; conditions are checked in order
// after substitution, left to right, short-circuiting on the first
// failure (spec.md §4.3.3's ordering guarantees).
type Rule struct {
	LHS        Pattern
	RHS        Pattern
	Conditions []Condition
}

// equivClass records every position (spec.md's 1-indexed argument-index
// list) at which one non-linear variable occurs in a rule's LHS.
type equivClass struct {
	variable  string
	positions [][]int
}

// compiledRule is a Rule plus its precomputed non-linearity information,
// ready for matching.
type compiledRule struct {
	rule         Rule
	equivs       []equivClass
	headVars     map[string]struct{} // every variable occurring anywhere in lhs
	varPositions map[string][][]int  // every variable's occurrence positions, used to extract bindings
	insertion    int                 // original index, breaks ties per spec.md §4.3.3
}

func compileRule(r Rule, index int) (*compiledRule, error) {
	positions := make(map[string][][]int)
	collectVarPositions(r.LHS, nil, positions)

	bound := patternVariables(r.LHS)

	for name := range patternVariables(r.RHS) {
		if _, ok := bound[name]; !ok {
			return nil, ErrParse
		}
	}
	for _, c := range r.Conditions {
		for name := range patternVariables(c.LHS) {
			if _, ok := bound[name]; !ok {
				return nil, ErrInvalidArgument
			}
		}
		for name := range patternVariables(c.RHS) {
			if _, ok := bound[name]; !ok {
				return nil, ErrInvalidArgument
			}
		}
	}

	var equivs []equivClass
	for name, pos := range positions {
		if len(pos) > 1 {
			equivs = append(equivs, equivClass{variable: name, positions: pos})
		}
	}

	return &compiledRule{rule: r, equivs: equivs, headVars: bound, varPositions: positions, insertion: index}, nil
}
