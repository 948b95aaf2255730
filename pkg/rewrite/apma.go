package rewrite

import "github.com/mmgbartels/merc/pkg/symbol"

// matchKey is the "operation_id(symbol)" spec.md §4.3.2 transitions are
// indexed by, generalized to also cover integer-literal patterns: an App
// requirement is keyed by its symbol's stable pointer, an Int requirement
// by its literal value.
type matchKey struct {
	sym   *symbol.Symbol
	isInt bool
	lit   int64
}

// requirement is one position this rule's lhs demands a specific head
// symbol (or literal) at. Var positions impose no requirement — any
// subterm there matches — so they are not enumerated here; they are
// recorded separately (see compileRule's headVars/varPositions) purely
// for binding extraction and non-linearity checks.
type requirement struct {
	pos []int
	key matchKey
}

// requirementsFor flattens pat into the preorder sequence of (position,
// key) requirements a candidate term must satisfy to match pat, skipping
// Var subtrees (spec.md §4.3.2: "States carry a position... Transitions
// are indexed by (state, operation_id(symbol))"). The order is
// deterministic and depends only on tree shape (argument index), not on
// which symbols occupy it, which is what lets rules sharing a structural
// prefix share automaton states (spec.md's "adaptive" construction).
func requirementsFor(pat Pattern) []requirement {
	var out []requirement
	var walk func(p Pattern, pos []int)
	walk = func(p Pattern, pos []int) {
		switch n := p.(type) {
		case Var:
			// no requirement; matches anything
		case Int:
			out = append(out, requirement{pos: append([]int(nil), pos...), key: matchKey{isInt: true, lit: n.Value}})
		case App:
			out = append(out, requirement{pos: append([]int(nil), pos...), key: matchKey{sym: n.Symbol}})
			for i, arg := range n.Args {
				child := make([]int, len(pos)+1)
				copy(child, pos)
				child[len(pos)] = i + 1
				walk(arg, child)
			}
		case Lit:
			// An already-built ground term spliced in as a requirement is
			// not supported on the lhs side (Lit exists for rhs/condition
			// splicing only); lhs compilation never produces one.
		}
	}
	walk(pat, nil)
	return out
}

// matchAnnouncement is a rule that completes matching at some transition:
// spec.md §4.3.2's "(MatchAnnouncement, TermStackTemplate + equivalence
// classes + conditions)".
type matchAnnouncement struct {
	rule *compiledRule
}

// transition is keyed by (state, matchKey): spec.md §4.3.2.
type transitionKey struct {
	state int
	key   matchKey
}

type transition struct {
	// destination is the next state to continue matching at, or -1 if no
	// active rule needs more checks past this transition (terminal).
	destination int
	// announcements fire, in order, when this transition is taken — the
	// rules that are fully matched once the symbol/literal at this
	// transition's key is observed.
	announcements []matchAnnouncement
}

// automaton is the compiled APMA: states carry only a position (spec.md
// §4.3.2); all the matching logic lives in the transitions map, indexed
// by (state, key).
type automaton struct {
	positions   [][]int // state index -> position to inspect
	transitions map[transitionKey]*transition
}

// activeRule is a rule still being discriminated at the state under
// construction, together with the requirements it has yet to satisfy.
type activeRule struct {
	rule     *compiledRule
	pending  []requirement
}

// buildAutomaton compiles rules into an APMA by recursively partitioning
// the active rule set at each state by its next required key, exactly as
// spec.md §4.3.2 describes: "look at the subterm at the state's position,
// take the transition keyed by that head symbol's operation id".
func buildAutomaton(rules []*compiledRule) *automaton {
	a := &automaton{transitions: make(map[transitionKey]*transition)}

	active := make([]activeRule, len(rules))
	for i, r := range rules {
		active[i] = activeRule{rule: r, pending: requirementsFor(r.rule.LHS)}
	}

	a.positions = append(a.positions, nil) // state 0 is the root position ε
	a.build(0, active)
	return a
}

// build partitions active by the key each rule's next pending requirement
// demands, recording one transition per distinct key and recursing for
// any group whose rules still have further requirements after this one.
func (a *automaton) build(state int, active []activeRule) {
	groups := make(map[matchKey][]activeRule)
	var order []matchKey
	for _, ar := range active {
		if len(ar.pending) == 0 {
			continue // should not happen: requirementsFor always emits >=1 for an App lhs root
		}
		k := ar.pending[0].key
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], activeRule{rule: ar.rule, pending: ar.pending[1:]})
	}

	for _, k := range order {
		members := groups[k]
		t := &transition{destination: -1}
		var deeper []activeRule
		for _, m := range members {
			if len(m.pending) == 0 {
				t.announcements = append(t.announcements, matchAnnouncement{rule: m.rule})
			} else {
				deeper = append(deeper, m)
			}
		}
		sortAnnouncementsByInsertion(t.announcements)
		if len(deeper) > 0 {
			t.destination = len(a.positions)
			a.positions = append(a.positions, deeper[0].pending[0].pos)
			a.transitions[transitionKey{state: state, key: k}] = t
			a.build(t.destination, deeper)
			continue
		}
		a.transitions[transitionKey{state: state, key: k}] = t
	}
}

func sortAnnouncementsByInsertion(anns []matchAnnouncement) {
	for i := 1; i < len(anns); i++ {
		for j := i; j > 0 && anns[j].rule.insertion < anns[j-1].rule.insertion; j-- {
			anns[j], anns[j-1] = anns[j-1], anns[j]
		}
	}
}
