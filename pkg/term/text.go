package term

import (
	"strconv"

	"github.com/mmgbartels/merc/pkg/symbol"
)

// FromText parses the canonical S-expression text form spec.md §6
// describes ("name" for constants, "name(a1,...,an)" for applications,
// decimal literals for integers) and returns the corresponding Handle.
// Parsing recurses on the text's own nesting, not on term depth built
// from already-reduced children, so it is exempt from the no-host-recursion
// requirement that applies to term construction proper (spec.md §4.2.6)
// and rewrite evaluation (§4.3.3); well-formed rule/term text is expected
// to be shallow relative to the terms it denotes.
func (p *Pool) FromText(w *Worker, sp *symbol.Pool, s string) (Handle, error) {
	ps := &parseState{sp: sp, p: p, w: w, s: s}
	h, err := ps.parseTerm()
	if err != nil {
		return Handle{}, err
	}
	ps.skipSpace()
	if ps.pos != len(ps.s) {
		return Handle{}, ErrParse
	}
	return h, nil
}

type parseState struct {
	sp  *symbol.Pool
	p   *Pool
	w   *Worker
	s   string
	pos int
}

func (ps *parseState) skipSpace() {
	for ps.pos < len(ps.s) && (ps.s[ps.pos] == ' ' || ps.s[ps.pos] == '\t' || ps.s[ps.pos] == '\n') {
		ps.pos++
	}
}

func (ps *parseState) parseTerm() (Handle, error) {
	ps.skipSpace()
	start := ps.pos
	if start < len(ps.s) && (ps.s[start] == '-' || (ps.s[start] >= '0' && ps.s[start] <= '9')) {
		return ps.parseInt()
	}
	name, err := ps.parseName()
	if err != nil {
		return Handle{}, err
	}
	ps.skipSpace()
	var args []Ref
	var handles []Handle
	defer func() {
		for _, child := range handles {
			child.Release()
		}
	}()
	if ps.pos < len(ps.s) && ps.s[ps.pos] == '(' {
		ps.pos++
		for {
			ps.skipSpace()
			if ps.pos < len(ps.s) && ps.s[ps.pos] == ')' {
				ps.pos++
				break
			}
			if len(args) > 0 {
				if ps.pos >= len(ps.s) || ps.s[ps.pos] != ',' {
					return Handle{}, ErrParse
				}
				ps.pos++
			}
			h, err := ps.parseTerm()
			if err != nil {
				return Handle{}, err
			}
			handles = append(handles, h)
			args = append(args, h.Ref())
			ps.skipSpace()
		}
	}
	sym := ps.sp.Intern(name, uint32(len(args)))
	return ps.p.Create(ps.w, sym, args)
}

func (ps *parseState) parseInt() (Handle, error) {
	start := ps.pos
	if ps.s[ps.pos] == '-' {
		ps.pos++
	}
	digitsStart := ps.pos
	for ps.pos < len(ps.s) && ps.s[ps.pos] >= '0' && ps.s[ps.pos] <= '9' {
		ps.pos++
	}
	if ps.pos == digitsStart {
		return Handle{}, ErrParse
	}
	v, err := strconv.ParseInt(ps.s[start:ps.pos], 10, 64)
	if err != nil {
		return Handle{}, ErrParse
	}
	return ps.p.CreateInt(ps.w, v), nil
}

func (ps *parseState) parseName() (string, error) {
	start := ps.pos
	for ps.pos < len(ps.s) {
		c := ps.s[ps.pos]
		if c == '(' || c == ')' || c == ',' || c == ' ' || c == '\t' || c == '\n' {
			break
		}
		ps.pos++
	}
	if ps.pos == start {
		return "", ErrParse
	}
	return ps.s[start:ps.pos], nil
}
