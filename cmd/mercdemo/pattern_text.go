package main

import (
	"fmt"
	"strconv"
	"unicode"

	"github.com/mmgbartels/merc/pkg/rewrite"
	"github.com/mmgbartels/merc/pkg/symbol"
)

// parsePattern reads the same S-expression shape pkg/term/text.go's
// FromText accepts, but produces a rewrite.Pattern instead of an interned
// term: an identifier starting with an uppercase letter is a Var, any
// other identifier (optionally applied to comma-separated arguments) is
// an App, and a decimal literal is an Int. This lives in cmd/mercdemo
// rather than pkg/rewrite because it is a CLI-only text convention
// (variable-by-capitalization), not part of spec.md §4.3.1's pattern
// model itself.
func parsePattern(sp *symbol.Pool, s string) (rewrite.Pattern, error) {
	ps := &patternParseState{sp: sp, s: s}
	p, err := ps.parse()
	if err != nil {
		return nil, err
	}
	ps.skipSpace()
	if ps.pos != len(ps.s) {
		return nil, fmt.Errorf("pattern text: unexpected trailing input at %d", ps.pos)
	}
	return p, nil
}

type patternParseState struct {
	sp  *symbol.Pool
	s   string
	pos int
}

func (ps *patternParseState) skipSpace() {
	for ps.pos < len(ps.s) && (ps.s[ps.pos] == ' ' || ps.s[ps.pos] == '\t') {
		ps.pos++
	}
}

func (ps *patternParseState) parse() (rewrite.Pattern, error) {
	ps.skipSpace()
	if ps.pos >= len(ps.s) {
		return nil, fmt.Errorf("pattern text: unexpected end of input")
	}
	if c := ps.s[ps.pos]; c == '-' || (c >= '0' && c <= '9') {
		return ps.parseInt()
	}
	name, err := ps.parseName()
	if err != nil {
		return nil, err
	}
	if unicode.IsUpper(rune(name[0])) {
		return rewrite.Var{Name: name}, nil
	}

	ps.skipSpace()
	var args []rewrite.Pattern
	if ps.pos < len(ps.s) && ps.s[ps.pos] == '(' {
		ps.pos++
		for {
			ps.skipSpace()
			if ps.pos < len(ps.s) && ps.s[ps.pos] == ')' {
				break
			}
			arg, err := ps.parse()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			ps.skipSpace()
			if ps.pos < len(ps.s) && ps.s[ps.pos] == ',' {
				ps.pos++
				continue
			}
			break
		}
		ps.skipSpace()
		if ps.pos >= len(ps.s) || ps.s[ps.pos] != ')' {
			return nil, fmt.Errorf("pattern text: expected ')' at %d", ps.pos)
		}
		ps.pos++
	}
	sym := ps.sp.Intern(name, uint32(len(args)))
	return rewrite.App{Symbol: sym, Args: args}, nil
}

func (ps *patternParseState) parseName() (string, error) {
	start := ps.pos
	for ps.pos < len(ps.s) {
		c := ps.s[ps.pos]
		if c == '(' || c == ')' || c == ',' || c == ' ' || c == '\t' {
			break
		}
		ps.pos++
	}
	if ps.pos == start {
		return "", fmt.Errorf("pattern text: expected identifier at %d", start)
	}
	return ps.s[start:ps.pos], nil
}

func (ps *patternParseState) parseInt() (rewrite.Pattern, error) {
	start := ps.pos
	if ps.s[ps.pos] == '-' {
		ps.pos++
	}
	digitsStart := ps.pos
	for ps.pos < len(ps.s) && ps.s[ps.pos] >= '0' && ps.s[ps.pos] <= '9' {
		ps.pos++
	}
	if ps.pos == digitsStart {
		return nil, fmt.Errorf("pattern text: malformed integer at %d", start)
	}
	v, err := strconv.ParseInt(ps.s[start:ps.pos], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("pattern text: %w", err)
	}
	return rewrite.Int{Value: v}, nil
}
