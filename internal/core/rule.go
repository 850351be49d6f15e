package core

import (
	"fmt"
	"strings"
)

// Radius is the Chebyshev neighborhood radius every backend evaluates.
const Radius = 1

// MaxNeighbors is the largest possible live-neighbor count for the radius.
const MaxNeighbors = (2*Radius+1)*(2*Radius+1) - 1

// Rule encodes a two-state outer-totalistic rule as birth and survival
// bitmasks indexed by live-neighbor count.
type Rule struct {
	Birth   uint16
	Survive uint16
}

// DefaultRule is Conway's B3/S23.
var DefaultRule = Rule{Birth: 1 << 3, Survive: 1<<2 | 1<<3}

// Next returns the state a cell takes given its current state and live
// neighbor count.
func (r Rule) Next(alive bool, neighbors int) uint8 {
	mask := r.Birth
	if alive {
		mask = r.Survive
	}
	if mask&(1<<uint(neighbors)) != 0 {
		return 1
	}
	return 0
}

// String renders the rule in B/S notation.
func (r Rule) String() string {
	var b strings.Builder
	b.WriteByte('B')
	for n := 0; n <= MaxNeighbors; n++ {
		if r.Birth&(1<<uint(n)) != 0 {
			b.WriteByte(byte('0' + n))
		}
	}
	b.WriteString("/S")
	for n := 0; n <= MaxNeighbors; n++ {
		if r.Survive&(1<<uint(n)) != 0 {
			b.WriteByte(byte('0' + n))
		}
	}
	return b.String()
}

// ParseRule parses B/S rule notation such as "B3/S23". The bare "23/3" form
// with survival counts first is also accepted.
func ParseRule(s string) (Rule, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return Rule{}, fmt.Errorf("rule %q: want two parts separated by /", s)
	}
	a := strings.TrimSpace(parts[0])
	b := strings.TrimSpace(parts[1])

	aB := len(a) > 0 && (a[0] == 'B' || a[0] == 'b')
	bS := len(b) > 0 && (b[0] == 'S' || b[0] == 's')
	switch {
	case aB && bS:
		birth, err := parseCounts(s, a[1:])
		if err != nil {
			return Rule{}, err
		}
		survive, err := parseCounts(s, b[1:])
		if err != nil {
			return Rule{}, err
		}
		return Rule{Birth: birth, Survive: survive}, nil
	case !aB && !bS:
		survive, err := parseCounts(s, a)
		if err != nil {
			return Rule{}, err
		}
		birth, err := parseCounts(s, b)
		if err != nil {
			return Rule{}, err
		}
		return Rule{Birth: birth, Survive: survive}, nil
	}
	return Rule{}, fmt.Errorf("rule %q: mixed B/S and bare notation", s)
}

func parseCounts(rule, digits string) (uint16, error) {
	var mask uint16
	for _, r := range digits {
		if r < '0' || r > '0'+MaxNeighbors {
			return 0, fmt.Errorf("rule %q: neighbor count %q out of range", rule, string(r))
		}
		mask |= 1 << uint(r-'0')
	}
	return mask, nil
}
