// Package opb implements the low-level text encodings for the OPB
// pseudo-Boolean model file and the cutting-planes proof file described in
// spec.md §6. It knows nothing about the solver's domains or propagators —
// only how to render terms, constraints, and proof steps as lines of text.
package opb

import (
	"fmt"
	"strconv"
	"strings"
)

// Term is one `±coeff xAtom` or `±coeff ~xAtom` summand.
type Term struct {
	Coeff    int64
	Atom     int
	Negated  bool // true renders "~xN"
}

func (t Term) String() string {
	lit := "x" + strconv.Itoa(t.Atom)
	if t.Negated {
		lit = "~" + lit
	}
	sign := "+"
	coeff := t.Coeff
	if coeff < 0 {
		sign = "-"
		coeff = -coeff
	}
	return fmt.Sprintf("%s%d %s", sign, coeff, lit)
}

// Comparator is the right-hand-side relation of a constraint: `>=` or `=`.
type Comparator string

const (
	GreaterEq Comparator = ">="
	Eq        Comparator = "="
)

// Constraint is one weighted-sum line of the OPB model or a `rup`/derived
// constraint in the proof stream.
type Constraint struct {
	Terms []Term
	Cmp   Comparator
	RHS   int64
}

// Render writes the constraint body without a trailing terminator, e.g.
// "+1 x1 +1 x2 >= 1".
func (c Constraint) Render() string {
	parts := make([]string, 0, len(c.Terms)+2)
	for _, t := range c.Terms {
		parts = append(parts, t.String())
	}
	parts = append(parts, string(c.Cmp), strconv.FormatInt(c.RHS, 10))
	return strings.Join(parts, " ")
}

// ModelLine renders a full OPB constraint line terminated with ";".
func (c Constraint) ModelLine() string {
	return c.Render() + " ;"
}

// Objective renders a `min:`/`max:` objective line.
type Objective struct {
	Minimise bool
	Terms    []Term
}

func (o Objective) Render() string {
	parts := make([]string, 0, len(o.Terms)+1)
	if o.Minimise {
		parts = append(parts, "min:")
	} else {
		parts = append(parts, "max:")
	}
	for _, t := range o.Terms {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, " ") + " ;"
}

// Header renders the OPB preamble line.
func Header(numVars, numConstraints int) string {
	return fmt.Sprintf("* #variable= %d #constraint= %d", numVars, numConstraints)
}
