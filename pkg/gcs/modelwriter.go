package gcs

import (
	"bufio"
	"fmt"
	"io"

	"github.com/gitrdm/pbcert/pkg/gcs/opb"
)

// ModelWriter is the pseudo-Boolean model writer (C6). It outputs, before
// search, a header with the total number of 0/1 variables and constraints,
// then one line per constraint, numbered in emission order; PostConstraint
// returns the line number assigned so callers (propagators, C11) can
// reference it later from a proof derivation.
type ModelWriter struct {
	names  *NameTracker
	lines  []opb.Constraint
	objective *opb.Objective
}

func newModelWriter(names *NameTracker) *ModelWriter {
	return &ModelWriter{names: names}
}

// PostConstraint appends a constraint to the model and returns its 1-based
// line number in emission order.
func (mw *ModelWriter) PostConstraint(c opb.Constraint) int {
	mw.lines = append(mw.lines, c)
	return len(mw.lines)
}

// SetObjective records the objective line (min or max over weighted atoms).
func (mw *ModelWriter) SetObjective(obj opb.Objective) {
	mw.objective = &obj
}

// NumConstraints reports how many constraint lines have been posted so far.
func (mw *ModelWriter) NumConstraints() int { return len(mw.lines) }

// LineAt returns the constraint posted at 1-based line number n.
func (mw *ModelWriter) LineAt(n int) (opb.Constraint, bool) {
	if n < 1 || n > len(mw.lines) {
		return opb.Constraint{}, false
	}
	return mw.lines[n-1], true
}

// WriteTo serialises the full OPB model: header, objective (if any), then
// every posted constraint in order.
func (mw *ModelWriter) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, opb.Header(mw.names.NumAtoms(), len(mw.lines)))
	if mw.objective != nil {
		fmt.Fprintln(bw, mw.objective.Render())
	}
	for _, c := range mw.lines {
		fmt.Fprintln(bw, c.ModelLine())
	}
	return bw.Flush()
}
