package opb

import (
	"fmt"
	"strconv"
	"strings"
)

// ProofLevel is the scope at which a derived proof line may be deleted, per
// spec.md §4.4: Top lines are permanent, Current lines are erased on
// backtrack, Temporary lines are erased at the end of the current
// propagation round.
type ProofLevel uint8

const (
	Top ProofLevel = iota
	Current
	Temporary
)

// Preamble renders the two fixed header lines of a proof file.
func Preamble(version int) []string {
	return []string{
		fmt.Sprintf("pseudo-Boolean proof version %d", version),
		"f",
	}
}

// RUPLine renders a `rup <constraint> ;` line, optionally followed by a
// `; reason <lits>` clause naming the literals the checker should unit
// propagate from first.
func RUPLine(c Constraint, reasonAtoms []Term) string {
	var b strings.Builder
	b.WriteString("rup ")
	b.WriteString(c.Render())
	if len(reasonAtoms) > 0 {
		b.WriteString(" ; reason ")
		for i, t := range reasonAtoms {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(t.String())
		}
	}
	b.WriteString(" ;")
	return b.String()
}

// PolStep is one operator in a cutting-planes postfix derivation:
// addition, non-negative scaling, division, or saturation applied to
// previously emitted constraint line numbers.
type PolStep struct {
	// Exactly one of LineRef (>0) or Op is set; Op is "+","*","d","s".
	LineRef int
	Op      string
	Operand int64 // multiplier for "*", divisor for "d"
}

// PolLine renders a `pol <postfix>` cutting-planes derivation line.
func PolLine(steps []PolStep) string {
	parts := make([]string, 0, len(steps))
	for _, s := range steps {
		switch {
		case s.Op == "+":
			parts = append(parts, "+")
		case s.Op == "s":
			parts = append(parts, "s")
		case s.Op == "*":
			parts = append(parts, strconv.FormatInt(s.Operand, 10), "*")
		case s.Op == "d":
			parts = append(parts, strconv.FormatInt(s.Operand, 10), "d")
		default:
			parts = append(parts, strconv.Itoa(s.LineRef))
		}
	}
	return "pol " + strings.Join(parts, " ")
}

// LevelOpen renders a `# <level>` level-open marker.
func LevelOpen(level int) string {
	return fmt.Sprintf("# %d", level)
}

// Delete renders a `del id <lines>` deletion line.
func Delete(lines []int) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = strconv.Itoa(l)
	}
	return "del id " + strings.Join(parts, " ")
}

// Conclusion kinds for the proof's final line.
const (
	ConcludeNone        = "output NONE"
	ConcludeUnsat       = "conclusion UNSAT"
	ConcludeEnd         = "end pseudo-Boolean proof"
)

// ConcludeBounds renders `conclusion BOUNDS <lb> <ub>`.
func ConcludeBounds(lb, ub int64) string {
	return fmt.Sprintf("conclusion BOUNDS %d %d", lb, ub)
}
