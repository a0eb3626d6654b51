package gcs

// ArithOp enumerates the binary operators Arithmetic supports (spec.md
// §4.7).
type ArithOp uint8

const (
	OpPlus ArithOp = iota
	OpMinus
	OpTimes
	OpDiv
	OpMod
	OpPow
)

// Arithmetic posts `Op(A, B) == R`. Plus/Minus run direct bound
// propagation; the rest build the full relation as a table over the
// current initial domains (spec.md §4.7). Division and modulo by zero are
// an Open Question in spec.md §9; this implementation's choice: b == 0 is
// simply excluded from B's domain at post time (DivCeil/DivFloor never see
// a zero divisor), matching the common CP convention of forbidding a
// zero divisor rather than defining a saturating result for it.
type Arithmetic struct {
	Op   ArithOp
	A, B IntegerVariableID
	R    IntegerVariableID
}

func (c *Arithmetic) Post(m *Model) error {
	switch c.Op {
	case OpPlus:
		return postLinearFromArith(m, []LinearTerm{{1, c.A}, {1, c.B}, {-1, c.R}}, 0)
	case OpMinus:
		return postLinearFromArith(m, []LinearTerm{{1, c.A}, {-1, c.B}, {-1, c.R}}, 0)
	case OpDiv, OpMod:
		m.store.InferNotEqual(c.B, 0)
	}
	return c.postTable(m)
}

// postLinearFromArith posts both the sum-equality model clause and bound
// propagation for Plus/Minus, reusing LinearEquals' machinery.
func postLinearFromArith(m *Model, terms []LinearTerm, rhs Integer) error {
	return (&LinearEquals{Terms: terms, RHS: rhs}).Post(m)
}

// postTable materialises every (a,b) pair in the current initial domains,
// computes r = op(a,b), and installs a Table propagator over (A,B,R).
func (c *Arithmetic) postTable(m *Model) error {
	var tuples [][]Integer
	m.store.ForEachValue(c.A, func(a Integer) bool {
		m.store.ForEachValue(c.B, func(b Integer) bool {
			r, ok := applyArithOp(c.Op, a, b)
			if ok && m.store.InDomain(c.R, r) {
				tuples = append(tuples, []Integer{a, b, r})
			}
			return true
		})
		return true
	})
	t := &Table{Vars: []IntegerVariableID{c.A, c.B, c.R}, Tuples: tuples}
	return t.Post(m)
}

func applyArithOp(op ArithOp, a, b Integer) (Integer, bool) {
	switch op {
	case OpTimes:
		return MulSat(a, b), true
	case OpDiv:
		if b == 0 {
			return 0, false
		}
		return DivFloor(a, b), true
	case OpMod:
		if b == 0 {
			return 0, false
		}
		m := a % b
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return m, true
	case OpPow:
		if b < 0 || b > 62 {
			return 0, false
		}
		result := Integer(1)
		for i := Integer(0); i < b; i++ {
			result = MulSat(result, a)
		}
		return result, true
	}
	return 0, false
}
