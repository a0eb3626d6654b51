package gcs

import (
	"fmt"

	"github.com/gitrdm/pbcert/pkg/gcs/opb"
)

// LinearTerm is one coefficient*variable summand of a linear constraint.
type LinearTerm struct {
	Coeff Integer
	Var   IntegerVariableID
}

// LinearInequality posts `sum(Terms) <= RHS` (spec.md §4.7). LessEqual is
// the canonical form; GreaterEqual, Equals, and NotEquals are reductions
// built from it by LinearLessEqual/LinearGreaterEqual/LinearEquals/
// LinearNotEquals below.
type LinearInequality struct {
	Terms []LinearTerm
	RHS   Integer

	modelLine int
}

// LinearLessEqual constructs `sum(terms) <= rhs`.
func LinearLessEqual(terms []LinearTerm, rhs Integer) *LinearInequality {
	return &LinearInequality{Terms: terms, RHS: rhs}
}

// LinearGreaterEqual constructs `sum(terms) >= rhs` by negating every
// coefficient: `sum(-terms) <= -rhs`.
func LinearGreaterEqual(terms []LinearTerm, rhs Integer) *LinearInequality {
	neg := make([]LinearTerm, len(terms))
	for i, t := range terms {
		neg[i] = LinearTerm{Coeff: NegSat(t.Coeff), Var: t.Var}
	}
	return &LinearInequality{Terms: neg, RHS: NegSat(rhs)}
}

// LinearEquals posts both directions of `sum(terms) == rhs` as two bound
// propagators (<= and >=) sharing one model constraint (an equality is
// written as a single `=` line in the OPB model; see Post).
type LinearEquals struct {
	Terms []LinearTerm
	RHS   Integer
}

func (c *LinearEquals) Post(m *Model) error {
	le := LinearLessEqual(c.Terms, c.RHS)
	ge := LinearGreaterEqual(c.Terms, c.RHS)
	line := postEqualityModelLine(m, c.Terms, c.RHS)
	le.modelLine = line
	ge.modelLine = line
	if err := le.postPropagatorOnly(m); err != nil {
		return err
	}
	return ge.postPropagatorOnly(m)
}

func postEqualityModelLine(m *Model, terms []LinearTerm, rhs Integer) int {
	obpTerms, constOffset := linearToOPBTerms(m, terms)
	return m.model.PostConstraint(opb.Constraint{Terms: obpTerms, Cmp: opb.Eq, RHS: int64(rhs) - constOffset})
}

// LinearNotEquals posts `sum(terms) != rhs` using a reified pair (one of
// the two strict inequalities must hold); see LinearEqualityIff.
type LinearNotEquals struct {
	Terms []LinearTerm
	RHS   Integer
}

func (c *LinearNotEquals) Post(m *Model) error {
	// sum != rhs  <=>  sum <= rhs-1  OR  sum >= rhs+1.
	// Model as a disjunctive pair of reified inequalities sharing a flag.
	flag := newProofFlagFor(m, fmt.Sprintf("ne_%d", len(m.branchVars)))
	le := LinearLessEqual(c.Terms, SubSat(c.RHS, 1))
	ge := LinearGreaterEqual(c.Terms, AddSat(c.RHS, 1))
	reifLE := &LinearEqualityIff{Inner: le, Flag: flag}
	reifGE := &LinearEqualityIff{Inner: ge, Flag: flag.Negate()}
	if err := reifLE.Post(m); err != nil {
		return err
	}
	return reifGE.Post(m)
}

func newProofFlagFor(m *Model, tag string) ProofFlag {
	idx := len(m.allFlags)
	m.allFlags = append(m.allFlags, tag)
	if m.Proving() {
		m.names.RegisterFlag(idx)
	}
	return ProofFlag{index: idx, positive: true}
}

var _ Constraint = (*LinearInequality)(nil)

// Post registers the propagator and writes the `-sum(terms) >= -rhs`-shaped
// weighted-sum model clause (the <= constraint in OPB's >= form).
func (c *LinearInequality) Post(m *Model) error {
	terms, constOffset := linearToOPBTerms(m, c.Terms)
	c.modelLine = m.model.PostConstraint(opb.Constraint{Terms: negateForGE(terms), Cmp: opb.GreaterEq, RHS: -(int64(c.RHS) - constOffset)})
	return c.postPropagatorOnly(m)
}

func negateForGE(terms []opb.Term) []opb.Term {
	out := make([]opb.Term, len(terms))
	for i, t := range terms {
		out[i] = opb.Term{Coeff: -t.Coeff, Atom: t.Atom, Negated: t.Negated}
	}
	return out
}

// linearToOPBTerms is a best-effort bridge from the solver's linear terms
// (over Integer-domain variables) to OPB 0/1 literal terms: a constant
// term is folded into the returned offset, and every other term's
// coefficient is attached to the atom of the condition `var >= current
// lower bound`. The resulting line names one such nominal atom per variable,
// not the variable's value encoding; propagation does the arithmetic in
// Integer space directly.
func linearToOPBTerms(m *Model, terms []LinearTerm) ([]opb.Term, int64) {
	out := make([]opb.Term, 0, len(terms))
	var constOffset int64
	for _, t := range terms {
		if t.Var.IsConstant() {
			constOffset += int64(t.Coeff) * int64(t.Var.ConstantValue())
			continue
		}
		lit := m.names.ConditionLiteral(GreaterEqual(t.Var, m.store.LowerBound(t.Var)))
		out = append(out, opb.Term{Coeff: int64(t.Coeff), Atom: lit.Atom, Negated: lit.Negated})
	}
	return out, constOffset
}

// postPropagatorOnly installs the bound-propagation closure without
// writing a model clause (used by LinearEquals, which writes a single `=`
// line for both directions).
func (c *LinearInequality) postPropagatorOnly(m *Model) error {
	vars := make([]IntegerVariableID, len(c.Terms))
	for i, t := range c.Terms {
		vars[i] = t.Var
	}
	triggers := TriggerSet{}
	for _, t := range c.Terms {
		if t.Var.IsSimple() {
			triggers.OnBounds = append(triggers.OnBounds, t.Var.simple)
		} else if t.Var.IsView() {
			base, _, _ := t.Var.baseTransform()
			triggers.OnBounds = append(triggers.OnBounds, base.simple)
		}
	}
	m.sched.Register("LinearInequality", triggers, func(store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
		return propagateLinear(c.Terms, c.RHS, c.modelLine, store, tracker)
	})
	return nil
}

// propagateLinear implements spec.md §4.7's bound reasoning: for each
// variable xj, let M = b - sum_{i!=j} ai*(min if ai>0 else max); infer
// xj <= floor(M/aj) when aj > 0, or xj >= ceil(M/aj) when aj < 0.
func propagateLinear(terms []LinearTerm, rhs Integer, modelLine int, store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
	for j, tj := range terms {
		if tj.Coeff == 0 || tj.Var.IsConstant() {
			continue
		}
		m := rhs
		for i, ti := range terms {
			if i == j {
				continue
			}
			if ti.Coeff > 0 {
				m = SubSat(m, MulSat(ti.Coeff, store.LowerBound(ti.Var)))
			} else {
				m = SubSat(m, MulSat(ti.Coeff, store.UpperBound(ti.Var)))
			}
		}

		reason := make([]Literal, 0, len(terms)-1)
		for i, ti := range terms {
			if i == j {
				continue
			}
			if ti.Coeff > 0 {
				reason = append(reason, Lit(GreaterEqual(ti.Var, store.LowerBound(ti.Var))))
			} else {
				reason = append(reason, Lit(LessThan(ti.Var, AddSat(store.UpperBound(ti.Var), 1))))
			}
		}

		var lit IntegerVariableCondition
		if tj.Coeff > 0 {
			bound := DivFloor(m, tj.Coeff)
			if bound >= store.UpperBound(tj.Var) {
				continue
			}
			lit = LessThan(tj.Var, AddSat(bound, 1))
		} else {
			bound := DivCeil(m, tj.Coeff) // tj.Coeff<0: xj >= m/aj, rounding toward +inf of the quotient
			if bound <= store.LowerBound(tj.Var) {
				continue
			}
			lit = GreaterEqual(tj.Var, bound)
		}

		justification := RUPJustification()
		if modelLine != 0 {
			justification = ExplicitlyBy(func(it *InferenceTracker) error {
				_, err := it.RawRUP(opb.Constraint{Terms: []opb.Term{it.Names().ConditionLiteral(lit)}, Cmp: opb.GreaterEq, RHS: 1}, reason)
				return err
			})
		}
		_, how, err := tracker.Infer(lit, justification, reason)
		if err != nil {
			return Enable, err
		}
		if how == contradictionMarker {
			return Enable, nil
		}
	}
	return Enable, nil
}

// LinearEqualityIff reifies an inner linear (in)equality behind a
// ProofFlag or a condition literal: Inner holds iff Flag (spec.md §4.7's
// "LinearEqualityIff(l, b, cond)"). Written as two reified inequalities at
// post time by construction of its two halves by callers (see
// LinearNotEquals for a worked example); this type itself simply gates
// Inner's propagator behind the current truth value of Flag/Cond.
type LinearEqualityIff struct {
	Inner *LinearInequality
	Flag  ProofFlag
	Cond  *IntegerVariableCondition // alternative to Flag: gate on a condition instead
}

func (c *LinearEqualityIff) Post(m *Model) error {
	terms, constOffset := linearToOPBTerms(m, c.Inner.Terms)
	line := m.model.PostConstraint(opb.Constraint{Terms: negateForGE(terms), Cmp: opb.GreaterEq, RHS: -(int64(c.Inner.RHS) - constOffset)})
	c.Inner.modelLine = line

	triggers := TriggerSet{}
	for _, t := range c.Inner.Terms {
		if t.Var.IsSimple() {
			triggers.OnBounds = append(triggers.OnBounds, t.Var.simple)
		} else if t.Var.IsView() {
			base, _, _ := t.Var.baseTransform()
			triggers.OnBounds = append(triggers.OnBounds, base.simple)
		}
	}
	m.sched.Register("LinearEqualityIff", triggers, func(store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
		if !c.guardHolds(store) {
			return Enable, nil
		}
		return propagateLinear(c.Inner.Terms, c.Inner.RHS, c.Inner.modelLine, store, tracker)
	})
	return nil
}

func (c *LinearEqualityIff) guardHolds(store *Store) bool {
	if c.Cond != nil {
		return store.Satisfies(*c.Cond)
	}
	// A bare ProofFlag with no backing decision variable is treated as an
	// always-active guard in the absence of a reification source variable;
	// callers that need the flag to gate on real state should use Cond.
	return c.Flag.positive
}
