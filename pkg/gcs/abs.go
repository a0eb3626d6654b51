package gcs

// Abs posts `R == |V|`, ported from the original Glasgow Constraint
// Solver's small standalone `abs` constraint (original_source/gcs/constraints/abs.cc):
// a cheap building block used internally (e.g. by distance-style
// reformulations of the triangle example) and promoted here to a
// first-class propagator.
type Abs struct {
	V, R IntegerVariableID
}

func (c *Abs) Post(m *Model) error {
	m.store.InferGreaterEqual(c.R, 0)

	triggers := TriggerSet{}
	addVar := func(v IntegerVariableID) {
		if v.IsSimple() {
			triggers.OnBounds = append(triggers.OnBounds, v.simple)
		} else if v.IsView() {
			base, _, _ := v.baseTransform()
			triggers.OnBounds = append(triggers.OnBounds, base.simple)
		}
	}
	addVar(c.V)
	addVar(c.R)
	m.sched.Register("Abs", triggers, func(store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
		return c.propagate(store, tracker)
	})
	return nil
}

func (c *Abs) propagate(store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
	vLo, vHi := store.LowerBound(c.V), store.UpperBound(c.V)
	maxAbs := MaxI(AbsI(vLo), AbsI(vHi))
	minAbs := Integer(0)
	if vLo > 0 {
		minAbs = vLo
	} else if vHi < 0 {
		minAbs = AbsI(vHi)
	}

	reasonV := []Literal{Lit(GreaterEqual(c.V, vLo)), Lit(LessThan(c.V, AddSat(vHi, 1)))}

	if _, how, err := tracker.Infer(LessThan(c.R, AddSat(maxAbs, 1)), RUPJustification(), reasonV); err != nil {
		return Enable, err
	} else if how == contradictionMarker {
		return Enable, nil
	}
	if _, how, err := tracker.Infer(GreaterEqual(c.R, minAbs), RUPJustification(), reasonV); err != nil {
		return Enable, err
	} else if how == contradictionMarker {
		return Enable, nil
	}

	rHi := store.UpperBound(c.R)
	reasonR := []Literal{Lit(LessThan(c.R, AddSat(rHi, 1)))}
	if vLo < -rHi {
		if _, how, err := tracker.Infer(GreaterEqual(c.V, NegSat(rHi)), RUPJustification(), reasonR); err != nil {
			return Enable, err
		} else if how == contradictionMarker {
			return Enable, nil
		}
	}
	if vHi > rHi {
		if _, how, err := tracker.Infer(LessThan(c.V, AddSat(rHi, 1)), RUPJustification(), reasonR); err != nil {
			return Enable, err
		} else if how == contradictionMarker {
			return Enable, nil
		}
	}
	return Enable, nil
}
