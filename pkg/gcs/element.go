package gcs

import "github.com/gitrdm/pbcert/pkg/gcs/opb"

// Element posts `Array[Idx] == Var` (spec.md §4.7). Propagation enforces
// idx in [0,len(array)), var in the union of dom(array[idx=i]) over live i,
// and per-value support checks in both directions.
type Element struct {
	Var   IntegerVariableID
	Idx   IntegerVariableID
	Array []IntegerVariableID
}

func (c *Element) Post(m *Model) error {
	if _, how := m.store.InferGreaterEqual(c.Idx, 0); how == contradictionMarker {
		return newBuildError("Element.Post", ErrEmptyDomain)
	}
	m.store.InferLess(c.Idx, Integer(len(c.Array)))

	// Model: one clause per (i, v): idx != i OR array[i] != v OR var = v.
	for i, av := range c.Array {
		m.store.ForEachValue(av, func(v Integer) bool {
			litIdx := m.names.ConditionLiteral(NotEqualTo(c.Idx, Integer(i)))
			litArr := m.names.ConditionLiteral(NotEqualTo(av, v))
			litVar := m.names.ConditionLiteral(EqualTo(c.Var, v))
			m.model.PostConstraint(opb.Constraint{
				Terms: []opb.Term{
					{Coeff: 1, Atom: litIdx.Atom, Negated: litIdx.Negated},
					{Coeff: 1, Atom: litArr.Atom, Negated: litArr.Negated},
					{Coeff: 1, Atom: litVar.Atom, Negated: litVar.Negated},
				},
				Cmp: opb.GreaterEq, RHS: 1,
			})
			return true
		})
	}

	triggers := TriggerSet{OnChange: []int{}}
	addVar := func(v IntegerVariableID) {
		if v.IsSimple() {
			triggers.OnChange = append(triggers.OnChange, v.simple)
		} else if v.IsView() {
			base, _, _ := v.baseTransform()
			triggers.OnChange = append(triggers.OnChange, base.simple)
		}
	}
	addVar(c.Var)
	addVar(c.Idx)
	for _, av := range c.Array {
		addVar(av)
	}
	m.sched.Register("Element", triggers, func(store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
		return c.propagate(store, tracker)
	})
	return nil
}

func (c *Element) propagate(store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
	// idx values whose array cell is now disjoint from var's domain die.
	var deadIdx []Integer
	store.ForEachValue(c.Idx, func(i Integer) bool {
		av := c.Array[i]
		disjoint := true
		store.ForEachValue(av, func(v Integer) bool {
			if store.InDomain(c.Var, v) {
				disjoint = false
				return false
			}
			return true
		})
		if disjoint {
			deadIdx = append(deadIdx, i)
		}
		return true
	})
	for _, i := range deadIdx {
		_, how, err := tracker.Infer(NotEqualTo(c.Idx, i), RUPJustification(), nil)
		if err != nil {
			return Enable, err
		}
		if how == contradictionMarker {
			return Enable, nil
		}
	}

	// var values with no supporting (idx,array[idx]) pair die.
	if !store.HasSingleValue(c.Var) {
		var deadVal []Integer
		store.ForEachValue(c.Var, func(v Integer) bool {
			supported := false
			store.ForEachValue(c.Idx, func(i Integer) bool {
				if store.InDomain(c.Array[i], v) {
					supported = true
					return false
				}
				return true
			})
			if !supported {
				deadVal = append(deadVal, v)
			}
			return true
		})
		for _, v := range deadVal {
			_, how, err := tracker.Infer(NotEqualTo(c.Var, v), RUPJustification(), nil)
			if err != nil {
				return Enable, err
			}
			if how == contradictionMarker {
				return Enable, nil
			}
		}
	}

	// If idx is fixed, the loops above keep only var's values found in
	// array[idx]; values of array[idx] missing from var are not removed.
	// When idx is a singleton and one of var / array[idx] is a singleton,
	// the other is fixed to the same value.
	if store.HasSingleValue(c.Idx) {
		i := store.Value(c.Idx)
		av := c.Array[i]
		if store.HasSingleValue(av) && !store.HasSingleValue(c.Var) {
			val := store.Value(av)
			_, how, err := tracker.Infer(EqualTo(c.Var, val), RUPJustification(),
				[]Literal{Lit(EqualTo(c.Idx, i)), Lit(EqualTo(av, val))})
			if err != nil {
				return Enable, err
			}
			if how == contradictionMarker {
				return Enable, nil
			}
		}
		if store.HasSingleValue(c.Var) && !store.HasSingleValue(av) {
			val := store.Value(c.Var)
			_, how, err := tracker.Infer(EqualTo(av, val), RUPJustification(),
				[]Literal{Lit(EqualTo(c.Idx, i)), Lit(EqualTo(c.Var, val))})
			if err != nil {
				return Enable, err
			}
			if how == contradictionMarker {
				return Enable, nil
			}
		}
	}
	return Enable, nil
}
