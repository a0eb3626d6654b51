package gcs

import "github.com/gitrdm/pbcert/pkg/gcs/opb"

// Table posts an extensional constraint over Vars: the allowed assignments
// are exactly the rows of Tuples. An implicit selector variable ranges over
// tuple indices (spec.md §4.7): post s >= 0, s < len(Tuples), then (1) drop
// any tuple a variable's current domain no longer supports, (2) remove any
// value with no remaining supporting tuple.
type Table struct {
	Vars   []IntegerVariableID
	Tuples [][]Integer

	selector IntegerVariableID
}

func (c *Table) Post(m *Model) error {
	for _, t := range c.Tuples {
		if len(t) != len(c.Vars) {
			return newBuildError("Table.Post", ErrMismatchedTupleWidth)
		}
	}
	sel, err := m.CreateIntegerVariable(0, Integer(len(c.Tuples)-1), "")
	if err != nil {
		return err
	}
	c.selector = sel

	// Model: one clause per (tuple, var) forbidding a tuple whose entry is
	// not in the variable's initial domain simultaneously with selecting
	// that tuple: s != t OR x_i = tuple[i].
	for t, row := range c.Tuples {
		for i, val := range row {
			litSel := m.names.ConditionLiteral(NotEqualTo(sel, Integer(t)))
			litVal := m.names.ConditionLiteral(EqualTo(c.Vars[i], val))
			m.model.PostConstraint(opb.Constraint{
				Terms: []opb.Term{
					{Coeff: 1, Atom: litSel.Atom, Negated: litSel.Negated},
					{Coeff: 1, Atom: litVal.Atom, Negated: litVal.Negated},
				},
				Cmp: opb.GreaterEq, RHS: 1,
			})
		}
	}

	triggers := TriggerSet{OnInstantiated: []int{sel.simple}, OnChange: []int{sel.simple}}
	for _, v := range c.Vars {
		if v.IsSimple() {
			triggers.OnChange = append(triggers.OnChange, v.simple)
		} else if v.IsView() {
			base, _, _ := v.baseTransform()
			triggers.OnChange = append(triggers.OnChange, base.simple)
		}
	}
	m.sched.Register("Table", triggers, func(store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
		return c.propagate(store, tracker)
	})
	return nil
}

// alive is recomputed from the current domains on every call rather than
// cached as mutable propagator state: the selector and variable domains
// already live on the trail, so deriving "alive" fresh each round keeps
// the propagator correct across backtracking with no extra bookkeeping.
func (c *Table) liveTuples(store *Store) []bool {
	alive := make([]bool, len(c.Tuples))
	for t, row := range c.Tuples {
		if !store.InDomain(c.selector, Integer(t)) {
			continue
		}
		ok := true
		for i, val := range row {
			if !store.InDomain(c.Vars[i], val) {
				ok = false
				break
			}
		}
		alive[t] = ok
	}
	return alive
}

func (c *Table) propagate(store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
	// (1) drop any selector value whose tuple no longer matches every
	// variable's current domain.
	for t, row := range c.Tuples {
		if !store.InDomain(c.selector, Integer(t)) {
			continue
		}
		for i, val := range row {
			if !store.InDomain(c.Vars[i], val) {
				reason := []Literal{Lit(NotEqualTo(c.Vars[i], val))}
				_, how, err := tracker.Infer(NotEqualTo(c.selector, Integer(t)), RUPJustification(), reason)
				if err != nil {
					return Enable, err
				}
				if how == contradictionMarker {
					return Enable, nil
				}
				break
			}
		}
	}

	alive := c.liveTuples(store)

	// (2) remove values with no remaining supporting tuple.
	for i, v := range c.Vars {
		if store.HasSingleValue(v) {
			continue
		}
		var toRemove []Integer
		store.ForEachValue(v, func(val Integer) bool {
			supported := false
			for t, row := range c.Tuples {
				if alive[t] && row[i] == val {
					supported = true
					break
				}
			}
			if !supported {
				toRemove = append(toRemove, val)
			}
			return true
		})
		for _, val := range toRemove {
			_, how, err := tracker.Infer(NotEqualTo(v, val), RUPJustification(), nil)
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
