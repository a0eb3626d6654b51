package gcs

import "github.com/gitrdm/pbcert/pkg/gcs/opb"

// AtMostOne posts "at most one of these conditions holds", ported from the
// original Glasgow Constraint Solver's standalone `at_most_one` constraint
// (original_source/gcs/constraints/at_most_one.cc); AllDifferent's model
// already builds instances of exactly this shape per value, and it is
// promoted here to a first-class, independently postable propagator.
type AtMostOne struct {
	Conditions []IntegerVariableCondition
}

func (c *AtMostOne) Post(m *Model) error {
	terms := make([]opb.Term, 0, len(c.Conditions))
	for _, cond := range c.Conditions {
		lit := m.names.ConditionLiteral(cond)
		terms = append(terms, lit)
	}
	for i := 0; i < len(terms); i++ {
		for j := i + 1; j < len(terms); j++ {
			m.model.PostConstraint(opb.Constraint{
				Terms: []opb.Term{
					{Coeff: 1, Atom: terms[i].Atom, Negated: !terms[i].Negated},
					{Coeff: 1, Atom: terms[j].Atom, Negated: !terms[j].Negated},
				},
				Cmp: opb.GreaterEq, RHS: 1,
			})
		}
	}

	triggers := TriggerSet{}
	for _, cond := range c.Conditions {
		if cond.Var.IsSimple() {
			triggers.OnInstantiated = append(triggers.OnInstantiated, cond.Var.simple)
		} else if cond.Var.IsView() {
			base, _, _ := cond.Var.baseTransform()
			triggers.OnInstantiated = append(triggers.OnInstantiated, base.simple)
		}
	}
	m.sched.Register("AtMostOne", triggers, func(store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
		return c.propagate(store, tracker)
	})
	return nil
}

func (c *AtMostOne) propagate(store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
	holding := -1
	for i, cond := range c.Conditions {
		if store.Satisfies(cond) {
			holding = i
			break
		}
	}
	if holding < 0 {
		return Enable, nil
	}
	for i, cond := range c.Conditions {
		if i == holding {
			continue
		}
		neg := cond.Negate()
		if store.Satisfies(neg) {
			continue
		}
		reason := []Literal{Lit(c.Conditions[holding])}
		_, how, err := tracker.Infer(neg, RUPJustification(), reason)
		if err != nil {
			return Enable, err
		}
		if how == contradictionMarker {
			return Enable, nil
		}
	}
	return Enable, nil
}
