package gcs

// SmartEntryOp enumerates the per-entry condition kinds a SmartTuple's
// columns may carry, following Mairy-Deville-Lecoutre 2015 (spec.md §4.7):
// a fixed constant, a reference to another column's variable compared with
// an operator, or set membership.
type SmartEntryOp uint8

const (
	SmartAny SmartEntryOp = iota // column unconstrained in this tuple
	SmartEq
	SmartNe
	SmartLt
	SmartGe
	SmartIn
)

// SmartEntry is one column's condition within a SmartTuple.
type SmartEntry struct {
	Op SmartEntryOp
	// Const is used by SmartEq/SmartNe/SmartLt/SmartGe when RefCol < 0.
	Const Integer
	// RefCol, if >= 0, compares this column against another column's
	// current value instead of Const (a "=var"/"op var" condition).
	RefCol int
	// Set is used by SmartIn.
	Set []Integer
}

// SmartTuple is a tuple whose components are conditions, not values: it
// activates when every entry holds (spec.md §4.7, GLOSSARY "Smart tuple").
type SmartTuple struct {
	Entries []SmartEntry
}

// SmartTable posts a table constraint compiled from smart tuples: each
// tuple's entries are evaluated directly against the current domains each
// round rather than compiled to an explicit forest, which is a direct but
// faithful rendition of the same semantics for the domain sizes this
// solver targets.
type SmartTable struct {
	Vars   []IntegerVariableID
	Tuples []SmartTuple
}

func (c *SmartTable) Post(m *Model) error {
	triggers := TriggerSet{}
	for _, v := range c.Vars {
		if v.IsSimple() {
			triggers.OnChange = append(triggers.OnChange, v.simple)
		} else if v.IsView() {
			base, _, _ := v.baseTransform()
			triggers.OnChange = append(triggers.OnChange, base.simple)
		}
	}
	m.sched.Register("SmartTable", triggers, func(store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
		return c.propagate(store, tracker)
	})
	return nil
}

// entryHoldsForValue reports whether entry e, evaluated against the
// current domains with column col's candidate value fixed to val, can
// possibly hold (used for per-value support checks) — for SmartIn/SmartEq
// etc. against another column it checks whether ANY value of the
// referenced column could satisfy the relation (optimistic/AC-ish check,
// not full GAC across every other column simultaneously).
func entryHoldsForValue(store *Store, vars []IntegerVariableID, col int, val Integer, e SmartEntry) bool {
	switch e.Op {
	case SmartAny:
		return true
	case SmartEq:
		if e.RefCol >= 0 {
			ok := false
			store.ForEachValue(vars[e.RefCol], func(other Integer) bool {
				if other == val {
					ok = true
					return false
				}
				return true
			})
			return ok
		}
		return val == e.Const
	case SmartNe:
		if e.RefCol >= 0 {
			ok := false
			store.ForEachValue(vars[e.RefCol], func(other Integer) bool {
				if other != val {
					ok = true
					return false
				}
				return true
			})
			return ok
		}
		return val != e.Const
	case SmartLt:
		if e.RefCol >= 0 {
			return val < store.UpperBound(vars[e.RefCol])
		}
		return val < e.Const
	case SmartGe:
		if e.RefCol >= 0 {
			return val >= store.LowerBound(vars[e.RefCol])
		}
		return val >= e.Const
	case SmartIn:
		for _, s := range e.Set {
			if s == val {
				return true
			}
		}
		return false
	}
	return false
}

// tupleCanHoldAtAll reports whether a tuple has at least one consistent
// witness across all columns given current domains (used to decide whether
// the tuple still contributes any support).
func tupleCanHoldAtAll(store *Store, vars []IntegerVariableID, t SmartTuple) bool {
	for col, e := range t.Entries {
		found := false
		store.ForEachValue(vars[col], func(val Integer) bool {
			if entryHoldsForValue(store, vars, col, val, e) {
				found = true
				return false
			}
			return true
		})
		if !found {
			return false
		}
	}
	return true
}

func (c *SmartTable) propagate(store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
	liveTuples := make([]SmartTuple, 0, len(c.Tuples))
	for _, t := range c.Tuples {
		if tupleCanHoldAtAll(store, c.Vars, t) {
			liveTuples = append(liveTuples, t)
		}
	}
	for col, v := range c.Vars {
		if store.HasSingleValue(v) {
			continue
		}
		var toRemove []Integer
		store.ForEachValue(v, func(val Integer) bool {
			supported := false
			for _, t := range liveTuples {
				if entryHoldsForValue(store, c.Vars, col, val, t.Entries[col]) {
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
