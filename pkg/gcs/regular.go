package gcs

// Transition is one DFA edge: from state, on label, to state.
type Transition struct {
	From  int
	Label Integer
	To    int
}

// Regular posts a constraint forcing (Vars[0], ..., Vars[n-1]) to spell out
// a string accepted by the DFA (States, Transitions, Accepting) starting
// from StartState, reading each variable's value as one alphabet symbol
// (spec.md §4.7).
type Regular struct {
	Vars        []IntegerVariableID
	StartState  int
	NumStates   int
	Transitions []Transition
	Accepting   []int
}

func (c *Regular) Post(m *Model) error {
	triggers := TriggerSet{}
	for _, v := range c.Vars {
		if v.IsSimple() {
			triggers.OnChange = append(triggers.OnChange, v.simple)
		} else if v.IsView() {
			base, _, _ := v.baseTransform()
			triggers.OnChange = append(triggers.OnChange, base.simple)
		}
	}
	accept := make(map[int]bool, len(c.Accepting))
	for _, s := range c.Accepting {
		accept[s] = true
	}
	byFrom := make(map[int][]Transition)
	byTo := make(map[int][]Transition)
	for _, t := range c.Transitions {
		byFrom[t.From] = append(byFrom[t.From], t)
		byTo[t.To] = append(byTo[t.To], t)
	}
	m.sched.Register("Regular", triggers, func(store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
		return propagateRegular(c, accept, byFrom, byTo, store, tracker)
	})
	return nil
}

// propagateRegular rebuilds, on every call, the set of DFA states reachable
// forward from the start state and backward (co-reachable) from an
// accepting state, restricted at each layer to edges whose label is still
// in that position's current domain; a value surviving only on edges with
// no live node on both ends is removed. Deletions iterate to a fixpoint
// within the call since removing a value can disconnect further edges.
func propagateRegular(c *Regular, accept map[int]bool, byFrom, byTo map[int][]Transition, store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
	n := len(c.Vars)
	changed := true
	for changed {
		changed = false

		// forward reachable[i] = set of states reachable after reading i
		// symbols along edges still consistent with domains[0..i-1].
		forward := make([]map[int]bool, n+1)
		forward[0] = map[int]bool{c.StartState: true}
		for i := 0; i < n; i++ {
			forward[i+1] = map[int]bool{}
			for s := range forward[i] {
				for _, t := range byFrom[s] {
					if store.InDomain(c.Vars[i], t.Label) {
						forward[i+1][t.To] = true
					}
				}
			}
		}

		// backward reachable[i] = set of states that can still reach
		// acceptance after reading symbols i..n-1.
		backward := make([]map[int]bool, n+1)
		backward[n] = map[int]bool{}
		for s := range accept {
			backward[n][s] = true
		}
		for i := n - 1; i >= 0; i-- {
			backward[i] = map[int]bool{}
			for s := 0; s < c.NumStates; s++ {
				for _, t := range byFrom[s] {
					if t.From != s {
						continue
					}
					if store.InDomain(c.Vars[i], t.Label) && backward[i+1][t.To] {
						backward[i][s] = true
					}
				}
			}
		}

		for i := 0; i < n; i++ {
			if store.HasSingleValue(c.Vars[i]) {
				continue
			}
			var toRemove []Integer
			store.ForEachValue(c.Vars[i], func(val Integer) bool {
				supported := false
				for s := range forward[i] {
					for _, t := range byFrom[s] {
						if t.Label == val && backward[i+1][t.To] {
							supported = true
							break
						}
					}
					if supported {
						break
					}
				}
				if !supported {
					toRemove = append(toRemove, val)
				}
				return true
			})
			for _, val := range toRemove {
				_, how, err := tracker.Infer(NotEqualTo(c.Vars[i], val), RUPJustification(), nil)
				if err != nil {
					return Enable, err
				}
				if how == contradictionMarker {
					return Enable, nil
				}
				changed = true
			}
		}
	}
	return Enable, nil
}
