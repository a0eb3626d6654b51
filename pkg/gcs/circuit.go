package gcs

// Circuit posts the Hamiltonian-circuit constraint over Succ: Succ is a
// permutation of [0,n) (AllDifferent) and the functional graph it defines
// is a single n-cycle (spec.md §4.7). It inherits AllDifferent for the
// permutation part and adds chain-based sub-cycle elimination: no value
// may close a cycle shorter than n.
type Circuit struct {
	Succ    []IntegerVariableID
	Options SCCOptions
}

func (c *Circuit) Post(m *Model) error {
	ad := &AllDifferent{Vars: c.Succ, GAC: true}
	if err := ad.Post(m); err != nil {
		return err
	}
	// Exclude self-loops up front (a length-1 cycle never forms a
	// Hamiltonian circuit unless n==1).
	n := len(c.Succ)
	if n > 1 {
		for i := range c.Succ {
			m.store.InferNotEqual(c.Succ[i], Integer(i))
		}
	}

	triggers := TriggerSet{}
	for _, v := range c.Succ {
		if v.IsSimple() {
			triggers.OnInstantiated = append(triggers.OnInstantiated, v.simple)
			triggers.OnChange = append(triggers.OnChange, v.simple)
		} else if v.IsView() {
			base, _, _ := v.baseTransform()
			triggers.OnInstantiated = append(triggers.OnInstantiated, base.simple)
			triggers.OnChange = append(triggers.OnChange, base.simple)
		}
	}
	m.sched.Register("Circuit", triggers, func(store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
		return c.propagate(store, tracker)
	})
	return nil
}

// chainOf follows forced (singleton) successor edges forward from start,
// returning the sequence of nodes visited (start included) until it hits a
// node without a forced successor or would revisit start.
func (c *Circuit) chainOf(store *Store, start int) []int {
	chain := []int{start}
	cur := start
	seen := map[int]bool{start: true}
	for {
		sv := c.Succ[cur]
		if !store.HasSingleValue(sv) {
			return chain
		}
		next := int(store.Value(sv))
		if next == start {
			return chain // closes to a full cycle back to start
		}
		if seen[next] {
			return chain // shouldn't happen once AllDifferent holds, but guard anyway
		}
		chain = append(chain, next)
		seen[next] = true
		cur = next
	}
}

// propagate applies the chain rule: for every maximal forced chain
// start->...->tail, forbid succ[tail] == start unless the chain already
// covers every node (spec.md §4.7's "(a) close a short cycle"). c.Options is
// not read; no SCC decomposition is done, whatever flags are set.
func (c *Circuit) propagate(store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
	n := len(c.Succ)
	visitedAsNonStart := make(map[int]bool)
	for i := range c.Succ {
		sv := c.Succ[i]
		if store.HasSingleValue(sv) {
			visitedAsNonStart[int(store.Value(sv))] = true
		}
	}
	for i := range c.Succ {
		if visitedAsNonStart[i] {
			continue // i is not a chain start: something already points to it
		}
		chain := c.chainOf(store, i)
		if len(chain) == n {
			continue // the chain already is the whole circuit
		}
		tail := chain[len(chain)-1]
		if len(chain) < n && store.InDomain(c.Succ[tail], Integer(i)) {
			reason := make([]Literal, 0, len(chain)-1)
			for k := 0; k+1 < len(chain); k++ {
				reason = append(reason, Lit(EqualTo(c.Succ[chain[k]], Integer(chain[k+1]))))
			}
			_, how, err := tracker.Infer(NotEqualTo(c.Succ[tail], Integer(i)), RUPJustification(), reason)
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
