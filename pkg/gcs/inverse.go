package gcs

// Inverse posts two interlocking Element chains (spec.md §4.7):
// x[i] == k+YStart  <=>  y[k] == i+XStart, for every i,k in range.
type Inverse struct {
	X, Y           []IntegerVariableID
	XStart, YStart Integer
}

func (c *Inverse) Post(m *Model) error {
	triggers := TriggerSet{}
	addVar := func(v IntegerVariableID) {
		if v.IsSimple() {
			triggers.OnChange = append(triggers.OnChange, v.simple)
		} else if v.IsView() {
			base, _, _ := v.baseTransform()
			triggers.OnChange = append(triggers.OnChange, base.simple)
		}
	}
	for _, v := range c.X {
		addVar(v)
	}
	for _, v := range c.Y {
		addVar(v)
	}
	m.sched.Register("Inverse", triggers, func(store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
		return c.propagate(store, tracker)
	})
	return nil
}

// propagate enforces, for every i and every k still in range, that
// x[i] == k+YStart is supported iff y[k] == i+XStart is still possible, and
// vice versa; unsupported values are removed from both sides (the
// "interlocking Element chains" of spec.md §4.7 expressed directly as a
// pairwise support check rather than through two separate Element posts).
func (c *Inverse) propagate(store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
	nx, ny := len(c.X), len(c.Y)
	for i := 0; i < nx; i++ {
		if store.HasSingleValue(c.X[i]) {
			continue
		}
		var toRemove []Integer
		store.ForEachValue(c.X[i], func(val Integer) bool {
			k := int(val - c.YStart)
			if k < 0 || k >= ny || !store.InDomain(c.Y[k], Integer(i)+c.XStart) {
				toRemove = append(toRemove, val)
			}
			return true
		})
		for _, val := range toRemove {
			_, how, err := tracker.Infer(NotEqualTo(c.X[i], val), RUPJustification(), nil)
			if err != nil {
				return Enable, err
			}
			if how == contradictionMarker {
				return Enable, nil
			}
		}
	}
	for k := 0; k < ny; k++ {
		if store.HasSingleValue(c.Y[k]) {
			continue
		}
		var toRemove []Integer
		store.ForEachValue(c.Y[k], func(val Integer) bool {
			i := int(val - c.XStart)
			if i < 0 || i >= nx || !store.InDomain(c.X[i], Integer(k)+c.YStart) {
				toRemove = append(toRemove, val)
			}
			return true
		})
		for _, val := range toRemove {
			_, how, err := tracker.Infer(NotEqualTo(c.Y[k], val), RUPJustification(), nil)
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
