package gcs

// Scheduler is the propagator registry and fixpoint runner (C9). It stores
// propagators, maintains per-variable trigger sets, and runs the FIFO
// work-queue to a fixpoint: initially every propagator runs once; each
// domain mutation enqueues the propagators whose trigger set matches the
// mutation's HowChanged level (Instantiated fires on-change + on-bounds +
// on-instantiated; BoundsChanged fires on-bounds + on-change;
// InteriorValuesChanged fires on-change only).
type Scheduler struct {
	props []propagatorRecord

	// onChange[v], onBounds[v] and onInstantiated[v] list the propagator
	// IDs to wake for variable v, split by trigger type.
	onChange       [][]int
	onBounds       [][]int
	onInstantiated [][]int

	queue    []int
	queued   []bool

	// disableTrail records (propagatorID, previous-disabled) pairs so a
	// DisableUntilBacktrack can be undone when the search backtracks past
	// the point it was raised.
	disableTrail []disableEntry
}

type disableEntry struct {
	id       int
	wasDisabled bool
}

// SchedulerMark is an opaque handle into the disable trail, taken alongside
// a Store Checkpoint so both can be restored together.
type SchedulerMark int

func newScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) ensureVar(idx int) {
	for len(s.onChange) <= idx {
		s.onChange = append(s.onChange, nil)
		s.onBounds = append(s.onBounds, nil)
		s.onInstantiated = append(s.onInstantiated, nil)
	}
}

// Register adds a propagator with the given trigger set, returning its ID.
func (s *Scheduler) Register(name string, triggers TriggerSet, fn PropagatorFunc) int {
	id := len(s.props)
	s.props = append(s.props, propagatorRecord{id: id, name: name, triggers: triggers, fn: fn})
	s.queued = append(s.queued, false)
	for _, v := range triggers.OnChange {
		s.ensureVar(v)
		s.onChange[v] = append(s.onChange[v], id)
	}
	for _, v := range triggers.OnBounds {
		s.ensureVar(v)
		s.onBounds[v] = append(s.onBounds[v], id)
	}
	for _, v := range triggers.OnInstantiated {
		s.ensureVar(v)
		s.onInstantiated[v] = append(s.onInstantiated[v], id)
	}
	s.enqueue(id)
	return id
}

func (s *Scheduler) enqueue(id int) {
	if s.props[id].disabled || s.queued[id] {
		return
	}
	s.queued[id] = true
	s.queue = append(s.queue, id)
}

// notifyChanged enqueues every propagator subscribed to variable v for the
// trigger types implied by how.
func (s *Scheduler) notifyChanged(v int, how HowChanged) {
	if v >= len(s.onChange) {
		return
	}
	switch how {
	case Instantiated:
		for _, id := range s.onInstantiated[v] {
			s.enqueue(id)
		}
		fallthrough
	case BoundsChanged:
		for _, id := range s.onBounds[v] {
			s.enqueue(id)
		}
		fallthrough
	case InteriorValuesChanged:
		for _, id := range s.onChange[v] {
			s.enqueue(id)
		}
	}
}

// Propagate drains the FIFO queue to a fixpoint, invoking each propagator's
// function in turn. Returns true if a contradiction was raised. Proof lines
// marked Temporary during the fixpoint are deleted when it ends.
func (s *Scheduler) Propagate(store *Store, tracker *InferenceTracker) (contradiction bool, err error) {
	if tracker.proof != nil {
		defer tracker.proof.ClearTemporary()
	}
	for len(s.queue) > 0 {
		id := s.queue[0]
		s.queue = s.queue[1:]
		s.queued[id] = false
		rec := &s.props[id]
		if rec.disabled {
			continue
		}
		result, ferr := rec.fn(store, tracker)
		if ferr != nil {
			return false, ferr
		}
		if tracker.Contradicted() {
			tracker.resetContradiction()
			s.queue = nil
			for i := range s.queued {
				s.queued[i] = false
			}
			return true, nil
		}
		if result == DisableUntilBacktrack {
			s.disableTrail = append(s.disableTrail, disableEntry{id: id, wasDisabled: rec.disabled})
			rec.disabled = true
		}
	}
	return false, nil
}

// Mark returns a handle to the current disable-trail position.
func (s *Scheduler) Mark() SchedulerMark { return SchedulerMark(len(s.disableTrail)) }

// RestoreTo undoes every disable recorded since mark, re-enabling and
// re-enqueueing any propagator whose disabled flag was flipped on and
// restoring it to active so the next fixpoint re-examines it.
func (s *Scheduler) RestoreTo(mark SchedulerMark) {
	for i := len(s.disableTrail) - 1; i >= int(mark); i-- {
		e := s.disableTrail[i]
		s.props[e.id].disabled = e.wasDisabled
		if !e.wasDisabled {
			s.enqueue(e.id)
		}
	}
	s.disableTrail = s.disableTrail[:mark]
}

// NumPropagators reports how many propagators are registered (for stats).
func (s *Scheduler) NumPropagators() int { return len(s.props) }
