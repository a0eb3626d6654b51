package gcs

// PropagatorResult is what a propagator returns after running: whether it
// should remain subscribed or be disabled until the next backtrack.
type PropagatorResult uint8

const (
	Enable PropagatorResult = iota
	DisableUntilBacktrack
)

// PropagatorFunc is the single-method shape every propagator implements:
// given the domain store and the inference tracker (and, when a proof is
// being produced, implicitly through the tracker), run one round of
// filtering and report the post-run subscription state. No virtual
// hierarchy is required: a closure capturing the constraint's own data
// suffices (spec.md §9).
type PropagatorFunc func(store *Store, tracker *InferenceTracker) (PropagatorResult, error)

// TriggerSet groups the variables a propagator should be reawakened for,
// split by the HowChanged level that should wake it (spec.md §3/§4.6).
type TriggerSet struct {
	OnChange      []int // interior value removed
	OnBounds      []int // lower/upper bound moved
	OnInstantiated []int // variable became a singleton
}

// propagatorRecord is the registry's bookkeeping for one posted propagator.
type propagatorRecord struct {
	id       int
	name     string
	triggers TriggerSet
	fn       PropagatorFunc
	disabled bool
}
