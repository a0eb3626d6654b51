package gcs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestTrailRoundTrip exercises spec.md §8 invariant 2: checkpoint, apply
// legal inferences, restore, and the store must be bit-identical to the
// snapshot at the checkpoint.
func TestTrailRoundTrip(t *testing.T) {
	store := newStore()
	v, err := newModelForTest(store).CreateIntegerVariable(0, 9, "v")
	require.NoError(t, err)

	cp := store.PushCheckpoint()
	_, how := store.InferGreaterEqual(v, 3)
	require.NotEqual(t, contradictionMarker, how)
	_, how = store.InferNotEqual(v, 5)
	require.NotEqual(t, contradictionMarker, how)
	require.Equal(t, 6, store.DomainSize(v), "expected domain size 6 after tightening")

	store.RestoreTo(cp)
	require.Equal(t, 10, store.DomainSize(v), "expected domain restored to size 10")
	require.True(t, store.InDomain(v, 5) && store.InDomain(v, 0), "restored domain should contain every original value")
}

func TestTrailNestedCheckpoints(t *testing.T) {
	store := newStore()
	v, err := newModelForTest(store).CreateIntegerVariable(0, 9, "v")
	require.NoError(t, err)

	outer := store.PushCheckpoint()
	store.InferGreaterEqual(v, 2)
	inner := store.PushCheckpoint()
	store.InferLess(v, 5)
	require.Equal(t, 3, store.DomainSize(v), "expected [2,4] (size 3)")

	store.RestoreTo(inner)
	require.Equal(t, 8, store.DomainSize(v), "expected [2,9] (size 8) after inner restore")

	store.RestoreTo(outer)
	require.Equal(t, 10, store.DomainSize(v), "expected [0,9] (size 10) after outer restore")
}

// newModelForTest wires a bare Model around an already-constructed Store so
// domain/trail tests can use the public variable-creation API without
// pulling in proof machinery.
func newModelForTest(store *Store) *Model {
	names := NewNameTracker(false, false)
	mw := newModelWriter(names)
	sched := newScheduler()
	tracker := newInferenceTracker(store, names, mw, nil, sched)
	return &Model{store: store, names: names, model: mw, sched: sched, tracker: tracker, usedNames: make(map[string]bool)}
}
