package gcs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/pbcert/pkg/gcs"
)

// TestBoundsInvariant checks spec.md §8 invariant 1: every value still in a
// variable's domain lies within its own lower/upper bound, after a
// propagation fixpoint has run.
func TestBoundsInvariant(t *testing.T) {
	m := gcs.NewModel(gcs.ProofOptions{}, nil, nil)
	x, err := m.CreateIntegerVariable(0, 20, "x")
	require.NoError(t, err)
	require.NoError(t, m.Post(gcs.LinearGreaterEqual([]gcs.LinearTerm{{Coeff: 1, Var: x}}, 5)))
	require.NoError(t, m.Post(&gcs.LinearInequality{Terms: []gcs.LinearTerm{{Coeff: 1, Var: x}}, RHS: 15}))

	contradiction, err := m.Scheduler().Propagate(m.Store(), m.Tracker())
	require.NoError(t, err)
	require.False(t, contradiction)

	lo, hi := m.Store().LowerBound(x), m.Store().UpperBound(x)
	m.Store().ForEachValue(x, func(v gcs.Integer) bool {
		require.GreaterOrEqual(t, v, lo)
		require.LessOrEqual(t, v, hi)
		return true
	})
}

// TestPropagatorIdempotence checks spec.md §8 invariant 3: running the
// fixpoint again with no intervening mutation makes no further inference.
func TestPropagatorIdempotence(t *testing.T) {
	m := gcs.NewModel(gcs.ProofOptions{}, nil, nil)
	x, err := m.CreateIntegerVariable(0, 20, "x")
	require.NoError(t, err)
	require.NoError(t, m.Post(gcs.LinearGreaterEqual([]gcs.LinearTerm{{Coeff: 1, Var: x}}, 5)))

	_, err = m.Scheduler().Propagate(m.Store(), m.Tracker())
	require.NoError(t, err)
	sizeAfterFirst := m.Store().DomainSize(x)

	// Re-running finds nothing new to enqueue since no domain changed, so
	// Propagate should be a no-op drain of an already-empty queue.
	_, err = m.Scheduler().Propagate(m.Store(), m.Tracker())
	require.NoError(t, err)
	require.Equal(t, sizeAfterFirst, m.Store().DomainSize(x))
}

// TestViewEquivalence checks spec.md §8 invariant 6: a constraint posted
// over a view s*x+k must propagate the same underlying x-space solutions as
// positing the equivalent constraint directly on x after substitution.
func TestViewEquivalence(t *testing.T) {
	m := gcs.NewModel(gcs.ProofOptions{}, nil, nil)
	x, err := m.CreateIntegerVariable(0, 10, "x")
	require.NoError(t, err)
	view := x.Plus(3).Negate() // view = -(x+3) = -x-3

	require.NoError(t, m.Post(gcs.LinearGreaterEqual([]gcs.LinearTerm{{Coeff: 1, Var: view}}, -8)))
	// view >= -8  <=>  -x-3 >= -8  <=>  x <= 5
	_, err = m.Scheduler().Propagate(m.Store(), m.Tracker())
	require.NoError(t, err)
	require.Equal(t, gcs.Integer(5), m.Store().UpperBound(x))
}
