package gcs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShapePromotionRangeToSmallSet(t *testing.T) {
	s := newRangeShape(0, 9)
	s = s.removeValue(5)
	require.Equal(t, shapeSmallSet, s.kind, "removing an interior value should promote range to small-set")
	require.False(t, s.contains(5), "5 should have been removed")
	require.Equal(t, 9, s.size())
}

func TestShapePromotionWideRangeToLargeSet(t *testing.T) {
	s := newRangeShape(0, smallSetWidth+10)
	s = s.removeValue(5)
	require.Equal(t, shapeLargeSet, s.kind, "removing a hole from a wide range should promote straight to large-set")
	require.False(t, s.contains(5), "5 should have been removed")
}

func TestShapeNeverDemotes(t *testing.T) {
	s := newRangeShape(0, 9).removeValue(5)
	require.Equal(t, shapeSmallSet, s.kind, "expected small-set after first hole")
	// Restricting bounds on a small-set must not fall back to Range even
	// when the result happens to be contiguous.
	s = s.restrictToAtLeast(6)
	require.Equal(t, shapeSmallSet, s.kind, "restrictToAtLeast must not demote the representation")
}

func TestRestrictToSingle(t *testing.T) {
	s := newRangeShape(0, 9)
	single := s.restrictToSingle(3)
	require.Equal(t, 1, single.size())
	require.True(t, single.contains(3))
	empty := s.restrictToSingle(20)
	require.True(t, empty.isEmpty(), "restricting to a value outside the domain must produce an empty shape")
}

func TestLargeSetCopyOnWrite(t *testing.T) {
	values := make([]Integer, 0, smallSetWidth+50)
	for i := Integer(0); i < Integer(smallSetWidth+50); i++ {
		values = append(values, i*2) // force LargeSet: too wide and not contiguous-compressible as SmallSet
	}
	s := newRangeFromSet(values)
	require.Equal(t, shapeLargeSet, s.kind, "expected large-set for a wide sparse domain")
	clone := s.clone()
	mutated := clone.removeValue(values[0])
	require.True(t, s.contains(values[0]), "mutating a clone must not affect the original snapshot (copy-on-write)")
	require.False(t, mutated.contains(values[0]), "the mutated clone should no longer contain the removed value")
}
