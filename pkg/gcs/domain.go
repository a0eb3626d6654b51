package gcs

import (
	"github.com/bits-and-blooms/bitset"
)

// HowChanged classifies a domain mutation's effect so the scheduler (C9) can
// decide which trigger lists to fire. The ordering documents the tie-break
// from spec.md §4.1: Instantiated dominates BoundsChanged dominates
// InteriorValuesChanged.
type HowChanged uint8

const (
	NoChange HowChanged = iota
	InteriorValuesChanged
	BoundsChanged
	Instantiated
)

func combineHowChanged(a, b HowChanged) HowChanged {
	if a > b {
		return a
	}
	return b
}

// smallSetWidth is the widest span for which punching a hole in a Range
// promotes it to a SmallSet; a wider Range goes straight to a LargeSet.
// Chosen per spec.md §3 ("up to ~128 values").
const smallSetWidth = 128

// shape is the tagged union backing one Simple variable's domain. Exactly
// one of the four representations in spec.md §3 is active at a time.
// Removing a value from a Range promotes it to a SmallSet or a LargeSet;
// bound restrictions keep a SmallSet or LargeSet in its representation;
// restrictToSingle yields a Constant from any shape.
type domainKind uint8

const (
	shapeConstant domainKind = iota
	shapeRange
	shapeSmallSet
	shapeLargeSet
)

type shape struct {
	kind domainKind

	// shapeConstant / shapeRange
	lo, hi Integer

	// shapeSmallSet: bitset over [lo, lo+width), offset by lo
	bits *bitset.BitSet

	// shapeLargeSet: sorted, copy-on-write shared body
	large *largeSetBody
}

// largeSetBody is the heap-allocated sorted set shared-by-clone across trail
// snapshots. A snapshot taken by the trail just copies the pointer and bumps
// refs; the first mutation after a clone copies the underlying slice
// (classic Go copy-on-write, e.g. the growth strategy of strings.Builder,
// not a literal port of a C++ shared_ptr).
type largeSetBody struct {
	values []Integer // sorted ascending, no duplicates
	refs   int
}

func newLargeSetBody(values []Integer) *largeSetBody {
	return &largeSetBody{values: values, refs: 1}
}

func (b *largeSetBody) clone() *largeSetBody {
	b.refs++
	return b
}

// ownForWrite returns a uniquely-owned body, copying the slice if this one
// is still shared by another snapshot.
func (b *largeSetBody) ownForWrite() *largeSetBody {
	if b.refs <= 1 {
		return b
	}
	b.refs--
	cp := make([]Integer, len(b.values))
	copy(cp, b.values)
	return &largeSetBody{values: cp, refs: 1}
}

func (b *largeSetBody) search(v Integer) (idx int, found bool) {
	lo, hi := 0, len(b.values)
	for lo < hi {
		mid := (lo + hi) / 2
		if b.values[mid] < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(b.values) && b.values[lo] == v {
		return lo, true
	}
	return lo, false
}

func newConstantShape(v Integer) shape {
	return shape{kind: shapeConstant, lo: v, hi: v}
}

func newRangeShape(lo, hi Integer) shape {
	return shape{kind: shapeRange, lo: lo, hi: hi}
}

func newRangeFromSet(values []Integer) shape {
	if len(values) == 0 {
		return shape{kind: shapeRange, lo: 1, hi: 0} // empty
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = MinI(lo, v)
		hi = MaxI(hi, v)
	}
	span := int64(hi - lo + 1)
	if span <= smallSetWidth {
		bs := bitset.New(uint(span))
		for _, v := range values {
			bs.Set(uint(v - lo))
		}
		return shape{kind: shapeSmallSet, lo: lo, hi: hi, bits: bs}
	}
	cp := append([]Integer(nil), values...)
	return shape{kind: shapeLargeSet, lo: lo, hi: hi, large: newLargeSetBody(cp)}
}

// clone returns a value suitable for storing on the trail: compact shapes
// (Constant/Range/SmallSet) are copied by value; LargeSet shares its body
// and bumps the refcount.
func (s shape) clone() shape {
	cp := s
	if s.kind == shapeSmallSet {
		cp.bits = s.bits.Clone()
	}
	if s.kind == shapeLargeSet {
		cp.large = s.large.clone()
	}
	return cp
}

func (s shape) isEmpty() bool {
	switch s.kind {
	case shapeConstant, shapeRange:
		return s.lo > s.hi
	case shapeSmallSet:
		return s.bits.None()
	case shapeLargeSet:
		return len(s.large.values) == 0
	}
	return true
}

func (s shape) lowerBound() Integer {
	switch s.kind {
	case shapeConstant, shapeRange:
		return s.lo
	case shapeSmallSet:
		i, ok := s.bits.NextSet(0)
		if !ok {
			return s.lo
		}
		return s.lo + Integer(i)
	case shapeLargeSet:
		return s.large.values[0]
	}
	return s.lo
}

func (s shape) upperBound() Integer {
	switch s.kind {
	case shapeConstant, shapeRange:
		return s.hi
	case shapeSmallSet:
		for i := uint(s.hi - s.lo); ; {
			if s.bits.Test(i) {
				return s.lo + Integer(i)
			}
			if i == 0 {
				return s.lo
			}
			i--
		}
	case shapeLargeSet:
		return s.large.values[len(s.large.values)-1]
	}
	return s.hi
}

func (s shape) contains(v Integer) bool {
	switch s.kind {
	case shapeConstant:
		return v == s.lo
	case shapeRange:
		return v >= s.lo && v <= s.hi
	case shapeSmallSet:
		if v < s.lo || v > s.hi {
			return false
		}
		return s.bits.Test(uint(v - s.lo))
	case shapeLargeSet:
		_, found := s.large.search(v)
		return found
	}
	return false
}

func (s shape) size() int {
	switch s.kind {
	case shapeConstant:
		if s.lo > s.hi {
			return 0
		}
		return 1
	case shapeRange:
		if s.lo > s.hi {
			return 0
		}
		return int(s.hi-s.lo) + 1
	case shapeSmallSet:
		return int(s.bits.Count())
	case shapeLargeSet:
		return len(s.large.values)
	}
	return 0
}

// forEach calls f with every value in ascending order, stopping early if f
// returns false.
func (s shape) forEach(f func(Integer) bool) {
	switch s.kind {
	case shapeConstant:
		if s.lo <= s.hi {
			f(s.lo)
		}
	case shapeRange:
		for v := s.lo; v <= s.hi; v++ {
			if !f(v) {
				return
			}
		}
	case shapeSmallSet:
		for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
			if !f(s.lo + Integer(i)) {
				return
			}
		}
	case shapeLargeSet:
		for _, v := range s.large.values {
			if !f(v) {
				return
			}
		}
	}
}

func (s shape) toValues() []Integer {
	out := make([]Integer, 0, s.size())
	s.forEach(func(v Integer) bool {
		out = append(out, v)
		return true
	})
	return out
}

// removeValue returns a shape that can represent the receiver minus the
// hole punched by removing v, promoting the representation if needed: a
// Range with an interior hole becomes a SmallSet when its span is at most
// smallSetWidth and a LargeSet otherwise.
func (s shape) removeValue(v Integer) shape {
	if !s.contains(v) {
		return s
	}
	switch s.kind {
	case shapeConstant:
		return newRangeShape(1, 0) // emptied
	case shapeRange:
		if v == s.lo {
			return newRangeShape(s.lo+1, s.hi)
		}
		if v == s.hi {
			return newRangeShape(s.lo, s.hi-1)
		}
		span := int64(s.hi - s.lo + 1)
		if span <= smallSetWidth {
			bs := bitset.New(uint(span))
			bs.FlipRange(0, uint(span))
			bs.Clear(uint(v - s.lo))
			return shape{kind: shapeSmallSet, lo: s.lo, hi: s.hi, bits: bs}
		}
		values := make([]Integer, 0, span-1)
		for x := s.lo; x <= s.hi; x++ {
			if x != v {
				values = append(values, x)
			}
		}
		return shape{kind: shapeLargeSet, lo: s.lo, hi: s.hi, large: newLargeSetBody(values)}
	case shapeSmallSet:
		bs := s.bits.Clone()
		bs.Clear(uint(v - s.lo))
		lo, hi := s.lo, s.hi
		if v == s.lowerBound() {
			if i, ok := bs.NextSet(0); ok {
				lo = s.lo + Integer(i)
			}
		}
		return shape{kind: shapeSmallSet, lo: lo, hi: hi, bits: bs}
	case shapeLargeSet:
		body := s.large.ownForWrite()
		if idx, found := body.search(v); found {
			body.values = append(body.values[:idx], body.values[idx+1:]...)
		}
		return shape{kind: shapeLargeSet, lo: s.lo, hi: s.hi, large: body}
	}
	return s
}

// restrictToAtLeast returns a shape with every value < lo removed.
func (s shape) restrictToAtLeast(lo Integer) shape {
	switch s.kind {
	case shapeConstant, shapeRange:
		return newRangeShape(MaxI(s.lo, lo), s.hi)
	case shapeSmallSet:
		bs := s.bits.Clone()
		if lo > s.lo {
			bs.ClearRange(0, uint(MinI(lo-s.lo, Integer(bs.Len()))))
		}
		return shape{kind: shapeSmallSet, lo: s.lo, hi: s.hi, bits: bs}
	case shapeLargeSet:
		body := s.large.ownForWrite()
		idx, found := body.search(lo)
		if !found {
			// idx already points to first >= lo
		}
		body.values = body.values[idx:]
		return shape{kind: shapeLargeSet, lo: s.lo, hi: s.hi, large: body}
	}
	return s
}

// restrictToAtMost returns a shape with every value > hi removed.
func (s shape) restrictToAtMost(hi Integer) shape {
	switch s.kind {
	case shapeConstant, shapeRange:
		return newRangeShape(s.lo, MinI(s.hi, hi))
	case shapeSmallSet:
		bs := s.bits.Clone()
		if hi < s.lo {
			bs.ClearAll()
		} else if hi < s.hi {
			start := uint(hi - s.lo + 1)
			if start < bs.Len() {
				bs.ClearRange(start, bs.Len())
			}
		}
		return shape{kind: shapeSmallSet, lo: s.lo, hi: s.hi, bits: bs}
	case shapeLargeSet:
		body := s.large.ownForWrite()
		idx, found := body.search(hi)
		if found {
			idx++
		}
		body.values = body.values[:idx]
		return shape{kind: shapeLargeSet, lo: s.lo, hi: s.hi, large: body}
	}
	return s
}

func (s shape) restrictToSingle(v Integer) shape {
	if !s.contains(v) {
		return newRangeShape(1, 0)
	}
	return newConstantShape(v)
}
