package gcs

// Store is the integer domain store (C1): a vector of Simple variable
// domains plus the trail (C2) recording undoable mutations. It is owned
// uniquely by whichever phase currently holds the mutable path — the
// builder during problem construction, the solver during search — per the
// single-threaded resource model in spec.md §5.
type Store struct {
	domains []shape
	names   []string
	trail   *Trail
}

func newStore() *Store {
	return &Store{trail: newTrail()}
}

// createVariable appends a new Simple variable with the given initial
// shape and optional name, returning its handle.
func (s *Store) createVariable(sh shape, name string) IntegerVariableID {
	idx := len(s.domains)
	s.domains = append(s.domains, sh)
	s.names = append(s.names, name)
	return Simple(idx)
}

func (s *Store) shapeOf(v IntegerVariableID) shape {
	switch v.kind {
	case kindConstant:
		return newConstantShape(v.constant)
	case kindSimple:
		return s.domains[v.simple]
	case kindView:
		base, scale, offset := v.baseTransform()
		bs := s.domains[base.simple]
		if scale == -1 {
			return negateShape(bs, offset)
		}
		return offsetShape(bs, offset)
	}
	panic("gcs: unreachable variableKind")
}

// negateShape returns the shape of -base+offset.
func negateShape(base shape, offset Integer) shape {
	values := base.toValues()
	out := make([]Integer, len(values))
	for i, v := range values {
		out[len(values)-1-i] = AddSat(NegSat(v), offset)
	}
	if len(out) == 0 {
		return newRangeShape(1, 0)
	}
	return shapeFromSortedValues(out)
}

func offsetShape(base shape, offset Integer) shape {
	switch base.kind {
	case shapeConstant, shapeRange:
		if base.isEmpty() {
			return newRangeShape(1, 0)
		}
		return newRangeShape(AddSat(base.lo, offset), AddSat(base.hi, offset))
	default:
		values := base.toValues()
		for i := range values {
			values[i] = AddSat(values[i], offset)
		}
		return shapeFromSortedValues(values)
	}
}

// shapeFromSortedValues rebuilds the most compact shape representing an
// already-sorted, duplicate-free slice (used after a view transform, which
// preserves order up to the negate-and-reverse already applied by callers).
func shapeFromSortedValues(values []Integer) shape {
	if len(values) == 0 {
		return newRangeShape(1, 0)
	}
	contiguous := true
	for i := 1; i < len(values); i++ {
		if values[i] != values[i-1]+1 {
			contiguous = false
			break
		}
	}
	if contiguous {
		return newRangeShape(values[0], values[len(values)-1])
	}
	return newRangeFromSet(values)
}

// --- Queries (spec.md §4.1) ---

func (s *Store) LowerBound(v IntegerVariableID) Integer { return s.shapeOf(v).lowerBound() }
func (s *Store) UpperBound(v IntegerVariableID) Integer { return s.shapeOf(v).upperBound() }

func (s *Store) HasSingleValue(v IntegerVariableID) bool {
	sh := s.shapeOf(v)
	return sh.size() == 1
}

// Value returns the single value in v's domain; callers must check
// HasSingleValue first.
func (s *Store) Value(v IntegerVariableID) Integer {
	return s.shapeOf(v).lowerBound()
}

func (s *Store) InDomain(v IntegerVariableID, val Integer) bool {
	return s.shapeOf(v).contains(val)
}

func (s *Store) DomainSize(v IntegerVariableID) int {
	return s.shapeOf(v).size()
}

// ForEachValue iterates v's domain in ascending order, stopping early if f
// returns false.
func (s *Store) ForEachValue(v IntegerVariableID, f func(Integer) bool) {
	s.shapeOf(v).forEach(f)
}

func (s *Store) IsEmpty(v IntegerVariableID) bool {
	return s.shapeOf(v).isEmpty()
}

// --- Mutators (spec.md §4.1): record on trail first, mutate second ---

// contradictionMarker is the sentinel HowChanged-adjacent result used by mutators
// to signal the domain would become empty.
const contradictionMarker HowChanged = 255

func (s *Store) mutateSimple(idx int, next shape) HowChanged {
	prev := s.domains[idx]
	if next.isEmpty() {
		s.trail.record(idx, prev.clone())
		s.domains[idx] = next
		return contradictionMarker
	}
	prevSize := prev.size()
	nextSize := next.size()
	if prevSize == nextSize {
		return NoChange
	}
	s.trail.record(idx, prev.clone())
	s.domains[idx] = next

	switch {
	case nextSize == 1:
		return Instantiated
	case next.lowerBound() != prev.lowerBound() || next.upperBound() != prev.upperBound():
		return BoundsChanged
	default:
		return InteriorValuesChanged
	}
}

// InferEqual restricts v's domain to {k}. Returns the HowChanged result, or
// contradictionMarker if the domain became empty.
func (s *Store) InferEqual(v IntegerVariableID, k Integer) (IntegerVariableID, HowChanged) {
	rc := resolveCondition(EqualTo(v, k))
	if rc.Var.kind == kindConstant {
		if rc.Var.constant == rc.Val {
			return rc.Var, NoChange
		}
		return rc.Var, contradictionMarker
	}
	idx := rc.Var.simple
	next := s.domains[idx].restrictToSingle(rc.Val)
	return Simple(idx), s.mutateSimple(idx, next)
}

// InferNotEqual removes k from v's domain.
func (s *Store) InferNotEqual(v IntegerVariableID, k Integer) (IntegerVariableID, HowChanged) {
	rc := resolveCondition(NotEqualTo(v, k))
	if rc.Var.kind == kindConstant {
		if rc.Var.constant != rc.Val {
			return rc.Var, NoChange
		}
		return rc.Var, contradictionMarker
	}
	idx := rc.Var.simple
	next := s.domains[idx].removeValue(rc.Val)
	return Simple(idx), s.mutateSimple(idx, next)
}

// InferGreaterEqual restricts v's domain to values >= k.
func (s *Store) InferGreaterEqual(v IntegerVariableID, k Integer) (IntegerVariableID, HowChanged) {
	rc := resolveCondition(GreaterEqual(v, k))
	if rc.Var.kind == kindConstant {
		if rc.Var.constant >= rc.Val {
			return rc.Var, NoChange
		}
		return rc.Var, contradictionMarker
	}
	idx := rc.Var.simple
	next := s.domains[idx].restrictToAtLeast(rc.Val)
	return Simple(idx), s.mutateSimple(idx, next)
}

// InferLess restricts v's domain to values < k.
func (s *Store) InferLess(v IntegerVariableID, k Integer) (IntegerVariableID, HowChanged) {
	rc := resolveCondition(LessThan(v, k))
	if rc.Var.kind == kindConstant {
		if rc.Var.constant < rc.Val {
			return rc.Var, NoChange
		}
		return rc.Var, contradictionMarker
	}
	idx := rc.Var.simple
	next := s.domains[idx].restrictToAtMost(SubSat(rc.Val, 1))
	return Simple(idx), s.mutateSimple(idx, next)
}

// Satisfies reports whether condition c currently holds given v's present
// domain bounds (used by reason materialisation and idempotence checks).
func (s *Store) Satisfies(c IntegerVariableCondition) bool {
	switch c.Kind {
	case CondEqual:
		return s.HasSingleValue(c.Var) && s.Value(c.Var) == c.Val
	case CondNotEqual:
		return !s.InDomain(c.Var, c.Val)
	case CondGreaterEqual:
		return s.LowerBound(c.Var) >= c.Val
	case CondLess:
		return s.UpperBound(c.Var) < c.Val
	}
	return false
}

// --- Trail plumbing ---

func (s *Store) PushCheckpoint() Checkpoint { return s.trail.PushCheckpoint() }

func (s *Store) RestoreTo(cp Checkpoint) {
	s.trail.restoreInto(cp, s.domains)
}

func (s *Store) NumVariables() int { return len(s.domains) }

func (s *Store) NameOf(idx int) string { return s.names[idx] }
