package gcs

// AutoTable is a presolver (spec.md §4.8) that, for a small set of
// variables whose combined domain size is modest, enumerates every
// satisfying tuple of a user-supplied predicate once over the initial
// domains and installs a Table propagator — turning an arbitrary checkable
// relation into a GAC-propagating extensional constraint. Idempotent: it
// always derives the same tuple set from the same initial domains and
// reposting a Table twice is harmless (each just adds its own selector and
// clauses).
type AutoTable struct {
	Vars    []IntegerVariableID
	Allowed func(tuple []Integer) bool
	MaxSize int // cap on the Cartesian product size explored; 0 means unlimited
}

func (p *AutoTable) Run(m *Model) error {
	domains := make([][]Integer, len(p.Vars))
	size := 1
	for i, v := range p.Vars {
		m.store.ForEachValue(v, func(val Integer) bool {
			domains[i] = append(domains[i], val)
			return true
		})
		size *= len(domains[i])
	}
	if p.MaxSize > 0 && size > p.MaxSize {
		return nil
	}

	var tuples [][]Integer
	current := make([]Integer, len(p.Vars))
	var rec func(pos int)
	rec = func(pos int) {
		if pos == len(p.Vars) {
			if p.Allowed == nil || p.Allowed(append([]Integer(nil), current...)) {
				tuples = append(tuples, append([]Integer(nil), current...))
			}
			return
		}
		for _, v := range domains[pos] {
			current[pos] = v
			rec(pos + 1)
		}
	}
	rec(0)

	t := &Table{Vars: p.Vars, Tuples: tuples}
	return t.Post(m)
}
