package gcs

import "time"

// Stats accumulates run counters: recursions, failures, propagations,
// solutions and max depth. PerPropagatorTime is allocated but the solver
// does not fill it in.
type Stats struct {
	Recursions  int64
	Failures    int64
	Propagations int64
	Solutions   int64
	MaxDepth    int

	PerPropagatorTime map[string]time.Duration

	Interrupted bool
}

func newStats() *Stats {
	return &Stats{PerPropagatorTime: make(map[string]time.Duration)}
}

func (st *Stats) recordDepth(d int) {
	if d > st.MaxDepth {
		st.MaxDepth = d
	}
}
