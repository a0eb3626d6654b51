package gcs

import (
	"context"

	"github.com/rs/zerolog"
)

// ProofOptions configures proof production (spec.md §6). A zero-value
// ProofOptions with empty paths disables proof logging entirely: the
// solver still runs the same propagation and search code, just without a
// ProofLogger attached (a NameTracker is still created).
type ProofOptions struct {
	OPBPath      string
	ProofPath    string
	FriendlyNames bool
	FullEncoding  bool
}

// Enabled reports whether both file paths were supplied.
func (p ProofOptions) Enabled() bool { return p.OPBPath != "" && p.ProofPath != "" }

// SolveCallbacks are the optional user hooks the solver invokes during
// search.
type SolveCallbacks struct {
	// Solution is called with every complete assignment found; without an
	// objective, returning false stops the search. In an optimisation run
	// the return value is ignored and the search continues.
	Solution func(s *Solution) bool
	// Trace is accepted but the solver never calls it.
	Trace func(event TraceEvent)
	// Branch selects which variable to branch on next; default is
	// smallest-domain-first with highest-degree tiebreak.
	Branch func(store *Store, candidates []IntegerVariableID) IntegerVariableID
	// Guess produces the ordered list of guess literals to try for the
	// chosen branching variable; default is [var=lb, var!=lb].
	Guess func(store *Store, v IntegerVariableID) []IntegerVariableCondition
}

// TraceEvent is passed to SolveCallbacks.Trace.
type TraceEvent struct {
	Kind  string // "propagate", "branch", "solution", "backtrack"
	Depth int
}

// SCCOptions are per-option toggles for strongly-connected-component-based
// pruning. Circuit stores them but does not read them: its only sub-cycle
// pruning is the chain rule in Circuit.propagate.
type SCCOptions struct {
	PruneRoot      bool
	PruneSkip      bool
	FixReq         bool
	PruneWithin    bool
	EnableComments bool
}

// DefaultSCCOptions sets every pruning flag (EnableComments stays false).
func DefaultSCCOptions() SCCOptions {
	return SCCOptions{PruneRoot: true, PruneSkip: true, FixReq: true, PruneWithin: true}
}

// Sense is the optimisation direction of an objective.
type Sense uint8

const (
	Minimise Sense = iota
	Maximise
)

// SolverConfig bundles everything needed to construct a Solver: proof
// options, user callbacks, and a context used for cooperative cancellation
// (polled at the start of each search node and before each branching
// guess; propagator dispatch and proof flushes do not poll it).
type SolverConfig struct {
	Proof     ProofOptions
	Callbacks SolveCallbacks
	Context   context.Context
	// Logger receives structured debug events (solve start/finish,
	// backtrack, branch, solution found) at zerolog.DebugLevel; the zero value is
	// zerolog.Nop(), so logging is opt-in and free when unset.
	Logger zerolog.Logger
}
