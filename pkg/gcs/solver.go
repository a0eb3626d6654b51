package gcs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Solver runs depth-first branch-and-bound search over a built Model
// (C12). It owns nothing the Model doesn't already own; Solve borrows the
// Model's store/scheduler/proof for the duration of the search and never
// runs concurrently with further building (spec.md §5's build-phase /
// search-phase exclusivity).
type Solver struct {
	model *Model
	cb    SolveCallbacks
	ctx   context.Context
	stats *Stats
	log   zerolog.Logger

	bestKnown *Integer
}

// NewSolver constructs a Solver over m using cfg's callbacks and context.
// A nil cfg.Context defaults to context.Background.
func NewSolver(m *Model, cfg SolverConfig) *Solver {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return &Solver{model: m, cb: cfg.Callbacks, ctx: ctx, stats: newStats(), log: cfg.Logger}
}

// Outcome is the terminal classification of a Solve call.
type Outcome uint8

const (
	Unsatisfiable Outcome = iota
	Optimal
	Satisfiable
	Interrupted
)

// Result bundles a Solve call's outcome, stats, and (for Satisfiable and
// Optimal) the best/last solution found.
type Result struct {
	Outcome  Outcome
	Stats    Stats
	Solution *Solution
}

// Solve runs the full build-then-search pipeline: presolvers, then an
// initial propagation fixpoint, then depth-first branch-and-bound.
func (s *Solver) Solve() (*Result, error) {
	m := s.model
	s.log.Debug().Int("variables", m.store.NumVariables()).Msg("solve started")
	if err := m.runPresolvers(); err != nil {
		return nil, err
	}

	found := false
	var lastSolution *Solution

	storeCP := m.store.PushCheckpoint()
	schedMark := m.sched.Mark()

	err := s.recurse(0, &found, &lastSolution)
	if err != nil && err != errStopSearch {
		return nil, err
	}

	m.store.RestoreTo(storeCP)
	m.sched.RestoreTo(schedMark)

	outcome := s.classifyOutcome(found)
	s.log.Debug().
		Int("recursions", s.stats.Recursions).
		Int("failures", s.stats.Failures).
		Int("solutions", s.stats.Solutions).
		Msg("solve finished")
	if s.stats.Interrupted {
		outcome = Interrupted
		if m.proof != nil {
			_ = m.proof.ConcludeInterrupted()
		}
	} else if m.proof != nil {
		s.writeConclusion(found, lastSolution)
	}

	return &Result{Outcome: outcome, Stats: *s.stats, Solution: lastSolution}, nil
}

func (s *Solver) classifyOutcome(found bool) Outcome {
	if !found {
		return Unsatisfiable
	}
	if s.model.objective != nil {
		return Optimal
	}
	return Satisfiable
}

func (s *Solver) writeConclusion(found bool, sol *Solution) {
	m := s.model
	if !found {
		_ = m.proof.ConcludeUnsat()
		return
	}
	if m.objective == nil {
		_ = m.proof.ConcludeInterrupted() // "output NONE": SAT search with no bound to report
		return
	}
	best := *s.bestKnown
	if m.objective.sense == Minimise {
		_ = m.proof.ConcludeBounds(best, best)
	} else {
		_ = m.proof.ConcludeBounds(best, best)
	}
}

// recurse is one depth-first search node: propagate to a fixpoint, then
// either report a solution or branch. Returns early (without error) on
// contradiction or cancellation.
func (s *Solver) recurse(depth int, found *bool, lastSolution **Solution) error {
	s.stats.Recursions++
	s.stats.recordDepth(depth)

	if err := s.ctx.Err(); err != nil {
		s.stats.Interrupted = true
		return nil
	}

	m := s.model
	contradiction, err := m.sched.Propagate(m.store, m.tracker)
	s.stats.Propagations++
	if err != nil {
		return err
	}
	if contradiction {
		s.stats.Failures++
		s.log.Debug().Int("depth", depth).Msg("backtrack: contradiction")
		return nil
	}

	branchVar, allSingleton := s.pickBranchVariable()
	if allSingleton {
		sol := s.extractSolution()
		s.stats.Solutions++
		*found = true
		*lastSolution = sol
		s.log.Debug().Int("depth", depth).Int("solutions", s.stats.Solutions).Msg("solution found")
		if m.proof != nil {
			m.proof.RecordSolution("found")
		}

		if m.objective == nil {
			keepGoing := true
			if s.cb.Solution != nil {
				keepGoing = s.cb.Solution(sol)
			}
			if !keepGoing {
				s.stats.Interrupted = false
				return errStopSearch
			}
			return nil
		}

		val := sol.Value(m.objective.variable)
		improves := s.bestKnown == nil
		if !improves {
			if m.objective.sense == Minimise {
				improves = val < *s.bestKnown
			} else {
				improves = val > *s.bestKnown
			}
		}
		if improves {
			s.bestKnown = &val
		}
		if s.cb.Solution != nil {
			s.cb.Solution(sol)
		}
		return nil // let the caller's tightening + backtrack continue the search
	}

	if m.objective != nil && s.bestKnown != nil {
		// Tighten the objective variable itself before branching further:
		// obj < best (minimise) / obj > best (maximise). This mutation
		// lives on the store's own trail, so it is automatically a
		// Current-level addition that disappears when the enclosing
		// checkpoint is restored on the way back up.
		var resolved IntegerVariableID
		var how HowChanged
		if m.objective.sense == Minimise {
			resolved, how = m.store.InferLess(m.objective.variable, *s.bestKnown)
		} else {
			resolved, how = m.store.InferGreaterEqual(m.objective.variable, AddSat(*s.bestKnown, 1))
		}
		if how == contradictionMarker {
			s.stats.Failures++
			return nil
		}
		if how != NoChange && resolved.IsSimple() {
			m.sched.notifyChanged(resolved.simple, how)
		}
	}

	guesses := s.pickGuesses(branchVar)
	s.log.Debug().Int("depth", depth).Str("var", s.branchVarName(branchVar)).Int("guesses", len(guesses)).Msg("branch")
	for _, g := range guesses {
		if err := s.ctx.Err(); err != nil {
			s.stats.Interrupted = true
			return nil
		}
		storeCP := m.store.PushCheckpoint()
		schedMark := m.sched.Mark()
		var proofLevel int
		if m.proof != nil {
			proofLevel = m.proof.OpenLevel()
			_ = proofLevel
		}

		_, how, ierr := m.tracker.Infer(g, GuessJustification(), nil)
		if ierr != nil {
			return ierr
		}
		if how == contradictionMarker {
			// Infeasible guess branch; nothing to recurse into.
		} else {
			if how != NoChange && g.Var.IsSimple() {
				m.sched.notifyChanged(g.Var.simple, how)
			}
			if err := s.recurse(depth+1, found, lastSolution); err != nil {
				if err == errStopSearch {
					m.store.RestoreTo(storeCP)
					m.sched.RestoreTo(schedMark)
					if m.proof != nil {
						m.proof.CloseLevel()
					}
					return err
				}
				return err
			}
		}

		m.store.RestoreTo(storeCP)
		m.sched.RestoreTo(schedMark)
		if m.proof != nil {
			m.proof.CloseLevel()
		}
		if s.stats.Interrupted {
			return nil
		}
	}
	return nil
}

// errStopSearch is a sentinel used internally to unwind recursion once the
// user's Solution callback asks for the search to stop; it is never
// returned to Solve's caller.
var errStopSearch = &stopSearchError{}

type stopSearchError struct{}

func (*stopSearchError) Error() string { return "gcs: search stopped by callback" }

// pickBranchVariable returns the next variable to branch on and whether
// every branching variable is already a singleton. Default strategy:
// smallest remaining domain first, ties broken by highest degree (most
// subscribed propagators).
func (s *Solver) pickBranchVariable() (IntegerVariableID, bool) {
	m := s.model
	candidates := make([]IntegerVariableID, 0, len(m.branchVars))
	for _, v := range m.branchVars {
		if !m.store.HasSingleValue(v) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return IntegerVariableID{}, true
	}
	if s.cb.Branch != nil {
		return s.cb.Branch(m.store, candidates), false
	}
	best := candidates[0]
	bestSize := m.store.DomainSize(best)
	bestDegree := s.degreeOf(best)
	for _, v := range candidates[1:] {
		size := m.store.DomainSize(v)
		if size < bestSize {
			best, bestSize, bestDegree = v, size, s.degreeOf(v)
			continue
		}
		if size == bestSize {
			d := s.degreeOf(v)
			if d > bestDegree {
				best, bestDegree = v, d
			}
		}
	}
	return best, false
}

func (s *Solver) branchVarName(v IntegerVariableID) string {
	if v.IsSimple() {
		return s.model.store.NameOf(v.simple)
	}
	if v.IsView() {
		base, _, _ := v.baseTransform()
		return s.model.store.NameOf(base.simple)
	}
	return "?"
}

func (s *Solver) degreeOf(v IntegerVariableID) int {
	if !v.IsSimple() {
		return 0
	}
	idx := v.simple
	sched := s.model.sched
	n := 0
	if idx < len(sched.onChange) {
		n += len(sched.onChange[idx]) + len(sched.onBounds[idx]) + len(sched.onInstantiated[idx])
	}
	return n
}

// pickGuesses returns the ordered list of guess literals for v. Default:
// [v == lb, v != lb].
func (s *Solver) pickGuesses(v IntegerVariableID) []IntegerVariableCondition {
	if s.cb.Guess != nil {
		return s.cb.Guess(s.model.store, v)
	}
	lb := s.model.store.LowerBound(v)
	return []IntegerVariableCondition{EqualTo(v, lb), NotEqualTo(v, lb)}
}

func (s *Solver) extractSolution() *Solution {
	m := s.model
	n := m.store.NumVariables()
	values := make([]Integer, n)
	names := make([]string, n)
	for i := 0; i < n; i++ {
		values[i] = m.store.domains[i].lowerBound()
		names[i] = m.store.NameOf(i)
	}
	return &Solution{values: values, names: names}
}

// WithTimeout returns a child of the given context that cancels after d, the
// helper-thread-backed timeout mechanism of spec.md §5 rendered as plain
// context.WithTimeout (Go's idiomatic cooperative-cancellation primitive).
func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, d)
}
