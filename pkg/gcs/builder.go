package gcs

import (
	"fmt"
	"io"

	"golang.org/x/exp/slices"

	"github.com/gitrdm/pbcert/pkg/gcs/opb"
)

// Constraint is anything postable to a Model: at post time it both
// registers a propagator with the scheduler and writes its one-shot
// pseudo-Boolean model clauses, per spec.md §2's data-flow description.
type Constraint interface {
	Post(m *Model) error
}

// Presolver runs once before search, observes the initial domains, and may
// post additional constraints. Presolvers must be idempotent (spec.md
// §4.8): running one twice against the same domains must not change the
// outcome.
type Presolver interface {
	Run(m *Model) error
}

// objectiveState is the optional (variable, sense, best_known) triple.
type objectiveState struct {
	variable  IntegerVariableID
	sense     Sense
	bestKnown *Integer
	modelLine int // constraint line number of the live bound constraint, 0 if none yet
}

// Model is the problem builder (C11): the entry point for creating
// variables, posting constraints, setting the objective, and registering
// presolvers. Everything it creates is materialised during the build
// phase; search (via Solver) mutates only domains, the trail, and
// objective best-known.
type Model struct {
	store   *Store
	names   *NameTracker
	model   *ModelWriter
	proof   *ProofLogger
	sched   *Scheduler
	tracker *InferenceTracker

	objective  *objectiveState
	branchVars []IntegerVariableID
	presolvers []Presolver

	usedNames map[string]bool
	allFlags  []string
}

// NewProofFlag allocates a fresh proof-only flag (spec.md §3's ProofFlag):
// an integer index plus a polarity, with no domain, created on demand.
func (m *Model) NewProofFlag(tag string) ProofFlag {
	return newProofFlagFor(m, tag)
}

// NewModel constructs an empty Model. If opts.Enabled() and proofWriter is
// non-nil, proofWriter receives the proof stream as it is produced.
// opbWriter is not written to: the OPB model is written by WriteModel.
// Callers typically pass *os.File values opened for
// opts.OPBPath/opts.ProofPath.
func NewModel(opts ProofOptions, opbWriter, proofWriter io.Writer) *Model {
	names := NewNameTracker(opts.FriendlyNames, opts.FullEncoding)
	store := newStore()
	mw := newModelWriter(names)
	var pl *ProofLogger
	if opts.Enabled() && proofWriter != nil {
		pl = newProofLogger(proofWriter, names, mw)
	}
	sched := newScheduler()
	tracker := newInferenceTracker(store, names, mw, pl, sched)
	return &Model{
		store: store, names: names, model: mw, proof: pl, sched: sched, tracker: tracker,
		usedNames: make(map[string]bool),
	}
}

// CreateIntegerVariable creates a variable with domain [lo, hi]. name may be
// empty; a non-empty name must be unique across the model.
func (m *Model) CreateIntegerVariable(lo, hi Integer, name string) (IntegerVariableID, error) {
	if lo > hi {
		return IntegerVariableID{}, newBuildError("CreateIntegerVariable", ErrEmptyDomain)
	}
	if name != "" {
		if m.usedNames[name] {
			return IntegerVariableID{}, newBuildError("CreateIntegerVariable", ErrDuplicateName)
		}
		m.usedNames[name] = true
	}
	var sh shape
	if lo == hi {
		sh = newConstantShape(lo)
	} else {
		sh = newRangeShape(lo, hi)
	}
	v := m.store.createVariable(sh, name)
	m.names.RegisterVariable(v.simple, name, rangeValues(lo, hi))
	m.postDirectEncodingConstraints(v.simple)
	return v, nil
}

// CreateIntegerVariableFromSet creates a variable whose domain is exactly
// the given (deduplicated) set of values.
func (m *Model) CreateIntegerVariableFromSet(values []Integer, name string) (IntegerVariableID, error) {
	if len(values) == 0 {
		return IntegerVariableID{}, newBuildError("CreateIntegerVariableFromSet", ErrEmptyDomain)
	}
	if name != "" {
		if m.usedNames[name] {
			return IntegerVariableID{}, newBuildError("CreateIntegerVariableFromSet", ErrDuplicateName)
		}
		m.usedNames[name] = true
	}
	uniq := dedupSorted(values)
	sh := newRangeFromSet(uniq)
	v := m.store.createVariable(sh, name)
	m.names.RegisterVariable(v.simple, name, uniq)
	m.postDirectEncodingConstraints(v.simple)
	return v, nil
}

// CreateIntegerVariableVector creates n variables each with domain [lo,hi],
// named "<prefix>_0".."<prefix>_{n-1}" when namePrefix is non-empty.
func (m *Model) CreateIntegerVariableVector(n int, lo, hi Integer, namePrefix string) ([]IntegerVariableID, error) {
	out := make([]IntegerVariableID, n)
	for i := 0; i < n; i++ {
		name := ""
		if namePrefix != "" {
			name = fmt.Sprintf("%s_%d", namePrefix, i)
		}
		v, err := m.CreateIntegerVariable(lo, hi, name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// postDirectEncodingConstraints writes the at-least-one/at-most-one clauses
// for a direct-encoded variable (spec.md §4.3). Bits-encoded variables get
// no encoding constraint: no sum equation linking their bit atoms to their
// condition atoms is written.
func (m *Model) postDirectEncodingConstraints(idx int) {
	enc := m.names.encs[idx]
	if enc.kind != EncodingDirect {
		return
	}
	atLeastOne, atMostOnes := m.names.DirectEncodingConstraints(idx)
	m.model.PostConstraint(atLeastOne)
	for _, c := range atMostOnes {
		m.model.PostConstraint(c)
	}
}

func rangeValues(lo, hi Integer) []Integer {
	out := make([]Integer, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		out = append(out, v)
	}
	return out
}

func dedupSorted(values []Integer) []Integer {
	cp := append([]Integer(nil), values...)
	slices.Sort(cp)
	return slices.Compact(cp)
}

// Post installs a constraint: it both runs the constraint's propagator
// registration and lets it write its model clauses.
func (m *Model) Post(c Constraint) error {
	return c.Post(m)
}

// Minimise sets the objective to minimise v.
func (m *Model) Minimise(v IntegerVariableID) {
	m.objective = &objectiveState{variable: v, sense: Minimise}
	m.setObjectiveLine(v, true)
}

// Maximise sets the objective to maximise v.
func (m *Model) Maximise(v IntegerVariableID) {
	m.objective = &objectiveState{variable: v, sense: Maximise}
	m.setObjectiveLine(v, false)
}

// setObjectiveLine writes the OPB model's objective line over v's atoms.
// Views are skipped rather than guessed at: none of this module's scenarios
// optimise a view, and the spec does not define what "minimise s*x+k"
// should render as in atom-space.
func (m *Model) setObjectiveLine(v IntegerVariableID, minimise bool) {
	if !v.IsSimple() {
		return
	}
	terms, _ := m.names.ObjectiveTerms(v.simple)
	m.model.SetObjective(opb.Objective{Minimise: minimise, Terms: terms})
}

// BranchOn registers the variables search should branch over; search
// reports a solution once every one of these is a singleton.
func (m *Model) BranchOn(vars ...IntegerVariableID) {
	m.branchVars = append(m.branchVars, vars...)
}

// AddPresolver registers a presolver to run once before search begins.
func (m *Model) AddPresolver(p Presolver) {
	m.presolvers = append(m.presolvers, p)
}

// Store exposes the domain store for constraints needing direct queries at
// post time (e.g. to read initial domains for a table presolver).
func (m *Model) Store() *Store { return m.store }

// Names exposes the proof name tracker.
func (m *Model) Names() *NameTracker { return m.names }

// ModelWriter exposes the OPB model writer so constraints can post clauses.
func (m *Model) ModelWriter() *ModelWriter { return m.model }

// Scheduler exposes the propagator registry.
func (m *Model) Scheduler() *Scheduler { return m.sched }

// Tracker exposes the shared inference tracker (propagators close over it).
func (m *Model) Tracker() *InferenceTracker { return m.tracker }

// Proving reports whether a proof is being produced.
func (m *Model) Proving() bool { return m.proof != nil }

// runPresolvers executes every registered presolver once.
func (m *Model) runPresolvers() error {
	for _, p := range m.presolvers {
		if err := p.Run(m); err != nil {
			return err
		}
	}
	return nil
}

// WriteModel serialises the OPB model file to w.
func (m *Model) WriteModel(w io.Writer) error {
	return m.model.WriteTo(w)
}
