package gcs

import (
	"github.com/gitrdm/pbcert/pkg/gcs/opb"
)

// JustificationKind enumerates how an inference is to be justified to the
// proof (spec.md §4.5).
type JustificationKind uint8

const (
	// JustifyRUP: the tracker emits one RUP line for the inferred literal,
	// referencing Reason as the hint list.
	JustifyRUP JustificationKind = iota
	// JustifyExplicit: the propagator's callback is invoked to emit
	// whatever proof lines it needs (may emit many; lines written through
	// RawRUP are marked Temporary and deleted at the end of the current
	// propagation round).
	JustifyExplicit
	// JustifyAssertion: the literal is asserted without a reason (used for
	// the model's own encoding constraints, already justified by
	// construction).
	JustifyAssertion
	// JustifyGuess: a branching decision; no proof obligation (guesses are
	// proved correct by virtue of being explored fully, not individually
	// justified).
	JustifyGuess
	// JustifyNone: no proof is being produced, or the inference needs no
	// justification (e.g. pure bookkeeping).
	JustifyNone
)

// ExplicitJustifier is called when JustificationKind is JustifyExplicit; it
// may emit any number of proof lines through tracker and returns an error
// if writing them failed.
type ExplicitJustifier func(tracker *InferenceTracker) error

// Justification packages how one inference should be proved.
type Justification struct {
	Kind     JustificationKind
	Explicit ExplicitJustifier
}

func RUPJustification() Justification          { return Justification{Kind: JustifyRUP} }
func ExplicitlyBy(f ExplicitJustifier) Justification {
	return Justification{Kind: JustifyExplicit, Explicit: f}
}
func AssertionJustification() Justification    { return Justification{Kind: JustifyAssertion} }
func GuessJustification() Justification        { return Justification{Kind: JustifyGuess} }
func NoJustificationNeeded() Justification     { return Justification{Kind: JustifyNone} }

// InferenceTracker is the propagator-facing API (C8): it translates an
// inference to a domain mutation via the Store, materialises reasons into
// explicit literals and emits proof lines strictly before the mutation
// becomes observable to any other propagator, then reports HowChanged to
// the scheduler.
type InferenceTracker struct {
	store   *Store
	names   *NameTracker
	model   *ModelWriter
	proof   *ProofLogger // nil when no proof is being produced
	sched   *Scheduler
	contradicted bool
}

func newInferenceTracker(store *Store, names *NameTracker, model *ModelWriter, proof *ProofLogger, sched *Scheduler) *InferenceTracker {
	return &InferenceTracker{store: store, names: names, model: model, proof: proof, sched: sched}
}

// Store exposes the underlying domain store for read-only queries; most
// propagators hold this reference directly rather than round-tripping
// through the tracker for every query.
func (it *InferenceTracker) Store() *Store { return it.store }

// Proving reports whether a proof is currently being produced.
func (it *InferenceTracker) Proving() bool { return it.proof != nil }

// reasonToTerms converts a reason (literals currently implied by the state)
// into OPB literal terms for a RUP hint.
func (it *InferenceTracker) reasonToTerms(reason []Literal) []opb.Term {
	if it.proof == nil {
		return nil
	}
	terms := make([]opb.Term, 0, len(reason))
	for _, l := range reason {
		if l.isFlag {
			terms = append(terms, it.names.FlagTerm(l.flag, 1))
		} else {
			terms = append(terms, it.names.ConditionLiteral(l.condition))
		}
	}
	return terms
}

// emitJustification writes whatever proof lines the justification calls
// for for the literal being inferred, strictly before the caller applies
// the corresponding domain mutation.
func (it *InferenceTracker) emitJustification(lit IntegerVariableCondition, j Justification, reason []Literal) error {
	if it.proof == nil {
		return nil
	}
	switch j.Kind {
	case JustifyRUP:
		term := it.names.ConditionLiteral(lit)
		c := opb.Constraint{Terms: []opb.Term{term}, Cmp: opb.GreaterEq, RHS: 1}
		line, err := it.proof.RUP(c, it.reasonToTerms(reason))
		if err != nil {
			return err
		}
		it.proof.MarkTemporary(line)
		return nil
	case JustifyExplicit:
		if j.Explicit != nil {
			return j.Explicit(it)
		}
		return nil
	case JustifyAssertion, JustifyGuess, JustifyNone:
		return nil
	}
	return nil
}

// Infer applies a domain mutation derived from reason, justified per j.
// Returns the affected Simple variable (views resolve to their base) and the
// HowChanged classification, which is contradictionMarker when the domain
// became empty; the error is non-nil only when writing the proof failed.
func (it *InferenceTracker) Infer(lit IntegerVariableCondition, j Justification, reason []Literal) (IntegerVariableID, HowChanged, error) {
	if err := it.emitJustification(lit, j, reason); err != nil {
		return IntegerVariableID{}, NoChange, err
	}
	var v IntegerVariableID
	var how HowChanged
	switch lit.Kind {
	case CondEqual:
		v, how = it.store.InferEqual(lit.Var, lit.Val)
	case CondNotEqual:
		v, how = it.store.InferNotEqual(lit.Var, lit.Val)
	case CondGreaterEqual:
		v, how = it.store.InferGreaterEqual(lit.Var, lit.Val)
	case CondLess:
		v, how = it.store.InferLess(lit.Var, lit.Val)
	}
	if how == contradictionMarker {
		it.contradicted = true
		return v, how, nil
	}
	if how != NoChange && it.sched != nil && v.IsSimple() {
		it.sched.notifyChanged(v.simple, how)
	}
	return v, how, nil
}

// InferTrue emits a tautology's proof steps only (no domain mutation),
// used to record derivations whose sole purpose is to extend the proof log
// (e.g. an intermediate cutting-planes line a later justification refers
// to).
func (it *InferenceTracker) InferTrue(j Justification) error {
	if it.proof == nil || j.Kind != JustifyExplicit || j.Explicit == nil {
		return nil
	}
	return j.Explicit(it)
}

// Contradiction terminates the current propagation with a certified
// empty-clause derivation.
func (it *InferenceTracker) Contradiction(j Justification, reason []Literal) error {
	if it.proof != nil {
		switch j.Kind {
		case JustifyExplicit:
			if j.Explicit != nil {
				if err := j.Explicit(it); err != nil {
					return err
				}
			}
		case JustifyRUP:
			c := opb.Constraint{Terms: nil, Cmp: opb.GreaterEq, RHS: 1}
			if _, err := it.proof.RUP(c, it.reasonToTerms(reason)); err != nil {
				return err
			}
		}
	}
	it.contradicted = true
	return nil
}

// RawRUP emits a RUP line for an arbitrary already-built constraint
// (used by propagators whose justification is naturally expressed as a
// constraint over several variables' atoms, e.g. linear inequality bound
// tightening). Returns the proof-stream line number (0 if no proof). The
// line is marked Temporary.
func (it *InferenceTracker) RawRUP(c opb.Constraint, reason []Literal) (int, error) {
	if it.proof == nil {
		return 0, nil
	}
	line, err := it.proof.RUP(c, it.reasonToTerms(reason))
	if err == nil {
		it.proof.MarkTemporary(line)
	}
	return line, err
}

// PolDerive exposes the cutting-planes derivation primitive directly to
// propagators whose justification strategy composes existing model/proof
// lines; no propagator in this package calls it.
func (it *InferenceTracker) PolDerive(steps []opb.PolStep) (int, error) {
	if it.proof == nil {
		return 0, nil
	}
	return it.proof.PolDerive(steps)
}

// ModelLineFor returns the model constraint posted at line n, for
// justifications that need to inspect their own model line.
func (it *InferenceTracker) ModelLineFor(n int) (opb.Constraint, bool) {
	return it.model.LineAt(n)
}

// Names exposes the proof name tracker for condition-to-atom lookups.
func (it *InferenceTracker) Names() *NameTracker { return it.names }

// Contradicted reports whether a contradiction was raised on this tracker
// since the last reset (the scheduler resets it once consumed).
func (it *InferenceTracker) Contradicted() bool { return it.contradicted }

func (it *InferenceTracker) resetContradiction() { it.contradicted = false }
