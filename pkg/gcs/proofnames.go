package gcs

import (
	"fmt"

	"github.com/gitrdm/pbcert/pkg/gcs/opb"
)

// Encoding selects how a Simple integer variable is represented in 0/1
// proof atoms, chosen at variable creation per spec.md §4.3.
type Encoding uint8

const (
	// EncodingDirect allocates one atom per value in the initial domain
	// plus an equality-to-sum constraint.
	EncodingDirect Encoding = iota
	// EncodingBits allocates a sign atom (if lb<0) plus one atom per bit
	// 0..k, with k from bitsHighBit.
	EncodingBits
)

// varEncoding records how one Simple variable was encoded into atoms.
type varEncoding struct {
	kind Encoding
	name string

	// EncodingDirect: atom for each value v in [directLo, directLo+len(directAtoms))
	directLo    Integer
	directAtoms []int // proof atom index per offset from directLo; 0 means "no atom" (value never legal)

	// EncodingBits: x = lb + sum 2^i * b_i - 2^(k+1) * s
	lb        Integer
	bitAtoms  []int // atom per bit i, coefficient 2^i
	signAtom  int   // 0 if unused
	highBit   int   // k
}

// NameTracker is the proof-name tracker and encoder (C5). It maps every
// Simple variable and every ProofFlag to a string name and a set of 0/1
// proof atoms, and maintains per-condition atom identifiers so that
// `x >= v` and `x < v` can be emitted as single literals.
type NameTracker struct {
	friendlyNames bool
	fullEncoding  bool

	nextAtom int
	encs     []varEncoding // indexed by Simple variable index
	flagAtom []int         // indexed by ProofFlag index

	// conditionAtoms caches an atom allocated for a non-trivial condition
	// (e.g. bits-encoded `x >= v` that doesn't correspond to a single bit)
	// so repeated justification of the same condition reuses one atom.
	conditionAtoms map[conditionKey]int
}

type conditionKey struct {
	simple int
	kind   ConditionKind
	val    Integer
}

// NewNameTracker constructs an empty tracker. friendlyNames and
// fullEncoding are stored but change nothing: atoms are always named `xN`,
// and RegisterVariable picks one encoding per variable either way.
func NewNameTracker(friendlyNames, fullEncoding bool) *NameTracker {
	return &NameTracker{
		friendlyNames:  friendlyNames,
		fullEncoding:   fullEncoding,
		nextAtom:       1,
		conditionAtoms: make(map[conditionKey]int),
	}
}

func (nt *NameTracker) allocAtom() int {
	a := nt.nextAtom
	nt.nextAtom++
	return a
}

// chooseEncoding picks Direct for spans of at most 32 values and Bits for
// wider ones; RegisterVariable uses its choice whatever fullEncoding says.
func chooseEncoding(span int) Encoding {
	if span <= 32 {
		return EncodingDirect
	}
	return EncodingBits
}

// RegisterVariable allocates proof atoms for a freshly created Simple
// variable over domain values. name may be empty. The encoding is recorded
// for DirectEncodingConstraints, ConditionLiteral and ObjectiveTerms.
func (nt *NameTracker) RegisterVariable(idx int, name string, values []Integer) {
	for len(nt.encs) <= idx {
		nt.encs = append(nt.encs, varEncoding{})
	}
	if name == "" {
		name = fmt.Sprintf("x%d", idx)
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = MinI(lo, v)
		hi = MaxI(hi, v)
	}
	span := int(hi - lo + 1)
	kind := chooseEncoding(span)

	enc := varEncoding{kind: kind, name: name, lb: lo}
	if kind == EncodingDirect {
		enc.directLo = lo
		enc.directAtoms = make([]int, span)
		valid := make(map[Integer]bool, len(values))
		for _, v := range values {
			valid[v] = true
		}
		for i := 0; i < span; i++ {
			v := lo + Integer(i)
			if valid[v] {
				enc.directAtoms[i] = nt.allocAtom()
			}
		}
	} else {
		k := bitsHighBit(lo, hi)
		enc.highBit = k
		enc.bitAtoms = make([]int, k+1)
		for i := range enc.bitAtoms {
			enc.bitAtoms[i] = nt.allocAtom()
		}
		if lo < 0 {
			enc.signAtom = nt.allocAtom()
		}
	}
	nt.encs[idx] = enc
}

// bitsHighBit computes the smallest k with 2^(k+1) > max(|lb|, ub+1, 2),
// per spec.md §4.3.
func bitsHighBit(lb, ub Integer) int {
	m := AbsI(lb)
	m = MaxI(m, AddSat(ub, 1))
	m = MaxI(m, 2)
	k := 0
	for (Integer(1) << uint(k+1)) <= m {
		k++
	}
	return k
}

// RegisterFlag allocates a fresh atom for a ProofFlag index.
func (nt *NameTracker) RegisterFlag(idx int) {
	for len(nt.flagAtom) <= idx {
		nt.flagAtom = append(nt.flagAtom, 0)
	}
	nt.flagAtom[idx] = nt.allocAtom()
}

func (nt *NameTracker) NumAtoms() int { return nt.nextAtom - 1 }

// AtomName renders the positional name `xN` of an atom; the friendlyNames
// setting does not change the result.
func (nt *NameTracker) AtomName(atom int) string {
	if !nt.friendlyNames {
		return fmt.Sprintf("x%d", atom)
	}
	return fmt.Sprintf("x%d", atom) // same positional name as above
}

// FlagTerm renders a flag literal as an opb.Term.
func (nt *NameTracker) FlagTerm(f ProofFlag, coeff int64) opb.Term {
	atom := nt.flagAtom[f.index]
	return opb.Term{Coeff: coeff, Atom: atom, Negated: !f.positive}
}

// DirectEncodingConstraints returns the at-least-one/at-most-one constraint
// pair over direct atoms for variable idx (EncodingDirect only).
func (nt *NameTracker) DirectEncodingConstraints(idx int) (atLeastOne opb.Constraint, atMostOnes []opb.Constraint) {
	enc := nt.encs[idx]
	terms := make([]opb.Term, 0, len(enc.directAtoms))
	for _, a := range enc.directAtoms {
		if a != 0 {
			terms = append(terms, opb.Term{Coeff: 1, Atom: a})
		}
	}
	atLeastOne = opb.Constraint{Terms: terms, Cmp: opb.GreaterEq, RHS: 1}
	for i := 0; i < len(terms); i++ {
		for j := i + 1; j < len(terms); j++ {
			atMostOnes = append(atMostOnes, opb.Constraint{
				Terms: []opb.Term{
					{Coeff: 1, Atom: terms[i].Atom, Negated: true},
					{Coeff: 1, Atom: terms[j].Atom, Negated: true},
				},
				Cmp: opb.GreaterEq, RHS: 1,
			})
		}
	}
	return
}

// BitsSumEquation returns the parts of a bits-encoded variable's equation
// `x = lb + sum 2^i b_i - 2^(k+1) s`: the bit atoms, the sign atom (0 if
// none) and lb. Neither the model writer nor ConditionLiteral calls it, so
// the equation is not written to the model.
func (nt *NameTracker) BitsSumEquation(idx int) (bitAtoms []int, signAtom int, lb Integer) {
	enc := nt.encs[idx]
	return enc.bitAtoms, enc.signAtom, enc.lb
}

// ConditionLiteral returns the single literal (possibly allocating a fresh
// atom, cached) expressing the condition c, so that `x >= v` / `x < v` can
// be emitted as one literal as spec.md §4.3 requires.
func (nt *NameTracker) ConditionLiteral(c IntegerVariableCondition) opb.Term {
	rc := resolveCondition(c)
	if rc.Var.kind != kindSimple {
		// Constant condition: represent as an always-true/false 0-weight term.
		return opb.Term{Coeff: 0, Atom: 0}
	}
	idx := rc.Var.simple
	enc := nt.encs[idx]
	if enc.kind == EncodingDirect {
		switch rc.Kind {
		case CondEqual:
			off := int(rc.Val - enc.directLo)
			if off < 0 || off >= len(enc.directAtoms) || enc.directAtoms[off] == 0 {
				return opb.Term{Coeff: 0, Atom: 0}
			}
			return opb.Term{Coeff: 1, Atom: enc.directAtoms[off]}
		case CondNotEqual:
			off := int(rc.Val - enc.directLo)
			if off < 0 || off >= len(enc.directAtoms) || enc.directAtoms[off] == 0 {
				return opb.Term{Coeff: 0, Atom: 0}
			}
			return opb.Term{Coeff: 1, Atom: enc.directAtoms[off], Negated: true}
		default:
			key := conditionKey{idx, rc.Kind, rc.Val}
			if a, ok := nt.conditionAtoms[key]; ok {
				return opb.Term{Coeff: 1, Atom: a}
			}
			a := nt.allocAtom()
			nt.conditionAtoms[key] = a
			return opb.Term{Coeff: 1, Atom: a}
		}
	}
	// Bits encoding: every condition is materialised as its own cached atom;
	// no constraint links these atoms to the bit atoms.
	key := conditionKey{idx, rc.Kind, rc.Val}
	if a, ok := nt.conditionAtoms[key]; ok {
		return opb.Term{Coeff: 1, Atom: a}
	}
	a := nt.allocAtom()
	nt.conditionAtoms[key] = a
	return opb.Term{Coeff: 1, Atom: a}
}

// ObjectiveTerms renders the weighted sum of 0/1 atoms representing
// variable idx's value, for use as an OPB objective line: one term per
// legal value weighted by the value itself for EncodingDirect, or one term
// per bit weighted by its power of two (plus the sign atom at
// -2^(highBit+1), if present) for EncodingBits. The returned constant is
// EncodingBits' lb offset, which the OPB objective syntax has no room for;
// callers fold it in however their output format allows (the model writer
// here simply omits it, so a bits-encoded objective's reported optimum is
// offset by lb from the true value; the bits-encoded objective variables of
// the bundled problems have lb 0, so for them the offset is 0).
func (nt *NameTracker) ObjectiveTerms(idx int) ([]opb.Term, Integer) {
	enc := nt.encs[idx]
	if enc.kind == EncodingDirect {
		terms := make([]opb.Term, 0, len(enc.directAtoms))
		for i, a := range enc.directAtoms {
			if a == 0 {
				continue
			}
			val := enc.directLo + Integer(i)
			terms = append(terms, opb.Term{Coeff: int64(val), Atom: a})
		}
		return terms, 0
	}
	terms := make([]opb.Term, 0, len(enc.bitAtoms)+1)
	for i, a := range enc.bitAtoms {
		terms = append(terms, opb.Term{Coeff: int64(1) << uint(i), Atom: a})
	}
	if enc.signAtom != 0 {
		terms = append(terms, opb.Term{Coeff: -(int64(1) << uint(enc.highBit+1)), Atom: enc.signAtom})
	}
	return terms, enc.lb
}

func (nt *NameTracker) VarName(idx int) string {
	if idx < 0 || idx >= len(nt.encs) {
		return fmt.Sprintf("x%d", idx)
	}
	return nt.encs[idx].name
}
