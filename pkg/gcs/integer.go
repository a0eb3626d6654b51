// Package gcs implements a finite-domain constraint programming solver that
// produces a cutting-planes pseudo-Boolean proof of every inference it makes.
//
// The package is organised the way the solver itself is laid out: a trailed
// domain store (C1/C2), typed variable references (C3), a literal/condition
// language (C4), a proof-name tracker and encoder (C5), an OPB model writer
// and proof logger (C6/C7, backed by the gcs/opb sub-package), an inference
// tracker (C8), a propagator registry and fixpoint scheduler (C9), a library
// of global-constraint propagators (C10), a problem builder (C11) and a
// depth-first branch-and-bound search (C12).
package gcs

import "math"

// Integer is the solver's only numeric type: a 64-bit signed scalar with a
// total order. Arithmetic saturates at the bounds instead of wrapping, so a
// coefficient explosion in a linear constraint degrades to "effectively
// infinite" rather than silently flipping sign.
type Integer int64

const (
	// MaxInteger is the largest representable domain value.
	MaxInteger Integer = math.MaxInt64
	// MinInteger is the smallest representable domain value.
	MinInteger Integer = math.MinInt64
)

// AddSat returns a+b, saturating instead of overflowing.
func AddSat(a, b Integer) Integer {
	if b > 0 && a > MaxInteger-b {
		return MaxInteger
	}
	if b < 0 && a < MinInteger-b {
		return MinInteger
	}
	return a + b
}

// SubSat returns a-b, saturating instead of overflowing.
func SubSat(a, b Integer) Integer {
	if b == MinInteger {
		if a >= 0 {
			return MaxInteger
		}
		return AddSat(a, MaxInteger)
	}
	return AddSat(a, -b)
}

// MulSat returns a*b, saturating instead of overflowing.
func MulSat(a, b Integer) Integer {
	if a == 0 || b == 0 {
		return 0
	}
	result := a * b
	if result/b != a {
		if (a > 0) == (b > 0) {
			return MaxInteger
		}
		return MinInteger
	}
	return result
}

// NegSat returns -a, saturating MinInteger to MaxInteger.
func NegSat(a Integer) Integer {
	if a == MinInteger {
		return MaxInteger
	}
	return -a
}

// DivFloor performs floor division: the largest integer <= a/b. Division by
// zero is left to the caller (Arithmetic propagator Div/Mod document their
// own zero-divisor choice per spec's Open Question); DivFloor panics on b==0.
func DivFloor(a, b Integer) Integer {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// DivCeil is the smallest integer >= a/b.
func DivCeil(a, b Integer) Integer {
	q := a / b
	if (a%b != 0) && ((a < 0) == (b < 0)) {
		q++
	}
	return q
}

// MinI returns the smaller of a and b.
func MinI(a, b Integer) Integer {
	if a < b {
		return a
	}
	return b
}

// MaxI returns the larger of a and b.
func MaxI(a, b Integer) Integer {
	if a > b {
		return a
	}
	return b
}

// AbsI returns the absolute value of a, saturating MinInteger.
func AbsI(a Integer) Integer {
	if a < 0 {
		return NegSat(a)
	}
	return a
}
