package gcs

import "fmt"

// variableKind tags the variant carried by an IntegerVariableID. Views are
// data, not a dispatch table: every query on a View rewrites to its base
// Simple variable at the call boundary (see resolveCondition).
type variableKind uint8

const (
	kindSimple variableKind = iota
	kindConstant
	kindView
)

// IntegerVariableID is a typed handle to an integer variable: a Simple index
// into the domain store, a Constant literal value, or a View expressing an
// affine transform of a Simple base. Distinct Simple indices refer to
// disjoint storage; Views own nothing and are pure redirections.
type IntegerVariableID struct {
	kind        variableKind
	simple      int     // valid when kind == kindSimple or kindView (base index)
	constant    Integer // valid when kind == kindConstant
	negateFirst bool    // valid when kind == kindView
	thenAdd     Integer // valid when kind == kindView
}

// Simple constructs a handle to the store-backed variable at index idx.
func Simple(idx int) IntegerVariableID {
	return IntegerVariableID{kind: kindSimple, simple: idx}
}

// Constant constructs a singleton-domain handle that never touches the store.
func Constant(v Integer) IntegerVariableID {
	return IntegerVariableID{kind: kindConstant, constant: v}
}

// IsSimple reports whether v is a Simple store-backed variable.
func (v IntegerVariableID) IsSimple() bool { return v.kind == kindSimple }

// IsConstant reports whether v is a Constant.
func (v IntegerVariableID) IsConstant() bool { return v.kind == kindConstant }

// IsView reports whether v is an affine View over some base Simple variable.
func (v IntegerVariableID) IsView() bool { return v.kind == kindView }

// ConstantValue returns the literal value of a Constant handle.
func (v IntegerVariableID) ConstantValue() Integer {
	if v.kind != kindConstant {
		panic("gcs: ConstantValue on non-constant IntegerVariableID")
	}
	return v.constant
}

// SimpleIndex returns the store index of a Simple (or the base of a View).
func (v IntegerVariableID) SimpleIndex() int {
	switch v.kind {
	case kindSimple, kindView:
		return v.simple
	default:
		panic("gcs: SimpleIndex on non-simple IntegerVariableID")
	}
}

// Negate returns a view of v with its sign flipped: -v.
func (v IntegerVariableID) Negate() IntegerVariableID {
	return v.affine(true, 0)
}

// Plus returns a view of v offset by k: v+k.
func (v IntegerVariableID) Plus(k Integer) IntegerVariableID {
	return v.affine(false, k)
}

// Minus returns a view of v offset by -k: v-k.
func (v IntegerVariableID) Minus(k Integer) IntegerVariableID {
	return v.affine(false, NegSat(k))
}

// affine composes a new negate/offset pair onto v, collapsing nested views
// down to a single (negateFirst, base, thenAdd) triple as the invariant in
// §3 requires: "every query on a view rewrites to the base."
func (v IntegerVariableID) affine(negate bool, add Integer) IntegerVariableID {
	switch v.kind {
	case kindConstant:
		val := v.constant
		if negate {
			val = NegSat(val)
		}
		return Constant(AddSat(val, add))
	case kindSimple:
		return IntegerVariableID{kind: kindView, simple: v.simple, negateFirst: negate, thenAdd: add}
	case kindView:
		// (negate ? -(neg0?-base:base)+v.thenAdd : (neg0?-base:base)+v.thenAdd) + add
		newNegate := v.negateFirst
		newAdd := v.thenAdd
		if negate {
			newNegate = !newNegate
			newAdd = NegSat(newAdd)
		}
		newAdd = AddSat(newAdd, add)
		return IntegerVariableID{kind: kindView, simple: v.simple, negateFirst: newNegate, thenAdd: newAdd}
	default:
		panic("gcs: unreachable variableKind")
	}
}

// baseTransform returns (base handle, scale, offset) such that
// v == scale*base + offset, with scale in {+1,-1}, for a View; for a Simple
// it is (v, 1, 0); Constant has no base and must not be passed here.
func (v IntegerVariableID) baseTransform() (base IntegerVariableID, scale, offset Integer) {
	switch v.kind {
	case kindSimple:
		return v, 1, 0
	case kindView:
		base = Simple(v.simple)
		if v.negateFirst {
			return base, -1, v.thenAdd
		}
		return base, 1, v.thenAdd
	default:
		panic("gcs: baseTransform on constant IntegerVariableID")
	}
}

func (v IntegerVariableID) String() string {
	switch v.kind {
	case kindConstant:
		return fmt.Sprintf("%d", v.constant)
	case kindSimple:
		return fmt.Sprintf("x%d", v.simple)
	case kindView:
		sign := ""
		if v.negateFirst {
			sign = "-"
		}
		if v.thenAdd == 0 {
			return fmt.Sprintf("%sx%d", sign, v.simple)
		}
		if v.thenAdd > 0 {
			return fmt.Sprintf("%sx%d+%d", sign, v.simple, v.thenAdd)
		}
		return fmt.Sprintf("%sx%d%d", sign, v.simple, v.thenAdd)
	default:
		return "?"
	}
}

// Equal reports whether two handles denote the exact same variant (not
// whether they are provably equal variables — two distinct Simples with
// equal domains are not Equal).
func (v IntegerVariableID) Equal(o IntegerVariableID) bool {
	return v.kind == o.kind && v.simple == o.simple && v.constant == o.constant &&
		v.negateFirst == o.negateFirst && v.thenAdd == o.thenAdd
}
