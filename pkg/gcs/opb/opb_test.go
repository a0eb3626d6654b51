package opb

import "testing"

func TestConstraintModelLine(t *testing.T) {
	c := Constraint{
		Terms: []Term{{Coeff: 1, Atom: 1}, {Coeff: -2, Atom: 2, Negated: true}},
		Cmp:   GreaterEq,
		RHS:   1,
	}
	got := c.ModelLine()
	want := "+1 x1 -2 ~x2 >= 1 ;"
	if got != want {
		t.Fatalf("ModelLine() = %q, want %q", got, want)
	}
}

func TestObjectiveRender(t *testing.T) {
	o := Objective{Minimise: true, Terms: []Term{{Coeff: 3, Atom: 5}}}
	got := o.Render()
	want := "min: +3 x5 ;"
	if got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestHeader(t *testing.T) {
	got := Header(4, 2)
	want := "* #variable= 4 #constraint= 2"
	if got != want {
		t.Fatalf("Header() = %q, want %q", got, want)
	}
}
