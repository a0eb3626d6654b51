// Package problems builds the canonical example models exercised by
// cmd/pbcert: one function per
// scenario, each returning a ready-to-solve *gcs.Model plus the variables a
// caller might want to print.
package problems

import (
	"fmt"
	"io"

	"github.com/gitrdm/pbcert/pkg/gcs"
)

// Build constructs the named problem's model. Unknown names return an
// error rather than a nil model, so callers can report a usage error.
func Build(name string, opts gcs.ProofOptions, opbW, proofW io.Writer) (*gcs.Model, error) {
	m := gcs.NewModel(opts, opbW, proofW)
	var err error
	switch name {
	case "send-more-money":
		err = sendMoreMoney(m)
	case "n-queens":
		err = nQueens(m, 8)
	case "knapsack":
		err = knapsack(m)
	case "regular":
		err = regularStrings(m)
	case "magic-square":
		err = magicSquare(m, 3)
	case "triangle":
		err = triangle(m)
	case "unsat-optimisation":
		err = unsatOptimisation(m)
	default:
		return nil, fmt.Errorf("problems: unknown problem %q", name)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Names lists every problem Build accepts, in the order spec.md §8
// enumerates its end-to-end scenarios.
func Names() []string {
	return []string{
		"send-more-money", "n-queens", "knapsack", "regular",
		"magic-square", "triangle", "unsat-optimisation",
	}
}

func sendMoreMoney(m *gcs.Model) error {
	letters := []string{"s", "e", "n", "d", "m", "o", "r", "y"}
	vars := make(map[string]gcs.IntegerVariableID, len(letters))
	for _, l := range letters {
		lo := gcs.Integer(0)
		v, err := m.CreateIntegerVariable(lo, 9, l)
		if err != nil {
			return err
		}
		vars[l] = v
	}
	m.Store().InferGreaterEqual(vars["s"], 1)
	m.Store().InferGreaterEqual(vars["m"], 1)

	all := make([]gcs.IntegerVariableID, 0, len(letters))
	for _, l := range letters {
		all = append(all, vars[l])
	}
	if err := m.Post(&gcs.AllDifferent{Vars: all, GAC: true}); err != nil {
		return err
	}

	// 1000S+100E+10N+D + 1000M+100O+10R+E - 10000M-1000O-100N-10E-Y = 0
	terms := []gcs.LinearTerm{
		{Coeff: 1000, Var: vars["s"]}, {Coeff: 100, Var: vars["e"]}, {Coeff: 10, Var: vars["n"]}, {Coeff: 1, Var: vars["d"]},
		{Coeff: 1000, Var: vars["m"]}, {Coeff: 100, Var: vars["o"]}, {Coeff: 10, Var: vars["r"]}, {Coeff: 1, Var: vars["e"]},
		{Coeff: -10000, Var: vars["m"]}, {Coeff: -1000, Var: vars["o"]}, {Coeff: -100, Var: vars["n"]}, {Coeff: -10, Var: vars["e"]}, {Coeff: -1, Var: vars["y"]},
	}
	if err := m.Post(&gcs.LinearEquals{Terms: terms, RHS: 0}); err != nil {
		return err
	}
	m.BranchOn(all...)
	return nil
}

func nQueens(m *gcs.Model, n int) error {
	rows, err := m.CreateIntegerVariableVector(n, 0, gcs.Integer(n-1), "row")
	if err != nil {
		return err
	}
	if err := m.Post(&gcs.AllDifferent{Vars: rows, GAC: true}); err != nil {
		return err
	}
	diag1 := make([]gcs.IntegerVariableID, n)
	diag2 := make([]gcs.IntegerVariableID, n)
	for i := 0; i < n; i++ {
		d1, err := m.CreateIntegerVariable(gcs.Integer(-n), gcs.Integer(n), fmt.Sprintf("diag1_%d", i))
		if err != nil {
			return err
		}
		d2, err := m.CreateIntegerVariable(0, gcs.Integer(2*n), fmt.Sprintf("diag2_%d", i))
		if err != nil {
			return err
		}
		if err := m.Post(&gcs.LinearEquals{
			Terms: []gcs.LinearTerm{{Coeff: 1, Var: rows[i]}, {Coeff: -1, Var: d1}},
			RHS:   gcs.Integer(i),
		}); err != nil {
			return err
		}
		if err := m.Post(&gcs.LinearEquals{
			Terms: []gcs.LinearTerm{{Coeff: 1, Var: rows[i]}, {Coeff: -1, Var: d2}},
			RHS:   gcs.Integer(-i),
		}); err != nil {
			return err
		}
		diag1[i], diag2[i] = d1, d2
	}
	if err := m.Post(&gcs.AllDifferent{Vars: diag1}); err != nil {
		return err
	}
	if err := m.Post(&gcs.AllDifferent{Vars: diag2}); err != nil {
		return err
	}
	m.BranchOn(rows...)
	return nil
}

func knapsack(m *gcs.Model) error {
	weights := []gcs.Integer{2, 5, 3, 1, 2, 6, 1}
	profits := []gcs.Integer{5, 10, 7, 1, 8, 11, 3}
	const capacity = gcs.Integer(14)

	items, err := m.CreateIntegerVariableVector(len(weights), 0, 1, "item")
	if err != nil {
		return err
	}
	weightVar, err := m.CreateIntegerVariable(0, capacity, "weight")
	if err != nil {
		return err
	}
	profitVar, err := m.CreateIntegerVariable(0, 1000, "profit")
	if err != nil {
		return err
	}
	if err := m.Post(&gcs.Knapsack{
		Weights: weights, Profits: profits, Items: items,
		WeightVar: weightVar, ProfitVar: profitVar,
	}); err != nil {
		return err
	}
	m.Maximise(profitVar)
	m.BranchOn(items...)
	return nil
}

func regularStrings(m *gcs.Model) error {
	// Language 00*11*00* + 2*, over the alphabet {0,1,2}, length 5.
	vars, err := m.CreateIntegerVariableVector(5, 0, 2, "sym")
	if err != nil {
		return err
	}
	// States: 0 start, 1 seen leading 0, 2 in 1-run, 3 in trailing-0 run,
	// 4 accepting-dead for 2*, 5 trap.
	transitions := []gcs.Transition{
		{From: 0, Label: 0, To: 1},
		{From: 0, Label: 2, To: 4},
		{From: 1, Label: 0, To: 1},
		{From: 1, Label: 1, To: 2},
		{From: 2, Label: 1, To: 2},
		{From: 2, Label: 0, To: 3},
		{From: 3, Label: 0, To: 3},
		{From: 4, Label: 2, To: 4},
	}
	if err := m.Post(&gcs.Regular{
		Vars: vars, StartState: 0, NumStates: 6,
		Transitions: transitions, Accepting: []int{3, 4},
	}); err != nil {
		return err
	}
	m.BranchOn(vars...)
	return nil
}

func magicSquare(m *gcs.Model, n int) error {
	cells, err := m.CreateIntegerVariableVector(n*n, 1, gcs.Integer(n*n), "cell")
	if err != nil {
		return err
	}
	if err := m.Post(&gcs.AllDifferent{Vars: cells, GAC: true}); err != nil {
		return err
	}
	magic := gcs.Integer(n * (n*n + 1) / 2)
	at := func(r, c int) gcs.IntegerVariableID { return cells[r*n+c] }
	lineSum := func(vars []gcs.IntegerVariableID) error {
		terms := make([]gcs.LinearTerm, len(vars))
		for i, v := range vars {
			terms[i] = gcs.LinearTerm{Coeff: 1, Var: v}
		}
		return m.Post(&gcs.LinearEquals{Terms: terms, RHS: magic})
	}
	for r := 0; r < n; r++ {
		row := make([]gcs.IntegerVariableID, n)
		for c := 0; c < n; c++ {
			row[c] = at(r, c)
		}
		if err := lineSum(row); err != nil {
			return err
		}
	}
	for c := 0; c < n; c++ {
		col := make([]gcs.IntegerVariableID, n)
		for r := 0; r < n; r++ {
			col[r] = at(r, c)
		}
		if err := lineSum(col); err != nil {
			return err
		}
	}
	diag1 := make([]gcs.IntegerVariableID, n)
	diag2 := make([]gcs.IntegerVariableID, n)
	for i := 0; i < n; i++ {
		diag1[i] = at(i, i)
		diag2[i] = at(i, n-1-i)
	}
	if err := lineSum(diag1); err != nil {
		return err
	}
	if err := lineSum(diag2); err != nil {
		return err
	}
	m.BranchOn(cells...)
	return nil
}

func triangle(m *gcs.Model) error {
	a, err := m.CreateIntegerVariable(1, 10, "a")
	if err != nil {
		return err
	}
	b, err := m.CreateIntegerVariable(1, 10, "b")
	if err != nil {
		return err
	}
	c, err := m.CreateIntegerVariable(1, 10, "c")
	if err != nil {
		return err
	}
	a2, err := m.CreateIntegerVariable(1, 100, "a2")
	if err != nil {
		return err
	}
	b2, err := m.CreateIntegerVariable(1, 100, "b2")
	if err != nil {
		return err
	}
	c2, err := m.CreateIntegerVariable(1, 100, "c2")
	if err != nil {
		return err
	}
	if err := m.Post(&gcs.Arithmetic{Op: gcs.OpTimes, A: a, B: a, R: a2}); err != nil {
		return err
	}
	if err := m.Post(&gcs.Arithmetic{Op: gcs.OpTimes, A: b, B: b, R: b2}); err != nil {
		return err
	}
	if err := m.Post(&gcs.Arithmetic{Op: gcs.OpTimes, A: c, B: c, R: c2}); err != nil {
		return err
	}
	if err := m.Post(&gcs.LinearEquals{
		Terms: []gcs.LinearTerm{{Coeff: 1, Var: a2}, {Coeff: 1, Var: b2}, {Coeff: -1, Var: c2}},
		RHS:   0,
	}); err != nil {
		return err
	}
	if err := m.Post(gcs.LinearGreaterEqual(
		[]gcs.LinearTerm{{Coeff: -1, Var: a}, {Coeff: 1, Var: b}}, 1,
	)); err != nil {
		return err
	}
	m.BranchOn(a, b, c)
	return nil
}

func unsatOptimisation(m *gcs.Model) error {
	x, err := m.CreateIntegerVariable(0, 100, "x")
	if err != nil {
		return err
	}
	if err := m.Post(gcs.LinearGreaterEqual(
		[]gcs.LinearTerm{{Coeff: 1, Var: x}}, 200,
	)); err != nil {
		return err
	}
	m.Maximise(x)
	m.BranchOn(x)
	return nil
}
