package gcs_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/pbcert/pkg/gcs"
)

func solveAll(t *testing.T, m *gcs.Model, watch ...gcs.IntegerVariableID) [][]gcs.Integer {
	t.Helper()
	var got [][]gcs.Integer
	result, err := gcs.NewSolver(m, gcs.SolverConfig{
		Callbacks: gcs.SolveCallbacks{
			Solution: func(s *gcs.Solution) bool {
				row := make([]gcs.Integer, len(watch))
				for i, v := range watch {
					row[i] = s.Value(v)
				}
				got = append(got, row)
				return true
			},
		},
	}).Solve()
	require.NoError(t, err)
	require.Equal(t, gcs.Satisfiable, result.Outcome)
	return got
}

func TestTableRestrictsToAllowedTuples(t *testing.T) {
	m := gcs.NewModel(gcs.ProofOptions{}, nil, nil)
	x, err := m.CreateIntegerVariable(0, 2, "x")
	require.NoError(t, err)
	y, err := m.CreateIntegerVariable(0, 2, "y")
	require.NoError(t, err)
	require.NoError(t, m.Post(&gcs.Table{
		Vars:   []gcs.IntegerVariableID{x, y},
		Tuples: [][]gcs.Integer{{0, 1}, {1, 2}, {2, 0}},
	}))
	m.BranchOn(x, y)

	got := solveAll(t, m, x, y)
	sort.Slice(got, func(i, j int) bool { return got[i][0] < got[j][0] })
	require.Equal(t, [][]gcs.Integer{{0, 1}, {1, 2}, {2, 0}}, got)
}

func TestSmartTableEqualityEntry(t *testing.T) {
	m := gcs.NewModel(gcs.ProofOptions{}, nil, nil)
	x, err := m.CreateIntegerVariable(0, 3, "x")
	require.NoError(t, err)
	y, err := m.CreateIntegerVariable(0, 3, "y")
	require.NoError(t, err)
	// Only tuples where x == 1 and y is anything are allowed.
	require.NoError(t, m.Post(&gcs.SmartTable{
		Vars: []gcs.IntegerVariableID{x, y},
		Tuples: []gcs.SmartTuple{
			{Entries: []gcs.SmartEntry{{Op: gcs.SmartEq, Const: 1, RefCol: -1}, {Op: gcs.SmartAny}}},
		},
	}))
	m.BranchOn(x, y)

	got := solveAll(t, m, x)
	for _, row := range got {
		require.Equal(t, gcs.Integer(1), row[0])
	}
	require.Len(t, got, 4)
}

func TestRegularAcceptsExactLanguage(t *testing.T) {
	m := gcs.NewModel(gcs.ProofOptions{}, nil, nil)
	vars, err := m.CreateIntegerVariableVector(3, 0, 1, "b")
	require.NoError(t, err)
	// DFA over {0,1}^3 accepting strings with no two consecutive 1s.
	transitions := []gcs.Transition{
		{From: 0, Label: 0, To: 0},
		{From: 0, Label: 1, To: 1},
		{From: 1, Label: 0, To: 0},
	}
	require.NoError(t, m.Post(&gcs.Regular{
		Vars:        vars,
		StartState:  0,
		NumStates:   2,
		Transitions: transitions,
		Accepting:   []int{0, 1},
	}))
	m.BranchOn(vars...)

	got := solveAll(t, m, vars...)
	for _, row := range got {
		for i := 0; i+1 < len(row); i++ {
			require.False(t, row[i] == 1 && row[i+1] == 1, "consecutive ones in %v", row)
		}
	}
	require.Len(t, got, 5) // strings of length 3 over {0,1} with no "11": 000,001,010,100,101
}

func TestElementSelectsArrayEntry(t *testing.T) {
	m := gcs.NewModel(gcs.ProofOptions{}, nil, nil)
	arr, err := m.CreateIntegerVariableVector(3, 10, 12, "a")
	require.NoError(t, err)
	idx, err := m.CreateIntegerVariable(0, 2, "idx")
	require.NoError(t, err)
	val, err := m.CreateIntegerVariable(10, 12, "val")
	require.NoError(t, err)
	require.NoError(t, m.Post(&gcs.Element{Var: val, Idx: idx, Array: arr}))
	require.NoError(t, m.Post(&gcs.LinearEquals{
		Terms: []gcs.LinearTerm{{Coeff: 1, Var: arr[0]}, {Coeff: -1, Var: arr[1]}}, RHS: 0,
	}))
	m.BranchOn(idx, val, arr[0], arr[1], arr[2])

	got := solveAll(t, m, idx, val, arr[0], arr[1], arr[2])
	for _, row := range got {
		require.Equal(t, row[1], row[2+int(row[0])])
	}
}

func TestCircuitFindsHamiltonianCycles(t *testing.T) {
	m := gcs.NewModel(gcs.ProofOptions{}, nil, nil)
	succ, err := m.CreateIntegerVariableVector(4, 0, 3, "succ")
	require.NoError(t, err)
	require.NoError(t, m.Post(&gcs.Circuit{Succ: succ, Options: gcs.DefaultSCCOptions()}))
	m.BranchOn(succ...)

	got := solveAll(t, m, succ...)
	for _, row := range got {
		visited := make([]bool, len(row))
		cur := 0
		for i := 0; i < len(row); i++ {
			require.False(t, visited[cur], "cycle shorter than n in %v", row)
			visited[cur] = true
			cur = int(row[cur])
		}
		require.Equal(t, 0, cur, "cycle should return to start in %v", row)
	}
	require.NotEmpty(t, got)
}

func TestInverseLinksBothDirections(t *testing.T) {
	m := gcs.NewModel(gcs.ProofOptions{}, nil, nil)
	x, err := m.CreateIntegerVariableVector(3, 0, 2, "x")
	require.NoError(t, err)
	y, err := m.CreateIntegerVariableVector(3, 0, 2, "y")
	require.NoError(t, err)
	require.NoError(t, m.Post(&gcs.Inverse{X: x, Y: y}))
	m.BranchOn(append(append([]gcs.IntegerVariableID{}, x...), y...)...)

	got := solveAll(t, m, append(append([]gcs.IntegerVariableID{}, x...), y...)...)
	require.NotEmpty(t, got)
	for _, row := range got {
		xs, ys := row[:3], row[3:]
		for i, xv := range xs {
			require.Equal(t, gcs.Integer(i), ys[xv])
		}
	}
}

func TestAbsLinksMagnitude(t *testing.T) {
	m := gcs.NewModel(gcs.ProofOptions{}, nil, nil)
	v, err := m.CreateIntegerVariable(-3, 3, "v")
	require.NoError(t, err)
	r, err := m.CreateIntegerVariable(0, 5, "r")
	require.NoError(t, err)
	require.NoError(t, m.Post(&gcs.Abs{V: v, R: r}))
	m.BranchOn(v, r)

	got := solveAll(t, m, v, r)
	require.NotEmpty(t, got)
	for _, row := range got {
		want := row[0]
		if want < 0 {
			want = -want
		}
		require.Equal(t, want, row[1])
	}
}

func TestAtMostOneForbidsTwoSimultaneousConditions(t *testing.T) {
	m := gcs.NewModel(gcs.ProofOptions{}, nil, nil)
	a, err := m.CreateIntegerVariable(0, 1, "a")
	require.NoError(t, err)
	b, err := m.CreateIntegerVariable(0, 1, "b")
	require.NoError(t, err)
	require.NoError(t, m.Post(&gcs.AtMostOne{
		Conditions: []gcs.IntegerVariableCondition{
			gcs.EqualTo(a, 1),
			gcs.EqualTo(b, 1),
		},
	}))
	m.BranchOn(a, b)

	got := solveAll(t, m, a, b)
	for _, row := range got {
		require.False(t, row[0] == 1 && row[1] == 1, "both conditions held in %v", row)
	}
	require.Len(t, got, 3) // (0,0) (0,1) (1,0)
}

func TestArithmeticTimesLinksFactorsToProduct(t *testing.T) {
	m := gcs.NewModel(gcs.ProofOptions{}, nil, nil)
	a, err := m.CreateIntegerVariable(1, 4, "a")
	require.NoError(t, err)
	b, err := m.CreateIntegerVariable(1, 4, "b")
	require.NoError(t, err)
	r, err := m.CreateIntegerVariable(0, 16, "r")
	require.NoError(t, err)
	require.NoError(t, m.Post(&gcs.Arithmetic{Op: gcs.OpTimes, A: a, B: b, R: r}))
	m.BranchOn(a, b, r)

	got := solveAll(t, m, a, b, r)
	require.NotEmpty(t, got)
	for _, row := range got {
		require.Equal(t, row[0]*row[1], row[2])
	}
}

func TestArithmeticModExcludesZeroDivisor(t *testing.T) {
	m := gcs.NewModel(gcs.ProofOptions{}, nil, nil)
	a, err := m.CreateIntegerVariable(0, 5, "a")
	require.NoError(t, err)
	b, err := m.CreateIntegerVariable(0, 3, "b")
	require.NoError(t, err)
	r, err := m.CreateIntegerVariable(0, 5, "r")
	require.NoError(t, err)
	require.NoError(t, m.Post(&gcs.Arithmetic{Op: gcs.OpMod, A: a, B: b, R: r}))
	m.BranchOn(a, b, r)

	got := solveAll(t, m, a, b, r)
	for _, row := range got {
		require.NotEqual(t, gcs.Integer(0), row[1], "zero divisor should have been excluded at post time")
		require.Equal(t, row[0]%row[1], row[2])
	}
}

func TestAutoTablePresolverRestrictsToAllowedPairs(t *testing.T) {
	m := gcs.NewModel(gcs.ProofOptions{}, nil, nil)
	x, err := m.CreateIntegerVariable(0, 2, "x")
	require.NoError(t, err)
	y, err := m.CreateIntegerVariable(0, 2, "y")
	require.NoError(t, err)
	m.AddPresolver(&gcs.AutoTable{
		Vars: []gcs.IntegerVariableID{x, y},
		Allowed: func(tuple []gcs.Integer) bool {
			return tuple[0] != tuple[1]
		},
		MaxSize: 100,
	})
	m.BranchOn(x, y)

	got := solveAll(t, m, x, y)
	for _, row := range got {
		require.NotEqual(t, row[0], row[1])
	}
	require.Len(t, got, 6)
}
