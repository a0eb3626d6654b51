package gcs_test

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/pbcert/pkg/gcs"
)

func buildAllDifferentPair(t *testing.T) (*gcs.Model, gcs.IntegerVariableID, gcs.IntegerVariableID) {
	t.Helper()
	m := gcs.NewModel(gcs.ProofOptions{}, nil, nil)
	a, err := m.CreateIntegerVariable(0, 1, "a")
	require.NoError(t, err)
	b, err := m.CreateIntegerVariable(0, 1, "b")
	require.NoError(t, err)
	require.NoError(t, m.Post(&gcs.AllDifferent{Vars: []gcs.IntegerVariableID{a, b}, GAC: true}))
	m.BranchOn(a, b)
	return m, a, b
}

func TestAllDifferentTwoBooleansHasTwoSolutions(t *testing.T) {
	m, _, _ := buildAllDifferentPair(t)
	count := 0
	result, err := gcs.NewSolver(m, gcs.SolverConfig{
		Callbacks: gcs.SolveCallbacks{
			Solution: func(s *gcs.Solution) bool { count++; return true },
		},
	}).Solve()
	require.NoError(t, err)
	require.Equal(t, gcs.Satisfiable, result.Outcome)
	require.Equal(t, 2, count)
}

func TestLinearEqualsUnsatWhenInfeasible(t *testing.T) {
	m := gcs.NewModel(gcs.ProofOptions{}, nil, nil)
	x, err := m.CreateIntegerVariable(0, 3, "x")
	require.NoError(t, err)
	require.NoError(t, m.Post(&gcs.LinearEquals{
		Terms: []gcs.LinearTerm{{Coeff: 1, Var: x}}, RHS: 10,
	}))
	m.BranchOn(x)

	result, err := gcs.NewSolver(m, gcs.SolverConfig{}).Solve()
	require.NoError(t, err)
	require.Equal(t, gcs.Unsatisfiable, result.Outcome)
}

func TestKnapsackFindsKnownOptimum(t *testing.T) {
	m := gcs.NewModel(gcs.ProofOptions{}, nil, nil)
	weights := []gcs.Integer{2, 5, 3, 1, 2, 6, 1}
	profits := []gcs.Integer{5, 10, 7, 1, 8, 11, 3}
	items, err := m.CreateIntegerVariableVector(len(weights), 0, 1, "item")
	require.NoError(t, err)
	weightVar, err := m.CreateIntegerVariable(0, 14, "weight")
	require.NoError(t, err)
	profitVar, err := m.CreateIntegerVariable(0, 1000, "profit")
	require.NoError(t, err)
	require.NoError(t, m.Post(&gcs.Knapsack{
		Weights: weights, Profits: profits, Items: items,
		WeightVar: weightVar, ProfitVar: profitVar,
	}))
	m.Maximise(profitVar)
	m.BranchOn(items...)

	var best *gcs.Solution
	result, err := gcs.NewSolver(m, gcs.SolverConfig{
		Callbacks: gcs.SolveCallbacks{
			Solution: func(s *gcs.Solution) bool { best = s; return true },
		},
	}).Solve()
	require.NoError(t, err)
	require.Equal(t, gcs.Optimal, result.Outcome)
	require.NotNil(t, best)
	require.Equal(t, gcs.Integer(42), best.Value(profitVar))
	require.LessOrEqual(t, best.Value(weightVar), gcs.Integer(14))
}

// TestAllDifferentSolutionSetIsDeterministic re-solves the same model twice
// and diffs the collected (sorted) solution tuples with cmp, guarding
// against search order accidentally depending on map iteration or other
// non-deterministic state.
func TestAllDifferentSolutionSetIsDeterministic(t *testing.T) {
	collect := func() [][]gcs.Integer {
		m, a, b := buildAllDifferentPair(t)
		var got [][]gcs.Integer
		_, err := gcs.NewSolver(m, gcs.SolverConfig{
			Callbacks: gcs.SolveCallbacks{
				Solution: func(s *gcs.Solution) bool {
					got = append(got, []gcs.Integer{s.Value(a), s.Value(b)})
					return true
				},
			},
		}).Solve()
		require.NoError(t, err)
		sort.Slice(got, func(i, j int) bool {
			if got[i][0] != got[j][0] {
				return got[i][0] < got[j][0]
			}
			return got[i][1] < got[j][1]
		})
		return got
	}

	first := collect()
	second := collect()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("solution set differs across re-solves (-first +second):\n%s", diff)
	}
	require.Equal(t, [][]gcs.Integer{{0, 1}, {1, 0}}, first)
}

func TestUnsatOptimisationReportsUnsat(t *testing.T) {
	m := gcs.NewModel(gcs.ProofOptions{}, nil, nil)
	x, err := m.CreateIntegerVariable(0, 100, "x")
	require.NoError(t, err)
	require.NoError(t, m.Post(gcs.LinearGreaterEqual([]gcs.LinearTerm{{Coeff: 1, Var: x}}, 200)))
	m.Maximise(x)
	m.BranchOn(x)

	result, err := gcs.NewSolver(m, gcs.SolverConfig{}).Solve()
	require.NoError(t, err)
	require.Equal(t, gcs.Unsatisfiable, result.Outcome)
}
