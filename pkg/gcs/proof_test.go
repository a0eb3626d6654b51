package gcs_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/pbcert/pkg/gcs"
)

func TestProofStreamConcludesUnsat(t *testing.T) {
	var opbBuf, proofBuf bytes.Buffer
	m := gcs.NewModel(gcs.ProofOptions{OPBPath: "model.opb", ProofPath: "proof.pbp"}, &opbBuf, &proofBuf)
	x, err := m.CreateIntegerVariable(0, 3, "x")
	require.NoError(t, err)
	require.NoError(t, m.Post(&gcs.LinearEquals{
		Terms: []gcs.LinearTerm{{Coeff: 1, Var: x}}, RHS: 10,
	}))
	m.BranchOn(x)

	require.True(t, m.Proving())
	result, err := gcs.NewSolver(m, gcs.SolverConfig{}).Solve()
	require.NoError(t, err)
	require.Equal(t, gcs.Unsatisfiable, result.Outcome)

	out := proofBuf.String()
	require.Contains(t, out, "* run ")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	require.Equal(t, "conclusion UNSAT", lines[len(lines)-2])
	require.Equal(t, "end pseudo-Boolean proof", lines[len(lines)-1])
}

func TestProofStreamRecordsSolutionsForSatisfiableSearch(t *testing.T) {
	var opbBuf, proofBuf bytes.Buffer
	m := gcs.NewModel(gcs.ProofOptions{OPBPath: "model.opb", ProofPath: "proof.pbp"}, &opbBuf, &proofBuf)
	a, err := m.CreateIntegerVariable(0, 1, "a")
	require.NoError(t, err)
	b, err := m.CreateIntegerVariable(0, 1, "b")
	require.NoError(t, err)
	require.NoError(t, m.Post(&gcs.AllDifferent{Vars: []gcs.IntegerVariableID{a, b}, GAC: true}))
	m.BranchOn(a, b)

	count := 0
	result, err := gcs.NewSolver(m, gcs.SolverConfig{
		Callbacks: gcs.SolveCallbacks{
			Solution: func(s *gcs.Solution) bool { count++; return true },
		},
	}).Solve()
	require.NoError(t, err)
	require.Equal(t, gcs.Satisfiable, result.Outcome)
	require.Equal(t, 2, count)

	out := proofBuf.String()
	require.Equal(t, count, strings.Count(out, "* solution found"))
}

func TestOPBModelStreamIsDistinctFromProofStream(t *testing.T) {
	var opbBuf, proofBuf bytes.Buffer
	m := gcs.NewModel(gcs.ProofOptions{OPBPath: "model.opb", ProofPath: "proof.pbp"}, &opbBuf, &proofBuf)
	x, err := m.CreateIntegerVariable(0, 5, "x")
	require.NoError(t, err)
	require.NoError(t, m.Post(gcs.LinearGreaterEqual([]gcs.LinearTerm{{Coeff: 1, Var: x}}, 2)))
	m.BranchOn(x)

	_, err = gcs.NewSolver(m, gcs.SolverConfig{}).Solve()
	require.NoError(t, err)

	require.NoError(t, m.WriteModel(&opbBuf))
	require.True(t, strings.HasPrefix(proofBuf.String(), "pseudo-Boolean proof version ") || proofBuf.Len() == 0,
		"proof stream should start with the proof preamble, never the OPB header line")
	require.NotContains(t, proofBuf.String(), "#variable=")
}
