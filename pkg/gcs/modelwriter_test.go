package gcs_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/pbcert/pkg/gcs"
)

func TestWriteModelIncludesObjectiveAndConstraints(t *testing.T) {
	m := gcs.NewModel(gcs.ProofOptions{}, nil, nil)
	x, err := m.CreateIntegerVariable(0, 5, "x")
	require.NoError(t, err)
	require.NoError(t, m.Post(gcs.LinearGreaterEqual([]gcs.LinearTerm{{Coeff: 1, Var: x}}, 2)))
	m.Maximise(x)

	var buf bytes.Buffer
	require.NoError(t, m.WriteModel(&buf))
	out := buf.String()

	require.True(t, strings.HasPrefix(out, "* #variable="), "model output should start with the OPB header, got: %s", out)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Contains(t, lines[1], "max:", "objective line should follow the header")
	require.Greater(t, len(lines), 2, "at least one constraint line should follow the objective")
}
