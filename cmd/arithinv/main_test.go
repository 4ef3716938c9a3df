// Copyright (c) 2023 Colin McRae

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/predrag3141/arithinv/escalation"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func run(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestComputeAndShow(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "arithinv.db")
	metricsFile := filepath.Join(dir, "metrics.prom")

	out, err := run(t, "compute", "--db", db, "--jobs", "2", "--metrics-file", metricsFile,
		"testdata/m004.yaml", "testdata/m004-conjugate.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Orbifold name: m004\n")
	assert.Contains(t, out, "Orbifold name: m004-conjugate\n")
	assert.Contains(t, out, "Arithmetic: true")

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `arithinv_escalation_attempts_total{invariant="trace field"} 2`)

	out, err = run(t, "show", "--db", db, "m004")
	require.NoError(t, err)
	assert.Contains(t, out, "Orbifold name: m004\n")
	assert.Contains(t, out, "Integer traces: true\n")

	out, err = run(t, "show", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "m004\t")
	assert.Contains(t, out, "arithmetic: true")

	// A stored record is resumed with its ID and attempt log
	out, err = run(t, "compute", "--db", db, "--metrics-file", metricsFile, "--skip-failed", "testdata/m004.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Arithmetic: true")

	_, err = run(t, "show", "--db", db, "m003")
	assert.Error(t, err)
}

func TestComputeErrors(t *testing.T) {
	_, err := run(t, "compute", "testdata/invalid.yaml")
	assert.Error(t, err)
	_, err = run(t, "compute", "testdata/missing.yaml")
	assert.Error(t, err)
	_, err = run(t, "compute", "--jobs", "0", "testdata/m004.yaml")
	assert.Error(t, err)
	_, err = run(t, "compute", "--starting-precision", "10", "testdata/m004.yaml")
	assert.Error(t, err)
	_, err = run(t, "compute")
	assert.Error(t, err)
}

func TestComputeContinuesPastFailingFile(t *testing.T) {
	out, err := run(t, "compute", "--jobs", "1", "testdata/invalid.yaml", "testdata/missing.yaml", "testdata/m004.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid.yaml")
	assert.Contains(t, err.Error(), "missing.yaml")
	assert.Contains(t, out, "Orbifold name: m004\n")
	assert.Contains(t, out, "Arithmetic: true")
}

func TestCompare(t *testing.T) {
	out, err := run(t, "compare", "testdata/m004.yaml", "testdata/m004.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Isomorphic respecting embeddings: true\n")

	// Both trace fields reduce to z^2 - z + 1 with the root in the upper half
	// plane, since Q(sqrt(-3)) is closed under complex conjugation
	out, err = run(t, "compare", "testdata/m004.yaml", "testdata/m004-conjugate.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "testdata/m004-conjugate.yaml: Number Field in z with defining polynomial z^2 - z + 1")
	assert.Contains(t, out, "Isomorphic respecting embeddings: true\n")
	assert.Contains(t, out, "Respecting isomorphism: ")

	out, err = run(t, "compare", "testdata/m004.yaml", "testdata/gaussian.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "testdata/gaussian.yaml: Number Field in z with defining polynomial z^2 + 1")
	assert.Contains(t, out, "Isomorphic respecting embeddings: false\n")
	assert.NotContains(t, out, "Isomorphism: ")
	assert.NotContains(t, out, "Respecting isomorphism: ")

	_, err = run(t, "compare", "testdata/m004.yaml")
	assert.Error(t, err)
}

func TestEscalationFlags(t *testing.T) {
	ef := addEscalationFlags(&cobra.Command{Use: "test"})
	require.NoError(t, ef.flags.Parse([]string{"--starting-degree", "6", "--force"}))

	base := escalation.FixedConfig(200, 4)
	base.MaxDegree = 8
	actual := ef.apply(base, true)
	expected := base
	expected.StartingDegree = 6
	expected.ForceRecompute = true
	expected.Verbose = true
	assert.Equal(t, expected, actual)
}
