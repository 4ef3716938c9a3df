// Copyright (c) 2023 Colin McRae

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predrag3141/arithinv/escalation"
	"github.com/predrag3141/arithinv/holonomy"
)

func TestLoad(t *testing.T) {
	m, err := Load("testdata/m004.yaml")
	require.NoError(t, err)
	assert.Equal(t, "m004", m.Name)
	assert.Equal(t, "w", m.Field.Variable)
	assert.Equal(t, escalation.Config{
		StartingPrecision:  200,
		StartingDegree:     4,
		PrecisionIncrement: 100,
		DegreeIncrement:    2,
		MaxPrecision:       400,
		MaxDegree:          8,
	}, m.Escalation)

	group, err := m.Group()
	require.NoError(t, err)
	assert.Equal(t, 2, group.NumGenerators())
	trace, err := group.Trace(holonomy.Commutator("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, "-w + 1", trace.String())
	assert.Contains(t, group.Field().String(), "Number Field in w with defining polynomial w^2 + w + 1")

	_, err = Load("testdata/missing.yaml")
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	m, err := Load("testdata/defaults.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultVariable, m.Field.Variable)
	assert.Equal(t, escalation.DefaultConfig(), m.Escalation)

	// The embedding is the root nearest the one given
	field, err := m.NumberField()
	require.NoError(t, err)
	root, err := field.Embedding(64)
	require.NoError(t, err)
	assert.Positive(t, root.Imag().Sign())
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		yaml string
	}{
		{name: "no name", yaml: `
field: {polynomial: "z^2 + 1"}
generators: [["1", "1", "0", "1"]]
`},
		{name: "no polynomial", yaml: `
name: x
generators: [["1", "1", "0", "1"]]
`},
		{name: "no generators", yaml: `
name: x
field: {polynomial: "z^2 + 1"}
`},
		{name: "three entries", yaml: `
name: x
field: {polynomial: "z^2 + 1"}
generators: [["1", "1", "1"]]
`},
		{name: "empty entry", yaml: `
name: x
field: {polynomial: "z^2 + 1"}
generators: [["1", "", "0", "1"]]
`},
		{name: "unknown key", yaml: `
name: x
field: {polynomial: "z^2 + 1"}
generators: [["1", "1", "0", "1"]]
cusps: 1
`},
		{name: "bad escalation", yaml: `
name: x
field: {polynomial: "z^2 + 1"}
generators: [["1", "1", "0", "1"]]
escalation: {starting_precision: 2000, max_precision: 1000}
`},
		{name: "long variable", yaml: `
name: x
field: {variable: zz, polynomial: "z^2 + 1"}
generators: [["1", "1", "0", "1"]]
`},
	} {
		_, err := Parse([]byte(tc.yaml))
		assert.Error(t, err, tc.name)
	}
}

func TestGroupErrors(t *testing.T) {
	m, err := Parse([]byte(`
name: singular
field: {polynomial: "z^2 + 1", root: {re: 0, im: 1}}
generators: [["1", "z", "z", "-1"]]
`))
	require.NoError(t, err)
	_, err = m.Group()
	assert.Error(t, err)

	m, err = Parse([]byte(`
name: reducible
field: {polynomial: "z^2 + 2*z + 1", root: {re: -1, im: 0}}
generators: [["1", "1", "0", "1"]]
`))
	require.NoError(t, err)
	_, err = m.Group()
	assert.Error(t, err)

	m, err = Parse([]byte(`
name: malformed entry
field: {polynomial: "z^2 + 1", root: {re: 0, im: 1}}
generators: [["1", "z^^2", "0", "1"]]
`))
	require.NoError(t, err)
	_, err = m.Group()
	assert.Error(t, err)
}
