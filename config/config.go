// Copyright (c) 2023 Colin McRae

// Package config reads manifold descriptions from YAML. A description gives
// the holonomy group exactly, as 2x2 matrices over a number field, and may
// override the escalation defaults:
//
//	name: m004
//	field:
//	  polynomial: z^2 + z + 1
//	  root: {re: -0.5, im: 0.866}
//	generators:
//	  - ["1", "1", "0", "1"]
//	  - ["1", "0", "-z", "1"]
//	escalation:
//	  starting_precision: 200
//	  starting_degree: 4
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/predrag3141/arithinv/bignumber"
	"github.com/predrag3141/arithinv/escalation"
	"github.com/predrag3141/arithinv/holonomy"
	"github.com/predrag3141/arithinv/numfield"
	"github.com/predrag3141/arithinv/poly"
)

// DefaultVariable names the field generator when a description does not
var DefaultVariable = "z"

// rootPrecision is the precision of the approximate root selecting the
// embedding; the exact root is refined from it on demand
const rootPrecision = 64

var validate = validator.New()

// Root approximates the complex root of the defining polynomial that
// selects the embedding
type Root struct {
	Re float64 `yaml:"re"`
	Im float64 `yaml:"im"`
}

// Field describes a number field with an embedding
type Field struct {
	Variable   string `yaml:"variable" validate:"omitempty,len=1,alpha"`
	Polynomial string `yaml:"polynomial" validate:"required"`
	Root       Root   `yaml:"root"`
}

// Manifold describes a manifold by generators of its holonomy group. Each
// generator lists the entries a, b, c, d of [[a, b], [c, d]] as polynomials in
// the field generator.
type Manifold struct {
	Name       string            `yaml:"name" validate:"required"`
	Field      Field             `yaml:"field"`
	Generators [][]string        `yaml:"generators" validate:"required,min=1,max=26,dive,len=4,dive,required"`
	Escalation escalation.Config `yaml:"escalation"`
}

// Load reads and validates the description in the file at path
func Load(path string) (*Manifold, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	retVal, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("Load: %s: %w", path, err)
	}
	return retVal, nil
}

// Parse decodes and validates a description. Escalation settings that are
// absent keep the values of escalation.DefaultConfig; unknown keys are errors.
func Parse(data []byte) (*Manifold, error) {
	retVal := &Manifold{Escalation: escalation.DefaultConfig()}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(retVal); err != nil {
		return nil, fmt.Errorf("Parse: %w", err)
	}
	if retVal.Field.Variable == "" {
		retVal.Field.Variable = DefaultVariable
	}
	if err := validate.Struct(retVal); err != nil {
		return nil, fmt.Errorf("Parse: %w", err)
	}
	if err := retVal.Escalation.Validate(); err != nil {
		return nil, fmt.Errorf("Parse: escalation: %w", err)
	}
	return retVal, nil
}

// NumberField returns the field of the description, with the embedding at the
// root of its polynomial nearest Root
func (m *Manifold) NumberField() (*numfield.Field, error) {
	p, err := poly.Parse(m.Field.Polynomial)
	if err != nil {
		return nil, fmt.Errorf("Manifold.NumberField: %q", err.Error())
	}
	root := bignumber.NewFromFloat64(m.Field.Root.Re, m.Field.Root.Im, rootPrecision)
	retVal, err := numfield.NewField(m.Field.Variable, p, root)
	if err != nil {
		return nil, fmt.Errorf("Manifold.NumberField: %w", err)
	}
	return retVal, nil
}

// Group returns the holonomy group of the description
func (m *Manifold) Group() (*holonomy.ExactGroup, error) {
	field, err := m.NumberField()
	if err != nil {
		return nil, fmt.Errorf("Manifold.Group: %w", err)
	}
	generators := make([]holonomy.ExactMatrix, len(m.Generators))
	for i, entries := range m.Generators {
		for j, entry := range entries {
			x, err := field.ParseElement(entry)
			if err != nil {
				return nil, fmt.Errorf("Manifold.Group: generator %d entry %d: %w", i, j, err)
			}
			generators[i][j] = x
		}
	}
	retVal, err := holonomy.NewExactGroup(field, generators)
	if err != nil {
		return nil, fmt.Errorf("Manifold.Group: %w", err)
	}
	return retVal, nil
}
