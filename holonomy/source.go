// Copyright (c) 2023 Colin McRae

package holonomy

import (
	"fmt"

	"github.com/predrag3141/arithinv/bignumber"
	"github.com/predrag3141/arithinv/numfield"
)

// wordGuardBits is the extra precision per letter at which the matrices of a
// word are multiplied
const wordGuardBits = 4

// WitnessSource evaluates words in the generators of a holonomy group to any
// precision
type WitnessSource interface {
	// Evaluate returns the matrix of w to precision prec
	Evaluate(w Word, prec uint) (*Matrix, error)

	// NumGenerators returns the number of generators
	NumGenerators() int
}

// GeneratorFunc returns the matrices of the generators of a group, computed to
// precision prec, e.g. by solving the gluing equations of a triangulation
type GeneratorFunc func(prec uint) ([]*Matrix, error)

// NumericalGroup is a WitnessSource whose generators are computed numerically
// at each precision
type NumericalGroup struct {
	numGenerators int
	generators    GeneratorFunc
}

// NewNumericalGroup returns the group with numGenerators generators computed by
// generators
func NewNumericalGroup(numGenerators int, generators GeneratorFunc) *NumericalGroup {
	return &NumericalGroup{numGenerators: numGenerators, generators: generators}
}

// NumGenerators implements WitnessSource
func (ng *NumericalGroup) NumGenerators() int {
	return ng.numGenerators
}

// Evaluate implements WitnessSource
func (ng *NumericalGroup) Evaluate(w Word, prec uint) (*Matrix, error) {
	if err := w.Validate(ng.numGenerators); err != nil {
		return nil, fmt.Errorf("NumericalGroup.Evaluate: %q", err.Error())
	}
	workingPrec := prec + wordGuardBits*uint(len(w))
	generators, err := ng.generators(workingPrec)
	if err != nil {
		return nil, fmt.Errorf("NumericalGroup.Evaluate: could not compute generators: %q", err.Error())
	}
	if len(generators) != ng.numGenerators {
		return nil, fmt.Errorf(
			"NumericalGroup.Evaluate: got %d generators, expected %d", len(generators), ng.numGenerators,
		)
	}
	inverses := make([]*Matrix, len(generators))
	product := Identity(workingPrec)
	for _, r := range w {
		index, inverse, _ := letterIndex(r) // w is valid
		if !inverse {
			product = product.Mul(generators[index])
			continue
		}
		if inverses[index] == nil {
			if inverses[index], err = generators[index].Inverse(); err != nil {
				return nil, fmt.Errorf("NumericalGroup.Evaluate: generator %d: %q", index, err.Error())
			}
		}
		product = product.Mul(inverses[index])
	}
	return product.setPrec(prec), nil
}

// ExactMatrix is a 2x2 matrix with entries in a number field
type ExactMatrix [4]*numfield.Element

// ExactGroup is a WitnessSource whose generators have entries in a number field
// with a distinguished embedding. Arithmetic is exact; only the final product
// is evaluated.
type ExactGroup struct {
	field      *numfield.Field
	generators []ExactMatrix
	inverses   []ExactMatrix
}

// NewExactGroup returns the group generated by generators, each given by its
// entries (a, b, c, d) in row-major order. Every generator must be invertible
// and field must have a distinguished embedding.
func NewExactGroup(field *numfield.Field, generators []ExactMatrix) (*ExactGroup, error) {
	if !field.HasEmbedding() {
		return nil, fmt.Errorf("NewExactGroup: %w", numfield.ErrNoEmbedding)
	}
	if len(generators) > maxGenerators {
		return nil, fmt.Errorf("NewExactGroup: %d generators exceeds %d", len(generators), maxGenerators)
	}
	retVal := &ExactGroup{
		field:      field,
		generators: make([]ExactMatrix, len(generators)),
		inverses:   make([]ExactMatrix, len(generators)),
	}
	for i, g := range generators {
		for j, x := range g {
			if x == nil {
				return nil, fmt.Errorf("NewExactGroup: generator %d has a nil entry", i)
			}
			if !x.Field().Equal(field) {
				return nil, fmt.Errorf("NewExactGroup: generator %d has an entry in %s", i, x.Field())
			}
			retVal.generators[i][j] = field.FromPoly(x.Polynomial())
		}
		inverse, err := retVal.generators[i].inverse()
		if err != nil {
			return nil, fmt.Errorf("NewExactGroup: generator %d: %w", i, err)
		}
		retVal.inverses[i] = inverse
	}
	return retVal, nil
}

// Field returns the field containing the matrix entries
func (eg *ExactGroup) Field() *numfield.Field {
	return eg.field
}

// NumGenerators implements WitnessSource
func (eg *ExactGroup) NumGenerators() int {
	return len(eg.generators)
}

// Product returns the exact matrix of w
func (eg *ExactGroup) Product(w Word) (ExactMatrix, error) {
	if err := w.Validate(len(eg.generators)); err != nil {
		return ExactMatrix{}, fmt.Errorf("ExactGroup.Product: %q", err.Error())
	}
	retVal := ExactMatrix{
		eg.field.FromInt64(1), eg.field.FromInt64(0), eg.field.FromInt64(0), eg.field.FromInt64(1),
	}
	for _, r := range w {
		index, inverse, _ := letterIndex(r) // w is valid
		if inverse {
			retVal = retVal.mul(eg.inverses[index])
		} else {
			retVal = retVal.mul(eg.generators[index])
		}
	}
	return retVal, nil
}

// Trace returns the exact trace of w
func (eg *ExactGroup) Trace(w Word) (*numfield.Element, error) {
	m, err := eg.Product(w)
	if err != nil {
		return nil, fmt.Errorf("ExactGroup.Trace: %q", err.Error())
	}
	return m[0].Add(m[3]), nil
}

// Evaluate implements WitnessSource
func (eg *ExactGroup) Evaluate(w Word, prec uint) (*Matrix, error) {
	m, err := eg.Product(w)
	if err != nil {
		return nil, fmt.Errorf("ExactGroup.Evaluate: %q", err.Error())
	}
	var entries [4]*bignumber.Complex
	for i, x := range m {
		if entries[i], err = x.Evaluate(prec); err != nil {
			return nil, fmt.Errorf("ExactGroup.Evaluate: %q", err.Error())
		}
	}
	return &Matrix{a: entries[0], b: entries[1], c: entries[2], d: entries[3]}, nil
}

func (m ExactMatrix) mul(n ExactMatrix) ExactMatrix {
	return ExactMatrix{
		m[0].Mul(n[0]).Add(m[1].Mul(n[2])),
		m[0].Mul(n[1]).Add(m[1].Mul(n[3])),
		m[2].Mul(n[0]).Add(m[3].Mul(n[2])),
		m[2].Mul(n[1]).Add(m[3].Mul(n[3])),
	}
}

func (m ExactMatrix) inverse() (ExactMatrix, error) {
	det := m[0].Mul(m[3]).Sub(m[1].Mul(m[2]))
	detInverse, err := det.Inv()
	if err != nil {
		return ExactMatrix{}, fmt.Errorf("matrix is singular: %w", err)
	}
	return ExactMatrix{
		m[3].Mul(detInverse),
		m[1].Neg().Mul(detInverse),
		m[2].Neg().Mul(detInverse),
		m[0].Mul(detInverse),
	}, nil
}

// setPrec rounds the entries of m to precision prec and returns m
func (m *Matrix) setPrec(prec uint) *Matrix {
	for _, x := range []*bignumber.Complex{m.a, m.b, m.c, m.d} {
		x.SetPrec(prec)
	}
	return m
}
