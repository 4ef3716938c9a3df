// Copyright (c) 2023 Colin McRae

package numfield

import (
	"fmt"
	"math/big"

	"github.com/predrag3141/arithinv/bignumber"
	"github.com/predrag3141/arithinv/poly"
	"github.com/predrag3141/arithinv/strategy"
)

const (
	// The search for roots in K runs PSLQ at minLinearFactorPrec bits,
	// doubling up to maxLinearFactorPrec
	minLinearFactorPrec = 128
	maxLinearFactorPrec = 4096

	// linearFactorGuardBits are computed beyond the precision passed to PSLQ
	linearFactorGuardBits = 32
)

// LinearFactors returns the distinct roots in f of the rational polynomial g,
// i.e. the a with x - a dividing g over f. Candidates come from integer
// relations among a complex root of g and the powers of a root of the defining
// polynomial, and each is verified exactly, so every returned element is a
// root. A root whose expression needs more than maxLinearFactorPrec bits to
// detect is missed.
func (f *Field) LinearFactors(g *poly.Poly) ([]*Element, error) {
	if g.Degree() < 1 {
		return []*Element{}, nil
	}
	squarefree, _, err := g.DivMod(poly.GCD(g, g.Derivative()))
	if err != nil {
		return nil, fmt.Errorf("Field.LinearFactors: %q", err.Error())
	}
	squarefree = squarefree.Monic()
	if squarefree.Degree() == 0 {
		return []*Element{}, nil
	}
	retVal := []*Element{}
	for prec := uint(minLinearFactorPrec); prec <= maxLinearFactorPrec; prec *= 2 {
		workingPrec := prec + linearFactorGuardBits
		theta, err := f.anyEmbedding(workingPrec)
		if err != nil {
			return nil, fmt.Errorf("Field.LinearFactors: %q", err.Error())
		}
		roots, err := squarefree.Roots(workingPrec)
		if err != nil {
			return nil, fmt.Errorf("Field.LinearFactors: %q", err.Error())
		}
		for _, root := range roots {
			candidate, err := f.expressRoot(root, theta, prec)
			if err != nil {
				return nil, fmt.Errorf("Field.LinearFactors: %q", err.Error())
			}
			if candidate == nil || !evalPoly(squarefree, candidate).IsZero() {
				continue
			}
			if !containsElement(retVal, candidate) {
				retVal = append(retVal, candidate)
			}
		}
		if len(retVal) == squarefree.Degree() {
			break
		}
	}
	return retVal, nil
}

// expressRoot looks for a small integer relation c_0 z + c_1 + c_2 theta + ...
// + c_(n+1) theta^(n-1) = 0 with c_0 != 0 and returns the element
// -(c_1 + ... + c_(n+1) theta^(n-1))/c_0, or nil if there is none.
func (f *Field) expressRoot(z, theta *bignumber.Complex, prec uint) (*Element, error) {
	workingPrec := z.Prec()
	e := bignumber.E(workingPrec)
	x := make([]*big.Float, f.degree+1)
	x[0] = z.Mix(e)
	power := bignumber.NewFromInt64(1, workingPrec)
	for i := 0; i < f.degree; i++ {
		x[i+1] = power.Mix(e)
		power = bignumber.New(workingPrec).Mul(power, theta)
	}
	relation, err := strategy.FindRelation(x, strategy.Options{Precision: prec})
	if err != nil {
		return nil, fmt.Errorf("expressRoot: %q", err.Error())
	}
	if relation == nil || relation[0].Sign() == 0 {
		return nil, nil
	}
	coordinates := make([]*big.Rat, f.degree)
	for i := range coordinates {
		coordinates[i] = new(big.Rat).SetFrac(new(big.Int).Neg(relation[i+1]), relation[0])
	}
	return f.NewElement(coordinates)
}

// anyEmbedding returns the distinguished embedding if there is one and
// otherwise the first complex root of the defining polynomial
func (f *Field) anyEmbedding(prec uint) (*bignumber.Complex, error) {
	if f.HasEmbedding() {
		return f.Embedding(prec)
	}
	roots, err := f.ComplexEmbeddings(prec)
	if err != nil {
		return nil, fmt.Errorf("anyEmbedding: %q", err.Error())
	}
	return roots[0], nil
}

func containsElement(xs []*Element, y *Element) bool {
	for _, x := range xs {
		if x.Equal(y) {
			return true
		}
	}
	return false
}
