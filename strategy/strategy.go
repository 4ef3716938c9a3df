// Copyright (c) 2023 Colin McRae

// Package strategy drives PSLQ iterations to a conclusion: a relation, a
// proof that no relation with small enough coefficients exists, or exhaustion
// of the precision or iteration budget. The rule for selecting row operations
// is the classic one; callers that need another strategy can drive
// pslqops.State themselves.
package strategy

import (
	"fmt"
	"math/big"

	"github.com/predrag3141/arithinv/bignumber"
	"github.com/predrag3141/arithinv/pslqops"
)

const (
	// defaultIterationsPerBit scales the iteration cap with n * precision.
	// PSLQ needs O(n^2 log(relation norm)) iterations to find a relation,
	// and the norm of any relation it can detect is below 2^precision.
	defaultIterationsPerBit = 1
	minIterations           = 100
)

// Options controls FindRelation. Zero values select defaults.
type Options struct {
	// Precision is the number of accurate bits in the input
	Precision uint

	// MaxCoefficient bounds the absolute value of every coefficient in
	// an acceptable relation. The default is 2^(Precision/2).
	MaxCoefficient *big.Int

	// MaxIterations caps the number of PSLQ iterations. The default is
	// proportional to the input length times Precision.
	MaxIterations int

	// Gamma is the PSLQ parameter gamma; nil means sqrt(4/3)
	Gamma *big.Float
}

// FindRelation returns integers m, not all zero, with |<m, x>| small relative to
// 2^-Precision and max |m_i| <= MaxCoefficient, or nil if PSLQ concludes
// without finding one. An error is returned only for malformed input.
func FindRelation(x []*big.Float, opts Options) ([]*big.Int, error) {
	if len(x) < 2 {
		return nil, fmt.Errorf("FindRelation: input has %d < 2 entries", len(x))
	}
	if opts.Precision < 53 {
		return nil, fmt.Errorf("FindRelation: precision %d < 53 is too low", opts.Precision)
	}
	maxCoefficient := opts.MaxCoefficient
	if maxCoefficient == nil {
		maxCoefficient = new(big.Int).Lsh(big.NewInt(1), opts.Precision/2)
	}
	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultIterationsPerBit * len(x) * int(opts.Precision)
		if maxIterations < minIterations {
			maxIterations = minIterations
		}
	}

	// An entry that is negligible compared to the largest one is a relation
	// by itself. PSLQ cannot start from such input, since H would divide by 0.
	if j := negligibleEntry(x, opts.Precision); j >= 0 {
		retVal := make([]*big.Int, len(x))
		for i := range retVal {
			retVal[i] = new(big.Int)
		}
		retVal[j].SetInt64(1)
		return retVal, nil
	}

	state, err := pslqops.NewState(x, opts.Precision, opts.Gamma)
	if err != nil {
		return nil, fmt.Errorf("FindRelation: could not create state: %q", err.Error())
	}
	maxCoefficientAsFloat := bignumber.FloatFromInt(maxCoefficient, opts.Precision)
	terminated, err := state.HasTerminated()
	if err != nil {
		return nil, fmt.Errorf("FindRelation: %q", err.Error())
	}
	for !terminated && state.Iterations() < maxIterations {
		normBound, err := state.NormBound()
		if err != nil {
			return nil, fmt.Errorf("FindRelation: could not compute norm bound: %q", err.Error())
		}
		if normBound == nil || normBound.Cmp(maxCoefficientAsFloat) > 0 {
			// Every relation has a coefficient larger than maxCoefficient
			return nil, nil
		}
		terminated, err = state.OneIteration(pslqops.GetRClassic)
		if err != nil {
			return nil, fmt.Errorf("FindRelation: iteration %d failed: %q", state.Iterations(), err.Error())
		}
	}
	if !terminated || state.PrecisionExhausted() {
		return nil, nil
	}
	solution, err := state.GetSolution()
	if err != nil {
		return nil, fmt.Errorf("FindRelation: %q", err.Error())
	}
	if solution == nil {
		return nil, nil
	}
	for _, coefficient := range solution {
		if new(big.Int).Abs(coefficient).Cmp(maxCoefficient) > 0 {
			return nil, nil
		}
	}
	return solution, nil
}

// negligibleEntry returns the index of an entry of x smaller than
// 2^-(3 precision/4) times the largest entry, or -1 if there is none.
func negligibleEntry(x []*big.Float, precision uint) int {
	maxExp := 0
	first := true
	for _, xi := range x {
		if xi.Sign() == 0 {
			continue
		}
		if exp := xi.MantExp(nil); first || exp > maxExp {
			maxExp = exp
			first = false
		}
	}
	for i, xi := range x {
		if xi.Sign() == 0 || xi.MantExp(nil) < maxExp-int(3*precision/4) {
			return i
		}
	}
	return -1
}
