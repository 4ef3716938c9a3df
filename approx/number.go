// Copyright (c) 2023 Colin McRae

// Package approx holds approximate algebraic numbers: complex numbers known only
// through a procedure that computes them to any requested precision. Such a
// number can be recognized as an exact algebraic number, and another number can
// be expressed as a polynomial in it, by integer relation detection.
//
// Recognition is a heuristic. A relation found at too low a precision can be
// spurious, so callers raise the precision until the answer is stable (see
// package escalation).
package approx

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/predrag3141/arithinv/bignumber"
)

// arithmeticGuardBits are added to the precision at which the operands of an
// arithmetic combination are evaluated
const arithmeticGuardBits = 16

// Procedure returns a complex number to prec bits of precision. It must be
// deterministic: repeated calls with the same prec describe the same number.
type Procedure func(prec uint) (*bignumber.Complex, error)

// Number is an approximate algebraic number. It is defined by its procedure and
// is immutable; arithmetic composes procedures without evaluating anything.
type Number struct {
	procedure Procedure
}

// New returns the number computed by procedure
func New(procedure Procedure) *Number {
	return &Number{procedure: procedure}
}

// NewConstant returns the rational number c
func NewConstant(c *big.Rat) *Number {
	value := new(big.Rat).Set(c)
	return New(func(prec uint) (*bignumber.Complex, error) {
		return bignumber.NewFromRat(value, prec), nil
	})
}

// FromInt64 returns the integer x
func FromInt64(x int64) *Number {
	return NewConstant(big.NewRat(x, 1))
}

// Evaluate returns the number to prec bits
func (n *Number) Evaluate(prec uint) (*bignumber.Complex, error) {
	retVal, err := n.procedure(prec)
	if err != nil {
		return nil, fmt.Errorf("Number.Evaluate: could not evaluate at precision %d: %q", prec, err.Error())
	}
	return retVal.SetPrec(prec), nil
}

// Add returns n + m
func (n *Number) Add(m *Number) *Number {
	return n.combine(m, func(z, x, y *bignumber.Complex) (*bignumber.Complex, error) {
		return z.Add(x, y), nil
	})
}

// Sub returns n - m
func (n *Number) Sub(m *Number) *Number {
	return n.combine(m, func(z, x, y *bignumber.Complex) (*bignumber.Complex, error) {
		return z.Sub(x, y), nil
	})
}

// Mul returns n * m
func (n *Number) Mul(m *Number) *Number {
	return n.combine(m, func(z, x, y *bignumber.Complex) (*bignumber.Complex, error) {
		return z.Mul(x, y), nil
	})
}

// Neg returns -n
func (n *Number) Neg() *Number {
	return New(func(prec uint) (*bignumber.Complex, error) {
		x, err := n.Evaluate(prec)
		if err != nil {
			return nil, err
		}
		return bignumber.New(prec).Neg(x), nil
	})
}

// Pow returns n^k. Evaluating it fails if k < 0 and n is 0.
func (n *Number) Pow(k int) *Number {
	return New(func(prec uint) (*bignumber.Complex, error) {
		// Each multiplication in the power loses up to a bit
		workingPrec := prec + arithmeticGuardBits + uint(bitLen(k))
		x, err := n.Evaluate(workingPrec)
		if err != nil {
			return nil, err
		}
		return bignumber.New(workingPrec).Pow(x, k)
	})
}

// Cached returns a number with the same value as n that remembers its most
// precise evaluation and derives less precise ones from it. It is safe for
// concurrent use.
func (n *Number) Cached() *Number {
	var mu sync.Mutex
	var best *bignumber.Complex
	return New(func(prec uint) (*bignumber.Complex, error) {
		mu.Lock()
		defer mu.Unlock()
		if best != nil && best.Prec() >= prec {
			return best.Copy().SetPrec(prec), nil
		}
		x, err := n.Evaluate(prec)
		if err != nil {
			return nil, err
		}
		best = x
		return x.Copy(), nil
	})
}

func (n *Number) combine(
	m *Number, op func(z, x, y *bignumber.Complex) (*bignumber.Complex, error),
) *Number {
	return New(func(prec uint) (*bignumber.Complex, error) {
		workingPrec := prec + arithmeticGuardBits
		x, err := n.Evaluate(workingPrec)
		if err != nil {
			return nil, err
		}
		y, err := m.Evaluate(workingPrec)
		if err != nil {
			return nil, err
		}
		return op(bignumber.New(workingPrec), x, y)
	})
}

func bitLen(k int) int {
	if k < 0 {
		k = -k
	}
	retVal := 0
	for ; k > 0; k >>= 1 {
		retVal++
	}
	return retVal
}
