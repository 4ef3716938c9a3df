// Copyright (c) 2023 Colin McRae

package bignumber

import (
	"math/big"
)

// guardBits is the number of bits beyond the requested precision used in
// series evaluations, so the rounded result is correct to the requested
// precision.
const guardBits = 32

// E returns Euler's number to prec bits. It is computed from the series
// sum 1/k!, which converges fast enough for any precision used here.
func E(prec uint) *big.Float {
	workingPrec := prec + guardBits
	sum := new(big.Float).SetPrec(workingPrec).SetInt64(1)
	term := new(big.Float).SetPrec(workingPrec).SetInt64(1)
	for k := int64(1); ; k++ {
		term.Quo(term, new(big.Float).SetPrec(workingPrec).SetInt64(k))
		if term.Sign() == 0 || term.MantExp(nil) < -int(workingPrec) {
			break
		}
		sum.Add(sum, term)
	}
	return sum.SetPrec(prec)
}

// RoundToInt returns the integer nearest to x, with ties rounded up
// (floor(x + 1/2)).
func RoundToInt(x *big.Float) *big.Int {
	half := new(big.Float).SetPrec(x.Prec() + 2).SetFloat64(0.5)
	shifted := new(big.Float).SetPrec(x.Prec() + 2).Add(x, half)
	retVal, accuracy := shifted.Int(nil)

	// Int truncates towards 0, which is floor only for non-negative values
	if shifted.Sign() < 0 && accuracy != big.Exact {
		retVal.Sub(retVal, big.NewInt(1))
	}
	return retVal
}

// PowerOfTwo returns 2^exponent with precision prec
func PowerOfTwo(exponent int, prec uint) *big.Float {
	retVal := new(big.Float).SetPrec(prec).SetInt64(1)
	return retVal.SetMantExp(retVal, exponent)
}

// FloatFromInt returns x as a big.Float with precision prec
func FloatFromInt(x *big.Int, prec uint) *big.Float {
	return new(big.Float).SetPrec(prec).SetInt(x)
}
