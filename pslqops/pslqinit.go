// Copyright (c) 2023 Colin McRae

package pslqops

import (
	"fmt"
	"math/big"

	"github.com/predrag3141/arithinv/bigmatrix"
)

// GetNormalizedX converts rawX to a 1 x len(rawX) BigMatrix with precision prec,
// scaled to have Euclidean length 1.
//
// If rawX has fewer than two entries or is the zero vector, an error is returned.
func GetNormalizedX(rawX []*big.Float, prec uint) (*bigmatrix.BigMatrix, error) {
	numCols := len(rawX)
	if numCols < 2 {
		return nil, fmt.Errorf("GetNormalizedX: input has %d < 2 entries", numCols)
	}
	sumOfSquares := new(big.Float).SetPrec(prec)
	square := new(big.Float).SetPrec(prec)
	for i := 0; i < numCols; i++ {
		sumOfSquares.Add(sumOfSquares, square.Mul(rawX[i], rawX[i]))
	}
	if sumOfSquares.Sign() == 0 {
		return nil, fmt.Errorf("GetNormalizedX: input is the zero vector")
	}

	// oneOverNorm is the scale factor that normalizes rawX to Euclidean length 1
	oneOverNorm := new(big.Float).SetPrec(prec).SetInt64(1)
	oneOverNorm.Quo(oneOverNorm, new(big.Float).SetPrec(prec).Sqrt(sumOfSquares))
	retVal := bigmatrix.NewEmpty(1, numCols, prec)
	for i := 0; i < numCols; i++ {
		err := retVal.Set(0, i, new(big.Float).SetPrec(prec).Mul(rawX[i], oneOverNorm))
		if err != nil {
			return nil, fmt.Errorf("GetNormalizedX: could not set retVal[0][%d]: %q", i, err.Error())
		}
	}
	return retVal, nil
}

// GetS gets, given 1 x n matrix x, s as defined in page 4 of the
// original PSLQ paper: "Define the partial sums of squares, sj , for x ...".
// The returned value is a 1 x n matrix. GetS does not modify x.
//
// Python code:
//
// return [
//
//	sqrt(sum([input[j] * input[j] for j in range(k, n_in)]))
//	for k in range(len(input))
//
// ]
func GetS(x *bigmatrix.BigMatrix) (*bigmatrix.BigMatrix, error) {
	numRows, n := x.Dimensions()
	if numRows != 1 {
		return nil, fmt.Errorf("GetS: numRows = %d, but must be 1", numRows)
	}
	prec := x.Prec()
	retVal := bigmatrix.NewEmpty(1, n, prec)
	partialSum := new(big.Float).SetPrec(prec)
	square := new(big.Float).SetPrec(prec)
	for i := n - 1; i >= 0; i-- {
		xi, err := x.Get(0, i)
		if err != nil {
			return nil, fmt.Errorf("GetS: error from x.Get: %q", err.Error())
		}
		partialSum.Add(partialSum, square.Mul(xi, xi))
		if partialSum.Sign() == 0 {
			// Trailing zeros in x give zero partial sums, and an H that
			// cannot be computed
			return nil, fmt.Errorf("GetS: partial sum %d is zero", i)
		}
		err = retVal.Set(0, i, new(big.Float).SetPrec(prec).Sqrt(partialSum))
		if err != nil {
			return nil, fmt.Errorf("GetS: error setting element %d: %q", i, err.Error())
		}
	}
	return retVal, nil
}

//  Page 4: "Define the lower trapezoidal n x (n - 1) matrix H(x)"
//
//  Left of the diagonal:  -x[i]x[j]/s[j]s[j+1] (rows 1, ... n - 1)
//  On the diagonal:       s[i+1]/s[i]          (rows 0, ... n - 2)
//  Right of the diagonal: 0                    (rows 0, ... n - 3)

// GetH creates the initial H matrix defined on page 4 of the original PSLQ
// paper. Inputs x and s are 1 x n matrices.
func GetH(x *bigmatrix.BigMatrix, s *bigmatrix.BigMatrix) (*bigmatrix.BigMatrix, error) {
	numRows, n := x.Dimensions()
	if numRows != 1 {
		return nil, fmt.Errorf("GetH: input x has %d > 1 rows", numRows)
	}
	numRows, sn := s.Dimensions()
	if numRows != 1 {
		return nil, fmt.Errorf("GetH: input s has %d > 1 rows", numRows)
	}
	if sn != n {
		return nil, fmt.Errorf("GetH: inputs x and s have unequal lengths %d and %d", n, sn)
	}
	prec := x.Prec()
	retVal := bigmatrix.NewEmpty(n, n-1, prec)
	xRow, err := x.Row(0)
	if err != nil {
		return nil, fmt.Errorf("GetH: could not get x: %q", err.Error())
	}
	sRow, err := s.Row(0)
	if err != nil {
		return nil, fmt.Errorf("GetH: could not get s: %q", err.Error())
	}
	sjSjPlus1 := new(big.Float).SetPrec(prec)
	for i := 0; i < n; i++ {
		hRow, err := retVal.Row(i)
		if err != nil {
			return nil, fmt.Errorf("GetH: could not get row %d of H: %q", i, err.Error())
		}
		for j := 0; j < n-1 && j <= i; j++ {
			if i == j {
				// On the diagonal, H[j][j] = s[j+1]/s[j]
				hRow[j].Quo(sRow[j+1], sRow[j])
				continue
			}

			// Left of the diagonal (j < i), H[i][j] = -x[i]x[j]/s[j]s[j+1]
			sjSjPlus1.Mul(sRow[j], sRow[j+1])
			hRow[j].Mul(xRow[i], xRow[j])
			hRow[j].Quo(hRow[j], sjSjPlus1)
			hRow[j].Neg(hRow[j])
		}
	}
	return retVal, nil
}
