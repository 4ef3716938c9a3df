// Copyright (c) 2023 Colin McRae

package bigmatrix

import (
	"fmt"
	"math/big"
)

// RatMatrix is a square row-major matrix of big.Rats, used for exact linear
// algebra over Q such as characteristic polynomials of multiplication maps.
type RatMatrix struct {
	values []*big.Rat
	dim    int
}

// NewRatMatrix returns the dim x dim zero matrix
func NewRatMatrix(dim int) *RatMatrix {
	if dim < 0 {
		dim = 0
	}
	retVal := &RatMatrix{values: make([]*big.Rat, dim*dim), dim: dim}
	for i := range retVal.values {
		retVal.values[i] = new(big.Rat)
	}
	return retVal
}

// Dim returns the number of rows (and columns) of rm
func (rm *RatMatrix) Dim() int {
	return rm.dim
}

// Get returns the pointer to the value in row i, column j of rm
func (rm *RatMatrix) Get(i, j int) (*big.Rat, error) {
	if err := checkIndices(i, j, rm.dim, rm.dim, "RatMatrix.Get"); err != nil {
		return nil, err
	}
	return rm.values[i*rm.dim+j], nil
}

// Set sets the value in row i, column j to x. This is a deep copy.
func (rm *RatMatrix) Set(i, j int, x *big.Rat) error {
	if err := checkIndices(i, j, rm.dim, rm.dim, "RatMatrix.Set"); err != nil {
		return err
	}
	rm.values[i*rm.dim+j].Set(x)
	return nil
}

// Mul replaces the contents of rm with xy and returns rm
func (rm *RatMatrix) Mul(x, y *RatMatrix) (*RatMatrix, error) {
	if x.dim != y.dim {
		return nil, fmt.Errorf("RatMatrix.Mul: mismatched dimensions %d and %d", x.dim, y.dim)
	}
	n := x.dim
	retVal := NewRatMatrix(n)
	term := new(big.Rat)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sum := retVal.values[i*n+j]
			for k := 0; k < n; k++ {
				xik := x.values[i*n+k]
				if xik.Sign() == 0 {
					continue
				}
				sum.Add(sum, term.Mul(xik, y.values[k*n+j]))
			}
		}
	}
	rm.values, rm.dim = retVal.values, retVal.dim
	return rm, nil
}

// AddToDiagonal adds c to every diagonal entry of rm and returns rm
func (rm *RatMatrix) AddToDiagonal(c *big.Rat) *RatMatrix {
	for i := 0; i < rm.dim; i++ {
		rm.values[i*rm.dim+i].Add(rm.values[i*rm.dim+i], c)
	}
	return rm
}

// Trace returns the sum of the diagonal entries of rm
func (rm *RatMatrix) Trace() *big.Rat {
	retVal := new(big.Rat)
	for i := 0; i < rm.dim; i++ {
		retVal.Add(retVal, rm.values[i*rm.dim+i])
	}
	return retVal
}

// Copy returns a deep copy of rm
func (rm *RatMatrix) Copy() *RatMatrix {
	retVal := NewRatMatrix(rm.dim)
	for i := range rm.values {
		retVal.values[i].Set(rm.values[i])
	}
	return retVal
}

// Inverse returns the inverse of rm by Gauss-Jordan elimination, or an error
// if rm is singular. rm is not modified.
func (rm *RatMatrix) Inverse() (*RatMatrix, error) {
	n := rm.dim
	work := rm.Copy()
	retVal := NewRatMatrix(n).AddToDiagonal(big.NewRat(1, 1))
	factor := new(big.Rat)
	term := new(big.Rat)
	for col := 0; col < n; col++ {
		pivot := -1
		for row := col; row < n; row++ {
			if work.values[row*n+col].Sign() != 0 {
				pivot = row
				break
			}
		}
		if pivot < 0 {
			return nil, fmt.Errorf("RatMatrix.Inverse: matrix is singular")
		}
		if pivot != col {
			work.swapRows(pivot, col)
			retVal.swapRows(pivot, col)
		}
		inverse := new(big.Rat).Inv(work.values[col*n+col])
		for j := 0; j < n; j++ {
			work.values[col*n+j].Mul(work.values[col*n+j], inverse)
			retVal.values[col*n+j].Mul(retVal.values[col*n+j], inverse)
		}
		for row := 0; row < n; row++ {
			if row == col || work.values[row*n+col].Sign() == 0 {
				continue
			}
			factor.Set(work.values[row*n+col])
			for j := 0; j < n; j++ {
				work.values[row*n+j].Sub(work.values[row*n+j], term.Mul(factor, work.values[col*n+j]))
				retVal.values[row*n+j].Sub(retVal.values[row*n+j], term.Mul(factor, retVal.values[col*n+j]))
			}
		}
	}
	return retVal, nil
}

// MulVector returns the product of rm and the column vector v
func (rm *RatMatrix) MulVector(v []*big.Rat) ([]*big.Rat, error) {
	if len(v) != rm.dim {
		return nil, fmt.Errorf("RatMatrix.MulVector: vector of length %d, matrix of dimension %d", len(v), rm.dim)
	}
	retVal := make([]*big.Rat, rm.dim)
	term := new(big.Rat)
	for i := 0; i < rm.dim; i++ {
		retVal[i] = new(big.Rat)
		for j := 0; j < rm.dim; j++ {
			retVal[i].Add(retVal[i], term.Mul(rm.values[i*rm.dim+j], v[j]))
		}
	}
	return retVal, nil
}

func (rm *RatMatrix) swapRows(i, j int) {
	for k := 0; k < rm.dim; k++ {
		rm.values[i*rm.dim+k], rm.values[j*rm.dim+k] = rm.values[j*rm.dim+k], rm.values[i*rm.dim+k]
	}
}
