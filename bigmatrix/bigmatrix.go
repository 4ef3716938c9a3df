// Copyright (c) 2023 Colin McRae

// Package bigmatrix represents matrices of big.Floats, big.Ints and big.Rats
package bigmatrix

import (
	"fmt"
	"math/big"
	"strings"
)

// BigMatrix is a row-major matrix of big.Floats, all with the same precision
type BigMatrix struct {
	values  []*big.Float
	numRows int
	numCols int
	prec    uint
}

// NewEmpty returns a numRows x numCols matrix with 0s in each value. Negative numRows
// or numCols is interpreted as 0, and a 0 x n or n x 0 matrix is interpreted as 0 x 0.
func NewEmpty(numRows int, numCols int, prec uint) *BigMatrix {
	numRows, numCols = normalizeDimensions(numRows, numCols)
	retVal := &BigMatrix{
		values:  make([]*big.Float, numRows*numCols),
		numRows: numRows,
		numCols: numCols,
		prec:    prec,
	}
	for i := range retVal.values {
		retVal.values[i] = new(big.Float).SetPrec(prec)
	}
	return retVal
}

// NewIdentity returns a dim x dim identity matrix. If dim < 1,
// an error is returned.
func NewIdentity(dim int, prec uint) (*BigMatrix, error) {
	if dim < 1 {
		return nil, fmt.Errorf("NewIdentity: dimension %d < 1", dim)
	}
	retVal := NewEmpty(dim, dim, prec)
	for i := 0; i < dim; i++ {
		retVal.values[i*dim+i].SetInt64(1)
	}
	return retVal, nil
}

// NewFromFloatArray creates a numRows x numCols matrix from input. If the number of
// rows and columns are not positive and/or do not match the length of the input, an
// error is returned.
func NewFromFloatArray(input []*big.Float, numRows int, numCols int, prec uint) (*BigMatrix, error) {
	if numRows <= 0 || numCols <= 0 {
		return nil, fmt.Errorf(
			"NewFromFloatArray: illegal number of rows %d or columns %d", numRows, numCols,
		)
	}
	if len(input) != numRows*numCols {
		return nil, fmt.Errorf("NewFromFloatArray: length of input does not match dimensions")
	}
	retVal := NewEmpty(numRows, numCols, prec)
	for i, value := range input {
		retVal.values[i].Set(value)
	}
	return retVal, nil
}

// Prec returns the precision of the entries of bm
func (bm *BigMatrix) Prec() uint {
	return bm.prec
}

// Get returns the pointer to the value in row i, column j of bm.
// This is not a deep copy.
func (bm *BigMatrix) Get(i int, j int) (*big.Float, error) {
	if err := checkIndices(i, j, bm.numRows, bm.numCols, "BigMatrix.Get"); err != nil {
		return nil, err
	}
	return bm.values[i*bm.numCols+j], nil
}

// Set sets the value in row i, column j to x. This is a deep copy, rounded
// to the precision of bm.
func (bm *BigMatrix) Set(i int, j int, x *big.Float) error {
	if err := checkIndices(i, j, bm.numRows, bm.numCols, "BigMatrix.Set"); err != nil {
		return err
	}
	bm.values[i*bm.numCols+j].Set(x)
	return nil
}

// Row returns pointers to the entries of row i. Changing an entry of the
// returned slice changes bm.
func (bm *BigMatrix) Row(i int) ([]*big.Float, error) {
	if i < 0 || bm.numRows <= i {
		return nil, fmt.Errorf("BigMatrix.Row: index i = %d outside range {0, ... %d}", i, bm.numRows-1)
	}
	return bm.values[i*bm.numCols : (i+1)*bm.numCols], nil
}

// Copy copies x to bm and returns bm. This is a deep copy.
func (bm *BigMatrix) Copy(x *BigMatrix) *BigMatrix {
	if bm == x {
		return bm
	}
	bm.numRows = x.numRows
	bm.numCols = x.numCols
	bm.prec = x.prec
	bm.values = make([]*big.Float, len(x.values))
	for i := range x.values {
		bm.values[i] = new(big.Float).Copy(x.values[i])
	}
	return bm
}

// Transpose replaces the contents of bm with the transpose of matrix x
func (bm *BigMatrix) Transpose(x *BigMatrix) *BigMatrix {
	retVal := NewEmpty(x.numCols, x.numRows, x.prec)
	for i := 0; i < retVal.numRows; i++ {
		for j := 0; j < retVal.numCols; j++ {
			retVal.values[i*retVal.numCols+j].Set(x.values[j*x.numCols+i])
		}
	}
	return bm.Copy(retVal)
}

// Mul replaces the contents of bm with the matrix xy and returns bm. If
// dimensions of x and y do not match, an error is returned.
func (bm *BigMatrix) Mul(x *BigMatrix, y *BigMatrix) (*BigMatrix, error) {
	if x.numCols != y.numRows {
		return nil, fmt.Errorf(
			"BigMatrix.Mul: mismatched dimensions for operands x (%d x %d) and y (%d x %d)",
			x.numRows, x.numCols, y.numRows, y.numCols,
		)
	}
	prec := x.prec
	if y.prec > prec {
		prec = y.prec
	}
	retVal := NewEmpty(x.numRows, y.numCols, prec)
	term := new(big.Float).SetPrec(prec)
	for i := 0; i < x.numRows; i++ {
		for j := 0; j < y.numCols; j++ {
			sum := retVal.values[i*retVal.numCols+j]
			for k := 0; k < x.numCols; k++ {
				term.Mul(x.values[i*x.numCols+k], y.values[k*y.numCols+j])
				sum.Add(sum, term)
			}
		}
	}
	return bm.Copy(retVal), nil
}

// SwapRows swaps rows i and j of bm
func (bm *BigMatrix) SwapRows(i, j int) error {
	if err := checkIndices(i, j, bm.numRows, bm.numRows, "BigMatrix.SwapRows"); err != nil {
		return err
	}
	for k := 0; k < bm.numCols; k++ {
		bm.values[i*bm.numCols+k], bm.values[j*bm.numCols+k] =
			bm.values[j*bm.numCols+k], bm.values[i*bm.numCols+k]
	}
	return nil
}

// SwapColumns swaps columns i and j of bm
func (bm *BigMatrix) SwapColumns(i, j int) error {
	if err := checkIndices(i, j, bm.numCols, bm.numCols, "BigMatrix.SwapColumns"); err != nil {
		return err
	}
	for k := 0; k < bm.numRows; k++ {
		bm.values[k*bm.numCols+i], bm.values[k*bm.numCols+j] =
			bm.values[k*bm.numCols+j], bm.values[k*bm.numCols+i]
	}
	return nil
}

// Equals returns whether all corresponding elements of bm and x are within
// tolerance of each other. If x and y have different dimensions, an error
// is returned.
func (bm *BigMatrix) Equals(x *BigMatrix, tolerance *big.Float) (bool, error) {
	if bm.numRows != x.numRows || bm.numCols != x.numCols {
		return false, fmt.Errorf("BigMatrix.Equals: cannot compare bm[%d][%d] to x[%d][%d]",
			bm.numRows, bm.numCols, x.numRows, x.numCols)
	}
	diff := new(big.Float).SetPrec(bm.prec)
	for i := range bm.values {
		diff.Sub(bm.values[i], x.values[i])
		if diff.Abs(diff).Cmp(tolerance) > 0 {
			return false, nil
		}
	}
	return true, nil
}

// Dimensions returns the number of rows and columns in bm, in that order.
func (bm *BigMatrix) Dimensions() (int, int) {
	return bm.numRows, bm.numCols
}

// NumRows returns the number of rows in bm
func (bm *BigMatrix) NumRows() int {
	return bm.numRows
}

// NumCols returns the number of columns in bm
func (bm *BigMatrix) NumCols() int {
	return bm.numCols
}

// String returns a string representing bm with rows separated by newlines.
func (bm *BigMatrix) String() string {
	var sb strings.Builder
	for i := 0; i < bm.numRows; i++ {
		for j := 0; j < bm.numCols; j++ {
			sb.WriteString(fmt.Sprintf("%s, ", bm.values[i*bm.numCols+j].Text('g', 10)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func normalizeDimensions(numRows, numCols int) (int, int) {
	if numRows <= 0 || numCols <= 0 {
		return 0, 0
	}
	return numRows, numCols
}

func checkIndices(i, j, numRows, numCols int, caller string) error {
	if i < 0 || numRows <= i {
		return fmt.Errorf("%s: index i = %d outside range {0, ... %d}", caller, i, numRows-1)
	}
	if j < 0 || numCols <= j {
		return fmt.Errorf("%s: index j = %d outside range {0, ... %d}", caller, j, numCols-1)
	}
	return nil
}
