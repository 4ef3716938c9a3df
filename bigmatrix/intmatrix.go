// Copyright (c) 2023 Colin McRae

package bigmatrix

import (
	"fmt"
	"math/big"
	"strings"
)

// IntMatrix is a row-major matrix of big.Ints. PSLQ keeps its unimodular
// matrices A and B in IntMatrix form so that relations of any size are exact.
type IntMatrix struct {
	values  []*big.Int
	numRows int
	numCols int
}

// NewEmptyInt returns a numRows x numCols matrix of 0s
func NewEmptyInt(numRows, numCols int) *IntMatrix {
	numRows, numCols = normalizeDimensions(numRows, numCols)
	retVal := &IntMatrix{
		values:  make([]*big.Int, numRows*numCols),
		numRows: numRows,
		numCols: numCols,
	}
	for i := range retVal.values {
		retVal.values[i] = new(big.Int)
	}
	return retVal
}

// NewIntIdentity returns a dim x dim identity matrix, or an error if dim < 1
func NewIntIdentity(dim int) (*IntMatrix, error) {
	if dim < 1 {
		return nil, fmt.Errorf("NewIntIdentity: dimension %d < 1", dim)
	}
	retVal := NewEmptyInt(dim, dim)
	for i := 0; i < dim; i++ {
		retVal.values[i*dim+i].SetInt64(1)
	}
	return retVal, nil
}

// NewFromInt64Array creates a numRows x numCols matrix from input
func NewFromInt64Array(input []int64, numRows, numCols int) (*IntMatrix, error) {
	if numRows <= 0 || numCols <= 0 {
		return nil, fmt.Errorf(
			"NewFromInt64Array: illegal number of rows %d or columns %d", numRows, numCols,
		)
	}
	if len(input) != numRows*numCols {
		return nil, fmt.Errorf("NewFromInt64Array: length of input does not match dimensions")
	}
	retVal := NewEmptyInt(numRows, numCols)
	for i, value := range input {
		retVal.values[i].SetInt64(value)
	}
	return retVal, nil
}

// Get returns the pointer to the value in row i, column j of im.
// This is not a deep copy.
func (im *IntMatrix) Get(i, j int) (*big.Int, error) {
	if err := checkIndices(i, j, im.numRows, im.numCols, "IntMatrix.Get"); err != nil {
		return nil, err
	}
	return im.values[i*im.numCols+j], nil
}

// Set sets the value in row i, column j to x. This is a deep copy.
func (im *IntMatrix) Set(i, j int, x *big.Int) error {
	if err := checkIndices(i, j, im.numRows, im.numCols, "IntMatrix.Set"); err != nil {
		return err
	}
	im.values[i*im.numCols+j].Set(x)
	return nil
}

// Row returns pointers to the entries of row i
func (im *IntMatrix) Row(i int) ([]*big.Int, error) {
	if i < 0 || im.numRows <= i {
		return nil, fmt.Errorf("IntMatrix.Row: index i = %d outside range {0, ... %d}", i, im.numRows-1)
	}
	return im.values[i*im.numCols : (i+1)*im.numCols], nil
}

// Column returns a deep copy of column j
func (im *IntMatrix) Column(j int) ([]*big.Int, error) {
	if j < 0 || im.numCols <= j {
		return nil, fmt.Errorf("IntMatrix.Column: index j = %d outside range {0, ... %d}", j, im.numCols-1)
	}
	retVal := make([]*big.Int, im.numRows)
	for i := 0; i < im.numRows; i++ {
		retVal[i] = new(big.Int).Set(im.values[i*im.numCols+j])
	}
	return retVal, nil
}

// SwapRows swaps rows i and j of im
func (im *IntMatrix) SwapRows(i, j int) error {
	if err := checkIndices(i, j, im.numRows, im.numRows, "IntMatrix.SwapRows"); err != nil {
		return err
	}
	for k := 0; k < im.numCols; k++ {
		im.values[i*im.numCols+k], im.values[j*im.numCols+k] =
			im.values[j*im.numCols+k], im.values[i*im.numCols+k]
	}
	return nil
}

// SwapColumns swaps columns i and j of im
func (im *IntMatrix) SwapColumns(i, j int) error {
	if err := checkIndices(i, j, im.numCols, im.numCols, "IntMatrix.SwapColumns"); err != nil {
		return err
	}
	for k := 0; k < im.numRows; k++ {
		im.values[k*im.numCols+i], im.values[k*im.numCols+j] =
			im.values[k*im.numCols+j], im.values[k*im.numCols+i]
	}
	return nil
}

// Mul replaces the contents of im with xy and returns im
func (im *IntMatrix) Mul(x, y *IntMatrix) (*IntMatrix, error) {
	if x.numCols != y.numRows {
		return nil, fmt.Errorf(
			"IntMatrix.Mul: mismatched dimensions for operands x (%d x %d) and y (%d x %d)",
			x.numRows, x.numCols, y.numRows, y.numCols,
		)
	}
	retVal := NewEmptyInt(x.numRows, y.numCols)
	term := new(big.Int)
	for i := 0; i < x.numRows; i++ {
		for j := 0; j < y.numCols; j++ {
			sum := retVal.values[i*retVal.numCols+j]
			for k := 0; k < x.numCols; k++ {
				sum.Add(sum, term.Mul(x.values[i*x.numCols+k], y.values[k*y.numCols+j]))
			}
		}
	}
	im.values, im.numRows, im.numCols = retVal.values, retVal.numRows, retVal.numCols
	return im, nil
}

// Equals reports whether im and x have the same dimensions and entries
func (im *IntMatrix) Equals(x *IntMatrix) bool {
	if im.numRows != x.numRows || im.numCols != x.numCols {
		return false
	}
	for i := range im.values {
		if im.values[i].Cmp(x.values[i]) != 0 {
			return false
		}
	}
	return true
}

// Dimensions returns the number of rows and columns in im, in that order.
func (im *IntMatrix) Dimensions() (int, int) {
	return im.numRows, im.numCols
}

// String returns a string representing im with rows separated by newlines.
func (im *IntMatrix) String() string {
	var sb strings.Builder
	for i := 0; i < im.numRows; i++ {
		for j := 0; j < im.numCols; j++ {
			sb.WriteString(fmt.Sprintf("%s, ", im.values[i*im.numCols+j].String()))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
