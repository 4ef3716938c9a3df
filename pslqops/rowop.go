// Copyright (c) 2023 Colin McRae

package pslqops

import (
	"fmt"
)

// RowOperation holds the information necessary to perform a row operation
// on H, A and B. The only row operations used here are swaps of adjacent rows
// j and j+1 of H (and A), with the corresponding swap of columns of B, which
// are followed by the Givens rotation that restores H to lower trapezoidal form.
type RowOperation struct {
	Indices []int // indices of rows affected by the row operation
}

// NewSwap returns the row operation that swaps rows j and j+1
func NewSwap(j int) *RowOperation {
	return &RowOperation{Indices: []int{j, j + 1}}
}

// ValidateIndices returns an error if ro does not swap two adjacent rows of
// a matrix with numRows rows
func (ro *RowOperation) ValidateIndices(numRows int, caller string) error {
	if len(ro.Indices) != 2 {
		return fmt.Errorf("%s: row operation has %d != 2 indices", caller, len(ro.Indices))
	}
	if ro.Indices[1] != ro.Indices[0]+1 {
		return fmt.Errorf(
			"%s: indices %d and %d are not adjacent", caller, ro.Indices[0], ro.Indices[1],
		)
	}
	if ro.Indices[0] < 0 || numRows <= ro.Indices[1] {
		return fmt.Errorf(
			"%s: indices %v outside range {0,...,%d}", caller, ro.Indices, numRows-1,
		)
	}
	return nil
}

// Equals reports whether ro and other affect the same rows
func (ro *RowOperation) Equals(other *RowOperation) bool {
	if len(ro.Indices) != len(other.Indices) {
		return false
	}
	for i := range ro.Indices {
		if ro.Indices[i] != other.Indices[i] {
			return false
		}
	}
	return true
}
