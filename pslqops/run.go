// Copyright (c) 2023 Colin McRae

// Package pslqops performs operations specific to the PSLQ algorithm
package pslqops

import (
	"fmt"
	"math/big"

	"github.com/predrag3141/arithinv/bigmatrix"
	"github.com/predrag3141/arithinv/bignumber"
)

const (
	// ExtraPrecision is the number of bits PSLQ works with beyond the
	// precision of its input, to absorb round-off in H.
	ExtraPrecision = 60

	// A relation is detected when an entry of y = xB falls below
	// 2^-(toleranceNumerator * prec / toleranceDenominator).
	toleranceNumerator   = 3
	toleranceDenominator = 4
)

// GetR is the signature of a function that chooses the row operation to
// perform in one iteration of PSLQ, given H and the powers of gamma.
type GetR func(h *bigmatrix.BigMatrix, powersOfGamma []*big.Float) (*RowOperation, error)

// State holds the state of a running PSLQ algorithm. Invariants maintained
// across iterations are
//
//   - y = xB, where x is the normalized input
//   - AB = I, so B is unimodular
//   - H is lower trapezoidal, and AxH = 0
type State struct {
	y                  *bigmatrix.BigMatrix
	h                  *bigmatrix.BigMatrix
	a                  *bigmatrix.IntMatrix
	b                  *bigmatrix.IntMatrix
	numRows            int
	numCols            int
	prec               uint
	powersOfGamma      []*big.Float
	tolerance          *big.Float
	iterations         int
	precisionExhausted bool
}

// NewState returns a new State for input x, with working precision prec plus
// ExtraPrecision bits. gamma must exceed sqrt(4/3); nil means the smallest
// such gamma at this precision.
func NewState(x []*big.Float, prec uint, gamma *big.Float) (*State, error) {
	workingPrec := prec + ExtraPrecision
	normalizedX, err := GetNormalizedX(x, workingPrec)
	if err != nil {
		return nil, fmt.Errorf("NewState: error in GetNormalizedX: %q", err.Error())
	}
	s, err := GetS(normalizedX)
	if err != nil {
		return nil, fmt.Errorf("NewState: error in GetS: %q", err.Error())
	}
	h, err := GetH(normalizedX, s)
	if err != nil {
		return nil, fmt.Errorf("NewState: error in GetH: %q", err.Error())
	}
	numRows := len(x)
	a, err := bigmatrix.NewIntIdentity(numRows)
	if err != nil {
		return nil, fmt.Errorf("NewState: could not create A: %q", err.Error())
	}
	b, err := bigmatrix.NewIntIdentity(numRows)
	if err != nil {
		return nil, fmt.Errorf("NewState: could not create B: %q", err.Error())
	}
	retVal := &State{
		y:         normalizedX,
		h:         h,
		a:         a,
		b:         b,
		numRows:   numRows,
		numCols:   numRows - 1,
		prec:      workingPrec,
		tolerance: bignumber.PowerOfTwo(-int(toleranceNumerator*prec/toleranceDenominator), workingPrec),
	}

	// retVal needs powersOfGamma to be defined
	if gamma == nil {
		gamma = DefaultGamma(workingPrec)
	}
	minGammaSq := big.NewFloat(4.0 / 3.0)
	if new(big.Float).Mul(gamma, gamma).Cmp(minGammaSq) < 0 {
		return nil, fmt.Errorf("NewState: gamma = %s < sqrt(4/3)", gamma.Text('g', 10))
	}
	retVal.powersOfGamma = make([]*big.Float, retVal.numCols)
	power := new(big.Float).SetPrec(workingPrec).Set(gamma)
	for j := 0; j < retVal.numCols; j++ {
		retVal.powersOfGamma[j] = new(big.Float).Copy(power)
		power.Mul(power, gamma)
	}

	// The initial H is reduced so that |H[i][j]| <= |H[j][j]|/2 for j < i
	for i := 1; i < retVal.numRows; i++ {
		if err = retVal.reduceRow(i, i-1); err != nil {
			return nil, fmt.Errorf("NewState: could not reduce row %d of H: %q", i, err.Error())
		}
	}
	return retVal, nil
}

// DefaultGamma returns sqrt(4/3) rounded up at precision prec, the smallest
// gamma for which PSLQ is guaranteed to terminate.
func DefaultGamma(prec uint) *big.Float {
	retVal := new(big.Float).SetPrec(prec).SetMode(big.AwayFromZero)
	retVal.Quo(big.NewFloat(4), big.NewFloat(3))
	retVal.Sqrt(retVal)
	return retVal.SetMode(big.ToNearestEven)
}

// OneIteration performs one iteration of the PSLQ algorithm, using getR to
// choose the row operation. It returns whether the algorithm has terminated.
func (s *State) OneIteration(getR GetR) (bool, error) {
	if s.precisionExhausted {
		return true, nil
	}
	rowOperation, err := getR(s.h, s.powersOfGamma)
	if err != nil {
		return false, fmt.Errorf("OneIteration: could not get row operation: %q", err.Error())
	}
	if err = s.step3(rowOperation); err != nil {
		return false, fmt.Errorf("OneIteration: could not perform row operation: %q", err.Error())
	}
	if err = s.step1(rowOperation.Indices[0]); err != nil {
		return false, fmt.Errorf("OneIteration: could not reduce H: %q", err.Error())
	}
	s.iterations++
	return s.HasTerminated()
}

// HasTerminated returns whether an entry of y is below the tolerance, or the
// precision has been exhausted so that H can no longer be updated.
func (s *State) HasTerminated() (bool, error) {
	if s.precisionExhausted {
		return true, nil
	}
	j, err := s.minYIndex()
	if err != nil {
		return false, fmt.Errorf("HasTerminated: %q", err.Error())
	}
	return j >= 0, nil
}

// PrecisionExhausted returns whether a zero appeared where PSLQ needs to divide,
// which happens when the working precision cannot support further iterations.
func (s *State) PrecisionExhausted() bool {
	return s.precisionExhausted
}

// GetSolution returns the column of B corresponding to the smallest entry
// of y, if that entry is below the tolerance. Otherwise nil is returned.
func (s *State) GetSolution() ([]*big.Int, error) {
	j, err := s.minYIndex()
	if err != nil {
		return nil, fmt.Errorf("GetSolution: %q", err.Error())
	}
	if j < 0 {
		return nil, nil
	}
	retVal, err := s.b.Column(j)
	if err != nil {
		return nil, fmt.Errorf("GetSolution: could not get column %d of B: %q", j, err.Error())
	}
	return retVal, nil
}

// NormBound returns 1/max|H[j][j]|, a lower bound on the Euclidean norm of any
// relation of the input. If every diagonal element is 0, nil is returned.
func (s *State) NormBound() (*big.Float, error) {
	maxDiagonalElement := new(big.Float).SetPrec(s.prec)
	absHJJ := new(big.Float).SetPrec(s.prec)
	for j := 0; j < s.numCols; j++ {
		hJJ, err := s.h.Get(j, j)
		if err != nil {
			return nil, fmt.Errorf("NormBound: could not get H[%d][%d]: %q", j, j, err.Error())
		}
		if absHJJ.Abs(hJJ).Cmp(maxDiagonalElement) > 0 {
			maxDiagonalElement.Set(absHJJ)
		}
	}
	if maxDiagonalElement.Sign() == 0 {
		return nil, nil
	}
	return new(big.Float).SetPrec(s.prec).Quo(big.NewFloat(1), maxDiagonalElement), nil
}

// Iterations returns the number of iterations performed so far
func (s *State) Iterations() int {
	return s.iterations
}

// NumRows returns the length of the input
func (s *State) NumRows() int {
	return s.numRows
}

// GetMaxJ returns the value of j among {0,...,h.NumCols()-1} for which
// gamma^(j+1) |H[j][j]| is largest. This is specified in step 2
// of the PSLQ algorithm in the original 1992 PSLQ paper.
//
// GetMaxJ is a convenience function to be used in the definition of getR()
//
// In the definition of getR(), GetMaxJ() should be passed the same h and
// powersOfGamma that are passed to getR().
func GetMaxJ(h *bigmatrix.BigMatrix, powersOfGamma []*big.Float) (int, error) {
	numCols := h.NumCols()
	if len(powersOfGamma) != numCols {
		return numCols - 1, fmt.Errorf("GetMaxJ: powers of gamma are not %d-long", numCols)
	}
	maxDiagonalElement := new(big.Float).SetPrec(h.Prec())
	product := new(big.Float).SetPrec(h.Prec())
	maxJ := 0
	for j := 0; j < numCols; j++ {
		hJJ, err := h.Get(j, j)
		if err != nil {
			return numCols - 1, fmt.Errorf(
				"GetMaxJ: could not get h[%d][%d]: %q", j, j, err.Error(),
			)
		}
		product.Mul(hJJ, powersOfGamma[j])
		product.Abs(product)
		if maxDiagonalElement.Cmp(product) < 0 {
			maxJ = j
			maxDiagonalElement.Set(product)
		}
	}
	return maxJ, nil
}

// GetRClassic uses the strategy from the classic PSLQ algorithm to choose
// the rows to swap.
func GetRClassic(h *bigmatrix.BigMatrix, powersOfGamma []*big.Float) (*RowOperation, error) {
	j, err := GetMaxJ(h, powersOfGamma)
	if err != nil {
		return nil, fmt.Errorf("GetRClassic: could not get maximum j: %q", err.Error())
	}
	return NewSwap(j), nil
}

// step1 performs the Hermite reduction of H (step 1 of the PSLQ iteration in the
// 1992 paper) on the rows below row m, the rows affected by the last swap.
func (s *State) step1(m int) error {
	for i := m + 1; i < s.numRows; i++ {
		jStart := i - 1
		if m+1 < jStart {
			jStart = m + 1
		}
		if err := s.reduceRow(i, jStart); err != nil {
			return fmt.Errorf("step1: could not reduce row %d: %q", i, err.Error())
		}
		if s.precisionExhausted {
			return nil
		}
	}
	return nil
}

// reduceRow subtracts integer multiples of rows jStart, jStart-1, ..., 0 of H
// from row i, so that |H[i][j]| <= |H[j][j]|/2, updating y, A and B to match.
func (s *State) reduceRow(i, jStart int) error {
	hRowI, err := s.h.Row(i)
	if err != nil {
		return fmt.Errorf("reduceRow: could not get row %d of H: %q", i, err.Error())
	}
	yRow, err := s.y.Row(0)
	if err != nil {
		return fmt.Errorf("reduceRow: could not get y: %q", err.Error())
	}
	aRowI, err := s.a.Row(i)
	if err != nil {
		return fmt.Errorf("reduceRow: could not get row %d of A: %q", i, err.Error())
	}
	quotient := new(big.Float).SetPrec(s.prec)
	tFloat := new(big.Float).SetPrec(s.prec)
	term := new(big.Float).SetPrec(s.prec)
	intTerm := new(big.Int)
	for j := jStart; j >= 0; j-- {
		hRowJ, err := s.h.Row(j)
		if err != nil {
			return fmt.Errorf("reduceRow: could not get row %d of H: %q", j, err.Error())
		}
		if hRowJ[j].Sign() == 0 {
			s.precisionExhausted = true
			return nil
		}
		t := bignumber.RoundToInt(quotient.Quo(hRowI[j], hRowJ[j]))
		if t.Sign() == 0 {
			continue
		}
		tFloat.SetInt(t)

		// y[j] = y[j] + t y[i]
		yRow[j].Add(yRow[j], term.Mul(tFloat, yRow[i]))

		// H[i][k] = H[i][k] - t H[j][k]
		for k := 0; k <= j; k++ {
			hRowI[k].Sub(hRowI[k], term.Mul(tFloat, hRowJ[k]))
		}

		// A[i][k] = A[i][k] - t A[j][k], B[k][j] = B[k][j] + t B[k][i]
		aRowJ, err := s.a.Row(j)
		if err != nil {
			return fmt.Errorf("reduceRow: could not get row %d of A: %q", j, err.Error())
		}
		for k := 0; k < s.numRows; k++ {
			aRowI[k].Sub(aRowI[k], intTerm.Mul(t, aRowJ[k]))
			bRowK, err := s.b.Row(k)
			if err != nil {
				return fmt.Errorf("reduceRow: could not get row %d of B: %q", k, err.Error())
			}
			bRowK[j].Add(bRowK[j], intTerm.Mul(t, bRowK[i]))
		}
	}
	return nil
}

// step3 performs the row operation on H, A, y and B, then removes the
// corner it leaves in H.
func (s *State) step3(rowOperation *RowOperation) error {
	if err := rowOperation.ValidateIndices(s.numRows, "step3"); err != nil {
		return err
	}
	m := rowOperation.Indices[0]
	if err := s.h.SwapRows(m, m+1); err != nil {
		return fmt.Errorf("step3: could not swap rows of H: %q", err.Error())
	}
	if err := s.a.SwapRows(m, m+1); err != nil {
		return fmt.Errorf("step3: could not swap rows of A: %q", err.Error())
	}
	if err := s.b.SwapColumns(m, m+1); err != nil {
		return fmt.Errorf("step3: could not swap columns of B: %q", err.Error())
	}
	if err := s.y.SwapColumns(m, m+1); err != nil {
		return fmt.Errorf("step3: could not swap entries of y: %q", err.Error())
	}
	if m+1 < s.numCols {
		rotated, err := GivensRotation(s.h, m, m+1)
		if err != nil {
			return fmt.Errorf("step3: could not remove corner: %q", err.Error())
		}
		if !rotated {
			s.precisionExhausted = true
		}
	}
	return nil
}

// minYIndex returns the index of the smallest entry of y if it is below the
// tolerance, or -1 otherwise.
func (s *State) minYIndex() (int, error) {
	yRow, err := s.y.Row(0)
	if err != nil {
		return -1, fmt.Errorf("minYIndex: could not get y: %q", err.Error())
	}
	minJ := -1
	minAbs := new(big.Float).Set(s.tolerance)
	absYJ := new(big.Float).SetPrec(s.prec)
	for j := 0; j < s.numRows; j++ {
		if absYJ.Abs(yRow[j]).Cmp(minAbs) < 0 {
			minJ = j
			minAbs.Set(absYJ)
		}
	}
	return minJ, nil
}
