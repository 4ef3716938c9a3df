// Copyright (c) 2023 Colin McRae

package pslqops

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predrag3141/arithinv/bigmatrix"
	"github.com/predrag3141/arithinv/bignumber"
)

const testPrec = 300

func getRandomX(rng *rand.Rand, n int, prec uint) []*big.Float {
	retVal := make([]*big.Float, n)
	for i := 0; i < n; i++ {
		// Random numerator over 2^prec, so every bit of precision is used
		numerator := new(big.Int).Rand(rng, new(big.Int).Lsh(big.NewInt(1), prec))
		numerator.Add(numerator, big.NewInt(1))
		if rng.Intn(2) == 0 {
			numerator.Neg(numerator)
		}
		retVal[i] = new(big.Float).SetPrec(prec).SetInt(numerator)
		retVal[i].SetMantExp(retVal[i], -int(prec))
	}
	return retVal
}

func checkSmall(t *testing.T, x *big.Float, log2Bound int, context string) {
	assert.Truef(
		t, x.Sign() == 0 || x.MantExp(nil) < log2Bound, "%s: %s is not small", context, x.Text('g', 10),
	)
}

func TestGetNormalizedX(t *testing.T) {
	x := []*big.Float{big.NewFloat(3), big.NewFloat(-4)}
	normalized, err := GetNormalizedX(x, testPrec)
	require.NoError(t, err)
	x0, _ := normalized.Get(0, 0)
	x1, _ := normalized.Get(0, 1)
	assert.Equal(t, "0.6", x0.Text('g', 10))
	assert.Equal(t, "-0.8", x1.Text('g', 10))

	_, err = GetNormalizedX([]*big.Float{big.NewFloat(0), big.NewFloat(0)}, testPrec)
	assert.Error(t, err)
	_, err = GetNormalizedX([]*big.Float{big.NewFloat(1)}, testPrec)
	assert.Error(t, err)
}

func TestGetS(t *testing.T) {
	x, err := bigmatrix.NewFromFloatArray(
		[]*big.Float{big.NewFloat(2), big.NewFloat(-3), big.NewFloat(4)}, 1, 3, testPrec,
	)
	require.NoError(t, err)
	s, err := GetS(x)
	require.NoError(t, err)
	expectedSquares := []int64{29, 25, 16}
	for i, expected := range expectedSquares {
		si, err := s.Get(0, i)
		assert.NoError(t, err)
		square := new(big.Float).SetPrec(testPrec).Mul(si, si)
		diff := new(big.Float).Sub(square, big.NewFloat(float64(expected)))
		checkSmall(t, diff, -testPrec+10, "s^2")
	}

	_, err = GetS(bigmatrix.NewEmpty(2, 3, testPrec))
	assert.Error(t, err)
}

// TestGetH checks the properties of H from the 1992 PSLQ paper: xH = 0 and
// the columns of H are orthonormal.
func TestGetH(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{2, 3, 5, 8} {
		x, err := GetNormalizedX(getRandomX(rng, n, testPrec), testPrec)
		require.NoError(t, err)
		s, err := GetS(x)
		require.NoError(t, err)
		h, err := GetH(x, s)
		require.NoError(t, err)
		numRows, numCols := h.Dimensions()
		assert.Equal(t, n, numRows)
		assert.Equal(t, n-1, numCols)

		xh, err := bigmatrix.NewEmpty(1, 1, testPrec).Mul(x, h)
		require.NoError(t, err)
		for j := 0; j < n-1; j++ {
			v, _ := xh.Get(0, j)
			checkSmall(t, v, -testPrec+20, "xH")
		}

		hTranspose := bigmatrix.NewEmpty(1, 1, testPrec).Transpose(h)
		hth, err := bigmatrix.NewEmpty(1, 1, testPrec).Mul(hTranspose, h)
		require.NoError(t, err)
		identity, err := bigmatrix.NewIdentity(n-1, testPrec)
		require.NoError(t, err)
		equal, err := hth.Equals(identity, bignumber.PowerOfTwo(-testPrec+20, testPrec))
		assert.NoError(t, err)
		assert.True(t, equal)

		// Lower trapezoidal
		for i := 0; i < n; i++ {
			for j := i + 1; j < n-1; j++ {
				v, _ := h.Get(i, j)
				assert.Equal(t, 0, v.Sign())
			}
		}
	}
}

func TestGivensRotation(t *testing.T) {
	h, err := bigmatrix.NewFromFloatArray([]*big.Float{
		big.NewFloat(3), big.NewFloat(4),
		big.NewFloat(1), big.NewFloat(2),
		big.NewFloat(5), big.NewFloat(6),
	}, 3, 2, testPrec)
	require.NoError(t, err)
	rotated, err := GivensRotation(h, 0, 1)
	require.NoError(t, err)
	assert.True(t, rotated)
	h00, _ := h.Get(0, 0)
	h01, _ := h.Get(0, 1)
	assert.Equal(t, "5", h00.Text('g', 10))
	assert.Equal(t, 0, h01.Sign())

	// Row norms are preserved
	h10, _ := h.Get(1, 0)
	h11, _ := h.Get(1, 1)
	normSq := new(big.Float).SetPrec(testPrec).Mul(h10, h10)
	normSq.Add(normSq, new(big.Float).SetPrec(testPrec).Mul(h11, h11))
	checkSmall(t, normSq.Sub(normSq, big.NewFloat(5)), -testPrec+10, "row norm")

	_, err = GivensRotation(h, 1, 1)
	assert.Error(t, err)
	zero := bigmatrix.NewEmpty(2, 2, testPrec)
	rotated, err = GivensRotation(zero, 0, 1)
	assert.NoError(t, err)
	assert.False(t, rotated)
}

func TestGetMaxJ(t *testing.T) {
	h, err := bigmatrix.NewFromFloatArray([]*big.Float{
		big.NewFloat(0.5), big.NewFloat(0),
		big.NewFloat(0.1), big.NewFloat(-0.45),
		big.NewFloat(0.2), big.NewFloat(0.3),
	}, 3, 2, testPrec)
	require.NoError(t, err)

	// Without the powers of gamma, row 0 would win. With them,
	// gamma^2 * 0.45 = 0.6 > gamma * 0.5 = 0.577...
	gamma := DefaultGamma(testPrec)
	powers := []*big.Float{gamma, new(big.Float).Mul(gamma, gamma)}
	maxJ, err := GetMaxJ(h, powers)
	assert.NoError(t, err)
	assert.Equal(t, 1, maxJ)

	ro, err := GetRClassic(h, powers)
	assert.NoError(t, err)
	assert.True(t, ro.Equals(NewSwap(1)))

	_, err = GetMaxJ(h, powers[:1])
	assert.Error(t, err)
}

func TestRowOperation_ValidateIndices(t *testing.T) {
	assert.NoError(t, NewSwap(0).ValidateIndices(3, "test"))
	assert.NoError(t, NewSwap(1).ValidateIndices(3, "test"))
	assert.Error(t, NewSwap(2).ValidateIndices(3, "test"))
	assert.Error(t, (&RowOperation{Indices: []int{0, 2}}).ValidateIndices(3, "test"))
	assert.Error(t, (&RowOperation{Indices: []int{0}}).ValidateIndices(3, "test"))
}

// checkInvariants verifies AB = I and y = xB, with x normalized
func checkInvariants(t *testing.T, s *State, x []*big.Float) {
	product, err := bigmatrix.NewEmptyInt(1, 1).Mul(s.a, s.b)
	require.NoError(t, err)
	identity, err := bigmatrix.NewIntIdentity(s.numRows)
	require.NoError(t, err)
	assert.True(t, product.Equals(identity), "AB != I after %d iterations", s.iterations)

	normalizedX, err := GetNormalizedX(x, s.prec)
	require.NoError(t, err)
	for j := 0; j < s.numRows; j++ {
		column, err := s.b.Column(j)
		require.NoError(t, err)
		sum := new(big.Float).SetPrec(s.prec)
		for k := 0; k < s.numRows; k++ {
			xk, _ := normalizedX.Get(0, k)
			sum.Add(sum, new(big.Float).SetPrec(s.prec).Mul(xk, bignumber.FloatFromInt(column[k], s.prec)))
		}
		yj, _ := s.y.Get(0, j)
		checkSmall(t, sum.Sub(sum, yj), -int(s.prec)/2, "xB - y")
	}
}

func TestState_OneIteration(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	x := getRandomX(rng, 5, testPrec)
	state, err := NewState(x, testPrec, nil)
	require.NoError(t, err)
	checkInvariants(t, state, x)
	for i := 0; i < 20; i++ {
		terminated, err := state.OneIteration(GetRClassic)
		require.NoError(t, err)
		if terminated {
			break
		}
	}
	checkInvariants(t, state, x)
	assert.Less(t, 0, state.Iterations())
}

func TestState_FindsRelation(t *testing.T) {
	// x = (1, sqrt(2), sqrt(3), sqrt(6)) has no relation; appending
	// 1 + 2sqrt(2) - sqrt(6) plants (1, 2, 0, -1, -1).
	prec := uint(testPrec)
	sqrt2 := new(big.Float).SetPrec(prec).Sqrt(big.NewFloat(2))
	sqrt3 := new(big.Float).SetPrec(prec).Sqrt(big.NewFloat(3))
	sqrt6 := new(big.Float).SetPrec(prec).Mul(sqrt2, sqrt3)
	last := new(big.Float).SetPrec(prec).Mul(big.NewFloat(2), sqrt2)
	last.Add(last, big.NewFloat(1))
	last.Sub(last, sqrt6)
	x := []*big.Float{big.NewFloat(1).SetPrec(prec), sqrt2, sqrt3, sqrt6, last}

	state, err := NewState(x, prec, nil)
	require.NoError(t, err)
	terminated := false
	for i := 0; i < 1000 && !terminated; i++ {
		terminated, err = state.OneIteration(GetRClassic)
		require.NoError(t, err)
	}
	require.True(t, terminated)
	assert.False(t, state.PrecisionExhausted())
	solution, err := state.GetSolution()
	require.NoError(t, err)
	require.NotNil(t, solution)
	sign := int64(solution[4].Sign())
	expected := []int64{1, 2, 0, -1, -1}
	for i := range expected {
		assert.Equal(t, -sign*expected[i], solution[i].Int64())
	}
	checkInvariants(t, state, x)
}

func TestState_NormBound(t *testing.T) {
	x := []*big.Float{big.NewFloat(1), bignumber.E(testPrec)}
	state, err := NewState(x, testPrec, nil)
	require.NoError(t, err)
	bound, err := state.NormBound()
	require.NoError(t, err)
	require.NotNil(t, bound)
	assert.Equal(t, 1, bound.Sign())
	_, err = NewState(x, testPrec, big.NewFloat(1))
	assert.Error(t, err)
}
