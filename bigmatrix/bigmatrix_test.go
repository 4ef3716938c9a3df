// Copyright (c) 2023 Colin McRae

package bigmatrix

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrec = 200

func floatsFromStrings(t *testing.T, input []string) []*big.Float {
	retVal := make([]*big.Float, len(input))
	for i, s := range input {
		f, _, err := big.ParseFloat(s, 10, testPrec, big.ToNearestEven)
		require.NoError(t, err)
		retVal[i] = f
	}
	return retVal
}

func TestNewIdentity(t *testing.T) {
	identity, err := NewIdentity(3, testPrec)
	assert.NoError(t, err)
	assert.NotNil(t, identity)
	assert.Equal(t, 3, identity.numRows)
	assert.Equal(t, 3, identity.numCols)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v, err := identity.Get(i, j)
			assert.NoError(t, err)
			if i == j {
				assert.Equal(t, 0, v.Cmp(big.NewFloat(1)))
			} else {
				assert.Equal(t, 0, v.Sign())
			}
		}
	}

	// Dimension 0 or less
	_, err = NewIdentity(0, testPrec)
	assert.Error(t, err)
	_, err = NewIntIdentity(-1)
	assert.Error(t, err)
}

func TestNewEmpty(t *testing.T) {
	for _, dims := range [][2]int{{0, 3}, {3, 0}, {-1, 2}} {
		bm := NewEmpty(dims[0], dims[1], testPrec)
		numRows, numCols := bm.Dimensions()
		assert.Equal(t, 0, numRows)
		assert.Equal(t, 0, numCols)
	}
	bm := NewEmpty(2, 3, testPrec)
	assert.Equal(t, 2, bm.NumRows())
	assert.Equal(t, 3, bm.NumCols())
	assert.Equal(t, uint(testPrec), bm.Prec())
}

func TestBigMatrix_GetSet(t *testing.T) {
	bm := NewEmpty(2, 2, testPrec)
	assert.NoError(t, bm.Set(1, 0, big.NewFloat(2.5)))
	v, err := bm.Get(1, 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(big.NewFloat(2.5)))

	// Set is a deep copy
	input := big.NewFloat(7)
	assert.NoError(t, bm.Set(0, 0, input))
	input.SetInt64(8)
	v, err = bm.Get(0, 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(big.NewFloat(7)))

	_, err = bm.Get(2, 0)
	assert.Error(t, err)
	_, err = bm.Get(0, -1)
	assert.Error(t, err)
	assert.Error(t, bm.Set(0, 2, input))
}

func TestBigMatrix_Mul(t *testing.T) {
	x, err := NewFromFloatArray(floatsFromStrings(t, []string{"1", "2", "3", "4", "5", "6"}), 2, 3, testPrec)
	require.NoError(t, err)
	y, err := NewFromFloatArray(floatsFromStrings(t, []string{"7", "8", "9", "10", "11", "12"}), 3, 2, testPrec)
	require.NoError(t, err)
	expected, err := NewFromFloatArray(floatsFromStrings(t, []string{"58", "64", "139", "154"}), 2, 2, testPrec)
	require.NoError(t, err)

	actual, err := NewEmpty(1, 1, testPrec).Mul(x, y)
	assert.NoError(t, err)
	equal, err := actual.Equals(expected, big.NewFloat(0))
	assert.NoError(t, err)
	assert.True(t, equal)

	// x can be multiplied by itself in place only if square
	_, err = x.Mul(x, x)
	assert.Error(t, err)
}

func TestBigMatrix_TransposeAndSwaps(t *testing.T) {
	x, err := NewFromFloatArray(floatsFromStrings(t, []string{"1", "2", "3", "4", "5", "6"}), 2, 3, testPrec)
	require.NoError(t, err)
	xt := NewEmpty(1, 1, testPrec).Transpose(x)
	assert.Equal(t, 3, xt.NumRows())
	v, err := xt.Get(2, 1)
	assert.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(big.NewFloat(6)))

	assert.NoError(t, x.SwapRows(0, 1))
	v, _ = x.Get(0, 2)
	assert.Equal(t, 0, v.Cmp(big.NewFloat(6)))
	assert.NoError(t, x.SwapColumns(0, 2))
	v, _ = x.Get(0, 0)
	assert.Equal(t, 0, v.Cmp(big.NewFloat(6)))
	assert.Error(t, x.SwapRows(0, 2))

	row, err := x.Row(1)
	assert.NoError(t, err)
	assert.Len(t, row, 3)
	row[0].SetInt64(-1)
	v, _ = x.Get(1, 0)
	assert.Equal(t, 0, v.Cmp(big.NewFloat(-1)))
}

func TestIntMatrix(t *testing.T) {
	x, err := NewFromInt64Array([]int64{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	y, err := NewFromInt64Array([]int64{0, 1, 1, 0}, 2, 2)
	require.NoError(t, err)
	expected, err := NewFromInt64Array([]int64{2, 1, 4, 3}, 2, 2)
	require.NoError(t, err)
	product, err := NewEmptyInt(1, 1).Mul(x, y)
	assert.NoError(t, err)
	assert.True(t, product.Equals(expected))

	column, err := x.Column(1)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), column[0].Int64())
	assert.Equal(t, int64(4), column[1].Int64())
	column[0].SetInt64(100)
	v, _ := x.Get(0, 1)
	assert.Equal(t, int64(2), v.Int64())

	assert.NoError(t, x.SwapColumns(0, 1))
	assert.True(t, x.Equals(expected))
	_, err = NewFromInt64Array([]int64{1, 2, 3}, 2, 2)
	assert.Error(t, err)
}

func TestRatMatrix(t *testing.T) {
	m := NewRatMatrix(2)
	require.NoError(t, m.Set(0, 1, big.NewRat(-1, 1)))
	require.NoError(t, m.Set(1, 0, big.NewRat(1, 1)))

	// m is rotation by a quarter turn, so m^2 = -I
	square, err := NewRatMatrix(0).Mul(m, m)
	assert.NoError(t, err)
	assert.Equal(t, 0, square.Trace().Cmp(big.NewRat(-2, 1)))
	square.AddToDiagonal(big.NewRat(1, 1))
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			v, err := square.Get(i, j)
			assert.NoError(t, err)
			assert.Equal(t, 0, v.Sign())
		}
	}
	c := m.Copy()
	require.NoError(t, c.Set(0, 0, big.NewRat(5, 1)))
	v, _ := m.Get(0, 0)
	assert.Equal(t, 0, v.Sign())
}

func TestRatMatrix_Inverse(t *testing.T) {
	// [[0, 2], [1, 3]] needs a row swap
	m := NewRatMatrix(2)
	require.NoError(t, m.Set(0, 1, big.NewRat(2, 1)))
	require.NoError(t, m.Set(1, 0, big.NewRat(1, 1)))
	require.NoError(t, m.Set(1, 1, big.NewRat(3, 1)))
	inverse, err := m.Inverse()
	require.NoError(t, err)
	product, err := NewRatMatrix(0).Mul(m, inverse)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			v, err := product.Get(i, j)
			require.NoError(t, err)
			if i == j {
				assert.Equal(t, "1", v.RatString())
			} else {
				assert.Equal(t, "0", v.RatString())
			}
		}
	}
	x, err := inverse.MulVector([]*big.Rat{big.NewRat(2, 1), big.NewRat(4, 1)})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "1"}, []string{x[0].RatString(), x[1].RatString()})

	_, err = NewRatMatrix(2).Inverse()
	assert.Error(t, err)
	_, err = m.MulVector([]*big.Rat{big.NewRat(1, 1)})
	assert.Error(t, err)
}
