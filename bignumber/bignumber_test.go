// Copyright (c) 2023 Colin McRae

package bignumber

import (
	"math"
	"math/big"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrec = 256

func tolerance(log2 int) *big.Float {
	return PowerOfTwo(log2, testPrec)
}

func TestArithmetic(t *testing.T) {
	x := NewFromFloat64(1.5, -2, testPrec)
	y := NewFromFloat64(-0.25, 3, testPrec)
	xc, yc := complex(1.5, -2), complex(-0.25, 3)

	for _, tc := range []struct {
		name     string
		actual   *Complex
		expected complex128
	}{
		{name: "add", actual: New(testPrec).Add(x, y), expected: xc + yc},
		{name: "sub", actual: New(testPrec).Sub(x, y), expected: xc - yc},
		{name: "mul", actual: New(testPrec).Mul(x, y), expected: xc * yc},
		{name: "neg", actual: New(testPrec).Neg(x), expected: -xc},
		{name: "conj", actual: New(testPrec).Conj(x), expected: cmplx.Conj(xc)},
		{name: "sqrt", actual: New(testPrec).Sqrt(y), expected: cmplx.Sqrt(yc)},
		{name: "sqrt lower half plane", actual: New(testPrec).Sqrt(x), expected: cmplx.Sqrt(xc)},
	} {
		actual := tc.actual.Complex128()
		assert.InDeltaf(t, real(tc.expected), real(actual), 1e-14, "%s: real part", tc.name)
		assert.InDeltaf(t, imag(tc.expected), imag(actual), 1e-14, "%s: imaginary part", tc.name)
	}

	quotient, err := New(testPrec).Quo(x, y)
	require.NoError(t, err)
	assert.InDelta(t, real(xc/yc), real(quotient.Complex128()), 1e-14)
	assert.InDelta(t, imag(xc/yc), imag(quotient.Complex128()), 1e-14)

	// Aliasing the receiver with an operand
	z := x.Copy()
	z.Mul(z, z)
	assert.InDelta(t, real(xc*xc), real(z.Complex128()), 1e-14)
	assert.InDelta(t, imag(xc*xc), imag(z.Complex128()), 1e-14)
}

func TestQuoByZero(t *testing.T) {
	x := NewFromInt64(3, testPrec)
	_, err := New(testPrec).Quo(x, New(testPrec))
	assert.Error(t, err)
	_, err = New(testPrec).Inv(New(testPrec))
	assert.Error(t, err)
	_, err = New(testPrec).Pow(New(testPrec), -2)
	assert.Error(t, err)
}

func TestPow(t *testing.T) {
	// (1 + i)^8 = 16
	onePlusI := NewFromInt64(1, testPrec)
	onePlusI.im.SetInt64(1)
	actual, err := New(testPrec).Pow(onePlusI, 8)
	require.NoError(t, err)
	assert.True(t, actual.Equals(NewFromInt64(16, testPrec), tolerance(-240)))

	// (1 + i)^-2 = -i/2
	actual, err = New(testPrec).Pow(onePlusI, -2)
	require.NoError(t, err)
	assert.True(t, actual.Equals(NewFromFloat64(0, -0.5, testPrec), tolerance(-240)))

	actual, err = New(testPrec).Pow(onePlusI, 0)
	require.NoError(t, err)
	assert.True(t, actual.Equals(NewFromInt64(1, testPrec), tolerance(-240)))
}

func TestE(t *testing.T) {
	e := E(testPrec)
	assert.Equal(t, testPrec, int(e.Prec()))
	assert.Equal(t, "2.71828182845904523536028747135266249775724709369996", e.Text('f', 50))
	e64, _ := E(53).Float64()
	assert.Equal(t, math.E, e64)
}

func TestRoundToInt(t *testing.T) {
	for _, tc := range []struct {
		x        float64
		expected int64
	}{
		{x: 0, expected: 0},
		{x: 2.4, expected: 2},
		{x: 2.5, expected: 3},
		{x: 2.6, expected: 3},
		{x: -2.4, expected: -2},
		{x: -2.5, expected: -2},
		{x: -2.6, expected: -3},
		{x: -7, expected: -7},
	} {
		actual := RoundToInt(new(big.Float).SetPrec(testPrec).SetFloat64(tc.x))
		assert.Equalf(t, tc.expected, actual.Int64(), "RoundToInt(%v)", tc.x)
	}
}

func TestNewFromDecimalString(t *testing.T) {
	z, err := NewFromDecimalString("-0.5", "0.86602540378443864676372317075293618347140262690519", testPrec)
	require.NoError(t, err)

	// z is a primitive cube root of unity
	cube, err := New(testPrec).Pow(z, 3)
	require.NoError(t, err)
	assert.True(t, cube.Equals(NewFromInt64(1, testPrec), tolerance(-150)))

	z, err = NewFromDecimalString("2.25", "", testPrec)
	require.NoError(t, err)
	assert.True(t, z.IsReal())

	_, err = NewFromDecimalString("abc", "1", testPrec)
	assert.Error(t, err)
	_, err = NewFromDecimalString("1", "1.2.3", testPrec)
	assert.Error(t, err)
}

func TestLog2AbsAndIsSmall(t *testing.T) {
	assert.Equal(t, math.MinInt32, New(testPrec).Log2Abs())
	assert.True(t, New(testPrec).IsSmall(-1000))
	small := NewFromFloat64(0, math.Ldexp(1, -100), testPrec)
	assert.True(t, small.IsSmall(-90))
	assert.False(t, small.IsSmall(-110))
	large := NewFromFloat64(1024, 3, testPrec)
	assert.InDelta(t, 10, large.Log2Abs(), 1)
}

func TestText(t *testing.T) {
	assert.Equal(t, "1.5 - 2*I", NewFromFloat64(1.5, -2, testPrec).Text(10))
	assert.Equal(t, "-0.25", NewFromFloat64(-0.25, 0, testPrec).Text(10))
	assert.Equal(t, "3*I", NewFromFloat64(0, 3, testPrec).Text(10))
	assert.Equal(t, "-3*I", NewFromFloat64(0, -3, testPrec).Text(10))
}

func TestSetPrec(t *testing.T) {
	x := NewFromFloat64(1, 1, 64)
	y := x.Copy().SetPrec(testPrec)
	assert.Equal(t, uint(64), x.Prec())
	assert.Equal(t, uint(testPrec), y.Prec())
	assert.True(t, x.Equals(y, tolerance(-200)))

	// Set keeps the receiver's precision
	z := New(128).Set(y)
	assert.Equal(t, uint(128), z.Prec())
}

func TestMix(t *testing.T) {
	z := NewFromFloat64(1, 2, testPrec)
	c := new(big.Float).SetPrec(testPrec).SetFloat64(0.5)
	mixed, _ := z.Mix(c).Float64()
	assert.Equal(t, 2.0, mixed)
}
