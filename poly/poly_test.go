// Copyright (c) 2023 Colin McRae

package poly

import (
	"math/big"
	"testing"

	"github.com/predrag3141/arithinv/bignumber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndString(t *testing.T) {
	for _, tc := range []struct {
		input    string
		expected string
	}{
		{input: "x^2 + 2*x + 5/4", expected: "x^2 + 2*x + 5/4"},
		{input: "a^3-a+1", expected: "x^3 - x + 1"},
		{input: "  -x^2 + x^2 + 3 ", expected: "3"},
		{input: "1/2*t^4 - 0.5*t", expected: "1/2*x^4 - 1/2*x"},
		{input: "7", expected: "7"},
		{input: "x - x", expected: "0"},
		{input: "-x", expected: "-x"},
		{input: "2x^2", expected: "2*x^2"},
	} {
		p, err := Parse(tc.input)
		require.NoErrorf(t, err, "Parse(%q)", tc.input)
		assert.Equalf(t, tc.expected, p.String(), "Parse(%q)", tc.input)
	}
	assert.Equal(t, "z^2 + 1", MustParse("x^2+1").Format("z"))

	for _, input := range []string{"", "x^2 +", "x + y", "x^-1", "3*", "x^a", "++x"} {
		_, err := Parse(input)
		assert.Errorf(t, err, "Parse(%q)", input)
	}
	assert.Panics(t, func() { MustParse("x +") })
}

func TestArithmetic(t *testing.T) {
	p := MustParse("x^2 - 2")
	q := MustParse("x + 1")

	assert.Equal(t, "x^2 + x - 1", p.Add(q).String())
	assert.Equal(t, "x^2 - x - 3", p.Sub(q).String())
	assert.Equal(t, "x^3 + x^2 - 2*x - 2", p.Mul(q).String())
	assert.Equal(t, "x^4 - 4*x^2 + 4", p.Pow(2).String())
	assert.Equal(t, "1", p.Pow(0).String())
	assert.Equal(t, "3/2*x^2 - 3", p.Scale(big.NewRat(3, 2)).String())
	assert.Equal(t, "2*x", p.Derivative().String())
	assert.Equal(t, "x^2 + 2*x - 1", p.Compose(q).String())
	assert.Equal(t, "7", p.Eval(big.NewRat(3, 1)).RatString())
	assert.True(t, p.Sub(p).IsZero())
	assert.Equal(t, -1, Zero().Degree())

	quotient, remainder, err := p.DivMod(q)
	require.NoError(t, err)
	assert.Equal(t, "x - 1", quotient.String())
	assert.Equal(t, "-1", remainder.String())
	assert.True(t, quotient.Mul(q).Add(remainder).Equal(p))

	_, _, err = p.DivMod(Zero())
	assert.Error(t, err)

	// p is not modified by any of the above
	assert.Equal(t, "x^2 - 2", p.String())
}

func TestGCD(t *testing.T) {
	p := MustParse("x^3 - x")
	q := MustParse("2*x^2 + 2*x")
	assert.Equal(t, "x^2 + x", GCD(p, q).String())
	assert.Equal(t, "1", GCD(MustParse("x^2 + 1"), MustParse("x - 1")).String())
	assert.True(t, GCD(Zero(), Zero()).IsZero())
	assert.True(t, MustParse("x^2 + 1").IsSquarefree())
	assert.False(t, MustParse("x^3 - x^2 - x + 1").IsSquarefree())

	a, b := MustParse("x^3 - 2"), MustParse("x^2 + x + 1")
	d, s, u := ExtendedGCD(a, b)
	assert.Equal(t, "1", d.String())
	assert.True(t, s.Mul(a).Add(u.Mul(b)).Equal(d))
}

func TestContent(t *testing.T) {
	content, integral := MustParse("3/2*x^2 - 9/4").Content()
	assert.Equal(t, "3/4", content.RatString())
	assert.Equal(t, []string{"-3", "0", "2"}, bigIntStrings(integral))

	content, integral = MustParse("-4*x + 6").Content()
	assert.Equal(t, "2", content.RatString())
	assert.Equal(t, []string{"3", "-2"}, bigIntStrings(integral))
}

func TestDiscriminantAndResultant(t *testing.T) {
	for _, tc := range []struct {
		p        string
		expected string
	}{
		{p: "x^2 + 1", expected: "-4"},
		{p: "x^2 + x + 1", expected: "-3"},
		{p: "x^3 - x + 1", expected: "-23"},
		{p: "x^3 - 2", expected: "-108"},
		{p: "2*x^2 + 1", expected: "-8"},
		{p: "x - 5", expected: "1"},
	} {
		d, err := MustParse(tc.p).Discriminant()
		require.NoError(t, err)
		assert.Equalf(t, tc.expected, d.RatString(), "Discriminant(%s)", tc.p)
	}
	_, err := NewFromInt64s(3).Discriminant()
	assert.Error(t, err)

	// Res(x^2 - 2, x - 1) = p(1) = -1
	r, err := Resultant(MustParse("x^2 - 2"), MustParse("x - 1"))
	require.NoError(t, err)
	assert.Equal(t, "-1", r.RatString())

	// Polynomials with a common root have resultant 0
	r, err = Resultant(MustParse("x^2 - 1"), MustParse("x^2 + x"))
	require.NoError(t, err)
	assert.Equal(t, "0", r.RatString())
}

func TestSignature(t *testing.T) {
	for _, tc := range []struct {
		p string
		r int
		c int
	}{
		{p: "x^2 + 1", r: 0, c: 1},
		{p: "x^2 - 2", r: 2, c: 0},
		{p: "x^3 - x + 1", r: 1, c: 1},
		{p: "x^4 - 10*x^2 + 1", r: 4, c: 0},
		{p: "x^4 + 1", r: 0, c: 2},
		{p: "x^5 - x - 1", r: 1, c: 2},
	} {
		r, c := MustParse(tc.p).Signature()
		assert.Equalf(t, tc.r, r, "real roots of %s", tc.p)
		assert.Equalf(t, tc.c, c, "complex pairs of %s", tc.p)
	}
}

func TestRoots(t *testing.T) {
	const prec = 200
	tolerance := bignumber.PowerOfTwo(-190, prec)

	// x^3 - x + 1 has one real root near -1.3247 and a pair near 0.66 +- 0.56i
	p := MustParse("x^3 - x + 1")
	roots, err := p.Roots(prec)
	require.NoError(t, err)
	require.Len(t, roots, 3)
	assert.True(t, roots[0].IsReal())
	assert.InDelta(t, -1.324717957244746, real(roots[0].Complex128()), 1e-14)
	assert.InDelta(t, 0.662358978622373, real(roots[1].Complex128()), 1e-14)
	assert.InDelta(t, 0.562279512062301, imag(roots[1].Complex128()), 1e-14)
	assert.True(t, roots[2].Equals(bignumber.New(prec).Conj(roots[1]), tolerance))
	for i, root := range roots {
		assert.Equal(t, uint(prec), root.Prec())
		assert.Truef(t, p.EvalComplex(root).IsSmall(-185), "root %d", i)
	}

	// Real roots are sorted
	roots, err = MustParse("x^4 - 10*x^2 + 1").Roots(prec)
	require.NoError(t, err)
	for i := 1; i < len(roots); i++ {
		assert.True(t, roots[i].IsReal())
		assert.Equal(t, -1, roots[i-1].Real().Cmp(roots[i].Real()))
	}

	// A rational polynomial with non-integral coefficients
	roots, err = MustParse("x^2 + 2*x + 5/4").Roots(prec)
	require.NoError(t, err)
	expected := bignumber.NewFromFloat64(-1, 0.5, prec)
	assert.True(t, roots[0].Equals(expected, tolerance))

	_, err = MustParse("x^2 - 2*x + 1").Roots(prec)
	assert.Error(t, err)
	_, err = NewFromInt64s(2).Roots(prec)
	assert.Error(t, err)
}

func TestRefineRoot(t *testing.T) {
	const prec = 1000
	p := MustParse("x^2 - 2")
	root, err := p.RefineRoot(bignumber.NewFromFloat64(1.4, 0, 64), prec)
	require.NoError(t, err)
	sqrt2 := new(big.Float).SetPrec(prec).SetInt64(2)
	sqrt2.Sqrt(sqrt2)
	diff := new(big.Float).Sub(root.Real(), sqrt2)
	assert.True(t, diff.Sign() == 0 || diff.MantExp(nil) < -990)
}

func bigIntStrings(xs []*big.Int) []string {
	retVal := make([]string, len(xs))
	for i, x := range xs {
		retVal[i] = x.String()
	}
	return retVal
}
