// Copyright (c) 2023 Colin McRae

package util

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func intsToStrings(xs []*big.Int) []string {
	retVal := make([]string, len(xs))
	for i, x := range xs {
		retVal[i] = x.String()
	}
	return retVal
}

func TestFactor(t *testing.T) {
	for _, tc := range []struct {
		n        string
		expected []string
		exps     []int
	}{
		{n: "0", expected: []string{}, exps: []int{}},
		{n: "1", expected: []string{}, exps: []int{}},
		{n: "-12", expected: []string{"2", "3"}, exps: []int{2, 1}},
		{n: "1001", expected: []string{"7", "11", "13"}, exps: []int{1, 1, 1}},
		{n: "1024", expected: []string{"2"}, exps: []int{10}},

		// Products of primes above the trial division bound
		{n: "10000600009", expected: []string{"100003"}, exps: []int{2}},
		{n: "1000036000099", expected: []string{"1000003", "1000033"}, exps: []int{1, 1}},
		{n: "2305843009213693951", expected: []string{"2305843009213693951"}, exps: []int{1}},
	} {
		n, ok := new(big.Int).SetString(tc.n, 10)
		assert.True(t, ok)
		factorization := Factor(n)
		primes := make([]*big.Int, len(factorization))
		exps := make([]int, len(factorization))
		for i, pe := range factorization {
			primes[i] = pe.Prime
			exps[i] = pe.Exponent
		}
		if diff := cmp.Diff(tc.expected, intsToStrings(primes)); diff != "" {
			t.Errorf("Factor(%s) primes mismatch (-want +got):\n%s", tc.n, diff)
		}
		assert.Equal(t, tc.exps, exps)
		if diff := cmp.Diff(tc.expected, intsToStrings(PrimeFactors(n))); diff != "" {
			t.Errorf("PrimeFactors(%s) mismatch (-want +got):\n%s", tc.n, diff)
		}
	}
}

func TestPAdicValuation(t *testing.T) {
	assert.Equal(t, 3, PAdicValuation(big.NewInt(-24), big.NewInt(2)))
	assert.Equal(t, 0, PAdicValuation(big.NewInt(7), big.NewInt(2)))
	assert.Equal(t, -1, PAdicValuation(big.NewInt(0), big.NewInt(5)))
	assert.Equal(t, -2, RatPAdicValuation(big.NewRat(3, 50), big.NewInt(5)))
	assert.Equal(t, 1, RatPAdicValuation(big.NewRat(6, 5), big.NewInt(3)))
}

func TestLcmDenominators(t *testing.T) {
	lcm := LcmDenominators([]*big.Rat{big.NewRat(1, 4), big.NewRat(5, 6), big.NewRat(3, 1)})
	assert.Equal(t, "12", lcm.String())
	assert.Equal(t, "1", LcmDenominators(nil).String())
}

func TestSortedUnique(t *testing.T) {
	input := []*big.Int{big.NewInt(5), big.NewInt(2), big.NewInt(5), big.NewInt(3), big.NewInt(2)}
	actual := SortedUnique(input)
	if diff := cmp.Diff([]string{"2", "3", "5"}, intsToStrings(actual)); diff != "" {
		t.Errorf("SortedUnique mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "5", input[0].String())
	assert.Empty(t, SortedUnique(nil))
}
