// Copyright (c) 2023 Colin McRae

// Package util holds integer helpers shared by the polynomial and number
// field packages: factoring rational integers, p-adic valuations and sorted
// sets of primes.
package util

import (
	"math/big"
	"sort"
)

const (
	// Trial division handles every prime below this bound before
	// Pollard's rho takes over
	trialDivisionBound = 1 << 14

	// primalityRounds is the number of Miller-Rabin rounds passed to
	// big.Int.ProbablyPrime, on top of its Baillie-PSW test
	primalityRounds = 20
)

var smallPrimes = sieve(trialDivisionBound)

// PrimeFactors returns the distinct prime factors of |n| in increasing order.
// PrimeFactors(0) and PrimeFactors(±1) are empty.
func PrimeFactors(n *big.Int) []*big.Int {
	factorization := Factor(n)
	retVal := make([]*big.Int, 0, len(factorization))
	for _, pe := range factorization {
		retVal = append(retVal, pe.Prime)
	}
	return retVal
}

// PrimePower is a prime and its exponent in a factorization
type PrimePower struct {
	Prime    *big.Int
	Exponent int
}

// Factor returns the factorization of |n| into prime powers, sorted by prime.
// Factor(0) and Factor(±1) are empty.
func Factor(n *big.Int) []PrimePower {
	remaining := new(big.Int).Abs(n)
	if remaining.Cmp(big.NewInt(1)) <= 0 {
		return nil
	}
	exponents := map[string]*PrimePower{}
	add := func(p *big.Int, e int) {
		key := p.String()
		if pe, ok := exponents[key]; ok {
			pe.Exponent += e
			return
		}
		exponents[key] = &PrimePower{Prime: new(big.Int).Set(p), Exponent: e}
	}

	// Trial division by small primes
	for _, p := range smallPrimes {
		bigP := big.NewInt(p)
		if e := divideOut(remaining, bigP); e > 0 {
			add(bigP, e)
		}
		if remaining.Cmp(big.NewInt(1)) == 0 {
			break
		}
		if new(big.Int).Mul(bigP, bigP).Cmp(remaining) > 0 {
			break
		}
	}

	// What remains has only large prime factors
	var stack []*big.Int
	if remaining.Cmp(big.NewInt(1)) > 0 {
		stack = append(stack, new(big.Int).Set(remaining))
	}
	for len(stack) > 0 {
		m := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if m.ProbablyPrime(primalityRounds) {
			add(m, 1)
			continue
		}
		d := pollardRho(m)
		stack = append(stack, d, new(big.Int).Quo(m, d))
	}

	retVal := make([]PrimePower, 0, len(exponents))
	for _, pe := range exponents {
		retVal = append(retVal, *pe)
	}
	sort.Slice(retVal, func(i, j int) bool { return retVal[i].Prime.Cmp(retVal[j].Prime) < 0 })
	return retVal
}

// PAdicValuation returns the largest e such that p^e divides n. The valuation
// of 0 is reported as -1, since it is infinite.
func PAdicValuation(n, p *big.Int) int {
	if n.Sign() == 0 {
		return -1
	}
	return divideOut(new(big.Int).Set(n), p)
}

// RatPAdicValuation returns the p-adic valuation of the non-zero rational x
func RatPAdicValuation(x *big.Rat, p *big.Int) int {
	return PAdicValuation(x.Num(), p) - PAdicValuation(x.Denom(), p)
}

// LcmDenominators returns the least common multiple of the denominators of xs
func LcmDenominators(xs []*big.Rat) *big.Int {
	retVal := big.NewInt(1)
	gcd := new(big.Int)
	for _, x := range xs {
		d := x.Denom()
		gcd.GCD(nil, nil, retVal, d)
		retVal.Mul(retVal, new(big.Int).Quo(d, gcd))
	}
	return retVal
}

// SortedUnique returns the distinct entries of xs in increasing order. xs is
// not modified.
func SortedUnique(xs []*big.Int) []*big.Int {
	sorted := make([]*big.Int, len(xs))
	copy(sorted, xs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Cmp(sorted[j]) < 0 })
	retVal := make([]*big.Int, 0, len(sorted))
	for _, x := range sorted {
		if len(retVal) > 0 && retVal[len(retVal)-1].Cmp(x) == 0 {
			continue
		}
		retVal = append(retVal, new(big.Int).Set(x))
	}
	return retVal
}

// divideOut divides p out of n as many times as possible, modifying n, and
// returns the number of times p divided n.
func divideOut(n, p *big.Int) int {
	e := 0
	q, r := new(big.Int), new(big.Int)
	for n.Sign() != 0 {
		q.QuoRem(n, p, r)
		if r.Sign() != 0 {
			break
		}
		n.Set(q)
		e++
	}
	return e
}

// pollardRho returns a non-trivial factor of the composite n, which has no
// prime factors below trialDivisionBound.
func pollardRho(n *big.Int) *big.Int {
	one := big.NewInt(1)
	for c := int64(1); ; c++ {
		x, y, d := big.NewInt(2), big.NewInt(2), big.NewInt(1)
		bigC := big.NewInt(c)
		f := func(v *big.Int) {
			v.Mul(v, v)
			v.Add(v, bigC)
			v.Mod(v, n)
		}
		diff := new(big.Int)
		for d.Cmp(one) == 0 {
			f(x)
			f(y)
			f(y)
			diff.Sub(x, y)
			diff.Abs(diff)
			d.GCD(nil, nil, diff, n)
		}
		if d.Cmp(n) != 0 {
			return d
		}
	}
}

// sieve returns the primes below bound
func sieve(bound int) []int64 {
	composite := make([]bool, bound)
	var retVal []int64
	for i := 2; i < bound; i++ {
		if composite[i] {
			continue
		}
		retVal = append(retVal, int64(i))
		for j := i * i; j < bound; j += i {
			composite[j] = true
		}
	}
	return retVal
}
