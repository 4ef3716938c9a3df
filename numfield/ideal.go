// Copyright (c) 2023 Colin McRae

package numfield

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/predrag3141/arithinv/util"
)

// IdealFactor is a prime ideal and its exponent in a factorization
type IdealFactor struct {
	Prime    *PrimeIdeal
	Exponent int
}

// Ideal is a non-zero fractional ideal, held as its factorization into prime
// ideals
type Ideal struct {
	field   *Field
	factors []IdealFactor
}

// NewIdeal returns the product of the given prime powers. Repeated primes are
// combined and zero exponents dropped.
func NewIdeal(f *Field, factors []IdealFactor) *Ideal {
	var combined []IdealFactor
	for _, factor := range factors {
		f.checkSame(factor.Prime.field, "NewIdeal")
		found := false
		for i := range combined {
			if combined[i].Prime.Equal(factor.Prime) {
				combined[i].Exponent += factor.Exponent
				found = true
				break
			}
		}
		if !found {
			combined = append(combined, factor)
		}
	}
	retVal := &Ideal{field: f}
	for _, factor := range combined {
		if factor.Exponent != 0 {
			retVal.factors = append(retVal.factors, factor)
		}
	}
	sort.Slice(retVal.factors, func(i, j int) bool {
		return retVal.factors[i].Prime.Less(retVal.factors[j].Prime)
	})
	return retVal
}

// Factors returns the factorization of id, sorted by prime
func (id *Ideal) Factors() []IdealFactor {
	return append([]IdealFactor{}, id.factors...)
}

// Primes returns the primes dividing id, sorted
func (id *Ideal) Primes() []*PrimeIdeal {
	retVal := make([]*PrimeIdeal, len(id.factors))
	for i, factor := range id.factors {
		retVal[i] = factor.Prime
	}
	return retVal
}

// IsOne reports whether id is the unit ideal
func (id *Ideal) IsOne() bool {
	return len(id.factors) == 0
}

// Mul returns the product of id and other
func (id *Ideal) Mul(other *Ideal) *Ideal {
	return NewIdeal(id.field, append(id.Factors(), other.factors...))
}

// AbsoluteNorm returns the product of N(P)^e over the factors P^e of id
func (id *Ideal) AbsoluteNorm() *big.Rat {
	retVal := big.NewRat(1, 1)
	for _, factor := range id.factors {
		norm := new(big.Rat).SetInt(factor.Prime.AbsoluteNorm())
		exponent := factor.Exponent
		if exponent < 0 {
			norm.Inv(norm)
			exponent = -exponent
		}
		for i := 0; i < exponent; i++ {
			retVal.Mul(retVal, norm)
		}
	}
	return retVal
}

// String formats id as a product of prime powers, or "(1)"
func (id *Ideal) String() string {
	if id.IsOne() {
		return "(1)"
	}
	terms := make([]string, len(id.factors))
	for i, factor := range id.factors {
		if factor.Exponent == 1 {
			terms[i] = factor.Prime.String()
		} else {
			terms[i] = fmt.Sprintf("%s^%d", factor.Prime.String(), factor.Exponent)
		}
	}
	return strings.Join(terms, " * ")
}

// DenominatorIdeal returns the integral ideal D with (x) = N/D for coprime
// integral ideals N and D: the product of P^(-v_P(x)) over primes P with
// v_P(x) < 0. The denominator ideal of 0 is (1).
func (x *Element) DenominatorIdeal() (*Ideal, error) {
	if x.IsZero() {
		return NewIdeal(x.field, nil), nil
	}
	var factors []IdealFactor
	for _, p := range x.denominatorPrimes() {
		primes, err := x.field.Decompose(p)
		if err != nil {
			return nil, fmt.Errorf("Element.DenominatorIdeal: %w", err)
		}
		for _, prime := range primes {
			v, err := prime.Valuation(x)
			if err != nil {
				return nil, fmt.Errorf("Element.DenominatorIdeal: %w", err)
			}
			if v < 0 {
				factors = append(factors, IdealFactor{Prime: prime, Exponent: -v})
			}
		}
	}
	return NewIdeal(x.field, factors), nil
}

// Factor returns the factorization of the principal fractional ideal (x), for x != 0
func (x *Element) Factor() (*Ideal, error) {
	if x.IsZero() {
		return nil, fmt.Errorf("Element.Factor: the zero ideal has no factorization")
	}
	var factors []IdealFactor
	for _, p := range util.SortedUnique(x.supportPrimes()) {
		primes, err := x.field.Decompose(p)
		if err != nil {
			return nil, fmt.Errorf("Element.Factor: %w", err)
		}
		for _, prime := range primes {
			v, err := prime.Valuation(x)
			if err != nil {
				return nil, fmt.Errorf("Element.Factor: %w", err)
			}
			factors = append(factors, IdealFactor{Prime: prime, Exponent: v})
		}
	}
	return NewIdeal(x.field, factors), nil
}

// denominatorPrimes returns the rational primes p at which x might fail to be
// integral: those dividing a denominator of x in the basis of powers of the
// integral generator c z. Z[c z] is in the ring of integers, so x is integral
// at every other prime.
func (x *Element) denominatorPrimes() []*big.Int {
	denominators := make([]*big.Rat, 0, x.field.degree)
	scalePower := big.NewInt(1)
	for _, c := range x.Coordinates() {
		// x = sum c_i z^i = sum (c_i / scale^i) (scale z)^i
		denominators = append(denominators, new(big.Rat).Quo(c, new(big.Rat).SetInt(scalePower)))
		scalePower = new(big.Int).Mul(scalePower, x.field.scale)
	}
	return util.PrimeFactors(util.LcmDenominators(denominators))
}
