// Copyright (c) 2023 Colin McRae

package numfield

import (
	"fmt"
	"math/big"

	"github.com/predrag3141/arithinv/polymodp"
)

// PrimeIdeal is a non-zero prime ideal P of the ring of integers of a number
// field. It lies over the rational prime p and is given as (p, generator).
// Local computations at P happen in an order whose index in the ring of
// integers is prime to p.
type PrimeIdeal struct {
	field         *Field
	order         *localOrder
	index         int
	e             int
	residueDegree int

	// P = (p, generator)
	generator *Element

	// tauOverP has valuation -1 at P and is integral at the other
	// primes over p
	tauOverP *Element

	// complement is a unit at P with valuation at least e_Q at each other
	// prime Q over p
	complement *Element

	residueField *polymodp.ResidueField

	// residueMap[j] is the residue of the j-th basis element of the order,
	// as coefficients in the residue field
	residueMap [][]uint64
}

// Field returns the number field containing P
func (pi *PrimeIdeal) Field() *Field {
	return pi.field
}

// ResidueCharacteristic returns the rational prime p under P
func (pi *PrimeIdeal) ResidueCharacteristic() *big.Int {
	return new(big.Int).Set(pi.order.p)
}

// RamificationIndex returns e, the valuation of p at P
func (pi *PrimeIdeal) RamificationIndex() int {
	return pi.e
}

// ResidueDegree returns f, the degree of the residue field over F_p
func (pi *PrimeIdeal) ResidueDegree() int {
	return pi.residueDegree
}

// AbsoluteNorm returns p^f, the size of the residue field
func (pi *PrimeIdeal) AbsoluteNorm() *big.Int {
	return pi.residueField.Order()
}

// Generators returns p and an element g with P = (p, g)
func (pi *PrimeIdeal) Generators() (*big.Int, *Element) {
	return pi.ResidueCharacteristic(), pi.generator
}

// Equal reports whether P and Q are the same prime of the same field
func (pi *PrimeIdeal) Equal(q *PrimeIdeal) bool {
	return pi.field.Equal(q.field) && pi.order.p.Cmp(q.order.p) == 0 && pi.index == q.index
}

// Less orders primes by residue characteristic, then by position in the
// decomposition of p
func (pi *PrimeIdeal) Less(q *PrimeIdeal) bool {
	if c := pi.order.p.Cmp(q.order.p); c != 0 {
		return c < 0
	}
	return pi.index < q.index
}

// String formats P by generators, e.g. "(2, z + 1)", or "(p)" if p is prime in K
func (pi *PrimeIdeal) String() string {
	if pi.e == 1 && pi.ResidueDegree() == pi.field.degree {
		return fmt.Sprintf("(%s)", pi.order.p.String())
	}
	return fmt.Sprintf("(%s, %s)", pi.order.p.String(), pi.generator.String())
}

// Valuation returns the exponent of P in the factorization of the principal
// fractional ideal (x), for x != 0
func (pi *PrimeIdeal) Valuation(x *Element) (int, error) {
	if x.IsZero() {
		return 0, fmt.Errorf("PrimeIdeal.Valuation: valuation of zero is infinite")
	}
	pi.field.checkSame(x.field, "PrimeIdeal.Valuation")

	// p^k x is integral at every prime over p
	k := pi.order.denominatorValuation(x)
	scaled := x.scaleRat(new(big.Rat).SetInt(new(big.Int).Exp(pi.order.p, big.NewInt(int64(k)), nil)))
	retVal := -k * pi.e

	// scaled is in P iff scaled tau/p is integral at p
	for i := 0; i < maxValuation; i++ {
		next := scaled.Mul(pi.tauOverP)
		if !pi.order.isPIntegral(next) {
			return retVal, nil
		}
		scaled = next
		retVal++
	}
	return 0, fmt.Errorf("PrimeIdeal.Valuation: valuation of %s exceeds %d", x.String(), maxValuation)
}

// Residue returns the image of x in the residue field F_p[x]/(g). x must have
// non-negative valuation at P.
func (pi *PrimeIdeal) Residue(x *Element) (*polymodp.Poly, error) {
	pi.field.checkSame(x.field, "PrimeIdeal.Residue")
	if x.IsZero() {
		return polymodp.New(pi.order.p.Uint64()), nil
	}
	v, err := pi.Valuation(x)
	if err != nil {
		return nil, fmt.Errorf("PrimeIdeal.Residue: %q", err.Error())
	}
	if v < 0 {
		return nil, fmt.Errorf("PrimeIdeal.Residue: %s has valuation %d < 0 at %s", x.String(), v, pi.String())
	}
	if v > 0 {
		return polymodp.New(pi.order.p.Uint64()), nil
	}

	// Multiplying by a power of the complement clears denominators at the
	// other primes over p without changing the valuation at P
	k := 0
	decomposition, err := pi.field.decomposition(pi.order.p)
	if err != nil {
		return nil, fmt.Errorf("PrimeIdeal.Residue: %w", err)
	}
	for _, q := range decomposition.primes {
		if q.index == pi.index {
			continue
		}
		vq, err := q.Valuation(x)
		if err != nil {
			return nil, fmt.Errorf("PrimeIdeal.Residue: %q", err.Error())
		}
		if vq < 0 {
			if needed := (-vq + q.e - 1) / q.e; needed > k {
				k = needed
			}
		}
	}
	complementPower, _ := pi.complement.Pow(k) // k >= 0
	image := pi.reduce(x.Mul(complementPower))
	if k == 0 {
		return image, nil
	}
	inverse, err := pi.residueField.Inv(pi.reduce(complementPower))
	if err != nil {
		return nil, fmt.Errorf("PrimeIdeal.Residue: %q", err.Error())
	}
	return pi.residueField.Mul(image, inverse), nil
}

// reduce returns the residue of the p-integral x
func (pi *PrimeIdeal) reduce(x *Element) *polymodp.Poly {
	p := pi.order.p.Uint64()
	retVal := polymodp.New(p)
	for j, c := range pi.order.reduce(x) {
		if c != 0 {
			retVal = retVal.Add(polymodp.New(p, pi.residueMap[j]...).Scale(c))
		}
	}
	return pi.residueField.Reduce(retVal)
}

// QuadraticCharacter returns 1 if the unit x at P is a square mod P and -1 if
// it is not. x must have valuation 0 at P.
func (pi *PrimeIdeal) QuadraticCharacter(x *Element) (int, error) {
	residue, err := pi.Residue(x)
	if err != nil {
		return 0, fmt.Errorf("PrimeIdeal.QuadraticCharacter: %q", err.Error())
	}
	retVal := pi.residueField.QuadraticCharacter(residue)
	if retVal == 0 {
		return 0, fmt.Errorf("PrimeIdeal.QuadraticCharacter: %s is not a unit at %s", x.String(), pi.String())
	}
	return retVal, nil
}

func (f *Field) checkSame(g *Field, caller string) {
	if !f.Equal(g) {
		panic(fmt.Sprintf("%s: elements of different fields %s and %s", caller, f, g))
	}
}
