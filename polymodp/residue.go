// Copyright (c) 2023 Colin McRae

package polymodp

import (
	"fmt"
	"math/big"
)

// ResidueField is the finite field F_p[x]/(g) for a monic irreducible g
type ResidueField struct {
	modulus *Poly
}

// NewResidueField returns F_p[x]/(g). g must be irreducible over F_p.
func NewResidueField(g *Poly) (*ResidueField, error) {
	if g.Degree() < 1 {
		return nil, fmt.Errorf("NewResidueField: modulus %s has degree < 1", g.String())
	}
	if !g.IsIrreducible() {
		return nil, fmt.Errorf("NewResidueField: modulus %s is reducible", g.String())
	}
	return &ResidueField{modulus: g.Monic()}, nil
}

// Degree returns the degree f of the field over F_p
func (k *ResidueField) Degree() int {
	return k.modulus.Degree()
}

// Characteristic returns p
func (k *ResidueField) Characteristic() uint64 {
	return k.modulus.p
}

// Order returns p^f, the number of elements of the field
func (k *ResidueField) Order() *big.Int {
	return new(big.Int).Exp(new(big.Int).SetUint64(k.modulus.p), big.NewInt(int64(k.Degree())), nil)
}

// Reduce returns the image of a in the field
func (k *ResidueField) Reduce(a *Poly) *Poly {
	return a.Mod(k.modulus)
}

// Mul returns ab in the field
func (k *ResidueField) Mul(a, b *Poly) *Poly {
	return a.Mul(b).Mod(k.modulus)
}

// Pow returns a^e in the field, for e >= 0
func (k *ResidueField) Pow(a *Poly, e *big.Int) *Poly {
	return a.PowMod(e, k.modulus)
}

// Inv returns the inverse of the non-zero a, or an error if a is zero in the field
func (k *ResidueField) Inv(a *Poly) (*Poly, error) {
	reduced := k.Reduce(a)
	if reduced.IsZero() {
		return nil, fmt.Errorf("ResidueField.Inv: inverse of zero")
	}
	_, s, _ := ExtendedGCD(reduced, k.modulus)
	return s.Mod(k.modulus), nil
}

// QuadraticCharacter returns 1 if a is a non-zero square in the field, -1 if
// it is not a square and 0 if it is zero. In characteristic 2 every element
// is a square.
func (k *ResidueField) QuadraticCharacter(a *Poly) int {
	reduced := k.Reduce(a)
	if reduced.IsZero() {
		return 0
	}
	if k.modulus.p == 2 {
		return 1
	}

	// Euler's criterion: a^((q - 1)/2) = ±1
	e := k.Order()
	e.Sub(e, big.NewInt(1))
	e.Rsh(e, 1)
	if k.Pow(reduced, e).IsOne() {
		return 1
	}
	return -1
}
