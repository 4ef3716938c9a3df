// Copyright (c) 2023 Colin McRae

// Package poly represents univariate polynomials with rational coefficients.
// A Poly is never modified after it is created; every operation returns a new
// Poly.
package poly

import (
	"fmt"
	"math/big"

	"github.com/predrag3141/arithinv/util"
)

// Poly is a polynomial over Q. coeffs[i] is the coefficient of x^i, and the
// leading coefficient is non-zero. The zero polynomial has no coefficients.
type Poly struct {
	coeffs []*big.Rat
}

// New returns the polynomial with coefficients coeffs, constant term first.
// The coefficients are deep-copied.
func New(coeffs ...*big.Rat) *Poly {
	retVal := &Poly{coeffs: make([]*big.Rat, len(coeffs))}
	for i, c := range coeffs {
		retVal.coeffs[i] = new(big.Rat).Set(c)
	}
	return retVal.trim()
}

// NewFromInt64s returns the polynomial with integer coefficients, constant term first
func NewFromInt64s(coeffs ...int64) *Poly {
	retVal := &Poly{coeffs: make([]*big.Rat, len(coeffs))}
	for i, c := range coeffs {
		retVal.coeffs[i] = big.NewRat(c, 1)
	}
	return retVal.trim()
}

// NewFromInts returns the polynomial with integer coefficients, constant term first
func NewFromInts(coeffs []*big.Int) *Poly {
	retVal := &Poly{coeffs: make([]*big.Rat, len(coeffs))}
	for i, c := range coeffs {
		retVal.coeffs[i] = new(big.Rat).SetInt(c)
	}
	return retVal.trim()
}

// Zero returns the zero polynomial
func Zero() *Poly {
	return &Poly{}
}

// Constant returns the constant polynomial c
func Constant(c *big.Rat) *Poly {
	return New(c)
}

// X returns the polynomial x
func X() *Poly {
	return NewFromInt64s(0, 1)
}

// Degree returns the degree of p, or -1 if p is zero
func (p *Poly) Degree() int {
	return len(p.coeffs) - 1
}

// IsZero reports whether p is the zero polynomial
func (p *Poly) IsZero() bool {
	return len(p.coeffs) == 0
}

// Coeff returns a copy of the coefficient of x^i, which is 0 for i > Degree()
func (p *Poly) Coeff(i int) *big.Rat {
	if i < 0 || i >= len(p.coeffs) {
		return new(big.Rat)
	}
	return new(big.Rat).Set(p.coeffs[i])
}

// Coeffs returns copies of the coefficients of p, constant term first
func (p *Poly) Coeffs() []*big.Rat {
	retVal := make([]*big.Rat, len(p.coeffs))
	for i, c := range p.coeffs {
		retVal[i] = new(big.Rat).Set(c)
	}
	return retVal
}

// LeadingCoeff returns a copy of the leading coefficient of p, or 0 if p is zero
func (p *Poly) LeadingCoeff() *big.Rat {
	return p.Coeff(p.Degree())
}

// IsMonic reports whether the leading coefficient of p is 1
func (p *Poly) IsMonic() bool {
	return !p.IsZero() && p.coeffs[len(p.coeffs)-1].Cmp(big.NewRat(1, 1)) == 0
}

// IsIntegral reports whether every coefficient of p is an integer
func (p *Poly) IsIntegral() bool {
	for _, c := range p.coeffs {
		if !c.IsInt() {
			return false
		}
	}
	return true
}

// Equal reports whether p and q have the same coefficients
func (p *Poly) Equal(q *Poly) bool {
	if len(p.coeffs) != len(q.coeffs) {
		return false
	}
	for i := range p.coeffs {
		if p.coeffs[i].Cmp(q.coeffs[i]) != 0 {
			return false
		}
	}
	return true
}

// Add returns p + q
func (p *Poly) Add(q *Poly) *Poly {
	n := len(p.coeffs)
	if len(q.coeffs) > n {
		n = len(q.coeffs)
	}
	retVal := &Poly{coeffs: make([]*big.Rat, n)}
	for i := 0; i < n; i++ {
		retVal.coeffs[i] = new(big.Rat).Add(p.Coeff(i), q.Coeff(i))
	}
	return retVal.trim()
}

// Sub returns p - q
func (p *Poly) Sub(q *Poly) *Poly {
	return p.Add(q.Neg())
}

// Neg returns -p
func (p *Poly) Neg() *Poly {
	retVal := &Poly{coeffs: make([]*big.Rat, len(p.coeffs))}
	for i, c := range p.coeffs {
		retVal.coeffs[i] = new(big.Rat).Neg(c)
	}
	return retVal
}

// Scale returns cp
func (p *Poly) Scale(c *big.Rat) *Poly {
	retVal := &Poly{coeffs: make([]*big.Rat, len(p.coeffs))}
	for i, pc := range p.coeffs {
		retVal.coeffs[i] = new(big.Rat).Mul(pc, c)
	}
	return retVal.trim()
}

// Mul returns pq
func (p *Poly) Mul(q *Poly) *Poly {
	if p.IsZero() || q.IsZero() {
		return Zero()
	}
	retVal := &Poly{coeffs: make([]*big.Rat, len(p.coeffs)+len(q.coeffs)-1)}
	for i := range retVal.coeffs {
		retVal.coeffs[i] = new(big.Rat)
	}
	term := new(big.Rat)
	for i, pc := range p.coeffs {
		if pc.Sign() == 0 {
			continue
		}
		for j, qc := range q.coeffs {
			retVal.coeffs[i+j].Add(retVal.coeffs[i+j], term.Mul(pc, qc))
		}
	}
	return retVal.trim()
}

// Pow returns p^n for n >= 0
func (p *Poly) Pow(n int) *Poly {
	retVal := NewFromInt64s(1)
	base := p
	for n > 0 {
		if n&1 == 1 {
			retVal = retVal.Mul(base)
		}
		n >>= 1
		if n > 0 {
			base = base.Mul(base)
		}
	}
	return retVal
}

// DivMod returns the quotient and remainder of p divided by q, or an error
// if q is zero.
func (p *Poly) DivMod(q *Poly) (*Poly, *Poly, error) {
	if q.IsZero() {
		return nil, nil, fmt.Errorf("Poly.DivMod: division by the zero polynomial")
	}
	remainder := &Poly{coeffs: p.Coeffs()}
	if p.Degree() < q.Degree() {
		return Zero(), remainder, nil
	}
	quotient := &Poly{coeffs: make([]*big.Rat, p.Degree()-q.Degree()+1)}
	for i := range quotient.coeffs {
		quotient.coeffs[i] = new(big.Rat)
	}
	leadInverse := new(big.Rat).Inv(q.coeffs[len(q.coeffs)-1])
	term := new(big.Rat)
	for i := p.Degree(); i >= q.Degree(); i-- {
		c := new(big.Rat).Mul(remainder.coeffs[i], leadInverse)
		if c.Sign() == 0 {
			continue
		}
		shift := i - q.Degree()
		quotient.coeffs[shift] = c
		for j, qc := range q.coeffs {
			remainder.coeffs[shift+j].Sub(remainder.coeffs[shift+j], term.Mul(c, qc))
		}
	}
	return quotient.trim(), remainder.trim(), nil
}

// Mod returns the remainder of p divided by the non-zero q
func (p *Poly) Mod(q *Poly) (*Poly, error) {
	_, remainder, err := p.DivMod(q)
	if err != nil {
		return nil, fmt.Errorf("Poly.Mod: %q", err.Error())
	}
	return remainder, nil
}

// Monic returns p divided by its leading coefficient. The zero polynomial
// is returned unchanged.
func (p *Poly) Monic() *Poly {
	if p.IsZero() {
		return Zero()
	}
	return p.Scale(new(big.Rat).Inv(p.coeffs[len(p.coeffs)-1]))
}

// GCD returns the monic greatest common divisor of p and q. GCD(0, 0) = 0.
func GCD(p, q *Poly) *Poly {
	a, b := p, q
	for !b.IsZero() {
		r, _ := a.Mod(b) // b is non-zero
		a, b = b, r
	}
	return a.Monic()
}

// ExtendedGCD returns the monic gcd d of p and q, and s, t with sp + tq = d.
// For p = q = 0 all three are zero.
func ExtendedGCD(p, q *Poly) (d, s, t *Poly) {
	r0, r1 := p, q
	s0, s1 := NewFromInt64s(1), Zero()
	t0, t1 := Zero(), NewFromInt64s(1)
	for !r1.IsZero() {
		quotient, remainder, _ := r0.DivMod(r1) // r1 is non-zero
		r0, r1 = r1, remainder
		s0, s1 = s1, s0.Sub(quotient.Mul(s1))
		t0, t1 = t1, t0.Sub(quotient.Mul(t1))
	}
	if r0.IsZero() {
		return Zero(), Zero(), Zero()
	}
	inverse := new(big.Rat).Inv(r0.coeffs[len(r0.coeffs)-1])
	return r0.Scale(inverse), s0.Scale(inverse), t0.Scale(inverse)
}

// Derivative returns dp/dx
func (p *Poly) Derivative() *Poly {
	if len(p.coeffs) <= 1 {
		return Zero()
	}
	retVal := &Poly{coeffs: make([]*big.Rat, len(p.coeffs)-1)}
	for i := 1; i < len(p.coeffs); i++ {
		retVal.coeffs[i-1] = new(big.Rat).Mul(p.coeffs[i], big.NewRat(int64(i), 1))
	}
	return retVal.trim()
}

// Compose returns p(q(x))
func (p *Poly) Compose(q *Poly) *Poly {
	retVal := Zero()
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		retVal = retVal.Mul(q).Add(Constant(p.coeffs[i]))
	}
	return retVal
}

// Eval returns p(x)
func (p *Poly) Eval(x *big.Rat) *big.Rat {
	retVal := new(big.Rat)
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		retVal.Mul(retVal, x)
		retVal.Add(retVal, p.coeffs[i])
	}
	return retVal
}

// Content returns the positive rational c such that p/c has coprime
// integer coefficients, along with those coefficients. The sign of the
// leading coefficient of p is kept in the integer coefficients. The content
// of the zero polynomial is 0.
func (p *Poly) Content() (*big.Rat, []*big.Int) {
	if p.IsZero() {
		return new(big.Rat), nil
	}
	lcm := util.LcmDenominators(p.coeffs)
	integral := make([]*big.Int, len(p.coeffs))
	gcd := new(big.Int)
	for i, c := range p.coeffs {
		scaled := new(big.Rat).Mul(c, new(big.Rat).SetInt(lcm))
		integral[i] = new(big.Int).Set(scaled.Num())
		gcd.GCD(nil, nil, gcd, new(big.Int).Abs(integral[i]))
	}
	for _, c := range integral {
		c.Quo(c, gcd)
	}
	return new(big.Rat).SetFrac(gcd, lcm), integral
}

// Resultant returns the resultant of p and q. Both must be non-zero.
func Resultant(p, q *Poly) (*big.Rat, error) {
	if p.IsZero() || q.IsZero() {
		return nil, fmt.Errorf("Resultant: zero polynomial")
	}
	retVal := big.NewRat(1, 1)
	a, b := p, q
	for {
		degA, degB := a.Degree(), b.Degree()
		if degB == 0 {
			// Res(a, c) = c^deg(a)
			c := b.coeffs[0]
			for i := 0; i < degA; i++ {
				retVal.Mul(retVal, c)
			}
			return retVal, nil
		}
		if degA == 0 {
			c := a.coeffs[0]
			for i := 0; i < degB; i++ {
				retVal.Mul(retVal, c)
			}
			return retVal, nil
		}
		r, _ := a.Mod(b) // b is non-zero
		if r.IsZero() {
			return new(big.Rat), nil
		}

		// Res(a, b) = (-1)^(deg a deg b) lc(b)^(deg a - deg r) Res(b, r)
		if degA%2 == 1 && degB%2 == 1 {
			retVal.Neg(retVal)
		}
		lc := b.coeffs[degB]
		for i := 0; i < degA-r.Degree(); i++ {
			retVal.Mul(retVal, lc)
		}
		a, b = b, r
	}
}

// Discriminant returns the discriminant of p, which must have degree at least 1:
// (-1)^(n(n-1)/2) Res(p, p') / lc(p).
func (p *Poly) Discriminant() (*big.Rat, error) {
	n := p.Degree()
	if n < 1 {
		return nil, fmt.Errorf("Poly.Discriminant: degree %d < 1", n)
	}
	if n == 1 {
		return big.NewRat(1, 1), nil
	}
	res, err := Resultant(p, p.Derivative())
	if err != nil {
		return nil, fmt.Errorf("Poly.Discriminant: %q", err.Error())
	}
	retVal := res.Quo(res, p.coeffs[n])
	if (n*(n-1)/2)%2 == 1 {
		retVal.Neg(retVal)
	}
	return retVal, nil
}

// IsSquarefree reports whether p has no repeated factors
func (p *Poly) IsSquarefree() bool {
	return GCD(p, p.Derivative()).Degree() <= 0
}

func (p *Poly) trim() *Poly {
	n := len(p.coeffs)
	for n > 0 && p.coeffs[n-1].Sign() == 0 {
		n--
	}
	p.coeffs = p.coeffs[:n]
	return p
}
