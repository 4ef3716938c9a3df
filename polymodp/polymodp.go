// Copyright (c) 2023 Colin McRae

// Package polymodp represents polynomials over the prime field F_p, for primes
// p that fit in a uint64. It supplies what the number field package needs at
// a prime: factoring a defining polynomial mod p and computing in the
// residue fields F_p[x]/(g).
package polymodp

import (
	"fmt"
	"math/big"
	"math/bits"
	"strconv"
	"strings"
)

// Poly is a polynomial over F_p. coeffs[i] is the coefficient of x^i, reduced
// mod p, and the leading coefficient is non-zero. The zero polynomial has no
// coefficients. A Poly is never modified after it is created.
type Poly struct {
	p      uint64
	coeffs []uint64
}

// New returns the polynomial over F_p with the given coefficients, constant
// term first, each reduced mod p. p must be prime.
func New(p uint64, coeffs ...uint64) *Poly {
	retVal := &Poly{p: p, coeffs: make([]uint64, len(coeffs))}
	for i, c := range coeffs {
		retVal.coeffs[i] = c % p
	}
	return retVal.trim()
}

// NewFromBigInts reduces integer coefficients, constant term first, mod p
func NewFromBigInts(p uint64, coeffs []*big.Int) *Poly {
	bigP := new(big.Int).SetUint64(p)
	reduced := new(big.Int)
	retVal := &Poly{p: p, coeffs: make([]uint64, len(coeffs))}
	for i, c := range coeffs {
		retVal.coeffs[i] = reduced.Mod(c, bigP).Uint64()
	}
	return retVal.trim()
}

// NewFromRats reduces rational coefficients mod p. It returns an error if p
// divides a denominator.
func NewFromRats(p uint64, coeffs []*big.Rat) (*Poly, error) {
	retVal := &Poly{p: p, coeffs: make([]uint64, len(coeffs))}
	for i, c := range coeffs {
		r, err := ReduceRat(p, c)
		if err != nil {
			return nil, fmt.Errorf("NewFromRats: %q", err.Error())
		}
		retVal.coeffs[i] = r
	}
	return retVal.trim(), nil
}

// X returns the polynomial x over F_p
func X(p uint64) *Poly {
	return New(p, 0, 1)
}

// One returns the constant polynomial 1 over F_p
func One(p uint64) *Poly {
	return New(p, 1)
}

// Characteristic returns p
func (f *Poly) Characteristic() uint64 {
	return f.p
}

// Degree returns the degree of f, or -1 if f is zero
func (f *Poly) Degree() int {
	return len(f.coeffs) - 1
}

// IsZero reports whether f is the zero polynomial
func (f *Poly) IsZero() bool {
	return len(f.coeffs) == 0
}

// IsOne reports whether f is the constant 1
func (f *Poly) IsOne() bool {
	return len(f.coeffs) == 1 && f.coeffs[0] == 1
}

// Coeff returns the coefficient of x^i
func (f *Poly) Coeff(i int) uint64 {
	if i < 0 || i >= len(f.coeffs) {
		return 0
	}
	return f.coeffs[i]
}

// Coeffs returns a copy of the coefficients of f, constant term first
func (f *Poly) Coeffs() []uint64 {
	return append([]uint64{}, f.coeffs...)
}

// LeadingCoeff returns the leading coefficient of f, or 0 if f is zero
func (f *Poly) LeadingCoeff() uint64 {
	return f.Coeff(f.Degree())
}

// Equal reports whether f and g are the same polynomial over the same field
func (f *Poly) Equal(g *Poly) bool {
	if f.p != g.p || len(f.coeffs) != len(g.coeffs) {
		return false
	}
	for i := range f.coeffs {
		if f.coeffs[i] != g.coeffs[i] {
			return false
		}
	}
	return true
}

// Add returns f + g
func (f *Poly) Add(g *Poly) *Poly {
	n := len(f.coeffs)
	if len(g.coeffs) > n {
		n = len(g.coeffs)
	}
	retVal := &Poly{p: f.p, coeffs: make([]uint64, n)}
	for i := range retVal.coeffs {
		retVal.coeffs[i] = modAdd(f.Coeff(i), g.Coeff(i), f.p)
	}
	return retVal.trim()
}

// Sub returns f - g
func (f *Poly) Sub(g *Poly) *Poly {
	n := len(f.coeffs)
	if len(g.coeffs) > n {
		n = len(g.coeffs)
	}
	retVal := &Poly{p: f.p, coeffs: make([]uint64, n)}
	for i := range retVal.coeffs {
		retVal.coeffs[i] = modSub(f.Coeff(i), g.Coeff(i), f.p)
	}
	return retVal.trim()
}

// Scale returns cf
func (f *Poly) Scale(c uint64) *Poly {
	retVal := &Poly{p: f.p, coeffs: make([]uint64, len(f.coeffs))}
	for i, fc := range f.coeffs {
		retVal.coeffs[i] = modMul(fc, c, f.p)
	}
	return retVal.trim()
}

// Mul returns fg
func (f *Poly) Mul(g *Poly) *Poly {
	if f.IsZero() || g.IsZero() {
		return &Poly{p: f.p}
	}
	retVal := &Poly{p: f.p, coeffs: make([]uint64, len(f.coeffs)+len(g.coeffs)-1)}
	for i, fc := range f.coeffs {
		if fc == 0 {
			continue
		}
		for j, gc := range g.coeffs {
			retVal.coeffs[i+j] = modAdd(retVal.coeffs[i+j], modMul(fc, gc, f.p), f.p)
		}
	}
	return retVal.trim()
}

// DivMod returns the quotient and remainder of f divided by g, or an error if
// g is zero.
func (f *Poly) DivMod(g *Poly) (*Poly, *Poly, error) {
	if g.IsZero() {
		return nil, nil, fmt.Errorf("Poly.DivMod: division by the zero polynomial")
	}
	remainder := &Poly{p: f.p, coeffs: f.Coeffs()}
	if f.Degree() < g.Degree() {
		return &Poly{p: f.p}, remainder, nil
	}
	quotient := &Poly{p: f.p, coeffs: make([]uint64, f.Degree()-g.Degree()+1)}
	leadInverse := modInv(g.LeadingCoeff(), f.p)
	for i := f.Degree(); i >= g.Degree(); i-- {
		c := modMul(remainder.coeffs[i], leadInverse, f.p)
		if c == 0 {
			continue
		}
		shift := i - g.Degree()
		quotient.coeffs[shift] = c
		for j, gc := range g.coeffs {
			remainder.coeffs[shift+j] = modSub(remainder.coeffs[shift+j], modMul(c, gc, f.p), f.p)
		}
	}
	return quotient.trim(), remainder.trim(), nil
}

// Mod returns the remainder of f divided by the non-zero g
func (f *Poly) Mod(g *Poly) *Poly {
	_, remainder, err := f.DivMod(g)
	if err != nil {
		panic(err)
	}
	return remainder
}

// Quo returns the quotient of f divided by the non-zero g
func (f *Poly) Quo(g *Poly) *Poly {
	quotient, _, err := f.DivMod(g)
	if err != nil {
		panic(err)
	}
	return quotient
}

// Monic returns f divided by its leading coefficient. Zero is returned unchanged.
func (f *Poly) Monic() *Poly {
	if f.IsZero() {
		return f
	}
	return f.Scale(modInv(f.LeadingCoeff(), f.p))
}

// Derivative returns df/dx
func (f *Poly) Derivative() *Poly {
	if len(f.coeffs) <= 1 {
		return &Poly{p: f.p}
	}
	retVal := &Poly{p: f.p, coeffs: make([]uint64, len(f.coeffs)-1)}
	for i := 1; i < len(f.coeffs); i++ {
		retVal.coeffs[i-1] = modMul(f.coeffs[i], uint64(i)%f.p, f.p)
	}
	return retVal.trim()
}

// Eval returns f(x)
func (f *Poly) Eval(x uint64) uint64 {
	retVal := uint64(0)
	for i := len(f.coeffs) - 1; i >= 0; i-- {
		retVal = modAdd(modMul(retVal, x, f.p), f.coeffs[i], f.p)
	}
	return retVal
}

// GCD returns the monic greatest common divisor of f and g
func GCD(f, g *Poly) *Poly {
	a, b := f, g
	for !b.IsZero() {
		a, b = b, a.Mod(b)
	}
	return a.Monic()
}

// ExtendedGCD returns the monic gcd d of f and g and s, t with sf + tg = d
func ExtendedGCD(f, g *Poly) (d, s, t *Poly) {
	p := f.p
	r0, r1 := f, g
	s0, s1 := One(p), &Poly{p: p}
	t0, t1 := &Poly{p: p}, One(p)
	for !r1.IsZero() {
		q, r, _ := r0.DivMod(r1) // r1 is non-zero
		r0, r1 = r1, r
		s0, s1 = s1, s0.Sub(q.Mul(s1))
		t0, t1 = t1, t0.Sub(q.Mul(t1))
	}
	if r0.IsZero() {
		return r0, s0, t0
	}
	inverse := modInv(r0.LeadingCoeff(), p)
	return r0.Scale(inverse), s0.Scale(inverse), t0.Scale(inverse)
}

// PowMod returns f^e mod m for e >= 0
func (f *Poly) PowMod(e *big.Int, m *Poly) *Poly {
	retVal := One(f.p).Mod(m)
	base := f.Mod(m)
	for i := e.BitLen() - 1; i >= 0; i-- {
		retVal = retVal.Mul(retVal).Mod(m)
		if e.Bit(i) == 1 {
			retVal = retVal.Mul(base).Mod(m)
		}
	}
	return retVal
}

// String formats f like "x^2 + 3*x + 1 (mod 5)"
func (f *Poly) String() string {
	if f.IsZero() {
		return fmt.Sprintf("0 (mod %d)", f.p)
	}
	var terms []string
	for i := len(f.coeffs) - 1; i >= 0; i-- {
		c := f.coeffs[i]
		if c == 0 {
			continue
		}
		var term string
		switch {
		case i == 0:
			term = strconv.FormatUint(c, 10)
		case c == 1:
			term = "x"
		default:
			term = strconv.FormatUint(c, 10) + "*x"
		}
		if i > 1 {
			term += "^" + strconv.Itoa(i)
		}
		terms = append(terms, term)
	}
	return fmt.Sprintf("%s (mod %d)", strings.Join(terms, " + "), f.p)
}

func (f *Poly) trim() *Poly {
	n := len(f.coeffs)
	for n > 0 && f.coeffs[n-1] == 0 {
		n--
	}
	f.coeffs = f.coeffs[:n]
	return f
}

func modAdd(a, b, p uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 || sum >= p {
		sum -= p
	}
	return sum
}

func modSub(a, b, p uint64) uint64 {
	if a >= b {
		return a - b
	}
	return a + (p - b)
}

func modMul(a, b, p uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi, lo, p)
	return rem
}

func modPow(a, e, p uint64) uint64 {
	retVal := uint64(1) % p
	base := a % p
	for e > 0 {
		if e&1 == 1 {
			retVal = modMul(retVal, base, p)
		}
		e >>= 1
		if e > 0 {
			base = modMul(base, base, p)
		}
	}
	return retVal
}

// modInv returns the inverse of the non-zero a mod the prime p
func modInv(a, p uint64) uint64 {
	if a%p == 0 {
		panic("polymodp: inverse of zero")
	}
	return modPow(a, p-2, p)
}
