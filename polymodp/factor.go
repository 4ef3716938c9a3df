// Copyright (c) 2023 Colin McRae

package polymodp

import (
	"fmt"
	"math/big"
	"math/rand"
	"sort"
)

// factorSeed seeds the random splitting in equal-degree factorization, so
// Factor is deterministic.
const factorSeed = 0x5eed

// Factor is a monic irreducible factor and its multiplicity
type Factor struct {
	Poly         *Poly
	Multiplicity int
}

// Factor returns the factorization of the monic associate of the non-zero f
// into monic irreducible factors with multiplicities, ordered by degree and
// then by coefficients.
func (f *Poly) Factor() ([]Factor, error) {
	if f.IsZero() {
		return nil, fmt.Errorf("Poly.Factor: cannot factor the zero polynomial")
	}
	rng := rand.New(rand.NewSource(factorSeed))
	var retVal []Factor
	for _, sf := range f.Monic().SquarefreeFactorization() {
		for _, dd := range sf.Poly.DistinctDegreeFactorization() {
			for _, irreducible := range dd.Poly.EqualDegreeFactorization(dd.Multiplicity, rng) {
				retVal = append(retVal, Factor{Poly: irreducible, Multiplicity: sf.Multiplicity})
			}
		}
	}
	sort.Slice(retVal, func(i, j int) bool {
		return less(retVal[i].Poly, retVal[j].Poly)
	})
	return retVal, nil
}

// SquarefreeFactorization returns squarefree, pairwise coprime monic
// polynomials s_i with multiplicities m_i such that the monic f is the
// product of the s_i^m_i.
func (f *Poly) SquarefreeFactorization() []Factor {
	if f.Degree() < 1 {
		return nil
	}
	derivative := f.Derivative()
	if derivative.IsZero() {
		// f is a p-th power
		var retVal []Factor
		for _, factor := range f.pthRoot().SquarefreeFactorization() {
			factor.Multiplicity *= int(f.p)
			retVal = append(retVal, factor)
		}
		return retVal
	}

	var retVal []Factor
	c := GCD(f, derivative)
	w := f.Quo(c)
	for i := 1; w.Degree() > 0; i++ {
		y := GCD(w, c)
		z := w.Quo(y)
		if z.Degree() > 0 {
			retVal = append(retVal, Factor{Poly: z.Monic(), Multiplicity: i})
		}
		w = y
		c = c.Quo(y)
	}
	if c.Degree() > 0 {
		// What remains is a p-th power
		for _, factor := range c.pthRoot().SquarefreeFactorization() {
			factor.Multiplicity *= int(f.p)
			retVal = append(retVal, factor)
		}
	}
	return retVal
}

// DistinctDegreeFactorization splits the squarefree monic f into products of
// irreducible factors of equal degree. Each returned Factor holds such a
// product, with Multiplicity set to the degree of its irreducible factors.
func (f *Poly) DistinctDegreeFactorization() []Factor {
	var retVal []Factor
	x := X(f.p)
	remaining := f
	bigP := new(big.Int).SetUint64(f.p)
	h := x.Mod(remaining)
	for d := 1; remaining.Degree() >= 2*d; d++ {
		h = h.PowMod(bigP, remaining)
		g := GCD(h.Sub(x), remaining)
		if g.Degree() > 0 {
			retVal = append(retVal, Factor{Poly: g, Multiplicity: d})
			remaining = remaining.Quo(g)
			h = h.Mod(remaining)
		}
	}
	if remaining.Degree() > 0 {
		retVal = append(retVal, Factor{Poly: remaining.Monic(), Multiplicity: remaining.Degree()})
	}
	return retVal
}

// EqualDegreeFactorization splits the squarefree monic f, all of whose
// irreducible factors have degree d, into those factors (Cantor-Zassenhaus).
func (f *Poly) EqualDegreeFactorization(d int, rng *rand.Rand) []*Poly {
	if f.Degree() <= d {
		return []*Poly{f.Monic()}
	}
	for {
		a := f.random(rng)
		if a.Degree() < 1 {
			continue
		}
		if g := GCD(a, f); g.Degree() > 0 {
			return append(g.EqualDegreeFactorization(d, rng), f.Quo(g).EqualDegreeFactorization(d, rng)...)
		}
		var b *Poly
		if f.p == 2 {
			// Trace of a from F_(2^d) down to F_2
			b = a
			term := a
			for i := 1; i < d; i++ {
				term = term.Mul(term).Mod(f)
				b = b.Add(term)
			}
		} else {
			// a^((p^d - 1)/2) - 1
			e := new(big.Int).Exp(new(big.Int).SetUint64(f.p), big.NewInt(int64(d)), nil)
			e.Sub(e, big.NewInt(1))
			e.Rsh(e, 1)
			b = a.PowMod(e, f).Sub(One(f.p))
		}
		g := GCD(b, f)
		if g.Degree() > 0 && g.Degree() < f.Degree() {
			return append(g.EqualDegreeFactorization(d, rng), f.Quo(g).EqualDegreeFactorization(d, rng)...)
		}
	}
}

// IsIrreducible reports whether f is irreducible over F_p (Ben-Or)
func (f *Poly) IsIrreducible() bool {
	n := f.Degree()
	if n < 1 {
		return false
	}
	monic := f.Monic()
	x := X(f.p)
	bigP := new(big.Int).SetUint64(f.p)
	h := x.Mod(monic)
	for i := 1; i <= n/2; i++ {
		h = h.PowMod(bigP, monic)
		if GCD(h.Sub(x), monic).Degree() > 0 {
			return false
		}
	}
	return true
}

// pthRoot returns g with g^p = f, for f whose derivative is zero. Every
// element of F_p is its own p-th root, so g has the coefficients of x^(ip).
func (f *Poly) pthRoot() *Poly {
	retVal := &Poly{p: f.p, coeffs: make([]uint64, f.Degree()/int(f.p)+1)}
	for i := range retVal.coeffs {
		retVal.coeffs[i] = f.coeffs[i*int(f.p)]
	}
	return retVal.trim()
}

// random returns a uniformly random polynomial of degree below that of f
func (f *Poly) random(rng *rand.Rand) *Poly {
	retVal := &Poly{p: f.p, coeffs: make([]uint64, f.Degree())}
	for i := range retVal.coeffs {
		retVal.coeffs[i] = rng.Uint64() % f.p
	}
	return retVal.trim()
}

// less orders polynomials by degree, then by coefficients from the top down
func less(f, g *Poly) bool {
	if f.Degree() != g.Degree() {
		return f.Degree() < g.Degree()
	}
	for i := f.Degree(); i >= 0; i-- {
		if f.coeffs[i] != g.coeffs[i] {
			return f.coeffs[i] < g.coeffs[i]
		}
	}
	return false
}
