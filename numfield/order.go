// Copyright (c) 2023 Colin McRae

package numfield

import (
	"fmt"
	"math/big"

	"github.com/predrag3141/arithinv/bigmatrix"
	"github.com/predrag3141/arithinv/poly"
	"github.com/predrag3141/arithinv/polymodp"
	"github.com/predrag3141/arithinv/util"
)

const (
	// maxOrderCandidates bounds the number of small elements tried in each
	// search for a generator
	maxOrderCandidates = 64

	// maxRoundTwoSteps bounds the enlargements of an order at one prime
	maxRoundTwoSteps = 64

	// maxValuation bounds the loop in valuation, as a guard against
	// malformed input
	maxValuation = 1 << 16
)

// lattice is a full-rank Z-submodule of a field, given by a basis
type lattice struct {
	basis []*Element

	// toBasis converts power-basis coordinates to coordinates in basis
	toBasis *bigmatrix.RatMatrix
}

func newLattice(basis []*Element) (*lattice, error) {
	n := len(basis)
	m := bigmatrix.NewRatMatrix(n)
	for j, b := range basis {
		for i, c := range b.Coordinates() {
			_ = m.Set(i, j, c) // indices are in range
		}
	}
	inverse, err := m.Inverse()
	if err != nil {
		return nil, fmt.Errorf("newLattice: basis is singular: %q", err.Error())
	}
	return &lattice{basis: basis, toBasis: inverse}, nil
}

// powerLattice returns the lattice with basis 1, eta, ..., eta^(n-1)
func powerLattice(eta *Element) (*lattice, error) {
	n := eta.field.degree
	basis := make([]*Element, n)
	basis[0] = eta.field.FromInt64(1)
	for j := 1; j < n; j++ {
		basis[j] = basis[j-1].Mul(eta)
	}
	retVal, err := newLattice(basis)
	if err != nil {
		return nil, fmt.Errorf("powerLattice: %s does not generate the field: %q", eta.String(), err.Error())
	}
	return retVal, nil
}

// coordinates returns the coordinates of x in the basis of l
func (l *lattice) coordinates(x *Element) []*big.Rat {
	retVal, _ := l.toBasis.MulVector(x.Coordinates()) // dimensions match
	return retVal
}

// reduce returns the coordinates of x mod p, or an error if x is not
// p-integral in the basis of l
func (l *lattice) reduce(x *Element, p uint64) ([]uint64, error) {
	coordinates := l.coordinates(x)
	retVal := make([]uint64, len(coordinates))
	for i, c := range coordinates {
		r, err := polymodp.ReduceRat(p, c)
		if err != nil {
			return nil, fmt.Errorf("lattice.reduce: %q", err.Error())
		}
		retVal[i] = r
	}
	return retVal, nil
}

// lift returns the element with coordinates v, read in (-p/2, p/2]
func (l *lattice) lift(v []uint64, p uint64) *Element {
	retVal := l.basis[0].field.FromInt64(0)
	bigP := new(big.Int).SetUint64(p)
	for i, c := range v {
		if c == 0 {
			continue
		}
		coeff := new(big.Int).SetUint64(c)
		if c > p/2 {
			coeff.Sub(coeff, bigP)
		}
		retVal = retVal.Add(l.basis[i].scaleRat(new(big.Rat).SetInt(coeff)))
	}
	return retVal
}

// span returns the lattice spanned by lifts of vectors and by p times the
// basis of l. The basis lifts the reduced echelon rows of vectors and adds
// p b_j for each non-pivot column j.
func (l *lattice) span(vectors [][]uint64, p uint64) (*lattice, error) {
	rows, pivots := polymodp.Echelon(p, vectors)
	isPivot := make([]bool, len(l.basis))
	for _, c := range pivots {
		isPivot[c] = true
	}
	basis := make([]*Element, 0, len(l.basis))
	for _, row := range rows {
		basis = append(basis, l.lift(row, p))
	}
	pRat := new(big.Rat).SetInt(new(big.Int).SetUint64(p))
	for j, b := range l.basis {
		if !isPivot[j] {
			basis = append(basis, b.scaleRat(pRat))
		}
	}
	return newLattice(basis)
}

// residueAlgebra returns O/pO for the order O with basis l
func residueAlgebra(l *lattice, p uint64) (*polymodp.Algebra, error) {
	n := len(l.basis)
	table := make([][][]uint64, n)
	for i := range table {
		table[i] = make([][]uint64, n)
		for j := range table[i] {
			if j < i {
				table[i][j] = table[j][i]
				continue
			}
			product, err := l.reduce(l.basis[i].Mul(l.basis[j]), p)
			if err != nil {
				return nil, fmt.Errorf("residueAlgebra: basis is not an order at %d: %q", p, err.Error())
			}
			table[i][j] = product
		}
	}
	one, err := l.reduce(l.basis[0].field.FromInt64(1), p)
	if err != nil {
		return nil, fmt.Errorf("residueAlgebra: %q", err.Error())
	}
	return polymodp.NewAlgebra(p, table, one)
}

// pMaximalOrder returns an order containing the order o whose index in the
// ring of integers is prime to p. This is Round 2: o is replaced by the ring
// of multipliers of its p-radical until the two coincide.
func pMaximalOrder(o *lattice, p uint64) (*lattice, error) {
	for step := 0; step < maxRoundTwoSteps; step++ {
		algebra, err := residueAlgebra(o, p)
		if err != nil {
			return nil, fmt.Errorf("pMaximalOrder: %q", err.Error())
		}
		radical, err := o.span(algebra.Radical(), p)
		if err != nil {
			return nil, fmt.Errorf("pMaximalOrder: %q", err.Error())
		}

		// U/pO is the kernel of x -> (x r mod p radical) for r in the
		// radical, and the ring of multipliers is U/p
		columns := make([][]uint64, len(o.basis))
		for k, omega := range o.basis {
			for _, r := range radical.basis {
				coords, err := radical.reduce(omega.Mul(r), p)
				if err != nil {
					return nil, fmt.Errorf("pMaximalOrder: %q", err.Error())
				}
				columns[k] = append(columns[k], coords...)
			}
		}
		multipliers := polymodp.Kernel(p, columns)
		if len(multipliers) == 0 {
			return o, nil
		}
		u, err := o.span(multipliers, p)
		if err != nil {
			return nil, fmt.Errorf("pMaximalOrder: %q", err.Error())
		}
		pInverse := new(big.Rat).SetFrac(big.NewInt(1), new(big.Int).SetUint64(p))
		basis := make([]*Element, len(u.basis))
		for i, b := range u.basis {
			basis[i] = b.scaleRat(pInverse)
		}
		if o, err = newLattice(basis); err != nil {
			return nil, fmt.Errorf("pMaximalOrder: %q", err.Error())
		}
	}
	return nil, fmt.Errorf("pMaximalOrder: no %d-maximal order after %d steps: %w", p, maxRoundTwoSteps, ErrUnresolvedPlace)
}

// maximalOrder returns the ring of integers, enlarging Z[c z] at each prime
// whose square divides its discriminant. Primes that the factorization of
// the discriminant does not reach leave a suborder of finite index.
func (f *Field) maximalOrder() (*lattice, error) {
	retVal, err := powerLattice(f.integralGenerator())
	if err != nil {
		return nil, fmt.Errorf("Field.maximalOrder: %q", err.Error())
	}
	discriminant, err := poly.NewFromInts(f.integralPolynomial).Discriminant()
	if err != nil {
		return nil, fmt.Errorf("Field.maximalOrder: %q", err.Error())
	}
	for _, pe := range util.Factor(discriminant.Num()) {
		if pe.Exponent < 2 || !pe.Prime.IsUint64() {
			continue
		}
		if retVal, err = pMaximalOrder(retVal, pe.Prime.Uint64()); err != nil {
			return nil, fmt.Errorf("Field.maximalOrder: %w", err)
		}
	}
	return retVal, nil
}

// monogenicGenerator returns a sum of basis elements of the p-maximal order
// o whose powers 1, eta, ..., eta^(n-1) are a basis of o mod p, so that
// Z[eta] is p-maximal, or nil if none of the candidates is
func monogenicGenerator(o *lattice, p uint64) *Element {
	n := len(o.basis)
	for _, subset := range subsets(n, maxOrderCandidates) {
		eta := o.basis[0].field.FromInt64(0)
		for _, i := range subset {
			eta = eta.Add(o.basis[i])
		}
		powers := make([][]uint64, n)
		power := eta.field.FromInt64(1)
		integral := true
		for j := range powers {
			coords, err := o.reduce(power, p)
			if err != nil {
				integral = false
				break
			}
			powers[j] = coords
			power = power.Mul(eta)
		}
		if integral && polymodp.Rank(p, powers) == n {
			return eta
		}
	}
	return nil
}

// subsets returns up to limit non-empty subsets of {0, ..., n-1}, by size
// and then lexicographically
func subsets(n, limit int) [][]int {
	var retVal [][]int
	var extend func(subset []int, next, size int)
	extend = func(subset []int, next, size int) {
		if len(retVal) >= limit {
			return
		}
		if len(subset) == size {
			retVal = append(retVal, append([]int{}, subset...))
			return
		}
		for i := next; i < n; i++ {
			extend(append(subset, i), i+1, size)
		}
	}
	for size := 1; size <= n && len(retVal) < limit; size++ {
		extend(nil, 0, size)
	}
	return retVal
}

// dedekindObstruction applies Dedekind's criterion to the monic integral F at
// p. With F = prod g_i^e_i mod p, g = prod g_i, h = F/g mod p and
// r = (lift(g) lift(h) - F)/p, Z[x]/(F) is p-maximal iff gcd(r, g, h) = 1 mod p.
// It returns nil in that case, and otherwise F/gcd(r, g, h) mod p.
func dedekindObstruction(p uint64, minP []*big.Int, minPMod *polymodp.Poly, factors []polymodp.Factor) *polymodp.Poly {
	g := polymodp.One(p)
	for _, factor := range factors {
		g = g.Mul(factor.Poly)
	}
	h := minPMod.Monic().Quo(g)

	// r = (lift(g) lift(h) - F)/p, computed over Z
	bigP := new(big.Int).SetUint64(p)
	product := liftToZ(g).Mul(liftToZ(h))
	rPoly := product.Sub(poly.NewFromInts(minP)).Scale(new(big.Rat).SetFrac(big.NewInt(1), bigP))
	r := polymodp.NewFromBigInts(p, integralCoeffs(rPoly))

	d := polymodp.GCD(polymodp.GCD(r, g), h)
	if d.Degree() == 0 {
		return nil
	}
	return minPMod.Monic().Quo(d)
}

// liftToZ lifts a polynomial over F_p to Z[x] with coefficients in [0, p)
func liftToZ(f *polymodp.Poly) *poly.Poly {
	coeffs := f.Coeffs()
	retVal := make([]*big.Int, len(coeffs))
	for i, c := range coeffs {
		retVal[i] = new(big.Int).SetUint64(c)
	}
	return poly.NewFromInts(retVal)
}

// liftToField returns lift(f)(eta)
func liftToField(eta *Element, f *polymodp.Poly) *Element {
	return evalPoly(liftToZ(f), eta)
}

// integralCoeffs returns the coefficients of a polynomial with integer
// coefficients
func integralCoeffs(p *poly.Poly) []*big.Int {
	coeffs := p.Coeffs()
	retVal := make([]*big.Int, len(coeffs))
	for i, c := range coeffs {
		retVal[i] = new(big.Int).Set(c.Num())
	}
	return retVal
}

// localOrder is an order, given by a basis, whose index in the ring of
// integers is prime to p
type localOrder struct {
	p     *big.Int
	basis *lattice
}

// denominatorValuation returns the largest k with p^k dividing the
// denominator of some coordinate of x. x is p-integral iff it is 0.
func (o *localOrder) denominatorValuation(x *Element) int {
	retVal := 0
	for _, c := range o.basis.coordinates(x) {
		if c.Sign() == 0 {
			continue
		}
		if v := util.PAdicValuation(c.Denom(), o.p); v > retVal {
			retVal = v
		}
	}
	return retVal
}

// isPIntegral reports whether x is integral at every prime over p
func (o *localOrder) isPIntegral(x *Element) bool {
	return o.denominatorValuation(x) == 0
}

// reduce returns the coordinates mod p of the p-integral x
func (o *localOrder) reduce(x *Element) []uint64 {
	retVal, _ := o.basis.reduce(x, o.p.Uint64()) // x is p-integral
	return retVal
}
