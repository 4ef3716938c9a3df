// Copyright (c) 2023 Colin McRae

package numfield

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/predrag3141/arithinv/polymodp"
)

// primeDecomposition holds the primes of a field over one rational prime
type primeDecomposition struct {
	order  *localOrder
	primes []*PrimeIdeal
}

// Decompose returns the prime ideals over the rational prime p. When some
// order Z[eta] is p-maximal, they are in the order of the irreducible factors
// of the minimal polynomial of eta mod p (by degree, then coefficients), and
// otherwise by residue degree and then ramification index. It returns
// ErrUnresolvedPlace if p is not a prime that fits in a uint64.
func (f *Field) Decompose(p *big.Int) ([]*PrimeIdeal, error) {
	decomposition, err := f.decomposition(p)
	if err != nil {
		return nil, fmt.Errorf("Field.Decompose: %w", err)
	}
	return append([]*PrimeIdeal{}, decomposition.primes...), nil
}

func (f *Field) decomposition(p *big.Int) (*primeDecomposition, error) {
	key := p.String()
	f.mu.Lock()
	cached, ok := f.decompositions[key]
	f.mu.Unlock()
	if ok {
		return cached, nil
	}
	if p.Sign() <= 0 || !p.IsUint64() || !p.ProbablyPrime(20) {
		return nil, fmt.Errorf("%s is not a prime below 2^64: %w", key, ErrUnresolvedPlace)
	}
	retVal, err := f.decompose(p)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.decompositions[key] = retVal
	f.mu.Unlock()
	return retVal, nil
}

// decompose finds the primes over p with Kummer-Dedekind in Z[c z] when
// Dedekind's criterion allows it, and otherwise in a p-maximal order from
// Round 2, either through a monogenic generator of it or, when p is a common
// index divisor, by splitting it mod p into local components
func (f *Field) decompose(p *big.Int) (*primeDecomposition, error) {
	pUint := p.Uint64()
	theta := f.integralGenerator()
	minP := integralCoeffs(theta.CharPoly())
	minPMod := polymodp.NewFromBigInts(pUint, minP)
	factors, err := minPMod.Factor()
	if err != nil {
		return nil, fmt.Errorf("decompose: %q", err.Error())
	}
	if dedekindObstruction(pUint, minP, minPMod, factors) == nil {
		return kummerDedekind(f, p, theta, minP, factors)
	}
	equationOrder, err := powerLattice(theta)
	if err != nil {
		return nil, fmt.Errorf("decompose: %q", err.Error())
	}
	maximal, err := pMaximalOrder(equationOrder, pUint)
	if err != nil {
		return nil, fmt.Errorf("decompose: %w", err)
	}
	if eta := monogenicGenerator(maximal, pUint); eta != nil {
		minP := integralCoeffs(eta.CharPoly())
		factors, err := polymodp.NewFromBigInts(pUint, minP).Factor()
		if err != nil {
			return nil, fmt.Errorf("decompose: %q", err.Error())
		}
		return kummerDedekind(f, p, eta, minP, factors)
	}
	return splitDecomposition(f, p, maximal)
}

// kummerDedekind returns the primes (p, g(eta)) for the irreducible factors g
// of minP mod p. Z[eta] must be p-maximal and minP the minimal polynomial of
// eta.
func kummerDedekind(
	f *Field, p *big.Int, eta *Element, minP []*big.Int, factors []polymodp.Factor,
) (*primeDecomposition, error) {
	basis, err := powerLattice(eta)
	if err != nil {
		return nil, fmt.Errorf("kummerDedekind: %q", err.Error())
	}
	pUint := p.Uint64()
	minPMod := polymodp.NewFromBigInts(pUint, minP)
	pInverse := new(big.Rat).SetFrac(big.NewInt(1), p)
	retVal := &primeDecomposition{order: &localOrder{p: p, basis: basis}}
	for i, factor := range factors {
		// F/g and F/g^e mod p, lifted and evaluated at eta
		tau := minPMod.Quo(factor.Poly)
		complement := minPMod
		for j := 0; j < factor.Multiplicity; j++ {
			complement = complement.Quo(factor.Poly)
		}
		residueField, err := polymodp.NewResidueField(factor.Poly)
		if err != nil {
			return nil, fmt.Errorf("kummerDedekind: %q", err.Error())
		}

		// eta^j maps to t^j mod g
		residueMap := make([][]uint64, f.degree)
		for j := range residueMap {
			power := polymodp.X(pUint).PowMod(big.NewInt(int64(j)), factor.Poly)
			residueMap[j] = coefficients(power, factor.Poly.Degree())
		}
		retVal.primes = append(retVal.primes, &PrimeIdeal{
			field:         f,
			order:         retVal.order,
			index:         i,
			e:             factor.Multiplicity,
			residueDegree: factor.Poly.Degree(),
			generator:     liftToField(eta, factor.Poly),
			tauOverP:      liftToField(eta, tau).scaleRat(pInverse),
			complement:    liftToField(eta, complement),
			residueField:  residueField,
			residueMap:    residueMap,
		})
	}
	return retVal, nil
}

// localComponent is the part of O/pO belonging to one prime P over p
type localComponent struct {
	prime      *PrimeIdeal
	idempotent []uint64   // 1 mod P and 0 mod the other primes
	ideal      [][]uint64 // basis of P/pO
}

// splitDecomposition returns the primes over p from the primitive
// idempotents of O/pO for the p-maximal order with basis o. The prime of an
// idempotent e is the set of x with ex nilpotent.
func splitDecomposition(f *Field, p *big.Int, o *lattice) (*primeDecomposition, error) {
	pUint := p.Uint64()
	algebra, err := residueAlgebra(o, pUint)
	if err != nil {
		return nil, fmt.Errorf("splitDecomposition: %q", err.Error())
	}
	idempotents, err := algebra.Idempotents()
	if err != nil {
		return nil, fmt.Errorf("splitDecomposition: %q", err.Error())
	}
	order := &localOrder{p: p, basis: o}
	pInverse := new(big.Rat).SetFrac(big.NewInt(1), p)
	n := algebra.Dim()
	components := make([]*localComponent, 0, len(idempotents))
	for _, idempotent := range idempotents {
		ideal := algebra.MaximalIdeal(idempotent)
		degree := n - len(ideal)
		if degree == 0 {
			return nil, fmt.Errorf("splitDecomposition: idempotent %v is nilpotent", idempotent)
		}

		// tau annihilates P/pO, so tau/p is in P^-1 and not integral
		annihilator := algebra.Annihilator(ideal)
		if len(annihilator) == 0 {
			return nil, fmt.Errorf("splitDecomposition: P/pO has no annihilator")
		}
		residueField, residueMap, err := residueMapOf(algebra, ideal, degree)
		if err != nil {
			return nil, fmt.Errorf("splitDecomposition: %q", err.Error())
		}
		components = append(components, &localComponent{
			prime: &PrimeIdeal{
				field:         f,
				order:         order,
				e:             algebra.IdealDim(idempotent) / degree,
				residueDegree: degree,
				tauOverP:      o.lift(annihilator[0], pUint).scaleRat(pInverse),
				complement:    o.lift(idempotent, pUint),
				residueField:  residueField,
				residueMap:    residueMap,
			},
			idempotent: idempotent,
			ideal:      ideal,
		})
	}
	sort.SliceStable(components, func(i, j int) bool {
		a, b := components[i].prime, components[j].prime
		if a.residueDegree != b.residueDegree {
			return a.residueDegree < b.residueDegree
		}
		return a.e < b.e
	})
	retVal := &primeDecomposition{order: order, primes: make([]*PrimeIdeal, len(components))}
	for i, component := range components {
		component.prime.index = i
		retVal.primes[i] = component.prime
	}
	for _, component := range components {
		generator, err := twoElementGenerator(algebra, o, component, retVal.primes)
		if err != nil {
			return nil, fmt.Errorf("splitDecomposition: %w", err)
		}
		component.prime.generator = generator
	}
	return retVal, nil
}

// residueMapOf returns F_p[t]/(g) for the minimal polynomial g of a residue
// class alpha generating O/P, and the residues of the basis elements of O as
// coefficients of 1, alpha, ..., alpha^(degree-1)
func residueMapOf(algebra *polymodp.Algebra, ideal [][]uint64, degree int) (*polymodp.ResidueField, [][]uint64, error) {
	p := algebra.Characteristic()
	n := algebra.Dim()
	rows, pivots := polymodp.Echelon(p, ideal)
	isPivot := make([]bool, n)
	for _, c := range pivots {
		isPivot[c] = true
	}

	// Coordinates mod P are the non-pivot coordinates after clearing the
	// pivots with the echelon rows
	quotient := func(u []uint64) []uint64 {
		for r, c := range pivots {
			if u[c] != 0 {
				u = algebra.Sub(u, algebra.Scale(u[c], rows[r]))
			}
		}
		retVal := make([]uint64, 0, degree)
		for j, x := range u {
			if !isPivot[j] {
				retVal = append(retVal, x)
			}
		}
		return retVal
	}
	for _, subset := range subsets(n, maxOrderCandidates) {
		alpha := make([]uint64, n)
		for _, i := range subset {
			alpha = algebra.Add(alpha, algebra.Basis(i))
		}
		powers := make([][]uint64, degree)
		power := algebra.One()
		for k := range powers {
			powers[k] = quotient(power)
			power = algebra.Mul(power, alpha)
		}
		if polymodp.Rank(p, powers) < degree {
			continue
		}
		c, _ := polymodp.Solve(p, powers, quotient(power)) // powers span O/P
		coeffs := make([]uint64, degree+1)
		for k, x := range c {
			coeffs[k] = (p - x) % p
		}
		coeffs[degree] = 1
		residueField, err := polymodp.NewResidueField(polymodp.New(p, coeffs...))
		if err != nil {
			return nil, nil, fmt.Errorf("residueMapOf: %q", err.Error())
		}
		retVal := make([][]uint64, n)
		for j := range retVal {
			retVal[j], _ = polymodp.Solve(p, powers, quotient(algebra.Basis(j)))
		}
		return residueField, retVal, nil
	}
	return nil, nil, fmt.Errorf("residueMapOf: no generator of the residue field among %d candidates", maxOrderCandidates)
}

// twoElementGenerator returns pi with P = (p, pi): v_P(pi) = 1, or >= 1 if P
// is unramified, and v_Q(pi) = 0 at the other primes Q over p. Candidates are
// 1 - e plus e times small sums of the basis of P/pO, for the idempotent e
// of P, so they are units at every other Q.
func twoElementGenerator(
	algebra *polymodp.Algebra, o *lattice, component *localComponent, primes []*PrimeIdeal,
) (*Element, error) {
	p := algebra.Characteristic()
	prime := component.prime
	isGenerator := func(x *Element) bool {
		if x.IsZero() {
			return false
		}
		for _, q := range primes {
			v, err := q.Valuation(x)
			switch {
			case err != nil:
				return false
			case q != prime && v != 0:
				return false
			case q == prime && (v < 1 || (v > 1 && q.e > 1)):
				return false
			}
		}
		return true
	}
	base := algebra.Sub(algebra.One(), component.idempotent)
	candidates := append([][]int{nil}, subsets(len(component.ideal), maxOrderCandidates)...)
	for _, subset := range candidates {
		candidate := base
		for _, i := range subset {
			candidate = algebra.Add(candidate, algebra.Mul(component.idempotent, component.ideal[i]))
		}
		if x := o.lift(candidate, p); isGenerator(x) {
			return x, nil
		}
	}
	return nil, fmt.Errorf(
		"twoElementGenerator: no generator of a prime over %d among %d candidates: %w",
		p, len(candidates), ErrUnresolvedPlace,
	)
}

// coefficients returns the coefficients of 1, t, ..., t^(length-1) in f
func coefficients(f *polymodp.Poly, length int) []uint64 {
	retVal := make([]uint64, length)
	for i := range retVal {
		retVal[i] = f.Coeff(i)
	}
	return retVal
}
