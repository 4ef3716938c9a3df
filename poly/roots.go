// Copyright (c) 2023 Colin McRae

package poly

import (
	"fmt"
	"math"
	"math/big"
	"sort"

	"github.com/predrag3141/arithinv/bignumber"
)

const (
	// aberthPrec is the minimum precision of the simultaneous root search.
	// Roots are then refined individually by Newton's method.
	aberthPrec         = 128
	maxAberthIteration = 1000
	maxNewtonIteration = 200

	// newtonGuardBits is how many bits beyond the requested precision a
	// root is refined to before it is rounded
	newtonGuardBits = 16
)

// EvalComplex returns p(z) at the precision of z
func (p *Poly) EvalComplex(z *bignumber.Complex) *bignumber.Complex {
	prec := z.Prec()
	retVal := bignumber.New(prec)
	coefficient := bignumber.New(prec)
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		retVal.Mul(retVal, z)
		retVal.Add(retVal, coefficient.Set(bignumber.NewFromRat(p.coeffs[i], prec)))
	}
	return retVal
}

// SturmSequence returns the Sturm sequence p, p', -rem(p, p'), ... of p
func (p *Poly) SturmSequence() []*Poly {
	retVal := []*Poly{p, p.Derivative()}
	for !retVal[len(retVal)-1].IsZero() {
		previous, current := retVal[len(retVal)-2], retVal[len(retVal)-1]
		remainder, _ := previous.Mod(current) // current is non-zero
		retVal = append(retVal, remainder.Neg())
	}
	return retVal[:len(retVal)-1]
}

// CountRealRoots returns the number of distinct real roots of the non-zero p,
// from the sign changes of its Sturm sequence at -infinity and +infinity.
func (p *Poly) CountRealRoots() int {
	if p.Degree() < 1 {
		return 0
	}
	sequence := p.SturmSequence()
	signsAtNegInf := make([]int, len(sequence))
	signsAtPosInf := make([]int, len(sequence))
	for i, s := range sequence {
		lc := s.LeadingCoeff().Sign()
		signsAtPosInf[i] = lc
		if s.Degree()%2 == 1 {
			signsAtNegInf[i] = -lc
		} else {
			signsAtNegInf[i] = lc
		}
	}
	return signChanges(signsAtNegInf) - signChanges(signsAtPosInf)
}

// Signature returns the number r of real roots and c of pairs of complex
// conjugate roots of the squarefree p, so r + 2c = Degree().
func (p *Poly) Signature() (int, int) {
	r := p.CountRealRoots()
	return r, (p.Degree() - r) / 2
}

// Roots returns all complex roots of the squarefree p to precision prec. Real
// roots come first in increasing order, with imaginary parts exactly 0. Then
// come the other roots in conjugate pairs, each pair with the root in the upper
// half plane first, ordered by real part and then by imaginary part.
func (p *Poly) Roots(prec uint) ([]*bignumber.Complex, error) {
	n := p.Degree()
	if n < 1 {
		return nil, fmt.Errorf("Poly.Roots: degree %d < 1", n)
	}
	if !p.IsSquarefree() {
		return nil, fmt.Errorf("Poly.Roots: %s is not squarefree", p.String())
	}
	approximations, err := p.aberth()
	if err != nil {
		return nil, fmt.Errorf("Poly.Roots: %q", err.Error())
	}
	roots := make([]*bignumber.Complex, n)
	for i, approximation := range approximations {
		roots[i], err = p.RefineRoot(approximation, prec)
		if err != nil {
			return nil, fmt.Errorf("Poly.Roots: could not refine root %d: %q", i, err.Error())
		}
	}

	// The r roots closest to the real axis are real
	r, _ := p.Signature()
	sort.SliceStable(roots, func(i, j int) bool {
		return new(big.Float).Abs(roots[i].Imag()).Cmp(new(big.Float).Abs(roots[j].Imag())) < 0
	})
	realRoots := roots[:r]
	for i := range realRoots {
		realRoots[i] = bignumber.NewFromParts(realRoots[i].Real(), new(big.Float).SetPrec(prec))
	}
	sort.Slice(realRoots, func(i, j int) bool {
		return realRoots[i].Real().Cmp(realRoots[j].Real()) < 0
	})

	// The rest are in the upper or lower half plane
	var upper []*bignumber.Complex
	for _, root := range roots[r:] {
		if root.Imag().Sign() > 0 {
			upper = append(upper, root)
		}
	}
	if len(upper) != (n-r)/2 {
		return nil, fmt.Errorf(
			"Poly.Roots: found %d roots in the upper half plane, expected %d", len(upper), (n-r)/2,
		)
	}
	sort.Slice(upper, func(i, j int) bool {
		if c := upper[i].Real().Cmp(upper[j].Real()); c != 0 {
			return c < 0
		}
		return upper[i].Imag().Cmp(upper[j].Imag()) < 0
	})
	retVal := append([]*bignumber.Complex{}, realRoots...)
	for _, root := range upper {
		retVal = append(retVal, root, bignumber.New(prec).Conj(root))
	}
	return retVal, nil
}

// RefineRoot refines an approximation to a simple root of p to precision prec
// by Newton's method, doubling the working precision as the number of
// correct bits doubles.
func (p *Poly) RefineRoot(approximation *bignumber.Complex, prec uint) (*bignumber.Complex, error) {
	if p.Degree() < 1 {
		return nil, fmt.Errorf("Poly.RefineRoot: degree %d < 1", p.Degree())
	}
	derivative := p.Derivative()
	targetPrec := prec + newtonGuardBits
	workingPrec := approximation.Prec()
	if workingPrec < 64 {
		workingPrec = 64
	}
	if workingPrec > targetPrec {
		workingPrec = targetPrec
	}
	z := bignumber.New(workingPrec).Set(approximation)
	converged := 0
	for iteration := 0; iteration < maxNewtonIteration; iteration++ {
		z.SetPrec(workingPrec)
		correction, err := bignumber.New(workingPrec).Quo(p.EvalComplex(z), derivative.EvalComplex(z))
		if err != nil {
			return nil, fmt.Errorf("Poly.RefineRoot: derivative vanishes; root is not simple")
		}
		z.Sub(z, correction)

		// Converged at this precision when the correction is negligible
		// relative to max(1, |z|)
		scale := z.Log2Abs()
		if scale < 0 {
			scale = 0
		}
		if correction.IsSmall(scale - int(workingPrec) + 8) {
			if workingPrec == targetPrec {
				// One more iteration at full precision guards against
				// a correction that is small only by cancellation
				converged++
				if converged == 2 {
					return z.SetPrec(prec), nil
				}
			}
			workingPrec *= 2
			if workingPrec > targetPrec {
				workingPrec = targetPrec
			}
			continue
		}
		if correction.IsSmall(scale - int(workingPrec)/2) {
			workingPrec *= 2
			if workingPrec > targetPrec {
				workingPrec = targetPrec
			}
		}
	}
	return nil, fmt.Errorf("Poly.RefineRoot: Newton's method did not converge for %s", p.String())
}

// aberth returns approximations to all roots of p by the Aberth-Ehrlich
// simultaneous iteration, at aberthPrec bits or more.
func (p *Poly) aberth() ([]*bignumber.Complex, error) {
	n := p.Degree()
	prec := uint(aberthPrec)
	if uint(4*n) > prec {
		prec = uint(4 * n)
	}
	monic := p.Monic()
	derivative := monic.Derivative()

	// Initial approximations are spread on a circle whose radius bounds the
	// roots (Cauchy's bound), rotated off the real axis.
	radius := 1.0
	for i := 0; i < n; i++ {
		c, _ := new(big.Float).SetRat(monic.coeffs[i]).Float64()
		if math.Abs(c)+1 > radius {
			radius = math.Abs(c) + 1
		}
	}
	if math.IsInf(radius, 0) {
		return nil, fmt.Errorf("coefficients of %s are too large", p.String())
	}
	z := make([]*bignumber.Complex, n)
	for k := 0; k < n; k++ {
		angle := 2*math.Pi*float64(k)/float64(n) + 0.4
		z[k] = bignumber.NewFromFloat64(radius*math.Cos(angle), radius*math.Sin(angle), prec)
	}

	one := bignumber.NewFromInt64(1, prec)
	for iteration := 0; iteration < maxAberthIteration; iteration++ {
		allConverged := true
		for k := 0; k < n; k++ {
			pz := monic.EvalComplex(z[k])
			if pz.IsZero() {
				continue
			}
			ratio, err := bignumber.New(prec).Quo(pz, derivative.EvalComplex(z[k]))
			if err != nil {
				// z[k] is on a critical point; nudge it
				z[k].Add(z[k], bignumber.NewFromFloat64(1e-10, 1e-10, prec))
				allConverged = false
				continue
			}
			sum := bignumber.New(prec)
			for j := 0; j < n; j++ {
				if j == k {
					continue
				}
				inverse, err := bignumber.New(prec).Inv(bignumber.New(prec).Sub(z[k], z[j]))
				if err != nil {
					// Coincident approximations; separate them
					z[j].Add(z[j], bignumber.NewFromFloat64(1e-10, -1e-10, prec))
					allConverged = false
					continue
				}
				sum.Add(sum, inverse)
			}
			denominator := bignumber.New(prec).Sub(one, bignumber.New(prec).Mul(ratio, sum))
			correction, err := bignumber.New(prec).Quo(ratio, denominator)
			if err != nil {
				correction = ratio
			}
			z[k].Sub(z[k], correction)
			scale := z[k].Log2Abs()
			if scale < 0 {
				scale = 0
			}
			if !correction.IsSmall(scale - int(prec)/2) {
				allConverged = false
			}
		}
		if allConverged {
			return z, nil
		}
	}
	return nil, fmt.Errorf("Aberth iteration did not converge for %s", p.String())
}

func signChanges(signs []int) int {
	retVal := 0
	last := 0
	for _, s := range signs {
		if s == 0 {
			continue
		}
		if last != 0 && s != last {
			retVal++
		}
		last = s
	}
	return retVal
}
