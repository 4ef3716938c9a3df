// Copyright (c) 2023 Colin McRae

package numfield

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/predrag3141/arithinv/util"
)

const (
	// signPrecisions is the ladder of precisions at which the sign of an
	// element under a real embedding is sought
	minSignPrec = 64
	maxSignPrec = 8192
)

// QuaternionAlgebra is the quaternion algebra (a, b)_K with basis 1, i, j, ij,
// i^2 = a, j^2 = b and ij = -ji, for non-zero a and b in a number field K
type QuaternionAlgebra struct {
	field *Field
	a, b  *Element

	mu       sync.Mutex
	ramified []*PrimeIdeal
	computed bool
}

// NewQuaternionAlgebra returns (a, b)_K for non-zero a and b in the same field K
func NewQuaternionAlgebra(a, b *Element) (*QuaternionAlgebra, error) {
	if a.IsZero() || b.IsZero() {
		return nil, fmt.Errorf("NewQuaternionAlgebra: (%s, %s) has a zero entry", a.String(), b.String())
	}
	if !a.field.Equal(b.field) {
		return nil, fmt.Errorf("NewQuaternionAlgebra: %s and %s are in different fields", a.String(), b.String())
	}
	return &QuaternionAlgebra{field: a.field, a: a, b: b}, nil
}

// Field returns the base field K
func (qa *QuaternionAlgebra) Field() *Field {
	return qa.field
}

// HilbertSymbolEntries returns a and b
func (qa *QuaternionAlgebra) HilbertSymbolEntries() (*Element, *Element) {
	return qa.a, qa.b
}

// String describes the algebra, e.g. "Quaternion Algebra (-1, -1) with base
// ring Number Field in z with defining polynomial z^2 + 1"
func (qa *QuaternionAlgebra) String() string {
	return fmt.Sprintf("Quaternion Algebra (%s, %s) with base ring %s", qa.a.String(), qa.b.String(), qa.field.String())
}

// RamifiedRealPlaces returns the indices, in the order of Field.RealEmbeddings,
// of the real embeddings at which the algebra ramifies: those at which both
// a and b are negative
func (qa *QuaternionAlgebra) RamifiedRealPlaces() ([]int, error) {
	signsA, err := realSigns(qa.a)
	if err != nil {
		return nil, fmt.Errorf("QuaternionAlgebra.RamifiedRealPlaces: %q", err.Error())
	}
	signsB, err := realSigns(qa.b)
	if err != nil {
		return nil, fmt.Errorf("QuaternionAlgebra.RamifiedRealPlaces: %q", err.Error())
	}
	retVal := []int{}
	for i := range signsA {
		if signsA[i] < 0 && signsB[i] < 0 {
			retVal = append(retVal, i)
		}
	}
	return retVal, nil
}

// HilbertSymbol returns the local Hilbert symbol (a, b)_P, which is -1 iff
// the algebra ramifies at P. It is computed directly at primes over odd p and
// at primes over 2 with e = f = 1; at other primes over 2 it returns
// ErrUnresolvedPlace.
func (qa *QuaternionAlgebra) HilbertSymbol(prime *PrimeIdeal) (int, error) {
	qa.field.checkSame(prime.field, "QuaternionAlgebra.HilbertSymbol")
	if prime.ResidueCharacteristic().Bit(0) == 1 {
		return tameHilbertSymbol(qa.a, qa.b, prime)
	}
	if prime.e == 1 && prime.ResidueDegree() == 1 {
		return dyadicHilbertSymbol(qa.a, qa.b, prime)
	}
	return 0, fmt.Errorf(
		"QuaternionAlgebra.HilbertSymbol: %s has e = %d, f = %d: %w",
		prime.String(), prime.e, prime.ResidueDegree(), ErrUnresolvedPlace,
	)
}

// RamifiedFinitePlaces returns the primes at which the algebra ramifies, sorted
// by residue characteristic. At most one prime over 2 may be beyond the
// reach of HilbertSymbol; its symbol then follows from the product formula.
// More than one yields ErrUnresolvedPlace.
func (qa *QuaternionAlgebra) RamifiedFinitePlaces() ([]*PrimeIdeal, error) {
	qa.mu.Lock()
	defer qa.mu.Unlock()
	if qa.computed {
		return append([]*PrimeIdeal{}, qa.ramified...), nil
	}

	// Only primes dividing a or b, or over 2, can ramify
	candidates := append(qa.a.supportPrimes(), qa.b.supportPrimes()...)
	candidates = util.SortedUnique(append(candidates, big.NewInt(2)))
	var ramified, unresolved []*PrimeIdeal
	product := 1
	for _, p := range candidates {
		primes, err := qa.field.Decompose(p)
		if err != nil {
			return nil, fmt.Errorf("QuaternionAlgebra.RamifiedFinitePlaces: %w", err)
		}
		for _, prime := range primes {
			symbol, err := qa.HilbertSymbol(prime)
			if errors.Is(err, ErrUnresolvedPlace) {
				unresolved = append(unresolved, prime)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("QuaternionAlgebra.RamifiedFinitePlaces: %w", err)
			}
			if symbol < 0 {
				ramified = append(ramified, prime)
				product = -product
			}
		}
	}
	switch len(unresolved) {
	case 0:
	case 1:
		realPlaces, err := qa.RamifiedRealPlaces()
		if err != nil {
			return nil, fmt.Errorf("QuaternionAlgebra.RamifiedFinitePlaces: %q", err.Error())
		}
		if len(realPlaces)%2 == 1 {
			product = -product
		}

		// The product of all local symbols is 1
		if product < 0 {
			ramified = append(ramified, unresolved[0])
		}
	default:
		return nil, fmt.Errorf(
			"QuaternionAlgebra.RamifiedFinitePlaces: %d primes over 2 are unresolved: %w",
			len(unresolved), ErrUnresolvedPlace,
		)
	}
	sort.Slice(ramified, func(i, j int) bool { return ramified[i].Less(ramified[j]) })
	qa.ramified = ramified
	qa.computed = true
	return append([]*PrimeIdeal{}, ramified...), nil
}

// Discriminant returns the product of the finite primes at which the algebra
// ramifies
func (qa *QuaternionAlgebra) Discriminant() (*Ideal, error) {
	ramified, err := qa.RamifiedFinitePlaces()
	if err != nil {
		return nil, fmt.Errorf("QuaternionAlgebra.Discriminant: %w", err)
	}
	factors := make([]IdealFactor, len(ramified))
	for i, prime := range ramified {
		factors[i] = IdealFactor{Prime: prime, Exponent: 1}
	}
	return NewIdeal(qa.field, factors), nil
}

// IsMatrixAlgebra reports whether the algebra is split everywhere, i.e.
// isomorphic to the 2x2 matrices over K
func (qa *QuaternionAlgebra) IsMatrixAlgebra() (bool, error) {
	ramified, err := qa.RamifiedFinitePlaces()
	if err != nil {
		return false, fmt.Errorf("QuaternionAlgebra.IsMatrixAlgebra: %w", err)
	}
	realPlaces, err := qa.RamifiedRealPlaces()
	if err != nil {
		return false, fmt.Errorf("QuaternionAlgebra.IsMatrixAlgebra: %q", err.Error())
	}
	return len(ramified) == 0 && len(realPlaces) == 0, nil
}

// tameHilbertSymbol returns (a, b)_P for P over an odd prime: the quadratic
// character mod P of the unit (-1)^(alpha beta) a^beta b^(-alpha), where
// alpha and beta are the valuations of a and b.
func tameHilbertSymbol(a, b *Element, prime *PrimeIdeal) (int, error) {
	alpha, err := prime.Valuation(a)
	if err != nil {
		return 0, fmt.Errorf("tameHilbertSymbol: %q", err.Error())
	}
	beta, err := prime.Valuation(b)
	if err != nil {
		return 0, fmt.Errorf("tameHilbertSymbol: %q", err.Error())
	}
	if alpha == 0 && beta == 0 {
		return 1, nil
	}
	aPower, err := a.Pow(beta)
	if err != nil {
		return 0, fmt.Errorf("tameHilbertSymbol: %q", err.Error())
	}
	bPower, err := b.Pow(-alpha)
	if err != nil {
		return 0, fmt.Errorf("tameHilbertSymbol: %q", err.Error())
	}
	unit := aPower.Mul(bPower)
	if (alpha*beta)%2 != 0 {
		unit = unit.Neg()
	}
	return prime.QuadraticCharacter(unit)
}

// dyadicHilbertSymbol returns (a, b)_P for P over 2 with e = f = 1, where the
// completion is Q_2. Writing a = 2^alpha u and b = 2^beta w for 2-adic units
// u and w, (a, b)_2 = (-1)^(eps(u) eps(w) + alpha omega(w) + beta omega(u))
// with eps(u) = (u - 1)/2 and omega(u) = (u^2 - 1)/8 mod 2.
func dyadicHilbertSymbol(a, b *Element, prime *PrimeIdeal) (int, error) {
	alpha, u, err := twoAdicUnitPart(a, prime)
	if err != nil {
		return 0, fmt.Errorf("dyadicHilbertSymbol: %q", err.Error())
	}
	beta, w, err := twoAdicUnitPart(b, prime)
	if err != nil {
		return 0, fmt.Errorf("dyadicHilbertSymbol: %q", err.Error())
	}
	exponent := epsilon(u)*epsilon(w) + alpha*omega(w) + beta*omega(u)
	if exponent%2 != 0 {
		return -1, nil
	}
	return 1, nil
}

func epsilon(u uint64) int {
	return int((u - 1) / 2 % 2)
}

func omega(u uint64) int {
	return int((u*u - 1) / 8 % 2)
}

// twoAdicUnitPart returns v and u mod 8 with x = 2^v u in the completion
// K_P = Q_2, for P over 2 with e = f = 1. As 2 is a uniformizer and O_P/P^3
// is Z/8, u mod 8 is the odd c with v_P(u - c) >= 3.
func twoAdicUnitPart(x *Element, prime *PrimeIdeal) (int, uint64, error) {
	v, err := prime.Valuation(x)
	if err != nil {
		return 0, 0, fmt.Errorf("twoAdicUnitPart: %q", err.Error())
	}
	power := new(big.Int).Lsh(big.NewInt(1), uint(abs(v)))
	scale := new(big.Rat).SetFrac(big.NewInt(1), power)
	if v < 0 {
		scale.SetInt(power)
	}
	unit := x.scaleRat(scale)
	for c := uint64(1); c < 8; c += 2 {
		difference := unit.Sub(unit.field.FromInt64(int64(c)))
		if difference.IsZero() {
			return v, c, nil
		}
		w, err := prime.Valuation(difference)
		if err != nil {
			return 0, 0, fmt.Errorf("twoAdicUnitPart: %q", err.Error())
		}
		if w >= 3 {
			return v, c, nil
		}
	}
	return 0, 0, fmt.Errorf("twoAdicUnitPart: unit part of %s is not odd mod 8 at %s", x.String(), prime.String())
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// supportPrimes returns the rational primes under the primes at which x has
// non-zero valuation, possibly with others
func (x *Element) supportPrimes() []*big.Int {
	norm := x.Norm()
	retVal := util.PrimeFactors(norm.Num())
	retVal = append(retVal, util.PrimeFactors(norm.Denom())...)
	return append(retVal, x.denominatorPrimes()...)
}

// realSigns returns the signs of x under the real embeddings of its field
func realSigns(x *Element) ([]int, error) {
	r, _ := x.field.Signature()
	if r == 0 {
		return []int{}, nil
	}
	if x.IsZero() {
		return nil, fmt.Errorf("realSigns: zero has no sign")
	}
	for prec := uint(minSignPrec); prec <= maxSignPrec; prec *= 2 {
		roots, err := x.field.RealEmbeddings(prec + evaluationGuardBits(x))
		if err != nil {
			return nil, fmt.Errorf("realSigns: %q", err.Error())
		}
		retVal := make([]int, len(roots))
		resolved := true
		for i, root := range roots {
			value := x.EvaluateAt(root).Real()

			// Trust the sign only of values well above the rounding error
			if value.Sign() == 0 || value.MantExp(nil) < -int(prec/2) {
				resolved = false
				break
			}
			retVal[i] = value.Sign()
		}
		if resolved {
			return retVal, nil
		}
	}
	return nil, fmt.Errorf("realSigns: sign of %s not resolved at %d bits", x.String(), maxSignPrec)
}
