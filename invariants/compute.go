// Copyright (c) 2023 Colin McRae

package invariants

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/predrag3141/arithinv/approx"
	"github.com/predrag3141/arithinv/numfield"
	"github.com/predrag3141/arithinv/util"
)

// ErrMissingPrecondition is returned when an invariant is combined with others
// that have not been computed
var ErrMissingPrecondition = errors.New("invariants: a required invariant has not been computed")

// BuildQuaternionAlgebra expresses the Hilbert symbol entries first and second
// in the field of fieldData at precision prec and returns the quaternion
// algebra (first, second) over it, with its ramified finite places. It returns
// nil and no error if either entry cannot be expressed; raising prec may
// help. The work is redone on every call.
func BuildQuaternionAlgebra(
	fieldData *approx.FieldData, first, second *approx.Number, prec uint,
) (*QuaternionAlgebraInvariant, error) {
	a, err := fieldData.Express(first, prec)
	if err != nil {
		return nil, fmt.Errorf("BuildQuaternionAlgebra: %q", err.Error())
	}
	if a == nil {
		return nil, nil
	}
	b, err := fieldData.Express(second, prec)
	if err != nil {
		return nil, fmt.Errorf("BuildQuaternionAlgebra: %q", err.Error())
	}
	if b == nil {
		return nil, nil
	}
	algebra, err := numfield.NewQuaternionAlgebra(a, b)
	if err != nil {
		return nil, fmt.Errorf("BuildQuaternionAlgebra: %w", err)
	}
	discriminant, err := algebra.Discriminant()
	if err != nil {
		return nil, fmt.Errorf("BuildQuaternionAlgebra: %w", err)
	}

	// Ramification is a property of each place; multiplicities are dropped
	places := discriminant.Primes()
	return &QuaternionAlgebraInvariant{
		Algebra:                algebra,
		RamifiedPlaces:         places,
		ResidueCharacteristics: residueCharacteristics(places),
		Precision:              prec,
	}, nil
}

// ComputeDenominatorSet returns the primes at which some generator has negative
// valuation, ordered by residue characteristic, with their residue
// characteristics
func ComputeDenominatorSet(generators []*numfield.Element) (*DenominatorSet, error) {
	primes := []*numfield.PrimeIdeal{}
	for _, x := range generators {
		denominator, err := x.DenominatorIdeal()
		if err != nil {
			return nil, fmt.Errorf("ComputeDenominatorSet: %s: %w", x.String(), err)
		}
		for _, prime := range denominator.Primes() {
			if !containsPrime(primes, prime) {
				primes = append(primes, prime)
			}
		}
	}
	sort.SliceStable(primes, func(i, j int) bool {
		return primes[i].Less(primes[j])
	})
	return &DenominatorSet{Primes: primes, ResidueCharacteristics: residueCharacteristics(primes)}, nil
}

// IsArithmetic reports whether a Kleinian group with invariant trace field
// itf, invariant quaternion algebra iqa and denominator set denominators is
// arithmetic: itf has exactly one complex place, iqa ramifies at every real
// place of itf, and every trace is an algebraic integer. It returns
// ErrMissingPrecondition if any of them is nil.
func IsArithmetic(itf *approx.FieldData, iqa *QuaternionAlgebraInvariant, denominators *DenominatorSet) (bool, error) {
	switch {
	case itf == nil:
		return false, fmt.Errorf("IsArithmetic: invariant trace field: %w", ErrMissingPrecondition)
	case iqa == nil:
		return false, fmt.Errorf("IsArithmetic: invariant quaternion algebra: %w", ErrMissingPrecondition)
	case denominators == nil:
		return false, fmt.Errorf("IsArithmetic: denominators: %w", ErrMissingPrecondition)
	}
	if !iqa.Algebra.Field().Equal(itf.Field) {
		return false, fmt.Errorf(
			"IsArithmetic: quaternion algebra over %s, not the invariant trace field %s",
			iqa.Algebra.Field(), itf.Field,
		)
	}
	realPlaces, complexPlaces := itf.Field.Signature()
	ramifiedRealPlaces, err := iqa.RamifiedRealPlaces()
	if err != nil {
		return false, fmt.Errorf("IsArithmetic: %w", err)
	}
	return ramifiedRealPlaces == realPlaces && complexPlaces == 1 && denominators.IsEmpty(), nil
}

func residueCharacteristics(primes []*numfield.PrimeIdeal) []*big.Int {
	retVal := make([]*big.Int, len(primes))
	for i, prime := range primes {
		retVal[i] = prime.ResidueCharacteristic()
	}
	return util.SortedUnique(retVal)
}

func containsPrime(primes []*numfield.PrimeIdeal, prime *numfield.PrimeIdeal) bool {
	for _, p := range primes {
		if p.Equal(prime) {
			return true
		}
	}
	return false
}
