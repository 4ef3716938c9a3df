// Copyright (c) 2023 Colin McRae

package invariants

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/predrag3141/arithinv/approx"
	"github.com/predrag3141/arithinv/escalation"
	"github.com/predrag3141/arithinv/numfield"
)

// Invariant names one of the invariants in a Record
type Invariant string

// The invariants of a Record
const (
	TraceField                 Invariant = "trace field"
	InvariantTraceField        Invariant = "invariant trace field"
	QuaternionAlgebra          Invariant = "quaternion algebra"
	InvariantQuaternionAlgebra Invariant = "invariant quaternion algebra"
	Denominators               Invariant = "denominators"
)

// AllInvariants lists the invariants in the order ComputeArithmeticInvariants
// computes them
var AllInvariants = []Invariant{
	TraceField, QuaternionAlgebra, InvariantTraceField, InvariantQuaternionAlgebra, Denominators,
}

// QuaternionAlgebraInvariant is a quaternion algebra over a recognized field,
// with the finite places where it ramifies
type QuaternionAlgebraInvariant struct {
	Algebra *numfield.QuaternionAlgebra

	// RamifiedPlaces are the prime ideals dividing the discriminant, in the
	// order of its factorization
	RamifiedPlaces []*numfield.PrimeIdeal

	// ResidueCharacteristics are the rational primes under RamifiedPlaces,
	// sorted and without duplicates
	ResidueCharacteristics []*big.Int

	Precision uint
}

// RamifiedRealPlaces returns the number of real places at which the algebra
// ramifies
func (qa *QuaternionAlgebraInvariant) RamifiedRealPlaces() (int, error) {
	places, err := qa.Algebra.RamifiedRealPlaces()
	if err != nil {
		return 0, fmt.Errorf("QuaternionAlgebraInvariant.RamifiedRealPlaces: %q", err.Error())
	}
	return len(places), nil
}

// DenominatorSet is the set of prime ideals at which some trace field generator
// fails to be integral. An empty set means every generator is an algebraic
// integer.
type DenominatorSet struct {
	Primes []*numfield.PrimeIdeal

	// ResidueCharacteristics are the rational primes under Primes, sorted and
	// without duplicates
	ResidueCharacteristics []*big.Int
}

// IsEmpty reports whether every trace field generator is integral
func (ds *DenominatorSet) IsEmpty() bool {
	return len(ds.Primes) == 0
}

// Record holds the invariants of one manifold as they are found. An invariant
// that has been found is never cleared; a later successful computation
// replaces it. A Record is not safe for concurrent use.
type Record struct {
	traceField                 *approx.FieldData
	invariantTraceField        *approx.FieldData
	quaternionAlgebra          *QuaternionAlgebraInvariant
	invariantQuaternionAlgebra *QuaternionAlgebraInvariant
	denominators               *DenominatorSet
	attempts                   map[Invariant]*escalation.AttemptRecord
}

func newRecord() *Record {
	retVal := &Record{attempts: map[Invariant]*escalation.AttemptRecord{}}
	for _, inv := range AllInvariants {
		retVal.attempts[inv] = escalation.NewAttemptRecord()
	}
	return retVal
}

// TraceField returns the trace field, or nil if it is not known
func (r *Record) TraceField() *approx.FieldData {
	return r.traceField
}

// InvariantTraceField returns the invariant trace field, or nil if it is not
// known
func (r *Record) InvariantTraceField() *approx.FieldData {
	return r.invariantTraceField
}

// QuaternionAlgebra returns the quaternion algebra over the trace field, or nil
// if it is not known
func (r *Record) QuaternionAlgebra() *QuaternionAlgebraInvariant {
	return r.quaternionAlgebra
}

// InvariantQuaternionAlgebra returns the quaternion algebra over the invariant
// trace field, or nil if it is not known
func (r *Record) InvariantQuaternionAlgebra() *QuaternionAlgebraInvariant {
	return r.invariantQuaternionAlgebra
}

// Denominators returns the denominator set, or nil if it is not known
func (r *Record) Denominators() *DenominatorSet {
	return r.denominators
}

// Attempts returns the log of attempts to compute inv
func (r *Record) Attempts(inv Invariant) *escalation.AttemptRecord {
	return r.attempts[inv]
}

// TraceFieldAttempts returns the log of attempts to compute the trace field
func (r *Record) TraceFieldAttempts() *escalation.AttemptRecord {
	return r.attempts[TraceField]
}

// InvariantTraceFieldAttempts returns the log of attempts to compute the
// invariant trace field
func (r *Record) InvariantTraceFieldAttempts() *escalation.AttemptRecord {
	return r.attempts[InvariantTraceField]
}

// Known reports whether inv has been found
func (r *Record) Known(inv Invariant) bool {
	switch inv {
	case TraceField:
		return r.traceField != nil
	case InvariantTraceField:
		return r.invariantTraceField != nil
	case QuaternionAlgebra:
		return r.quaternionAlgebra != nil
	case InvariantQuaternionAlgebra:
		return r.invariantQuaternionAlgebra != nil
	case Denominators:
		return r.denominators != nil
	}
	return false
}

// formatPrimes formats prime ideals as [(2, z + 1), (3)]
func formatPrimes(primes []*numfield.PrimeIdeal) string {
	parts := make([]string, len(primes))
	for i, prime := range primes {
		parts[i] = prime.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// formatInts formats integers as [2, 3]
func formatInts(xs []*big.Int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = x.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
