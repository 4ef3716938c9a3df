// Copyright (c) 2023 Colin McRae

package holonomy

import (
	"errors"
	"fmt"

	"github.com/predrag3141/arithinv/approx"
	"github.com/predrag3141/arithinv/bignumber"
)

// MaxHilbertSymbolWordLength bounds the length, in generators of the subgroup,
// of the words searched by FindHilbertSymbolWords
const MaxHilbertSymbolWordLength = 4

// ErrNoHilbertSymbolWords is returned when no pair of words (g, h) with g not
// parabolic and <g, h> irreducible is found. Raising the precision does not
// help.
var ErrNoHilbertSymbolWords = errors.New("holonomy: no words g, h with g non-parabolic and <g, h> irreducible")

// FindHilbertSymbolWords returns words g and h in the power-th powers of the
// generators of src such that g is not parabolic (tr(g)^2 != 4) and <g, h> is
// irreducible (tr[g, h] != 2). A quantity is taken to be zero when it is
// smaller than 2^(-prec/2) at precision prec. Shorter words are preferred, and
// among words of equal length the order of ReducedWords.
func FindHilbertSymbolWords(src WitnessSource, power int, prec uint) (Word, Word, error) {
	if power < 1 {
		return "", "", fmt.Errorf("FindHilbertSymbolWords: power %d < 1", power)
	}
	threshold := -int(prec / 2)
	candidates := ReducedWords(src.NumGenerators(), MaxHilbertSymbolWordLength)
	four := bignumber.NewFromInt64(4, prec)
	two := bignumber.NewFromInt64(2, prec)
	for _, gWord := range candidates {
		g := gWord.Substitute(power)
		m, err := src.Evaluate(g, prec)
		if err != nil {
			return "", "", fmt.Errorf("FindHilbertSymbolWords: %q", err.Error())
		}
		trace := m.Trace()
		discriminant := bignumber.New(prec).Mul(trace, trace)
		if discriminant.Sub(discriminant, four).IsSmall(threshold) {
			continue
		}
		for _, hWord := range candidates {
			h := hWord.Substitute(power)
			commutator, err := src.Evaluate(Commutator(g, h), prec)
			if err != nil {
				return "", "", fmt.Errorf("FindHilbertSymbolWords: %q", err.Error())
			}
			commutatorTrace := commutator.Trace()
			if !commutatorTrace.Sub(commutatorTrace, two).IsSmall(threshold) {
				return g, h, nil
			}
		}
	}
	return "", "", ErrNoHilbertSymbolWords
}

// ApproximateHilbertSymbol returns the entries tr(g)^2 - 4 and tr[g, h] - 2 of
// the Hilbert symbol of the quaternion algebra of the subgroup generated by the
// power-th powers of the generators, for the words g and h found by
// FindHilbertSymbolWords at precision prec. power is 1 for the quaternion
// algebra and 2 for the invariant quaternion algebra.
func ApproximateHilbertSymbol(src WitnessSource, power int, prec uint) (*approx.Number, *approx.Number, error) {
	g, h, err := FindHilbertSymbolWords(src, power, prec)
	if err != nil {
		return nil, nil, fmt.Errorf("ApproximateHilbertSymbol: %w", err)
	}
	first := ApproximateTrace(src, g).Pow(2).Sub(approx.FromInt64(4))
	second := ApproximateTrace(src, Commutator(g, h)).Sub(approx.FromInt64(2))
	return first, second, nil
}
