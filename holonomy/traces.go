// Copyright (c) 2023 Colin McRae

package holonomy

import (
	"fmt"

	"github.com/predrag3141/arithinv/approx"
	"github.com/predrag3141/arithinv/bignumber"
)

// ApproximateTrace returns the trace of w as an approximate algebraic number.
// Nothing is evaluated until the number is.
func ApproximateTrace(src WitnessSource, w Word) *approx.Number {
	return approx.New(func(prec uint) (*bignumber.Complex, error) {
		m, err := src.Evaluate(w, prec)
		if err != nil {
			return nil, fmt.Errorf("ApproximateTrace: %q", err.Error())
		}
		return m.Trace(), nil
	})
}

// TraceFieldWords returns the words whose traces generate the trace field of a
// group with numGenerators generators g_i: g_i, g_i g_j for i < j and
// g_i g_j g_k for i < j < k.
func TraceFieldWords(numGenerators int) []Word {
	return generatingWords(numGenerators, 1)
}

// InvariantTraceFieldWords returns the words whose traces generate the
// invariant trace field: the words of TraceFieldWords in the squares of the
// generators.
func InvariantTraceFieldWords(numGenerators int) []Word {
	return generatingWords(numGenerators, 2)
}

// TraceFieldGenerators returns the traces of TraceFieldWords
func TraceFieldGenerators(src WitnessSource) approx.List {
	return traces(src, TraceFieldWords(src.NumGenerators()))
}

// InvariantTraceFieldGenerators returns the traces of InvariantTraceFieldWords
func InvariantTraceFieldGenerators(src WitnessSource) approx.List {
	return traces(src, InvariantTraceFieldWords(src.NumGenerators()))
}

func generatingWords(numGenerators, power int) []Word {
	var retVal []Word
	for i := 0; i < numGenerators; i++ {
		retVal = append(retVal, Generator(i).Substitute(power))
	}
	for i := 0; i < numGenerators; i++ {
		for j := i + 1; j < numGenerators; j++ {
			retVal = append(retVal, (Generator(i) + Generator(j)).Substitute(power))
		}
	}
	for i := 0; i < numGenerators; i++ {
		for j := i + 1; j < numGenerators; j++ {
			for k := j + 1; k < numGenerators; k++ {
				retVal = append(retVal, (Generator(i) + Generator(j) + Generator(k)).Substitute(power))
			}
		}
	}
	return retVal
}

func traces(src WitnessSource, words []Word) approx.List {
	retVal := make(approx.List, len(words))
	for i, w := range words {
		retVal[i] = ApproximateTrace(src, w)
	}
	return retVal
}
