// Copyright (c) 2023 Colin McRae

package strategy

import (
	"math"
	"math/big"
	"math/rand"
)

// The input to PSLQ will be a xLen-long vector with
// - Entries from the uniform distribution on [-maxX/2,maxX/2].
// - A known, "causal" relation (variable name "relation") with entries from
//   the uniform distribution on [-maxRelationElement/2,maxRelationElement/2]
//
// The question is what maxX needs to be to pose a reasonable challenge to PSLQ.
// A reasonable challenge is for randomRelationProbabilityThresh to be the chance
// that a random relation exists with each entry in
// [-maxRelationElement/2,maxRelationElement/2].
//
// The expected number, lambda, of random relations of that size is roughly
//
// lambda = maxRelationElement^xLen / (sqrt(xLen) maxX)
//
// so, ignoring the small factor of 1/sqrt(xLen), maxX is set to
//
// maxX = maxRelationElement^xLen / randomRelationProbabilityThresh
//
// The entries are then scaled by 1/maxX so they lie in [-1/2, 1/2], which is
// the regime in which recognition feeds PSLQ.

// PSLQContext is PSLQ input with a planted relation
type PSLQContext struct {
	InputAsBigInt []*big.Int
	Input         []*big.Float
	Relation      []int64
	Log2MaxX      int
}

// GetPSLQInput returns input to PSLQ of length xLen with a known relation that
// PSLQ is challenged to find, at precision prec. The relation contains entries
// within a range of relationElementRange possible values, centered at 0, and
// its last entry is 1. rng makes the input reproducible.
func GetPSLQInput(
	xLen, relationElementRange int, randomRelationProbabilityThresh float64, prec uint, rng *rand.Rand,
) *PSLQContext {
	relation := getCausalRelation(xLen, relationElementRange, rng)
	maxX := math.Pow(float64(relationElementRange), float64(xLen)) / randomRelationProbabilityThresh
	log2MaxX := int(1.0 + math.Log2(maxX))
	inputAsBigInt := getX(relation, log2MaxX, rng)
	input := make([]*big.Float, xLen)
	for i := range inputAsBigInt {
		input[i] = new(big.Float).SetPrec(prec).SetInt(inputAsBigInt[i])
		input[i].SetMantExp(input[i], -log2MaxX)
	}
	return &PSLQContext{
		InputAsBigInt: inputAsBigInt,
		Input:         input,
		Relation:      relation,
		Log2MaxX:      log2MaxX,
	}
}

// TestSolution returns whether a solution works against pc.InputAsBigInt
func (pc *PSLQContext) TestSolution(solution []*big.Int) bool {
	if len(solution) != len(pc.InputAsBigInt) {
		return false
	}
	dotProduct := big.NewInt(0)
	for i := range pc.InputAsBigInt {
		dotProduct.Add(dotProduct, new(big.Int).Mul(solution[i], pc.InputAsBigInt[i]))
	}
	return dotProduct.Sign() == 0
}

// getCausalRelation returns a relation that is to be orthogonal to the X vector
// later calculated by getX.
func getCausalRelation(xLen, maxRelationElement int, rng *rand.Rand) []int64 {
	relation := make([]int64, xLen)
	for i := 0; i < xLen-1; i++ {
		relation[i] = int64(rng.Intn(maxRelationElement) - (maxRelationElement / 2))
	}
	relation[xLen-1] = 1
	return relation
}

// getX returns an xLen-long array of big.Ints whose inner product with relation is 0.
func getX(relation []int64, log2MaxX int, rng *rand.Rand) []*big.Int {
	xLen := len(relation)
	xEntries := make([]*big.Int, xLen)
	maxX := new(big.Int).Lsh(big.NewInt(1), uint(log2MaxX))
	maxXOver2 := new(big.Int).Rsh(maxX, 1)
	subTotal := big.NewInt(0)
	for i := 0; i < xLen-1; i++ {
		xEntries[i] = new(big.Int).Rand(rng, maxX)
		xEntries[i].Sub(xEntries[i], maxXOver2)
		if xEntries[i].Sign() == 0 {
			xEntries[i].SetInt64(1)
		}
		subTotal.Add(subTotal, new(big.Int).Mul(xEntries[i], big.NewInt(relation[i])))
	}
	xEntries[xLen-1] = new(big.Int).Neg(subTotal)
	return xEntries
}
