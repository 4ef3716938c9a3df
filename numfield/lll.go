// Copyright (c) 2023 Colin McRae

package numfield

import (
	"math/big"

	"github.com/predrag3141/arithinv/bignumber"
)

const (
	// lllDelta is the constant in the Lovasz condition
	lllDelta = 0.75

	// maxLLLIterations guards against cycling from rounding error
	maxLLLIterations = 10000
)

// lllReduce LLL-reduces the basis of real vectors in place, applying the
// same integral row operations to elements, so that vectors[i] stays the
// image of elements[i]. The vectors must be independent.
func lllReduce(elements []*Element, vectors [][]*big.Float) {
	n := len(vectors)
	if n < 2 {
		return
	}
	prec := vectors[0][0].Prec()
	delta := new(big.Float).SetPrec(prec).SetFloat64(lllDelta)
	k := 1
	for iteration := 0; k < n && iteration < maxLLLIterations; iteration++ {
		mu, norms := gramSchmidt(vectors, prec)

		// Size reduction of row k
		for j := k - 1; j >= 0; j-- {
			q := bignumber.RoundToInt(mu[k][j])
			if q.Sign() == 0 {
				continue
			}
			qFloat := new(big.Float).SetPrec(prec).SetInt(q)
			for i := range vectors[k] {
				term := new(big.Float).SetPrec(prec).Mul(qFloat, vectors[j][i])
				vectors[k][i] = new(big.Float).SetPrec(prec).Sub(vectors[k][i], term)
			}
			elements[k] = elements[k].Sub(elements[j].scaleRat(new(big.Rat).SetInt(q)))
			mu, norms = gramSchmidt(vectors, prec)
		}

		// Lovasz condition |b*_k|^2 >= (delta - mu_(k,k-1)^2) |b*_(k-1)|^2
		bound := new(big.Float).SetPrec(prec).Mul(mu[k][k-1], mu[k][k-1])
		bound.Sub(delta, bound)
		bound.Mul(bound, norms[k-1])
		if norms[k].Cmp(bound) >= 0 {
			k++
			continue
		}
		vectors[k], vectors[k-1] = vectors[k-1], vectors[k]
		elements[k], elements[k-1] = elements[k-1], elements[k]
		if k > 1 {
			k--
		}
	}
}

// gramSchmidt returns the coefficients mu[i][j], j < i, of the Gram-Schmidt
// orthogonalization of vectors and the squared norms of the orthogonal
// vectors
func gramSchmidt(vectors [][]*big.Float, prec uint) ([][]*big.Float, []*big.Float) {
	n := len(vectors)
	star := make([][]*big.Float, n)
	mu := make([][]*big.Float, n)
	norms := make([]*big.Float, n)
	for i, v := range vectors {
		star[i] = make([]*big.Float, len(v))
		for k := range v {
			star[i][k] = new(big.Float).SetPrec(prec).Set(v[k])
		}
		mu[i] = make([]*big.Float, n)
		for j := 0; j < i; j++ {
			mu[i][j] = new(big.Float).SetPrec(prec).Quo(dot(v, star[j], prec), norms[j])
			for k := range star[i] {
				term := new(big.Float).SetPrec(prec).Mul(mu[i][j], star[j][k])
				star[i][k].Sub(star[i][k], term)
			}
		}
		norms[i] = dot(star[i], star[i], prec)
	}
	return mu, norms
}

func dot(u, v []*big.Float, prec uint) *big.Float {
	retVal := new(big.Float).SetPrec(prec)
	for i := range u {
		retVal.Add(retVal, new(big.Float).SetPrec(prec).Mul(u[i], v[i]))
	}
	return retVal
}
