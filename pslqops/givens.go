// Copyright (c) 2023 Colin McRae

package pslqops

import (
	"fmt"
	"math/big"

	"github.com/predrag3141/arithinv/bigmatrix"
)

// Swapping rows j and j+1 of H leaves a non-zero entry above the diagonal:
//  _                                    _
// |  ... ...           ...          ...  |
// |  ... H[j+1][j]     H[j+1][j+1]  ...  |
// |  ... H[j][j]       0            ...  |
// |_ ... ...           ...          ... _|
//
// This "corner" is removed by right-multiplying H by a Givens rotation on
// columns j and j+1. When j+1 is the last column of H there is no corner.

// GivensRotation right-multiplies a 2-column sub-matrix of H by the matrix,
// G(j0,j1,theta), defined in  https://en.wikipedia.org/wiki/Givens_rotation.
// The parameters j0 and j1 map to i and j in that article. The variable
// names c, s and r below map to c, s and r in that article.
//
// If H[j0][j0] and H[j0][j1] are both zero, the rotation is undefined and
// false is returned; this usually means the precision is exhausted.
func GivensRotation(h *bigmatrix.BigMatrix, j0, j1 int) (bool, error) {
	if (j0 < 0) || (j1 <= j0) || (h.NumCols() <= j1) {
		return false, fmt.Errorf(
			"GivensRotation: parameters [j0, j1] = [%d, %d] violate 0 <= j0 < j1 <= %d",
			j0, j1, h.NumCols()-1,
		)
	}
	prec := h.Prec()
	a, err := h.Get(j0, j0)
	if err != nil {
		return false, fmt.Errorf("GivensRotation: could not get H[%d][%d]: %q", j0, j0, err.Error())
	}
	b, err := h.Get(j0, j1)
	if err != nil {
		return false, fmt.Errorf("GivensRotation: could not get H[%d][%d]: %q", j0, j1, err.Error())
	}
	rSq := new(big.Float).SetPrec(prec).Mul(a, a)
	rSq.Add(rSq, new(big.Float).SetPrec(prec).Mul(b, b))
	if rSq.Sign() == 0 {
		return false, nil
	}
	r := new(big.Float).SetPrec(prec).Sqrt(rSq)
	c := new(big.Float).SetPrec(prec).Quo(a, r)
	s := new(big.Float).SetPrec(prec).Quo(b, r)
	t0 := new(big.Float).SetPrec(prec)
	t1 := new(big.Float).SetPrec(prec)
	for k := j0; k < h.NumRows(); k++ {
		row, err := h.Row(k)
		if err != nil {
			return false, fmt.Errorf("GivensRotation: could not get row %d of H: %q", k, err.Error())
		}
		hkj0 := new(big.Float).Copy(row[j0])
		hkj1 := row[j1]

		// H[k][j0] = c H[k][j0] + s H[k][j1]
		t0.Mul(c, hkj0)
		t1.Mul(s, hkj1)
		row[j0].Add(t0, t1)

		// H[k][j1] = -s H[k][j0] + c H[k][j1], which is 0 in row j0
		if k == j0 {
			row[j1].SetInt64(0)
			continue
		}
		t0.Mul(s, hkj0)
		t1.Mul(c, hkj1)
		row[j1].Sub(t1, t0)
	}
	return true, nil
}
