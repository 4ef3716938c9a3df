// Copyright (c) 2023 Colin McRae

package polymodp

import (
	"fmt"
	"math/big"
)

// ReduceRat returns x mod p. It returns an error if p divides the
// denominator of x.
func ReduceRat(p uint64, x *big.Rat) (uint64, error) {
	bigP := new(big.Int).SetUint64(p)
	num := new(big.Int).Mod(x.Num(), bigP).Uint64()
	den := new(big.Int).Mod(x.Denom(), bigP).Uint64()
	if den == 0 {
		return 0, fmt.Errorf("ReduceRat: %d divides the denominator of %s", p, x.RatString())
	}
	return modMul(num, modInv(den, p), p), nil
}

// Echelon returns the non-zero rows of the reduced row echelon form of the
// matrix with the given rows over F_p, and the pivot column of each of them.
// The rows span the same subspace as the input.
func Echelon(p uint64, rows [][]uint64) ([][]uint64, []int) {
	if len(rows) == 0 {
		return nil, nil
	}
	m := make([][]uint64, len(rows))
	for i, row := range rows {
		m[i] = make([]uint64, len(row))
		for j, x := range row {
			m[i][j] = x % p
		}
	}
	cols := len(m[0])
	var pivots []int
	r := 0
	for c := 0; c < cols && r < len(m); c++ {
		pivot := -1
		for i := r; i < len(m); i++ {
			if m[i][c] != 0 {
				pivot = i
				break
			}
		}
		if pivot < 0 {
			continue
		}
		m[r], m[pivot] = m[pivot], m[r]
		inverse := modInv(m[r][c], p)
		for j := c; j < cols; j++ {
			m[r][j] = modMul(m[r][j], inverse, p)
		}
		for i := range m {
			if i == r || m[i][c] == 0 {
				continue
			}
			factor := m[i][c]
			for j := c; j < cols; j++ {
				m[i][j] = modSub(m[i][j], modMul(factor, m[r][j], p), p)
			}
		}
		pivots = append(pivots, c)
		r++
	}
	return m[:r], pivots
}

// Kernel returns a basis of the vectors v over F_p with
// v_0 columns[0] + v_1 columns[1] + ... = 0. The columns must have equal
// lengths.
func Kernel(p uint64, columns [][]uint64) [][]uint64 {
	k := len(columns)
	if k == 0 {
		return nil
	}
	rows := make([][]uint64, len(columns[0]))
	for i := range rows {
		rows[i] = make([]uint64, k)
		for j, column := range columns {
			rows[i][j] = column[i]
		}
	}
	reduced, pivots := Echelon(p, rows)
	isPivot := make([]bool, k)
	for _, c := range pivots {
		isPivot[c] = true
	}
	var retVal [][]uint64
	for free := 0; free < k; free++ {
		if isPivot[free] {
			continue
		}
		v := make([]uint64, k)
		v[free] = 1
		for r, c := range pivots {
			v[c] = modSub(0, reduced[r][free], p)
		}
		retVal = append(retVal, v)
	}
	return retVal
}

// Rank returns the dimension of the span of vectors over F_p
func Rank(p uint64, vectors [][]uint64) int {
	_, pivots := Echelon(p, vectors)
	return len(pivots)
}

// Solve returns c with c_0 columns[0] + c_1 columns[1] + ... = target over
// F_p, and false if there is none
func Solve(p uint64, columns [][]uint64, target []uint64) ([]uint64, bool) {
	augmented := append(append([][]uint64{}, columns...), target)
	for _, v := range Kernel(p, augmented) {
		last := v[len(columns)]
		if last == 0 {
			continue
		}
		scale := modSub(0, modInv(last, p), p)
		retVal := make([]uint64, len(columns))
		for i := range retVal {
			retVal[i] = modMul(v[i], scale, p)
		}
		return retVal, true
	}
	return nil, false
}
