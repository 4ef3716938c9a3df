// Copyright (c) 2023 Colin McRae

package polymodp

import (
	"fmt"
	"math/big"
)

// Algebra is a finite-dimensional commutative F_p-algebra, given by the
// products of the basis vectors b_0, ..., b_(n-1). Elements are coordinate
// vectors in this basis.
type Algebra struct {
	p     uint64
	table [][][]uint64 // table[i][j] = b_i b_j
	one   []uint64
}

// NewAlgebra returns the algebra with structure constants table and
// identity one. table[i][j] holds the coordinates of b_i b_j.
func NewAlgebra(p uint64, table [][][]uint64, one []uint64) (*Algebra, error) {
	n := len(table)
	if len(one) != n {
		return nil, fmt.Errorf("NewAlgebra: identity has %d coordinates in dimension %d", len(one), n)
	}
	for i := range table {
		if len(table[i]) != n {
			return nil, fmt.Errorf("NewAlgebra: row %d of the table has %d entries in dimension %d", i, len(table[i]), n)
		}
		for j := range table[i] {
			if len(table[i][j]) != n {
				return nil, fmt.Errorf("NewAlgebra: product %d, %d has %d coordinates in dimension %d", i, j, len(table[i][j]), n)
			}
		}
	}
	return &Algebra{p: p, table: table, one: append([]uint64{}, one...)}, nil
}

// Characteristic returns p
func (a *Algebra) Characteristic() uint64 {
	return a.p
}

// Dim returns the dimension of the algebra over F_p
func (a *Algebra) Dim() int {
	return len(a.table)
}

// One returns the identity
func (a *Algebra) One() []uint64 {
	return append([]uint64{}, a.one...)
}

// Basis returns b_i
func (a *Algebra) Basis(i int) []uint64 {
	retVal := make([]uint64, a.Dim())
	retVal[i] = 1
	return retVal
}

// IsZero reports whether u is zero
func (a *Algebra) IsZero(u []uint64) bool {
	for _, x := range u {
		if x%a.p != 0 {
			return false
		}
	}
	return true
}

// Add returns u + v
func (a *Algebra) Add(u, v []uint64) []uint64 {
	retVal := make([]uint64, a.Dim())
	for i := range retVal {
		retVal[i] = modAdd(u[i], v[i], a.p)
	}
	return retVal
}

// Sub returns u - v
func (a *Algebra) Sub(u, v []uint64) []uint64 {
	retVal := make([]uint64, a.Dim())
	for i := range retVal {
		retVal[i] = modSub(u[i], v[i], a.p)
	}
	return retVal
}

// Scale returns cu
func (a *Algebra) Scale(c uint64, u []uint64) []uint64 {
	retVal := make([]uint64, a.Dim())
	for i := range retVal {
		retVal[i] = modMul(c%a.p, u[i], a.p)
	}
	return retVal
}

// Mul returns uv
func (a *Algebra) Mul(u, v []uint64) []uint64 {
	retVal := make([]uint64, a.Dim())
	for i, x := range u {
		if x == 0 {
			continue
		}
		for j, y := range v {
			if y == 0 {
				continue
			}
			c := modMul(x, y, a.p)
			for k, z := range a.table[i][j] {
				if z != 0 {
					retVal[k] = modAdd(retVal[k], modMul(c, z, a.p), a.p)
				}
			}
		}
	}
	return retVal
}

// Pow returns u^e for e >= 0
func (a *Algebra) Pow(u []uint64, e *big.Int) []uint64 {
	retVal := a.One()
	for i := e.BitLen() - 1; i >= 0; i-- {
		retVal = a.Mul(retVal, retVal)
		if e.Bit(i) == 1 {
			retVal = a.Mul(retVal, u)
		}
	}
	return retVal
}

// Eval returns f(u) in the subalgebra with identity one, e.g. eA for an
// idempotent e. u must lie in that subalgebra.
func (a *Algebra) Eval(f *Poly, u, one []uint64) []uint64 {
	retVal := make([]uint64, a.Dim())
	for i := f.Degree(); i >= 0; i-- {
		retVal = a.Add(a.Mul(retVal, u), a.Scale(f.Coeff(i), one))
	}
	return retVal
}

// MinPoly returns the minimal polynomial of u in the subalgebra with
// identity one
func (a *Algebra) MinPoly(u, one []uint64) *Poly {
	powers := [][]uint64{one}
	for {
		next := a.Mul(powers[len(powers)-1], u)
		if c, ok := Solve(a.p, powers, next); ok {
			coeffs := make([]uint64, len(powers)+1)
			for i, x := range c {
				coeffs[i] = modSub(0, x, a.p)
			}
			coeffs[len(powers)] = 1
			return New(a.p, coeffs...)
		}
		powers = append(powers, next)
	}
}

// FrobeniusExponent returns the least power q of p with q >= Dim(). An
// element u is nilpotent iff u^q = 0.
func (a *Algebra) FrobeniusExponent() *big.Int {
	retVal := big.NewInt(1)
	bigP := new(big.Int).SetUint64(a.p)
	for retVal.Cmp(big.NewInt(int64(a.Dim()))) < 0 {
		retVal.Mul(retVal, bigP)
	}
	return retVal
}

// Radical returns a basis of the nilradical, the kernel of the F_p-linear
// map u -> u^q
func (a *Algebra) Radical() [][]uint64 {
	q := a.FrobeniusExponent()
	columns := make([][]uint64, a.Dim())
	for i := range columns {
		columns[i] = a.Pow(a.Basis(i), q)
	}
	return Kernel(a.p, columns)
}

// MaximalIdeal returns a basis of the maximal ideal {u : eu nilpotent}
// belonging to the primitive idempotent e
func (a *Algebra) MaximalIdeal(e []uint64) [][]uint64 {
	q := a.FrobeniusExponent()
	columns := make([][]uint64, a.Dim())
	for i := range columns {
		columns[i] = a.Mul(e, a.Pow(a.Basis(i), q))
	}
	return Kernel(a.p, columns)
}

// Annihilator returns a basis of {u : uv = 0 for every v in vectors}
func (a *Algebra) Annihilator(vectors [][]uint64) [][]uint64 {
	columns := make([][]uint64, a.Dim())
	for i := range columns {
		b := a.Basis(i)
		for _, v := range vectors {
			columns[i] = append(columns[i], a.Mul(b, v)...)
		}
		if columns[i] == nil {
			// u annihilates the empty set
			columns[i] = make([]uint64, a.Dim())
		}
	}
	return Kernel(a.p, columns)
}

// IdealDim returns the dimension of the ideal uA
func (a *Algebra) IdealDim(u []uint64) int {
	rows := make([][]uint64, a.Dim())
	for i := range rows {
		rows[i] = a.Mul(u, a.Basis(i))
	}
	return Rank(a.p, rows)
}

// Idempotents returns the primitive idempotents, which sum to one. Their
// number is the dimension of {u : u^p - u nilpotent} modulo the radical.
func (a *Algebra) Idempotents() ([][]uint64, error) {
	q := a.FrobeniusExponent()
	bigP := new(big.Int).SetUint64(a.p)
	n := a.Dim()
	fixed := make([][]uint64, n)
	nilpotent := make([][]uint64, n)
	for i := 0; i < n; i++ {
		bq := a.Pow(a.Basis(i), q)
		nilpotent[i] = bq
		fixed[i] = a.Sub(a.Pow(bq, bigP), bq)
	}
	splitting := Kernel(a.p, fixed)
	count := len(splitting) - len(Kernel(a.p, nilpotent))
	retVal := [][]uint64{a.One()}
	for _, s := range splitting {
		if len(retVal) == count {
			break
		}
		var next [][]uint64
		for _, e := range retVal {
			split, err := a.split(e, s)
			if err != nil {
				return nil, fmt.Errorf("Algebra.Idempotents: %q", err.Error())
			}
			next = append(next, split...)
		}
		retVal = next
	}
	if len(retVal) != count {
		return nil, fmt.Errorf("Algebra.Idempotents: found %d of %d idempotents", len(retVal), count)
	}
	return retVal, nil
}

// split returns orthogonal idempotents summing to e, one for each distinct
// irreducible factor of the minimal polynomial of se in eA
func (a *Algebra) split(e, s []uint64) ([][]uint64, error) {
	se := a.Mul(s, e)
	mu := a.MinPoly(se, e)
	factors, err := mu.Factor()
	if err != nil {
		return nil, err
	}
	if len(factors) < 2 {
		return [][]uint64{e}, nil
	}
	retVal := make([][]uint64, 0, len(factors))
	for _, factor := range factors {
		power := One(a.p)
		for i := 0; i < factor.Multiplicity; i++ {
			power = power.Mul(factor.Poly)
		}
		cofactor := mu.Quo(power)

		// u cofactor = 1 mod power, and u cofactor = 0 mod the other factors
		_, u, _ := ExtendedGCD(cofactor, power)
		retVal = append(retVal, a.Eval(u.Mul(cofactor).Mod(mu), se, e))
	}
	return retVal, nil
}
