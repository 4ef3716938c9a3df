// Copyright (c) 2023 Colin McRae

package holonomy

import (
	"fmt"

	"github.com/predrag3141/arithinv/bignumber"
)

// Matrix is a 2x2 complex matrix
//
//	[ a b ]
//	[ c d ]
type Matrix struct {
	a, b, c, d *bignumber.Complex
}

// NewMatrix returns the matrix with rows (a, b) and (c, d). The entries are
// copied.
func NewMatrix(a, b, c, d *bignumber.Complex) *Matrix {
	return &Matrix{a: a.Copy(), b: b.Copy(), c: c.Copy(), d: d.Copy()}
}

// Identity returns the identity matrix at precision prec
func Identity(prec uint) *Matrix {
	return &Matrix{
		a: bignumber.NewFromInt64(1, prec),
		b: bignumber.New(prec),
		c: bignumber.New(prec),
		d: bignumber.NewFromInt64(1, prec),
	}
}

// Entry returns a copy of the entry in row i and column j, each 0 or 1
func (m *Matrix) Entry(i, j int) (*bignumber.Complex, error) {
	switch {
	case i == 0 && j == 0:
		return m.a.Copy(), nil
	case i == 0 && j == 1:
		return m.b.Copy(), nil
	case i == 1 && j == 0:
		return m.c.Copy(), nil
	case i == 1 && j == 1:
		return m.d.Copy(), nil
	}
	return nil, fmt.Errorf("Matrix.Entry: (%d, %d) is not in a 2x2 matrix", i, j)
}

// Prec returns the least precision of the entries of m
func (m *Matrix) Prec() uint {
	retVal := m.a.Prec()
	for _, x := range []*bignumber.Complex{m.b, m.c, m.d} {
		if x.Prec() < retVal {
			retVal = x.Prec()
		}
	}
	return retVal
}

// Mul returns the product m n
func (m *Matrix) Mul(n *Matrix) *Matrix {
	prec := m.Prec()
	if p := n.Prec(); p > prec {
		prec = p
	}
	dot := func(x, y, z, w *bignumber.Complex) *bignumber.Complex {
		xy := bignumber.New(prec).Mul(x, y)
		zw := bignumber.New(prec).Mul(z, w)
		return xy.Add(xy, zw)
	}
	return &Matrix{
		a: dot(m.a, n.a, m.b, n.c),
		b: dot(m.a, n.b, m.b, n.d),
		c: dot(m.c, n.a, m.d, n.c),
		d: dot(m.c, n.b, m.d, n.d),
	}
}

// Det returns ad - bc
func (m *Matrix) Det() *bignumber.Complex {
	prec := m.Prec()
	ad := bignumber.New(prec).Mul(m.a, m.d)
	bc := bignumber.New(prec).Mul(m.b, m.c)
	return ad.Sub(ad, bc)
}

// Inverse returns the inverse of m, or an error if m is singular
func (m *Matrix) Inverse() (*Matrix, error) {
	prec := m.Prec()
	det := m.Det()
	if det.IsZero() {
		return nil, fmt.Errorf("Matrix.Inverse: matrix is singular")
	}
	divide := func(x *bignumber.Complex) (*bignumber.Complex, error) {
		return bignumber.New(prec).Quo(x, det)
	}
	retVal := &Matrix{}
	var err error
	if retVal.a, err = divide(m.d); err != nil {
		return nil, fmt.Errorf("Matrix.Inverse: %q", err.Error())
	}
	if retVal.b, err = divide(bignumber.New(prec).Neg(m.b)); err != nil {
		return nil, fmt.Errorf("Matrix.Inverse: %q", err.Error())
	}
	if retVal.c, err = divide(bignumber.New(prec).Neg(m.c)); err != nil {
		return nil, fmt.Errorf("Matrix.Inverse: %q", err.Error())
	}
	if retVal.d, err = divide(m.a); err != nil {
		return nil, fmt.Errorf("Matrix.Inverse: %q", err.Error())
	}
	return retVal, nil
}

// Trace returns a + d
func (m *Matrix) Trace() *bignumber.Complex {
	return bignumber.New(m.Prec()).Add(m.a, m.d)
}

// String formats m as [[a, b], [c, d]]
func (m *Matrix) String() string {
	return fmt.Sprintf("[[%s, %s], [%s, %s]]", m.a.String(), m.b.String(), m.c.String(), m.d.String())
}
