// Copyright (c) 2023 Colin McRae

package numfield

import (
	"fmt"
	"math/big"

	"github.com/predrag3141/arithinv/bigmatrix"
	"github.com/predrag3141/arithinv/bignumber"
	"github.com/predrag3141/arithinv/poly"
)

// Element is an element of a number field, represented by the polynomial of
// degree below [K : Q] whose value at the generator it is. Elements are never
// modified after they are created.
//
// Arithmetic between elements of different fields panics.
type Element struct {
	field *Field
	rep   *poly.Poly
}

// Field returns the field containing x
func (x *Element) Field() *Field {
	return x.field
}

// Polynomial returns the polynomial of degree below [K : Q] representing x
func (x *Element) Polynomial() *poly.Poly {
	return x.rep
}

// Coordinates returns the coordinates of x in the power basis 1, z, ...,
// z^(n-1) of the generator z
func (x *Element) Coordinates() []*big.Rat {
	retVal := make([]*big.Rat, x.field.degree)
	for i := range retVal {
		retVal[i] = x.rep.Coeff(i)
	}
	return retVal
}

// Add returns x + y
func (x *Element) Add(y *Element) *Element {
	x.checkField(y, "Add")
	return &Element{field: x.field, rep: x.rep.Add(y.rep)}
}

// Sub returns x - y
func (x *Element) Sub(y *Element) *Element {
	x.checkField(y, "Sub")
	return &Element{field: x.field, rep: x.rep.Sub(y.rep)}
}

// Neg returns -x
func (x *Element) Neg() *Element {
	return &Element{field: x.field, rep: x.rep.Neg()}
}

// Mul returns xy
func (x *Element) Mul(y *Element) *Element {
	x.checkField(y, "Mul")
	return x.field.FromPoly(x.rep.Mul(y.rep))
}

// Inv returns 1/x, or ErrNotInvertible if x is zero
func (x *Element) Inv() (*Element, error) {
	if x.IsZero() {
		return nil, fmt.Errorf("Element.Inv: %w", ErrNotInvertible)
	}

	// s rep + t f = 1, so s is the inverse of rep mod f
	d, s, _ := poly.ExtendedGCD(x.rep, x.field.polynomial)
	if d.Degree() > 0 {
		return nil, fmt.Errorf("Element.Inv: %s divides %s: %w", d.String(), x.field.polynomial.String(), ErrReducible)
	}
	return x.field.FromPoly(s), nil
}

// Quo returns x/y, or ErrNotInvertible if y is zero
func (x *Element) Quo(y *Element) (*Element, error) {
	x.checkField(y, "Quo")
	inverse, err := y.Inv()
	if err != nil {
		return nil, fmt.Errorf("Element.Quo: %w", err)
	}
	return x.Mul(inverse), nil
}

// Pow returns x^n. Negative n requires x != 0.
func (x *Element) Pow(n int) (*Element, error) {
	base := x
	if n < 0 {
		inverse, err := x.Inv()
		if err != nil {
			return nil, fmt.Errorf("Element.Pow: %w", err)
		}
		base, n = inverse, -n
	}
	retVal := x.field.FromInt64(1)
	for n > 0 {
		if n&1 == 1 {
			retVal = retVal.Mul(base)
		}
		n >>= 1
		if n > 0 {
			base = base.Mul(base)
		}
	}
	return retVal, nil
}

// Equal reports whether x and y are the same element of the same field
func (x *Element) Equal(y *Element) bool {
	return x.field.Equal(y.field) && x.rep.Equal(y.rep)
}

// IsZero reports whether x = 0
func (x *Element) IsZero() bool {
	return x.rep.IsZero()
}

// IsOne reports whether x = 1
func (x *Element) IsOne() bool {
	return x.rep.Degree() == 0 && x.rep.Coeff(0).Cmp(big.NewRat(1, 1)) == 0
}

// IsRational reports whether x is in Q
func (x *Element) IsRational() bool {
	return x.rep.Degree() <= 0
}

// Rational returns x as a rational number if it is one
func (x *Element) Rational() (*big.Rat, bool) {
	if !x.IsRational() {
		return nil, false
	}
	return x.rep.Coeff(0), true
}

// Evaluate returns the image of x under the distinguished embedding, to
// precision prec, or ErrNoEmbedding
func (x *Element) Evaluate(prec uint) (*bignumber.Complex, error) {
	// Evaluating the generator to a few extra bits absorbs the error from
	// cancellation in the power basis
	root, err := x.field.Embedding(prec + evaluationGuardBits(x))
	if err != nil {
		return nil, fmt.Errorf("Element.Evaluate: %w", err)
	}
	return x.EvaluateAt(root).SetPrec(prec), nil
}

// EvaluateAt returns the image of x under the embedding sending the generator
// to root, at the precision of root
func (x *Element) EvaluateAt(root *bignumber.Complex) *bignumber.Complex {
	return x.rep.EvalComplex(root)
}

// CharPoly returns the characteristic polynomial of multiplication by x on
// K as a Q-vector space
func (x *Element) CharPoly() *poly.Poly {
	return faddeevLeVerrier(x.multiplicationMatrix())
}

// MinPoly returns the monic minimal polynomial of x over Q
func (x *Element) MinPoly() *poly.Poly {
	charPoly := x.CharPoly()

	// The characteristic polynomial is a power of the minimal polynomial,
	// which is therefore its squarefree part
	quotient, _, _ := charPoly.DivMod(poly.GCD(charPoly, charPoly.Derivative()))
	return quotient.Monic()
}

// Norm returns the product of the conjugates of x
func (x *Element) Norm() *big.Rat {
	retVal := x.CharPoly().Coeff(0)
	if x.field.degree%2 == 1 {
		retVal.Neg(retVal)
	}
	return retVal
}

// Trace returns the sum of the conjugates of x
func (x *Element) Trace() *big.Rat {
	return new(big.Rat).Neg(x.CharPoly().Coeff(x.field.degree - 1))
}

// IsIntegral reports whether x is an algebraic integer, i.e. whether its
// characteristic polynomial has integer coefficients
func (x *Element) IsIntegral() bool {
	if x.rep.IsIntegral() && x.field.scale.Cmp(big.NewInt(1)) == 0 {
		// x is in Z[z] with z integral
		return true
	}
	return x.CharPoly().IsIntegral()
}

// Compose returns the image of x under the field homomorphism sending the
// generator of x's field to image
func (x *Element) Compose(image *Element) *Element {
	return evalPoly(x.rep, image)
}

// String formats x as a polynomial in the generator of its field
func (x *Element) String() string {
	return x.rep.Format(x.field.name)
}

// evalPoly returns p(x)
func evalPoly(p *poly.Poly, x *Element) *Element {
	retVal := x.field.FromInt64(0)
	for i := p.Degree(); i >= 0; i-- {
		retVal = retVal.Mul(x).Add(x.field.FromRat(p.Coeff(i)))
	}
	return retVal
}

func (x *Element) scaleRat(c *big.Rat) *Element {
	return &Element{field: x.field, rep: x.rep.Scale(c)}
}

func (x *Element) checkField(y *Element, caller string) {
	if !x.field.Equal(y.field) {
		panic(fmt.Sprintf("Element.%s: elements of different fields %s and %s", caller, x.field, y.field))
	}
}

// multiplicationMatrix returns the matrix of multiplication by x in the power
// basis; column j holds the coordinates of x z^j.
func (x *Element) multiplicationMatrix() *bigmatrix.RatMatrix {
	n := x.field.degree
	retVal := bigmatrix.NewRatMatrix(n)
	column := x
	generator := x.field.Generator()
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			_ = retVal.Set(i, j, column.rep.Coeff(i)) // indices are in range
		}
		column = column.Mul(generator)
	}
	return retVal
}

// faddeevLeVerrier returns the characteristic polynomial det(xI - a):
// with M_0 = 0 and c_n = 1, M_k = a M_(k-1) + c_(n-k+1) I and
// c_(n-k) = -tr(a M_k)/k.
func faddeevLeVerrier(a *bigmatrix.RatMatrix) *poly.Poly {
	n := a.Dim()
	coeffs := make([]*big.Rat, n+1)
	coeffs[n] = big.NewRat(1, 1)
	m := bigmatrix.NewRatMatrix(n)
	am := bigmatrix.NewRatMatrix(n)
	for k := 1; k <= n; k++ {
		m = am.Copy().AddToDiagonal(coeffs[n-k+1])
		_, _ = am.Mul(a, m) // dimensions match
		trace := am.Trace()
		coeffs[n-k] = trace.Quo(trace, big.NewRat(int64(-k), 1))
	}
	return poly.New(coeffs...)
}

// evaluationGuardBits returns the extra precision needed to evaluate x in the
// power basis without losing bits to cancellation
func evaluationGuardBits(x *Element) uint {
	retVal := uint(16)
	for i := 0; i <= x.rep.Degree(); i++ {
		c := x.rep.Coeff(i)
		if c.Sign() == 0 {
			continue
		}
		bits := uint(c.Num().BitLen())
		if bits+8 > retVal {
			retVal = bits + 8
		}
	}
	return retVal
}
