// Copyright (c) 2023 Colin McRae

package approx

import (
	"fmt"
	"math/big"

	"github.com/predrag3141/arithinv/bignumber"
	"github.com/predrag3141/arithinv/numfield"
	"github.com/predrag3141/arithinv/poly"
	"github.com/predrag3141/arithinv/strategy"
)

// recognitionGuardBits are added to the precision at which numbers are
// evaluated before being passed to PSLQ
const recognitionGuardBits = 32

// FieldData is an exact number field recognized from approximate numbers: the
// field, with the distinguished embedding given by the numerical root; the
// root as an approximate number; and exact expressions of the numbers the
// field was recognized from.
type FieldData struct {
	Field      *numfield.Field
	Root       *Number
	Generators []*numfield.Element

	// Precision and Degree are the parameters of the successful recognition
	Precision uint
	Degree    int
}

// Express returns target as an element of the field, or nil if no polynomial of
// low height in the root matches it at precision prec
func (fd *FieldData) Express(target *Number, prec uint) (*numfield.Element, error) {
	expression, err := fd.Root.Express(target, prec, fd.Field.Degree())
	if err != nil {
		return nil, fmt.Errorf("FieldData.Express: %q", err.Error())
	}
	if expression == nil {
		return nil, nil
	}
	return fd.Field.FromPoly(expression), nil
}

// Recognize looks for the minimal polynomial of n among polynomials of degree
// 1, 2, ..., degree whose coefficients are small enough to be detected at
// precision prec. If it finds one, it returns the field generated by n, with n
// as its distinguished root and its generator as the only generator. Otherwise
// it returns nil and no error.
//
// The real and imaginary parts of the powers of n are combined as Re + e Im,
// with e transcendental, so one real relation stands for a complex one.
func (n *Number) Recognize(prec uint, degree int) (*FieldData, error) {
	if degree < 1 {
		return nil, fmt.Errorf("Number.Recognize: degree %d < 1", degree)
	}
	z, err := n.Evaluate(prec + recognitionGuardBits)
	if err != nil {
		return nil, fmt.Errorf("Number.Recognize: %q", err.Error())
	}
	powers := powersOf(z, degree)
	e := bignumber.E(prec + recognitionGuardBits)
	for d := 1; d <= degree; d++ {
		x := make([]*big.Float, d+1)
		for i := range x {
			x[i] = powers[i].Mix(e)
		}
		relation, err := strategy.FindRelation(x, strategy.Options{
			Precision: prec, MaxCoefficient: maxHeight(prec, d+1),
		})
		if err != nil {
			return nil, fmt.Errorf("Number.Recognize: degree %d: %q", d, err.Error())
		}
		if relation == nil {
			continue
		}
		candidate := poly.NewFromInts(relation)
		if candidate.Degree() < 1 {
			continue
		}
		quotient, _, _ := candidate.DivMod(poly.GCD(candidate, candidate.Derivative())) // the gcd is non-zero
		candidate = quotient.Monic()
		if !vanishesAt(candidate, z, prec) {
			continue
		}
		field, err := numfield.NewField(numfield.DefaultVariable, candidate, z)
		if err != nil {
			// The root is not separated from the other roots at this
			// precision
			continue
		}
		return &FieldData{
			Field:      field,
			Root:       n,
			Generators: []*numfield.Element{field.Generator()},
			Precision:  prec,
			Degree:     degree,
		}, nil
	}
	return nil, nil
}

// Express returns the polynomial q of degree below degree with rational
// coefficients and q(n) = target, as detected by an integer relation among
// target, 1, n, ..., n^(degree-1) at precision prec. It returns nil and no
// error if there is no such relation of low height.
func (n *Number) Express(target *Number, prec uint, degree int) (*poly.Poly, error) {
	if degree < 1 {
		return nil, fmt.Errorf("Number.Express: degree %d < 1", degree)
	}
	workingPrec := prec + recognitionGuardBits
	z, err := n.Evaluate(workingPrec)
	if err != nil {
		return nil, fmt.Errorf("Number.Express: %q", err.Error())
	}
	powers := powersOf(z, degree-1)
	t, err := target.Evaluate(workingPrec)
	if err != nil {
		return nil, fmt.Errorf("Number.Express: %q", err.Error())
	}
	e := bignumber.E(workingPrec)
	x := make([]*big.Float, degree+1)
	x[0] = t.Mix(e)
	for i, power := range powers {
		x[i+1] = power.Mix(e)
	}
	relation, err := strategy.FindRelation(x, strategy.Options{
		Precision: prec, MaxCoefficient: maxHeight(prec, degree+1),
	})
	if err != nil {
		return nil, fmt.Errorf("Number.Express: %q", err.Error())
	}
	if relation == nil || relation[0].Sign() == 0 {
		return nil, nil
	}

	// c_0 t + c_1 + c_2 n + ... = 0, so t = -(c_1 + c_2 n + ...)/c_0
	coeffs := make([]*big.Rat, degree)
	for i := range coeffs {
		coeffs[i] = new(big.Rat).SetFrac(new(big.Int).Neg(relation[i+1]), relation[0])
	}
	retVal := poly.New(coeffs...)
	difference := bignumber.New(workingPrec).Sub(retVal.EvalComplex(z), t)
	if !difference.IsSmall(magnitude(t) - int(prec)/2) {
		return nil, nil
	}
	return retVal, nil
}

// powersOf returns z^0, z^1, ..., z^k at the precision of z
func powersOf(z *bignumber.Complex, k int) []*bignumber.Complex {
	prec := z.Prec()
	retVal := make([]*bignumber.Complex, k+1)
	retVal[0] = bignumber.NewFromInt64(1, prec)
	for i := 1; i <= k; i++ {
		retVal[i] = bignumber.New(prec).Mul(retVal[i-1], z)
	}
	return retVal
}

// maxHeight bounds the coefficients of a relation among length numbers that
// can be trusted at precision prec. Random numbers satisfy relations with
// coefficients near 2^(prec/length).
func maxHeight(prec uint, length int) *big.Int {
	bits := 3 * prec / uint(4*length)
	if bits < 1 {
		bits = 1
	}
	return new(big.Int).Lsh(big.NewInt(1), bits)
}

// vanishesAt reports whether p(z) is 0 to within the rounding error expected
// at precision prec
func vanishesAt(p *poly.Poly, z *bignumber.Complex, prec uint) bool {
	value := p.EvalComplex(z)

	// The terms of p(z) are bounded by max|c_i| max(1, |z|)^deg p
	scale := 0
	for _, c := range p.Coeffs() {
		if c.Sign() == 0 {
			continue
		}
		if bits := c.Num().BitLen() - c.Denom().BitLen() + 1; bits > scale {
			scale = bits
		}
	}
	if log2Z := z.Log2Abs(); log2Z > 0 {
		scale += log2Z * p.Degree()
	}
	return value.IsSmall(scale - int(prec)/2)
}

// magnitude returns max(0, log2|z|)
func magnitude(z *bignumber.Complex) int {
	if retVal := z.Log2Abs(); retVal > 0 {
		return retVal
	}
	return 0
}
