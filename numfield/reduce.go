// Copyright (c) 2023 Colin McRae

package numfield

import (
	"fmt"
	"math"
	"math/big"
	"sort"

	"github.com/predrag3141/arithinv/bignumber"
	"github.com/predrag3141/arithinv/poly"
)

const (
	// reductionPrec is the precision of the embeddings measuring T2
	reductionPrec = 256

	// maxReductionDegree bounds the degree of the fields Reduce searches;
	// larger fields are returned unchanged
	maxReductionDegree = 12

	// reductionTolerance is the relative difference below which two T2
	// norms, or two embedded values, are treated as equal
	reductionTolerance = 1e-9
)

// Reduction is an isomorphism from a field onto a field with a reduced
// defining polynomial
type Reduction struct {
	// Field is the reduced field
	Field *Field

	// Generator is the element of the original field sent to the
	// generator of Field
	Generator *Element

	// Image is the image in Field of the generator of the original field
	Image *Element
}

// Reduce returns an isomorphic field defined by the characteristic polynomial
// of a primitive algebraic integer eta of least T2 norm, the sum of
// |sigma(eta)|^2 over the complex embeddings sigma, like PARI's polredabs.
// Equal norms are decided by the smallest absolute coefficients from x^(n-1)
// down, then by a negative first non-zero coefficient among x^(n-1), x^(n-3),
// ..., then by the embedded value of eta with the largest imaginary part and
// then real part. The distinguished embedding, if any, is carried over.
func (f *Field) Reduce() (*Reduction, error) {
	if f.degree == 1 {
		return f.reduceRational()
	}
	identity := &Reduction{Field: f, Generator: f.Generator(), Image: f.Generator()}
	if f.degree > maxReductionDegree {
		return identity, nil
	}
	order, err := f.maximalOrder()
	if err != nil {
		return nil, fmt.Errorf("Field.Reduce: %w", err)
	}
	roots, err := f.ComplexEmbeddings(reductionPrec)
	if err != nil {
		return nil, fmt.Errorf("Field.Reduce: %q", err.Error())
	}
	elements := append([]*Element{}, order.basis...)
	vectors := make([][]*big.Float, len(elements))
	for i, x := range elements {
		vectors[i] = t2Vector(x, roots)
	}
	lllReduce(elements, vectors)

	candidates := shortCombinations(vectors)
	var best float64
	var ties []*Element
	for _, candidate := range candidates {
		if len(ties) > 0 && candidate.t2 > best+reductionTolerance*math.Max(1, best) {
			break
		}
		eta := f.FromInt64(0)
		for i, c := range candidate.coeffs {
			if c != 0 {
				eta = eta.Add(elements[i].scaleRat(big.NewRat(c, 1)))
			}
		}
		if eta.IsRational() || !eta.CharPoly().IsSquarefree() {
			continue
		}
		if len(ties) == 0 {
			best = candidate.t2
		}
		ties = append(ties, eta)
	}
	if len(ties) == 0 {
		return identity, nil
	}
	eta, err := f.mostReduced(ties)
	if err != nil {
		return nil, fmt.Errorf("Field.Reduce: %q", err.Error())
	}
	var embedding *bignumber.Complex
	if f.HasEmbedding() {
		if embedding, err = eta.Evaluate(embeddingSearchPrec); err != nil {
			return nil, fmt.Errorf("Field.Reduce: %w", err)
		}
	}
	reduced, err := NewField(f.name, eta.CharPoly(), embedding)
	if err != nil {
		return nil, fmt.Errorf("Field.Reduce: %q", err.Error())
	}

	// The generator of f, in the basis 1, eta, ..., eta^(n-1)
	basis, err := powerLattice(eta)
	if err != nil {
		return nil, fmt.Errorf("Field.Reduce: %q", err.Error())
	}
	image, err := reduced.NewElement(basis.coordinates(f.Generator()))
	if err != nil {
		return nil, fmt.Errorf("Field.Reduce: %q", err.Error())
	}
	return &Reduction{Field: reduced, Generator: eta, Image: image}, nil
}

// reduceRational returns Q defined by x. The generator of f maps to its
// rational value.
func (f *Field) reduceRational() (*Reduction, error) {
	var embedding *bignumber.Complex
	if f.HasEmbedding() {
		embedding = bignumber.NewFromInt64(0, embeddingSearchPrec)
	}
	reduced, err := NewField(f.name, poly.X(), embedding)
	if err != nil {
		return nil, fmt.Errorf("Field.Reduce: %q", err.Error())
	}
	value := new(big.Rat).Neg(f.polynomial.Coeff(0))
	return &Reduction{Field: reduced, Generator: f.FromInt64(0), Image: reduced.FromRat(value)}, nil
}

// mostReduced returns the element of ties, all of the same T2 norm, whose
// characteristic polynomial and embedded value come first
func (f *Field) mostReduced(ties []*Element) (*Element, error) {
	retVal := ties[0]
	retValPoly := retVal.CharPoly()
	for _, eta := range ties[1:] {
		etaPoly := eta.CharPoly()
		c := compareReduced(etaPoly, retValPoly)
		if c == 0 && f.HasEmbedding() {
			var err error
			if c, err = compareEmbedded(eta, retVal); err != nil {
				return nil, err
			}
		}
		if c < 0 {
			retVal, retValPoly = eta, etaPoly
		}
	}
	return retVal, nil
}

// compareReduced orders monic polynomials of the same degree by absolute
// values of coefficients from x^(n-1) down, then prefers a negative first
// non-zero coefficient among x^(n-1), x^(n-3), ...
func compareReduced(p, q *poly.Poly) int {
	n := p.Degree()
	for i := n - 1; i >= 0; i-- {
		a := new(big.Rat).Abs(p.Coeff(i))
		b := new(big.Rat).Abs(q.Coeff(i))
		if c := a.Cmp(b); c != 0 {
			return c
		}
	}
	for i := n - 1; i >= 0; i -= 2 {
		a, b := p.Coeff(i).Sign(), q.Coeff(i).Sign()
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}
	return 0
}

// compareEmbedded returns -1 if x has the larger imaginary part under the
// distinguished embedding, or an equal one and the larger real part
func compareEmbedded(x, y *Element) (int, error) {
	xValue, err := x.Evaluate(embeddingSearchPrec)
	if err != nil {
		return 0, err
	}
	yValue, err := y.Evaluate(embeddingSearchPrec)
	if err != nil {
		return 0, err
	}
	xIm, _ := xValue.Imag().Float64()
	yIm, _ := yValue.Imag().Float64()
	if math.Abs(xIm-yIm) > reductionTolerance*math.Max(1, math.Abs(xIm)) {
		if xIm > yIm {
			return -1, nil
		}
		return 1, nil
	}
	xRe, _ := xValue.Real().Float64()
	yRe, _ := yValue.Real().Float64()
	if math.Abs(xRe-yRe) > reductionTolerance*math.Max(1, math.Abs(xRe)) {
		if xRe > yRe {
			return -1, nil
		}
		return 1, nil
	}
	return 0, nil
}

// t2Vector returns the real and imaginary parts of x at each root, a real
// vector whose squared length is T2(x)
func t2Vector(x *Element, roots []*bignumber.Complex) []*big.Float {
	retVal := make([]*big.Float, 0, 2*len(roots))
	for _, root := range roots {
		value := x.EvaluateAt(root)
		retVal = append(retVal, value.Real(), value.Imag())
	}
	return retVal
}

// combination is a small integral combination of a reduced basis
type combination struct {
	coeffs []int64
	t2     float64
}

// shortCombinations returns the non-zero combinations of vectors with small
// coefficients, by increasing T2. Coefficients range over [-2, 2] up to
// degree 4 and over [-1, 1] beyond; above degree 8 at most three of them are
// non-zero.
func shortCombinations(vectors [][]*big.Float) []combination {
	n := len(vectors)
	bound, maxNonZero := int64(1), n
	if n <= 4 {
		bound = 2
	}
	if n > 8 {
		maxNonZero = 3
	}
	approximations := make([][]float64, n)
	for i, v := range vectors {
		approximations[i] = make([]float64, len(v))
		for k, x := range v {
			approximations[i][k], _ = x.Float64()
		}
	}
	var retVal []combination
	coeffs := make([]int64, n)
	var enumerate func(i, nonZero int)
	enumerate = func(i, nonZero int) {
		if i == n {
			if nonZero == 0 {
				return
			}
			sum := make([]float64, len(approximations[0]))
			for j, c := range coeffs {
				if c == 0 {
					continue
				}
				for k, x := range approximations[j] {
					sum[k] += float64(c) * x
				}
			}
			t2 := 0.0
			for _, x := range sum {
				t2 += x * x
			}
			retVal = append(retVal, combination{coeffs: append([]int64{}, coeffs...), t2: t2})
			return
		}
		for c := -bound; c <= bound; c++ {
			if c != 0 && nonZero == maxNonZero {
				continue
			}
			coeffs[i] = c
			next := nonZero
			if c != 0 {
				next++
			}
			enumerate(i+1, next)
		}
		coeffs[i] = 0
	}
	enumerate(0, 0)
	sort.SliceStable(retVal, func(i, j int) bool { return retVal[i].t2 < retVal[j].t2 })
	return retVal
}
