// Copyright (c) 2023 Colin McRae

// Package numfield does exact arithmetic in number fields K = Q[x]/(f) and
// answers the local questions asked of them: how rational primes decompose,
// valuations of elements at prime ideals, denominators of elements, and where
// a quaternion algebra over K ramifies.
//
// A field may carry a distinguished complex embedding, a root of f, which
// fixes how elements are evaluated as complex numbers.
package numfield

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/predrag3141/arithinv/bignumber"
	"github.com/predrag3141/arithinv/poly"
	"github.com/predrag3141/arithinv/util"
)

const (
	// DefaultVariable names the generator of a field created without a name
	DefaultVariable = "z"

	// embeddingSearchPrec is the precision at which the roots of a
	// defining polynomial are compared to a proposed embedding
	embeddingSearchPrec = 128
)

// Field is a number field Q[x]/(f) with f monic and irreducible over Q. A
// Field is safe for concurrent use.
type Field struct {
	name       string
	polynomial *poly.Poly
	degree     int

	// embedding is the distinguished root of polynomial, or nil
	embedding *bignumber.Complex

	// scale is the least c > 0 for which c*generator is an algebraic
	// integer with minimal polynomial integralPolynomial
	scale              *big.Int
	integralPolynomial []*big.Int

	mu             sync.Mutex
	refined        *bignumber.Complex
	decompositions map[string]*primeDecomposition
}

// NewField returns the number field defined by p, in a generator named name.
// p is made monic; it must be irreducible, which is not checked beyond
// squarefreeness. If embedding is not nil, the root of p nearest to it is the
// distinguished embedding, and it must be clearly nearer to one root than to
// any other.
func NewField(name string, p *poly.Poly, embedding *bignumber.Complex) (*Field, error) {
	if p.Degree() < 1 {
		return nil, fmt.Errorf("NewField: defining polynomial %s has degree < 1", p.String())
	}
	if name == "" {
		name = DefaultVariable
	}
	monic := p.Monic()
	if !monic.IsSquarefree() {
		return nil, fmt.Errorf("NewField: %s: %w", monic.String(), ErrReducible)
	}
	retVal := &Field{
		name:           name,
		polynomial:     monic,
		degree:         monic.Degree(),
		decompositions: map[string]*primeDecomposition{},
	}
	retVal.scale = util.LcmDenominators(monic.Coeffs())
	retVal.integralPolynomial = make([]*big.Int, retVal.degree+1)
	power := big.NewInt(1)
	for i := retVal.degree; i >= 0; i-- {
		// The coefficient of x^i in c^n f(x/c) is c^(n-i) f_i
		c := new(big.Rat).Mul(monic.Coeff(i), new(big.Rat).SetInt(power))
		retVal.integralPolynomial[i] = new(big.Int).Set(c.Num())
		power.Mul(power, retVal.scale)
	}
	if embedding == nil {
		return retVal, nil
	}
	root, err := nearestRoot(monic, embedding)
	if err != nil {
		return nil, fmt.Errorf("NewField: %q", err.Error())
	}
	retVal.embedding = root
	retVal.refined = root
	return retVal, nil
}

// MustNewField is like NewField but panics on error. It is intended for
// fields written as literals in code and tests.
func MustNewField(name string, p *poly.Poly, embedding *bignumber.Complex) *Field {
	retVal, err := NewField(name, p, embedding)
	if err != nil {
		panic(err)
	}
	return retVal
}

// WithEmbedding returns the same field with the distinguished embedding nearest
// to embedding
func (f *Field) WithEmbedding(embedding *bignumber.Complex) (*Field, error) {
	return NewField(f.name, f.polynomial, embedding)
}

// Name returns the name of the generator
func (f *Field) Name() string {
	return f.name
}

// Degree returns [K : Q]
func (f *Field) Degree() int {
	return f.degree
}

// Polynomial returns the monic defining polynomial
func (f *Field) Polynomial() *poly.Poly {
	return f.polynomial
}

// HasEmbedding reports whether f has a distinguished complex embedding
func (f *Field) HasEmbedding() bool {
	return f.embedding != nil
}

// Embedding returns the distinguished root of the defining polynomial to
// precision prec, or ErrNoEmbedding.
func (f *Field) Embedding(prec uint) (*bignumber.Complex, error) {
	if f.embedding == nil {
		return nil, ErrNoEmbedding
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refined.Prec() >= prec {
		return f.refined.Copy().SetPrec(prec), nil
	}
	refined, err := f.polynomial.RefineRoot(f.refined, prec)
	if err != nil {
		return nil, fmt.Errorf("Field.Embedding: %q", err.Error())
	}
	if f.refined.IsReal() {
		refined = bignumber.NewFromParts(refined.Real(), new(big.Float).SetPrec(prec))
	}
	f.refined = refined
	return refined.Copy(), nil
}

// Discriminant returns the discriminant of the monic defining polynomial
func (f *Field) Discriminant() *big.Rat {
	retVal, _ := f.polynomial.Discriminant() // degree >= 1
	return retVal
}

// Signature returns the numbers r of real embeddings and c of pairs of
// complex embeddings of f
func (f *Field) Signature() (int, int) {
	return f.polynomial.Signature()
}

// ComplexEmbeddings returns all roots of the defining polynomial to precision
// prec, real roots first
func (f *Field) ComplexEmbeddings(prec uint) ([]*bignumber.Complex, error) {
	return f.polynomial.Roots(prec)
}

// RealEmbeddings returns the real roots of the defining polynomial in
// increasing order
func (f *Field) RealEmbeddings(prec uint) ([]*bignumber.Complex, error) {
	roots, err := f.polynomial.Roots(prec)
	if err != nil {
		return nil, fmt.Errorf("Field.RealEmbeddings: %q", err.Error())
	}
	r, _ := f.Signature()
	return roots[:r], nil
}

// Equal reports whether f and g have the same defining polynomial. The
// generator names and embeddings may differ.
func (f *Field) Equal(g *Field) bool {
	return f == g || f.polynomial.Equal(g.polynomial)
}

// String describes f, e.g. "Number Field in z with defining polynomial z^2 + z + 1"
func (f *Field) String() string {
	retVal := fmt.Sprintf(
		"Number Field in %s with defining polynomial %s", f.name, f.polynomial.Format(f.name),
	)
	if f.embedding != nil {
		retVal += fmt.Sprintf(" with %s = %s", f.name, f.embedding.Text(10))
	}
	return retVal
}

// Generator returns the class of x in Q[x]/(f)
func (f *Field) Generator() *Element {
	return f.FromPoly(poly.X())
}

// FromPoly returns the class of p in Q[x]/(f)
func (f *Field) FromPoly(p *poly.Poly) *Element {
	rep, _ := p.Mod(f.polynomial) // f.polynomial is non-zero
	return &Element{field: f, rep: rep}
}

// FromRat returns the rational number x as an element of f
func (f *Field) FromRat(x *big.Rat) *Element {
	return &Element{field: f, rep: poly.Constant(x)}
}

// FromInt64 returns the integer x as an element of f
func (f *Field) FromInt64(x int64) *Element {
	return f.FromRat(big.NewRat(x, 1))
}

// NewElement returns sum coordinates[i] z^i for the generator z. There may be
// at most Degree() coordinates.
func (f *Field) NewElement(coordinates []*big.Rat) (*Element, error) {
	if len(coordinates) > f.degree {
		return nil, fmt.Errorf(
			"Field.NewElement: %d coordinates for a field of degree %d", len(coordinates), f.degree,
		)
	}
	return &Element{field: f, rep: poly.New(coordinates...)}, nil
}

// ParseElement parses a polynomial in the generator, e.g. "1/2*z^2 - 3"
func (f *Field) ParseElement(s string) (*Element, error) {
	p, err := poly.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("Field.ParseElement: %q", err.Error())
	}
	return f.FromPoly(p), nil
}

// integralGenerator returns scale * generator, an algebraic integer
func (f *Field) integralGenerator() *Element {
	return f.Generator().scaleRat(new(big.Rat).SetInt(f.scale))
}

// nearestRoot returns the root of p nearest to z, refined to the precision of
// z, or an error if z is about as near to another root.
func nearestRoot(p *poly.Poly, z *bignumber.Complex) (*bignumber.Complex, error) {
	prec := z.Prec()
	if prec < embeddingSearchPrec {
		prec = embeddingSearchPrec
	}
	roots, err := p.Roots(prec)
	if err != nil {
		return nil, fmt.Errorf("nearestRoot: %q", err.Error())
	}
	target := bignumber.New(prec).Set(z)
	best, second := -1, -1
	distances := make([]*big.Float, len(roots))
	for i, root := range roots {
		distances[i] = root.Distance(target)
		switch {
		case best < 0 || distances[i].Cmp(distances[best]) < 0:
			best, second = i, best
		case second < 0 || distances[i].Cmp(distances[second]) < 0:
			second = i
		}
	}

	// The nearest root must be at most a quarter as far as the next one
	if second >= 0 {
		quadrupled := new(big.Float).Mul(distances[best], big.NewFloat(4))
		if quadrupled.Cmp(distances[second]) >= 0 {
			return nil, fmt.Errorf(
				"%s is not clearly nearer to one root of %s than to another", z.Text(10), p.String(),
			)
		}
	}
	return roots[best], nil
}
