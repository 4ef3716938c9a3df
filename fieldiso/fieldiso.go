// Copyright (c) 2023 Colin McRae

// Package fieldiso decides whether two number fields, each with a distinguished
// complex embedding, are the same field with the same embedding. The fields may
// have different defining polynomials, e.g. x^2 + 1 and x^2 + 2x + 5/4.
//
// Isomorphisms come from the linear factors of the domain's defining polynomial
// over the codomain. Embeddings are matched numerically, to the nearest root.
package fieldiso

import (
	"errors"
	"fmt"
	"sort"

	"github.com/predrag3141/arithinv/bignumber"
	"github.com/predrag3141/arithinv/numfield"
)

// MatchPrecision is the precision in bits at which embeddings are compared
const MatchPrecision = 128

// ErrEmbeddingUnavailable is returned when an embedding is compared and neither
// a numerical root nor a distinguished embedding of the field is available
var ErrEmbeddingUnavailable = errors.New("fieldiso: no numerical root or distinguished embedding")

// Isomorphism is the field isomorphism sending the generator of Domain to
// Image, an element of Codomain
type Isomorphism struct {
	Domain   *numfield.Field
	Codomain *numfield.Field
	Image    *numfield.Element
}

// Apply returns the image of x, an element of the domain
func (iso *Isomorphism) Apply(x *numfield.Element) (*numfield.Element, error) {
	if !x.Field().Equal(iso.Domain) {
		return nil, fmt.Errorf("Isomorphism.Apply: %s is not in the domain %s", x.String(), iso.Domain)
	}
	return x.Compose(iso.Image), nil
}

// String describes iso as "z |--> image"
func (iso *Isomorphism) String() string {
	return fmt.Sprintf("%s |--> %s", iso.Domain.Name(), iso.Image.String())
}

// Isomorphisms returns every isomorphism from domain to codomain, one per root
// of the defining polynomial of domain in codomain. The result is empty if the
// fields are not isomorphic. Isomorphisms are ordered by the coordinates of
// their images, highest power of the generator first and larger coordinates
// first, so the first isomorphism is determined by the two fields.
func Isomorphisms(domain, codomain *numfield.Field) ([]*Isomorphism, error) {
	if domain.Degree() != codomain.Degree() {
		return []*Isomorphism{}, nil
	}
	roots, err := codomain.LinearFactors(domain.Polynomial())
	if err != nil {
		return nil, fmt.Errorf("Isomorphisms: %q", err.Error())
	}
	sort.SliceStable(roots, func(i, j int) bool {
		return compareDescending(roots[i], roots[j]) < 0
	})
	retVal := make([]*Isomorphism, len(roots))
	for i, root := range roots {
		retVal[i] = &Isomorphism{Domain: domain, Codomain: codomain, Image: root}
	}
	return retVal, nil
}

// TransferEmbedding returns the root of the codomain's defining polynomial
// that defines the embedding of the codomain agreeing, through iso, with the
// distinguished embedding of the domain. Among the complex embeddings of the
// codomain it picks the one under which the image of the domain's generator is
// nearest to the domain's distinguished root. This is a nearest match, and is
// only meaningful when the embeddings are well separated at MatchPrecision.
func TransferEmbedding(iso *Isomorphism) (*bignumber.Complex, error) {
	domainRoot, err := iso.Domain.Embedding(MatchPrecision)
	if err != nil {
		if errors.Is(err, numfield.ErrNoEmbedding) {
			return nil, fmt.Errorf("TransferEmbedding: domain: %w", ErrEmbeddingUnavailable)
		}
		return nil, fmt.Errorf("TransferEmbedding: %q", err.Error())
	}
	embeddings, err := iso.Codomain.ComplexEmbeddings(MatchPrecision)
	if err != nil {
		return nil, fmt.Errorf("TransferEmbedding: %q", err.Error())
	}
	best := nearest(embeddings, func(sigma *bignumber.Complex) *bignumber.Complex {
		return iso.Image.EvaluateAt(sigma)
	}, domainRoot)
	return embeddings[best], nil
}

// CompareEmbeddings reports whether first and second designate the same
// embedding of field, each being matched to the nearest root of the defining
// polynomial. A nil second stands for the distinguished embedding of field.
func CompareEmbeddings(field *numfield.Field, first, second *bignumber.Complex) (bool, error) {
	if first == nil {
		return false, fmt.Errorf("CompareEmbeddings: first root: %w", ErrEmbeddingUnavailable)
	}
	if second == nil {
		distinguished, err := field.Embedding(MatchPrecision)
		if err != nil {
			if errors.Is(err, numfield.ErrNoEmbedding) {
				return false, fmt.Errorf("CompareEmbeddings: second root: %w", ErrEmbeddingUnavailable)
			}
			return false, fmt.Errorf("CompareEmbeddings: %q", err.Error())
		}
		second = distinguished
	}
	embeddings, err := field.ComplexEmbeddings(MatchPrecision)
	if err != nil {
		return false, fmt.Errorf("CompareEmbeddings: %q", err.Error())
	}
	identity := func(sigma *bignumber.Complex) *bignumber.Complex { return sigma }
	return nearest(embeddings, identity, first) == nearest(embeddings, identity, second), nil
}

// IsomorphicRespectingEmbeddings reports whether a and b are isomorphic with
// matching distinguished embeddings: the embedding of a, transferred to b
// through the first of Isomorphisms(a, b), is the distinguished embedding of
// b. It returns false if the fields are not isomorphic.
func IsomorphicRespectingEmbeddings(a, b *numfield.Field) (bool, error) {
	isomorphisms, err := Isomorphisms(a, b)
	if err != nil {
		return false, fmt.Errorf("IsomorphicRespectingEmbeddings: %q", err.Error())
	}
	if len(isomorphisms) == 0 {
		return false, nil
	}
	transferred, err := TransferEmbedding(isomorphisms[0])
	if err != nil {
		return false, fmt.Errorf("IsomorphicRespectingEmbeddings: %w", err)
	}
	retVal, err := CompareEmbeddings(b, transferred, nil)
	if err != nil {
		return false, fmt.Errorf("IsomorphicRespectingEmbeddings: %w", err)
	}
	return retVal, nil
}

// RespectingIsomorphisms returns the isomorphisms phi from a to b with
// sigma_b(phi(z)) nearest to sigma_a(z), where sigma_a and sigma_b are the
// distinguished embeddings and z is the generator of a. Unlike
// IsomorphicRespectingEmbeddings, the answer does not depend on the order of
// the isomorphisms: Q(i) with i and Q(i) with -i are related by z |--> -z.
func RespectingIsomorphisms(a, b *numfield.Field) ([]*Isomorphism, error) {
	isomorphisms, err := Isomorphisms(a, b)
	if err != nil {
		return nil, fmt.Errorf("RespectingIsomorphisms: %q", err.Error())
	}
	retVal := []*Isomorphism{}
	for _, iso := range isomorphisms {
		transferred, err := TransferEmbedding(iso)
		if err != nil {
			return nil, fmt.Errorf("RespectingIsomorphisms: %w", err)
		}
		same, err := CompareEmbeddings(b, transferred, nil)
		if err != nil {
			return nil, fmt.Errorf("RespectingIsomorphisms: %w", err)
		}
		if same {
			retVal = append(retVal, iso)
		}
	}
	return retVal, nil
}

// nearest returns the index of the embedding sigma for which f(sigma) is
// nearest to target
func nearest(
	embeddings []*bignumber.Complex, f func(*bignumber.Complex) *bignumber.Complex, target *bignumber.Complex,
) int {
	best := 0
	bestDistance := f(embeddings[0]).Distance(target)
	for i := 1; i < len(embeddings); i++ {
		distance := f(embeddings[i]).Distance(target)
		if distance.Cmp(bestDistance) < 0 {
			best, bestDistance = i, distance
		}
	}
	return best
}

// compareDescending orders elements by their coordinates in the power basis,
// highest power first, with larger coordinates first
func compareDescending(x, y *numfield.Element) int {
	xc, yc := x.Coordinates(), y.Coordinates()
	for i := len(xc) - 1; i >= 0; i-- {
		if cmp := xc[i].Cmp(yc[i]); cmp != 0 {
			return -cmp
		}
	}
	return 0
}
