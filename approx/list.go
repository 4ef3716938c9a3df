// Copyright (c) 2023 Colin McRae

package approx

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/predrag3141/arithinv/numfield"
	"github.com/predrag3141/arithinv/poly"
)

// maxPrimitiveMultiplier bounds k in the primitive elements z + k x tried
// when x is not in the field generated by z
const maxPrimitiveMultiplier = 3

// List is a list of approximate numbers, typically generators of a trace field
type List []*Number

// FindField recognizes a number field containing every member of l, with a
// primitive element of degree at most degree, at precision prec. The first
// member is the first candidate for the primitive element z. When a member x
// is not in the field generated by z, z + x, z + 2x and z + 3x are tried in
// turn. It returns nil and no error if no field is found. The field of the
// result is reduced with numfield.Field.Reduce, and its generators are the
// members of l expressed in it.
func (l List) FindField(prec uint, degree int) (*FieldData, error) {
	return l.findField(prec, degree, zap.NewNop())
}

func (l List) findField(prec uint, degree int, logger *zap.Logger) (*FieldData, error) {
	if len(l) == 0 {
		return nil, fmt.Errorf("List.FindField: empty list")
	}
	members := make(List, len(l))
	for i, x := range l {
		members[i] = x.Cached()
	}
	l = members
	z := l[0]
	fieldData, err := z.Recognize(prec, degree)
	if err != nil {
		return nil, fmt.Errorf("List.FindField: %q", err.Error())
	}
	if fieldData == nil {
		logger.Debug("first member not recognized", zap.Uint("precision", prec), zap.Int("degree", degree))
		return nil, nil
	}
	for i := 1; i < len(l); i++ {
		expression, err := fieldData.Express(l[i], prec)
		if err != nil {
			return nil, fmt.Errorf("List.FindField: %q", err.Error())
		}
		if expression != nil {
			continue
		}

		// Enlarge the field to contain l[i]
		found := false
		for k := int64(1); k <= maxPrimitiveMultiplier && !found; k++ {
			candidate := z.Add(l[i].Mul(FromInt64(k)))
			candidateData, err := candidate.Recognize(prec, degree)
			if err != nil {
				return nil, fmt.Errorf("List.FindField: %q", err.Error())
			}
			if candidateData == nil {
				continue
			}
			contained, err := candidateData.containsAll(l[:i+1], prec)
			if err != nil {
				return nil, fmt.Errorf("List.FindField: %q", err.Error())
			}
			if contained {
				z, fieldData, found = candidate, candidateData, true
			}
		}
		if !found {
			logger.Debug(
				"member not in any candidate field",
				zap.Int("member", i), zap.Uint("precision", prec), zap.Int("degree", degree),
			)
			return nil, nil
		}
	}

	generators := make([]*numfield.Element, len(l))
	for i, x := range l {
		generators[i], err = fieldData.Express(x, prec)
		if err != nil {
			return nil, fmt.Errorf("List.FindField: %q", err.Error())
		}
		if generators[i] == nil {
			return nil, nil
		}
	}
	fieldData.Generators = generators
	reduced, err := fieldData.Reduce()
	if err != nil {
		return nil, fmt.Errorf("List.FindField: %w", err)
	}
	logger.Debug(
		"field reduced",
		zap.Stringer("polynomial", fieldData.Field.Polynomial()),
		zap.Stringer("reduced", reduced.Field.Polynomial()),
	)
	return reduced, nil
}

// Reduce returns fd over the isomorphic field with a reduced defining
// polynomial, with the root and the generators carried over
func (fd *FieldData) Reduce() (*FieldData, error) {
	reduction, err := fd.Field.Reduce()
	if err != nil {
		return nil, fmt.Errorf("FieldData.Reduce: %w", err)
	}
	generators := make([]*numfield.Element, len(fd.Generators))
	for i, g := range fd.Generators {
		generators[i] = g.Compose(reduction.Image)
	}
	return &FieldData{
		Field:      reduction.Field,
		Root:       evalAt(reduction.Generator.Polynomial(), fd.Root).Cached(),
		Generators: generators,
		Precision:  fd.Precision,
		Degree:     fd.Degree,
	}, nil
}

// evalAt returns p(x)
func evalAt(p *poly.Poly, x *Number) *Number {
	retVal := FromInt64(0)
	for i := p.Degree(); i >= 0; i-- {
		retVal = retVal.Mul(x).Add(NewConstant(p.Coeff(i)))
	}
	return retVal
}

func (fd *FieldData) containsAll(l List, prec uint) (bool, error) {
	for _, x := range l {
		expression, err := fd.Express(x, prec)
		if err != nil {
			return false, err
		}
		if expression == nil {
			return false, nil
		}
	}
	return true, nil
}

// Recognizer recognizes a number field from approximate numbers at a fixed
// precision and degree bound. A nil result with a nil error is a soft failure.
// The defining polynomial of a recognized field is monic.
type Recognizer interface {
	RecognizeField(l List, prec uint, degree int) (*FieldData, error)
}

// PSLQRecognizer recognizes fields with List.FindField
type PSLQRecognizer struct {
	// Logger receives a debug entry for each soft failure; nil disables
	// logging
	Logger *zap.Logger
}

// RecognizeField implements Recognizer
func (r PSLQRecognizer) RecognizeField(l List, prec uint, degree int) (*FieldData, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return l.findField(prec, degree, logger)
}
