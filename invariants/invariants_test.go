// Copyright (c) 2023 Colin McRae

package invariants

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/predrag3141/arithinv/approx"
	"github.com/predrag3141/arithinv/bignumber"
	"github.com/predrag3141/arithinv/escalation"
	"github.com/predrag3141/arithinv/holonomy"
	"github.com/predrag3141/arithinv/numfield"
	"github.com/predrag3141/arithinv/poly"
)

const (
	testPrec   = 200
	testDegree = 4
)

func eisensteinField() *numfield.Field {
	return numfield.MustNewField("z", poly.MustParse("z^2 + z + 1"), bignumber.NewFromFloat64(-0.5, 0.866, 64))
}

// exactGroup returns the group over field generated by matrices whose entries
// are given as strings
func exactGroup(t *testing.T, field *numfield.Field, generators ...[4]string) *holonomy.ExactGroup {
	matrices := make([]holonomy.ExactMatrix, len(generators))
	for i, g := range generators {
		for j, s := range g {
			x, err := field.ParseElement(s)
			require.NoError(t, err)
			matrices[i][j] = x
		}
	}
	group, err := holonomy.NewExactGroup(field, matrices)
	require.NoError(t, err)
	return group
}

// figureEight is the holonomy group of the figure-eight knot complement m004
func figureEight(t *testing.T) *holonomy.ExactGroup {
	return exactGroup(t, eisensteinField(), [4]string{"1", "1", "0", "1"}, [4]string{"1", "0", "-z", "1"})
}

func element(t *testing.T, field *numfield.Field, s string) *numfield.Element {
	x, err := field.ParseElement(s)
	require.NoError(t, err)
	return x
}

// failingRecognizer never recognizes a field and counts its calls
type failingRecognizer struct {
	calls *int
}

func (r failingRecognizer) RecognizeField(approx.List, uint, int) (*approx.FieldData, error) {
	*r.calls++
	return nil, nil
}

// fixedRecognizer always returns the same field
type fixedRecognizer struct {
	fieldData *approx.FieldData
}

func (r fixedRecognizer) RecognizeField(approx.List, uint, int) (*approx.FieldData, error) {
	return r.fieldData, nil
}

func TestFigureEightFixedPrec(t *testing.T) {
	m, err := NewManifold(context.Background(), "m004", figureEight(t))
	require.NoError(t, err)

	tf, err := m.ComputeTraceFieldFixedPrec(testPrec, testDegree)
	require.NoError(t, err)
	require.NotNil(t, tf)
	assert.Equal(t, "x^2 - x + 1", tf.Field.Polynomial().String())
	assert.Equal(t, "-3", tf.Field.Discriminant().RatString())
	assert.Equal(t, "2", tf.Generators[0].String())
	assert.Equal(t, "-z + 3", tf.Generators[2].String())
	assert.Same(t, tf, m.Record().TraceField())
	outcome, ok := m.Record().TraceFieldAttempts().Lookup(testPrec, testDegree)
	assert.True(t, ok)
	assert.True(t, outcome)

	qa, err := m.ComputeQuaternionAlgebraFixedPrec(testPrec, testDegree)
	require.NoError(t, err)
	require.NotNil(t, qa)
	a, b := qa.Algebra.HilbertSymbolEntries()
	assert.Equal(t, "-5*z + 4", a.String())
	assert.Equal(t, "-z", b.String())
	assert.Empty(t, qa.RamifiedPlaces)
	assert.Empty(t, qa.ResidueCharacteristics)
	ramified, err := qa.RamifiedRealPlaces()
	require.NoError(t, err)
	assert.Zero(t, ramified)

	itf, err := m.ComputeInvariantTraceFieldFixedPrec(testPrec, testDegree)
	require.NoError(t, err)
	require.NotNil(t, itf)
	assert.Equal(t, "x^2 - x + 1", itf.Field.Polynomial().String())
	assert.Equal(t, "-4*z + 6", itf.Generators[2].String())

	iqa, err := m.ComputeInvariantQuaternionAlgebraFixedPrec(testPrec, testDegree)
	require.NoError(t, err)
	require.NotNil(t, iqa)
	a, b = iqa.Algebra.HilbertSymbolEntries()
	assert.Equal(t, "-32*z + 16", a.String())
	assert.Equal(t, "-16*z", b.String())
	assert.Empty(t, iqa.RamifiedPlaces)
	assert.True(t, iqa.Algebra.Field().Equal(itf.Field))

	denominators, err := m.ComputeDenominatorsFixedPrec(testPrec, testDegree)
	require.NoError(t, err)
	require.NotNil(t, denominators)
	assert.True(t, denominators.IsEmpty())

	arithmetic, err := m.IsArithmetic()
	require.NoError(t, err)
	assert.True(t, arithmetic)
}

// TestCubicField covers a trace field whose defining polynomial has a
// non-maximal equation order at 2. The entries z and z/2 lie outside Z[z]
// but are integral.
func TestCubicField(t *testing.T) {
	// z = 4 - 4t for a root t of x^3 - x^2 + 1
	field := numfield.MustNewField(
		"z", poly.MustParse("z^3 - 8*z^2 + 16*z - 64"), bignumber.NewFromFloat64(0.49, 2.98, 64),
	)
	for _, tc := range []struct {
		name      string
		entry     string
		trace     string
		invariant string
	}{
		{name: "entry -z", entry: "-z", trace: "4*z - 2", invariant: "16*z - 14"},
		{name: "entry -z/2", entry: "-1/2*z", trace: "2*z", invariant: "8*z - 6"},
	} {
		group := exactGroup(t, field, [4]string{"1", "1", "0", "1"}, [4]string{"1", "0", tc.entry, "1"})
		m, err := NewManifold(context.Background(), tc.name, group)
		require.NoError(t, err, tc.name)

		tf, err := m.ComputeTraceFieldFixedPrec(testPrec, testDegree)
		require.NoError(t, err, tc.name)
		require.NotNil(t, tf, tc.name)
		assert.Equal(t, "x^3 - x^2 + 1", tf.Field.Polynomial().String(), tc.name)
		assert.Equal(t, "-23", tf.Field.Discriminant().RatString(), tc.name)
		require.Len(t, tf.Generators, 3, tc.name)
		assert.Equal(t, tc.trace, tf.Generators[2].String(), tc.name)

		itf, err := m.ComputeInvariantTraceFieldFixedPrec(testPrec, testDegree)
		require.NoError(t, err, tc.name)
		require.NotNil(t, itf, tc.name)
		assert.Equal(t, "x^3 - x^2 + 1", itf.Field.Polynomial().String(), tc.name)
		assert.Equal(t, tc.invariant, itf.Generators[2].String(), tc.name)

		qa, err := m.ComputeQuaternionAlgebraFixedPrec(testPrec, testDegree)
		require.NoError(t, err, tc.name)
		require.NotNil(t, qa, tc.name)
		iqa, err := m.ComputeInvariantQuaternionAlgebraFixedPrec(testPrec, testDegree)
		require.NoError(t, err, tc.name)
		require.NotNil(t, iqa, tc.name)
		assert.True(t, iqa.Algebra.Field().Equal(itf.Field), tc.name)

		// An even number of places ramify
		ramified, err := iqa.RamifiedRealPlaces()
		require.NoError(t, err, tc.name)
		assert.Zero(t, (len(iqa.RamifiedPlaces)+ramified)%2, tc.name)

		denominators, err := m.ComputeDenominatorsFixedPrec(testPrec, testDegree)
		require.NoError(t, err, tc.name)
		require.NotNil(t, denominators, tc.name)
		assert.True(t, denominators.IsEmpty(), tc.name)

		_, err = m.IsArithmetic()
		require.NoError(t, err, tc.name)
		assert.NotContains(t, m.Report().String(), "not found", tc.name)
	}
}

func TestFigureEightEscalation(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := escalation.Config{
		StartingPrecision:  testPrec,
		StartingDegree:     testDegree,
		PrecisionIncrement: 100,
		DegreeIncrement:    2,
		MaxPrecision:       400,
		MaxDegree:          8,
	}
	m, err := NewManifold(
		context.Background(), "m004", figureEight(t),
		WithLogger(zap.New(core)), WithInitialComputation(cfg),
	)
	require.NoError(t, err)
	for _, inv := range AllInvariants {
		assert.True(t, m.Record().Known(inv), inv)
		assert.Equal(t, 1, m.Record().Attempts(inv).Len(), inv)
	}
	assert.Equal(t, []escalation.Attempt{
		{Key: escalation.Key{Precision: testPrec, Degree: testDegree}, Success: true},
	}, m.Record().InvariantTraceFieldAttempts().Attempts())
	assert.NotZero(t, logs.FilterMessage("attempt").FilterField(zap.String("manifold", "m004")).Len())

	// Known invariants are returned without another attempt unless recomputation
	// is forced
	tf := m.Record().TraceField()
	again, err := m.ComputeTraceField(context.Background(), cfg)
	require.NoError(t, err)
	assert.Same(t, tf, again)
	assert.Equal(t, 1, m.Record().TraceFieldAttempts().Len())

	cfg.ForceRecompute = true
	cfg.StartingPrecision, cfg.MaxPrecision = 300, 300
	again, err = m.ComputeTraceField(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotSame(t, tf, again)
	assert.Equal(t, uint(300), again.Precision)
	assert.Equal(t, tf.Field.Polynomial().String(), again.Field.Polynomial().String())
	assert.Equal(t, 2, m.Record().TraceFieldAttempts().Len())
}

func TestFigureEightReport(t *testing.T) {
	m, err := NewManifold(
		context.Background(), "m004", figureEight(t),
		WithInitialComputation(escalation.FixedConfig(testPrec, testDegree)),
	)
	require.NoError(t, err)
	report := m.Report().String()
	for _, line := range []string{
		"Orbifold name: m004\n",
		"\t Signature: (0, 1)\n",
		"\t Discriminant: -3\n",
		"\t Finite Ramification: []\n",
		"\t Finite Ramification Residue Characteristic: []\n",
		"\t Real Ramification: 0 places\n",
		"Integer traces: true\n",
		"Arithmetic: true\n",
	} {
		assert.Contains(t, report, line)
	}
	assert.Contains(t, report, "Invariant Quaternion Algebra: Quaternion Algebra (-32*z + 16, -16*z)")
	assert.NotContains(t, report, "not found")
	assert.Contains(t, m.Report().Render(), "m004")
}

func TestEmptyReport(t *testing.T) {
	m, err := NewManifold(context.Background(), "m004", figureEight(t))
	require.NoError(t, err)
	assert.Equal(t, "Orbifold name: m004\n"+
		"Trace field not found.\n"+
		"Invariant trace field not found.\n"+
		"Denominators not found (trace field probably not computed)\n",
		m.Report().String(),
	)
	_, err = m.IsArithmetic()
	assert.ErrorIs(t, err, ErrMissingPrecondition)
}

func TestExhaustion(t *testing.T) {
	calls := 0
	m, err := NewManifold(
		context.Background(), "m004", figureEight(t), WithRecognizer(failingRecognizer{calls: &calls}),
	)
	require.NoError(t, err)

	tf, err := m.ComputeTraceField(context.Background(), escalation.FixedConfig(testPrec, testDegree))
	require.NoError(t, err)
	assert.Nil(t, tf)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []escalation.Attempt{
		{Key: escalation.Key{Precision: testPrec, Degree: testDegree}, Success: false},
	}, m.Record().TraceFieldAttempts().Attempts())

	// A failed fixed-precision computation is recorded and leaves the record
	// unchanged
	tf, err = m.ComputeTraceFieldFixedPrec(testPrec+100, testDegree)
	require.NoError(t, err)
	assert.Nil(t, tf)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, m.Record().TraceFieldAttempts().Len())

	// The algebra and denominators cannot be found without the trace field
	qa, err := m.ComputeQuaternionAlgebraFixedPrec(testPrec, testDegree)
	require.NoError(t, err)
	assert.Nil(t, qa)
	denominators, err := m.ComputeDenominatorsFixedPrec(testPrec, testDegree)
	require.NoError(t, err)
	assert.Nil(t, denominators)
	outcome, ok := m.Record().Attempts(Denominators).Lookup(testPrec, testDegree)
	assert.True(t, ok)
	assert.False(t, outcome)

	// Attempts known to fail are skipped
	cfg := escalation.FixedConfig(testPrec, testDegree)
	cfg.UseLastKnownFailed = true
	calls = 0
	_, err = m.ComputeTraceField(context.Background(), cfg)
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestNoHilbertSymbolWords(t *testing.T) {
	// Every element of a group of translations is parabolic
	field := eisensteinField()
	group := exactGroup(t, field, [4]string{"1", "1", "0", "1"}, [4]string{"1", "z", "0", "1"})
	rationals := &approx.FieldData{
		Field:      numfield.MustNewField("z", poly.MustParse("z - 2"), bignumber.NewFromInt64(2, 64)),
		Root:       approx.FromInt64(2),
		Generators: []*numfield.Element{},
		Precision:  testPrec,
		Degree:     1,
	}
	m, err := NewManifold(context.Background(), "translations", group, WithRecognizer(fixedRecognizer{rationals}))
	require.NoError(t, err)

	_, err = m.ComputeQuaternionAlgebraFixedPrec(testPrec, testDegree)
	assert.ErrorIs(t, err, holonomy.ErrNoHilbertSymbolWords)
	assert.Nil(t, m.Record().QuaternionAlgebra())
	assert.NotNil(t, m.Record().TraceField())

	_, err = m.ComputeQuaternionAlgebra(context.Background(), escalation.DefaultConfig())
	assert.ErrorIs(t, err, holonomy.ErrNoHilbertSymbolWords)

	// The other invariants are still computed
	err = m.ComputeArithmeticInvariants(context.Background(), escalation.FixedConfig(testPrec, testDegree))
	assert.ErrorIs(t, err, holonomy.ErrNoHilbertSymbolWords)
	assert.True(t, m.Record().Known(InvariantTraceField))
	assert.True(t, m.Record().Known(Denominators))
}

func TestCancelledComputation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m, err := NewManifold(context.Background(), "m004", figureEight(t))
	require.NoError(t, err)
	err = m.ComputeArithmeticInvariants(ctx, escalation.FixedConfig(testPrec, testDegree))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, m.Record().Known(TraceField))
}

func TestBuildQuaternionAlgebra(t *testing.T) {
	rationals := &approx.FieldData{
		Field: numfield.MustNewField("z", poly.MustParse("z - 2"), bignumber.NewFromInt64(2, 64)),
		Root:  approx.FromInt64(2),
	}
	for _, tc := range []struct {
		name                   string
		a, b                   int64
		ramifiedPlaces         string
		residueCharacteristics string
		realRamification       int
	}{
		{name: "Hamilton quaternions", a: -1, b: -1, ramifiedPlaces: "[(2)]", residueCharacteristics: "[2]", realRamification: 1},
		{name: "ramified at 3", a: -1, b: -3, ramifiedPlaces: "[(3)]", residueCharacteristics: "[3]", realRamification: 1},
		{name: "matrix algebra", a: 1, b: -1, ramifiedPlaces: "[]", residueCharacteristics: "[]", realRamification: 0},
	} {
		qa, err := BuildQuaternionAlgebra(rationals, approx.FromInt64(tc.a), approx.FromInt64(tc.b), testPrec)
		require.NoError(t, err, tc.name)
		require.NotNil(t, qa, tc.name)
		assert.Equal(t, tc.ramifiedPlaces, formatPrimes(qa.RamifiedPlaces), tc.name)
		assert.Equal(t, tc.residueCharacteristics, formatInts(qa.ResidueCharacteristics), tc.name)
		ramified, err := qa.RamifiedRealPlaces()
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.realRamification, ramified, tc.name)
		assert.Equal(t, uint(testPrec), qa.Precision, tc.name)
	}
}

func TestComputeDenominatorSet(t *testing.T) {
	gaussian := numfield.MustNewField("z", poly.MustParse("z^2 + 1"), bignumber.NewFromFloat64(0, 1, 64))
	denominators, err := ComputeDenominatorSet([]*numfield.Element{
		element(t, gaussian, "2"), element(t, gaussian, "1/3"),
		element(t, gaussian, "1/2*z + 1/2"), element(t, gaussian, "1/6"),
	})
	require.NoError(t, err)
	assert.False(t, denominators.IsEmpty())
	assert.Equal(t, "[(2, z + 1), (3)]", formatPrimes(denominators.Primes))
	assert.Equal(t, "[2, 3]", formatInts(denominators.ResidueCharacteristics))

	denominators, err = ComputeDenominatorSet([]*numfield.Element{element(t, gaussian, "3*z - 7")})
	require.NoError(t, err)
	assert.True(t, denominators.IsEmpty())
	assert.Equal(t, "[]", formatInts(denominators.ResidueCharacteristics))
}

func TestIsArithmetic(t *testing.T) {
	algebra := func(field *numfield.Field, a, b string) *QuaternionAlgebraInvariant {
		qa, err := numfield.NewQuaternionAlgebra(element(t, field, a), element(t, field, b))
		require.NoError(t, err)
		return &QuaternionAlgebraInvariant{Algebra: qa}
	}
	gaussian := numfield.MustNewField("z", poly.MustParse("z^2 + 1"), bignumber.NewFromFloat64(0, 1, 64))
	cubic := numfield.MustNewField("z", poly.MustParse("z^3 - 2"), bignumber.NewFromFloat64(1.26, 0, 64))
	realQuadratic := numfield.MustNewField("z", poly.MustParse("z^2 - 2"), bignumber.NewFromFloat64(1.414, 0, 64))
	integral := &DenominatorSet{Primes: []*numfield.PrimeIdeal{}, ResidueCharacteristics: []*big.Int{}}
	nonIntegral, err := ComputeDenominatorSet([]*numfield.Element{element(t, gaussian, "1/3")})
	require.NoError(t, err)

	for _, tc := range []struct {
		name         string
		field        *numfield.Field
		qa           *QuaternionAlgebraInvariant
		denominators *DenominatorSet
		expected     bool
	}{
		{name: "imaginary quadratic", field: gaussian, qa: algebra(gaussian, "-1", "-1"), denominators: integral, expected: true},
		{name: "non-integral traces", field: gaussian, qa: algebra(gaussian, "-1", "-1"), denominators: nonIntegral, expected: false},
		{name: "ramified at the real place", field: cubic, qa: algebra(cubic, "-1", "-1"), denominators: integral, expected: true},
		{name: "split at the real place", field: cubic, qa: algebra(cubic, "z", "-1"), denominators: integral, expected: false},
		{name: "no complex place", field: realQuadratic, qa: algebra(realQuadratic, "-1", "-1"), denominators: integral, expected: false},
	} {
		actual, err := IsArithmetic(&approx.FieldData{Field: tc.field}, tc.qa, tc.denominators)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.expected, actual, tc.name)
	}

	_, err = IsArithmetic(&approx.FieldData{Field: cubic}, algebra(gaussian, "-1", "-1"), integral)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingPrecondition)
	_, err = IsArithmetic(nil, algebra(gaussian, "-1", "-1"), integral)
	assert.ErrorIs(t, err, ErrMissingPrecondition)
	_, err = IsArithmetic(&approx.FieldData{Field: gaussian}, nil, integral)
	assert.ErrorIs(t, err, ErrMissingPrecondition)
	_, err = IsArithmetic(&approx.FieldData{Field: gaussian}, algebra(gaussian, "-1", "-1"), nil)
	assert.ErrorIs(t, err, ErrMissingPrecondition)
}
