// Copyright (c) 2023 Colin McRae

package holonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predrag3141/arithinv/approx"
	"github.com/predrag3141/arithinv/bignumber"
	"github.com/predrag3141/arithinv/numfield"
	"github.com/predrag3141/arithinv/poly"
)

// figureEight returns the holonomy group of the figure-eight knot complement,
// generated by [[1, 1], [0, 1]] and [[1, 0], [-w, 1]] with w^2 + w + 1 = 0
func figureEight(t *testing.T) *ExactGroup {
	field := numfield.MustNewField("z", poly.MustParse("z^2 + z + 1"), bignumber.NewFromFloat64(-0.5, 0.866, 64))
	parse := func(s string) *numfield.Element {
		x, err := field.ParseElement(s)
		require.NoError(t, err)
		return x
	}
	group, err := NewExactGroup(field, []ExactMatrix{
		{parse("1"), parse("1"), parse("0"), parse("1")},
		{parse("1"), parse("0"), parse("-z"), parse("1")},
	})
	require.NoError(t, err)
	return group
}

func TestWord(t *testing.T) {
	assert.Equal(t, Word("BcA"), Word("aCb").Inverse())
	assert.Equal(t, Word("ab"), Word("abcC").Reduce())
	assert.Equal(t, Word(""), Word("aBbA").Reduce())
	assert.Equal(t, Word("aabbAA"), Word("abA").Substitute(2))
	assert.Equal(t, Word("abAB"), Commutator("a", "b"))
	assert.NoError(t, Word("abAB").Validate(2))
	assert.Error(t, Word("abc").Validate(2))
	assert.Error(t, Word("a1").Validate(2))

	words := ReducedWords(2, 2)
	assert.Equal(t, []Word{
		"a", "b", "A", "B",
		"aa", "ab", "aB", "ba", "bb", "bA", "Ab", "AA", "AB", "Ba", "BA", "BB",
	}, words)
	for _, w := range ReducedWords(3, 3) {
		assert.Equal(t, w, w.Reduce())
	}
	assert.Len(t, ReducedWords(3, 3), 6+30+150)
}

func TestMatrix(t *testing.T) {
	const prec = 100
	m := NewMatrix(
		bignumber.NewFromInt64(2, prec), bignumber.NewFromFloat64(0, 1, prec),
		bignumber.NewFromInt64(3, prec), bignumber.NewFromInt64(5, prec),
	)
	det := m.Det()
	assert.True(t, det.Equals(bignumber.NewFromFloat64(10, -3, prec), bignumber.PowerOfTwo(-90, prec)))
	assert.True(t, m.Trace().Equals(bignumber.NewFromInt64(7, prec), bignumber.PowerOfTwo(-90, prec)))

	inverse, err := m.Inverse()
	require.NoError(t, err)
	product := m.Mul(inverse)
	identity := Identity(prec)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			actual, err := product.Entry(i, j)
			require.NoError(t, err)
			expected, err := identity.Entry(i, j)
			require.NoError(t, err)
			assert.True(t, actual.Equals(expected, bignumber.PowerOfTwo(-90, prec)), "entry (%d, %d)", i, j)
		}
	}
	_, err = m.Entry(2, 0)
	assert.Error(t, err)

	singular := NewMatrix(
		bignumber.NewFromInt64(1, prec), bignumber.NewFromInt64(2, prec),
		bignumber.NewFromInt64(2, prec), bignumber.NewFromInt64(4, prec),
	)
	_, err = singular.Inverse()
	assert.Error(t, err)
}

func TestExactGroup(t *testing.T) {
	group := figureEight(t)
	assert.Equal(t, 2, group.NumGenerators())
	for _, tc := range []struct {
		word  Word
		trace string
	}{
		{word: "", trace: "2"},
		{word: "a", trace: "2"},
		{word: "B", trace: "2"},
		{word: "ab", trace: "-z + 2"},
		{word: "aba", trace: "-2*z + 2"},
		{word: "aabb", trace: "-4*z + 2"},
		{word: Commutator("ab", "a"), trace: "-z + 1"},
		{word: "abAB", trace: "-z + 1"},
	} {
		trace, err := group.Trace(tc.word)
		require.NoError(t, err, tc.word)
		assert.Equal(t, tc.trace, trace.String(), tc.word)

		// The numerical trace agrees with the exact one
		const prec = 200
		expected, err := trace.Evaluate(prec)
		require.NoError(t, err)
		m, err := group.Evaluate(tc.word, prec)
		require.NoError(t, err)
		assert.True(t, m.Trace().Equals(expected, bignumber.PowerOfTwo(-190, prec)), tc.word)
	}
	_, err := group.Evaluate("c", 100)
	assert.Error(t, err)

	// A group of a field without an embedding cannot be evaluated
	bare := numfield.MustNewField("z", poly.MustParse("z^2 + 1"), nil)
	_, err = NewExactGroup(bare, nil)
	assert.ErrorIs(t, err, numfield.ErrNoEmbedding)

	// Singular generators are rejected
	field := group.Field()
	_, err = NewExactGroup(field, []ExactMatrix{
		{field.FromInt64(1), field.FromInt64(2), field.FromInt64(2), field.FromInt64(4)},
	})
	assert.Error(t, err)
}

func TestNumericalGroup(t *testing.T) {
	exact := figureEight(t)
	calls := 0
	numerical := NewNumericalGroup(2, func(prec uint) ([]*Matrix, error) {
		calls++
		a, err := exact.Evaluate("a", prec)
		if err != nil {
			return nil, err
		}
		b, err := exact.Evaluate("b", prec)
		if err != nil {
			return nil, err
		}
		return []*Matrix{a, b}, nil
	})
	const prec = 150
	for _, w := range []Word{"ab", "AbaB", "bbA"} {
		expected, err := exact.Evaluate(w, prec)
		require.NoError(t, err)
		actual, err := numerical.Evaluate(w, prec)
		require.NoError(t, err)
		assert.Equal(t, uint(prec), actual.Prec())
		assert.True(t, actual.Trace().Equals(expected.Trace(), bignumber.PowerOfTwo(-140, prec)), w)
	}
	assert.Equal(t, 3, calls)

	wrongCount := NewNumericalGroup(3, func(prec uint) ([]*Matrix, error) {
		return []*Matrix{Identity(prec)}, nil
	})
	_, err := wrongCount.Evaluate("a", 100)
	assert.Error(t, err)
}

func TestTraceFieldWords(t *testing.T) {
	assert.Equal(t, []Word{"a", "b", "ab"}, TraceFieldWords(2))
	assert.Equal(t, []Word{"a", "b", "c", "ab", "ac", "bc", "abc"}, TraceFieldWords(3))
	assert.Equal(t, []Word{"aa", "bb", "aabb"}, InvariantTraceFieldWords(2))
}

func TestTraceFieldGenerators(t *testing.T) {
	group := figureEight(t)
	const prec = 200

	// The traces 2, 2 and 2 - w generate Q(w), reduced to the field of
	// z = w + 1
	fieldData, err := TraceFieldGenerators(group).FindField(prec, 4)
	require.NoError(t, err)
	require.NotNil(t, fieldData)
	assert.Equal(t, "x^2 - x + 1", fieldData.Field.Polynomial().String())
	assert.Equal(t, "-3", fieldData.Field.Discriminant().RatString())
	require.Len(t, fieldData.Generators, 3)
	assert.Equal(t, "2", fieldData.Generators[0].String())
	assert.Equal(t, "-z + 3", fieldData.Generators[2].String())

	// The traces 2, 2 and 2 - 4w generate the same field
	fieldData, err = InvariantTraceFieldGenerators(group).FindField(prec, 4)
	require.NoError(t, err)
	require.NotNil(t, fieldData)
	assert.Equal(t, "x^2 - x + 1", fieldData.Field.Polynomial().String())
	assert.Equal(t, "-4*z + 6", fieldData.Generators[2].String())
}

func TestFindHilbertSymbolWords(t *testing.T) {
	group := figureEight(t)
	g, h, err := FindHilbertSymbolWords(group, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, Word("ab"), g)
	assert.Equal(t, Word("a"), h)

	g, h, err = FindHilbertSymbolWords(group, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, Word("aabb"), g)
	assert.Equal(t, Word("aa"), h)

	_, _, err = FindHilbertSymbolWords(group, 0, 100)
	assert.Error(t, err)

	// An abelian group of parabolics has no such words
	field := group.Field()
	parabolic, err := NewExactGroup(field, []ExactMatrix{
		{field.FromInt64(1), field.FromInt64(1), field.FromInt64(0), field.FromInt64(1)},
	})
	require.NoError(t, err)
	_, _, err = FindHilbertSymbolWords(parabolic, 1, 100)
	assert.ErrorIs(t, err, ErrNoHilbertSymbolWords)
	_, _, err = ApproximateHilbertSymbol(parabolic, 1, 100)
	assert.ErrorIs(t, err, ErrNoHilbertSymbolWords)
}

func TestApproximateHilbertSymbol(t *testing.T) {
	group := figureEight(t)
	const prec = 200
	first, second, err := ApproximateHilbertSymbol(group, 1, 100)
	require.NoError(t, err)

	// tr(ab)^2 - 4 = -5w - 1 and tr[ab, a] - 2 = -w - 1
	for _, tc := range []struct {
		actual   *approx.Number
		expected string
	}{
		{actual: first, expected: "-5*z - 1"},
		{actual: second, expected: "-z - 1"},
	} {
		value, err := tc.actual.Evaluate(prec)
		require.NoError(t, err)
		x, err := group.Field().ParseElement(tc.expected)
		require.NoError(t, err)
		expected, err := x.Evaluate(prec)
		require.NoError(t, err)
		assert.True(t, value.Equals(expected, bignumber.PowerOfTwo(-180, prec)), tc.expected)
	}
}
