// Copyright (c) 2023 Colin McRae

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predrag3141/arithinv/bignumber"
	"github.com/predrag3141/arithinv/escalation"
	"github.com/predrag3141/arithinv/holonomy"
	"github.com/predrag3141/arithinv/invariants"
	"github.com/predrag3141/arithinv/numfield"
	"github.com/predrag3141/arithinv/poly"
)

func figureEight(t *testing.T) *holonomy.ExactGroup {
	field := numfield.MustNewField("z", poly.MustParse("z^2 + z + 1"), bignumber.NewFromFloat64(-0.5, 0.866, 64))
	parse := func(s string) *numfield.Element {
		x, err := field.ParseElement(s)
		require.NoError(t, err)
		return x
	}
	group, err := holonomy.NewExactGroup(field, []holonomy.ExactMatrix{
		{parse("1"), parse("1"), parse("0"), parse("1")},
		{parse("1"), parse("0"), parse("-z"), parse("1")},
	})
	require.NoError(t, err)
	return group
}

func openStore(t *testing.T) *Store {
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "db", "arithinv.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, s.Close())
	})
	return s
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	m, err := invariants.NewManifold(ctx, "m004", figureEight(t))
	require.NoError(t, err)
	_, err = m.ComputeTraceFieldFixedPrec(200, 4)
	require.NoError(t, err)
	m.Record().TraceFieldAttempts().Record(100, 2, false)
	m.Record().Attempts(invariants.InvariantTraceField).Record(100, 2, false)
	require.NoError(t, s.Save(ctx, m))

	summary, err := s.Get(ctx, "m004")
	require.NoError(t, err)
	assert.Equal(t, m.ID, summary.ID)
	assert.Equal(t, "x^2 - x + 1", summary.TraceField)
	assert.Empty(t, summary.InvariantTraceField)
	assert.Empty(t, summary.QuaternionAlgebraResidueCharacteristics)
	assert.Nil(t, summary.Arithmetic)
	assert.Equal(t, m.Report().String(), summary.Report)
	assert.False(t, summary.UpdatedAt.IsZero())

	attempts, err := s.Attempts(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	if diff := cmp.Diff([]escalation.Attempt{
		{Key: escalation.Key{Precision: 200, Degree: 4}, Success: true},
		{Key: escalation.Key{Precision: 100, Degree: 2}, Success: false},
	}, attempts[invariants.TraceField].Attempts()); diff != "" {
		t.Errorf("trace field attempts (-want +got):\n%s", diff)
	}
	assert.True(t, attempts[invariants.InvariantTraceField].Failed(100, 2))

	_, err = s.Get(ctx, "m003")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResumeFromStoredAttempts(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	m, err := invariants.NewManifold(ctx, "m004", figureEight(t))
	require.NoError(t, err)
	m.Record().TraceFieldAttempts().Record(200, 4, false)
	require.NoError(t, s.Save(ctx, m))

	attempts, err := s.Attempts(ctx, m.ID)
	require.NoError(t, err)
	resumed, err := invariants.NewManifold(
		ctx, "m004", figureEight(t), invariants.WithID(m.ID), invariants.WithAttemptRecords(attempts),
	)
	require.NoError(t, err)
	cfg := escalation.FixedConfig(200, 4)
	cfg.UseLastKnownFailed = true
	tf, err := resumed.ComputeTraceField(ctx, cfg)
	require.NoError(t, err)
	assert.Nil(t, tf)
	assert.Equal(t, 1, resumed.Record().TraceFieldAttempts().Len())
}

func TestReplace(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	first, err := invariants.NewManifold(ctx, "m004", figureEight(t))
	require.NoError(t, err)
	first.Record().TraceFieldAttempts().Record(100, 2, false)
	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, first))

	second, err := invariants.NewManifold(ctx, "m004", figureEight(t))
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, second))
	other, err := invariants.NewManifold(ctx, "m003", figureEight(t))
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, other))

	summaries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "m003", summaries[0].Name)
	assert.Equal(t, second.ID, summaries[1].ID)

	attempts, err := s.Attempts(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, attempts)
}
