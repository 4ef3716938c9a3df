// Copyright (c) 2023 Colin McRae

// Package invariants computes and records the arithmetic invariants of a
// hyperbolic 3-orbifold from its holonomy group: the trace field and invariant
// trace field, the quaternion algebras over them, the denominators of the
// traces, and whether the group is arithmetic.
//
// Each invariant has a fixed-precision computation, which tries one
// (precision, degree) pair, and an escalating one, which retries with larger
// pairs under an escalation.Config until it succeeds or the ceilings are
// reached. A successful computation overwrites the recorded invariant; a
// failed one leaves it unchanged.
package invariants

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/predrag3141/arithinv/approx"
	"github.com/predrag3141/arithinv/escalation"
	"github.com/predrag3141/arithinv/holonomy"
)

// Manifold pairs a holonomy group with the record of its invariants. A
// Manifold must be used by one goroutine at a time.
type Manifold struct {
	Name string
	ID   uuid.UUID

	source     holonomy.WitnessSource
	record     *Record
	recognizer approx.Recognizer
	logger     *zap.Logger
	metrics    *escalation.Metrics

	initialConfig *escalation.Config
}

// Option configures a Manifold
type Option func(*Manifold)

// WithLogger sets the logger for escalation progress
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manifold) {
		m.logger = logger
	}
}

// WithMetrics sets the metrics updated by escalating computations
func WithMetrics(metrics *escalation.Metrics) Option {
	return func(m *Manifold) {
		m.metrics = metrics
	}
}

// WithRecognizer replaces the PSLQ field recognizer
func WithRecognizer(recognizer approx.Recognizer) Option {
	return func(m *Manifold) {
		m.recognizer = recognizer
	}
}

// WithID sets the ID of the manifold, e.g. to match a stored record
func WithID(id uuid.UUID) Option {
	return func(m *Manifold) {
		m.ID = id
	}
}

// WithAttemptRecords seeds the attempt logs, e.g. from an earlier run, so that
// escalation.Config.UseLastKnownFailed can skip pairs known to fail
func WithAttemptRecords(attempts map[Invariant]*escalation.AttemptRecord) Option {
	return func(m *Manifold) {
		for inv, record := range attempts {
			if record != nil {
				m.record.attempts[inv] = record
			}
		}
	}
}

// WithInitialComputation makes NewManifold run ComputeArithmeticInvariants
// with cfg
func WithInitialComputation(cfg escalation.Config) Option {
	return func(m *Manifold) {
		m.initialConfig = &cfg
	}
}

// NewManifold returns a manifold named name with holonomy group src and an
// empty record
func NewManifold(ctx context.Context, name string, src holonomy.WitnessSource, opts ...Option) (*Manifold, error) {
	retVal := &Manifold{
		Name:   name,
		ID:     uuid.New(),
		source: src,
		record: newRecord(),
	}
	for _, opt := range opts {
		opt(retVal)
	}
	if retVal.logger == nil {
		retVal.logger = zap.NewNop()
	}
	if retVal.recognizer == nil {
		retVal.recognizer = approx.PSLQRecognizer{Logger: retVal.logger.With(zap.String("manifold", name))}
	}
	if retVal.initialConfig != nil {
		if err := retVal.ComputeArithmeticInvariants(ctx, *retVal.initialConfig); err != nil {
			return nil, fmt.Errorf("NewManifold: %w", err)
		}
	}
	return retVal, nil
}

// Record returns the invariants found so far
func (m *Manifold) Record() *Record {
	return m.record
}

// Source returns the holonomy group
func (m *Manifold) Source() holonomy.WitnessSource {
	return m.source
}

// ApproximateTrace returns the trace of w as an approximate algebraic number
func (m *Manifold) ApproximateTrace(w holonomy.Word) *approx.Number {
	return holonomy.ApproximateTrace(m.source, w)
}

// ApproximateHilbertSymbol returns the Hilbert symbol entries of the quaternion
// algebra (power 1) or invariant quaternion algebra (power 2), with the words
// chosen at the default starting precision. It returns an error wrapping
// holonomy.ErrNoHilbertSymbolWords if no words qualify.
func (m *Manifold) ApproximateHilbertSymbol(power int) (*approx.Number, *approx.Number, error) {
	return holonomy.ApproximateHilbertSymbol(m.source, power, escalation.DefaultStartingPrecision)
}

// ComputeTraceFieldFixedPrec tries to recognize the trace field at precision
// prec with degree at most degree, even if it is known. On success the record
// is overwritten. It returns the recorded trace field, which is nil if it has
// never been found.
func (m *Manifold) ComputeTraceFieldFixedPrec(prec uint, degree int) (*approx.FieldData, error) {
	fieldData, err := m.recognizeField(TraceField, prec, degree)
	if err != nil {
		return nil, fmt.Errorf("Manifold.ComputeTraceFieldFixedPrec: %w", err)
	}
	return fieldData, nil
}

// ComputeInvariantTraceFieldFixedPrec is ComputeTraceFieldFixedPrec for the
// invariant trace field
func (m *Manifold) ComputeInvariantTraceFieldFixedPrec(prec uint, degree int) (*approx.FieldData, error) {
	fieldData, err := m.recognizeField(InvariantTraceField, prec, degree)
	if err != nil {
		return nil, fmt.Errorf("Manifold.ComputeInvariantTraceFieldFixedPrec: %w", err)
	}
	return fieldData, nil
}

// ComputeQuaternionAlgebraFixedPrec tries to build the quaternion algebra over
// the trace field at precision prec, even if it is known. If the trace field is
// not known, it is first computed at (prec, degree); if that fails, so does
// this. On success the record is overwritten. It returns the recorded algebra,
// which is nil if it has never been found, and an error wrapping
// holonomy.ErrNoHilbertSymbolWords if the Hilbert symbol words do not exist.
func (m *Manifold) ComputeQuaternionAlgebraFixedPrec(prec uint, degree int) (*QuaternionAlgebraInvariant, error) {
	qa, err := m.buildAlgebra(QuaternionAlgebra, prec, degree)
	if err != nil {
		return nil, fmt.Errorf("Manifold.ComputeQuaternionAlgebraFixedPrec: %w", err)
	}
	return qa, nil
}

// ComputeInvariantQuaternionAlgebraFixedPrec is
// ComputeQuaternionAlgebraFixedPrec for the invariant quaternion algebra, which
// is built over the invariant trace field
func (m *Manifold) ComputeInvariantQuaternionAlgebraFixedPrec(
	prec uint, degree int,
) (*QuaternionAlgebraInvariant, error) {
	qa, err := m.buildAlgebra(InvariantQuaternionAlgebra, prec, degree)
	if err != nil {
		return nil, fmt.Errorf("Manifold.ComputeInvariantQuaternionAlgebraFixedPrec: %w", err)
	}
	return qa, nil
}

// ComputeDenominatorsFixedPrec computes the denominator set from the trace
// field generators, even if it is known. If the trace field is not known, it
// is first computed at (prec, degree), and if that fails the denominators stay
// unknown. It returns the recorded denominators, or nil.
func (m *Manifold) ComputeDenominatorsFixedPrec(prec uint, degree int) (*DenominatorSet, error) {
	found, err := m.denominatorsAt(prec, degree)
	if err != nil {
		return nil, fmt.Errorf("Manifold.ComputeDenominatorsFixedPrec: %w", err)
	}
	m.record.attempts[Denominators].Record(prec, degree, found)
	return m.record.denominators, nil
}

// ComputeTraceField escalates ComputeTraceFieldFixedPrec under cfg. If the
// trace field is known and cfg.ForceRecompute is false, it is returned without
// any work. It returns nil and no error if the trace field is not found within
// the search space of cfg.
func (m *Manifold) ComputeTraceField(ctx context.Context, cfg escalation.Config) (*approx.FieldData, error) {
	if err := m.escalate(ctx, cfg, TraceField, func(prec uint, degree int) (bool, error) {
		fieldData, err := m.recognizeFieldOnce(TraceField, prec, degree)
		return fieldData != nil, err
	}); err != nil {
		return nil, fmt.Errorf("Manifold.ComputeTraceField: %w", err)
	}
	return m.record.traceField, nil
}

// ComputeInvariantTraceField escalates ComputeInvariantTraceFieldFixedPrec
// under cfg, as ComputeTraceField does
func (m *Manifold) ComputeInvariantTraceField(ctx context.Context, cfg escalation.Config) (*approx.FieldData, error) {
	if err := m.escalate(ctx, cfg, InvariantTraceField, func(prec uint, degree int) (bool, error) {
		fieldData, err := m.recognizeFieldOnce(InvariantTraceField, prec, degree)
		return fieldData != nil, err
	}); err != nil {
		return nil, fmt.Errorf("Manifold.ComputeInvariantTraceField: %w", err)
	}
	return m.record.invariantTraceField, nil
}

// ComputeQuaternionAlgebra escalates ComputeQuaternionAlgebraFixedPrec under
// cfg, as ComputeTraceField does. Missing Hilbert symbol words end the
// escalation with an error.
func (m *Manifold) ComputeQuaternionAlgebra(
	ctx context.Context, cfg escalation.Config,
) (*QuaternionAlgebraInvariant, error) {
	if err := m.escalate(ctx, cfg, QuaternionAlgebra, func(prec uint, degree int) (bool, error) {
		qa, err := m.buildAlgebraOnce(QuaternionAlgebra, prec, degree)
		return qa != nil, err
	}); err != nil {
		return nil, fmt.Errorf("Manifold.ComputeQuaternionAlgebra: %w", err)
	}
	return m.record.quaternionAlgebra, nil
}

// ComputeInvariantQuaternionAlgebra escalates
// ComputeInvariantQuaternionAlgebraFixedPrec under cfg, as ComputeTraceField
// does
func (m *Manifold) ComputeInvariantQuaternionAlgebra(
	ctx context.Context, cfg escalation.Config,
) (*QuaternionAlgebraInvariant, error) {
	if err := m.escalate(ctx, cfg, InvariantQuaternionAlgebra, func(prec uint, degree int) (bool, error) {
		qa, err := m.buildAlgebraOnce(InvariantQuaternionAlgebra, prec, degree)
		return qa != nil, err
	}); err != nil {
		return nil, fmt.Errorf("Manifold.ComputeInvariantQuaternionAlgebra: %w", err)
	}
	return m.record.invariantQuaternionAlgebra, nil
}

// ComputeDenominators escalates ComputeDenominatorsFixedPrec under cfg, as
// ComputeTraceField does
func (m *Manifold) ComputeDenominators(ctx context.Context, cfg escalation.Config) (*DenominatorSet, error) {
	if err := m.escalate(ctx, cfg, Denominators, m.denominatorsAt); err != nil {
		return nil, fmt.Errorf("Manifold.ComputeDenominators: %w", err)
	}
	return m.record.denominators, nil
}

// ComputeArithmeticInvariants computes, under cfg, each of the trace field,
// quaternion algebra, invariant trace field and invariant quaternion algebra
// that is not known (or all of them if cfg.ForceRecompute is set), and then
// the denominators if the trace field is known. An error computing one
// invariant does not stop the others; all errors are returned joined.
func (m *Manifold) ComputeArithmeticInvariants(ctx context.Context, cfg escalation.Config) error {
	var errs []error
	for _, compute := range []func(context.Context, escalation.Config) error{
		func(ctx context.Context, cfg escalation.Config) error {
			_, err := m.ComputeTraceField(ctx, cfg)
			return err
		},
		func(ctx context.Context, cfg escalation.Config) error {
			_, err := m.ComputeQuaternionAlgebra(ctx, cfg)
			return err
		},
		func(ctx context.Context, cfg escalation.Config) error {
			_, err := m.ComputeInvariantTraceField(ctx, cfg)
			return err
		},
		func(ctx context.Context, cfg escalation.Config) error {
			_, err := m.ComputeInvariantQuaternionAlgebra(ctx, cfg)
			return err
		},
	} {
		if err := compute(ctx, cfg); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("Manifold.ComputeArithmeticInvariants: %w", err)
			}
			errs = append(errs, err)
		}
	}
	if m.record.traceField != nil {
		if _, err := m.ComputeDenominators(ctx, cfg); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("Manifold.ComputeArithmeticInvariants: %w", err)
	}
	return nil
}

// IsArithmetic applies IsArithmetic to the recorded invariants
func (m *Manifold) IsArithmetic() (bool, error) {
	retVal, err := IsArithmetic(
		m.record.invariantTraceField, m.record.invariantQuaternionAlgebra, m.record.denominators,
	)
	if err != nil {
		return false, fmt.Errorf("Manifold.IsArithmetic: %w", err)
	}
	return retVal, nil
}

// escalate runs step under cfg unless inv is known and cfg.ForceRecompute is
// false. step reports whether it found inv; Run records each attempt.
func (m *Manifold) escalate(
	ctx context.Context, cfg escalation.Config, inv Invariant, step func(uint, int) (bool, error),
) error {
	if m.record.Known(inv) && !cfg.ForceRecompute {
		return nil
	}
	_, _, err := escalation.Run(ctx, cfg, escalation.Options{
		Manifold:  m.Name,
		Invariant: string(inv),
		Record:    m.record.attempts[inv],
		Logger:    m.logger,
		Metrics:   m.metrics,
	}, func(prec uint, degree int) (struct{}, bool, error) {
		found, err := step(prec, degree)
		return struct{}{}, found, err
	})
	return err
}

// recognizeField is recognizeFieldOnce with the attempt recorded
func (m *Manifold) recognizeField(inv Invariant, prec uint, degree int) (*approx.FieldData, error) {
	fieldData, err := m.recognizeFieldOnce(inv, prec, degree)
	if err != nil {
		return nil, err
	}
	m.record.attempts[inv].Record(prec, degree, fieldData != nil)
	return m.fieldOf(inv), nil
}

// recognizeFieldOnce recognizes the trace field or invariant trace field at
// (prec, degree), stores it on success and returns what it found
func (m *Manifold) recognizeFieldOnce(inv Invariant, prec uint, degree int) (*approx.FieldData, error) {
	var generators approx.List
	switch inv {
	case TraceField:
		generators = holonomy.TraceFieldGenerators(m.source)
	case InvariantTraceField:
		generators = holonomy.InvariantTraceFieldGenerators(m.source)
	default:
		return nil, fmt.Errorf("recognizeFieldOnce: %s is not a field", inv)
	}
	fieldData, err := m.recognizer.RecognizeField(generators, prec, degree)
	if err != nil {
		return nil, fmt.Errorf("recognizing the %s: %w", inv, err)
	}
	if fieldData == nil {
		return nil, nil
	}
	if inv == TraceField {
		m.record.traceField = fieldData
	} else {
		m.record.invariantTraceField = fieldData
	}
	return fieldData, nil
}

// buildAlgebra is buildAlgebraOnce with the attempt recorded
func (m *Manifold) buildAlgebra(inv Invariant, prec uint, degree int) (*QuaternionAlgebraInvariant, error) {
	qa, err := m.buildAlgebraOnce(inv, prec, degree)
	if err != nil {
		return nil, err
	}
	m.record.attempts[inv].Record(prec, degree, qa != nil)
	if inv == QuaternionAlgebra {
		return m.record.quaternionAlgebra, nil
	}
	return m.record.invariantQuaternionAlgebra, nil
}

// buildAlgebraOnce builds the quaternion algebra (power 1, over the trace
// field) or the invariant quaternion algebra (power 2, over the invariant trace
// field) at (prec, degree), stores it on success and returns what it built
func (m *Manifold) buildAlgebraOnce(inv Invariant, prec uint, degree int) (*QuaternionAlgebraInvariant, error) {
	fieldInvariant, power := TraceField, 1
	if inv == InvariantQuaternionAlgebra {
		fieldInvariant, power = InvariantTraceField, 2
	}
	fieldData := m.fieldOf(fieldInvariant)
	if fieldData == nil {
		var err error
		if fieldData, err = m.recognizeField(fieldInvariant, prec, degree); err != nil {
			return nil, err
		}
		if fieldData == nil {
			return nil, nil
		}
	}
	first, second, err := holonomy.ApproximateHilbertSymbol(m.source, power, prec)
	if err != nil {
		return nil, fmt.Errorf("building the %s: %w", inv, err)
	}
	qa, err := BuildQuaternionAlgebra(fieldData, first, second, prec)
	if err != nil {
		return nil, fmt.Errorf("building the %s: %w", inv, err)
	}
	if qa == nil {
		return nil, nil
	}
	if inv == QuaternionAlgebra {
		m.record.quaternionAlgebra = qa
	} else {
		m.record.invariantQuaternionAlgebra = qa
	}
	return qa, nil
}

// denominatorsAt computes the denominators from the trace field generators,
// recognizing the trace field at (prec, degree) if it is not known, and
// reports whether it succeeded
func (m *Manifold) denominatorsAt(prec uint, degree int) (bool, error) {
	fieldData := m.record.traceField
	if fieldData == nil {
		var err error
		if fieldData, err = m.recognizeField(TraceField, prec, degree); err != nil {
			return false, err
		}
		if fieldData == nil {
			return false, nil
		}
	}
	denominators, err := ComputeDenominatorSet(fieldData.Generators)
	if err != nil {
		return false, fmt.Errorf("computing the denominators: %w", err)
	}
	m.record.denominators = denominators
	return true, nil
}

func (m *Manifold) fieldOf(inv Invariant) *approx.FieldData {
	if inv == TraceField {
		return m.record.traceField
	}
	return m.record.invariantTraceField
}
