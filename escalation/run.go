// Copyright (c) 2023 Colin McRae

package escalation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Step is one fixed-precision attempt. found == false with a nil error is a
// soft failure that Run answers by escalating; a non-nil error aborts Run.
type Step[T any] func(prec uint, degree int) (result T, found bool, err error)

// Options identify an escalating computation for logging and metrics and
// supply the record of its attempts. Every field is optional.
type Options struct {
	Manifold  string
	Invariant string

	// Record receives every attempt. A fresh record is used when nil, in which
	// case UseLastKnownFailed has nothing to consult.
	Record *AttemptRecord

	Logger  *zap.Logger
	Metrics *Metrics
}

// Run calls step at the pairs of cfg.Schedule() in order until it succeeds.
// It returns found == false with a nil error when every pair of the schedule
// fails, meaning the result was not found within the search space, not that it
// does not exist.
//
// Each attempt is recorded in opts.Record under the exact pair used. When
// cfg.UseLastKnownFailed is set, pairs already recorded as failures are skipped
// without calling step. ctx is checked between attempts only; an attempt in
// progress runs to completion.
func Run[T any](ctx context.Context, cfg Config, opts Options, step Step[T]) (T, bool, error) {
	var zero T
	if err := cfg.Validate(); err != nil {
		return zero, false, fmt.Errorf("Run: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("manifold", opts.Manifold), zap.String("invariant", opts.Invariant))
	level := zapcore.DebugLevel
	if cfg.Verbose {
		level = zapcore.InfoLevel
	}
	record := opts.Record
	if record == nil {
		record = NewAttemptRecord()
	}

	for _, key := range cfg.Schedule() {
		if err := ctx.Err(); err != nil {
			return zero, false, fmt.Errorf("Run: %w", err)
		}
		if cfg.UseLastKnownFailed && record.Failed(key.Precision, key.Degree) {
			logger.Log(
				level, "skipping attempt recorded as failed",
				zap.Uint("precision", key.Precision), zap.Int("degree", key.Degree),
			)
			opts.Metrics.observeSkip(opts.Invariant)
			continue
		}

		start := time.Now()
		result, found, err := step(key.Precision, key.Degree)
		elapsed := time.Since(start)
		if err != nil {
			return zero, false, fmt.Errorf(
				"Run: attempt at precision %d and degree %d: %w", key.Precision, key.Degree, err,
			)
		}
		record.Record(key.Precision, key.Degree, found)
		opts.Metrics.observeAttempt(opts.Invariant, found, elapsed.Seconds())
		logger.Log(
			level, "attempt",
			zap.Uint("precision", key.Precision),
			zap.Int("degree", key.Degree),
			zap.Bool("success", found),
			zap.Duration("elapsed", elapsed),
		)
		if found {
			return result, true, nil
		}
	}
	logger.Log(
		level, "search space exhausted",
		zap.Uint("max_precision", cfg.MaxPrecision), zap.Int("max_degree", cfg.MaxDegree),
	)
	return zero, false, nil
}
