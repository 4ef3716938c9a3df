// Copyright (c) 2023 Colin McRae

// Package store persists manifold records in a SQLite database: a summary and
// rendered report per manifold, and the log of recognition attempts, which
// can be loaded back to skip attempts known to fail.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/predrag3141/arithinv/approx"
	"github.com/predrag3141/arithinv/escalation"
	"github.com/predrag3141/arithinv/invariants"
)

// ErrNotFound is returned when no manifold has the requested name or ID
var ErrNotFound = errors.New("store: manifold not found")

const schema = `
CREATE TABLE IF NOT EXISTS manifolds (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	trace_field TEXT NOT NULL DEFAULT '',
	invariant_trace_field TEXT NOT NULL DEFAULT '',
	quaternion_algebra_residue_characteristics TEXT NOT NULL DEFAULT '',
	invariant_quaternion_algebra_residue_characteristics TEXT NOT NULL DEFAULT '',
	arithmetic INTEGER,
	report TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS attempts (
	manifold_id TEXT NOT NULL REFERENCES manifolds(id),
	invariant TEXT NOT NULL,
	seq INTEGER NOT NULL,
	precision INTEGER NOT NULL,
	degree INTEGER NOT NULL,
	success INTEGER NOT NULL,
	PRIMARY KEY (manifold_id, invariant, precision, degree)
);

CREATE INDEX IF NOT EXISTS idx_attempts_manifold ON attempts(manifold_id);
`

// Summary is the stored view of a manifold record. Unknown fields and algebras
// are empty strings; Arithmetic is nil when it could not be decided.
type Summary struct {
	ID                                               uuid.UUID
	Name                                             string
	TraceField                                       string
	InvariantTraceField                              string
	QuaternionAlgebraResidueCharacteristics          string
	InvariantQuaternionAlgebraResidueCharacteristics string
	Arithmetic                                       *bool
	Report                                           string
	UpdatedAt                                        time.Time
}

// Store is a SQLite database of manifold records. It is safe for concurrent
// use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}

	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("Open: creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the summary, report and attempt log of m, replacing any record
// with the same ID or name
func (s *Store) Save(ctx context.Context, m *invariants.Manifold) error {
	summary := Summarize(m)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Store.Save: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// A record under the same name with another ID is replaced
	for _, statement := range []string{
		"DELETE FROM attempts WHERE manifold_id IN (SELECT id FROM manifolds WHERE name = ? AND id != ?)",
		"DELETE FROM manifolds WHERE name = ? AND id != ?",
	} {
		if _, err := tx.ExecContext(ctx, statement, summary.Name, summary.ID.String()); err != nil {
			return fmt.Errorf("Store.Save: %w", err)
		}
	}
	var arithmetic any
	if summary.Arithmetic != nil {
		arithmetic = *summary.Arithmetic
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO manifolds (
			id, name, trace_field, invariant_trace_field,
			quaternion_algebra_residue_characteristics,
			invariant_quaternion_algebra_residue_characteristics,
			arithmetic, report, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			trace_field = excluded.trace_field,
			invariant_trace_field = excluded.invariant_trace_field,
			quaternion_algebra_residue_characteristics = excluded.quaternion_algebra_residue_characteristics,
			invariant_quaternion_algebra_residue_characteristics =
				excluded.invariant_quaternion_algebra_residue_characteristics,
			arithmetic = excluded.arithmetic,
			report = excluded.report,
			updated_at = excluded.updated_at`,
		summary.ID.String(), summary.Name, summary.TraceField, summary.InvariantTraceField,
		summary.QuaternionAlgebraResidueCharacteristics,
		summary.InvariantQuaternionAlgebraResidueCharacteristics,
		arithmetic, summary.Report, summary.UpdatedAt,
	); err != nil {
		return fmt.Errorf("Store.Save: %s: %w", summary.Name, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM attempts WHERE manifold_id = ?", summary.ID.String()); err != nil {
		return fmt.Errorf("Store.Save: %w", err)
	}
	insert, err := tx.PrepareContext(ctx, `
		INSERT INTO attempts (manifold_id, invariant, seq, precision, degree, success)
		VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("Store.Save: %w", err)
	}
	defer insert.Close()
	for _, inv := range invariants.AllInvariants {
		for seq, attempt := range m.Record().Attempts(inv).Attempts() {
			if _, err := insert.ExecContext(
				ctx, summary.ID.String(), string(inv), seq, int64(attempt.Precision), attempt.Degree, attempt.Success,
			); err != nil {
				return fmt.Errorf("Store.Save: %s attempt %d: %w", inv, seq, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Store.Save: %w", err)
	}
	return nil
}

// Get returns the summary of the manifold named name, or an error wrapping
// ErrNotFound
func (s *Store) Get(ctx context.Context, name string) (*Summary, error) {
	row := s.db.QueryRowContext(ctx, selectSummary+" WHERE name = ?", name)
	retVal, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("Store.Get: %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Store.Get: %s: %w", name, err)
	}
	return retVal, nil
}

// List returns the summaries of all stored manifolds, ordered by name
func (s *Store) List(ctx context.Context) ([]*Summary, error) {
	rows, err := s.db.QueryContext(ctx, selectSummary+" ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("Store.List: %w", err)
	}
	defer rows.Close()
	retVal := []*Summary{}
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("Store.List: %w", err)
		}
		retVal = append(retVal, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Store.List: %w", err)
	}
	return retVal, nil
}

// Attempts returns the stored attempt logs of the manifold with the given ID,
// in the order the attempts were first made. Invariants without attempts are
// absent from the map.
func (s *Store) Attempts(ctx context.Context, id uuid.UUID) (map[invariants.Invariant]*escalation.AttemptRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT invariant, precision, degree, success FROM attempts
		WHERE manifold_id = ? ORDER BY invariant, seq`, id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("Store.Attempts: %w", err)
	}
	defer rows.Close()
	retVal := map[invariants.Invariant]*escalation.AttemptRecord{}
	for rows.Next() {
		var (
			inv       string
			precision int64
			degree    int
			success   bool
		)
		if err := rows.Scan(&inv, &precision, &degree, &success); err != nil {
			return nil, fmt.Errorf("Store.Attempts: %w", err)
		}
		record, ok := retVal[invariants.Invariant(inv)]
		if !ok {
			record = escalation.NewAttemptRecord()
			retVal[invariants.Invariant(inv)] = record
		}
		record.Record(uint(precision), degree, success)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Store.Attempts: %w", err)
	}
	return retVal, nil
}

// Summarize returns the stored view of m
func Summarize(m *invariants.Manifold) *Summary {
	record := m.Record()
	retVal := &Summary{
		ID:                  m.ID,
		Name:                m.Name,
		TraceField:          polynomialOf(record.TraceField()),
		InvariantTraceField: polynomialOf(record.InvariantTraceField()),
		QuaternionAlgebraResidueCharacteristics: residueCharacteristicsOf(
			record.QuaternionAlgebra(),
		),
		InvariantQuaternionAlgebraResidueCharacteristics: residueCharacteristicsOf(
			record.InvariantQuaternionAlgebra(),
		),
		Report:    m.Report().String(),
		UpdatedAt: time.Now().UTC(),
	}
	if arithmetic, err := m.IsArithmetic(); err == nil {
		retVal.Arithmetic = &arithmetic
	}
	return retVal
}

const selectSummary = `
	SELECT id, name, trace_field, invariant_trace_field,
		quaternion_algebra_residue_characteristics,
		invariant_quaternion_algebra_residue_characteristics,
		arithmetic, report, updated_at
	FROM manifolds`

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (*Summary, error) {
	var (
		retVal     Summary
		id         string
		arithmetic sql.NullBool
	)
	if err := row.Scan(
		&id, &retVal.Name, &retVal.TraceField, &retVal.InvariantTraceField,
		&retVal.QuaternionAlgebraResidueCharacteristics,
		&retVal.InvariantQuaternionAlgebraResidueCharacteristics,
		&arithmetic, &retVal.Report, &retVal.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("scanSummary: id %q: %w", id, err)
	}
	retVal.ID = parsed
	if arithmetic.Valid {
		retVal.Arithmetic = &arithmetic.Bool
	}
	return &retVal, nil
}

func polynomialOf(fieldData *approx.FieldData) string {
	if fieldData == nil {
		return ""
	}
	return fieldData.Field.Polynomial().String()
}

// residueCharacteristicsOf formats the residue characteristics of the finite
// ramification of qa as "[2, 3]", or "" if qa is unknown
func residueCharacteristicsOf(qa *invariants.QuaternionAlgebraInvariant) string {
	if qa == nil {
		return ""
	}
	parts := make([]string, len(qa.ResidueCharacteristics))
	for i, p := range qa.ResidueCharacteristics {
		parts[i] = p.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
