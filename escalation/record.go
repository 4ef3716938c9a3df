// Copyright (c) 2023 Colin McRae

package escalation

import (
	"sync"
)

// Key identifies one attempt of an escalating computation
type Key struct {
	Precision uint
	Degree    int
}

// Attempt is the outcome of the attempt at Key
type Attempt struct {
	Key
	Success bool
}

// AttemptRecord is an append-only log of attempts, keyed by (precision,
// degree). Recording a key again overwrites its outcome but keeps its place in
// the log. It is safe for concurrent use.
type AttemptRecord struct {
	mu       sync.Mutex
	outcomes map[Key]bool
	order    []Key
}

// NewAttemptRecord returns an empty record
func NewAttemptRecord() *AttemptRecord {
	return &AttemptRecord{outcomes: map[Key]bool{}}
}

// Record records the outcome of the attempt at (prec, degree)
func (ar *AttemptRecord) Record(prec uint, degree int, success bool) {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	key := Key{Precision: prec, Degree: degree}
	if _, ok := ar.outcomes[key]; !ok {
		ar.order = append(ar.order, key)
	}
	ar.outcomes[key] = success
}

// Lookup returns the outcome recorded for (prec, degree) and whether there is
// one
func (ar *AttemptRecord) Lookup(prec uint, degree int) (success, ok bool) {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	success, ok = ar.outcomes[Key{Precision: prec, Degree: degree}]
	return success, ok
}

// Failed reports whether the attempt at (prec, degree) is recorded as a failure
func (ar *AttemptRecord) Failed(prec uint, degree int) bool {
	success, ok := ar.Lookup(prec, degree)
	return ok && !success
}

// Attempts returns the recorded attempts in the order their keys were first
// recorded
func (ar *AttemptRecord) Attempts() []Attempt {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	retVal := make([]Attempt, len(ar.order))
	for i, key := range ar.order {
		retVal[i] = Attempt{Key: key, Success: ar.outcomes[key]}
	}
	return retVal
}

// Len returns the number of distinct keys recorded
func (ar *AttemptRecord) Len() int {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	return len(ar.order)
}
