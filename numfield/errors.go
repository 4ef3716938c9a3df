// Copyright (c) 2023 Colin McRae

package numfield

import "errors"

var (
	// ErrNoEmbedding is returned when an operation needs the distinguished
	// complex embedding of a field that has none
	ErrNoEmbedding = errors.New("numfield: field has no distinguished embedding")

	// ErrUnresolvedPlace is returned when a local computation at a prime
	// cannot be completed, e.g. when no p-maximal monogenic order is found
	ErrUnresolvedPlace = errors.New("numfield: local computation at a prime could not be completed")

	// ErrNotInvertible is returned when inverting zero
	ErrNotInvertible = errors.New("numfield: element is not invertible")

	// ErrReducible is returned when the defining polynomial of a field turns
	// out not to be irreducible
	ErrReducible = errors.New("numfield: defining polynomial is reducible")
)
