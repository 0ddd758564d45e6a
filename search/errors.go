package search

import "errors"

var (
	// ErrPropertyRepositoryRequired is returned when a property repository is not provided.
	ErrPropertyRepositoryRequired = errors.New("property repository required")

	// ErrVectorRepositoryRequired is returned when a vector repository is not provided.
	ErrVectorRepositoryRequired = errors.New("vector repository required")
)
