package session

import "errors"

var (
	// ErrSessionRepositoryRequired is returned when a session repository is not provided.
	ErrSessionRepositoryRequired = errors.New("session repository required")

	// ErrSessionIDRequired is returned when an operation needs a session ID
	// and none was given.
	ErrSessionIDRequired = errors.New("session ID required")
)
