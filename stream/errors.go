package stream

import "errors"

var (
	// ErrOrchestratorRequired is returned when an orchestrator is not provided.
	ErrOrchestratorRequired = errors.New("orchestrator required")

	// ErrSessionManagerRequired is returned when a session manager is not provided.
	ErrSessionManagerRequired = errors.New("session manager required")
)
