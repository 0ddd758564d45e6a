package core

import "errors"

// Domain validation errors
var (
	// ErrCorruptProperty indicates a Property record failed validation.
	ErrCorruptProperty = errors.New("corrupt property record")

	// ErrMissingID indicates the ID field is empty.
	ErrMissingID = errors.New("property id cannot be empty")

	// ErrMissingName indicates the Name field is empty.
	ErrMissingName = errors.New("property name cannot be empty")

	// ErrInvalidSession indicates a ChatSession failed validation.
	ErrInvalidSession = errors.New("invalid chat session")

	// ErrInvalidRole indicates a message role is neither user nor assistant.
	ErrInvalidRole = errors.New("invalid message role")
)
