package respond

import "errors"

var (
	// ErrSearchEngineRequired is returned when a search engine is not provided.
	ErrSearchEngineRequired = errors.New("search engine required")

	// ErrSessionManagerRequired is returned when a session manager is not provided.
	ErrSessionManagerRequired = errors.New("session manager required")

	// ErrChatModelRequired is returned when a chat model is not provided.
	ErrChatModelRequired = errors.New("chat model required")

	// ErrEmptyMessage is returned when the user message is empty.
	// This is a caller input error and is surfaced, not degraded.
	ErrEmptyMessage = errors.New("message required")
)
