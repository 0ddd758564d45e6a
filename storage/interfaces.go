package storage

import (
	"context"

	"github.com/crestline/leasebot/core"
)

// DocumentStore provides raw document operations against a key-value backend.
// Implementations must be thread-safe and support concurrent access.
type DocumentStore interface {
	// Get retrieves the document stored under key.
	// Returns ErrNotFound if no document exists.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a document under key, replacing any existing document.
	Set(ctx context.Context, key string, doc []byte) error

	// Delete removes the document stored under key.
	// Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// ListKeysByPrefix returns every key beginning with prefix, in key order.
	ListKeysByPrefix(ctx context.Context, prefix string) ([]string, error)

	// Close closes the backend and releases resources.
	Close() error
}

// FilteredSearcher is an optional backend capability: a native filtered
// property search that returns matching property IDs. Callers must treat it
// as best-effort; absence or failure only costs performance, never
// correctness.
type FilteredSearcher interface {
	FilteredSearch(ctx context.Context, filters core.Filters) ([]string, error)
}

// PropertyRepository provides operations for managing listing records.
type PropertyRepository interface {
	// PutProperty stores or replaces a listing.
	// Returns core.ErrCorruptProperty if the record fails validation.
	PutProperty(ctx context.Context, p *core.Property) error

	// GetProperty retrieves a listing by ID.
	// Returns ErrNotFound if the listing doesn't exist.
	GetProperty(ctx context.Context, id string) (*core.Property, error)

	// ListProperties returns all stored listings.
	// Corrupt records (missing ID or name) are skipped, not returned.
	ListProperties(ctx context.Context) ([]*core.Property, error)

	// DeleteProperty removes a listing and its embedding vector.
	DeleteProperty(ctx context.Context, id string) error
}

// VectorRepository provides operations for precomputed listing embeddings.
// A listing's vector is computed once at ingestion time and reused on every
// search.
type VectorRepository interface {
	// PutVector stores the embedding vector for a listing.
	PutVector(ctx context.Context, propertyID string, vector []float32) error

	// GetVector retrieves the embedding vector for a listing.
	// Returns ErrNotFound if no vector has been computed.
	GetVector(ctx context.Context, propertyID string) ([]float32, error)

	// ListVectorIDs returns the IDs of all listings with stored vectors.
	ListVectorIDs(ctx context.Context) ([]string, error)
}

// SessionRepository provides operations for persisted chat sessions.
type SessionRepository interface {
	// GetSession retrieves a session by ID.
	// Returns ErrNotFound if the session doesn't exist.
	GetSession(ctx context.Context, id string) (*core.ChatSession, error)

	// PutSession stores or replaces a session.
	PutSession(ctx context.Context, session *core.ChatSession) error

	// DeleteSession removes a session. Used only by external management
	// calls; the core logic never deletes sessions.
	DeleteSession(ctx context.Context, id string) error
}
