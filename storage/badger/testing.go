package badger

// NewMemoryStore creates in-memory repositories for testing.
// Returns property, vector, and session repositories plus the backend.
// Caller must close the backend when done.
func NewMemoryStore() (*PropertyRepository, *VectorRepository, *SessionRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return NewPropertyRepository(backend),
		NewVectorRepository(backend),
		NewSessionRepository(backend),
		backend,
		nil
}
