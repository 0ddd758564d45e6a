package badger

import (
	"context"

	"github.com/crestline/leasebot/core"
	"github.com/crestline/leasebot/storage"
)

// SessionRepository implements storage.SessionRepository for BadgerDB.
type SessionRepository struct {
	backend *Backend
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(backend *Backend) *SessionRepository {
	return &SessionRepository{backend: backend}
}

// GetSession retrieves a session by ID.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (*core.ChatSession, error) {
	doc, err := r.backend.Get(ctx, makeSessionKey(id))
	if err != nil {
		return nil, err
	}
	return storage.UnmarshalSession(doc)
}

// PutSession stores or replaces a session. Sessions are written whole: a
// reader never observes a partially appended message list.
func (r *SessionRepository) PutSession(ctx context.Context, session *core.ChatSession) error {
	doc, err := storage.MarshalSession(session)
	if err != nil {
		return err
	}
	return r.backend.Set(ctx, makeSessionKey(session.ID), doc)
}

// DeleteSession removes a session.
func (r *SessionRepository) DeleteSession(ctx context.Context, id string) error {
	return r.backend.Delete(ctx, makeSessionKey(id))
}
