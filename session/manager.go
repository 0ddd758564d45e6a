package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/crestline/leasebot/core"
	"github.com/crestline/leasebot/storage"
	"github.com/google/uuid"
)

// Manager provides get-or-create and append-only updates over chat
// sessions. Safe for concurrent use by overlapping requests.
type Manager struct {
	repo   storage.SessionRepository
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
	// ephemeral holds sessions whose persistence failed. They keep
	// accumulating turns in memory so the conversation isn't lost while
	// the store is down.
	ephemeral map[string]*core.ChatSession
}

// Option configures a Manager.
type Option func(*Manager) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// WithClock injects a time source. Used by tests for deterministic
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) error {
		if now != nil {
			m.now = now
		}
		return nil
	}
}

// NewManager creates a session manager backed by repo.
func NewManager(repo storage.SessionRepository, opts ...Option) (*Manager, error) {
	if repo == nil {
		return nil, ErrSessionRepositoryRequired
	}

	m := &Manager{
		repo:      repo,
		logger:    slog.Default().With("component", "session"),
		now:       time.Now,
		ephemeral: make(map[string]*core.ChatSession),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// NewSessionID mints a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// GetOrCreate returns the session for id, creating and persisting an
// empty one if none exists. An empty id mints a new session.
func (m *Manager) GetOrCreate(ctx context.Context, id string) (*core.ChatSession, error) {
	if id == "" {
		id = NewSessionID()
	}

	m.mu.Lock()
	if s, ok := m.ephemeral[id]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	s, err := m.repo.GetSession(ctx, id)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		m.logger.Warn("session lookup failed, starting ephemeral session", "sessionID", id, "err", err)
	}

	now := m.now()
	s = &core.ChatSession{
		ID:        id,
		Messages:  []core.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.Persist(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Append adds a message to the session and persists the result. The
// message list only grows; callers append the user message of a turn
// before its assistant message.
func (m *Manager) Append(ctx context.Context, s *core.ChatSession, role core.Role, content string) error {
	if s == nil || s.ID == "" {
		return core.ErrInvalidSession
	}

	msg := core.Message{
		Role:      role,
		Content:   content,
		Timestamp: m.now(),
	}
	if err := core.ValidateMessage(msg); err != nil {
		return err
	}

	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = msg.Timestamp

	return m.Persist(ctx, s)
}

// AppendTurn appends a full user/assistant exchange in order.
func (m *Manager) AppendTurn(ctx context.Context, s *core.ChatSession, userContent, assistantContent string) error {
	if err := m.Append(ctx, s, core.RoleUser, userContent); err != nil {
		return err
	}
	return m.Append(ctx, s, core.RoleAssistant, assistantContent)
}

// Persist writes the session to the repository. A store failure degrades
// to an ephemeral in-memory session rather than failing the turn.
func (m *Manager) Persist(ctx context.Context, s *core.ChatSession) error {
	if s == nil || s.ID == "" {
		return core.ErrInvalidSession
	}

	if err := m.repo.PutSession(ctx, s); err != nil {
		m.logger.Warn("session persist failed, keeping ephemeral copy", "sessionID", s.ID, "err", err)
		m.mu.Lock()
		m.ephemeral[s.ID] = s
		m.mu.Unlock()
		return nil
	}

	// A successful write supersedes any stale ephemeral copy.
	m.mu.Lock()
	delete(m.ephemeral, s.ID)
	m.mu.Unlock()
	return nil
}

// Delete removes a session. Exposed for external management calls only;
// the chat path never deletes sessions.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrSessionIDRequired
	}

	m.mu.Lock()
	delete(m.ephemeral, id)
	m.mu.Unlock()

	return m.repo.DeleteSession(ctx, id)
}
