package badger

import (
	"context"
	"testing"
	"time"

	"github.com/crestline/leasebot/core"
	"github.com/crestline/leasebot/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_RoundTrip(t *testing.T) {
	_, _, sessions, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	s := &core.ChatSession{
		ID: "sess-1",
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "hi", Timestamp: now},
			{Role: core.RoleAssistant, Content: "hello!", Timestamp: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	require.NoError(t, sessions.PutSession(ctx, s))

	got, err := sessions.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestSessionRepository_GetMissing(t *testing.T) {
	_, _, sessions, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer backend.Close()

	_, err = sessions.GetSession(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSessionRepository_ReplaceGrowsMessages(t *testing.T) {
	_, _, sessions, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	s := &core.ChatSession{ID: "sess-1", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, sessions.PutSession(ctx, s))

	s.Messages = append(s.Messages, core.Message{Role: core.RoleUser, Content: "anything cheap?", Timestamp: now})
	require.NoError(t, sessions.PutSession(ctx, s))

	got, err := sessions.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, got.Messages, 1)
}

func TestSessionRepository_Delete(t *testing.T) {
	_, _, sessions, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, sessions.PutSession(ctx, &core.ChatSession{ID: "sess-1"}))
	require.NoError(t, sessions.DeleteSession(ctx, "sess-1"))

	_, err = sessions.GetSession(ctx, "sess-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
