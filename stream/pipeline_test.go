package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/crestline/leasebot/ai"
	"github.com/crestline/leasebot/ai/mock"
	"github.com/crestline/leasebot/core"
	"github.com/crestline/leasebot/respond"
	"github.com/crestline/leasebot/search"
	"github.com/crestline/leasebot/session"
	"github.com/crestline/leasebot/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type streamFixture struct {
	pipeline *Pipeline
	sessions *session.Manager
	chat     *mock.MockChatModel
	states   *[]State
}

func newStreamFixture(t *testing.T, catalog []*core.Property) *streamFixture {
	t.Helper()

	props, vectors, sessionRepo, backend, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	ctx := context.Background()
	for _, p := range catalog {
		require.NoError(t, props.PutProperty(ctx, p))
		require.NoError(t, vectors.PutVector(ctx, p.ID, []float32{0, 1}))
	}

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(_ context.Context, _ string) ([]float32, error) {
		return []float32{1, 0}, nil
	}

	engine, err := search.NewEngine(props, vectors, embedder)
	require.NoError(t, err)

	manager, err := session.NewManager(sessionRepo)
	require.NoError(t, err)

	chat := mock.NewMockChatModel()

	orchestrator, err := respond.NewOrchestrator(engine, manager, chat)
	require.NoError(t, err)

	var states []State
	p, err := NewPipeline(orchestrator, manager,
		WithChunking(5, 0),
		WithCharDelay(0),
		WithStateHook(func(s State) { states = append(states, s) }),
	)
	require.NoError(t, err)

	return &streamFixture{pipeline: p, sessions: manager, chat: chat, states: &states}
}

func streamListing(id string) *core.Property {
	return &core.Property{
		ID:    id,
		Name:  "Listing " + id,
		Unit:  core.Unit{Beds: 2, Baths: 1},
		Terms: core.Terms{Rent: 1800},
		Links: core.Links{
			Tour:  "https://example.com/" + id + "/tour",
			Apply: "https://example.com/" + id + "/apply",
		},
	}
}

// collect gathers emitted chunks into chunks, keeping the marker separate.
func collect(chunks *[]string) ChunkFunc {
	return func(_ context.Context, chunk string) error {
		*chunks = append(*chunks, chunk)
		return nil
	}
}

func TestNewPipeline_Validation(t *testing.T) {
	_, err := NewPipeline(nil, nil)
	assert.ErrorIs(t, err, ErrOrchestratorRequired)
}

func TestStream_GreetingFastPath(t *testing.T) {
	f := newStreamFixture(t, nil)

	var chunks []string
	result, err := f.pipeline.Stream(context.Background(), "", "Hello!", collect(&chunks))
	require.NoError(t, err)

	require.NotEmpty(t, chunks)
	assert.Equal(t, EndMarker, chunks[len(chunks)-1])

	content := chunks[:len(chunks)-1]
	for _, c := range content {
		assert.Len(t, []rune(c), 1, "greeting is paced character by character")
	}
	assert.Equal(t, ScriptedGreeting, strings.Join(content, ""))

	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, []State{StateStreaming, StateDone}, *f.states)
	assert.Zero(t, f.chat.CallCount(), "greetings never reach generation")

	// The greeting turn is still recorded.
	sess, err := f.sessions.GetOrCreate(context.Background(), result.SessionID)
	require.NoError(t, err)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, ScriptedGreeting, sess.Messages[1].Content)
}

func TestStream_NormalPath(t *testing.T) {
	f := newStreamFixture(t, []*core.Property{streamListing("a1")})

	var chunks []string
	result, err := f.pipeline.Stream(context.Background(), "", "2 bedroom apartments", collect(&chunks))
	require.NoError(t, err)

	require.NotEmpty(t, chunks)
	assert.Equal(t, EndMarker, chunks[len(chunks)-1])

	content := chunks[:len(chunks)-1]
	for i, c := range content[:len(content)-1] {
		assert.Len(t, []rune(c), 5, "chunk %d should be full sized", i)
	}
	assert.Equal(t, result.Answer, strings.Join(content, ""))

	assert.Equal(t, StateDone, result.State)
	assert.Equal(t,
		[]State{StateClassifying, StateSearching, StateGenerating, StateStreaming, StateDone},
		*f.states,
	)
}

func TestStream_FallbackEndsFailed(t *testing.T) {
	f := newStreamFixture(t, []*core.Property{streamListing("a1")})
	f.chat.CompleteFunc = func(_ context.Context, _ []ai.ChatMessage) (*ai.Completion, error) {
		return nil, fmt.Errorf("%w: boom", ai.ErrGenerationFailed)
	}

	var chunks []string
	result, err := f.pipeline.Stream(context.Background(), "", "2 bedroom apartments", collect(&chunks))
	require.NoError(t, err, "fallback answers still stream")

	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, EndMarker, chunks[len(chunks)-1])
	assert.Contains(t, result.Answer, "https://example.com/a1/tour")
}

func TestStream_CancellationStopsEmission(t *testing.T) {
	f := newStreamFixture(t, []*core.Property{streamListing("a1")})

	ctx, cancel := context.WithCancel(context.Background())

	var chunks []string
	emit := func(_ context.Context, chunk string) error {
		chunks = append(chunks, chunk)
		cancel() // caller disconnects after the first chunk
		return nil
	}

	result, err := f.pipeline.Stream(ctx, "", "2 bedroom apartments", emit)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateFailed, result.State)
	assert.NotContains(t, chunks, EndMarker, "cancelled streams end without a marker")
}

func TestStream_EmitErrorStopsStream(t *testing.T) {
	f := newStreamFixture(t, []*core.Property{streamListing("a1")})

	disconnect := errors.New("client went away")
	calls := 0
	emit := func(_ context.Context, _ string) error {
		calls++
		if calls > 1 {
			return disconnect
		}
		return nil
	}

	result, err := f.pipeline.Stream(context.Background(), "", "2 bedroom apartments", emit)
	assert.ErrorIs(t, err, disconnect)
	assert.Equal(t, StateFailed, result.State)
}

func TestStream_EmptyMessageErrors(t *testing.T) {
	f := newStreamFixture(t, nil)

	var chunks []string
	result, err := f.pipeline.Stream(context.Background(), "", "  ", collect(&chunks))
	assert.ErrorIs(t, err, respond.ErrEmptyMessage)
	assert.Equal(t, StateFailed, result.State)
	assert.Empty(t, chunks)
}

func TestIsGreeting(t *testing.T) {
	greetings := []string{"hi", "Hello", "HEY!", "good morning", "  howdy  ", "hello!!!"}
	for _, g := range greetings {
		assert.True(t, IsGreeting(g), "%q should be a greeting", g)
	}

	notGreetings := []string{
		"hello, any 2 bedroom apartments?",
		"hi there",
		"2 bedroom apartments",
		"",
	}
	for _, g := range notGreetings {
		assert.False(t, IsGreeting(g), "%q should not be a greeting", g)
	}
}

func TestGreet(t *testing.T) {
	f := newStreamFixture(t, nil)

	reply, err := f.pipeline.Greet(context.Background(), "", "hey")
	require.NoError(t, err)

	assert.Equal(t, ScriptedGreeting, reply.Answer)
	assert.NotEmpty(t, reply.SessionID)
	assert.Zero(t, f.chat.CallCount())
}
