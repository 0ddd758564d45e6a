package respond

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/crestline/leasebot/ai"
	"github.com/crestline/leasebot/ai/mock"
	"github.com/crestline/leasebot/cache"
	"github.com/crestline/leasebot/core"
	"github.com/crestline/leasebot/search"
	"github.com/crestline/leasebot/session"
	"github.com/crestline/leasebot/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	orchestrator *Orchestrator
	chat         *mock.MockChatModel
	embedder     *mock.MockEmbedder
}

func testListing(id string, beds int, rent float64, city string, pets bool) *core.Property {
	return &core.Property{
		ID:   id,
		Name: "Listing " + id,
		Address: core.Address{
			Raw:  "100 Main St, " + city,
			City: city,
		},
		Unit:  core.Unit{Beds: beds, Baths: 1, SquareFeet: 700},
		Terms: core.Terms{Rent: rent},
		Pets:  core.PetPolicy{Allowed: pets},
		Links: core.Links{
			View:  "https://example.com/" + id,
			Tour:  "https://example.com/" + id + "/tour",
			Apply: "https://example.com/" + id + "/apply",
		},
	}
}

// newFixture wires an orchestrator over in-memory storage with the given
// catalog. Listing vectors are all orthogonal to the query embedding, so
// semantic search never contributes unless a test injects its own
// embedding behavior.
func newFixture(t *testing.T, catalog []*core.Property, opts ...Option) *testFixture {
	t.Helper()

	props, vectors, sessions, backend, err := badger.NewMemoryStore()
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

	manager, err := session.NewManager(sessions)
	require.NoError(t, err)

	chat := mock.NewMockChatModel()

	o, err := NewOrchestrator(engine, manager, chat, opts...)
	require.NoError(t, err)

	return &testFixture{orchestrator: o, chat: chat, embedder: embedder}
}

func TestNewOrchestrator_Validation(t *testing.T) {
	f := newFixture(t, nil)

	_, err := NewOrchestrator(nil, nil, nil)
	assert.ErrorIs(t, err, ErrSearchEngineRequired)

	_, err = NewOrchestrator(f.orchestrator.engine, nil, nil)
	assert.ErrorIs(t, err, ErrSessionManagerRequired)

	_, err = NewOrchestrator(f.orchestrator.engine, f.orchestrator.sessions, nil)
	assert.ErrorIs(t, err, ErrChatModelRequired)
}

func TestGenerate_EmptyMessage(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.orchestrator.Generate(context.Background(), "", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestGenerate_HappyPath(t *testing.T) {
	f := newFixture(t, []*core.Property{
		testListing("a1", 2, 1800, "Austin", true),
		testListing("b2", 2, 1900, "Austin", false),
		testListing("c3", 3, 2400, "Dallas", false),
	})

	reply, err := f.orchestrator.Generate(context.Background(), "", "2 bedroom apartments in austin")
	require.NoError(t, err)

	assert.NotEmpty(t, reply.SessionID)
	assert.NotEmpty(t, reply.Answer)
	assert.Equal(t, 1, f.chat.CallCount())
	assert.Equal(t, 2, reply.Metrics.CandidateCount)

	// The mock reply has no link markup, so the top candidate's links get
	// appended.
	assert.Contains(t, reply.Answer, "https://example.com/a1/tour")

	history, err := f.orchestrator.History(context.Background(), reply.SessionID)
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, core.RoleUser, history.Messages[0].Role)
	assert.Equal(t, core.RoleAssistant, history.Messages[1].Role)
	assert.Equal(t, reply.Answer, history.Messages[1].Content)
}

func TestGenerate_EmptyCatalogSkipsGeneration(t *testing.T) {
	f := newFixture(t, nil)

	reply, err := f.orchestrator.Generate(context.Background(), "", "2 bedroom apartments")
	require.NoError(t, err)

	assert.Equal(t, NoPropertiesMessage, reply.Answer)
	assert.Zero(t, f.chat.CallCount(), "no generation call on zero candidates")
}

func TestGenerate_UnfilteredRetryOnEmptyFilteredResult(t *testing.T) {
	f := newFixture(t, []*core.Property{
		testListing("a1", 1, 1200, "Dallas", false),
		testListing("b2", 2, 1500, "Dallas", false),
	})

	// No seven-bedroom listings exist: the filtered search is empty and the
	// turn retries against the whole catalog.
	reply, err := f.orchestrator.Generate(context.Background(), "", "7 bedroom apartments")
	require.NoError(t, err)

	assert.NotEqual(t, NoPropertiesMessage, reply.Answer)
	assert.Equal(t, 1, f.chat.CallCount())
	assert.Equal(t, 2, reply.Metrics.CandidateCount)
}

func TestGenerate_FallbackOnPersistentGenerationFailure(t *testing.T) {
	catalog := []*core.Property{testListing("a1", 2, 1800, "Austin", true)}
	f := newFixture(t, catalog)

	f.chat.CompleteFunc = func(_ context.Context, _ []ai.ChatMessage) (*ai.Completion, error) {
		return nil, fmt.Errorf("%w: model crashed", ai.ErrGenerationFailed)
	}

	reply, err := f.orchestrator.Generate(context.Background(), "", "2 bedroom apartments")
	require.NoError(t, err, "generation failure must degrade, not error")

	assert.Equal(t, FallbackAnswer(catalog), reply.Answer)
	assert.True(t, reply.Metrics.FellBack)
}

func TestGenerate_RateLimitSurfaces(t *testing.T) {
	f := newFixture(t, []*core.Property{testListing("a1", 2, 1800, "Austin", true)})

	f.chat.CompleteFunc = func(_ context.Context, _ []ai.ChatMessage) (*ai.Completion, error) {
		return nil, ai.NewRateLimitError(2 * time.Second)
	}

	_, err := f.orchestrator.Generate(context.Background(), "", "2 bedroom apartments")
	assert.ErrorIs(t, err, ai.ErrRateLimited, "throttling must reach the boundary")
}

func TestGenerate_AnswerCacheIdempotence(t *testing.T) {
	f := newFixture(t, []*core.Property{testListing("a1", 2, 1800, "Austin", true)})

	first, err := f.orchestrator.Generate(context.Background(), "", "2 bedroom apartments")
	require.NoError(t, err)
	require.Equal(t, 1, f.chat.CallCount())

	second, err := f.orchestrator.Generate(context.Background(), first.SessionID, "2 Bedroom   Apartments!")
	require.NoError(t, err)

	assert.Equal(t, first.Answer, second.Answer)
	assert.Equal(t, 1, f.chat.CallCount(), "cached answer must not re-trigger generation")
	assert.True(t, second.Metrics.CacheHit)

	// The cached turn is still recorded in the session.
	history, err := f.orchestrator.History(context.Background(), second.SessionID)
	require.NoError(t, err)
	assert.Len(t, history.Messages, 4)
}

func TestGenerate_AnswerCacheExpiry(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	answers := cache.New[string](cache.DefaultAnswerTTL, cache.WithClock[string](func() time.Time {
		return clock
	}))
	f := newFixture(t, []*core.Property{testListing("a1", 2, 1800, "Austin", true)}, WithAnswerCache(answers))

	_, err := f.orchestrator.Generate(context.Background(), "", "2 bedroom apartments")
	require.NoError(t, err)
	require.Equal(t, 1, f.chat.CallCount())

	clock = clock.Add(cache.DefaultAnswerTTL + time.Second)

	_, err = f.orchestrator.Generate(context.Background(), "", "2 bedroom apartments")
	require.NoError(t, err)
	assert.Equal(t, 2, f.chat.CallCount(), "expired entry must re-trigger generation")
}

func TestGenerate_ActionResolvesTourLink(t *testing.T) {
	f := newFixture(t, []*core.Property{
		testListing("a1", 2, 1800, "Austin", true),
		testListing("b2", 2, 1900, "Austin", false),
	})
	ctx := context.Background()

	first, err := f.orchestrator.Generate(ctx, "", "2 bedroom apartments")
	require.NoError(t, err)

	f.chat.CompleteFunc = func(_ context.Context, _ []ai.ChatMessage) (*ai.Completion, error) {
		return &ai.Completion{Content: "You can book a visit here: [TOUR:a1]"}, nil
	}

	reply, err := f.orchestrator.Generate(ctx, first.SessionID, "schedule a tour")
	require.NoError(t, err)

	assert.Contains(t, reply.Answer, "https://example.com/a1/tour")
	assert.NotContains(t, reply.Answer, "[TOUR:", "placeholders must be resolved")
}

func TestGenerate_ActionAnswersAreSessionScoped(t *testing.T) {
	f := newFixture(t, []*core.Property{
		testListing("a1", 2, 1800, "Austin", true),
		testListing("b2", 2, 1900, "Dallas", false),
	})
	ctx := context.Background()

	first, err := f.orchestrator.Generate(ctx, "", "2 bedroom in Austin")
	require.NoError(t, err)
	second, err := f.orchestrator.Generate(ctx, "", "2 bedroom in Dallas")
	require.NoError(t, err)
	require.NotEqual(t, first.SessionID, second.SessionID)

	// No placeholders in the generated text, so each reply gets its own
	// session's top candidate linked in.
	f.chat.CompleteFunc = func(_ context.Context, _ []ai.ChatMessage) (*ai.Completion, error) {
		return &ai.Completion{Content: "Happy to set that up!"}, nil
	}

	replyA, err := f.orchestrator.Generate(ctx, first.SessionID, "schedule a tour")
	require.NoError(t, err)
	assert.Contains(t, replyA.Answer, "https://example.com/a1/tour")

	replyB, err := f.orchestrator.Generate(ctx, second.SessionID, "schedule a tour")
	require.NoError(t, err)
	assert.Contains(t, replyB.Answer, "https://example.com/b2/tour")
	assert.NotContains(t, replyB.Answer, "https://example.com/a1/tour",
		"one session's tour link must never reach another")
	assert.False(t, replyB.Metrics.CacheHit)
}

func TestGenerate_NoPropertiesAnswerIsCached(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.orchestrator.Generate(ctx, "", "2 bedroom in Austin")
	require.NoError(t, err)
	assert.Equal(t, NoPropertiesMessage, first.Answer)
	assert.False(t, first.Metrics.CacheHit)

	second, err := f.orchestrator.Generate(ctx, "", "2 bedroom in Austin")
	require.NoError(t, err)
	assert.Equal(t, NoPropertiesMessage, second.Answer)
	assert.True(t, second.Metrics.CacheHit, "the empty-catalog answer is cached like any other")
}

func TestGenerate_ChoicePromotesReferencedOption(t *testing.T) {
	f := newFixture(t, []*core.Property{
		testListing("a1", 2, 1800, "Austin", true),
		testListing("b2", 2, 1900, "Austin", false),
	})
	ctx := context.Background()

	first, err := f.orchestrator.Generate(ctx, "", "2 bedroom apartments")
	require.NoError(t, err)

	var promptedFirst string
	f.chat.CompleteFunc = func(_ context.Context, messages []ai.ChatMessage) (*ai.Completion, error) {
		for _, m := range messages {
			if m.Role == "user" {
				promptedFirst = m.Content
			}
		}
		return &ai.Completion{Content: "Great choice!"}, nil
	}

	_, err = f.orchestrator.Generate(ctx, first.SessionID, "the second one")
	require.NoError(t, err)

	require.NotEmpty(t, promptedFirst)
	assert.Contains(t, promptedFirst, "1. (id: b2)", "the chosen listing leads the prompt")
}

func TestGenerate_TokenBudgetShrinksCandidates(t *testing.T) {
	var catalog []*core.Property
	for i := 0; i < 10; i++ {
		catalog = append(catalog, testListing(fmt.Sprintf("p%d", i), 2, 1800, "Austin", false))
	}
	// A budget of ~2 candidate lines.
	f := newFixture(t, catalog, WithTokenBudget(40))

	var prompted string
	f.chat.CompleteFunc = func(_ context.Context, messages []ai.ChatMessage) (*ai.Completion, error) {
		for _, m := range messages {
			if m.Role == "user" {
				prompted = m.Content
			}
		}
		return &ai.Completion{Content: "Here you go."}, nil
	}

	reply, err := f.orchestrator.Generate(context.Background(), "", "2 bedroom apartments")
	require.NoError(t, err)

	assert.Less(t, reply.Metrics.CandidateCount, 10, "oversized context must shrink")
	lines := strings.Count(strings.TrimSpace(prompted), "(id:")
	assert.Equal(t, reply.Metrics.CandidateCount, lines)
}
