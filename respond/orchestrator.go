package respond

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/crestline/leasebot/ai"
	"github.com/crestline/leasebot/cache"
	"github.com/crestline/leasebot/core"
	"github.com/crestline/leasebot/query"
	"github.com/crestline/leasebot/search"
	"github.com/crestline/leasebot/session"
)

// Reply is the outcome of one chat turn.
type Reply struct {
	Answer    string
	SessionID string
	Timestamp time.Time
	Metrics   TurnMetrics
}

// Orchestrator runs a complete chat turn from raw message to final answer.
type Orchestrator struct {
	engine      *search.Engine
	sessions    *session.Manager
	chat        ai.ChatModel
	answers     *cache.Cache[string]
	logger      *slog.Logger
	tokenBudget int

	mu sync.Mutex
	// lastCandidates remembers, per session, the listings most recently
	// offered, so a follow-up like "schedule a tour" or "the second one"
	// resolves against what the renter was actually shown.
	lastCandidates map[string][]*core.Property
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithAnswerCache replaces the default final-answer cache. Used by tests
// to inject a cache with a controllable clock.
func WithAnswerCache(c *cache.Cache[string]) Option {
	return func(o *Orchestrator) error {
		if c != nil {
			o.answers = c
		}
		return nil
	}
}

// WithTokenBudget overrides the candidate-context token budget.
func WithTokenBudget(budget int) Option {
	return func(o *Orchestrator) error {
		if budget > 0 {
			o.tokenBudget = budget
		}
		return nil
	}
}

// NewOrchestrator creates a response orchestrator.
func NewOrchestrator(
	engine *search.Engine,
	sessions *session.Manager,
	chat ai.ChatModel,
	opts ...Option,
) (*Orchestrator, error) {
	if engine == nil {
		return nil, ErrSearchEngineRequired
	}
	if sessions == nil {
		return nil, ErrSessionManagerRequired
	}
	if chat == nil {
		return nil, ErrChatModelRequired
	}

	o := &Orchestrator{
		engine:         engine,
		sessions:       sessions,
		chat:           chat,
		answers:        cache.New[string](cache.DefaultAnswerTTL),
		logger:         slog.Default().With("component", "respond"),
		tokenBudget:    defaultTokenBudget,
		lastCandidates: make(map[string][]*core.Property),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// Generate runs a full turn and returns the final answer.
//
// Internal failures degrade: zero candidates retry once unfiltered then
// answer with a fixed message, and persistent generation failure falls
// back to a template built from the top candidate. Rate limiting is the
// exception; it is returned to the caller so the boundary can surface an
// explicit throttling signal.
func (o *Orchestrator) Generate(ctx context.Context, sessionID, message string) (*Reply, error) {
	start := time.Now()

	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	sess, err := o.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	q := query.Analyze(message)
	fingerprint := cache.Fingerprint(q.Text, q.Filters)

	// Choice and action answers depend on the listings last shown to
	// this session, so they never touch the shared answer cache.
	cacheable := q.Intent != core.IntentChoice && q.Intent != core.IntentAction

	if cacheable {
		if answer, ok := o.answers.Get(fingerprint); ok {
			return o.finishTurn(ctx, sess, message, answer, TurnMetrics{
				CacheHit:     true,
				TotalLatency: time.Since(start),
			})
		}
	}

	candidates, metrics := o.retrieve(ctx, sess.ID, q)

	if len(candidates) == 0 {
		if cacheable {
			o.answers.Set(fingerprint, NoPropertiesMessage)
		}
		metrics.TotalLatency = time.Since(start)
		return o.finishTurn(ctx, sess, message, NoPropertiesMessage, metrics)
	}

	candidates = fitToBudget(candidates, o.tokenBudget)
	metrics.CandidateCount = len(candidates)

	answer, err := o.generateAnswer(ctx, candidates, message, &metrics)
	if err != nil {
		return nil, err
	}

	o.rememberCandidates(sess.ID, candidates)
	if cacheable {
		o.answers.Set(fingerprint, answer)
	}

	metrics.TotalLatency = time.Since(start)
	return o.finishTurn(ctx, sess, message, answer, metrics)
}

// retrieve obtains candidates for the turn. Choice and action turns
// resolve against the listings last offered to the session; everything
// else goes through the search engine, retrying once unfiltered when the
// filtered search comes back empty.
func (o *Orchestrator) retrieve(ctx context.Context, sessionID string, q core.SearchQuery) ([]*core.Property, TurnMetrics) {
	var metrics TurnMetrics

	if q.Intent == core.IntentChoice || q.Intent == core.IntentAction {
		if prior := o.recallCandidates(sessionID, q); len(prior) > 0 {
			metrics.CandidateCount = len(prior)
			return prior, metrics
		}
	}

	result, err := o.engine.Search(ctx, q)
	if err != nil {
		o.logger.Error("search failed, treating as empty candidate set", "err", err)
		return nil, metrics
	}
	metrics.SearchLatency = result.Latency
	metrics.CacheHit = result.CacheHit

	if len(result.Properties) > 0 {
		return result.Properties, metrics
	}

	// One unfiltered retry against the whole catalog before giving up.
	retry, err := o.engine.Search(ctx, core.SearchQuery{Intent: core.IntentExact, Text: "*"})
	if err != nil {
		o.logger.Error("unfiltered retry failed", "err", err)
		return nil, metrics
	}
	metrics.SearchLatency += retry.Latency
	return retry.Properties, metrics
}

// generateAnswer invokes the chat model and post-processes its output.
// Rate limiting propagates; every other failure yields the fallback.
func (o *Orchestrator) generateAnswer(ctx context.Context, candidates []*core.Property, message string, metrics *TurnMetrics) (string, error) {
	genStart := time.Now()
	completion, err := o.chat.Complete(ctx, buildPrompt(candidates, message))
	metrics.GenerationLatency = time.Since(genStart)

	if err != nil {
		if errors.Is(err, ai.ErrRateLimited) {
			return "", err
		}
		o.logger.Error("generation failed, using fallback answer", "err", err)
		metrics.FellBack = true
		// The fallback already carries resolved links.
		return FallbackAnswer(candidates), nil
	}

	metrics.PromptTokens = completion.PromptTokens
	metrics.CompletionTokens = completion.CompletionTokens
	return ResolveLinks(completion.Content, candidates), nil
}

// finishTurn records the exchange in the session, logs metrics, and
// builds the reply.
func (o *Orchestrator) finishTurn(ctx context.Context, sess *core.ChatSession, message, answer string, metrics TurnMetrics) (*Reply, error) {
	if err := o.sessions.AppendTurn(ctx, sess, message, answer); err != nil {
		o.logger.Warn("recording turn failed", "sessionID", sess.ID, "err", err)
	}

	metrics.record(o.logger, sess.ID)

	return &Reply{
		Answer:    answer,
		SessionID: sess.ID,
		Timestamp: time.Now(),
		Metrics:   metrics,
	}, nil
}

// History returns the stored conversation for a session.
func (o *Orchestrator) History(ctx context.Context, sessionID string) (*core.ChatSession, error) {
	if sessionID == "" {
		return nil, session.ErrSessionIDRequired
	}
	return o.sessions.GetOrCreate(ctx, sessionID)
}

func (o *Orchestrator) rememberCandidates(sessionID string, candidates []*core.Property) {
	o.mu.Lock()
	o.lastCandidates[sessionID] = candidates
	o.mu.Unlock()
}

// recallCandidates returns the session's last offered listings. A choice
// utterance promotes the referenced option to the front.
func (o *Orchestrator) recallCandidates(sessionID string, q core.SearchQuery) []*core.Property {
	o.mu.Lock()
	prior := o.lastCandidates[sessionID]
	o.mu.Unlock()

	if len(prior) == 0 || q.Intent != core.IntentChoice {
		return prior
	}

	idx, ok := query.ChoiceIndex(q.Text)
	if !ok || idx < 1 || idx > len(prior) {
		return prior
	}

	chosen := make([]*core.Property, 0, len(prior))
	chosen = append(chosen, prior[idx-1])
	for i, p := range prior {
		if i != idx-1 {
			chosen = append(chosen, p)
		}
	}
	return chosen
}
