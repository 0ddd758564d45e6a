package stream

import (
	"context"
	"log/slog"
	"time"

	"github.com/crestline/leasebot/respond"
	"github.com/crestline/leasebot/session"
)

// EndMarker terminates every successful chunk sequence.
const EndMarker = "[DONE]"

const (
	defaultChunkSize  = 24
	defaultChunkDelay = 30 * time.Millisecond
	defaultCharDelay  = 10 * time.Millisecond
)

// ChunkFunc receives one content chunk. Returning an error stops the
// stream; the error is treated like a caller disconnect.
type ChunkFunc func(ctx context.Context, chunk string) error

// Result summarizes a finished streaming turn.
type Result struct {
	SessionID string
	Answer    string
	State     State
}

// Pipeline converts whole answers into paced chunk sequences.
type Pipeline struct {
	orchestrator *respond.Orchestrator
	sessions     *session.Manager
	logger       *slog.Logger

	chunkSize  int
	chunkDelay time.Duration
	charDelay  time.Duration
	stateHook  func(State)
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithChunking overrides the chunk size and inter-chunk delay.
func WithChunking(size int, delay time.Duration) Option {
	return func(p *Pipeline) error {
		if size > 0 {
			p.chunkSize = size
		}
		if delay >= 0 {
			p.chunkDelay = delay
		}
		return nil
	}
}

// WithCharDelay overrides the greeting fast path's per-character pace.
func WithCharDelay(delay time.Duration) Option {
	return func(p *Pipeline) error {
		if delay >= 0 {
			p.charDelay = delay
		}
		return nil
	}
}

// WithStateHook registers a callback observing every state transition.
func WithStateHook(hook func(State)) Option {
	return func(p *Pipeline) error {
		p.stateHook = hook
		return nil
	}
}

// NewPipeline creates a streaming pipeline over the orchestrator.
func NewPipeline(orchestrator *respond.Orchestrator, sessions *session.Manager, opts ...Option) (*Pipeline, error) {
	if orchestrator == nil {
		return nil, ErrOrchestratorRequired
	}
	if sessions == nil {
		return nil, ErrSessionManagerRequired
	}

	p := &Pipeline{
		orchestrator: orchestrator,
		sessions:     sessions,
		logger:       slog.Default().With("component", "stream"),
		chunkSize:    defaultChunkSize,
		chunkDelay:   defaultChunkDelay,
		charDelay:    defaultCharDelay,
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Stream runs a turn and delivers its answer through emit.
//
// The sequence ends with EndMarker on success. Cancellation mid-stream
// stops emission without the marker and propagates to downstream calls
// through ctx.
func (p *Pipeline) Stream(ctx context.Context, sessionID, message string, emit ChunkFunc) (*Result, error) {
	state := StateIdle
	transition := func(next State) {
		state = next
		if p.stateHook != nil {
			p.stateHook(next)
		}
	}

	if IsGreeting(message) {
		return p.streamGreeting(ctx, sessionID, message, emit, transition)
	}

	// The orchestrator runs classification, search, and generation as one
	// unit; the transitions mark progress for observers.
	transition(StateClassifying)
	transition(StateSearching)
	transition(StateGenerating)

	reply, err := p.orchestrator.Generate(ctx, sessionID, message)
	if err != nil {
		transition(StateFailed)
		return &Result{SessionID: sessionID, State: state}, err
	}

	transition(StateStreaming)
	if err := p.emitChunks(ctx, reply.Answer, emit); err != nil {
		transition(StateFailed)
		return &Result{SessionID: reply.SessionID, Answer: reply.Answer, State: state}, err
	}

	final := StateDone
	if reply.Metrics.FellBack {
		final = StateFailed
	}
	transition(final)

	return &Result{SessionID: reply.SessionID, Answer: reply.Answer, State: state}, nil
}

// streamGreeting delivers the scripted greeting character by character,
// skipping search and generation entirely.
func (p *Pipeline) streamGreeting(ctx context.Context, sessionID, message string, emit ChunkFunc, transition func(State)) (*Result, error) {
	sess, err := p.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		transition(StateFailed)
		return &Result{SessionID: sessionID, State: StateFailed}, err
	}

	transition(StateStreaming)
	for _, r := range ScriptedGreeting {
		if err := p.pace(ctx, p.charDelay); err != nil {
			transition(StateFailed)
			return &Result{SessionID: sess.ID, State: StateFailed}, err
		}
		if err := emit(ctx, string(r)); err != nil {
			transition(StateFailed)
			return &Result{SessionID: sess.ID, State: StateFailed}, err
		}
	}
	if err := emit(ctx, EndMarker); err != nil {
		transition(StateFailed)
		return &Result{SessionID: sess.ID, State: StateFailed}, err
	}

	if err := p.sessions.AppendTurn(ctx, sess, message, ScriptedGreeting); err != nil {
		p.logger.Warn("recording greeting turn failed", "sessionID", sess.ID, "err", err)
	}

	transition(StateDone)
	return &Result{SessionID: sess.ID, Answer: ScriptedGreeting, State: StateDone}, nil
}

// emitChunks delivers text in fixed-size chunks with a pacing delay,
// then the end marker.
func (p *Pipeline) emitChunks(ctx context.Context, text string, emit ChunkFunc) error {
	runes := []rune(text)
	for start := 0; start < len(runes); start += p.chunkSize {
		end := start + p.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		if err := emit(ctx, string(runes[start:end])); err != nil {
			return err
		}
		if end < len(runes) {
			if err := p.pace(ctx, p.chunkDelay); err != nil {
				return err
			}
		}
	}
	return emit(ctx, EndMarker)
}

// pace sleeps for d unless the context finishes first.
func (p *Pipeline) pace(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Greet is the non-streaming shape of the greeting fast path, used by
// the whole-response endpoint.
func (p *Pipeline) Greet(ctx context.Context, sessionID, message string) (*respond.Reply, error) {
	sess, err := p.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := p.sessions.AppendTurn(ctx, sess, message, ScriptedGreeting); err != nil {
		p.logger.Warn("recording greeting turn failed", "sessionID", sess.ID, "err", err)
	}
	return &respond.Reply{
		Answer:    ScriptedGreeting,
		SessionID: sess.ID,
		Timestamp: time.Now(),
	}, nil
}
