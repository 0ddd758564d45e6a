// Package leasebot wires the rental-listing chat assistant together: a
// badger-backed catalog and session store, an OpenAI-compatible AI
// provider, hybrid search, and the response and streaming pipelines.
package leasebot

import (
	"log/slog"

	"github.com/crestline/leasebot/ai"
	"github.com/crestline/leasebot/ai/openai"
	"github.com/crestline/leasebot/ingest"
	"github.com/crestline/leasebot/respond"
	"github.com/crestline/leasebot/search"
	"github.com/crestline/leasebot/session"
	"github.com/crestline/leasebot/storage/badger"
	"github.com/crestline/leasebot/stream"
)

// Assistant aggregates the storage backend, AI provider, and the
// assembled chat pipeline.
type Assistant struct {
	backend      *badger.Backend
	properties   *badger.PropertyRepository
	vectors      *badger.VectorRepository
	sessionRepo  *badger.SessionRepository
	provider     ai.Provider
	engine       *search.Engine
	sessions     *session.Manager
	orchestrator *respond.Orchestrator
	pipeline     *stream.Pipeline
	logger       *slog.Logger
}

// AssistantOption configures an Assistant.
type AssistantOption func(*assistantOptions)

type assistantOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) AssistantOption {
	return func(o *assistantOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider injects a pre-built AI provider instead of constructing
// one from configuration. Used by tests to supply mocks.
func WithProvider(provider ai.Provider) AssistantOption {
	return func(o *assistantOptions) {
		o.provider = provider
	}
}

// WithInMemoryStore opens the backend in memory, without a data
// directory. Nothing survives a restart.
func WithInMemoryStore() AssistantOption {
	return func(o *assistantOptions) {
		o.inMemory = true
	}
}

// NewAssistant opens the store at filePath and assembles the full chat
// pipeline around it.
func NewAssistant(filePath string, opts ...AssistantOption) (*Assistant, error) {
	options := &assistantOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	properties := badger.NewPropertyRepository(backend)
	vectors := badger.NewVectorRepository(backend)
	sessionRepo := badger.NewSessionRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	engine, err := search.NewEngine(properties, vectors, provider.Embedder())
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	sessions, err := session.NewManager(sessionRepo)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	orchestrator, err := respond.NewOrchestrator(engine, sessions, provider.Chat())
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	pipeline, err := stream.NewPipeline(orchestrator, sessions)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	return &Assistant{
		backend:      backend,
		properties:   properties,
		vectors:      vectors,
		sessionRepo:  sessionRepo,
		provider:     provider,
		engine:       engine,
		sessions:     sessions,
		orchestrator: orchestrator,
		pipeline:     pipeline,
		logger:       slog.Default(),
	}, nil
}

// Close releases the AI provider and the storage backend.
func (a *Assistant) Close() error {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}

	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Orchestrator returns the whole-response chat pipeline.
func (a *Assistant) Orchestrator() *respond.Orchestrator {
	return a.orchestrator
}

// Pipeline returns the streaming chat pipeline.
func (a *Assistant) Pipeline() *stream.Pipeline {
	return a.pipeline
}

// Engine returns the hybrid search engine.
func (a *Assistant) Engine() *search.Engine {
	return a.engine
}

// Sessions returns the session manager.
func (a *Assistant) Sessions() *session.Manager {
	return a.sessions
}

// NewIngestPipeline builds an ingestion pipeline over the assistant's
// store and embedder.
func (a *Assistant) NewIngestPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(a.properties, a.vectors, a.provider.Embedder(), opts...)
}
