package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as the
	// input texts. Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatMessage is a single prompt turn for a completion call.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// Completion is the result of a chat completion call.
type Completion struct {
	// Content is the generated answer text.
	Content string

	// PromptTokens and CompletionTokens carry provider-reported token usage
	// when available, zero otherwise.
	PromptTokens     int
	CompletionTokens int
}

// StreamFunc receives incremental completion output. Returning an error
// aborts the stream and cancels the underlying call.
type StreamFunc func(ctx context.Context, chunk []byte) error

// ChatModel generates natural-language completions.
// Implementations must be thread-safe for concurrent use. Calls may fail or
// time out; callers are expected to tolerate both.
type ChatModel interface {
	// Complete generates a whole completion for the given messages.
	Complete(ctx context.Context, messages []ChatMessage) (*Completion, error)

	// CompleteStream generates a completion, delivering output incrementally
	// through fn as it is produced. The full completion is also returned.
	CompleteStream(ctx context.Context, messages []ChatMessage, fn StreamFunc) (*Completion, error)
}

// Provider aggregates the generation services for convenient initialization
// and lifecycle management. Both returned services share configuration and
// are safe for concurrent use.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Chat returns the completion service.
	Chat() ChatModel

	// Close releases resources held by the provider and its services.
	Close() error
}
