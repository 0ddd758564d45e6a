// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.ChatModel,
// and ai.Provider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	embeddings, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockChat := mock.NewMockChatModel()
//	mockChat.CompleteFunc = func(ctx context.Context, messages []ai.ChatMessage) (*ai.Completion, error) {
//	    return nil, ai.NewRateLimitError(time.Second)
//	}
//
//	// Check call counts
//	count := mockChat.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockChatModel: Echoes a canned reply built from the last user message
//   - MockProvider: Aggregates mock embedder and chat model
package mock
