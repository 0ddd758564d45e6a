package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/crestline/leasebot/ai"
)

// MockChatModel is a test double for ai.ChatModel.
// It allows custom behavior injection via function fields.
type MockChatModel struct {
	// CompleteFunc is called by Complete if set.
	// If nil, uses default canned behavior.
	CompleteFunc func(ctx context.Context, messages []ai.ChatMessage) (*ai.Completion, error)

	// CompleteStreamFunc is called by CompleteStream if set.
	// If nil, the default completion is delivered as a single chunk.
	CompleteStreamFunc func(ctx context.Context, messages []ai.ChatMessage, fn ai.StreamFunc) (*ai.Completion, error)

	mu        sync.Mutex
	callCount int
}

// NewMockChatModel creates a mock chat model with default canned behavior.
// Note: Returns concrete type to allow test assertions via CallCount().
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// Complete returns a canned reply built from the last user message.
func (m *MockChatModel) Complete(ctx context.Context, messages []ai.ChatMessage) (*ai.Completion, error) {
	m.recordCall()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, messages)
	}

	return cannedCompletion(messages), nil
}

// CompleteStream delivers the canned reply as a single chunk.
func (m *MockChatModel) CompleteStream(ctx context.Context, messages []ai.ChatMessage, fn ai.StreamFunc) (*ai.Completion, error) {
	m.recordCall()

	if m.CompleteStreamFunc != nil {
		return m.CompleteStreamFunc(ctx, messages, fn)
	}

	completion := cannedCompletion(messages)
	if fn != nil {
		if err := fn(ctx, []byte(completion.Content)); err != nil {
			return nil, err
		}
	}
	return completion, nil
}

// CallCount returns the number of times any method was called.
func (m *MockChatModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockChatModel) Reset() {
	m.mu.Lock()
	m.callCount = 0
	m.mu.Unlock()
	m.CompleteFunc = nil
	m.CompleteStreamFunc = nil
}

func (m *MockChatModel) recordCall() {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()
}

func cannedCompletion(messages []ai.ChatMessage) *ai.Completion {
	last := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			last = messages[i].Content
			break
		}
	}
	return &ai.Completion{
		Content:          fmt.Sprintf("mock reply to: %s", last),
		PromptTokens:     len(messages) * 10,
		CompletionTokens: 10,
	}
}
