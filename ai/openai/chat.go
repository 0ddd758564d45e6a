package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/crestline/leasebot/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ChatModel implements ai.ChatModel using OpenAI-compatible chat APIs.
// Every call carries the configured timeout; whole completions additionally
// retry with capped exponential backoff, skipping client-error classes and
// honoring provider rate-limit hints.
type ChatModel struct {
	client llms.Model
	config *ai.Config
	logger *slog.Logger
}

// newChatModel is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newChatModel(config *ai.Config) (*ChatModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.CompletionHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.CompletionModel),
	)
	if err != nil {
		return nil, err
	}

	return &ChatModel{
		client: client,
		config: config,
		logger: slog.Default().With("component", "openai-chat"),
	}, nil
}

// NewChatModel creates a new chat model using the provided configuration.
//
// Returns ai.ChatModel interface to enforce abstraction.
func NewChatModel(config *ai.Config) (ai.ChatModel, error) {
	return newChatModel(config)
}

// Complete generates a whole completion for the given messages.
func (m *ChatModel) Complete(ctx context.Context, messages []ai.ChatMessage) (*ai.Completion, error) {
	var completion *ai.Completion

	err := retry.Do(
		func() error {
			var attemptErr error
			completion, attemptErr = m.complete(ctx, messages, nil)
			return attemptErr
		},
		retry.Context(ctx),
		retry.Attempts(uint(m.config.MaxAttempts)),
		retry.RetryIf(ai.IsRetryable),
		retry.Delay(m.config.BaseRetryDelay),
		retry.MaxDelay(10*time.Second),
		retry.DelayType(m.retryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			m.logger.Warn("completion attempt failed, retrying", "attempt", n+1, "err", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return completion, nil
}

// CompleteStream generates a completion, delivering output incrementally.
// Streaming calls are not retried: once chunks have reached the caller a
// replay would duplicate output.
func (m *ChatModel) CompleteStream(ctx context.Context, messages []ai.ChatMessage, fn ai.StreamFunc) (*ai.Completion, error) {
	return m.complete(ctx, messages, fn)
}

// retryDelay prefers the provider's explicit rate-limit hint over backoff.
func (m *ChatModel) retryDelay(n uint, err error, config *retry.Config) time.Duration {
	if d, ok := ai.RetryAfter(err); ok {
		return d
	}
	return retry.BackOffDelay(n, err, config)
}

func (m *ChatModel) complete(ctx context.Context, messages []ai.ChatMessage, fn ai.StreamFunc) (*ai.Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, m.config.RequestTimeout)
	defer cancel()

	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, llms.MessageContent{
			Role:  roleToMessageType(msg.Role),
			Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
		})
	}

	opts := []llms.CallOption{llms.WithTemperature(0.3)}
	if fn != nil {
		opts = append(opts, llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			return fn(ctx, chunk)
		}))
	}

	response, err := m.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		return nil, classifyProviderError(err)
	}
	if len(response.Choices) < 1 {
		return nil, fmt.Errorf("%w: no choices returned", ai.ErrGenerationFailed)
	}

	choice := response.Choices[0]
	completion := &ai.Completion{Content: strings.TrimSpace(choice.Content)}
	if n, ok := choice.GenerationInfo["PromptTokens"].(int); ok {
		completion.PromptTokens = n
	}
	if n, ok := choice.GenerationInfo["CompletionTokens"].(int); ok {
		completion.CompletionTokens = n
	}

	return completion, nil
}

func roleToMessageType(role string) llms.ChatMessageType {
	switch role {
	case "system":
		return llms.ChatMessageTypeSystem
	case "assistant":
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

// classifyProviderError sorts provider failures into the retry taxonomy.
// langchaingo surfaces HTTP status codes in the error text, so matching on
// them is the only classification signal available here.
func classifyProviderError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "429"):
		return ai.NewRateLimitError(0)
	case containsAnyStatus(msg, "400", "401", "403", "404", "422"):
		return fmt.Errorf("%w: %v", ai.ErrInvalidRequest, err)
	default:
		return fmt.Errorf("%w: %w", ai.ErrGenerationFailed, err)
	}
}

func containsAnyStatus(msg string, codes ...string) bool {
	for _, code := range codes {
		if strings.Contains(msg, "status code: "+code) || strings.Contains(msg, "status "+code) {
			return true
		}
	}
	return false
}
