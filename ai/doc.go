// Package ai defines the generation service boundary for leasebot.
//
// It declares the Embedder and ChatModel interfaces consumed by search and
// response generation, plus the Provider aggregation used for wiring. The
// openai subpackage implements them against OpenAI-compatible APIs; the mock
// subpackage provides deterministic test doubles.
//
// All calls may fail or time out. Callers degrade rather than abort: search
// skips semantic supplementation when embedding fails, and response
// generation falls back to a templated answer when completion fails.
package ai
