package respond

import (
	"log/slog"
	"time"
)

// Latency thresholds above which a turn is logged at warning level.
const (
	totalLatencyWarn      = 2000 * time.Millisecond
	generationLatencyWarn = 5000 * time.Millisecond
	searchLatencyWarn     = 1000 * time.Millisecond
)

// TurnMetrics captures the measurable cost of one chat turn.
type TurnMetrics struct {
	SearchLatency     time.Duration
	GenerationLatency time.Duration
	TotalLatency      time.Duration
	PromptTokens      int
	CompletionTokens  int
	CacheHit          bool
	CandidateCount    int
	FellBack          bool
}

// record logs the turn, escalating to warning level when any latency
// exceeds its threshold.
func (m TurnMetrics) record(logger *slog.Logger, sessionID string) {
	attrs := []any{
		"sessionID", sessionID,
		"searchMs", m.SearchLatency.Milliseconds(),
		"generationMs", m.GenerationLatency.Milliseconds(),
		"totalMs", m.TotalLatency.Milliseconds(),
		"candidates", m.CandidateCount,
		"cacheHit", m.CacheHit,
	}
	if m.PromptTokens > 0 || m.CompletionTokens > 0 {
		attrs = append(attrs, "promptTokens", m.PromptTokens, "completionTokens", m.CompletionTokens)
	}
	if m.FellBack {
		attrs = append(attrs, "fellBack", true)
	}

	switch {
	case m.TotalLatency > totalLatencyWarn:
		logger.Warn("slow turn", attrs...)
	case m.GenerationLatency > generationLatencyWarn:
		logger.Warn("slow generation", attrs...)
	case m.SearchLatency > searchLatencyWarn:
		logger.Warn("slow search", attrs...)
	default:
		logger.Info("turn complete", attrs...)
	}
}
