package respond

import (
	"fmt"
	"strings"

	"github.com/crestline/leasebot/ai"
	"github.com/crestline/leasebot/core"
)

const (
	// defaultTokenBudget bounds the serialized candidate context.
	defaultTokenBudget = 1024

	// charsPerToken is the serialized-text cost estimate.
	charsPerToken = 3.5
)

const systemInstruction = `You are a friendly leasing assistant for a rental property company.
Answer in 1-3 concise sentences and always steer toward a next step (tour, apply, or more details).
When pointing a renter at a listing, use the placeholders [VIEW:id], [TOUR:id], and [APPLY:id] with the listing's id.
Never write raw URLs or invent links. Only discuss listings provided below.`

// estimateTokens approximates the token cost of text.
func estimateTokens(text string) int {
	return int(float64(len(text))/charsPerToken + 0.5)
}

// describeCandidates renders candidates as numbered context lines.
func describeCandidates(candidates []*core.Property) string {
	var b strings.Builder
	for i, p := range candidates {
		fmt.Fprintf(&b, "%d. (id: %s) %s\n", i+1, p.ID, p.Describe())
	}
	return b.String()
}

// fitToBudget shrinks the candidate list until its serialized cost fits
// the token budget, keeping at least one candidate. The shrink is
// proportional, so a grossly oversized list converges in one or two steps.
func fitToBudget(candidates []*core.Property, budget int) []*core.Property {
	for len(candidates) > 1 {
		estimate := estimateTokens(describeCandidates(candidates))
		if estimate <= budget {
			break
		}
		keep := len(candidates) * budget / estimate
		if keep >= len(candidates) {
			keep = len(candidates) - 1
		}
		if keep < 1 {
			keep = 1
		}
		candidates = candidates[:keep]
	}
	return candidates
}

// buildPrompt composes the generation request for a turn.
func buildPrompt(candidates []*core.Property, question string) []ai.ChatMessage {
	var user strings.Builder
	user.WriteString("Available listings:\n")
	user.WriteString(describeCandidates(candidates))
	user.WriteString("\nRenter's question: ")
	user.WriteString(question)

	return []ai.ChatMessage{
		{Role: "system", Content: systemInstruction},
		{Role: "user", Content: user.String()},
	}
}
