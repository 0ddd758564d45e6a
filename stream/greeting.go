package stream

import (
	"regexp"
	"strings"
)

// ScriptedGreeting is the fixed reply for greeting-only messages.
const ScriptedGreeting = "Hi there! I'm your leasing assistant. Ask me about our available rentals, like \"2 bedroom apartments under $2000\", and I'll find a great fit for you."

// greetingRe matches messages that are a greeting and nothing else.
var greetingRe = regexp.MustCompile(`^(hi|hiya|hello|hey|howdy|yo|greetings|good\s+(morning|afternoon|evening))$`)

// IsGreeting reports whether the message is a greeting-only utterance.
func IsGreeting(message string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(message))
	trimmed = strings.TrimRight(trimmed, "!.? ")
	return greetingRe.MatchString(trimmed)
}
