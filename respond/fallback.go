package respond

import (
	"fmt"

	"github.com/crestline/leasebot/core"
)

// NoPropertiesMessage is the fixed answer when no candidates exist at all.
const NoPropertiesMessage = "I'm sorry, we don't have any properties available that match right now. Check back soon — new listings are added regularly!"

// FallbackAnswer builds the deterministic degraded answer used when
// generation fails on every attempt. Every caller gets the same text for
// the same candidate list.
func FallbackAnswer(candidates []*core.Property) string {
	if len(candidates) == 0 {
		return NoPropertiesMessage
	}

	top := candidates[0]
	answer := fmt.Sprintf("Here's a great option: %s.", top.Describe())
	switch more := len(candidates) - 1; {
	case more == 1:
		answer += " We have 1 more option that matches too."
	case more > 1:
		answer += fmt.Sprintf(" We have %d more options that match too.", more)
	}
	if top.Links.Tour != "" {
		answer += fmt.Sprintf(" Schedule a tour: %s", top.Links.Tour)
	}
	if top.Links.Apply != "" {
		answer += fmt.Sprintf(" Apply now: %s", top.Links.Apply)
	}
	return answer
}
