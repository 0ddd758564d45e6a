package respond

import (
	"testing"

	"github.com/crestline/leasebot/core"
	"github.com/stretchr/testify/assert"
)

func TestResolveLinks_ReplacesPlaceholders(t *testing.T) {
	candidates := []*core.Property{
		testListing("a1", 2, 1800, "Austin", true),
		testListing("b2", 2, 1900, "Austin", false),
	}

	text := "Check it out: [VIEW:a1] or book a visit: [TOUR:b2] and then [APPLY:a1]"
	resolved := ResolveLinks(text, candidates)

	assert.Contains(t, resolved, "https://example.com/a1")
	assert.Contains(t, resolved, "https://example.com/b2/tour")
	assert.Contains(t, resolved, "https://example.com/a1/apply")
	assert.NotContains(t, resolved, "[VIEW:")
	assert.NotContains(t, resolved, "[TOUR:")
	assert.NotContains(t, resolved, "[APPLY:")
}

func TestResolveLinks_DropsUnknownListing(t *testing.T) {
	candidates := []*core.Property{testListing("a1", 2, 1800, "Austin", true)}

	resolved := ResolveLinks("Try this: [TOUR:nope]", candidates)
	assert.Equal(t, "Try this:", resolved)
}

func TestResolveLinks_AppendsWhenNoMarkup(t *testing.T) {
	candidates := []*core.Property{
		testListing("a1", 2, 1800, "Austin", true),
		testListing("b2", 2, 1900, "Austin", false),
	}

	resolved := ResolveLinks("This one is lovely.", candidates)

	assert.Contains(t, resolved, "https://example.com/a1/tour")
	assert.Contains(t, resolved, "https://example.com/a1/apply")
	assert.NotContains(t, resolved, "b2", "only the top candidate's links are appended")
}

func TestResolveLinks_NoCandidates(t *testing.T) {
	assert.Equal(t, "Hello!", ResolveLinks("Hello!", nil))
}

func TestFallbackAnswer(t *testing.T) {
	t.Run("empty candidates", func(t *testing.T) {
		assert.Equal(t, NoPropertiesMessage, FallbackAnswer(nil))
	})

	t.Run("single candidate", func(t *testing.T) {
		p := testListing("a1", 2, 1800, "Austin", true)
		answer := FallbackAnswer([]*core.Property{p})

		assert.Contains(t, answer, p.Name)
		assert.Contains(t, answer, "https://example.com/a1/tour")
		assert.Contains(t, answer, "https://example.com/a1/apply")
	})

	t.Run("deterministic", func(t *testing.T) {
		candidates := []*core.Property{
			testListing("a1", 2, 1800, "Austin", true),
			testListing("b2", 2, 1900, "Austin", false),
		}
		assert.Equal(t, FallbackAnswer(candidates), FallbackAnswer(candidates))
		assert.Contains(t, FallbackAnswer(candidates), "1 more option")
	})
}
