package respond

import (
	"strings"
	"testing"

	"github.com/crestline/leasebot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTokens(t *testing.T) {
	assert.Zero(t, estimateTokens(""))
	assert.Equal(t, 2, estimateTokens("seven.."))    // 7 chars / 3.5
	assert.Equal(t, 10, estimateTokens(strings.Repeat("x", 35)))
}

func TestFitToBudget(t *testing.T) {
	var candidates []*core.Property
	for i := 0; i < 10; i++ {
		candidates = append(candidates, testListing(string(rune('a'+i)), 2, 1800, "Austin", false))
	}

	t.Run("generous budget keeps everything", func(t *testing.T) {
		assert.Len(t, fitToBudget(candidates, 10000), 10)
	})

	t.Run("tight budget shrinks", func(t *testing.T) {
		fitted := fitToBudget(candidates, 40)
		assert.Less(t, len(fitted), 10)
		assert.GreaterOrEqual(t, len(fitted), 1)
	})

	t.Run("never drops below one candidate", func(t *testing.T) {
		fitted := fitToBudget(candidates, 1)
		assert.Len(t, fitted, 1)
	})
}

func TestBuildPrompt(t *testing.T) {
	candidates := []*core.Property{
		testListing("a1", 2, 1800, "Austin", true),
		testListing("b2", 3, 2400, "Dallas", false),
	}

	messages := buildPrompt(candidates, "anything with a yard?")
	require.Len(t, messages, 2)

	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, "[TOUR:id]")

	assert.Equal(t, "user", messages[1].Role)
	assert.Contains(t, messages[1].Content, "1. (id: a1)")
	assert.Contains(t, messages[1].Content, "2. (id: b2)")
	assert.Contains(t, messages[1].Content, "anything with a yard?")
}
