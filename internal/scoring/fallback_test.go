package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"epic-coverage/internal/models"
)

func TestAlignmentScore(t *testing.T) {
	tests := []struct {
		name     string
		stories  []models.Story
		tickets  []models.Ticket
		intents  []string
		expected float64
	}{
		{
			name:     "no tickets yields zero",
			intents:  []string{"billing"},
			expected: 0,
		},
		{
			name:     "no relevant tickets yields zero",
			tickets:  []models.Ticket{{Intent: "shipping"}},
			intents:  []string{"billing"},
			expected: 0,
		},
		{
			name:     "all relevant tickets covered",
			stories:  []models.Story{{Key: "S-1", Intent: "billing"}},
			tickets:  []models.Ticket{{Intent: "billing"}, {Intent: "billing"}},
			intents:  []string{"billing"},
			expected: 1.0,
		},
		{
			name: "half of relevant tickets covered",
			stories: []models.Story{
				{Key: "S-1", Intent: "billing"},
			},
			tickets: []models.Ticket{
				{Intent: "billing"},
				{Intent: "login"},
			},
			intents:  []string{"billing", "login"},
			expected: 0.5,
		},
		{
			name:     "irrelevant tickets excluded from denominator",
			stories:  []models.Story{{Key: "S-1", Intent: "billing"}},
			tickets:  []models.Ticket{{Intent: "billing"}, {Intent: "spam"}},
			intents:  []string{"billing"},
			expected: 1.0,
		},
		{
			name:     "empty story intents do not cover",
			stories:  []models.Story{{Key: "S-1", Intent: ""}},
			tickets:  []models.Ticket{{Intent: "billing"}},
			intents:  []string{"billing"},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AlignmentScore(tt.stories, tt.tickets, tt.intents)
			assert.InDelta(t, tt.expected, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestIntentCoverage(t *testing.T) {
	stories := []models.Story{
		{Key: "S-1", Intent: "billing"},
		{Key: "S-2", Intent: ""},
	}

	assert.InDelta(t, 0.5, IntentCoverage(stories, []string{"billing", "login"}), 1e-9)
	assert.InDelta(t, 1.0, IntentCoverage(stories, []string{"billing"}), 1e-9)
	assert.InDelta(t, 0.0, IntentCoverage(stories, nil), 1e-9)
	// duplicate selections count once
	assert.InDelta(t, 1.0, IntentCoverage(stories, []string{"billing", "billing"}), 1e-9)
}

func TestLikelihoodPercent(t *testing.T) {
	assert.Equal(t, 0, LikelihoodPercent(0, 0))
	assert.Equal(t, 100, LikelihoodPercent(1, 1))
	assert.Equal(t, 70, LikelihoodPercent(1, 0))
	assert.Equal(t, 30, LikelihoodPercent(0, 1))
	assert.Equal(t, 65, LikelihoodPercent(0.5, 1))
	// clamped before rounding
	assert.Equal(t, 100, LikelihoodPercent(2, 2))
	assert.Equal(t, 0, LikelihoodPercent(-1, 0))
}

// With no intents and no stories selected, the likelihood reduces to
// round(100 * 0.7 * score) and score follows the empty-relevant-tickets rule.
func TestFallback_EmptyIntentsAndStories(t *testing.T) {
	score := AlignmentScore(nil, nil, nil)
	coverage := IntentCoverage(nil, nil)

	assert.Equal(t, 0.0, score)
	assert.Equal(t, 0.0, coverage)
	assert.Equal(t, 0, LikelihoodPercent(score, coverage))
}
