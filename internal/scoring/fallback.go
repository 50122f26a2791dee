// Package scoring computes the deterministic alignment score and likelihood
// estimate from input data alone. It is used whenever the model response is
// absent or unusable, and must stay reproducible: these formulas are the
// contract for graceful degradation without the external service.
package scoring

import (
	"math"

	"epic-coverage/internal/models"
)

// AlignmentScore is the fraction of relevant tickets whose intent is covered
// by an existing story. Relevant tickets are those whose intent is in the
// selected intents. Returns 0 when no ticket is relevant.
func AlignmentScore(stories []models.Story, tickets []models.Ticket, intents []string) float64 {
	covered := coveredIntents(stories)
	selected := toSet(intents)

	relevant := 0
	coveredRelevant := 0
	for _, t := range tickets {
		if !selected[t.Intent] {
			continue
		}
		relevant++
		if covered[t.Intent] {
			coveredRelevant++
		}
	}
	if relevant == 0 {
		return 0
	}
	return float64(coveredRelevant) / float64(relevant)
}

// IntentCoverage is the fraction of selected intents that appear as a story
// intent. Returns 0 when no intents were selected. Duplicate selections
// count once.
func IntentCoverage(stories []models.Story, intents []string) float64 {
	covered := coveredIntents(stories)
	selected := toSet(intents)
	if len(selected) == 0 {
		return 0
	}

	hit := 0
	for intent := range selected {
		if covered[intent] {
			hit++
		}
	}
	return float64(hit) / float64(len(selected))
}

// LikelihoodPercent combines score and coverage into the KPI-likelihood
// estimate: round(100 * clamp(0.7*score + 0.3*coverage, 0, 1)).
func LikelihoodPercent(score, coverage float64) int {
	combined := 0.7*score + 0.3*coverage
	if combined < 0 {
		combined = 0
	}
	if combined > 1 {
		combined = 1
	}
	return int(math.Round(100 * combined))
}

// coveredIntents collects the non-empty intent values across stories.
func coveredIntents(stories []models.Story) map[string]bool {
	covered := make(map[string]bool, len(stories))
	for _, s := range stories {
		if s.Intent != "" {
			covered[s.Intent] = true
		}
	}
	return covered
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
