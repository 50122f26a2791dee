package validate

import (
	"epic-coverage/internal/models"
	"epic-coverage/internal/truncate"
)

const (
	maxStorySummary    = 250
	defaultStoryPoints = 3
	maxStories         = 3
)

// SanitizeStories sanitizes the candidate stories of a suggest response.
// Each candidate is handled independently; the result is truncated to the
// first three entries and may legitimately be shorter — no synthetic
// entries are added.
func SanitizeStories(raw string, intents []string) []models.GeneratedStory {
	obj := ParseObject(raw)

	arr, ok := obj["stories"].([]interface{})
	if !ok {
		return []models.GeneratedStory{}
	}

	allowed := make(map[string]bool, len(intents))
	for _, intent := range intents {
		allowed[intent] = true
	}

	out := make([]models.GeneratedStory, 0, maxStories)
	for _, item := range arr {
		candidate, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, sanitizeStory(candidate, intents, allowed))
	}

	return truncate.Items(out, maxStories)
}

func sanitizeStory(candidate map[string]interface{}, intents []string, allowed map[string]bool) models.GeneratedStory {
	summary, _ := candidate["summary"].(string)
	summary = truncate.Clip(summary, maxStorySummary)

	intent, _ := candidate["intent"].(string)
	if !allowed[intent] && len(intents) > 0 {
		intent = intents[0]
	}

	points := parsePoints(candidate["storyPoints"], defaultStoryPoints)
	points = clampInt(points, 1, 5)

	return models.GeneratedStory{
		Summary:     summary,
		Intent:      intent,
		StoryPoints: points,
	}
}
