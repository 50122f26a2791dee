// Package prompt renders the system and user instructions sent to the
// text-generation endpoint. Rendering is deterministic: same inputs always
// produce the same strings.
package prompt

import (
	"fmt"
	"strings"

	"epic-coverage/internal/models"
	"epic-coverage/internal/truncate"
)

// likelihoodInstruction is the v2 analyze instruction that also requests a
// KPI-likelihood estimate. It is a fixed instruction string; the value it
// asks for is produced by the model, never computed here.
const likelihoodInstruction = `- "likelihoodPercent": integer between 0 and 100, your estimated probability that shipping this epic reduces repeat support contacts for the selected intents`

const analyzeSystem = `You are a product analyst. Judge how well an epic and its user stories address the selected customer issue intents from support tickets. Respond with a single JSON object and nothing else.`

// AnalyzeInput carries already-bounded collections for the analyze prompt.
type AnalyzeInput struct {
	Epic              models.Epic
	Stories           []models.Story
	Tickets           []models.Ticket
	Intents           []string
	IncludeLikelihood bool
}

// Analyze renders the analyze operation prompts.
func Analyze(in AnalyzeInput) (system, user string) {
	var parts []string

	parts = append(parts, fmt.Sprintf("Epic: %s", in.Epic.DisplayName()))
	parts = append(parts, fmt.Sprintf("Description: %s", in.Epic.DisplayDescription()))
	parts = append(parts, "")
	parts = append(parts, fmt.Sprintf("Selected intents: %s", strings.Join(in.Intents, ", ")))

	parts = append(parts, "", "Existing stories:")
	parts = append(parts, storyLines(in.Stories, 0)...)

	parts = append(parts, "", "Support tickets:")
	parts = append(parts, ticketLines(in.Tickets)...)

	parts = append(parts, "", "Return a JSON object with:")
	parts = append(parts, `- "score": number between 0 and 1 for how well the stories address the ticket intents`)
	parts = append(parts, `- "summary": a short assessment of the coverage`)
	parts = append(parts, `- "suggestions": an array of 3 to 6 concrete improvement suggestions`)
	if in.IncludeLikelihood {
		parts = append(parts, likelihoodInstruction)
	}

	return analyzeSystem, strings.Join(parts, "\n")
}

// SuggestInput carries already-bounded collections for the suggest prompt.
type SuggestInput struct {
	Epic            models.Epic
	Intents         []string
	ExistingStories []models.Story
	Tickets         []models.Ticket
}

// Suggest renders the suggest-stories prompts. The system instruction
// carries the literal allowed-intent list and the exact output shape.
func Suggest(in SuggestInput) (system, user string) {
	var sys []string
	sys = append(sys, "You are a product analyst proposing new user stories for an epic.")
	sys = append(sys, fmt.Sprintf("Allowed intents: %s", strings.Join(in.Intents, ", ")))
	sys = append(sys, `Respond with a single JSON object shaped exactly as {"stories":[{"summary":"...","intent":"...","storyPoints":3}]} and nothing else.`)
	sys = append(sys, "Return exactly 3 stories. Each summary is at most 250 characters, each intent is one of the allowed intents, and storyPoints is an integer from 1 to 5.")

	var parts []string
	parts = append(parts, fmt.Sprintf("Epic: %s", in.Epic.DisplayName()))
	parts = append(parts, fmt.Sprintf("Description: %s", in.Epic.DisplayDescription()))
	parts = append(parts, "")
	parts = append(parts, fmt.Sprintf("Selected intents: %s", strings.Join(in.Intents, ", ")))

	parts = append(parts, "", "Existing stories:")
	parts = append(parts, storyLines(in.ExistingStories, truncate.MaxStorySummary)...)

	parts = append(parts, "", "Support tickets:")
	parts = append(parts, ticketLines(in.Tickets)...)

	parts = append(parts, "", "Propose 3 new stories that improve intent coverage the most.")

	return strings.Join(sys, "\n"), strings.Join(parts, "\n")
}

// storyLines renders `- <key>: <summary> [intent=<intent-or-dash>]`.
// A positive clip bounds the summary length.
func storyLines(stories []models.Story, clip int) []string {
	if len(stories) == 0 {
		return []string{"- (none)"}
	}
	lines := make([]string, 0, len(stories))
	for _, s := range stories {
		intent := s.Intent
		if intent == "" {
			intent = "-"
		}
		summary := s.Summary
		if clip > 0 {
			summary = truncate.Clip(summary, clip)
		}
		lines = append(lines, fmt.Sprintf("- %s: %s [intent=%s]", s.Key, summary, intent))
	}
	return lines
}

// ticketLines renders `- (<intent>) <subject>: <description>` with the
// subject and description clipped to their limits.
func ticketLines(tickets []models.Ticket) []string {
	if len(tickets) == 0 {
		return []string{"- (none)"}
	}
	lines := make([]string, 0, len(tickets))
	for _, t := range tickets {
		lines = append(lines, fmt.Sprintf("- (%s) %s: %s",
			t.Intent,
			truncate.Clip(t.Subject, truncate.MaxTicketSubject),
			truncate.Clip(t.Description, truncate.MaxTicketDescription),
		))
	}
	return lines
}
