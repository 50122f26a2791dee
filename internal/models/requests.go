package models

// AnalyzeRequest is the analyze operation request body.
type AnalyzeRequest struct {
	Epic    Epic     `json:"epic"`
	Stories []Story  `json:"stories"`
	Tickets []Ticket `json:"tickets"`
	Intents []string `json:"intents"`
}

// SuggestRequest is the suggest-stories operation request body.
type SuggestRequest struct {
	Epic            Epic     `json:"epic"`
	Intents         []string `json:"intents"`
	ExistingStories []Story  `json:"existingStories"`
	Tickets         []Ticket `json:"tickets"`
}

// SuggestResponse carries at most three sanitized candidate stories.
type SuggestResponse struct {
	Stories []GeneratedStory `json:"stories"`
}
