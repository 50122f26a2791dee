package models

// Epic is a product goal with a name and description, grouping stories.
type Epic struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DisplayName returns the epic name with the documented default.
func (e Epic) DisplayName() string {
	if e.Name == "" {
		return "Untitled"
	}
	return e.Name
}

// DisplayDescription returns the epic description with the documented default.
func (e Epic) DisplayDescription() string {
	if e.Description == "" {
		return "(none)"
	}
	return e.Description
}

// Story is a unit of product work. Intent may be empty (JSON null maps to "").
type Story struct {
	Key     string `json:"key"`
	Summary string `json:"summary"`
	Intent  string `json:"intent"`
}

// Ticket is a support-issue record with a classified intent.
type Ticket struct {
	Intent      string `json:"intent"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// GeneratedStory is a sanitized candidate story from the suggestion pipeline.
type GeneratedStory struct {
	Summary     string `json:"summary"`
	Intent      string `json:"intent"`
	StoryPoints int    `json:"storyPoints"`
}

// AnalysisResult is the analyze operation output. LikelihoodPercent is only
// present in the deployment variant that tracks the KPI-likelihood estimate.
type AnalysisResult struct {
	Score             float64  `json:"score"`
	Summary           string   `json:"summary"`
	Suggestions       []string `json:"suggestions"`
	LikelihoodPercent *int     `json:"likelihoodPercent,omitempty"`
}
