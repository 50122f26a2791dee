package suggeststories

import "epic-coverage/internal/truncate"

type Config struct {
	Temperature float64
	MaxTokens   int
	MaxTickets  int
	MaxStories  int
}

func DefaultConfig() *Config {
	return &Config{
		Temperature: 0.3,
		MaxTokens:   700,
		MaxTickets:  truncate.MaxTicketsSuggest,
		MaxStories:  truncate.MaxStories,
	}
}
