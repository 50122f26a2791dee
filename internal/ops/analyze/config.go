package analyzeepic

import "epic-coverage/internal/truncate"

type Config struct {
	Temperature       float64
	IncludeLikelihood bool
	MaxTickets        int
	MaxStories        int
}

func DefaultConfig(includeLikelihood bool) *Config {
	return &Config{
		Temperature:       0.2,
		IncludeLikelihood: includeLikelihood,
		MaxTickets:        truncate.MaxTicketsAnalyze,
		MaxStories:        truncate.MaxStories,
	}
}
