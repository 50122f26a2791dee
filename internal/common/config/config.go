package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int `mapstructure:"write_timeout"` // milliseconds
}

// OpenAIConfig holds credentials and the retry policy for the
// chat-completions endpoint. The credential comes from OPENAI_API_KEY;
// its absence is a configuration error surfaced per request, not at boot.
type OpenAIConfig struct {
	APIKey             string  `mapstructure:"api_key"`
	BaseURL            string  `mapstructure:"base_url"`
	Model              string  `mapstructure:"model"`
	MaxAttempts        int     `mapstructure:"max_attempts"`
	BackoffMS          int     `mapstructure:"backoff_ms"`
	AnalyzeTemperature float64 `mapstructure:"analyze_temperature"`
	SuggestTemperature float64 `mapstructure:"suggest_temperature"`
	SuggestMaxTokens   int     `mapstructure:"suggest_max_tokens"`
}

// Backoff returns the fixed delay between the first attempt and the retry.
func (o OpenAIConfig) Backoff() time.Duration {
	return time.Duration(o.BackoffMS) * time.Millisecond
}

// PipelineConfig holds deployment-time pipeline switches.
type PipelineConfig struct {
	// IncludeLikelihood selects the analyze variant that requests and
	// returns a KPI-likelihood estimate.
	IncludeLikelihood bool `mapstructure:"include_likelihood"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}
