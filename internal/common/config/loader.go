package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	// Enable ENV override like OPENAI_API_KEY, SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // ignore error if not found

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// AutomaticEnv does not populate unmarshal for unset keys; pick up the
	// credential directly so a bare OPENAI_API_KEY always wins.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = env
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the usual locations so the service can run
// from the repo root or a package directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	for _, p := range possiblePaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "epic-coverage")
	v.SetDefault("app.version", "dev")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15000)
	v.SetDefault("server.write_timeout", 60000)

	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_attempts", 2)
	v.SetDefault("openai.backoff_ms", 600)
	v.SetDefault("openai.analyze_temperature", 0.2)
	v.SetDefault("openai.suggest_temperature", 0.3)
	v.SetDefault("openai.suggest_max_tokens", 700)

	v.SetDefault("pipeline.include_likelihood", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.collector_endpoint", "http://localhost:14268/api/traces")
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	if cfg.OpenAI.MaxAttempts < 1 {
		return fmt.Errorf("openai.max_attempts must be at least 1")
	}
	if cfg.OpenAI.BackoffMS < 0 {
		return fmt.Errorf("openai.backoff_ms must not be negative")
	}
	// A missing API key is deliberately not fatal here: the orchestrator
	// reports it per request as a configuration error.
	return nil
}
